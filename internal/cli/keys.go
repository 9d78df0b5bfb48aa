package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	addresscodec "github.com/adipundir/donatrade/internal/codec/address-codec"
	"github.com/adipundir/donatrade/internal/core/tx"
	"github.com/adipundir/donatrade/internal/crypto"
	"github.com/spf13/cobra"
)

// keyFlags selects a signing key from --seed or --secret
type keyFlags struct {
	seed   string
	secret string
}

func (k *keyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&k.seed, "seed", "", "passphrase the key is derived from (devnet only)")
	cmd.Flags().StringVar(&k.secret, "secret", "", "hex encoded private key")
}

func (k *keyFlags) keyPair() (*crypto.KeyPair, error) {
	switch {
	case k.seed != "" && k.secret != "":
		return nil, fmt.Errorf("--seed and --secret are mutually exclusive")
	case k.seed != "":
		return crypto.KeyPairFromSeed(k.seed), nil
	case k.secret != "":
		return crypto.KeyPairFromHex(k.secret)
	}
	return nil, nil
}

type keyInfo struct {
	Address    string `json:"address"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

func newKeygenCmd() *cobra.Command {
	var keys keyFlags

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Create a signing key and print its address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := keys.keyPair()
			if err != nil {
				return err
			}
			if key == nil {
				if key, err = crypto.GenerateKeyPair(); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), keyInfo{
				Address:    addresscodec.EncodeAccountID(key.AccountID()),
				PublicKey:  strings.ToUpper(hex.EncodeToString(key.PublicKey())),
				PrivateKey: strings.ToUpper(key.PrivateKeyHex()),
			})
		},
	}
	keys.register(cmd)
	return cmd
}

// signedOperation is the parameter object of the submit method
type signedOperation struct {
	TxBlob    string `json:"tx_blob"`
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

func newSignCmd() *cobra.Command {
	var (
		keys     keyFlags
		sequence uint32
	)

	cmd := &cobra.Command{
		Use:   "sign <operation-json|->",
		Short: "Sign an operation for the submit method",
		Long: `Sign an operation given as JSON, or read from stdin with "-". Account
defaults to the signing key's address. The output is the parameter object
of the submit RPC method, e.g.

  donatraded sign --seed alice '{"TransactionType":"Deposit","Amount":100}' |
    donatraded rpc submit -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := keys.keyPair()
			if err != nil {
				return err
			}
			if key == nil {
				return fmt.Errorf("a signing key is required (--seed or --secret)")
			}

			raw, err := readArg(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			signed, err := signOperation(raw, key, sequence, cmd.Flags().Changed("sequence"))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), signed)
		},
	}
	keys.register(cmd)
	cmd.Flags().Uint32Var(&sequence, "sequence", 0, "account sequence of the operation, as reported by account_info")
	return cmd
}

func signOperation(raw []byte, key *crypto.KeyPair, sequence uint32, setSequence bool) (*signedOperation, error) {
	op, err := tx.FromJSON(raw)
	if err != nil {
		return nil, err
	}
	common := op.GetCommon()
	if common.Account == "" {
		common.Account = addresscodec.EncodeAccountID(key.AccountID())
	}
	if setSequence {
		common.SetSequence(sequence)
	}
	if common.Sequence == nil {
		return nil, fmt.Errorf("a Sequence is required: pass --sequence or set it in the operation (see account_info)")
	}
	if err := op.Validate(); err != nil {
		return nil, err
	}

	blob, sig, err := tx.Sign(op, key)
	if err != nil {
		return nil, err
	}
	return &signedOperation{
		TxBlob:    strings.ToUpper(hex.EncodeToString(blob)),
		PublicKey: strings.ToUpper(hex.EncodeToString(key.PublicKey())),
		Signature: strings.ToUpper(hex.EncodeToString(sig)),
	}, nil
}

// readArg returns arg, or all of stdin when arg is "-".
func readArg(arg string, stdin io.Reader) ([]byte, error) {
	if arg != "-" {
		return []byte(arg), nil
	}
	if stdin == nil {
		stdin = os.Stdin
	}
	return io.ReadAll(stdin)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
