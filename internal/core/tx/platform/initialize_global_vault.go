package platform

import (
	"github.com/adipundir/donatrade/internal/core/ledger/entry/entries"
	"github.com/adipundir/donatrade/internal/core/ledger/keylet"
	"github.com/adipundir/donatrade/internal/core/tx"
	"github.com/adipundir/donatrade/internal/crypto"
	"github.com/adipundir/donatrade/internal/custody"
)

func init() {
	tx.Register(tx.TypeInitializeGlobalVault, func() tx.Transaction {
		return &InitializeGlobalVault{BaseTx: *tx.NewBaseTx(tx.TypeInitializeGlobalVault, "")}
	})
}

// InitializeGlobalVault creates the platform vault singleton and the custody
// token account owned by the vault authority.
type InitializeGlobalVault struct {
	tx.BaseTx
}

// NewInitializeGlobalVault creates a new InitializeGlobalVault operation
func NewInitializeGlobalVault(account string) *InitializeGlobalVault {
	return &InitializeGlobalVault{BaseTx: *tx.NewBaseTx(tx.TypeInitializeGlobalVault, account)}
}

// TxType returns the operation type
func (i *InitializeGlobalVault) TxType() tx.Type {
	return tx.TypeInitializeGlobalVault
}

// VaultAuthority returns the identity that owns the platform custody
// account for the given derivation salt.
func VaultAuthority(bump uint8) [20]byte {
	if bump == 0 {
		bump = entries.DefaultBump
	}
	return crypto.DeriveAuthority(keylet.VaultAuthoritySeed, bump)
}

// Apply creates the platform vault.
func (i *InitializeGlobalVault) Apply(ctx *tx.ApplyContext) tx.Result {
	if !ctx.IsPlatformAdmin() {
		return ctx.Reject(tx.TecUNAUTHORIZED, "signer is not the platform admin")
	}

	k := keylet.GlobalVault()
	exists, err := ctx.View.Exists(k)
	if err != nil {
		return ctx.Fail(err)
	}
	if exists {
		return ctx.Reject(tx.TefALREADY_INITIALIZED, "platform vault already initialized")
	}

	bump := ctx.Config.VaultBump
	if bump == 0 {
		bump = entries.DefaultBump
	}
	authority := VaultAuthority(bump)

	if opener, ok := ctx.Custody.(custody.AccountOpener); ok {
		if err := opener.OpenAccount(ctx.View, authority); err != nil {
			return ctx.Reject(tx.TecCUSTODY_FAILED, "open custody account: %v", err)
		}
	}

	gv := &entries.GlobalVault{
		Admin:          ctx.AccountID,
		Authority:      authority,
		CustodyAccount: keylet.TokenAccount(authority).Key,
		Bump:           bump,
	}
	return ctx.Put(k, gv, false)
}
