package tx

import (
	"errors"
	"fmt"

	"github.com/adipundir/donatrade/internal/crypto"
)

// ErrSignerMismatch is returned when the signing key does not belong to the
// operation's Account.
var ErrSignerMismatch = errors.New("signing key does not match Account")

// VerifySigned authenticates a serialized operation: the signature must
// verify under pubKey and pubKey must hash to the Account of the parsed
// operation.
func VerifySigned(raw, pubKey, signature []byte) (Transaction, error) {
	if err := crypto.Verify(pubKey, raw, signature); err != nil {
		return nil, err
	}
	tx, err := FromJSON(raw)
	if err != nil {
		return nil, err
	}
	signer, err := tx.GetCommon().AccountID()
	if err != nil {
		return nil, err
	}
	if crypto.CalcAccountID(pubKey) != signer {
		return nil, fmt.Errorf("%w: %s", ErrSignerMismatch, tx.GetCommon().Account)
	}
	return tx, nil
}

// Sign serializes tx and signs it with key.
func Sign(tx Transaction, key *crypto.KeyPair) (raw, signature []byte, err error) {
	raw, err = ToJSON(tx)
	if err != nil {
		return nil, nil, err
	}
	return raw, key.Sign(raw), nil
}
