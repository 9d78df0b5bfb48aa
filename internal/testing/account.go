package testing

import (
	"encoding/hex"

	addresscodec "github.com/adipundir/donatrade/internal/codec/address-codec"
	"github.com/adipundir/donatrade/internal/crypto"
)

// Account represents a test account with keypair and address information.
type Account struct {
	// Name is a human-readable identifier for the account (used for debugging).
	Name string

	// Address is the base58 account address.
	Address string

	// ID is the 20-byte account ID derived from the public key.
	ID [20]byte

	Key *crypto.KeyPair
}

// NewAccount creates a new test account with a deterministic keypair derived from the name.
// Using the same name will always produce the same account, making tests reproducible.
func NewAccount(name string) *Account {
	key := crypto.KeyPairFromSeed(name)
	id := key.AccountID()
	return &Account{
		Name:    name,
		Address: addresscodec.EncodeAccountID(id),
		ID:      id,
		Key:     key,
	}
}

// AccountIDHex returns the account ID as a hex string.
func (a *Account) AccountIDHex() string {
	return hex.EncodeToString(a.ID[:])
}

// String implements the Stringer interface for debugging.
func (a *Account) String() string {
	return a.Name + " (" + a.Address + ")"
}
