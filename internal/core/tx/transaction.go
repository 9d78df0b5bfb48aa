package tx

import (
	"errors"
	"fmt"

	addresscodec "github.com/adipundir/donatrade/internal/codec/address-codec"
)

// Common errors
var (
	ErrMissingRequiredField   = errors.New("temMALFORMED: missing required field")
	ErrInvalidTransactionType = errors.New("temUNKNOWN: invalid transaction type")
	ErrInvalidAccount         = errors.New("temBAD_ACCOUNT: invalid account")
)

// Transaction is the interface that all operation types must implement
type Transaction interface {
	// TxType returns the operation type
	TxType() Type

	// GetCommon returns the common fields
	GetCommon() *Common

	// Validate checks the operation is well formed without reading state
	Validate() error
}

// Appliable is implemented by operation types that can apply themselves to
// ledger state.
type Appliable interface {
	Apply(ctx *ApplyContext) Result
}

// Common contains fields common to all operation types
type Common struct {
	// Account is the address of the signer
	Account         string `json:"Account"`
	TransactionType string `json:"TransactionType"`

	// Sequence must equal the signer's next account sequence. Signed
	// submissions always carry it.
	Sequence *uint32 `json:"Sequence,omitempty"`

	Memo string `json:"Memo,omitempty"`
}

// Validate validates the common fields
func (c *Common) Validate() error {
	if c.Account == "" {
		return fmt.Errorf("%w: Account is required", ErrInvalidAccount)
	}
	if !addresscodec.IsValidAddress(c.Account) {
		return fmt.Errorf("%w: %q", ErrInvalidAccount, c.Account)
	}
	if c.TransactionType == "" {
		return fmt.Errorf("%w: TransactionType is required", ErrMissingRequiredField)
	}
	return nil
}

// AccountID decodes the signer address
func (c *Common) AccountID() ([20]byte, error) {
	id, err := addresscodec.DecodeAccountID(c.Account)
	if err != nil {
		return id, fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}
	return id, nil
}

// SetSequence sets the account sequence
func (c *Common) SetSequence(seq uint32) {
	c.Sequence = &seq
}

// BaseTx carries the common fields and the operation type
type BaseTx struct {
	Common
	txType Type
}

// NewBaseTx creates a BaseTx for the given type and signer address
func NewBaseTx(t Type, account string) *BaseTx {
	return &BaseTx{
		Common: Common{
			Account:         account,
			TransactionType: t.String(),
		},
		txType: t,
	}
}

// TxType returns the operation type
func (b *BaseTx) TxType() Type {
	return b.txType
}

// GetCommon returns the common fields
func (b *BaseTx) GetCommon() *Common {
	return &b.Common
}

// Validate validates the common fields
func (b *BaseTx) Validate() error {
	return b.Common.Validate()
}

// DecodeAddress decodes an address field, naming it in the error.
func DecodeAddress(field, address string) ([20]byte, error) {
	if address == "" {
		return [20]byte{}, fmt.Errorf("%w: %s is required", ErrMissingRequiredField, field)
	}
	id, err := addresscodec.DecodeAccountID(address)
	if err != nil {
		return id, fmt.Errorf("%w: %s: %v", ErrInvalidAccount, field, err)
	}
	return id, nil
}
