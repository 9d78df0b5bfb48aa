package grant

import (
	"fmt"

	"github.com/adipundir/donatrade/internal/core/encrypted"
	"github.com/adipundir/donatrade/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeAuthorizeDecryption, func() tx.Transaction {
		return &AuthorizeDecryption{BaseTx: *tx.NewBaseTx(tx.TypeAuthorizeDecryption, "")}
	})
}

// AuthorizeDecryption asks the oracle to let another party decrypt a
// handle the signer can already view. Nothing is written to the ledger.
type AuthorizeDecryption struct {
	tx.BaseTx

	Handle encrypted.Handle `json:"Handle"`

	// AllowedParty is the address being granted the view (required)
	AllowedParty string `json:"AllowedParty"`
}

// NewAuthorizeDecryption creates a new AuthorizeDecryption operation
func NewAuthorizeDecryption(account string, handle encrypted.Handle, allowed string) *AuthorizeDecryption {
	return &AuthorizeDecryption{
		BaseTx:       *tx.NewBaseTx(tx.TypeAuthorizeDecryption, account),
		Handle:       handle,
		AllowedParty: allowed,
	}
}

// TxType returns the operation type
func (a *AuthorizeDecryption) TxType() tx.Type {
	return tx.TypeAuthorizeDecryption
}

// Validate checks the handle and allowed party.
func (a *AuthorizeDecryption) Validate() error {
	if err := a.BaseTx.Validate(); err != nil {
		return err
	}
	if a.Handle.IsZero() {
		return fmt.Errorf("%w: Handle is required", tx.ErrMissingRequiredField)
	}
	if _, err := tx.DecodeAddress("AllowedParty", a.AllowedParty); err != nil {
		return err
	}
	return nil
}

// Apply relays the grant to the oracle.
func (a *AuthorizeDecryption) Apply(ctx *tx.ApplyContext) tx.Result {
	target, err := tx.DecodeAddress("AllowedParty", a.AllowedParty)
	if err != nil {
		return ctx.Reject(tx.TemBAD_ACCOUNT, "%v", err)
	}
	if err := ctx.Ops.GrantView(ctx.Context, a.Handle, target); err != nil {
		return ctx.Fail(err)
	}
	return tx.TesSUCCESS
}
