package position

import (
	"github.com/adipundir/donatrade/internal/core/ledger/keylet"
	"github.com/adipundir/donatrade/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeTransferShares, func() tx.Transaction {
		return &TransferShares{BaseTx: *tx.NewBaseTx(tx.TypeTransferShares, "")}
	})
}

// TransferShares moves shares of one company from the signer's position to
// another investor's position.
type TransferShares struct {
	tx.BaseTx

	CompanyID uint64 `json:"CompanyID"`

	// Receiver is the address receiving the shares (required)
	Receiver string `json:"Receiver"`

	ShareAmount uint64 `json:"ShareAmount"`
}

// NewTransferShares creates a new TransferShares operation
func NewTransferShares(account string, companyID uint64, receiver string, shareAmount uint64) *TransferShares {
	return &TransferShares{
		BaseTx:      *tx.NewBaseTx(tx.TypeTransferShares, account),
		CompanyID:   companyID,
		Receiver:    receiver,
		ShareAmount: shareAmount,
	}
}

// TxType returns the operation type
func (t *TransferShares) TxType() tx.Type {
	return tx.TypeTransferShares
}

// Validate checks the receiver address.
func (t *TransferShares) Validate() error {
	if err := t.BaseTx.Validate(); err != nil {
		return err
	}
	if _, err := tx.DecodeAddress("Receiver", t.Receiver); err != nil {
		return err
	}
	return nil
}

// Apply debits the sender's position and credits the receiver's, creating
// it if needed. The sender's holdings are encrypted and are not checked.
func (t *TransferShares) Apply(ctx *tx.ApplyContext) tx.Result {
	receiver, err := tx.DecodeAddress("Receiver", t.Receiver)
	if err != nil {
		return ctx.Reject(tx.TemBAD_ACCOUNT, "%v", err)
	}

	sender, r := ctx.ExistingPosition(t.CompanyID, ctx.AccountID)
	if r != tx.TesSUCCESS {
		return r
	}

	amount, err := ctx.Ops.LiftU64(ctx.Context, t.ShareAmount)
	if err != nil {
		return ctx.Fail(err)
	}
	if sender.Shares, err = ctx.Ops.Debit(ctx.Context, sender.Shares, amount); err != nil {
		return ctx.Fail(err)
	}
	if r := ctx.Share(sender.Shares, ctx.AccountID); r != tx.TesSUCCESS {
		return r
	}
	if r := ctx.Put(keylet.Position(t.CompanyID, ctx.AccountID), sender, true); r != tx.TesSUCCESS {
		return r
	}

	// Re-read after the sender write so a transfer to self sees it.
	dest, exists, r := ctx.Position(t.CompanyID, receiver)
	if r != tx.TesSUCCESS {
		return r
	}
	if dest.Shares, err = ctx.Ops.Credit(ctx.Context, dest.Shares, amount); err != nil {
		return ctx.Fail(err)
	}
	if r := ctx.Share(dest.Shares, receiver); r != tx.TesSUCCESS {
		return r
	}
	return ctx.Put(keylet.Position(t.CompanyID, receiver), dest, exists)
}
