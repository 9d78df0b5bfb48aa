package escrow

import (
	"github.com/adipundir/donatrade/internal/core/ledger/entry/entries"
	"github.com/adipundir/donatrade/internal/core/ledger/keylet"
	"github.com/adipundir/donatrade/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeCreateOffer, func() tx.Transaction {
		return &CreateOffer{BaseTx: *tx.NewBaseTx(tx.TypeCreateOffer, "")}
	})
}

// CreateOffer escrows shares out of the seller's position into a new offer
// that any buyer can take at the listed price.
type CreateOffer struct {
	tx.BaseTx

	CompanyID uint64 `json:"CompanyID"`

	// OfferID is chosen by the seller and must be unused for that seller
	OfferID uint64 `json:"OfferID"`

	ShareAmount   uint64 `json:"ShareAmount"`
	PricePerShare uint64 `json:"PricePerShare"`
}

// NewCreateOffer creates a new CreateOffer operation
func NewCreateOffer(account string, companyID, offerID, shareAmount, price uint64) *CreateOffer {
	return &CreateOffer{
		BaseTx:        *tx.NewBaseTx(tx.TypeCreateOffer, account),
		CompanyID:     companyID,
		OfferID:       offerID,
		ShareAmount:   shareAmount,
		PricePerShare: price,
	}
}

// TxType returns the operation type
func (c *CreateOffer) TxType() tx.Type {
	return tx.TypeCreateOffer
}

// Apply moves the lifted share amount from the seller's position into the
// offer's escrow.
//
// ShareAmount is trusted input: the seller's encrypted holdings cannot be
// compared against it.
func (c *CreateOffer) Apply(ctx *tx.ApplyContext) tx.Result {
	if _, r := ctx.Company(c.CompanyID); r != tx.TesSUCCESS {
		return r
	}
	position, r := ctx.ExistingPosition(c.CompanyID, ctx.AccountID)
	if r != tx.TesSUCCESS {
		return r
	}

	k := keylet.Offer(ctx.AccountID, c.OfferID)
	exists, err := ctx.View.Exists(k)
	if err != nil {
		return ctx.Fail(err)
	}
	if exists {
		return ctx.Reject(tx.TefALREADY_INITIALIZED, "offer %d already exists", c.OfferID)
	}

	eShares, err := ctx.Ops.LiftU64(ctx.Context, c.ShareAmount)
	if err != nil {
		return ctx.Fail(err)
	}
	if position.Shares, err = ctx.Ops.Debit(ctx.Context, position.Shares, eShares); err != nil {
		return ctx.Fail(err)
	}
	if r := ctx.Share(position.Shares, ctx.AccountID); r != tx.TesSUCCESS {
		return r
	}
	if r := ctx.Share(eShares, ctx.AccountID); r != tx.TesSUCCESS {
		return r
	}

	offer := &entries.OfferAccount{
		OfferID:       c.OfferID,
		Seller:        ctx.AccountID,
		CompanyID:     c.CompanyID,
		ShareAmount:   c.ShareAmount,
		PricePerShare: c.PricePerShare,
		Escrow:        entries.NewEscrow(eShares),
		Bump:          entries.DefaultBump,
	}

	if r := ctx.Put(keylet.Position(c.CompanyID, ctx.AccountID), position, true); r != tx.TesSUCCESS {
		return r
	}
	return ctx.Put(k, offer, false)
}
