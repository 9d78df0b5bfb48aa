package escrow

import (
	"fmt"

	"github.com/adipundir/donatrade/internal/core/ledger/keylet"
	"github.com/adipundir/donatrade/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeExecuteTrade, func() tx.Transaction {
		return &ExecuteTrade{BaseTx: *tx.NewBaseTx(tx.TypeExecuteTrade, "")}
	})
}

// ExecuteTrade takes an active offer: the buyer pays the seller and
// receives the escrowed shares.
type ExecuteTrade struct {
	tx.BaseTx

	// Seller is the address that created the offer (required)
	Seller string `json:"Seller"`

	OfferID uint64 `json:"OfferID"`
}

// NewExecuteTrade creates a new ExecuteTrade operation
func NewExecuteTrade(account, seller string, offerID uint64) *ExecuteTrade {
	return &ExecuteTrade{
		BaseTx:  *tx.NewBaseTx(tx.TypeExecuteTrade, account),
		Seller:  seller,
		OfferID: offerID,
	}
}

// TxType returns the operation type
func (e *ExecuteTrade) TxType() tx.Type {
	return tx.TypeExecuteTrade
}

// Validate checks the seller address.
func (e *ExecuteTrade) Validate() error {
	if err := e.BaseTx.Validate(); err != nil {
		return err
	}
	if _, err := tx.DecodeAddress("Seller", e.Seller); err != nil {
		return err
	}
	return nil
}

// Apply settles the offer. It writes four accounts: the offer, the buyer's
// vault, the seller's vault and the buyer's position. None of them is
// visible to anyone until all four are committed together.
func (e *ExecuteTrade) Apply(ctx *tx.ApplyContext) tx.Result {
	seller, err := tx.DecodeAddress("Seller", e.Seller)
	if err != nil {
		return ctx.Reject(tx.TemBAD_ACCOUNT, "%v", err)
	}

	offerKey := keylet.Offer(seller, e.OfferID)
	offer, r := ctx.Offer(seller, e.OfferID)
	if r != tx.TesSUCCESS {
		return r
	}
	escrowed, active := offer.Escrow.Held()
	if !active {
		return ctx.Reject(tx.TecINACTIVE, "offer %d is settled", e.OfferID)
	}
	cost, err := offer.Cost()
	if err != nil {
		return ctx.Fail(fmt.Errorf("cost of offer %d: %w", e.OfferID, err))
	}
	if _, r := ctx.Company(offer.CompanyID); r != tx.TesSUCCESS {
		return r
	}

	ops := ctx.Ops
	eCost, err := ops.LiftU64(ctx.Context, cost)
	if err != nil {
		return ctx.Fail(err)
	}

	// Buyer pays.
	buyerVault, r := ctx.ExistingVault(ctx.AccountID)
	if r != tx.TesSUCCESS {
		return r
	}
	if buyerVault.Balance, err = ops.Debit(ctx.Context, buyerVault.Balance, eCost); err != nil {
		return ctx.Fail(err)
	}
	if r := ctx.Share(buyerVault.Balance, ctx.AccountID); r != tx.TesSUCCESS {
		return r
	}
	if r := ctx.Put(keylet.InvestorVault(ctx.AccountID), buyerVault, true); r != tx.TesSUCCESS {
		return r
	}

	// Seller is paid.
	sellerVault, sellerExists, r := ctx.Vault(seller)
	if r != tx.TesSUCCESS {
		return r
	}
	if sellerVault.Balance, err = ops.Credit(ctx.Context, sellerVault.Balance, eCost); err != nil {
		return ctx.Fail(err)
	}
	if r := ctx.Share(sellerVault.Balance, seller); r != tx.TesSUCCESS {
		return r
	}
	if r := ctx.Put(keylet.InvestorVault(seller), sellerVault, sellerExists); r != tx.TesSUCCESS {
		return r
	}

	// Escrowed shares go to the buyer as they are, not re-lifted.
	position, posExists, r := ctx.Position(offer.CompanyID, ctx.AccountID)
	if r != tx.TesSUCCESS {
		return r
	}
	if position.Shares, err = ops.Credit(ctx.Context, position.Shares, escrowed); err != nil {
		return ctx.Fail(err)
	}
	if r := ctx.Share(position.Shares, ctx.AccountID); r != tx.TesSUCCESS {
		return r
	}
	if r := ctx.Put(keylet.Position(offer.CompanyID, ctx.AccountID), position, posExists); r != tx.TesSUCCESS {
		return r
	}

	zero, err := ops.Zero(ctx.Context)
	if err != nil {
		return ctx.Fail(err)
	}
	if _, err := offer.Escrow.Settle(zero); err != nil {
		return ctx.Fail(err)
	}
	if r := ctx.Share(zero, seller); r != tx.TesSUCCESS {
		return r
	}
	return ctx.Put(offerKey, offer, true)
}
