package market

import (
	"fmt"

	"github.com/adipundir/donatrade/internal/core/ledger/keylet"
	"github.com/adipundir/donatrade/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeBuyShares, func() tx.Transaction {
		return &BuyShares{BaseTx: *tx.NewBaseTx(tx.TypeBuyShares, "")}
	})
}

// BuyShares buys shares from a company's own inventory at its listed price.
type BuyShares struct {
	tx.BaseTx

	CompanyID   uint64 `json:"CompanyID"`
	ShareAmount uint64 `json:"ShareAmount"`
}

// NewBuyShares creates a new BuyShares operation
func NewBuyShares(account string, companyID, shareAmount uint64) *BuyShares {
	return &BuyShares{
		BaseTx:      *tx.NewBaseTx(tx.TypeBuyShares, account),
		CompanyID:   companyID,
		ShareAmount: shareAmount,
	}
}

// TxType returns the operation type
func (b *BuyShares) TxType() tx.Type {
	return tx.TypeBuyShares
}

// Apply debits the buyer's vault by the plaintext cost, credits company
// revenue and the buyer's position, and takes the shares out of the
// company's inventory.
//
// The cost is multiplied in plaintext and then lifted, so the trade size
// of a purchase is public.
func (b *BuyShares) Apply(ctx *tx.ApplyContext) tx.Result {
	company, r := ctx.Company(b.CompanyID)
	if r != tx.TesSUCCESS {
		return r
	}
	if !company.Active {
		return ctx.Reject(tx.TecINACTIVE, "company %d is not active", b.CompanyID)
	}
	if company.SharesAvailable < b.ShareAmount {
		return ctx.Reject(tx.TecINSUFFICIENT_SHARES, "company %d has %d shares available, need %d",
			b.CompanyID, company.SharesAvailable, b.ShareAmount)
	}
	cost, err := company.Cost(b.ShareAmount)
	if err != nil {
		return ctx.Fail(fmt.Errorf("cost of %d shares at %d: %w", b.ShareAmount, company.PricePerShare, err))
	}

	vault, r := ctx.ExistingVault(ctx.AccountID)
	if r != tx.TesSUCCESS {
		return r
	}
	position, posExists, r := ctx.Position(b.CompanyID, ctx.AccountID)
	if r != tx.TesSUCCESS {
		return r
	}

	ops := ctx.Ops
	eCost, err := ops.LiftU64(ctx.Context, cost)
	if err != nil {
		return ctx.Fail(err)
	}
	if vault.Balance, err = ops.Debit(ctx.Context, vault.Balance, eCost); err != nil {
		return ctx.Fail(err)
	}
	if r := ctx.Share(vault.Balance, ctx.AccountID); r != tx.TesSUCCESS {
		return r
	}
	if company.Revenue, err = ops.Credit(ctx.Context, company.Revenue, eCost); err != nil {
		return ctx.Fail(err)
	}
	if r := ctx.Share(company.Revenue, company.Admin); r != tx.TesSUCCESS {
		return r
	}

	eShares, err := ops.LiftU64(ctx.Context, b.ShareAmount)
	if err != nil {
		return ctx.Fail(err)
	}
	if position.Shares, err = ops.Credit(ctx.Context, position.Shares, eShares); err != nil {
		return ctx.Fail(err)
	}
	if r := ctx.Share(position.Shares, ctx.AccountID); r != tx.TesSUCCESS {
		return r
	}

	if err := company.ReserveShares(b.ShareAmount); err != nil {
		return ctx.Fail(err)
	}

	if r := ctx.Put(keylet.InvestorVault(ctx.AccountID), vault, true); r != tx.TesSUCCESS {
		return r
	}
	if r := ctx.Put(keylet.Company(b.CompanyID), company, true); r != tx.TesSUCCESS {
		return r
	}
	return ctx.Put(keylet.Position(b.CompanyID, ctx.AccountID), position, posExists)
}
