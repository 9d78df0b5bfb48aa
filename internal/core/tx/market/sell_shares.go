package market

import (
	"fmt"

	"github.com/adipundir/donatrade/internal/core/ledger/keylet"
	"github.com/adipundir/donatrade/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeSellShares, func() tx.Transaction {
		return &SellShares{BaseTx: *tx.NewBaseTx(tx.TypeSellShares, "")}
	})
}

// SellShares sells shares back to the issuing company at its listed price.
type SellShares struct {
	tx.BaseTx

	CompanyID   uint64 `json:"CompanyID"`
	ShareAmount uint64 `json:"ShareAmount"`
}

// NewSellShares creates a new SellShares operation
func NewSellShares(account string, companyID, shareAmount uint64) *SellShares {
	return &SellShares{
		BaseTx:      *tx.NewBaseTx(tx.TypeSellShares, account),
		CompanyID:   companyID,
		ShareAmount: shareAmount,
	}
}

// TxType returns the operation type
func (s *SellShares) TxType() tx.Type {
	return tx.TypeSellShares
}

// Apply computes the proceeds as an encrypted product of the lifted share
// amount and price, moves them from company revenue into the seller's
// vault, and returns the shares to the company's inventory.
//
// Neither the position nor the revenue can be checked for sufficiency.
func (s *SellShares) Apply(ctx *tx.ApplyContext) tx.Result {
	company, r := ctx.Company(s.CompanyID)
	if r != tx.TesSUCCESS {
		return r
	}
	position, r := ctx.ExistingPosition(s.CompanyID, ctx.AccountID)
	if r != tx.TesSUCCESS {
		return r
	}
	vault, vaultExists, r := ctx.Vault(ctx.AccountID)
	if r != tx.TesSUCCESS {
		return r
	}

	ops := ctx.Ops
	eShares, err := ops.LiftU64(ctx.Context, s.ShareAmount)
	if err != nil {
		return ctx.Fail(err)
	}
	ePrice, err := ops.LiftU64(ctx.Context, company.PricePerShare)
	if err != nil {
		return ctx.Fail(err)
	}
	eValue, err := ops.Mul(ctx.Context, eShares, ePrice)
	if err != nil {
		return ctx.Fail(err)
	}

	if position.Shares, err = ops.Debit(ctx.Context, position.Shares, eShares); err != nil {
		return ctx.Fail(err)
	}
	if r := ctx.Share(position.Shares, ctx.AccountID); r != tx.TesSUCCESS {
		return r
	}
	if company.Revenue, err = ops.Debit(ctx.Context, company.Revenue, eValue); err != nil {
		return ctx.Fail(err)
	}
	if r := ctx.Share(company.Revenue, company.Admin); r != tx.TesSUCCESS {
		return r
	}
	if vault.Balance, err = ops.Credit(ctx.Context, vault.Balance, eValue); err != nil {
		return ctx.Fail(err)
	}
	if r := ctx.Share(vault.Balance, ctx.AccountID); r != tx.TesSUCCESS {
		return r
	}

	if err := company.ReturnShares(s.ShareAmount); err != nil {
		return ctx.Fail(fmt.Errorf("return %d shares to company %d: %w", s.ShareAmount, s.CompanyID, err))
	}

	if r := ctx.Put(keylet.Position(s.CompanyID, ctx.AccountID), position, true); r != tx.TesSUCCESS {
		return r
	}
	if r := ctx.Put(keylet.Company(s.CompanyID), company, true); r != tx.TesSUCCESS {
		return r
	}
	return ctx.Put(keylet.InvestorVault(ctx.AccountID), vault, vaultExists)
}
