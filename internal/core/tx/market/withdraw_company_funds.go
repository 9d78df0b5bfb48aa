package market

import (
	"github.com/adipundir/donatrade/internal/core/ledger/keylet"
	"github.com/adipundir/donatrade/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeWithdrawCompanyFunds, func() tx.Transaction {
		return &WithdrawCompanyFunds{BaseTx: *tx.NewBaseTx(tx.TypeWithdrawCompanyFunds, "")}
	})
}

// WithdrawCompanyFunds pays part of a company's encrypted revenue out of
// the platform vault to the company admin.
//
// As with investor withdrawals the revenue is encrypted and cannot be
// checked for sufficiency.
type WithdrawCompanyFunds struct {
	tx.BaseTx

	CompanyID uint64 `json:"CompanyID"`
	Amount    uint64 `json:"Amount"`
}

// NewWithdrawCompanyFunds creates a new WithdrawCompanyFunds operation
func NewWithdrawCompanyFunds(account string, companyID, amount uint64) *WithdrawCompanyFunds {
	return &WithdrawCompanyFunds{
		BaseTx:    *tx.NewBaseTx(tx.TypeWithdrawCompanyFunds, account),
		CompanyID: companyID,
		Amount:    amount,
	}
}

// TxType returns the operation type
func (w *WithdrawCompanyFunds) TxType() tx.Type {
	return tx.TypeWithdrawCompanyFunds
}

// Apply debits company revenue and pays the admin.
func (w *WithdrawCompanyFunds) Apply(ctx *tx.ApplyContext) tx.Result {
	company, r := ctx.Company(w.CompanyID)
	if r != tx.TesSUCCESS {
		return r
	}
	if company.Admin != ctx.AccountID {
		return ctx.Reject(tx.TecUNAUTHORIZED, "signer is not the admin of company %d", w.CompanyID)
	}
	gv, r := ctx.GlobalVault()
	if r != tx.TesSUCCESS {
		return r
	}

	amount, err := ctx.Ops.LiftU64(ctx.Context, w.Amount)
	if err != nil {
		return ctx.Fail(err)
	}
	if company.Revenue, err = ctx.Ops.Debit(ctx.Context, company.Revenue, amount); err != nil {
		return ctx.Fail(err)
	}
	if r := ctx.Share(company.Revenue, company.Admin); r != tx.TesSUCCESS {
		return r
	}
	if r := ctx.Put(keylet.Company(w.CompanyID), company, true); r != tx.TesSUCCESS {
		return r
	}

	return ctx.Transfer(gv.Authority, company.Admin, gv.Authority, w.Amount)
}
