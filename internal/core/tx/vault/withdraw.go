package vault

import (
	"github.com/adipundir/donatrade/internal/core/ledger/keylet"
	"github.com/adipundir/donatrade/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeWithdraw, func() tx.Transaction {
		return &Withdraw{BaseTx: *tx.NewBaseTx(tx.TypeWithdraw, "")}
	})
}

// Withdraw debits the signer's encrypted cash balance and pays the tokens
// out of the platform vault.
//
// The balance is encrypted so there is no sufficiency check here. What
// happens when Amount exceeds the balance is up to the oracle.
type Withdraw struct {
	tx.BaseTx

	Amount uint64 `json:"Amount"`
}

// NewWithdraw creates a new Withdraw operation
func NewWithdraw(account string, amount uint64) *Withdraw {
	return &Withdraw{
		BaseTx: *tx.NewBaseTx(tx.TypeWithdraw, account),
		Amount: amount,
	}
}

// TxType returns the operation type
func (w *Withdraw) TxType() tx.Type {
	return tx.TypeWithdraw
}

// Apply computes the encrypted debit before requesting the payout; both
// land in the same commit.
func (w *Withdraw) Apply(ctx *tx.ApplyContext) tx.Result {
	gv, r := ctx.GlobalVault()
	if r != tx.TesSUCCESS {
		return r
	}
	vault, r := ctx.ExistingVault(ctx.AccountID)
	if r != tx.TesSUCCESS {
		return r
	}

	amount, err := ctx.Ops.LiftU64(ctx.Context, w.Amount)
	if err != nil {
		return ctx.Fail(err)
	}
	vault.Balance, err = ctx.Ops.Debit(ctx.Context, vault.Balance, amount)
	if err != nil {
		return ctx.Fail(err)
	}
	if r := ctx.Share(vault.Balance, ctx.AccountID); r != tx.TesSUCCESS {
		return r
	}
	if r := ctx.Put(keylet.InvestorVault(ctx.AccountID), vault, true); r != tx.TesSUCCESS {
		return r
	}

	return ctx.Transfer(gv.Authority, ctx.AccountID, gv.Authority, w.Amount)
}
