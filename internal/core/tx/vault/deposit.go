package vault

import (
	"github.com/adipundir/donatrade/internal/core/ledger/keylet"
	"github.com/adipundir/donatrade/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeDeposit, func() tx.Transaction {
		return &Deposit{BaseTx: *tx.NewBaseTx(tx.TypeDeposit, "")}
	})
}

// Deposit moves settlement tokens into the platform vault and credits the
// signer's encrypted cash balance.
type Deposit struct {
	tx.BaseTx

	Amount uint64 `json:"Amount"`
}

// NewDeposit creates a new Deposit operation
func NewDeposit(account string, amount uint64) *Deposit {
	return &Deposit{
		BaseTx: *tx.NewBaseTx(tx.TypeDeposit, account),
		Amount: amount,
	}
}

// TxType returns the operation type
func (d *Deposit) TxType() tx.Type {
	return tx.TypeDeposit
}

// Apply transfers the tokens first; the vault is only credited once
// custody has accepted them.
func (d *Deposit) Apply(ctx *tx.ApplyContext) tx.Result {
	gv, r := ctx.GlobalVault()
	if r != tx.TesSUCCESS {
		return r
	}

	if r := ctx.Transfer(ctx.AccountID, gv.Authority, ctx.AccountID, d.Amount); r != tx.TesSUCCESS {
		return r
	}

	amount, err := ctx.Ops.LiftU64(ctx.Context, d.Amount)
	if err != nil {
		return ctx.Fail(err)
	}

	vault, exists, r := ctx.Vault(ctx.AccountID)
	if r != tx.TesSUCCESS {
		return r
	}
	vault.Balance, err = ctx.Ops.Credit(ctx.Context, vault.Balance, amount)
	if err != nil {
		return ctx.Fail(err)
	}
	if r := ctx.Share(vault.Balance, ctx.AccountID); r != tx.TesSUCCESS {
		return r
	}
	return ctx.Put(keylet.InvestorVault(ctx.AccountID), vault, exists)
}
