package custody

import (
	"context"
	"fmt"

	"github.com/adipundir/donatrade/internal/core/ledger/entry/entries"
	"github.com/adipundir/donatrade/internal/core/ledger/keylet"
	"github.com/adipundir/donatrade/internal/core/ledger/state"
)

// TokenProgram keeps plaintext token balances as ledger entries.
type TokenProgram struct {
	faucet bool
}

// NewTokenProgram returns a token program. The faucet mints tokens on
// request and is meant for devnet deployments only.
func NewTokenProgram(faucet bool) *TokenProgram {
	return &TokenProgram{faucet: faucet}
}

// Transfer moves amount from the account of from to the account of to,
// creating the destination account if needed. A zero amount is a valid
// transfer and still requires the source account and its authority.
func (p *TokenProgram) Transfer(ctx context.Context, view state.View, from, to, authority [20]byte, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if authority != from {
		return ErrUnauthorized
	}

	var src entries.TokenAccount
	found, err := state.Load(view, keylet.TokenAccount(from), &src)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: source", ErrNoTokenAccount)
	}
	if src.Balance < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientTokens, src.Balance, amount)
	}

	if from == to {
		return nil
	}

	var dst entries.TokenAccount
	dstExists, err := state.Load(view, keylet.TokenAccount(to), &dst)
	if err != nil {
		return err
	}
	credited, ok := entries.CheckedAdd(dst.Balance, amount)
	if !ok {
		return entries.ErrOverflow
	}

	src.Balance -= amount
	dst.Owner = to
	dst.Balance = credited

	if err := state.Save(view, keylet.TokenAccount(from), &src); err != nil {
		return err
	}
	return state.Put(view, keylet.TokenAccount(to), &dst, dstExists)
}

// OpenAccount creates an empty token account for owner if none exists.
func (p *TokenProgram) OpenAccount(view state.View, owner [20]byte) error {
	exists, err := view.Exists(keylet.TokenAccount(owner))
	if err != nil || exists {
		return err
	}
	return state.Create(view, keylet.TokenAccount(owner), &entries.TokenAccount{Owner: owner})
}

// Fund mints amount into owner's account.
func (p *TokenProgram) Fund(view state.View, owner [20]byte, amount uint64) error {
	if !p.faucet {
		return ErrFaucetDisabled
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	var acct entries.TokenAccount
	exists, err := state.Load(view, keylet.TokenAccount(owner), &acct)
	if err != nil {
		return err
	}
	balance, ok := entries.CheckedAdd(acct.Balance, amount)
	if !ok {
		return entries.ErrOverflow
	}
	acct.Owner = owner
	acct.Balance = balance
	return state.Put(view, keylet.TokenAccount(owner), &acct, exists)
}

// Balance returns the token balance of owner.
func Balance(view state.View, owner [20]byte) (uint64, bool, error) {
	var acct entries.TokenAccount
	found, err := state.Load(view, keylet.TokenAccount(owner), &acct)
	if err != nil || !found {
		return 0, found, err
	}
	return acct.Balance, true, nil
}
