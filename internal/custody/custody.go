// Package custody moves plaintext settlement tokens between owners. The
// ledger calls it for deposits and withdrawals; transfers are staged in
// the same view as the ledger's own writes so both commit together.
package custody

import (
	"context"
	"errors"

	"github.com/adipundir/donatrade/internal/core/ledger/state"
)

var (
	ErrInsufficientTokens = errors.New("insufficient token balance")
	ErrUnauthorized       = errors.New("authority does not own source account")
	ErrNoTokenAccount     = errors.New("token account does not exist")
	ErrZeroAmount         = errors.New("fund amount must be positive")
	ErrFaucetDisabled     = errors.New("faucet disabled")
)

//go:generate mockgen -source=custody.go -destination=mocks/custody.go -package=mocks

// Custody transfers tokens from one owner's account to another's. The
// authority must own the source account.
type Custody interface {
	Transfer(ctx context.Context, view state.View, from, to, authority [20]byte, amount uint64) error
}

// IsCustodyError reports whether err came from the custody mechanism.
func IsCustodyError(err error) bool {
	for _, target := range []error{ErrInsufficientTokens, ErrUnauthorized, ErrNoTokenAccount, ErrZeroAmount, ErrFaucetDisabled} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// AccountOpener is implemented by custody mechanisms that need an account
// opened before it can receive tokens.
type AccountOpener interface {
	OpenAccount(view state.View, owner [20]byte) error
}
