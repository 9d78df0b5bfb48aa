package encrypted

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnknownHandle is returned when an operand does not reference a
	// ciphertext known to the oracle.
	ErrUnknownHandle = errors.New("unknown encrypted handle")

	// ErrNotAllowed is returned when an identity lacks the allowance a
	// request needs.
	ErrNotAllowed = errors.New("identity not allowed for handle")
)

//go:generate mockgen -source=oracle.go -destination=mocks/oracle.go -package=mocks

// Oracle is the confidential-compute collaborator. Every operation is
// attributed to a signer and may fail; a failure aborts the surrounding
// ledger operation.
//
// Handles returned by Lift, Add, Sub and Mul carry no view allowance. The
// ledger hands views out with Allow, only to the owners of the accounts a
// result is stored in.
type Oracle interface {
	// Lift encrypts a public plaintext into a new handle.
	Lift(ctx context.Context, signer [20]byte, value Uint128) (Handle, error)

	// Add returns a handle to a+b.
	Add(ctx context.Context, signer [20]byte, a, b Handle) (Handle, error)

	// Sub returns a handle to a-b. Underflow behaviour is defined by the
	// oracle; it is never clamped here.
	Sub(ctx context.Context, signer [20]byte, a, b Handle) (Handle, error)

	// Mul returns a handle to a*b.
	Mul(ctx context.Context, signer [20]byte, a, b Handle) (Handle, error)

	// Allow gives id a view of handle on behalf of the ledger.
	Allow(ctx context.Context, handle Handle, id [20]byte) error

	// GrantView authorizes target to decrypt handle. authorizing must
	// itself hold an allowance for the handle.
	GrantView(ctx context.Context, handle Handle, authorizing, target [20]byte) error
}

// Decrypter reveals plaintexts to identities holding a view allowance.
// The ledger itself never decrypts.
type Decrypter interface {
	Decrypt(ctx context.Context, handle Handle, viewer [20]byte) (Uint128, error)
}

// OracleError records which oracle call failed.
type OracleError struct {
	Op  string
	Err error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle %s: %v", e.Op, e.Err)
}

func (e *OracleError) Unwrap() error {
	return e.Err
}

// IsOracleError reports whether err came from an oracle call.
func IsOracleError(err error) bool {
	var oe *OracleError
	return errors.As(err, &oe)
}
