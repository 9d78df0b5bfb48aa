package tx

import (
	"errors"
	"fmt"

	"github.com/adipundir/donatrade/internal/core/encrypted"
	"github.com/adipundir/donatrade/internal/core/ledger/entry/entries"
	"github.com/adipundir/donatrade/internal/core/ledger/state"
	"github.com/adipundir/donatrade/internal/custody"
)

// OperationError is the caller-visible failure of an operation.
type OperationError struct {
	Operation string
	Result    Result
	Detail    string
}

func (e *OperationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Operation, e.Result, e.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", e.Operation, e.Result, e.Result.Message())
}

// ResultOf extracts the result code carried by err, or TefINTERNAL.
func ResultOf(err error) Result {
	var oe *OperationError
	if errors.As(err, &oe) {
		return oe.Result
	}
	return TefINTERNAL
}

// ResultFromError maps a failure raised while applying to its result code.
func ResultFromError(err error) Result {
	switch {
	case err == nil:
		return TesSUCCESS
	case encrypted.IsOracleError(err):
		return TefORACLE
	case custody.IsCustodyError(err):
		return TecCUSTODY_FAILED
	case errors.Is(err, state.ErrEntryExists):
		return TefALREADY_INITIALIZED
	case errors.Is(err, entries.ErrOverflow):
		return TecOVERFLOW
	case errors.Is(err, entries.ErrInsufficientShares):
		return TecINSUFFICIENT_SHARES
	case errors.Is(err, entries.ErrEscrowSettled):
		return TecINACTIVE
	}
	return TefINTERNAL
}

// parseValidationError maps a Validate error to a tem code.
func parseValidationError(err error) Result {
	switch {
	case errors.Is(err, ErrInvalidAccount):
		return TemBAD_ACCOUNT
	}
	return TemMALFORMED
}
