package testing

import (
	"github.com/adipundir/donatrade/internal/core/ledger/state"
	"github.com/adipundir/donatrade/internal/core/tx"
)

// TxResult represents the result of applying an operation.
type TxResult struct {
	// Code is the engine result code (e.g., "tesSUCCESS").
	Code string

	// Success indicates whether the operation was committed.
	Success bool

	// Message provides additional details about the result.
	Message string

	// Metadata lists the accounts the operation created or modified.
	Metadata *state.Metadata

	Result tx.Result
}

func resultFrom(res tx.ApplyResult) TxResult {
	return TxResult{
		Code:     res.Result.String(),
		Success:  res.Applied,
		Message:  res.Message,
		Metadata: res.Metadata,
		Result:   res.Result,
	}
}

// Result codes as strings, for assertions.
const (
	tesSUCCESS = "tesSUCCESS"

	TecUNINITIALIZED       = "tecUNINITIALIZED"
	TecOVERFLOW            = "tecOVERFLOW"
	TecINACTIVE            = "tecINACTIVE"
	TecINSUFFICIENT_SHARES = "tecINSUFFICIENT_SHARES"
	TecUNAUTHORIZED        = "tecUNAUTHORIZED"
	TecCUSTODY_FAILED      = "tecCUSTODY_FAILED"

	TefALREADY_INITIALIZED = "tefALREADY_INITIALIZED"
	TefORACLE              = "tefORACLE"

	TemMALFORMED   = "temMALFORMED"
	TemBAD_AMOUNT  = "temBAD_AMOUNT"
	TemBAD_ACCOUNT = "temBAD_ACCOUNT"
)
