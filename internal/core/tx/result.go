package tx

import "fmt"

// Result represents an operation result code
type Result int

// Result codes. tes is success; tec is a failure detected while applying
// against ledger state; tef is a failure of the engine or a collaborator;
// ter is an operation that may succeed if submitted later; tem is a
// malformed operation rejected before touching state.
const (
	TesSUCCESS Result = 0

	TecUNINITIALIZED       Result = 100
	TecOVERFLOW            Result = 101
	TecINACTIVE            Result = 102
	TecINSUFFICIENT_SHARES Result = 103
	TecINSUFFICIENT_FUNDS  Result = 104
	TecUNAUTHORIZED        Result = 105
	TecCUSTODY_FAILED      Result = 106

	TefFAILURE             Result = -199
	TefALREADY_INITIALIZED Result = -198
	TefORACLE              Result = -197
	TefINTERNAL            Result = -192
	TefPAST_SEQ            Result = -190

	TerPRE_SEQ Result = -92

	TemMALFORMED   Result = -299
	TemBAD_AMOUNT  Result = -298
	TemBAD_ACCOUNT Result = -297
	TemUNKNOWN     Result = -296
)

// String returns the string representation of the result code
func (r Result) String() string {
	switch r {
	case TesSUCCESS:
		return "tesSUCCESS"
	case TecUNINITIALIZED:
		return "tecUNINITIALIZED"
	case TecOVERFLOW:
		return "tecOVERFLOW"
	case TecINACTIVE:
		return "tecINACTIVE"
	case TecINSUFFICIENT_SHARES:
		return "tecINSUFFICIENT_SHARES"
	case TecINSUFFICIENT_FUNDS:
		return "tecINSUFFICIENT_FUNDS"
	case TecUNAUTHORIZED:
		return "tecUNAUTHORIZED"
	case TecCUSTODY_FAILED:
		return "tecCUSTODY_FAILED"
	case TefFAILURE:
		return "tefFAILURE"
	case TefALREADY_INITIALIZED:
		return "tefALREADY_INITIALIZED"
	case TefORACLE:
		return "tefORACLE"
	case TefINTERNAL:
		return "tefINTERNAL"
	case TefPAST_SEQ:
		return "tefPAST_SEQ"
	case TerPRE_SEQ:
		return "terPRE_SEQ"
	case TemMALFORMED:
		return "temMALFORMED"
	case TemBAD_AMOUNT:
		return "temBAD_AMOUNT"
	case TemBAD_ACCOUNT:
		return "temBAD_ACCOUNT"
	case TemUNKNOWN:
		return "temUNKNOWN"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// Message returns a human-readable description of the result
func (r Result) Message() string {
	switch r {
	case TesSUCCESS:
		return "The operation was applied."
	case TecUNINITIALIZED:
		return "Account is not initialized."
	case TecOVERFLOW:
		return "Arithmetic overflow."
	case TecINACTIVE:
		return "Company or offer is inactive."
	case TecINSUFFICIENT_SHARES:
		return "Not enough shares available."
	case TecINSUFFICIENT_FUNDS:
		return "Insufficient funds."
	case TecUNAUTHORIZED:
		return "Signer is not authorized for this operation."
	case TecCUSTODY_FAILED:
		return "Custody transfer failed."
	case TefFAILURE:
		return "Failed to apply."
	case TefALREADY_INITIALIZED:
		return "Account already exists."
	case TefORACLE:
		return "Confidential-compute oracle call failed."
	case TefINTERNAL:
		return "Internal error."
	case TefPAST_SEQ:
		return "This sequence number has already passed."
	case TerPRE_SEQ:
		return "Missing/inapplicable prior operation."
	case TemMALFORMED:
		return "Malformed operation."
	case TemBAD_AMOUNT:
		return "Amount must be positive."
	case TemBAD_ACCOUNT:
		return "Malformed account address."
	case TemUNKNOWN:
		return "Unknown operation type."
	default:
		return "Unknown result."
	}
}

// IsSuccess returns true if the result indicates success
func (r Result) IsSuccess() bool {
	return r == TesSUCCESS
}

// IsTec returns true for failures detected against ledger state
func (r Result) IsTec() bool {
	return r >= 100 && r < 200
}

// IsTef returns true for engine and collaborator failures
func (r Result) IsTef() bool {
	return r >= -199 && r <= -100
}

// IsTer returns true for operations that may apply once earlier ones have
func (r Result) IsTer() bool {
	return r >= -99 && r <= -1
}

// IsTem returns true for malformed operations
func (r Result) IsTem() bool {
	return r >= -299 && r <= -200
}
