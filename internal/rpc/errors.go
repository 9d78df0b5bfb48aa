package rpc

import "fmt"

// RpcError represents an RPC error with code and message
type RpcError struct {
	Code        int    `json:"error_code"`
	ErrorString string `json:"error"`
	Type        string `json:"type"`
	Message     string `json:"error_message,omitempty"`
}

func (e *RpcError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorString
}

// Error codes
const (
	RpcJSON_RPC         = -32600
	RpcMETHOD_NOT_FOUND = -32601
	RpcINVALID_PARAMS   = -32602
	RpcINTERNAL         = -32603

	RpcMISSING_COMMAND  = 2
	RpcENTRY_NOT_FOUND  = 21
	RpcSTREAM_MALFORMED = 26
	RpcNOT_ENABLED      = 31
	RpcACT_MALFORMED    = 50
	RpcBAD_SIGNATURE    = 60
	RpcALREADY_APPLIED  = 61
)

// NewRpcError creates an RpcError
func NewRpcError(code int, errorString, errorType, message string) *RpcError {
	return &RpcError{
		Code:        code,
		ErrorString: errorString,
		Type:        errorType,
		Message:     message,
	}
}

func RpcErrorMethodNotFound(method string) *RpcError {
	return NewRpcError(RpcMETHOD_NOT_FOUND, "unknownCmd", "unknownCmd", fmt.Sprintf("Unknown method '%s'", method))
}

func RpcErrorInvalidParams(message string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", "invalidParams", message)
}

func RpcErrorMissingCommand() *RpcError {
	return NewRpcError(RpcMISSING_COMMAND, "missingCommand", "missingCommand", "Missing command field")
}

func RpcErrorInternal(message string) *RpcError {
	return NewRpcError(RpcINTERNAL, "internal", "internal", message)
}

func RpcErrorEntryNotFound(what string) *RpcError {
	return NewRpcError(RpcENTRY_NOT_FOUND, "entryNotFound", "entryNotFound", what+" not found")
}

func RpcErrorActMalformed(address string) *RpcError {
	return NewRpcError(RpcACT_MALFORMED, "actMalformed", "actMalformed", fmt.Sprintf("Account malformed: %s", address))
}

func RpcErrorBadSignature(message string) *RpcError {
	return NewRpcError(RpcBAD_SIGNATURE, "badSignature", "badSignature", message)
}

func RpcErrorNotEnabled(feature string) *RpcError {
	return NewRpcError(RpcNOT_ENABLED, "notEnabled", "notEnabled", feature+" is not enabled on this server")
}

func RpcErrorStreamMalformed(message string) *RpcError {
	return NewRpcError(RpcSTREAM_MALFORMED, "streamMalformed", "streamMalformed", message)
}
