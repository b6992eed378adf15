package errcode

// Code is a stable, wire-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
// Legacy error frames carry it verbatim in "msg"; RPC error objects carry
// it in "message" alongside the numeric code from RPCCode.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Protocol errors: malformed input, always recoverable.
	BadJSON        Code = "bad_json"
	MissingCmd     Code = "missing_cmd"
	UnknownCmd     Code = "unknown_cmd"
	InvalidRequest Code = "invalid_request"
	UnknownMethod  Code = "unknown_method"

	// Policy violations: well-formed but rejected, no state mutated.
	ModeDCAuto    Code = "mode_dc_auto"
	BadMode       Code = "bad_mode"
	BadThresholds Code = "bad_thresholds"
	BadParams     Code = "bad_params"

	// Safety violations: actuators forced to their safe state.
	NotArmed    Code = "not_armed"
	AuxMismatch Code = "aux_mismatch"

	// Calibration failure: prior configuration untouched.
	CalFailed Code = "cal_failed"

	Error Code = "error" // generic fallback
)

// RPC numeric codes. The -326xx values are JSON-RPC reserved codes and
// must be preserved verbatim for interoperability.
const (
	RPCInvalidRequest = -32600
	RPCUnknownMethod  = -32601
	RPCNotArmed       = 1001
	RPCAuxMismatch    = 1002
	RPCBadParams      = 1003
	RPCInternal       = -32603
)

// RPCCode maps a Code to its numeric RPC error code.
func RPCCode(c Code) int {
	switch c {
	case InvalidRequest:
		return RPCInvalidRequest
	case UnknownMethod:
		return RPCUnknownMethod
	case NotArmed:
		return RPCNotArmed
	case AuxMismatch:
		return RPCAuxMismatch
	case BadParams, BadMode:
		return RPCBadParams
	default:
		return RPCInternal
	}
}

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
