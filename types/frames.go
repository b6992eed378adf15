package types

import "encoding/json"

// Wire frames. One JSON object per newline-terminated line, UTF-8.

// StatusFrame is the periodic (and post-command) report.
type StatusFrame struct {
	Type       string       `json:"type"` // "status"
	CPMv       int          `json:"cp_mv"`
	CPMvRobust int          `json:"cp_mv_robust"`
	State      string       `json:"state"`
	Mode       string       `json:"mode"`
	PWM        PWMStatus    `json:"pwm"`
	Thresh     ThresholdSet `json:"thresh"`
}

// PWMStatus reports the requested manual duty and the effective output
// duty actually applied on the line.
type PWMStatus struct {
	Enabled bool   `json:"enabled"`
	Duty    int    `json:"duty"`
	Hz      uint32 `json:"hz"`
	Out     int    `json:"out"`
}

// ErrorFrame is the legacy error report.
type ErrorFrame struct {
	Type string `json:"type"` // "error"
	Msg  string `json:"msg"`
}

// OKFrame acknowledges a legacy command that has no richer payload.
type OKFrame struct {
	Type string `json:"type"` // "ok" or "pong"
	Cmd  string `json:"cmd,omitempty"`
}

// ScanFrame is the cp.scan diagnostic snapshot: raw millivolts per
// analog channel.
type ScanFrame struct {
	Type string         `json:"type"` // "scan"
	Mv   map[string]int `json:"mv"`
}

// RPCRequest is the JSON-RPC style peripheral request.
// The id is kept raw and echoed back verbatim so integer and string
// correlation ids both survive the round trip.
type RPCRequest struct {
	Type   string          `json:"type"` // "req"
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// RPCError carries the reserved JSON-RPC codes (-32600, -32601, ...) and
// the firmware-specific ones (1001 not_armed, 1002 aux_mismatch).
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RPCResponse correlates to a request by id only; exactly one of Result
// and Error is set.
type RPCResponse struct {
	Type   string          `json:"type"` // "res"
	ID     json.RawMessage `json:"id"`
	TS     int64           `json:"ts"`
	Result any             `json:"result,omitempty"`
	Error  *RPCError       `json:"error,omitempty"`
}

// EventFrame is an async push: streamed meter/temperature ticks and the
// keepalive failsafe notification.
type EventFrame struct {
	Type   string `json:"type"` // "evt"
	TS     int64  `json:"ts"`
	ID     int    `json:"id"` // always 0
	Method string `json:"method"`
	Result any    `json:"result"`
}
