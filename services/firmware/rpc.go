package firmware

import (
	"encoding/json"

	"cp-periph-go/errcode"
	"cp-periph-go/services/link"
	"cp-periph-go/types"
)

// capabilities advertised by sys.info.
var capabilities = []string{"cp", "contactor", "temps.gun_a", "temps.gun_b", "meter"}

// rpcID substitutes 0 for an absent request id so responses never carry
// "id":null.
func rpcID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("0")
	}
	return id
}

func (c *Core) rpcResult(transport string, id json.RawMessage, result any) {
	c.reply(transport, types.RPCResponse{
		Type:   "res",
		ID:     rpcID(id),
		TS:     c.clk.NowMs(),
		Result: result,
	})
}

func (c *Core) rpcError(transport string, id json.RawMessage, code errcode.Code) {
	c.reply(transport, types.RPCResponse{
		Type: "res",
		ID:   rpcID(id),
		TS:   c.clk.NowMs(),
		Error: &types.RPCError{
			Code:    errcode.RPCCode(code),
			Message: string(code),
		},
	})
}

func (c *Core) handleRPC(ln link.Line) {
	var req types.RPCRequest
	if err := json.Unmarshal([]byte(ln.Text), &req); err != nil {
		c.rpcError(ln.Transport, nil, errcode.InvalidRequest)
		return
	}
	if req.Method == "" {
		c.rpcError(ln.Transport, req.ID, errcode.InvalidRequest)
		return
	}

	switch req.Method {
	case "sys.ping":
		c.lock.NotePing()
		c.rpcResult(ln.Transport, req.ID, map[string]any{
			"up_ms": c.clk.NowMs() - c.bootMs,
			"mode":  c.sensors.Mode().String(),
			"temps": map[string]float64{"mcu": c.sys.MCUTempC()},
		})

	case "sys.info":
		c.rpcResult(ln.Transport, req.ID, map[string]any{
			"fw":           FirmwareID,
			"proto":        ProtoVersion,
			"mode":         c.sensors.Mode().String(),
			"capabilities": capabilities,
		})

	case "sys.arm":
		deadline := c.lock.Arm()
		c.rpcResult(ln.Transport, req.ID, map[string]int64{"armed_until_ms": deadline})

	case "sys.set_mode":
		var p struct {
			Mode string `json:"mode"`
		}
		if err := json.Unmarshal(req.Params, &p); err != nil {
			c.rpcError(ln.Transport, req.ID, errcode.BadParams)
			return
		}
		m, ok := types.ParsePeriphMode(p.Mode)
		if !ok {
			c.rpcError(ln.Transport, req.ID, errcode.BadMode)
			return
		}
		if err := c.sensors.SetMode(m); err != nil {
			c.rpcError(ln.Transport, req.ID, errcode.Of(err))
			return
		}
		c.rpcResult(ln.Transport, req.ID, map[string]string{"mode": m.String()})

	case "contactor.check":
		c.rpcResult(ln.Transport, req.ID, c.lock.Check())

	case "contactor.set":
		var p struct {
			On *bool `json:"on"`
		}
		if err := json.Unmarshal(req.Params, &p); err != nil || p.On == nil {
			c.rpcError(ln.Transport, req.ID, errcode.BadParams)
			return
		}
		if err := c.lock.Set(*p.On); err != nil {
			c.rpcError(ln.Transport, req.ID, errcode.Of(err))
			return
		}
		c.rpcResult(ln.Transport, req.ID, c.lock.Check())

	case "temps.read":
		r, err := c.sensors.ReadTemps()
		if err != nil {
			c.rpcError(ln.Transport, req.ID, errcode.Of(err))
			return
		}
		// Nested under "temps"; stream events carry the bare reading.
		c.rpcResult(ln.Transport, req.ID, map[string]types.TempsReading{"temps": r})

	case "meter.read":
		r, err := c.sensors.ReadMeter()
		if err != nil {
			c.rpcError(ln.Transport, req.ID, errcode.Of(err))
			return
		}
		c.rpcResult(ln.Transport, req.ID, r)

	case "meter.stream_start":
		c.meterStream.Start(c.clk.NowMs())
		c.rpcResult(ln.Transport, req.ID, streamState("meter", c.meterStream.Active()))
	case "meter.stream_stop":
		c.meterStream.Stop()
		c.rpcResult(ln.Transport, req.ID, streamState("meter", c.meterStream.Active()))
	case "temps.stream_start":
		c.tempsStream.Start(c.clk.NowMs())
		c.rpcResult(ln.Transport, req.ID, streamState("temps", c.tempsStream.Active()))
	case "temps.stream_stop":
		c.tempsStream.Stop()
		c.rpcResult(ln.Transport, req.ID, streamState("temps", c.tempsStream.Active()))

	default:
		c.rpcError(ln.Transport, req.ID, errcode.UnknownMethod)
	}
}

func streamState(name string, on bool) map[string]any {
	return map[string]any{"stream": name, "on": on}
}
