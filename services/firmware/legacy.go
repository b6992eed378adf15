package firmware

import (
	"encoding/json"
	"strconv"
	"time"

	"cp-periph-go/errcode"
	"cp-periph-go/services/link"
	"cp-periph-go/services/pilot"
	"cp-periph-go/types"
	"cp-periph-go/x/mathx"
)

const (
	slacHintDefaultMs = 400
	slacHintMinMs     = 50
	slacHintMaxMs     = 2000
)

// legacyFrame is the superset of every legacy command's fields.
// Pointers distinguish absent from zero.
type legacyFrame struct {
	Cmd    string  `json:"cmd"`
	Duty   *int    `json:"duty"`
	Enable *bool   `json:"enable"`
	Hz     *uint32 `json:"hz"`
	Mode   string  `json:"mode"`
	Ms     *int    `json:"ms"`

	T12   *int `json:"t12"`
	T9    *int `json:"t9"`
	T6    *int `json:"t6"`
	T3    *int `json:"t3"`
	T0    *int `json:"t0"`
	Hys   *int `json:"hys"`
	HysAB *int `json:"hys_ab"`
}

// HandleLine dispatches one complete inbound line: legacy flat commands
// and type:"req" RPC frames share the transport. Every outcome is a
// reply on the line's transport; nothing here ever stops the loop.
func (c *Core) HandleLine(ln link.Line) {
	var probe struct {
		Type string `json:"type"`
		Cmd  string `json:"cmd"`
	}
	if err := json.Unmarshal([]byte(ln.Text), &probe); err != nil {
		c.legacyError(ln.Transport, errcode.BadJSON)
		return
	}
	if probe.Type == "req" {
		c.handleRPC(ln)
		return
	}
	if probe.Cmd == "" {
		c.legacyError(ln.Transport, errcode.MissingCmd)
		return
	}
	c.handleLegacy(ln, probe.Cmd)
}

func (c *Core) legacyError(transport string, code errcode.Code) {
	c.reply(transport, types.ErrorFrame{Type: "error", Msg: string(code)})
}

func (c *Core) handleLegacy(ln link.Line, cmd string) {
	var p legacyFrame
	if err := json.Unmarshal([]byte(ln.Text), &p); err != nil {
		c.legacyError(ln.Transport, errcode.BadJSON)
		return
	}

	switch cmd {
	case "set_pwm":
		if c.mode != types.ModeManual {
			c.legacyError(ln.Transport, errcode.ModeDCAuto)
			return
		}
		if p.Duty != nil {
			c.pwmDuty = mathx.Clamp(*p.Duty, 0, 100)
		}
		if p.Enable != nil {
			c.pwmEnabled = *p.Enable
		}
		c.applyOutput()
		c.reply(ln.Transport, c.status())

	case "enable_pwm":
		if c.mode != types.ModeManual {
			c.legacyError(ln.Transport, errcode.ModeDCAuto)
			return
		}
		if p.Enable == nil {
			c.legacyError(ln.Transport, errcode.BadParams)
			return
		}
		c.pwmEnabled = *p.Enable
		c.applyOutput()
		c.reply(ln.Transport, c.status())

	case "set_freq":
		if p.Hz == nil {
			c.legacyError(ln.Transport, errcode.BadParams)
			return
		}
		c.pwmHz = c.out.SetFreq(*p.Hz)
		// Configure resets the duty register; reapply policy.
		c.applyOutput()
		c.reply(ln.Transport, c.status())

	case "set_mode":
		m, ok := types.ParseOperatingMode(p.Mode)
		if !ok {
			c.legacyError(ln.Transport, errcode.BadMode)
			return
		}
		c.mode = m
		c.applyOutput()
		c.reply(ln.Transport, c.status())

	case "cp.set_thresholds":
		c.setThresholds(ln.Transport, &p)

	case "cp.scan":
		c.reply(ln.Transport, c.scan())

	case "cp.auto_cal":
		c.autoCal(ln.Transport)

	case "get_status":
		c.reply(ln.Transport, c.status())

	case "ping":
		c.reply(ln.Transport, types.OKFrame{Type: "pong"})

	case "restart_slac_hint":
		c.slacHint(ln.Transport, p.Ms)

	case "reset":
		c.reply(ln.Transport, types.OKFrame{Type: "ok", Cmd: "reset"})
		c.clk.Sleep(resetFlushDelay)
		c.sys.Restart()

	default:
		c.legacyError(ln.Transport, errcode.UnknownCmd)
	}
}

// setThresholds patches the live set field-wise, then validates the
// whole candidate before committing. An out-of-order set is rejected
// with no mutation; the previous boundaries keep driving the estimator.
func (c *Core) setThresholds(transport string, p *legacyFrame) {
	cand := c.th
	patch := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	patch(&cand.T12, p.T12)
	patch(&cand.T9, p.T9)
	patch(&cand.T6, p.T6)
	patch(&cand.T3, p.T3)
	patch(&cand.T0, p.T0)
	patch(&cand.Hys, p.Hys)
	patch(&cand.HysAB, p.HysAB)

	if !cand.Valid() {
		c.legacyError(transport, errcode.BadThresholds)
		return
	}
	c.th = cand
	c.reply(transport, c.status())
}

func (c *Core) scan() types.ScanFrame {
	mv := make(map[string]int, len(c.cfg.ScanChannels))
	for _, ch := range c.cfg.ScanChannels {
		mv["a"+strconv.Itoa(ch)] = c.adc.ReadMillivolts(ch)
	}
	return types.ScanFrame{Type: "scan", Mv: mv}
}

func (c *Core) autoCal(transport string) {
	th, _, err := pilot.Calibrate(c.sampler, c.out, c.clk, c.th, pilot.BurstCount, pilot.BurstSpacing)
	// Calibrate left the line idle-high; restore the live policy
	// whether or not it succeeded.
	c.applyOutput()
	if err != nil {
		c.legacyError(transport, errcode.Of(err))
		return
	}
	c.th = th
	c.reply(transport, c.status())
}

// slacHint forces the line into a known idle-high state for a bounded
// window, then hands control back to the DC_AUTO policy whatever mode
// was active before. Used by a host-side negotiation stack to nudge a
// stalled SLAC session.
func (c *Core) slacHint(transport string, ms *int) {
	hold := slacHintDefaultMs
	if ms != nil {
		hold = mathx.Clamp(*ms, slacHintMinMs, slacHintMaxMs)
	}
	c.out.ApplyManual(true, 100)
	c.clk.Sleep(time.Duration(hold) * time.Millisecond)
	c.mode = types.ModeDCAuto
	c.applyOutput()
	c.reply(transport, types.OKFrame{Type: "ok", Cmd: "restart_slac_hint"})
	c.reply(transport, c.status())
}
