// Package periph owns the auxiliary peripheral board: the main
// contactor behind its safety interlock, the gun temperature and energy
// meter sources, and the periodic stream gating for both.
package periph

import (
	"time"

	"cp-periph-go/drivers/cphal"
	"cp-periph-go/errcode"
	"cp-periph-go/types"
	"cp-periph-go/x/timex"
)

const (
	// armWindowMs is the time box opened by sys.arm. One successful
	// contactor.set consumes it.
	armWindowMs = 1500
	// keepaliveMs without a sys.ping forces the contactor off.
	keepaliveMs = 6000

	actuateSettle = 40 * time.Millisecond
	confirmSettle = 60 * time.Millisecond

	// coilSenseMA is the nominal coil current report while energized.
	// There is no shunt on the coil drive; this is a fixed figure.
	coilSenseMA = 120.0
)

// Interlock guards contactor actuation. All methods run on the control
// loop; the settle delays inside Set block it, which is fine at the
// loop's cadence.
type Interlock struct {
	io  cphal.ContactorIO
	clk timex.Clock

	commanded  bool
	armedUntil int64
	lastPingMs int64
}

func NewInterlock(io cphal.ContactorIO, clk timex.Clock) *Interlock {
	return &Interlock{io: io, clk: clk, lastPingMs: clk.NowMs()}
}

// Arm opens (or extends) the actuation window and returns the absolute
// deadline in clock milliseconds. Hosts compare it against now to decide
// when to re-arm.
func (il *Interlock) Arm() int64 {
	il.armedUntil = il.clk.NowMs() + armWindowMs
	return il.armedUntil
}

// Armed reports whether the actuation window is currently open.
func (il *Interlock) Armed() bool {
	return il.clk.NowMs() <= il.armedUntil
}

// Set actuates the contactor. It requires an open armed window, drives
// the coil, then verifies the auxiliary contact after two settle
// delays. An ON command whose auxiliary contact does not confirm is
// forced straight back off and reported as errcode.AuxMismatch; an OFF
// command succeeds regardless of confirmation. A successful actuation
// consumes the armed window.
func (il *Interlock) Set(on bool) error {
	if !il.Armed() {
		return errcode.NotArmed
	}

	il.commanded = on
	il.io.SetCoil(on)
	il.clk.Sleep(actuateSettle)
	aux := il.io.Aux()
	il.clk.Sleep(confirmSettle)
	aux = il.io.Aux()

	if on && aux != on {
		il.io.SetCoil(false)
		il.commanded = false
		return errcode.AuxMismatch
	}

	il.armedUntil = 0
	return nil
}

// Check reports commanded/auxiliary agreement without mutating
// anything. AuxOK means the live auxiliary reading matches the
// commanded state, so an open contactor with an open aux contact is
// healthy and a welded contact while commanded off is not.
func (il *Interlock) Check() types.ContactorStatus {
	aux := il.io.Aux()
	st := types.ContactorStatus{
		Commanded: il.commanded,
		AuxOK:     aux == il.commanded,
		Reason:    "ok",
	}
	if il.commanded {
		st.CoilMA = coilSenseMA
	}
	if !st.AuxOK {
		st.Reason = string(errcode.AuxMismatch)
	}
	return st
}

// Commanded reports the host's current intent.
func (il *Interlock) Commanded() bool { return il.commanded }

// NotePing refreshes the keepalive deadline. Called for every
// successfully processed sys.ping.
func (il *Interlock) NotePing() {
	il.lastPingMs = il.clk.NowMs()
}

// TickKeepalive runs the failsafe check. If the contactor is commanded
// on and no ping has arrived within the keepalive window it forces the
// coil off and returns true, exactly once per silence.
func (il *Interlock) TickKeepalive() bool {
	if !il.commanded {
		return false
	}
	if il.clk.NowMs()-il.lastPingMs <= keepaliveMs {
		return false
	}
	il.io.SetCoil(false)
	il.commanded = false
	return true
}
