package periph

import (
	"errors"
	"testing"
	"time"

	"cp-periph-go/drivers/simdev"
	"cp-periph-go/errcode"
)

type fakeClock struct{ ms int64 }

func (c *fakeClock) NowMs() int64          { return c.ms }
func (c *fakeClock) Sleep(d time.Duration) { c.ms += d.Milliseconds() }

func TestSetRequiresArming(t *testing.T) {
	io := &simdev.Contactor{}
	clk := &fakeClock{ms: 1000}
	il := NewInterlock(io, clk)

	if err := il.Set(true); !errors.Is(err, errcode.NotArmed) {
		t.Fatalf("unarmed set: err = %v, want not_armed", err)
	}
	if il.Commanded() || io.Aux() {
		t.Fatal("unarmed set must not touch the coil")
	}
}

func TestArmReturnsDeadline(t *testing.T) {
	io := &simdev.Contactor{}
	clk := &fakeClock{ms: 1000}
	il := NewInterlock(io, clk)

	if got := il.Arm(); got != clk.ms+armWindowMs {
		t.Fatalf("arm deadline = %d, want %d", got, clk.ms+armWindowMs)
	}
}

func TestArmWindowExpires(t *testing.T) {
	io := &simdev.Contactor{}
	clk := &fakeClock{ms: 1000}
	il := NewInterlock(io, clk)

	il.Arm()
	clk.ms += armWindowMs + 1
	if err := il.Set(true); !errors.Is(err, errcode.NotArmed) {
		t.Fatalf("expired window: err = %v, want not_armed", err)
	}
	if il.Commanded() {
		t.Fatal("commanded must stay false past the window")
	}
}

func TestArmedSetClosesAndConsumesWindow(t *testing.T) {
	io := &simdev.Contactor{}
	clk := &fakeClock{ms: 1000}
	il := NewInterlock(io, clk)

	il.Arm()
	if err := il.Set(true); err != nil {
		t.Fatalf("armed set: %v", err)
	}
	if !il.Commanded() || !io.Aux() {
		t.Fatal("contactor not closed after successful set")
	}

	st := il.Check()
	if !st.Commanded || !st.AuxOK || st.CoilMA != coilSenseMA || st.Reason != "ok" {
		t.Errorf("check = %+v", st)
	}

	// The window is consumed: a second actuation needs a fresh arm.
	if err := il.Set(false); !errors.Is(err, errcode.NotArmed) {
		t.Fatalf("second set without re-arm: err = %v, want not_armed", err)
	}
	if !il.Commanded() {
		t.Fatal("rejected set must not open the contactor")
	}
}

func TestSetWaitsBothSettleDelays(t *testing.T) {
	io := &simdev.Contactor{}
	clk := &fakeClock{ms: 1000}
	il := NewInterlock(io, clk)

	il.Arm()
	before := clk.ms
	if err := il.Set(true); err != nil {
		t.Fatalf("set: %v", err)
	}
	want := (actuateSettle + confirmSettle).Milliseconds()
	if clk.ms-before != want {
		t.Errorf("set blocked %d ms, want %d", clk.ms-before, want)
	}
}

func TestAuxMismatchForcesOff(t *testing.T) {
	io := &simdev.Contactor{FailAux: true}
	clk := &fakeClock{ms: 1000}
	il := NewInterlock(io, clk)

	il.Arm()
	if err := il.Set(true); !errors.Is(err, errcode.AuxMismatch) {
		t.Fatalf("err = %v, want aux_mismatch", err)
	}
	if il.Commanded() {
		t.Fatal("commanded must be forced false")
	}
	// Forced back off, coil and aux agree again.
	st := il.Check()
	if st.Commanded || !st.AuxOK || st.CoilMA != 0 || st.Reason != "ok" {
		t.Errorf("check after mismatch = %+v", st)
	}
}

// weldedContactor models contacts stuck closed: the auxiliary reads
// closed no matter what the coil does.
type weldedContactor struct{ coil bool }

func (c *weldedContactor) SetCoil(on bool) { c.coil = on }
func (c *weldedContactor) Aux() bool       { return true }

func TestCheckReportsAgreement(t *testing.T) {
	clk := &fakeClock{ms: 1000}

	// Open and healthy: coil off, aux open, that is agreement.
	il := NewInterlock(&simdev.Contactor{}, clk)
	st := il.Check()
	if st.Commanded || !st.AuxOK || st.CoilMA != 0 || st.Reason != "ok" {
		t.Errorf("open contactor check = %+v", st)
	}

	// Welded closed while commanded off: disagreement.
	il = NewInterlock(&weldedContactor{}, clk)
	st = il.Check()
	if st.Commanded || st.AuxOK || st.Reason != "aux_mismatch" {
		t.Errorf("welded contactor check = %+v", st)
	}
}

func TestOffSucceedsWithStuckAux(t *testing.T) {
	io := &simdev.Contactor{}
	clk := &fakeClock{ms: 1000}
	il := NewInterlock(io, clk)

	il.Arm()
	if err := il.Set(true); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Aux readback breaks while closed; opening must still succeed.
	io.FailAux = true
	il.Arm()
	if err := il.Set(false); err != nil {
		t.Fatalf("open with broken aux: %v", err)
	}
	if il.Commanded() {
		t.Fatal("contactor still commanded after open")
	}
}

func TestKeepaliveForcesOffOnce(t *testing.T) {
	io := &simdev.Contactor{}
	clk := &fakeClock{ms: 1000}
	il := NewInterlock(io, clk)

	il.Arm()
	if err := il.Set(true); err != nil {
		t.Fatalf("close: %v", err)
	}
	il.NotePing()

	// Within the window: nothing happens.
	clk.ms += keepaliveMs
	if il.TickKeepalive() {
		t.Fatal("failsafe fired inside the keepalive window")
	}

	clk.ms += 1
	if !il.TickKeepalive() {
		t.Fatal("failsafe did not fire past the keepalive window")
	}
	if il.Commanded() || io.Aux() {
		t.Fatal("contactor not forced off by failsafe")
	}
	// Exactly once per silence.
	clk.ms += keepaliveMs
	if il.TickKeepalive() {
		t.Fatal("failsafe fired a second time")
	}
}

func TestPingDefersFailsafe(t *testing.T) {
	io := &simdev.Contactor{}
	clk := &fakeClock{ms: 1000}
	il := NewInterlock(io, clk)

	il.Arm()
	if err := il.Set(true); err != nil {
		t.Fatalf("close: %v", err)
	}
	for i := 0; i < 5; i++ {
		clk.ms += keepaliveMs / 2
		il.NotePing()
		if il.TickKeepalive() {
			t.Fatalf("failsafe fired despite pings (round %d)", i)
		}
	}
	if !il.Commanded() {
		t.Fatal("contactor opened despite live host")
	}
}
