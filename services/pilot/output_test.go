package pilot

import (
	"testing"

	"cp-periph-go/types"
)

type fakePWM struct {
	freq    uint32
	duty    uint32
	configs int
}

func (p *fakePWM) Configure(hz uint32) error { p.freq = hz; p.configs++; return nil }
func (p *fakePWM) SetDuty(raw uint32)        { p.duty = raw }
func (p *fakePWM) MaxDuty() uint32           { return 4095 }

func TestManualDutyEndpointsAreExact(t *testing.T) {
	pwm := &fakePWM{}
	out := NewOutput(pwm)

	if got := out.ApplyManual(true, 0); got != 0 || pwm.duty != 0 {
		t.Errorf("0%%: returned %d, raw %d", got, pwm.duty)
	}
	if got := out.ApplyManual(true, 100); got != 100 || pwm.duty != 4095 {
		t.Errorf("100%%: returned %d, raw %d, want max exactly", got, pwm.duty)
	}
	if got := out.ApplyManual(true, 50); got != 50 || pwm.duty != 4095*50/100 {
		t.Errorf("50%%: returned %d, raw %d", got, pwm.duty)
	}
}

func TestManualDutyClamped(t *testing.T) {
	pwm := &fakePWM{}
	out := NewOutput(pwm)

	if got := out.ApplyManual(true, 140); got != 100 || pwm.duty != 4095 {
		t.Errorf("over-range: returned %d, raw %d", got, pwm.duty)
	}
	if got := out.ApplyManual(true, -20); got != 0 || pwm.duty != 0 {
		t.Errorf("under-range: returned %d, raw %d", got, pwm.duty)
	}
}

func TestManualDisabledHoldsLineHigh(t *testing.T) {
	pwm := &fakePWM{}
	out := NewOutput(pwm)
	out.ApplyManual(true, 5)

	if got := out.ApplyManual(false, 5); got != 100 || pwm.duty != 4095 {
		t.Errorf("disabled: returned %d, raw %d, want idle-high", got, pwm.duty)
	}
}

func TestAutoDutyFollowsState(t *testing.T) {
	pwm := &fakePWM{}
	out := NewOutput(pwm)

	for _, st := range []types.PilotState{types.StateB, types.StateC, types.StateD} {
		if got := out.ApplyAuto(st); got != DCPilotDutyPct {
			t.Errorf("%v: duty %d, want %d", st, got, DCPilotDutyPct)
		}
		if want := uint32(4095 * DCPilotDutyPct / 100); pwm.duty != want {
			t.Errorf("%v: raw %d, want %d", st, pwm.duty, want)
		}
	}
	for _, st := range []types.PilotState{types.StateA, types.StateE, types.StateF} {
		if got := out.ApplyAuto(st); got != 100 || pwm.duty != 4095 {
			t.Errorf("%v: duty %d raw %d, want idle-high", st, got, pwm.duty)
		}
	}
}

func TestSetFreqClampsToSafeRange(t *testing.T) {
	pwm := &fakePWM{}
	out := NewOutput(pwm)

	cases := []struct{ in, want uint32 }{
		{100, MinFreqHz},
		{1000, 1000},
		{20000, MaxFreqHz},
	}
	for _, c := range cases {
		if got := out.SetFreq(c.in); got != c.want || pwm.freq != c.want {
			t.Errorf("SetFreq(%d) = %d, hw %d, want %d", c.in, got, pwm.freq, c.want)
		}
	}
	if pwm.configs != len(cases) {
		t.Errorf("configure calls = %d, want %d", pwm.configs, len(cases))
	}
}
