package pilot

import (
	"errors"
	"testing"
	"time"

	"cp-periph-go/errcode"
	"cp-periph-go/types"
)

type fakeClock struct{ ms int64 }

func (c *fakeClock) NowMs() int64          { return c.ms }
func (c *fakeClock) Sleep(d time.Duration) { c.ms += d.Milliseconds() }

func TestCalibrateRescalesFromIdleReference(t *testing.T) {
	pwm := &fakePWM{}
	out := NewOutput(pwm)
	s := NewSampler(&seqADC{seq: []int{2400}}, 0)
	clk := &fakeClock{}

	got, vIdle, err := Calibrate(s, out, clk, types.DefaultThresholds(), 8, 0)
	if err != nil {
		t.Fatalf("calibrate: %v", err)
	}
	if vIdle != 2400 {
		t.Fatalf("vIdle = %d, want 2400", vIdle)
	}
	want := types.ThresholdSet{
		T12: 2100, T9: 1500, T6: 900, T3: 300,
		T0: 1250, Hys: 100, HysAB: 50,
	}
	if got != want {
		t.Errorf("thresholds = %+v, want %+v", got, want)
	}
	// The line must be forced idle-high for the measurement.
	if pwm.duty != pwm.MaxDuty() {
		t.Errorf("line raw duty = %d, want max during calibration", pwm.duty)
	}
	if clk.ms < calSettle.Milliseconds() {
		t.Errorf("no settle delay before sampling")
	}
}

func TestCalibrateRejectsLoadedLine(t *testing.T) {
	pwm := &fakePWM{}
	out := NewOutput(pwm)
	// A connected vehicle pulls the idle reference under the floor.
	s := NewSampler(&seqADC{seq: []int{1900}}, 0)

	in := types.DefaultThresholds()
	got, vIdle, err := Calibrate(s, out, &fakeClock{}, in, 8, 0)
	if !errors.Is(err, errcode.CalFailed) {
		t.Fatalf("err = %v, want cal_failed", err)
	}
	if got != in {
		t.Errorf("thresholds mutated on failed calibration: %+v", got)
	}
	if vIdle != 1900 {
		t.Errorf("vIdle = %d, want 1900", vIdle)
	}
}
