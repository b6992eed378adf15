package pilot

import (
	"time"

	"cp-periph-go/errcode"
	"cp-periph-go/types"
	"cp-periph-go/x/timex"
)

const (
	calSettle = 150 * time.Millisecond
	calBursts = 6

	// CalFloorMV is the plausibility floor for the measured idle
	// reference. Below it the line is almost certainly loaded by a
	// connected vehicle and calibrating would corrupt every boundary.
	CalFloorMV = 2100
)

// Calibrate drives the line to idle-high, measures the 12 V reference
// and returns the rescaled threshold set. On failure the input set is
// returned untouched with errcode.CalFailed. The caller owns restoring
// its mode/output policy afterwards in both outcomes; Calibrate only
// forces the line high for the duration of the measurement.
func Calibrate(s *Sampler, out *Output, clk timex.Clock, th types.ThresholdSet, burstCount int, spacing time.Duration) (types.ThresholdSet, int, error) {
	out.ApplyManual(false, 0) // disabled manual = idle-high
	clk.Sleep(calSettle)

	acc := 0
	for i := 0; i < calBursts; i++ {
		acc += s.Burst(burstCount, spacing).Plateau
	}
	vIdle := acc / calBursts

	if vIdle < CalFloorMV {
		return th, vIdle, errcode.CalFailed
	}
	return th.Rescale(vIdle), vIdle, nil
}
