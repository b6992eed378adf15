package pilot

import (
	"cp-periph-go/drivers/cphal"
	"cp-periph-go/types"
	"cp-periph-go/x/mathx"
)

const (
	// DCPilotDutyPct is the fixed fast-charge pilot duty for connected
	// states per CCS DC guidance.
	DCPilotDutyPct = 5

	MinFreqHz = 500
	MaxFreqHz = 5000
)

// Output applies the duty policy to the PWM generator. Duty percent
// endpoints map to exact hardware extremes so true idle levels are exact.
type Output struct {
	pwm cphal.PWMOut
}

func NewOutput(pwm cphal.PWMOut) *Output { return &Output{pwm: pwm} }

func (o *Output) dutyRaw(pct int) uint32 {
	if pct <= 0 {
		return 0
	}
	if pct >= 100 {
		return o.pwm.MaxDuty()
	}
	return o.pwm.MaxDuty() * uint32(pct) / 100
}

// ApplyManual drives the operator-requested duty. Disabled output holds
// the line at the idle-high level, the deliberate safety default.
// Returns the effective output duty percent.
func (o *Output) ApplyManual(enabled bool, dutyPct int) int {
	if !enabled {
		o.pwm.SetDuty(o.pwm.MaxDuty())
		return 100
	}
	pct := mathx.Clamp(dutyPct, 0, 100)
	o.pwm.SetDuty(o.dutyRaw(pct))
	return pct
}

// ApplyAuto derives the duty from the estimated pilot state: connected
// states get the DC pilot duty, idle and fault states hold the line high.
func (o *Output) ApplyAuto(st types.PilotState) int {
	if st.Connected() {
		o.pwm.SetDuty(o.dutyRaw(DCPilotDutyPct))
		return DCPilotDutyPct
	}
	o.pwm.SetDuty(o.pwm.MaxDuty())
	return 100
}

// SetFreq clamps hz to the safe range and reconfigures the generator in
// place. The caller must reapply its duty policy immediately after so
// the output does not glitch to a default level.
func (o *Output) SetFreq(hz uint32) uint32 {
	hz = mathx.Clamp(hz, uint32(MinFreqHz), uint32(MaxFreqHz))
	_ = o.pwm.Configure(hz)
	return hz
}
