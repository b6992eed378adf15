// Package cphal defines the narrow hardware interfaces the control loop
// depends on. Implementations must not own goroutines; all calls run to
// completion in the caller's context. Simulated backends live in
// drivers/simdev, the machine-backed ones in drivers/board.
package cphal

import "cp-periph-go/types"

// ADC reads analog channels. ReadRaw is the cheap warm-up read used to
// settle the frontend before a converted reading; its value is discarded
// by callers.
type ADC interface {
	ReadRaw(ch int) uint16
	ReadMillivolts(ch int) int
}

// PWMOut drives the CP line generator. SetDuty takes raw hardware units
// in [0, MaxDuty]; 0 is a hard low and MaxDuty a hard high, so true idle
// levels are exact. Configure reprograms the carrier frequency without
// touching the duty register.
type PWMOut interface {
	Configure(freqHz uint32) error
	SetDuty(raw uint32)
	MaxDuty() uint32
}

// ContactorIO is the raw contactor wiring: coil drive plus the
// mechanically linked auxiliary contact readback.
type ContactorIO interface {
	SetCoil(on bool)
	Aux() bool
}

// EnergyMeter is the hw-mode peripheral meter.
type EnergyMeter interface {
	ReadMeter() (types.MeterReading, error)
}

// Thermometer is the hw-mode gun temperature source.
type Thermometer interface {
	ReadTemps() (types.TempsReading, error)
}

// System groups chip-level odds and ends.
type System interface {
	MCUTempC() float64
	// Restart performs the full firmware restart. It does not return.
	Restart()
}
