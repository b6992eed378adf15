package periph

import (
	"cp-periph-go/drivers/cphal"
	"cp-periph-go/errcode"
	"cp-periph-go/types"
)

// Simulated electrical model: a fixed DC link voltage and a fixed load
// current while the contactor is closed. Energy integrates per read.
const (
	simLinkV    = 415.0
	simLoadI    = 50.0
	simEnergyDt = 0.001 // kWh accumulated per powered read
)

// Sensors serves temps.read and meter.read in either simulated or
// hardware-backed mode. The simulated values track the contactor so a
// host exercising the full arm/set/read flow sees plausible physics.
type Sensors struct {
	mode      types.PeriphMode
	energized func() bool

	hwMeter cphal.EnergyMeter
	hwTemps cphal.Thermometer

	simKWh float64
}

// NewSensors starts in simulated mode. energized reports whether the
// contactor is currently commanded closed.
func NewSensors(energized func() bool) *Sensors {
	return &Sensors{mode: types.PeriphSim, energized: energized}
}

// AttachHW registers the hardware meter and thermometer backends,
// making hw mode selectable.
func (s *Sensors) AttachHW(m cphal.EnergyMeter, t cphal.Thermometer) {
	s.hwMeter = m
	s.hwTemps = t
}

func (s *Sensors) Mode() types.PeriphMode { return s.mode }

// SetMode switches between simulated and hardware readings. Hardware
// mode is rejected when no backends were attached at boot.
func (s *Sensors) SetMode(m types.PeriphMode) error {
	if m == types.PeriphHW && (s.hwMeter == nil || s.hwTemps == nil) {
		return errcode.BadMode
	}
	s.mode = m
	return nil
}

func (s *Sensors) ReadMeter() (types.MeterReading, error) {
	if s.mode == types.PeriphHW {
		return s.hwMeter.ReadMeter()
	}
	r := types.MeterReading{V: simLinkV}
	if s.energized() {
		r.I = simLoadI
	}
	r.P = r.V * r.I / 1000
	s.simKWh += r.P * simEnergyDt
	r.E = s.simKWh
	return r, nil
}

func (s *Sensors) ReadTemps() (types.TempsReading, error) {
	if s.mode == types.PeriphHW {
		return s.hwTemps.ReadTemps()
	}
	// Guns warm up while current flows.
	hot := s.energized()
	r := types.TempsReading{
		GunA: types.TempC{C: 32.0 + riseC(hot, 12.0, 0.5)},
		GunB: types.TempC{C: 31.5 + riseC(hot, 11.0, 0.3)},
	}
	return r, nil
}

func riseC(hot bool, loaded, idle float64) float64 {
	if hot {
		return loaded
	}
	return idle
}
