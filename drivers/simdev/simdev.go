// Package simdev provides host-side simulated implementations of the
// cphal interfaces: a CP line whose ADC readings follow the locally
// generated PWM, a contactor with fault injection, and a chip stub.
// Used by the test suites and by cmd/cp-sim.
package simdev

import (
	"math/rand"
	"sync"
)

// Line couples a simulated ADC channel to the simulated PWM output: when
// the generator runs below full duty, a matching fraction of samples
// lands on the low portion of the waveform, so the plateau estimator has
// realistic edges to reject.
type Line struct {
	mu sync.Mutex

	cpChannel int
	plateau   int // mV read during the duty-high portion
	lowLevel  int // mV read during the duty-low portion
	noiseAmp  int // uniform ±amp added to every sample
	channels  map[int]int

	freqHz  uint32
	dutyRaw uint32

	n   uint32 // sample phase counter
	rnd *rand.Rand
}

const simMaxDuty = 4095

func NewLine(cpChannel int) *Line {
	return &Line{
		cpChannel: cpChannel,
		plateau:   2350,
		lowLevel:  80,
		channels:  map[int]int{},
		freqHz:    1000,
		dutyRaw:   simMaxDuty,
		rnd:       rand.New(rand.NewSource(1)),
	}
}

// SetPlateau fixes the duty-high millivolt level (the vehicle side of
// the divider).
func (l *Line) SetPlateau(mv int) {
	l.mu.Lock()
	l.plateau = mv
	l.mu.Unlock()
}

// SetNoise sets the uniform noise amplitude in mV.
func (l *Line) SetNoise(amp int) {
	l.mu.Lock()
	l.noiseAmp = amp
	l.mu.Unlock()
}

// SetChannel fixes the reading of a non-CP diagnostic channel.
func (l *Line) SetChannel(ch, mv int) {
	l.mu.Lock()
	l.channels[ch] = mv
	l.mu.Unlock()
}

// DutyPct reports the effective output duty in percent, for assertions.
func (l *Line) DutyPct() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return (int(l.dutyRaw)*100 + simMaxDuty/2) / simMaxDuty
}

// FreqHz reports the configured carrier frequency.
func (l *Line) FreqHz() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.freqHz
}

// --- cphal.ADC ---

func (l *Line) ReadRaw(ch int) uint16 {
	return uint16(l.ReadMillivolts(ch))
}

func (l *Line) ReadMillivolts(ch int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ch != l.cpChannel {
		if v, ok := l.channels[ch]; ok {
			return v
		}
		return 0
	}
	l.n++
	v := l.plateau
	// Land on the low portion in proportion to the idle time of the
	// carrier. Full duty never dips.
	if l.dutyRaw < simMaxDuty {
		phase := l.n % 100
		pct := (int(l.dutyRaw)*100 + simMaxDuty/2) / simMaxDuty
		if int(phase) >= pct {
			v = l.lowLevel
		}
	}
	if l.noiseAmp > 0 {
		v += l.rnd.Intn(2*l.noiseAmp+1) - l.noiseAmp
	}
	if v < 0 {
		v = 0
	}
	return v
}

// --- cphal.PWMOut ---

func (l *Line) Configure(freqHz uint32) error {
	l.mu.Lock()
	l.freqHz = freqHz
	l.mu.Unlock()
	return nil
}

func (l *Line) SetDuty(raw uint32) {
	l.mu.Lock()
	if raw > simMaxDuty {
		raw = simMaxDuty
	}
	l.dutyRaw = raw
	l.mu.Unlock()
}

func (l *Line) MaxDuty() uint32 { return simMaxDuty }

// Contactor simulates the coil plus auxiliary contact. With FailAux set
// the auxiliary contact never follows the coil, which is how the
// aux-mismatch path is exercised.
type Contactor struct {
	mu      sync.Mutex
	coil    bool
	FailAux bool
}

func (c *Contactor) SetCoil(on bool) {
	c.mu.Lock()
	c.coil = on
	c.mu.Unlock()
}

func (c *Contactor) Aux() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coil && !c.FailAux
}

// System is the chip stub: a fixed die temperature and a recorded
// restart request.
type System struct {
	TempC     float64
	OnRestart func()
}

func (s *System) MCUTempC() float64 {
	if s.TempC == 0 {
		return 38.5
	}
	return s.TempC
}

func (s *System) Restart() {
	if s.OnRestart != nil {
		s.OnRestart()
	}
}
