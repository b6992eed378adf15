// Package pilot implements the CP signal pipeline: robust plateau
// sampling, state estimation with hysteresis and debounce, the output
// duty policy and the idle-reference calibration routine. Everything is
// pure logic over the cphal interfaces and an injected clock, so the
// whole pipeline is host-testable.
package pilot

import (
	"time"

	"cp-periph-go/drivers/cphal"
	"cp-periph-go/x/mathx"
)

// Burst parameters for plateau capture.
const (
	BurstCount   = 256
	BurstSpacing = 10 * time.Microsecond

	topK        = 24
	phaseStepUs = 17 // co-prime-ish to the 1 kHz PWM period
	phaseWrapUs = 1000
)

// Burst is the reduction of one sampling window. Plateau drives state
// decisions; Min and Mean are diagnostics only.
type Burst struct {
	Min     int
	Plateau int
	Mean    int
}

// Sampler reduces raw ADC bursts to plateau estimates. Not safe for
// concurrent use; the control loop is its only caller.
type Sampler struct {
	adc     cphal.ADC
	ch      int
	phaseUs uint32
	sleep   func(time.Duration)
}

func NewSampler(adc cphal.ADC, ch int) *Sampler {
	return &Sampler{adc: adc, ch: ch, sleep: time.Sleep}
}

// Burst takes count readings spaced by the given delay and reduces them.
// Each reading is preceded by a discarded warm-up read to settle the
// analog frontend. A cycling phase offset desynchronizes the burst from
// the PWM edges so the plateau is not systematically aliased.
func (s *Sampler) Burst(count int, spacing time.Duration) Burst {
	if count <= 0 {
		count = 1
	}
	if s.phaseUs > 0 && spacing > 0 {
		s.sleep(time.Duration(s.phaseUs) * time.Microsecond)
	}
	s.phaseUs = (s.phaseUs + phaseStepUs) % phaseWrapUs

	var top [topK]int
	nTop := 0
	acc := 0
	minv := int(^uint(0) >> 1)
	for i := 0; i < count; i++ {
		_ = s.adc.ReadRaw(s.ch) // warm-up, discarded
		if spacing > 0 {
			s.sleep(spacing)
		}
		v := s.adc.ReadMillivolts(s.ch)
		acc += v
		if v < minv {
			minv = v
		}
		insertTop(&top, &nTop, v)
	}
	return Burst{Min: minv, Plateau: plateauOf(top[:nTop]), Mean: acc / count}
}

// insertTop keeps the largest values seen, ascending insertion-sorted.
func insertTop(top *[topK]int, n *int, v int) {
	if *n < topK {
		i := *n
		for i > 0 && top[i-1] > v {
			top[i] = top[i-1]
			i--
		}
		top[i] = v
		*n++
		return
	}
	if v <= top[0] {
		return
	}
	i := 0
	for i+1 < topK && top[i+1] < v {
		top[i] = top[i+1]
		i++
	}
	top[i] = v
}

// plateauOf reduces the top-K set to the plateau estimate: the mean of
// its upper half with the two largest values dropped, which suppresses
// overshoot spikes from edge aliasing while staying on the duty-high
// portion of the waveform.
func plateauOf(top []int) int {
	n := len(top)
	if n == 0 {
		return 0
	}
	hi := n - 2
	lo := n / 2
	if hi <= lo {
		// Degenerate burst: fall back to the lone largest reading.
		return top[n-1]
	}
	return mathx.MeanInt(top[lo:hi])
}
