package pilot

import (
	"testing"
)

// seqADC replays a fixed sample sequence, wrapping at the end. Warm-up
// reads do not consume samples.
type seqADC struct {
	seq []int
	i   int
}

func (a *seqADC) ReadRaw(ch int) uint16 { return 0 }
func (a *seqADC) ReadMillivolts(ch int) int {
	v := a.seq[a.i%len(a.seq)]
	a.i++
	return v
}

func TestBurstPlateauIgnoresDutyLowAndSpikes(t *testing.T) {
	// 70% plateau at 2200, 28% duty-low at 100, plus two overshoot
	// spikes well above the plateau. The estimate must sit on 2200.
	var seq []int
	for i := 0; i < 256; i++ {
		switch {
		case i == 40 || i == 200:
			seq = append(seq, 3000)
		case i%10 < 7:
			seq = append(seq, 2200)
		default:
			seq = append(seq, 100)
		}
	}
	s := NewSampler(&seqADC{seq: seq}, 0)
	b := s.Burst(256, 0)

	if b.Plateau != 2200 {
		t.Errorf("plateau = %d, want 2200", b.Plateau)
	}
	if b.Min != 100 {
		t.Errorf("min = %d, want 100", b.Min)
	}
	if b.Mean <= 100 || b.Mean >= 2200 {
		t.Errorf("mean = %d, want between low and plateau", b.Mean)
	}
}

func TestBurstDegenerateFallsBackToLoneReading(t *testing.T) {
	s := NewSampler(&seqADC{seq: []int{1234}}, 0)
	b := s.Burst(1, 0)
	if b.Plateau != 1234 || b.Min != 1234 || b.Mean != 1234 {
		t.Errorf("degenerate burst = %+v, want all 1234", b)
	}
}

func TestBurstPhaseAdvances(t *testing.T) {
	s := NewSampler(&seqADC{seq: []int{2000}}, 0)
	for i := 0; i < 3; i++ {
		s.Burst(4, 0)
	}
	if s.phaseUs != 3*phaseStepUs%phaseWrapUs {
		t.Errorf("phase = %d, want %d", s.phaseUs, 3*phaseStepUs%phaseWrapUs)
	}
}

func TestInsertTopKeepsLargest(t *testing.T) {
	var top [topK]int
	n := 0
	for v := 0; v < 1000; v++ {
		insertTop(&top, &n, v)
	}
	if n != topK {
		t.Fatalf("n = %d, want %d", n, topK)
	}
	for i := 0; i < topK; i++ {
		want := 1000 - topK + i
		if top[i] != want {
			t.Errorf("top[%d] = %d, want %d", i, top[i], want)
		}
	}
}

func TestPlateauOfTrimsUpperHalf(t *testing.T) {
	// 24 ascending values 0..23: drop 22,23, average 12..21 = 16 (floor).
	vals := make([]int, topK)
	for i := range vals {
		vals[i] = i
	}
	if got := plateauOf(vals); got != 16 {
		t.Errorf("plateauOf = %d, want 16", got)
	}
}
