package pilot

import (
	"testing"

	"cp-periph-go/types"
)

func defaults() types.ThresholdSet { return types.DefaultThresholds() }

func TestBandPartitionsMillivoltAxis(t *testing.T) {
	th := defaults()
	// Total, contiguous and monotonically non-increasing in voltage.
	prev := th.Band(0)
	if prev != types.StateF {
		t.Fatalf("band(0) = %v, want F", prev)
	}
	last := types.StateF
	for mv := 0; mv <= 3300; mv++ {
		st := th.Band(mv)
		if st > last {
			t.Fatalf("band regressed to lower voltage state at %d mV: %v after %v", mv, st, last)
		}
		last = st
	}
	if last != types.StateA {
		t.Fatalf("band(3300) = %v, want A", last)
	}
	// Boundary exactness: each lower edge belongs to its band.
	cases := []struct {
		mv   int
		want types.PilotState
	}{
		{th.T12, types.StateA}, {th.T12 - 1, types.StateB},
		{th.T9, types.StateB}, {th.T9 - 1, types.StateC},
		{th.T6, types.StateC}, {th.T6 - 1, types.StateD},
		{th.T3, types.StateD}, {th.T3 - 1, types.StateE},
		{th.T0, types.StateE}, {th.T0 - 1, types.StateF},
	}
	for _, c := range cases {
		if got := th.Band(c.mv); got != c.want {
			t.Errorf("band(%d) = %v, want %v", c.mv, got, c.want)
		}
	}
}

// observe runs n identical observations and returns the final state.
func observe(e *Estimator, th types.ThresholdSet, mv, n int) types.PilotState {
	st := e.State()
	for i := 0; i < n; i++ {
		st, _ = e.Observe(th, mv)
	}
	return st
}

func TestHysteresisHoldsNearBoundary(t *testing.T) {
	th := defaults()
	e := NewEstimator()
	// Settle solidly into B.
	if st := observe(e, th, 2150, 4); st != types.StateB {
		t.Fatalf("setup: state = %v, want B", st)
	}
	// Oscillate within the margin around t9: must never leave B.
	for i := 0; i < 50; i++ {
		mv := th.T9 - th.Hys + 1
		if i%2 == 0 {
			mv = th.T9 + th.Hys - 1
		}
		if st, _ := e.Observe(th, mv); st != types.StateB {
			t.Fatalf("tick %d: left B at %d mV", i, mv)
		}
	}
}

func TestDebounceSingleFlipNeverCommits(t *testing.T) {
	th := defaults()
	e := NewEstimator()
	observe(e, th, 2150, 4) // B

	// One C tick surrounded by B ticks: counter must reset.
	e.Observe(th, 1800)
	if st := observe(e, th, 2150, 1); st != types.StateB {
		t.Fatalf("state = %v, want B after flip rejected", st)
	}
	e.Observe(th, 1800)
	if st := e.State(); st != types.StateB {
		t.Fatalf("state = %v, want B (pending must have reset)", st)
	}
}

func TestStrongCandidateCommitsFast(t *testing.T) {
	th := defaults()
	e := NewEstimator()
	observe(e, th, 2150, 4) // B

	// 1800 mV is strongly inside C (>hys from both t6 and t9).
	e.Observe(th, 1800)
	st, changed := e.Observe(th, 1800)
	if st != types.StateC || !changed {
		t.Fatalf("state = %v changed=%v, want C on second strong tick", st, changed)
	}
}

func TestWeakCandidateNeedsThreeConfirms(t *testing.T) {
	th := defaults()
	e := NewEstimator()
	observe(e, th, 2150, 4) // B

	// Inside C but within the margin of its lower boundary: weak.
	mv := th.T6 + th.Hys - 10
	e.Observe(th, mv)
	if st := e.State(); st != types.StateB {
		t.Fatalf("committed after 1 weak tick")
	}
	e.Observe(th, mv)
	if st := e.State(); st != types.StateB {
		t.Fatalf("committed after 2 weak ticks")
	}
	st, changed := e.Observe(th, mv)
	if st != types.StateC || !changed {
		t.Fatalf("state = %v changed=%v, want C on third weak tick", st, changed)
	}
}

func TestTransientLowHoldsConnectedState(t *testing.T) {
	th := defaults()
	e := NewEstimator()
	observe(e, th, 1800, 4) // C

	// A botched capture far below t0 must not cause any transition.
	for i := 0; i < 10; i++ {
		if st, changed := e.Observe(th, 200); st != types.StateC || changed {
			t.Fatalf("transient burst moved state to %v", st)
		}
	}
}

func TestUpwardBlipWhileConnectedIgnored(t *testing.T) {
	th := defaults()
	e := NewEstimator()
	observe(e, th, 2150, 4) // B

	// Just over the A entry threshold but not decisively: noise.
	blip := th.T12 + th.Hys + blipGuardMV - 1
	for i := 0; i < 10; i++ {
		if st, _ := e.Observe(th, blip); st != types.StateB {
			t.Fatalf("blip at %d mV committed %v", blip, st)
		}
	}

	// Decisively above: a real unplug, commits after debounce.
	clear := th.T12 + th.Hys + blipGuardMV + 60
	if st := observe(e, th, clear, 4); st != types.StateA {
		t.Fatalf("state = %v, want A after decisive idle level", st)
	}
}

func TestAToBUsesSmallMargin(t *testing.T) {
	th := defaults()
	e := NewEstimator()
	if e.State() != types.StateA {
		t.Fatal("estimator must boot in A")
	}

	// Inside hys_ab: hold A.
	if st := observe(e, th, th.T12-th.HysAB+1, 4); st != types.StateA {
		t.Fatalf("left A within hys_ab margin: %v", st)
	}
	// Below hys_ab (but above the full hys): plug-in detected.
	mv := th.T12 - th.HysAB - 10
	if st := observe(e, th, mv, 4); st != types.StateB {
		t.Fatalf("state = %v, want B below t12-hys_ab", st)
	}
}

func TestDeepDropCrossesSeveralBands(t *testing.T) {
	th := defaults()
	e := NewEstimator()
	observe(e, th, 2150, 4) // B

	// A hard fault level within the guard (above t0-150) resolves
	// through the band map, skipping C and D.
	mv := th.T0 + 20
	if st := observe(e, th, mv, 4); st != types.StateE {
		t.Fatalf("state = %v, want E after deep drop", st)
	}
}
