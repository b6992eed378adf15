package pilot

import (
	"cp-periph-go/types"
)

// Debounce and guard tuning.
const (
	confirmFast = 1 // candidate strongly inside its band
	confirmSlow = 3 // candidate near a boundary

	// transientGuardMV below t0 marks a failed plateau capture rather
	// than a genuine fault band reading while a vehicle is connected.
	transientGuardMV = 150
	// blipGuardMV beyond t12+hys is what an idle candidate must clear
	// to count as a real disconnect while connected.
	blipGuardMV = 150
)

// hysRule is the transition table: for each current state, the boundary
// index that must be cleared (plus the general margin) to move one band
// up, and the boundary index that must be undercut to leave downward.
// -1 means no transition in that direction. The downward margin is the
// general hysteresis except for state A, which uses the smaller hys_ab
// so a plug-in is detected quickly.
var hysRule = [6]struct {
	up   int
	down int
}{
	types.StateA: {up: -1, down: 0},
	types.StateB: {up: 0, down: 1},
	types.StateC: {up: 1, down: 2},
	types.StateD: {up: 2, down: 3},
	types.StateE: {up: 3, down: 4},
	types.StateF: {up: 4, down: -1},
}

// candidateBand applies the hysteresis table: hold the previous state
// unless the plateau crosses a boundary by more than the applicable
// margin; downward exits re-resolve through the plain band mapping so a
// deep drop can cross several bands at once.
func candidateBand(th types.ThresholdSet, prev types.PilotState, mv int) types.PilotState {
	b := th.Bounds()
	rule := hysRule[prev]
	if rule.up >= 0 && mv >= b[rule.up]+th.Hys {
		return prev - 1
	}
	if rule.down >= 0 {
		margin := th.Hys
		if prev == types.StateA {
			margin = th.HysAB
		}
		if mv < b[rule.down]-margin {
			return th.Band(mv)
		}
	}
	return prev
}

// strongIn reports whether mv sits inside st's band by more than the
// general margin on both sides.
func strongIn(th types.ThresholdSet, st types.PilotState, mv int) bool {
	b := th.Bounds()
	switch st {
	case types.StateA:
		return mv >= b[0]+th.Hys
	case types.StateF:
		return mv < b[4]-th.Hys
	default:
		i := int(st)
		return mv >= b[i]+th.Hys && mv < b[i-1]-th.Hys
	}
}

// Estimator owns the committed pilot state and the pending-transition
// debounce. One Observe per control tick.
type Estimator struct {
	state        types.PilotState
	pending      types.PilotState
	pendingCount int
}

func NewEstimator() *Estimator {
	return &Estimator{state: types.StateA, pending: types.StateA}
}

// State returns the committed pilot state.
func (e *Estimator) State() types.PilotState { return e.state }

// Observe feeds one burst plateau through hysteresis, transient
// rejection and debounce. It returns the committed state and whether
// this call changed it.
func (e *Estimator) Observe(th types.ThresholdSet, plateau int) (types.PilotState, bool) {
	prev := e.state

	// A plateau far below the fault band while connected is a botched
	// capture (missed plateau, interference), not a disconnect. Hold
	// the state and slowly decay any pending confirmation.
	if prev.Connected() && plateau < th.T0-transientGuardMV {
		e.decay()
		return prev, false
	}

	cand := candidateBand(th, prev, plateau)

	// While connected, an idle candidate that is not decisively above
	// the A boundary is an upward blip, not a real unplug.
	if prev.Connected() && cand == types.StateA && plateau < th.T12+th.Hys+blipGuardMV {
		e.decay()
		return prev, false
	}

	if cand == prev {
		e.pending = cand
		e.pendingCount = 0
		return prev, false
	}

	need := confirmSlow
	if strongIn(th, cand, plateau) {
		need = confirmFast
	}
	if e.pending == cand {
		if e.pendingCount+1 >= need {
			e.state = cand
			e.pendingCount = 0
			return cand, true
		}
		e.pendingCount++
		return prev, false
	}
	e.pending = cand
	e.pendingCount = 1
	return prev, false
}

func (e *Estimator) decay() {
	if e.pendingCount > 0 {
		e.pendingCount--
	}
}
