package types

// ThresholdSet is the live millivolt boundaries between pilot state
// bands, plus the hysteresis margins. Invariant: T12 > T9 > T6 > T3 > T0.
// Out-of-order updates are rejected at the dispatch layer; consumers still
// call Valid before trusting an externally supplied set.
type ThresholdSet struct {
	T12   int `json:"t12"`
	T9    int `json:"t9"`
	T6    int `json:"t6"`
	T3    int `json:"t3"`
	T0    int `json:"t0"`
	Hys   int `json:"hys"`
	HysAB int `json:"hys_ab"`
}

// DefaultThresholds mirror the board's voltage divider at the nominal
// 12 V idle reference.
func DefaultThresholds() ThresholdSet {
	return ThresholdSet{
		T12:   2300,
		T9:    2000,
		T6:    1700,
		T3:    1450,
		T0:    1250,
		Hys:   100,
		HysAB: 50,
	}
}

// Valid reports whether the boundaries are strictly decreasing and the
// margins non-negative.
func (t ThresholdSet) Valid() bool {
	if !(t.T12 > t.T9 && t.T9 > t.T6 && t.T6 > t.T3 && t.T3 > t.T0) {
		return false
	}
	return t.Hys >= 0 && t.HysAB >= 0 && t.T0 > 0
}

// Bounds returns the five boundaries in descending order. Bounds()[i] is
// the lower edge of band i (A=0 .. E=4); below Bounds()[4] is F.
func (t ThresholdSet) Bounds() [5]int {
	return [5]int{t.T12, t.T9, t.T6, t.T3, t.T0}
}

// Band maps a millivolt reading to its pilot state band with no
// hysteresis. Total over all inputs.
func (t ThresholdSet) Band(mv int) PilotState {
	for i, b := range t.Bounds() {
		if mv >= b {
			return PilotState(i)
		}
	}
	return StateF
}

// Rescale derives a new set from a measured idle reference, keeping the
// nominal J1772 boundary proportions of the 12 V reference
// (10.5/12, 7.5/12, 4.5/12, 1.5/12; integer truncation). T0 and the
// hysteresis margins bound the near-zero fault region and are kept.
func (t ThresholdSet) Rescale(vIdleMV int) ThresholdSet {
	out := t
	out.T12 = vIdleMV * 105 / 120
	out.T9 = vIdleMV * 75 / 120
	out.T6 = vIdleMV * 45 / 120
	out.T3 = vIdleMV * 15 / 120
	return out
}
