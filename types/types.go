// Package types holds the shared value types of the CP peripheral
// controller: pilot states, operating modes, threshold sets and the wire
// frame structs. It has no behaviour beyond validation and formatting so
// every other package can depend on it without cycles.
package types

// PilotState is one of the six J1772 pilot voltage bands, ordered by
// decreasing line voltage. A is idle/unplugged, B/C/D are connected
// states, E/F are fault or no contact.
type PilotState uint8

const (
	StateA PilotState = iota
	StateB
	StateC
	StateD
	StateE
	StateF
)

func (s PilotState) String() string {
	if s > StateF {
		return "?"
	}
	return string(rune('A' + rune(s)))
}

// Connected reports whether a vehicle is present in this state.
func (s PilotState) Connected() bool {
	return s == StateB || s == StateC || s == StateD
}

// OperatingMode selects how the output duty is derived.
type OperatingMode uint8

const (
	// ModeManual: output duty is operator-specified.
	ModeManual OperatingMode = iota
	// ModeDCAuto: output duty follows the estimated pilot state.
	ModeDCAuto
)

func (m OperatingMode) String() string {
	if m == ModeDCAuto {
		return "dc"
	}
	return "manual"
}

// ParseOperatingMode accepts the wire spellings "dc" and "manual".
func ParseOperatingMode(v string) (OperatingMode, bool) {
	switch v {
	case "dc":
		return ModeDCAuto, true
	case "manual":
		return ModeManual, true
	}
	return ModeManual, false
}

// PeriphMode selects simulated or hardware-backed peripheral readings.
type PeriphMode uint8

const (
	PeriphSim PeriphMode = iota
	PeriphHW
)

func (m PeriphMode) String() string {
	if m == PeriphHW {
		return "hw"
	}
	return "sim"
}

func ParsePeriphMode(v string) (PeriphMode, bool) {
	switch v {
	case "sim":
		return PeriphSim, true
	case "hw":
		return PeriphHW, true
	}
	return PeriphSim, false
}
