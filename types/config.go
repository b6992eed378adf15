package types

// BoardConfig fixes the board wiring and the tunables the control loop
// reads at boot. Embedded per-device JSON in services/config supplies it.
type BoardConfig struct {
	// CP line.
	CPReadChannel int    `json:"cp_read_channel"`
	ScanChannels  []int  `json:"scan_channels"` // cp.scan diagnostic set
	PWMPin        int    `json:"pwm_pin"`
	PWMHz         uint32 `json:"pwm_hz"`

	// Contactor wiring.
	CoilPin int `json:"coil_pin"`
	AuxPin  int `json:"aux_pin"`

	// Host links.
	LinkBaud int `json:"link_baud"`

	Thresholds ThresholdSet `json:"thresholds"`
}

// DefaultBoardConfig mirrors the reference board layout.
func DefaultBoardConfig() BoardConfig {
	return BoardConfig{
		CPReadChannel: 0,
		ScanChannels:  []int{0, 1, 2},
		PWMPin:        16,
		PWMHz:         1000,
		CoilPin:       14,
		AuxPin:        15,
		LinkBaud:      115200,
		Thresholds:    DefaultThresholds(),
	}
}
