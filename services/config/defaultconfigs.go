package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Populate embeddedConfigs at build time (e.g. via code generation) or
// manually during development.
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgCPMain = `{
  "board": {
    "cp_read_channel": 0,
    "scan_channels": [0, 1, 2],
    "pwm_pin": 16,
    "pwm_hz": 1000,
    "coil_pin": 14,
    "aux_pin": 15,
    "link_baud": 115200,
    "thresholds": {
      "t12": 2300, "t9": 2000, "t6": 1700, "t3": 1450, "t0": 1250,
      "hys": 100, "hys_ab": 50
    }
  },
  "debuglog": {
    "enabled": true
  }
}`

var embeddedConfigs = map[string][]byte{
	"cp-main": []byte(cfgCPMain),
}
