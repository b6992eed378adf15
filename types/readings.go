package types

// MeterReading is one energy meter sample.
type MeterReading struct {
	V float64 `json:"v"` // volts
	I float64 `json:"i"` // amps
	P float64 `json:"p"` // kW
	E float64 `json:"e"` // kWh accumulated
}

// TempC wraps a single Celsius reading for the nested wire shape
// {"gun_a":{"c":32.5}}.
type TempC struct {
	C float64 `json:"c"`
}

// TempsReading groups the charge gun temperature probes.
type TempsReading struct {
	GunA TempC `json:"gun_a"`
	GunB TempC `json:"gun_b"`
}

// ContactorStatus is the read-only contactor.check report.
type ContactorStatus struct {
	Commanded bool    `json:"commanded"`
	AuxOK     bool    `json:"aux_ok"`
	CoilMA    float64 `json:"coil_ma"`
	Reason    string  `json:"reason"`
}
