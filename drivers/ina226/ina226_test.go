package ina226

import (
	"testing"
)

// fakeI2C serves reads from a register map and records writes.
type fakeI2C struct {
	regs   map[uint8]uint16
	writes []uint8
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	if len(w) == 1 && len(r) == 2 {
		v := f.regs[w[0]]
		r[0] = byte(v >> 8)
		r[1] = byte(v)
		return nil
	}
	if len(w) == 3 {
		f.regs[w[0]] = uint16(w[1])<<8 | uint16(w[2])
		f.writes = append(f.writes, w[0])
		return nil
	}
	return nil
}

func newFake() *fakeI2C {
	return &fakeI2C{regs: map[uint8]uint16{
		regManufID: manufID,
		regDieID:   dieID,
	}}
}

func TestConfigureRejectsWrongChip(t *testing.T) {
	f := newFake()
	f.regs[regManufID] = 0x1234
	d := New(f)
	if err := d.Configure(); err != ErrNotPresent {
		t.Fatalf("expected ErrNotPresent, got %v", err)
	}
	if _, err := d.ReadMeter(); err != ErrNotConfig {
		t.Fatalf("expected ErrNotConfig before Configure, got %v", err)
	}
}

func TestConfigureWritesCalibration(t *testing.T) {
	f := newFake()
	d := New(f)
	if err := d.Configure(Config{ShuntMicroOhm: 500, CurrentLSBuA: 1000}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	// cal = 0.00512 / (1e-3 A/bit * 500e-6 Ω) = 10240.
	if got := f.regs[regCalibration]; got != 10240 {
		t.Fatalf("calibration register = %d, want 10240", got)
	}
}

func TestReadMeterScalesUnits(t *testing.T) {
	f := newFake()
	f.regs[regBusV] = 3200    // 3200 * 1.25 mV = 4.0 V
	f.regs[regCurrent] = 5000 // 5000 * 1 mA = 5.0 A
	f.regs[regPower] = 800    // 800 * 25 mW = 20.0 W

	d := New(f)
	ms := int64(1_000)
	d.now = func() int64 { return ms }
	if err := d.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}

	m, err := d.ReadMeter()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if m.V != 4.0 {
		t.Errorf("V = %v, want 4.0", m.V)
	}
	if m.I != 5.0 {
		t.Errorf("I = %v, want 5.0", m.I)
	}
	if m.P != 0.02 {
		t.Errorf("P = %v kW, want 0.02", m.P)
	}

	// One hour at 20 W integrates to 20 Wh.
	ms += 3_600_000
	m, err = d.ReadMeter()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if diff := m.E - 0.02; diff < -1e-9 || diff > 1e-9 {
		t.Errorf("E = %v kWh, want 0.02", m.E)
	}
}
