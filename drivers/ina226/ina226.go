// Package ina226 provides a driver for the INA226 bus voltage/current
// monitor, used as the hardware energy meter behind meter.read in "hw"
// peripheral mode.
//
// The driver reads the bus-voltage, current and power registers and
// integrates energy over wall time. The calibration register must be
// programmed from the shunt value before current/power reads are
// meaningful; Configure does this.
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when
// both w and r are provided, without releasing the bus.
package ina226

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"

	"cp-periph-go/types"
)

// I2C address with A0/A1 grounded.
const Address = 0x40

// Registers.
const (
	regConfig      = 0x00
	regShuntV      = 0x01
	regBusV        = 0x02
	regPower       = 0x03
	regCurrent     = 0x04
	regCalibration = 0x05
	regManufID     = 0xFE
	regDieID       = 0xFF
)

const (
	manufID = 0x5449 // "TI"
	dieID   = 0x2260

	busVoltLSBuV = 1250 // 1.25 mV per bit
)

// Errors returned by the driver.
var (
	ErrNotPresent = errors.New("ina226: device not present")
	ErrNotConfig  = errors.New("ina226: not configured")
)

// Config sets the shunt and the current scale. All fields optional.
type Config struct {
	// Address defaults to 0x40 if zero.
	Address uint16
	// ShuntMicroOhm defaults to 500, the board's parallel shunt pair.
	ShuntMicroOhm int
	// CurrentLSBuA is the amps-per-bit scale in µA. Default 1000 µA/bit
	// (±32.7 A full scale, comfortably above the 50 A/per-gun split rail).
	CurrentLSBuA int
}

// Device wraps an I2C connection to an INA226.
type Device struct {
	bus     drivers.I2C
	Address uint16

	cfg        Config
	calibrated bool

	energyJ    float64 // integrated energy, joules
	lastEnergy int64   // ms timestamp of the previous integration step
	now        func() int64
}

// New creates the device object; it does not touch the hardware.
func New(bus drivers.I2C) *Device {
	return &Device{
		bus:     bus,
		Address: Address,
		now:     func() int64 { return time.Now().UnixMilli() },
	}
}

// Configure verifies the chip identity and programs the calibration
// register from the shunt value.
func (d *Device) Configure(cfgs ...Config) error {
	c := Config{}
	if len(cfgs) > 0 {
		c = cfgs[0]
	}
	if c.Address != 0 {
		d.Address = c.Address
	}
	if c.ShuntMicroOhm <= 0 {
		c.ShuntMicroOhm = 500
	}
	if c.CurrentLSBuA <= 0 {
		c.CurrentLSBuA = 1000
	}
	d.cfg = c

	if id, err := d.readReg(regManufID); err != nil || id != manufID {
		return ErrNotPresent
	}

	// cal = 0.00512 / (currentLSB[A] * shunt[Ω]), in register units.
	cal := uint16(5120_000_000 / (uint64(c.CurrentLSBuA) * uint64(c.ShuntMicroOhm)))
	if err := d.writeReg(regCalibration, cal); err != nil {
		return err
	}
	d.calibrated = true
	d.lastEnergy = d.now()
	return nil
}

// ReadMeter returns one sample in the wire units of meter.read: volts,
// amps, kilowatts and accumulated kilowatt-hours.
func (d *Device) ReadMeter() (types.MeterReading, error) {
	if !d.calibrated {
		return types.MeterReading{}, ErrNotConfig
	}
	rawV, err := d.readReg(regBusV)
	if err != nil {
		return types.MeterReading{}, err
	}
	rawI, err := d.readReg(regCurrent)
	if err != nil {
		return types.MeterReading{}, err
	}
	rawP, err := d.readReg(regPower)
	if err != nil {
		return types.MeterReading{}, err
	}

	v := float64(rawV) * busVoltLSBuV / 1e6
	i := float64(int16(rawI)) * float64(d.cfg.CurrentLSBuA) / 1e6
	// Power LSB is 25× the current LSB, in watts.
	p := float64(rawP) * 25 * float64(d.cfg.CurrentLSBuA) / 1e6

	// Integrate energy between reads.
	nowMs := d.now()
	if d.lastEnergy > 0 && nowMs > d.lastEnergy {
		d.energyJ += p * float64(nowMs-d.lastEnergy) / 1000
	}
	d.lastEnergy = nowMs

	return types.MeterReading{
		V: v,
		I: i,
		P: p / 1000,          // kW
		E: d.energyJ / 3.6e6, // kWh
	}, nil
}

// --- register access ---

func (d *Device) readReg(reg uint8) (uint16, error) {
	buf := []byte{0, 0}
	if err := d.bus.Tx(d.Address, []byte{reg}, buf); err != nil {
		return 0, err
	}
	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}

func (d *Device) writeReg(reg uint8, v uint16) error {
	return d.bus.Tx(d.Address, []byte{reg, byte(v >> 8), byte(v)}, nil)
}
