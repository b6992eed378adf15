// Package board assembles the platform hardware behind the cphal
// interfaces and opens the host links. Setup is build-tagged: the
// rp2040 build wires the machine peripherals and the UART/USB links,
// every other build gets the simdev backends plus stdio.
package board

import (
	"io"

	"cp-periph-go/drivers/cphal"
)

// Link is one host-facing byte stream. Each gets its own line framer.
type Link struct {
	Name string
	RW   io.ReadWriter
}

// Devices is everything Setup hands to the control loop. Meter and
// Temps are nil when the board has no peripheral rail instrumentation;
// hw peripheral mode is then unavailable.
type Devices struct {
	ADC       cphal.ADC
	PWM       cphal.PWMOut
	Contactor cphal.ContactorIO
	System    cphal.System
	Meter     cphal.EnergyMeter
	Temps     cphal.Thermometer
	Links     []Link
}
