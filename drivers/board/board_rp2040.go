//go:build rp2040

package board

import (
	"context"
	"device/arm"
	"machine"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"cp-periph-go/drivers/ina226"
	"cp-periph-go/types"
	"cp-periph-go/x/timex"
)

// Setup wires the real peripherals: the on-chip ADC and PWM for the CP
// line, GPIO for the contactor, UART0 plus the USB CDC console as host
// links, and the INA226 rail monitor when it is present on I2C0.
func Setup(cfg types.BoardConfig) (Devices, error) {
	machine.InitADC()

	adc, err := newADC()
	if err != nil {
		return Devices{}, err
	}
	pwm, err := newPWM(machine.Pin(cfg.PWMPin))
	if err != nil {
		return Devices{}, err
	}

	coil := machine.Pin(cfg.CoilPin)
	coil.Configure(machine.PinConfig{Mode: machine.PinOutput})
	coil.Low()
	aux := machine.Pin(cfg.AuxPin)
	aux.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})

	d := Devices{
		ADC:       adc,
		PWM:       pwm,
		Contactor: &gpioContactor{coil: coil, aux: aux},
		System:    chip{},
		Links:     hostLinks(cfg),
	}

	// The rail monitor is optional; without it hw mode stays off.
	machine.I2C0.Configure(machine.I2CConfig{
		Frequency: 400_000,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	})
	meter := ina226.New(machine.I2C0)
	if err := meter.Configure(); err == nil {
		d.Meter = meter
		d.Temps = gunThermistors{a: adc.chans[1], b: adc.chans[2]}
	}

	return d, nil
}

// --- ADC ---

type rp2ADC struct {
	chans [3]machine.ADC
}

func newADC() (*rp2ADC, error) {
	a := &rp2ADC{chans: [3]machine.ADC{
		{Pin: machine.ADC0},
		{Pin: machine.ADC1},
		{Pin: machine.ADC2},
	}}
	for i := range a.chans {
		if err := a.chans[i].Configure(machine.ADCConfig{}); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *rp2ADC) ReadRaw(ch int) uint16 {
	if ch < 0 || ch >= len(a.chans) {
		return 0
	}
	return a.chans[ch].Get()
}

func (a *rp2ADC) ReadMillivolts(ch int) int {
	return adcMillivolts(a.ReadRaw(ch))
}

func adcMillivolts(raw uint16) int {
	return int(raw) * 3300 / 0xFFFF
}

// --- PWM ---

type rp2PWM struct {
	group pwmGroup
	ch    uint8
}

// pwmGroup is the slice of the machine PWM API the driver needs.
type pwmGroup interface {
	Configure(machine.PWMConfig) error
	Channel(machine.Pin) (uint8, error)
	Set(ch uint8, value uint32)
	Top() uint32
	SetPeriod(period uint64) error
}

func newPWM(pin machine.Pin) (*rp2PWM, error) {
	g := sliceFor(pin)
	if err := g.Configure(machine.PWMConfig{Period: 1_000_000}); err != nil {
		return nil, err
	}
	ch, err := g.Channel(pin)
	if err != nil {
		return nil, err
	}
	pin.Configure(machine.PinConfig{Mode: machine.PinPWM})
	return &rp2PWM{group: g, ch: ch}, nil
}

// sliceFor maps a GPIO to its PWM slice: slice = (gpio/2) % 8.
func sliceFor(pin machine.Pin) pwmGroup {
	switch (int(pin) / 2) % 8 {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

func (p *rp2PWM) Configure(freqHz uint32) error {
	return p.group.SetPeriod(timex.PeriodFromHz(freqHz))
}

func (p *rp2PWM) SetDuty(raw uint32) {
	top := p.group.Top()
	if raw > top {
		raw = top
	}
	p.group.Set(p.ch, raw)
}

func (p *rp2PWM) MaxDuty() uint32 { return p.group.Top() }

// --- Contactor ---

type gpioContactor struct {
	coil machine.Pin
	aux  machine.Pin
}

func (c *gpioContactor) SetCoil(on bool) { c.coil.Set(on) }
func (c *gpioContactor) Aux() bool       { return c.aux.Get() }

// --- Chip ---

type chip struct{}

func (chip) MCUTempC() float64 {
	return float64(machine.ReadTemperature()) / 1000
}

func (chip) Restart() {
	arm.SystemReset()
}

// --- Gun thermistors ---

type gunThermistors struct {
	a, b machine.ADC
}

func (g gunThermistors) ReadTemps() (types.TempsReading, error) {
	return types.TempsReading{
		GunA: types.TempC{C: ntcCelsius(adcMillivolts(g.a.Get()))},
		GunB: types.TempC{C: ntcCelsius(adcMillivolts(g.b.Get()))},
	}, nil
}

// ntcCelsius is a first-order fit of the gun NTC divider around 25 C.
func ntcCelsius(mv int) float64 {
	return 25 + float64(1650-mv)*0.05
}

// --- Host links ---

func hostLinks(cfg types.BoardConfig) []Link {
	baud := uint32(115200)
	if cfg.LinkBaud > 0 {
		baud = uint32(cfg.LinkBaud)
	}
	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{
		BaudRate: baud,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	return []Link{
		{Name: "uart0", RW: &uartRW{u: u}},
		{Name: "usb", RW: usbRW{}},
	}
}

type uartRW struct{ u *uartx.UART }

func (w *uartRW) Read(p []byte) (int, error) {
	return w.u.RecvSomeContext(context.Background(), p)
}
func (w *uartRW) Write(p []byte) (int, error) { return w.u.Write(p) }

// usbRW adapts the CDC console. Reads poll the RX ring; sleeping keeps
// the idle loop off the bus.
type usbRW struct{}

func (usbRW) Read(p []byte) (int, error) {
	for machine.Serial.Buffered() == 0 {
		time.Sleep(time.Millisecond)
	}
	n := 0
	for n < len(p) && machine.Serial.Buffered() > 0 {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			break
		}
		p[n] = b
		n++
	}
	return n, nil
}

func (usbRW) Write(p []byte) (int, error) {
	return machine.Serial.Write(p)
}
