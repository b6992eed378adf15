// Package firmware owns the control loop and the command dispatcher.
// All mutable state (mode, thresholds, debounce, contactor interlock)
// lives in one Core and is touched by one execution context only: the
// Run loop alternates between the periodic tick and complete inbound
// lines, never both at once.
package firmware

import (
	"fmt"
	"time"

	"cp-periph-go/bus"
	"cp-periph-go/drivers/cphal"
	"cp-periph-go/services/link"
	"cp-periph-go/services/periph"
	"cp-periph-go/services/pilot"
	"cp-periph-go/types"
	"cp-periph-go/x/timex"
)

const (
	// TickPeriod is the control loop cadence.
	TickPeriod = 200 * time.Millisecond

	FirmwareID   = "cp-periph-go/0.3.0"
	ProtoVersion = 1

	// debugEveryTicks thins the human-readable log line to 1 Hz.
	debugEveryTicks = 5

	resetFlushDelay = 50 * time.Millisecond
)

// Deps collects the hardware and infrastructure handles Core needs.
// Meter and Temps are optional; without them hw peripheral mode is
// rejected at sys.set_mode.
type Deps struct {
	ADC       cphal.ADC
	PWM       cphal.PWMOut
	Contactor cphal.ContactorIO
	System    cphal.System
	Meter     cphal.EnergyMeter
	Temps     cphal.Thermometer
	Clock     timex.Clock
	Conn      *bus.Connection
}

// Core is the single owner of all control state.
type Core struct {
	cfg  types.BoardConfig
	clk  timex.Clock
	conn *bus.Connection

	sampler *pilot.Sampler
	hist    pilot.MaxHistory
	est     *pilot.Estimator
	out     *pilot.Output
	lock    *periph.Interlock
	sensors *periph.Sensors
	sys     cphal.System
	adc     cphal.ADC

	mode       types.OperatingMode
	th         types.ThresholdSet
	pwmEnabled bool
	pwmDuty    int
	pwmHz      uint32
	outDuty    int

	lastBurst pilot.Burst

	meterStream periph.Stream
	tempsStream periph.Stream

	bootMs int64
	ticks  uint32
}

func New(cfg types.BoardConfig, d Deps) *Core {
	c := &Core{
		cfg:     cfg,
		clk:     d.Clock,
		conn:    d.Conn,
		sampler: pilot.NewSampler(d.ADC, cfg.CPReadChannel),
		est:     pilot.NewEstimator(),
		out:     pilot.NewOutput(d.PWM),
		sys:     d.System,
		adc:     d.ADC,
		mode:    types.ModeDCAuto,
		th:      cfg.Thresholds,
		pwmDuty: 100,
		bootMs:  d.Clock.NowMs(),
	}
	if !c.th.Valid() {
		c.th = types.DefaultThresholds()
	}
	c.lock = periph.NewInterlock(d.Contactor, d.Clock)
	c.sensors = periph.NewSensors(c.lock.Commanded)
	if d.Meter != nil && d.Temps != nil {
		c.sensors.AttachHW(d.Meter, d.Temps)
	}
	c.pwmHz = c.out.SetFreq(cfg.PWMHz)
	c.applyOutput()
	return c
}

// Tick runs one control iteration: sample, estimate, drive the output,
// run the keepalive failsafe, service streams, broadcast status.
func (c *Core) Tick() {
	b := c.sampler.Burst(pilot.BurstCount, pilot.BurstSpacing)
	c.lastBurst = b
	c.hist.Push(b.Plateau)
	c.est.Observe(c.th, b.Plateau)
	c.applyOutput()

	if c.lock.TickKeepalive() {
		c.emitEvent("failsafe.keepalive", map[string]any{"forced": "contactor_off"})
	}

	now := c.clk.NowMs()
	if c.meterStream.Due(now) {
		if r, err := c.sensors.ReadMeter(); err == nil {
			c.emitEvent("meter.tick", r)
		}
	}
	if c.tempsStream.Due(now) {
		if r, err := c.sensors.ReadTemps(); err == nil {
			c.emitEvent("temps.tick", r)
		}
	}

	c.broadcast(c.status())

	c.ticks++
	if c.ticks%debugEveryTicks == 0 {
		c.conn.Publish(c.conn.NewMessage(bus.T("log", "cp"), c.debugLine(), false))
	}
}

// applyOutput re-derives the effective output duty from the current
// mode and committed pilot state. Called every tick and after any
// command that changes mode, duty or frequency.
func (c *Core) applyOutput() {
	if c.mode == types.ModeManual {
		c.outDuty = c.out.ApplyManual(c.pwmEnabled, c.pwmDuty)
		return
	}
	c.outDuty = c.out.ApplyAuto(c.est.State())
}

func (c *Core) status() types.StatusFrame {
	return types.StatusFrame{
		Type:       "status",
		CPMv:       c.lastBurst.Plateau,
		CPMvRobust: c.hist.Robust(),
		State:      c.est.State().String(),
		Mode:       c.mode.String(),
		PWM: types.PWMStatus{
			Enabled: c.pwmEnabled,
			Duty:    c.pwmDuty,
			Hz:      c.pwmHz,
			Out:     c.outDuty,
		},
		Thresh: c.th,
	}
}

func (c *Core) debugLine() string {
	return fmt.Sprintf("cp mv_max=%d mv_min=%d mv_avg=%d state=%s mode=%s pwm=%d%% out=%d%%",
		c.lastBurst.Plateau, c.lastBurst.Min, c.lastBurst.Mean,
		c.est.State(), c.mode, c.pwmDuty, c.outDuty)
}

// reply addresses one transport; broadcast reaches all of them.
func (c *Core) reply(transport string, payload any) {
	c.conn.Publish(c.conn.NewMessage(link.TxTopic(transport), payload, false))
}

func (c *Core) broadcast(payload any) {
	c.conn.Publish(c.conn.NewMessage(link.BroadcastTopic(), payload, false))
}

func (c *Core) emitEvent(name string, result any) {
	c.broadcast(types.EventFrame{
		Type:   "evt",
		TS:     c.clk.NowMs(),
		ID:     0,
		Method: "evt:" + name,
		Result: result,
	})
}
