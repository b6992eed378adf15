package main

import (
	"context"
	"time"

	"cp-periph-go/bus"
	"cp-periph-go/drivers/board"
	"cp-periph-go/services/config"
	"cp-periph-go/services/debuglog"
	"cp-periph-go/services/firmware"
	"cp-periph-go/services/link"
	"cp-periph-go/types"
	"cp-periph-go/x/timex"
)

const deviceID = "cp-main"

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot", firmware.FirmwareID)

	cfg, err := config.Board(deviceID)
	if err != nil {
		println("Error: config:", err.Error())
		cfg = types.DefaultBoardConfig()
	}

	devs, err := board.Setup(cfg)
	if err != nil {
		println("Error: board setup:", err.Error())
		return
	}

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, deviceID)
	b := bus.NewBus(16)

	config.NewConfigService().Start(ctx, b.NewConnection("config"))
	_ = (&debuglog.Service{}).Start(ctx, b.NewConnection("debuglog"))

	lines := make(chan link.Line, 8)
	for _, l := range devs.Links {
		tr := link.NewTransport(l.Name, l.RW, b.NewConnection("link-"+l.Name))
		go func(tr *link.Transport) {
			if err := tr.Run(ctx, lines); err != nil {
				println("Error: link", tr.Name(), "stopped:", err.Error())
			}
		}(tr)
	}

	core := firmware.New(cfg, firmware.Deps{
		ADC:       devs.ADC,
		PWM:       devs.PWM,
		Contactor: devs.Contactor,
		System:    devs.System,
		Meter:     devs.Meter,
		Temps:     devs.Temps,
		Clock:     timex.Real(),
		Conn:      b.NewConnection("core"),
	})
	core.Run(ctx, lines)
}
