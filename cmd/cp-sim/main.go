// cp-sim runs the CP controller firmware on a host machine against the
// simulated board: the pilot line couples to the local PWM output, the
// contactor and sensors are software models. It serves the same
// newline-delimited JSON protocol the hardware does, over stdio, a TCP
// listener and a WebSocket endpoint, so cp-monitor and integration
// harnesses can talk to it unmodified.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cp-periph-go/bus"
	"cp-periph-go/drivers/simdev"
	"cp-periph-go/services/config"
	"cp-periph-go/services/debuglog"
	"cp-periph-go/services/firmware"
	"cp-periph-go/services/link"
	"cp-periph-go/types"
	"cp-periph-go/x/timex"
)

const deviceID = "cp-main"

var (
	tcpAddr   string
	wsAddr    string
	plateauMv int
	noiseMv   int
	failAux   bool
)

var rootCmd = &cobra.Command{
	Use:   "cp-sim",
	Short: "Run the CP controller firmware against the simulated board",
	Long: `cp-sim boots the controller firmware with simulated peripherals and
serves its protocol on stdio, and optionally TCP and WebSocket.

Lines on stdin starting with '!' are simulator controls rather than
protocol traffic:
  !plateau <mv>   set the pilot plateau voltage (vehicle state)
  !noise <mv>     set the sampling noise amplitude
  !aux fail|ok    force or clear an aux contact fault`,
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVar(&tcpAddr, "tcp", "", "TCP listen address (e.g. :9900)")
	rootCmd.Flags().StringVar(&wsAddr, "ws", "", "WebSocket listen address (e.g. :9901, endpoint /ws)")
	rootCmd.Flags().IntVar(&plateauMv, "plateau", 2350, "Initial pilot plateau in mV")
	rootCmd.Flags().IntVar(&noiseMv, "noise", 8, "Sampling noise amplitude in mV")
	rootCmd.Flags().BoolVar(&failAux, "fail-aux", false, "Simulate a stuck aux contact")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Board(deviceID)
	if err != nil {
		cfg = types.DefaultBoardConfig()
	}

	line := simdev.NewLine(cfg.CPReadChannel)
	line.SetPlateau(plateauMv)
	line.SetNoise(noiseMv)
	cont := &simdev.Contactor{FailAux: failAux}
	sys := &simdev.System{OnRestart: func() { os.Exit(0) }}

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, deviceID)
	b := bus.NewBus(16)

	config.NewConfigService().Start(ctx, b.NewConnection("config"))
	_ = (&debuglog.Service{}).Start(ctx, b.NewConnection("debuglog"))

	lines := make(chan link.Line, 8)
	startTransport := func(name string, rw io.ReadWriter) {
		tr := link.NewTransport(name, rw, b.NewConnection("link-"+name))
		go func() {
			if err := tr.Run(ctx, lines); err != nil {
				fmt.Fprintln(os.Stderr, "link", name, "stopped:", err)
			}
		}()
	}

	startTransport("stdio", newConsole(line, cont))
	if tcpAddr != "" {
		if err := serveTCP(ctx, tcpAddr, startTransport); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "tcp listening on", tcpAddr)
	}
	if wsAddr != "" {
		serveWS(wsAddr, startTransport)
		fmt.Fprintln(os.Stderr, "websocket listening on", wsAddr)
	}

	core := firmware.New(cfg, firmware.Deps{
		ADC:       line,
		PWM:       line,
		Contactor: cont,
		System:    sys,
		Clock:     timex.Real(),
		Conn:      b.NewConnection("core"),
	})
	core.Run(ctx, lines)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
