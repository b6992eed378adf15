//go:build !rp2040

package board

import (
	"os"

	"cp-periph-go/drivers/simdev"
	"cp-periph-go/types"
)

// Setup builds the simulated board: the CP line tracks the locally
// generated PWM and the host talks over stdio.
func Setup(cfg types.BoardConfig) (Devices, error) {
	line := simdev.NewLine(cfg.CPReadChannel)
	line.SetNoise(8)
	return Devices{
		ADC:       line,
		PWM:       line,
		Contactor: &simdev.Contactor{},
		System:    &simdev.System{OnRestart: func() { os.Exit(0) }},
		Links:     []Link{{Name: "stdio", RW: stdio{}}},
	}, nil
}

type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
