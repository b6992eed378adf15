// cp-monitor is the host-side console for the CP peripheral controller.
// It speaks the newline-delimited JSON protocol over a serial port or a
// WebSocket (as exposed by cp-sim) and offers small subcommands for the
// common service tasks: watching traffic, reading status, calibrating
// and exercising the contactor interlock.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL string
)

var rootCmd = &cobra.Command{
	Use:   "cp-monitor",
	Short: "CP peripheral controller console",
	Long: `cp-monitor - console for the Control Pilot peripheral controller.

Talks the controller's newline-delimited JSON protocol and wraps the
common service flows (status, calibration, contactor checks) in
subcommands.

Connection modes:
  Serial:    --port /dev/ttyACM0 [--baud 115200]
  WebSocket: --url ws://host:port/ws (e.g. a local cp-sim)`,
	Version: "0.3.0",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(calCmd)
	rootCmd.AddCommand(contactorCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
