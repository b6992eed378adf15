package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var watchRaw bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream frames from the controller",
	Long: `Prints every frame the controller emits. Status broadcasts are
condensed to one line each unless --raw is given.`,
	RunE: withSession(func(s *session, args []string) error {
		for {
			line, f, err := s.nextLine()
			if err != nil {
				return err
			}
			if watchRaw || f == nil {
				fmt.Println(line)
				continue
			}
			switch f.Type {
			case "status":
				fmt.Printf("status  state=%s mode=%s cp=%4dmV out=%d%%@%dHz\n",
					f.State, f.Mode, f.CPMv, f.PWM.Out, f.PWM.Hz)
			case "evt":
				fmt.Printf("EVENT   %s %s\n", f.Method, line)
			default:
				fmt.Println(line)
			}
		}
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Read one status frame and exit",
	RunE: withSession(func(s *session, args []string) error {
		if err := s.sendLine(`{"cmd":"get_status"}`); err != nil {
			return err
		}
		line, _, err := s.waitFor(func(f *frame) bool { return f.Type == "status" })
		if err != nil {
			return err
		}
		fmt.Println(line)
		return nil
	}),
}

var sendCmd = &cobra.Command{
	Use:   "send <json-line>",
	Short: "Send one raw protocol line and print replies",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(s *session, args []string) error {
		if err := s.sendLine(args[0]); err != nil {
			return err
		}
		// Replies and the first status frame only; the periodic
		// broadcasts would otherwise drown the output.
		statusSeen := false
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			line, f, err := s.nextLine()
			if err != nil {
				return err
			}
			if f != nil && f.Type == "status" {
				if statusSeen {
					continue
				}
				statusSeen = true
			}
			fmt.Println(line)
		}
		return nil
	}),
}

var calCmd = &cobra.Command{
	Use:   "cal",
	Short: "Run CP threshold auto-calibration",
	Long: `Runs cp.auto_cal on the controller. The pilot line must be idle
(state A, no vehicle) or calibration is rejected.`,
	RunE: withSession(func(s *session, args []string) error {
		if err := s.sendLine(`{"cmd":"cp.auto_cal"}`); err != nil {
			return err
		}
		line, f, err := s.waitFor(func(f *frame) bool {
			return f.Type == "status" || f.Type == "error"
		})
		if err != nil {
			return err
		}
		if f.Type == "error" {
			return fmt.Errorf("calibration failed: %s", f.Msg)
		}
		fmt.Println("calibration ok")
		fmt.Println(line)
		return nil
	}),
}

var contactorOn bool

var contactorCmd = &cobra.Command{
	Use:   "contactor",
	Short: "Arm and switch the contactor",
	Long: `Arms the controller, switches the contactor with --on or --off and
prints the verified contactor state. When closing, a sys.ping keepalive
runs until interrupted so the controller's failsafe does not drop the
contactor.`,
	RunE: withSession(func(s *session, args []string) error {
		if _, err := s.call("sys.arm", nil); err != nil {
			return err
		}
		f, err := s.call("contactor.set", map[string]any{"on": contactorOn})
		if err != nil {
			return err
		}
		var st struct {
			Commanded bool    `json:"commanded"`
			AuxOK     bool    `json:"aux_ok"`
			CoilMA    float64 `json:"coil_ma"`
			Reason    string  `json:"reason"`
		}
		if err := json.Unmarshal(f.Result, &st); err != nil {
			return err
		}
		fmt.Printf("contactor commanded=%v aux_ok=%v coil=%.0fmA reason=%s\n",
			st.Commanded, st.AuxOK, st.CoilMA, st.Reason)
		if !contactorOn {
			return nil
		}
		fmt.Println("holding keepalive, Ctrl-C to exit (controller fails safe)")
		for {
			time.Sleep(2 * time.Second)
			if _, err := s.call("sys.ping", nil); err != nil {
				return err
			}
		}
	}),
}

func init() {
	watchCmd.Flags().BoolVar(&watchRaw, "raw", false, "Print frames verbatim")
	contactorCmd.Flags().BoolVar(&contactorOn, "on", false, "Close the contactor")
}
