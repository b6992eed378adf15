package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const replyTimeout = 3 * time.Second

// session wraps a connection with a line scanner and the request/reply
// plumbing the subcommands share.
type session struct {
	conn    Connection
	scanner *bufio.Scanner
	nextID  int
}

func openSession() (*session, error) {
	conn, err := OpenConnection()
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 4096), 4096)
	return &session{conn: conn, scanner: sc, nextID: 1}, nil
}

func (s *session) Close() error { return s.conn.Close() }

func (s *session) sendLine(line string) error {
	_, err := s.conn.Write([]byte(line + "\n"))
	return err
}

// frame is the loose union of everything the controller emits. Only the
// fields a given command inspects are populated.
type frame struct {
	Type   string          `json:"type"`
	Msg    string          `json:"msg"`
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Result json.RawMessage `json:"result"`
	Err    *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`

	// Status frame fields
	State string `json:"state"`
	Mode  string `json:"mode"`
	CPMv  int    `json:"cp_mv"`
	PWM   struct {
		Duty int    `json:"duty"`
		Hz   uint32 `json:"hz"`
		Out  int    `json:"out"`
	} `json:"pwm"`
}

// nextLine blocks for the next inbound line, decoding it as a frame.
// Lines that are not JSON are returned raw with a nil frame.
func (s *session) nextLine() (string, *frame, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("connection closed")
	}
	line := s.scanner.Text()
	var f frame
	if err := json.Unmarshal([]byte(line), &f); err != nil {
		return line, nil, nil
	}
	return line, &f, nil
}

// waitFor reads lines until pred accepts one. Status broadcasts arriving
// in between are skipped.
func (s *session) waitFor(pred func(*frame) bool) (string, *frame, error) {
	deadline := time.Now().Add(replyTimeout)
	for time.Now().Before(deadline) {
		line, f, err := s.nextLine()
		if err != nil {
			return "", nil, err
		}
		if f != nil && pred(f) {
			return line, f, nil
		}
	}
	return "", nil, fmt.Errorf("timed out waiting for reply")
}

// call issues a JSON-RPC style request and waits for the response with
// the matching id.
func (s *session) call(method string, params any) (*frame, error) {
	id := s.nextID
	s.nextID++
	req := map[string]any{"type": "req", "id": id, "method": method}
	if params != nil {
		req["params"] = params
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if err := s.sendLine(string(raw)); err != nil {
		return nil, err
	}
	want, _ := json.Marshal(id)
	_, f, err := s.waitFor(func(f *frame) bool {
		return f.Type == "res" && string(f.ID) == string(want)
	})
	if err != nil {
		return nil, err
	}
	if f.Err != nil {
		return f, fmt.Errorf("%s: %s (%d)", method, f.Err.Message, f.Err.Code)
	}
	return f, nil
}

// withSession is the shared RunE scaffold: open, run, close.
func withSession(fn func(*session, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()
		fmt.Printf("Connected via %s\n", s.conn.Description())
		return fn(s, args)
	}
}
