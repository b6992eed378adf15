package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"cp-periph-go/drivers/simdev"
)

// console is the stdio transport with the simulator control channel
// folded in: lines starting with '!' adjust the simulated board and are
// consumed here, everything else passes through to the protocol.
type console struct {
	line  *simdev.Line
	cont  *simdev.Contactor
	feed  chan []byte
	carry []byte
}

func newConsole(line *simdev.Line, cont *simdev.Contactor) *console {
	c := &console{line: line, cont: cont, feed: make(chan []byte, 4)}
	go c.scanLoop()
	return c
}

func (c *console) scanLoop() {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		text := sc.Text()
		if strings.HasPrefix(text, "!") {
			c.control(strings.TrimPrefix(text, "!"))
			continue
		}
		c.feed <- []byte(text + "\n")
	}
	close(c.feed)
}

func (c *console) control(cmd string) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "plateau":
		if mv, err := strconv.Atoi(arg(fields)); err == nil {
			c.line.SetPlateau(mv)
			fmt.Fprintln(os.Stderr, "sim: plateau ->", mv, "mV")
			return
		}
	case "noise":
		if mv, err := strconv.Atoi(arg(fields)); err == nil {
			c.line.SetNoise(mv)
			fmt.Fprintln(os.Stderr, "sim: noise ->", mv, "mV")
			return
		}
	case "aux":
		switch arg(fields) {
		case "fail":
			c.cont.FailAux = true
			fmt.Fprintln(os.Stderr, "sim: aux contact stuck")
			return
		case "ok":
			c.cont.FailAux = false
			fmt.Fprintln(os.Stderr, "sim: aux contact cleared")
			return
		}
	}
	fmt.Fprintln(os.Stderr, "sim: unknown control:", cmd)
}

func arg(fields []string) string {
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

func (c *console) Read(p []byte) (int, error) {
	if len(c.carry) == 0 {
		chunk, ok := <-c.feed
		if !ok {
			return 0, io.EOF
		}
		c.carry = chunk
	}
	n := copy(p, c.carry)
	c.carry = c.carry[n:]
	return n, nil
}

func (c *console) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}
