package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/gorilla/websocket"
	"go.bug.st/serial"
)

// Connection abstracts the transport to the controller. Both serial and
// WebSocket connections carry the same newline-delimited JSON lines.
type Connection interface {
	io.Reader
	io.Writer
	io.Closer
	Description() string
}

// ---------------------------------------------------------------------------
// Serial
// ---------------------------------------------------------------------------

type SerialConnection struct {
	port serial.Port
	name string
}

func OpenSerial(name string, baud int) (*SerialConnection, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return &SerialConnection{port: port, name: name}, nil
}

func (c *SerialConnection) Read(p []byte) (int, error)  { return c.port.Read(p) }
func (c *SerialConnection) Write(p []byte) (int, error) { return c.port.Write(p) }
func (c *SerialConnection) Close() error                { return c.port.Close() }

func (c *SerialConnection) Description() string {
	return fmt.Sprintf("serial %s", c.name)
}

// ---------------------------------------------------------------------------
// WebSocket
// ---------------------------------------------------------------------------

// WebSocketConnection adapts a text-message WebSocket to the stream
// Reader interface. Each inbound message is one or more protocol lines;
// leftover bytes are buffered between Read calls.
type WebSocketConnection struct {
	conn      *websocket.Conn
	url       string
	buf       []byte
	bufOffset int
	closed    bool
}

func OpenWebSocket(url string) (*WebSocketConnection, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return &WebSocketConnection{conn: conn, url: url}, nil
}

func (c *WebSocketConnection) Read(p []byte) (int, error) {
	if c.closed {
		return 0, io.EOF
	}
	for c.bufOffset >= len(c.buf) {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.closed = true
			return 0, io.EOF
		}
		c.buf = data
		c.bufOffset = 0
	}
	n := copy(p, c.buf[c.bufOffset:])
	c.bufOffset += n
	return n, nil
}

func (c *WebSocketConnection) Write(p []byte) (int, error) {
	if err := c.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *WebSocketConnection) Close() error {
	c.closed = true
	return c.conn.Close()
}

func (c *WebSocketConnection) Description() string {
	return fmt.Sprintf("websocket %s", c.url)
}

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

// OpenConnection opens whichever transport the flags select. The
// WebSocket URL wins when both are given.
func OpenConnection() (Connection, error) {
	if wsURL != "" {
		if !strings.HasPrefix(wsURL, "ws://") && !strings.HasPrefix(wsURL, "wss://") {
			return nil, fmt.Errorf("invalid websocket url %q", wsURL)
		}
		return OpenWebSocket(wsURL)
	}
	if portName != "" {
		return OpenSerial(portName, baudRate)
	}
	return nil, fmt.Errorf("no connection specified: use --port or --url")
}
