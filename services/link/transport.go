package link

import (
	"context"
	"encoding/json"
	"io"

	"cp-periph-go/bus"
)

// Line is one complete inbound command line, tagged with the transport
// it arrived on so the dispatcher can address the reply.
type Line struct {
	Transport string
	Text      string
}

// TxTopic is the bus topic carrying reply frames for one transport.
func TxTopic(transport string) bus.Topic { return bus.T("tx", transport) }

// BroadcastTopic carries frames every connected transport writes out
// (periodic status, stream events, failsafe notifications).
func BroadcastTopic() bus.Topic { return bus.T("tx", "broadcast") }

// Transport pumps one byte stream: inbound bytes are framed into Lines
// on a shared channel, outbound bus frames are serialized and written
// newline-terminated. One Transport per physical link.
type Transport struct {
	name string
	rw   io.ReadWriter
	conn *bus.Connection
}

func NewTransport(name string, rw io.ReadWriter, conn *bus.Connection) *Transport {
	return &Transport{name: name, rw: rw, conn: conn}
}

func (t *Transport) Name() string { return t.name }

// Run blocks until ctx is cancelled or the stream fails. The reader
// goroutine it spawns exits with the stream.
func (t *Transport) Run(ctx context.Context, lines chan<- Line) error {
	txSub := t.conn.Subscribe(TxTopic(t.name))
	defer t.conn.Unsubscribe(txSub)
	bcSub := t.conn.Subscribe(BroadcastTopic())
	defer t.conn.Unsubscribe(bcSub)

	errCh := make(chan error, 1)
	go func() { errCh <- t.readLoop(ctx, lines) }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		case m := <-txSub.Channel():
			if err := t.writeFrame(m.Payload); err != nil {
				return err
			}
		case m := <-bcSub.Channel():
			if err := t.writeFrame(m.Payload); err != nil {
				return err
			}
		}
	}
}

func (t *Transport) readLoop(ctx context.Context, lines chan<- Line) error {
	var f Framer
	buf := make([]byte, 64)
	for {
		n, err := t.rw.Read(buf)
		if n > 0 {
			f.Feed(buf[:n], func(s string) {
				select {
				case lines <- Line{Transport: t.name, Text: s}:
				case <-ctx.Done():
				}
			})
		}
		if err != nil {
			return err
		}
	}
}

var nl = []byte{'\n'}

func (t *Transport) writeFrame(payload any) error {
	var b []byte
	switch v := payload.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		var err error
		if b, err = json.Marshal(v); err != nil {
			return err
		}
	}
	if _, err := t.rw.Write(b); err != nil {
		return err
	}
	_, err := t.rw.Write(nl)
	return err
}
