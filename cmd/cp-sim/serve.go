package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"

	"github.com/gorilla/websocket"
)

// serveTCP accepts plain TCP clients and hands each one to the link
// layer as its own transport.
func serveTCP(ctx context.Context, addr string, start func(string, io.ReadWriter)) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		l.Close()
	}()
	go func() {
		for n := 0; ; n++ {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			start(fmt.Sprintf("tcp-%d", n), conn)
		}
	}()
	return nil
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRW adapts a text-message WebSocket to the byte stream the link
// layer expects. Outbound writes are one message per protocol line;
// inbound messages are surfaced through a carry buffer.
type wsRW struct {
	conn  *websocket.Conn
	carry []byte
}

func (w *wsRW) Read(p []byte) (int, error) {
	for len(w.carry) == 0 {
		_, data, err := w.conn.ReadMessage()
		if err != nil {
			return 0, io.EOF
		}
		w.carry = data
	}
	n := copy(p, w.carry)
	w.carry = w.carry[n:]
	return n, nil
}

func (w *wsRW) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// serveWS exposes the protocol at /ws on its own HTTP listener.
func serveWS(addr string, start func(string, io.ReadWriter)) {
	mux := http.NewServeMux()
	n := 0
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		name := fmt.Sprintf("ws-%d", n)
		n++
		start(name, &wsRW{conn: conn})
	})
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			fmt.Fprintln(os.Stderr, "websocket server:", err)
		}
	}()
}
