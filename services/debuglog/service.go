// Package debuglog prints the human-readable CP summary line published
// by the control loop, the one operators tail over the debug link.
package debuglog

import (
	"context"
	"encoding/json"

	"cp-periph-go/bus"
)

var (
	topicLogCP  = bus.Topic{"log", "cp"}
	topicConfig = bus.Topic{"config", "debuglog"}
)

type Config struct {
	Enabled bool `json:"enabled"`
}

type Service struct{}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	logSub := conn.Subscribe(topicLogCP)
	defer conn.Unsubscribe(logSub)
	cfgSub := conn.Subscribe(topicConfig)
	defer conn.Unsubscribe(cfgSub)

	enabled := true
	for {
		select {
		case <-ctx.Done():
			println("Info: debuglog service stopping")
			return
		case msg := <-logSub.Channel():
			if !enabled {
				continue
			}
			if line, ok := msg.Payload.(string); ok {
				println(line)
			}
		case msg := <-cfgSub.Channel():
			var cfg Config
			if raw, ok := msg.Payload.([]byte); ok {
				if err := json.Unmarshal(raw, &cfg); err == nil {
					enabled = cfg.Enabled
				}
			}
		}
	}
}

// Start the debug log service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
