// Package config resolves the per-device embedded configuration and
// publishes each top-level section as a retained bus message on
// ("config", <section>), so services can pick their section up whenever
// they start.
package config

import (
	"context"
	"encoding/json"
	"errors"

	"cp-periph-go/bus"
	"cp-periph-go/errcode"
	"cp-periph-go/types"
)

const (
	serviceName  = "config"
	configPrefix = "config"
	CtxDeviceKey = "device" // context key carrying the device ID
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// Board decodes the board wiring section for the given device. The
// control loop needs it before the bus-driven services come up, so it
// is read directly rather than via a subscription.
func Board(device string) (types.BoardConfig, error) {
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return types.BoardConfig{}, &errcode.E{C: errcode.Error, Op: "config.board", Msg: "no embedded config for " + device}
	}
	var sections struct {
		Board types.BoardConfig `json:"board"`
	}
	if err := json.Unmarshal(raw, &sections); err != nil {
		return types.BoardConfig{}, err
	}
	cfg := sections.Board
	if !cfg.Thresholds.Valid() {
		cfg.Thresholds = types.DefaultThresholds()
	}
	if cfg.PWMHz == 0 {
		cfg.PWMHz = types.DefaultBoardConfig().PWMHz
	}
	return cfg, nil
}

// publishConfig reads the device config from embedded data and
// publishes it as retained messages.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return errors.New("missing device ID in context")
	}

	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return errors.New("no embedded config for device: " + device)
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}

	for k, v := range m {
		msg := &bus.Message{
			Topic:    bus.T(configPrefix, k),
			Payload:  []byte(v),
			Retained: true,
		}
		conn.Publish(msg)
	}
	return nil
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		_ = s.publishConfig(ctx, conn)
	}()
}
