package config

import (
	"context"
	"testing"
	"time"

	"cp-periph-go/bus"
	"cp-periph-go/errcode"
)

func TestPublishRetainedPerSection(t *testing.T) {
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) {
		if device != "cp-main" {
			return nil, false
		}
		return []byte(`{
			"board": {"pwm_hz": 1000},
			"debuglog": {"enabled": true}
		}`), true
	}
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "cp-main")
	svc.Start(ctx, conn)

	// Retained sections must reach a late subscriber.
	deadline := time.Now().Add(600 * time.Millisecond)
	var got []byte
	for time.Now().Before(deadline) {
		sub := conn.Subscribe(bus.T(configPrefix, "debuglog"))
		select {
		case m := <-sub.Channel():
			got, _ = m.Payload.([]byte)
		case <-time.After(10 * time.Millisecond):
		}
		conn.Unsubscribe(sub)
		if got != nil {
			break
		}
	}
	if string(got) != `{"enabled": true}` {
		t.Fatalf("debuglog section = %q", got)
	}
}

func TestBoardSection(t *testing.T) {
	cfg, err := Board("cp-main")
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	if cfg.PWMHz != 1000 || cfg.PWMPin != 16 || cfg.LinkBaud != 115200 {
		t.Errorf("cfg = %+v", cfg)
	}
	if !cfg.Thresholds.Valid() {
		t.Error("embedded thresholds invalid")
	}
}

func TestBoardUnknownDevice(t *testing.T) {
	_, err := Board("no-such-device")
	if err == nil {
		t.Fatal("expected error for unknown device")
	}
	if errcode.Of(err) != errcode.Error {
		t.Errorf("code = %v", errcode.Of(err))
	}
}

func TestPublishConfigMissingDevice(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test-missing-device")
	svc := NewConfigService()

	if err := svc.publishConfig(context.Background(), conn); err == nil {
		t.Fatal("expected error for missing device ID, got nil")
	}
}
