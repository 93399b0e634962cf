package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nuhsistemas/scankiosk/internal/domain"
	"github.com/nuhsistemas/scankiosk/internal/ports"
)

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	a := NewZerologAdapterWithLogger(zerolog.New(&buf))

	a.Info("scan accepted",
		ports.String("value", "abc"),
		ports.Int("code", 3),
		ports.Bool("granted", true),
		ports.Duration("cooldown", time.Second),
		ports.Any("channel", domain.ChannelNFC),
		ports.Err(errors.New("boom")),
	)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if line["message"] != "scan accepted" {
		t.Errorf("message = %v", line["message"])
	}
	if line["value"] != "abc" {
		t.Errorf("value = %v", line["value"])
	}
	if line["code"] != float64(3) {
		t.Errorf("code = %v", line["code"])
	}
	if line["granted"] != true {
		t.Errorf("granted = %v", line["granted"])
	}
	if line["channel"] != "NFC" {
		t.Errorf("channel = %v, want NFC", line["channel"])
	}
	if line["error"] != "boom" {
		t.Errorf("error = %v", line["error"])
	}
}

func TestZerologAdapter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	a := NewZerologAdapterWithLogger(zerolog.New(&buf).Level(zerolog.WarnLevel))

	a.Debug("hidden")
	a.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %s", buf.String())
	}
	a.Warn("shown")
	if buf.Len() == 0 {
		t.Error("expected warn output")
	}
}
