package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestChannel_Code(t *testing.T) {
	tests := []struct {
		channel Channel
		name    string
		code    int
	}{
		{ChannelKeyboard, "TECLADO", 0},
		{ChannelQRCode, "QRCODE", 1},
		{ChannelNFC, "NFC", 3},
		{ChannelFacial, "FACIAL", 12},
		{Channel(42), "UNKNOWN", -1},
	}

	for _, tt := range tests {
		if got := tt.channel.String(); got != tt.name {
			t.Errorf("Channel(%d).String() = %s, want %s", tt.channel, got, tt.name)
		}
		if got := tt.channel.Code(); got != tt.code {
			t.Errorf("Channel(%d).Code() = %d, want %d", tt.channel, got, tt.code)
		}
	}
}

func TestParseChannel(t *testing.T) {
	tests := []struct {
		in      string
		want    Channel
		wantErr bool
	}{
		{"TECLADO", ChannelKeyboard, false},
		{"keyboard", ChannelKeyboard, false},
		{"qr", ChannelQRCode, false},
		{" QRCODE ", ChannelQRCode, false},
		{"nfc", ChannelNFC, false},
		{"Facial", ChannelFacial, false},
		{"bluetooth", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseChannel(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownChannel) {
				t.Errorf("ParseChannel(%q) error = %v, want ErrUnknownChannel", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseChannel(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseChannel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestChannel_JSONUsesNames(t *testing.T) {
	ev := ScanEvent{Value: "abc", Channel: ChannelNFC}
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if raw["channel"] != "NFC" {
		t.Errorf("channel = %v, want NFC", raw["channel"])
	}

	var back ScanEvent
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal into ScanEvent failed: %v", err)
	}
	if back.Channel != ChannelNFC {
		t.Errorf("Channel = %v, want NFC", back.Channel)
	}
}

func TestNewScanEvent(t *testing.T) {
	if _, err := NewScanEvent("", ChannelQRCode, fixedTime); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("empty value error = %v, want ErrEmptyValue", err)
	}
	if _, err := NewScanEvent("x", Channel(9), fixedTime); !errors.Is(err, ErrUnknownChannel) {
		t.Errorf("bad channel error = %v, want ErrUnknownChannel", err)
	}
	ev, err := NewScanEvent("x", ChannelQRCode, fixedTime)
	if err != nil {
		t.Fatalf("NewScanEvent failed: %v", err)
	}
	if !ev.Timestamp.Equal(fixedTime) {
		t.Errorf("Timestamp = %v, want %v", ev.Timestamp, fixedTime)
	}
}

func TestNormalizeTagID(t *testing.T) {
	tests := map[string]string{
		"04:a2:1b:ff\n": "04A21BFF",
		" 04 A2 1B ":    "04A21B",
		"0005558680":    "0005558680",
		"":              "",
	}
	for in, want := range tests {
		if got := NormalizeTagID(in); got != want {
			t.Errorf("NormalizeTagID(%q) = %q, want %q", in, got, want)
		}
	}
}
