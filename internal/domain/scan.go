package domain

import (
	"strings"
	"time"
)

// ScanEvent is one credential presentation produced by exactly one input
// source. It is immutable once created.
type ScanEvent struct {
	// Value is the raw credential: QR payload, NFC tag UID, typed code or
	// facial capture reference.
	Value string `json:"value"`

	// Channel is the input modality the value came from.
	Channel Channel `json:"channel"`

	// Timestamp is when the arbitrator accepted the presentation.
	Timestamp time.Time `json:"created_at"`
}

// NewScanEvent validates and creates a ScanEvent.
func NewScanEvent(value string, channel Channel, at time.Time) (ScanEvent, error) {
	if value == "" {
		return ScanEvent{}, ErrEmptyValue
	}
	if !channel.Valid() {
		return ScanEvent{}, ErrUnknownChannel
	}
	return ScanEvent{Value: value, Channel: channel, Timestamp: at}, nil
}

// Presentation is a credential as handed over by an input source, before the
// arbitrator accepts it and stamps it into a ScanEvent.
type Presentation struct {
	Value   string
	Channel Channel

	// Enrollment holds the fields accumulated by a first facial capture.
	// Nil for every other channel.
	Enrollment EnrollmentFields

	// Capture is the still image of a facial presentation.
	Capture *Capture
}

// Capture is a camera still attached to a facial presentation.
type Capture struct {
	Name string
	Data []byte
}

// NormalizeTagID turns an NFC UID as printed by a reader ("04:a2:1b ...")
// into the compact uppercase hex form the server expects.
func NormalizeTagID(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r == ':' || r == ' ' || r == '-':
			continue
		case r >= 'a' && r <= 'f':
			b.WriteRune(r - 'a' + 'A')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
