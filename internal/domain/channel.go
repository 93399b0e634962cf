package domain

import (
	"fmt"
	"strings"
)

// Channel is the input modality a credential was presented through.
type Channel int

const (
	ChannelKeyboard Channel = iota
	ChannelQRCode
	ChannelNFC
	ChannelFacial
)

// Channels lists every defined channel in display order.
var Channels = []Channel{ChannelKeyboard, ChannelQRCode, ChannelNFC, ChannelFacial}

// String returns the channel name used by the server and in history.
func (c Channel) String() string {
	switch c {
	case ChannelKeyboard:
		return "TECLADO"
	case ChannelQRCode:
		return "QRCODE"
	case ChannelNFC:
		return "NFC"
	case ChannelFacial:
		return "FACIAL"
	default:
		return "UNKNOWN"
	}
}

// Code returns the numeric "canal" value sent to the validation endpoint.
// The gaps are part of the server's contract.
func (c Channel) Code() int {
	switch c {
	case ChannelKeyboard:
		return 0
	case ChannelQRCode:
		return 1
	case ChannelNFC:
		return 3
	case ChannelFacial:
		return 12
	default:
		return -1
	}
}

// Valid reports whether c is one of the defined channels.
func (c Channel) Valid() bool {
	return c >= ChannelKeyboard && c <= ChannelFacial
}

// ParseChannel parses a channel name. Both the server names (TECLADO, QRCODE,
// NFC, FACIAL) and the English aliases (keyboard, qr) are accepted.
func ParseChannel(s string) (Channel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TECLADO", "KEYBOARD":
		return ChannelKeyboard, nil
	case "QRCODE", "QR":
		return ChannelQRCode, nil
	case "NFC":
		return ChannelNFC, nil
	case "FACIAL", "FACE":
		return ChannelFacial, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, s)
	}
}

// MarshalText implements encoding.TextMarshaler so history files store names.
func (c Channel) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownChannel, int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Channel) UnmarshalText(b []byte) error {
	parsed, err := ParseChannel(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
