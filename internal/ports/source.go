package ports

import (
	"context"

	"github.com/nuhsistemas/scankiosk/internal/domain"
)

// ScanSink receives presentations from input sources.
type ScanSink interface {
	// Present submits a credential. Returns domain.ErrBusy when it was
	// dropped because another scan is in progress.
	Present(ctx context.Context, p domain.Presentation) error

	// WaitReady blocks until the sink accepts a new presentation.
	WaitReady(ctx context.Context) error

	// Dismiss closes the result currently shown, if any.
	Dismiss() bool
}

// Source is an input channel that feeds a ScanSink until ctx is done.
type Source interface {
	Name() string
	Run(ctx context.Context, sink ScanSink) error
}

// NFCSession is a hardware NFC reader session.
type NFCSession interface {
	// RequestTag blocks until a tag is presented, the session is cancelled
	// or ctx is done. Returns domain.ErrDeviceUnavailable if the reader
	// cannot be opened.
	RequestTag(ctx context.Context) (string, error)

	// Cancel tears down the session. Safe to call when no session is open.
	Cancel() error
}
