package device

import (
	"context"
	"errors"
	"time"

	"github.com/nuhsistemas/scankiosk/internal/domain"
	"github.com/nuhsistemas/scankiosk/internal/ports"
)

// NFCSource keeps an NFC session open while the kiosk is ready and presents
// every tag it reads. The session is restarted after each scan cycle.
type NFCSource struct {
	session ports.NFCSession
	logger  ports.Logger
	backoff *backoff
}

// NewNFCSource creates a source reading from session.
func NewNFCSource(session ports.NFCSession, logger ports.Logger) *NFCSource {
	return &NFCSource{
		session: session,
		logger:  logger,
		backoff: newBackoff(DefaultBackoffInitial, DefaultBackoffMax),
	}
}

// WithBackoff overrides the restart delays after read errors.
func (s *NFCSource) WithBackoff(initial, max time.Duration) *NFCSource {
	s.backoff = newBackoff(initial, max)
	return s
}

// Name returns the source identifier.
func (s *NFCSource) Name() string { return "nfc" }

// Run requests tags until ctx is done. A reader that cannot be opened
// disables the channel for the rest of the run.
func (s *NFCSource) Run(ctx context.Context, sink ports.ScanSink) error {
	defer s.session.Cancel()

	for {
		if err := sink.WaitReady(ctx); err != nil {
			return err
		}

		id, err := s.session.RequestTag(ctx)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, domain.ErrDeviceUnavailable):
			s.logger.Warn("nfc reader unavailable, channel disabled", ports.Err(err))
			<-ctx.Done()
			return ctx.Err()
		case errors.Is(err, ErrSessionClosed):
			continue
		case err != nil:
			s.logger.Warn("nfc read failed, restarting session",
				ports.Err(err),
				ports.Duration("backoff", s.backoff.Current()))
			if werr := s.backoff.Wait(ctx); werr != nil {
				return werr
			}
			continue
		}
		s.backoff.Reset()

		s.logger.Debug("nfc tag read", ports.String("tag", id))
		err = sink.Present(ctx, domain.Presentation{Value: id, Channel: domain.ChannelNFC})
		if errors.Is(err, domain.ErrBusy) {
			// Dropped scans do not end a cycle, so restart the session here.
			_ = s.session.Cancel()
		}
	}
}
