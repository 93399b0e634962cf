package device

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nuhsistemas/scankiosk/internal/domain"
	"github.com/nuhsistemas/scankiosk/internal/ports"
)

// LineSource turns newline-terminated input into presentations. HID
// barcode scanners behave as keyboards and emit one line per code, so the
// same reader serves typed codes and QR scans.
type LineSource struct {
	name    string
	channel domain.Channel
	open    func() (io.ReadCloser, error)
	logger  ports.Logger

	// dismissOnEmpty closes the shown result when an empty line arrives.
	dismissOnEmpty bool
}

// NewKeyboardSource reads typed codes from r. An empty line (Enter) closes
// the result currently shown.
func NewKeyboardSource(r io.Reader, logger ports.Logger) *LineSource {
	return &LineSource{
		name:           "keyboard",
		channel:        domain.ChannelKeyboard,
		open:           func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
		logger:         logger,
		dismissOnEmpty: true,
	}
}

// NewQRSource reads scanned codes from the scanner device at path.
func NewQRSource(path string, logger ports.Logger) *LineSource {
	return &LineSource{
		name:    "qrcode",
		channel: domain.ChannelQRCode,
		open:    openDevice(path),
		logger:  logger,
	}
}

// Name returns the source identifier.
func (s *LineSource) Name() string { return s.name }

// Run reads lines until EOF or ctx is done.
func (s *LineSource) Run(ctx context.Context, sink ports.ScanSink) error {
	rc, err := s.open()
	if err != nil {
		s.logger.Warn("input device unavailable, channel disabled",
			ports.String("source", s.name),
			ports.Err(err))
		<-ctx.Done()
		return ctx.Err()
	}
	defer rc.Close()

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(rc)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					if err != nil {
						return fmt.Errorf("read %s: %w", s.name, err)
					}
				default:
				}
				s.logger.Info("input closed", ports.String("source", s.name))
				return nil
			}
			s.handle(ctx, sink, line)
		}
	}
}

func (s *LineSource) handle(ctx context.Context, sink ports.ScanSink, line string) {
	value := strings.TrimSpace(line)
	if value == "" {
		if s.dismissOnEmpty {
			sink.Dismiss()
		}
		return
	}

	err := sink.Present(ctx, domain.Presentation{Value: value, Channel: s.channel})
	if errors.Is(err, domain.ErrBusy) {
		s.logger.Debug("scan ignored while busy", ports.String("source", s.name))
	}
}

// openDevice opens a character device or FIFO for reading.
func openDevice(path string) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		if path == "" {
			return nil, fmt.Errorf("%w: no device configured", domain.ErrDeviceUnavailable)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrDeviceUnavailable, err)
		}
		return f, nil
	}
}
