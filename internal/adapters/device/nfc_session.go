package device

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/nuhsistemas/scankiosk/internal/domain"
	"github.com/nuhsistemas/scankiosk/internal/ports"
)

// ErrSessionClosed is returned by RequestTag when Cancel tore the session
// down while it was waiting for a tag.
var ErrSessionClosed = errors.New("nfc session closed")

// LineNFCSession reads tag UIDs from a reader that prints one UID per line,
// such as a serial reader or a FIFO fed by a reader daemon.
type LineNFCSession struct {
	open func() (io.ReadCloser, error)

	mu     sync.Mutex
	rc     io.ReadCloser
	reader *bufio.Reader
	gen    uint64
}

// NewNFCSession returns a session on the reader device at path. The device
// is opened lazily by the first RequestTag.
func NewNFCSession(path string) *LineNFCSession {
	return NewNFCSessionWithOpener(openDevice(path))
}

// NewNFCSessionWithOpener returns a session that opens its reader with open.
func NewNFCSessionWithOpener(open func() (io.ReadCloser, error)) *LineNFCSession {
	return &LineNFCSession{open: open}
}

type tagResult struct {
	id  string
	err error
}

// RequestTag blocks until a tag UID is read, the session is cancelled or
// ctx is done. The UID is normalized to compact uppercase hex.
func (s *LineNFCSession) RequestTag(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.rc == nil {
		rc, err := s.open()
		if err != nil {
			s.mu.Unlock()
			if errors.Is(err, domain.ErrDeviceUnavailable) {
				return "", err
			}
			return "", fmt.Errorf("%w: %v", domain.ErrDeviceUnavailable, err)
		}
		s.rc = rc
		s.reader = bufio.NewReader(rc)
	}
	reader := s.reader
	gen := s.gen
	s.mu.Unlock()

	ch := make(chan tagResult, 1)
	go func() {
		for {
			line, err := reader.ReadString('\n')
			if id := domain.NormalizeTagID(line); id != "" {
				ch <- tagResult{id: id}
				return
			}
			if err != nil {
				ch <- tagResult{err: err}
				return
			}
		}
	}()

	select {
	case r := <-ch:
		if r.err == nil {
			return r.id, nil
		}
		s.mu.Lock()
		cancelled := s.gen != gen
		s.mu.Unlock()
		if cancelled {
			return "", ErrSessionClosed
		}
		_ = s.Cancel()
		return "", fmt.Errorf("read tag: %w", r.err)
	case <-ctx.Done():
		_ = s.Cancel()
		return "", ctx.Err()
	}
}

// Cancel closes the reader. The next RequestTag reopens it.
func (s *LineNFCSession) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.rc == nil {
		return nil
	}
	err := s.rc.Close()
	s.rc = nil
	s.reader = nil
	return err
}

var _ ports.NFCSession = (*LineNFCSession)(nil)
