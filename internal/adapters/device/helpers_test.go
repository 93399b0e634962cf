package device

import (
	"context"
	"sync"

	"github.com/nuhsistemas/scankiosk/internal/domain"
	"github.com/nuhsistemas/scankiosk/internal/ports"
)

type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...ports.Field) {}
func (mockLogger) Info(msg string, fields ...ports.Field)  {}
func (mockLogger) Warn(msg string, fields ...ports.Field)  {}
func (mockLogger) Error(msg string, fields ...ports.Field) {}

// recordingSink records presentations and answers with a fixed error.
type recordingSink struct {
	mu        sync.Mutex
	presented []domain.Presentation
	dismissed int
	err       error
	notify    chan domain.Presentation
}

func newRecordingSink() *recordingSink {
	return &recordingSink{notify: make(chan domain.Presentation, 16)}
}

func (s *recordingSink) Present(ctx context.Context, p domain.Presentation) error {
	s.mu.Lock()
	s.presented = append(s.presented, p)
	err := s.err
	s.mu.Unlock()
	s.notify <- p
	return err
}

func (s *recordingSink) WaitReady(ctx context.Context) error {
	return ctx.Err()
}

func (s *recordingSink) Dismiss() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dismissed++
	return true
}

func (s *recordingSink) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *recordingSink) snapshot() ([]domain.Presentation, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Presentation{}, s.presented...), s.dismissed
}
