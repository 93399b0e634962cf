package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nuhsistemas/scankiosk/internal/domain"
	"github.com/nuhsistemas/scankiosk/internal/ports"
)

// DefaultSettleDelay is how long a capture file must stay unchanged before
// it is read.
const DefaultSettleDelay = 150 * time.Millisecond

// FacialDirSource watches the directory a camera app drops captures into.
//
// A .json file is a first-phase capture: its object is held as enrollment
// fields. An image file is a capture to validate; any held fields travel
// with it.
type FacialDirSource struct {
	dir     string
	delay   time.Duration
	logger  ports.Logger
	capture *domain.FacialCapture

	mu      sync.Mutex
	pending map[string]*time.Timer

	// watching is closed once the directory watch is in place.
	watching chan struct{}
}

// NewFacialDirSource creates a source watching dir.
func NewFacialDirSource(dir string, logger ports.Logger) *FacialDirSource {
	return &FacialDirSource{
		dir:      dir,
		delay:    DefaultSettleDelay,
		logger:   logger,
		capture:  domain.NewFacialCapture(),
		pending:  make(map[string]*time.Timer),
		watching: make(chan struct{}),
	}
}

// Name returns the source identifier.
func (s *FacialDirSource) Name() string { return "facial" }

// Run watches the capture directory until ctx is done.
func (s *FacialDirSource) Run(ctx context.Context, sink ports.ScanSink) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		s.logger.Warn("capture directory unavailable, channel disabled",
			ports.String("dir", s.dir),
			ports.Err(err))
		<-ctx.Done()
		return ctx.Err()
	}
	close(s.watching)
	s.logger.Info("watching capture directory", ports.String("dir", s.dir))

	settled := make(chan string, 16)
	defer s.stopPending()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if kindOf(event.Name) == captureOther {
				continue
			}
			s.settle(ctx, event.Name, settled)

		case name := <-settled:
			s.handle(ctx, sink, name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("capture watcher error", ports.Err(err))
		}
	}
}

// settle restarts the quiet-period timer for name.
func (s *FacialDirSource) settle(ctx context.Context, name string, out chan<- string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.pending[name]; ok {
		t.Stop()
	}
	s.pending[name] = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		delete(s.pending, name)
		s.mu.Unlock()
		select {
		case out <- name:
		case <-ctx.Done():
		}
	})
}

func (s *FacialDirSource) stopPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, t := range s.pending {
		t.Stop()
		delete(s.pending, name)
	}
}

func (s *FacialDirSource) handle(ctx context.Context, sink ports.ScanSink, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("read capture failed", ports.String("file", path), ports.Err(err))
		return
	}

	switch kindOf(path) {
	case captureFields:
		fields, err := parseEnrollment(data)
		if err != nil {
			s.logger.Warn("invalid enrollment file", ports.String("file", path), ports.Err(err))
			return
		}
		s.capture.Hold(fields)
		s.logger.Info("enrollment fields held", ports.Int("fields", len(fields)))

	case captureImage:
		p := s.capture.Attach(domain.Capture{Name: filepath.Base(path), Data: data})
		err := sink.Present(ctx, p)
		if errors.Is(err, domain.ErrBusy) {
			s.logger.Debug("capture ignored while busy", ports.String("file", path))
			return
		}
		s.capture.Complete()
	}
}

type captureKind int

const (
	captureOther captureKind = iota
	captureFields
	captureImage
)

func kindOf(path string) captureKind {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return captureOther
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return captureFields
	case ".jpg", ".jpeg", ".png":
		return captureImage
	default:
		return captureOther
	}
}

// parseEnrollment decodes a flat JSON object. Non-string values are kept in
// their JSON form.
func parseEnrollment(data []byte) (domain.EnrollmentFields, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	fields := make(domain.EnrollmentFields, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			fields[k] = s
			continue
		}
		fields[k] = string(v)
	}
	return fields, nil
}
