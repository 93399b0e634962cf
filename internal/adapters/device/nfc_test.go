package device

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/nuhsistemas/scankiosk/internal/domain"
)

func pipeOpener() (func() (io.ReadCloser, error), func() *io.PipeWriter) {
	var mu sync.Mutex
	var w *io.PipeWriter
	open := func() (io.ReadCloser, error) {
		r, pw := io.Pipe()
		mu.Lock()
		w = pw
		mu.Unlock()
		return r, nil
	}
	writer := func() *io.PipeWriter {
		mu.Lock()
		defer mu.Unlock()
		return w
	}
	return open, writer
}

func TestLineNFCSession_RequestTag(t *testing.T) {
	open, writer := pipeOpener()
	s := NewNFCSessionWithOpener(open)

	go func() {
		for writer() == nil {
			time.Sleep(time.Millisecond)
		}
		_, _ = io.WriteString(writer(), "\n04:a2:1b:9c\n")
	}()

	id, err := s.RequestTag(context.Background())
	if err != nil {
		t.Fatalf("RequestTag failed: %v", err)
	}
	if id != "04A21B9C" {
		t.Errorf("id = %q, want 04A21B9C", id)
	}
}

func TestLineNFCSession_CancelUnblocks(t *testing.T) {
	open, writer := pipeOpener()
	s := NewNFCSessionWithOpener(open)

	errc := make(chan error, 1)
	go func() {
		_, err := s.RequestTag(context.Background())
		errc <- err
	}()
	for writer() == nil {
		time.Sleep(time.Millisecond)
	}

	if err := s.Cancel(); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	select {
	case err := <-errc:
		if !errors.Is(err, ErrSessionClosed) {
			t.Errorf("RequestTag = %v, want ErrSessionClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("RequestTag still blocked after Cancel")
	}

	if err := s.Cancel(); err != nil {
		t.Errorf("Cancel on closed session = %v", err)
	}
}

func TestLineNFCSession_ContextDone(t *testing.T) {
	open, _ := pipeOpener()
	s := NewNFCSessionWithOpener(open)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := s.RequestTag(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("RequestTag = %v, want deadline exceeded", err)
	}
}

func TestLineNFCSession_OpenFailure(t *testing.T) {
	s := NewNFCSessionWithOpener(func() (io.ReadCloser, error) {
		return nil, errors.New("no such device")
	})
	if _, err := s.RequestTag(context.Background()); !errors.Is(err, domain.ErrDeviceUnavailable) {
		t.Errorf("RequestTag = %v, want ErrDeviceUnavailable", err)
	}
}

// scriptedSession replays tag reads and counts cancellations.
type scriptedSession struct {
	mu      sync.Mutex
	reads   []tagResult
	cancels int
}

func (s *scriptedSession) RequestTag(ctx context.Context) (string, error) {
	s.mu.Lock()
	if len(s.reads) == 0 {
		s.mu.Unlock()
		<-ctx.Done()
		return "", ctx.Err()
	}
	r := s.reads[0]
	s.reads = s.reads[1:]
	s.mu.Unlock()
	return r.id, r.err
}

func (s *scriptedSession) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels++
	return nil
}

func TestNFCSource_PresentsTags(t *testing.T) {
	session := &scriptedSession{reads: []tagResult{
		{id: "AA01"},
		{err: ErrSessionClosed},
		{err: errors.New("crc error")},
		{id: "BB02"},
	}}
	sink := newRecordingSink()
	src := NewNFCSource(session, mockLogger{}).WithBackoff(time.Millisecond, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx, sink) }()

	for _, want := range []string{"AA01", "BB02"} {
		select {
		case p := <-sink.notify:
			if p.Value != want || p.Channel != domain.ChannelNFC {
				t.Errorf("presented %+v, want %s on NFC", p, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("tag %s never presented", want)
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.cancels < 1 {
		t.Error("session not cancelled when the source stopped")
	}
}

func TestNFCSource_BusyRestartsSession(t *testing.T) {
	session := &scriptedSession{reads: []tagResult{{id: "AA01"}}}
	sink := newRecordingSink()
	sink.setErr(domain.ErrBusy)
	src := NewNFCSource(session, mockLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx, sink) }()

	<-sink.notify
	cancel()
	<-done

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.cancels < 2 {
		t.Errorf("cancels = %d, want a restart after the dropped scan plus the final teardown", session.cancels)
	}
}

func TestNFCSource_UnavailableIdles(t *testing.T) {
	session := &scriptedSession{reads: []tagResult{{err: domain.ErrDeviceUnavailable}, {id: "AA01"}}}
	sink := newRecordingSink()
	src := NewNFCSource(session, mockLogger{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := src.Run(ctx, sink); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run = %v, want deadline exceeded", err)
	}
	if presented, _ := sink.snapshot(); len(presented) != 0 {
		t.Errorf("presented %d tags after the reader went away", len(presented))
	}
}
