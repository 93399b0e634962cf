package device

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nuhsistemas/scankiosk/internal/domain"
)

func startFacial(t *testing.T, dir string, sink *recordingSink) (*FacialDirSource, context.CancelFunc) {
	t.Helper()
	src := NewFacialDirSource(dir, mockLogger{})
	src.delay = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = src.Run(ctx, sink)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	select {
	case <-src.watching:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never started")
	}
	return src, cancel
}

func waitPresented(t *testing.T, sink *recordingSink) domain.Presentation {
	t.Helper()
	select {
	case p := <-sink.notify:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("no presentation")
		return domain.Presentation{}
	}
}

func TestFacialDirSource_TwoPhase(t *testing.T) {
	dir := t.TempDir()
	sink := newRecordingSink()
	src, _ := startFacial(t, dir, sink)

	if err := os.WriteFile(filepath.Join(dir, "enroll.json"), []byte(`{"cpf":"12345678901","idade":30}`), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := src.capture.State().(domain.AwaitingSecondCapture); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("enrollment fields never held")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := os.WriteFile(filepath.Join(dir, "face.jpg"), []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := waitPresented(t, sink)
	if p.Channel != domain.ChannelFacial || p.Value != "face.jpg" {
		t.Errorf("presentation = %+v", p)
	}
	if p.Capture == nil || string(p.Capture.Data) != "jpeg" {
		t.Errorf("capture = %+v", p.Capture)
	}
	if p.Enrollment["cpf"] != "12345678901" || p.Enrollment["idade"] != "30" {
		t.Errorf("enrollment = %v", p.Enrollment)
	}
}

func TestFacialDirSource_BusyKeepsFields(t *testing.T) {
	dir := t.TempDir()
	sink := newRecordingSink()
	sink.setErr(domain.ErrBusy)
	src, _ := startFacial(t, dir, sink)

	src.capture.Hold(domain.EnrollmentFields{"cpf": "1"})
	if err := os.WriteFile(filepath.Join(dir, "a.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitPresented(t, sink)

	time.Sleep(20 * time.Millisecond)
	if _, ok := src.capture.State().(domain.AwaitingSecondCapture); !ok {
		t.Error("held fields dropped after a busy rejection")
	}
}

func TestFacialDirSource_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	sink := newRecordingSink()
	startFacial(t, dir, sink)

	for _, name := range []string{"notes.txt", ".partial.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	select {
	case p := <-sink.notify:
		t.Errorf("unexpected presentation %+v", p)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFacialDirSource_MissingDir(t *testing.T) {
	src := NewFacialDirSource(filepath.Join(t.TempDir(), "missing"), mockLogger{})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := src.Run(ctx, newRecordingSink()); err != context.DeadlineExceeded {
		t.Errorf("Run = %v, want deadline exceeded", err)
	}
}

func TestParseEnrollment(t *testing.T) {
	fields, err := parseEnrollment([]byte(`{"nome":"Ana","ativo":true}`))
	if err != nil {
		t.Fatal(err)
	}
	if fields["nome"] != "Ana" || fields["ativo"] != "true" {
		t.Errorf("fields = %v", fields)
	}
	if _, err := parseEnrollment([]byte(`[1,2]`)); err == nil {
		t.Error("expected error for non-object JSON")
	}
}
