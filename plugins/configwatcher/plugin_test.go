package configwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nuhsistemas/scankiosk/internal/app"
	"github.com/nuhsistemas/scankiosk/internal/cliconfig"
	"github.com/nuhsistemas/scankiosk/internal/ports"
)

type noopLogger struct{}

func (noopLogger) Debug(msg string, fields ...ports.Field) {}
func (noopLogger) Info(msg string, fields ...ports.Field)  {}
func (noopLogger) Warn(msg string, fields ...ports.Field)  {}
func (noopLogger) Error(msg string, fields ...ports.Field) {}

type stationRecorder struct {
	mu  sync.Mutex
	got []ports.Station
}

func (r *stationRecorder) set(s ports.Station) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, s)
}

func (r *stationRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

func startPlugin(t *testing.T, path string, initial ports.Station, rec *stationRecorder) *Plugin {
	t.Helper()
	plugin := New(Config{DebounceDelay: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	err := plugin.Initialize(ctx, app.PluginConfig{
		ConfigPath: path,
		Station:    initial,
		SetStation: rec.set,
		Logger:     noopLogger{},
	})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		if err := plugin.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown failed: %v", err)
		}
	})
	return plugin
}

func TestPlugin_ReloadsStation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	initial := ports.Station{BaseURL: "https://old.example.com", PIN: "1"}
	if err := cliconfig.SaveFileConfig(path, cliconfig.FileConfig{BaseURL: initial.BaseURL, PIN: initial.PIN}); err != nil {
		t.Fatal(err)
	}

	rec := &stationRecorder{}
	plugin := startPlugin(t, path, initial, rec)

	err := cliconfig.SaveFileConfig(path, cliconfig.FileConfig{
		BaseURL: "https://new.example.com/",
		PIN:     "2",
		Sector:  "Garagem",
	})
	if err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-plugin.reloaded:
		want := ports.Station{BaseURL: "https://new.example.com", PIN: "2", Sector: "Garagem"}
		if got != want {
			t.Errorf("reloaded station = %+v, want %+v", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("station was not reloaded")
	}
	if rec.count() != 1 {
		t.Errorf("SetStation called %d times, want 1", rec.count())
	}
}

func TestPlugin_IgnoresUnchangedAndInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	initial := ports.Station{BaseURL: "https://same.example.com", PIN: "1"}
	if err := cliconfig.SaveFileConfig(path, cliconfig.FileConfig{BaseURL: initial.BaseURL, PIN: initial.PIN}); err != nil {
		t.Fatal(err)
	}

	rec := &stationRecorder{}
	startPlugin(t, path, initial, rec)

	// Same station, then one without a PIN.
	if err := cliconfig.SaveFileConfig(path, cliconfig.FileConfig{BaseURL: initial.BaseURL, PIN: initial.PIN, LogLevel: "debug"}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := cliconfig.SaveFileConfig(path, cliconfig.FileConfig{BaseURL: "https://other.example.com"}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)

	if rec.count() != 0 {
		t.Errorf("SetStation called %d times, want 0", rec.count())
	}
}

func TestPlugin_DisabledWithoutPath(t *testing.T) {
	plugin := New(DefaultConfig())
	err := plugin.Initialize(context.Background(), app.PluginConfig{
		SetStation: func(ports.Station) {},
		Logger:     noopLogger{},
	})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := plugin.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
	if plugin.Name() != "configwatcher" {
		t.Errorf("Name() = %q", plugin.Name())
	}
}

func TestPlugin_MissingDirectory(t *testing.T) {
	plugin := New(DefaultConfig())
	err := plugin.Initialize(context.Background(), app.PluginConfig{
		ConfigPath: filepath.Join(t.TempDir(), "gone", "config.toml"),
		SetStation: func(ports.Station) {},
		Logger:     noopLogger{},
	})
	if err != nil {
		t.Fatalf("Initialize = %v, want nil for a missing directory", err)
	}
	_ = plugin.Shutdown(context.Background())
}
