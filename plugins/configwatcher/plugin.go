// Package configwatcher reloads the station settings while the kiosk runs.
// It watches the settings file and hands a changed base URL, PIN or sector
// to the kiosk so the next validation uses it.
package configwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nuhsistemas/scankiosk/internal/app"
	"github.com/nuhsistemas/scankiosk/internal/cliconfig"
	"github.com/nuhsistemas/scankiosk/internal/ports"
)

// Plugin implements settings watching.
type Plugin struct {
	mu sync.Mutex

	debounceDelay time.Duration

	path       string
	station    ports.Station
	setStation func(ports.Station)
	logger     ports.Logger
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	debounce   *time.Timer

	// reloaded receives a value after every applied reload.
	reloaded chan ports.Station
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		debounceDelay: cfg.DebounceDelay,
		reloaded:      make(chan ports.Station, 1),
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize starts watching the settings file.
func (p *Plugin) Initialize(ctx context.Context, cfg app.PluginConfig) error {
	p.mu.Lock()
	p.path = cfg.ConfigPath
	p.station = cfg.Station
	p.setStation = cfg.SetStation
	p.logger = cfg.Logger
	p.mu.Unlock()

	if p.path == "" || p.setStation == nil {
		p.logger.Warn("config watcher disabled: no settings file")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory so atomic replacements are seen.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		p.logger.Warn("config watcher disabled: settings directory unavailable",
			ports.String("path", p.path),
			ports.Err(err))
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("config watcher plugin initialized", ports.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)
	return nil
}

// Shutdown stops the config watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher error", ports.Err(err))
		}
	}
}

func (p *Plugin) debounceReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.reload()
	})
}

// reload reads the settings file and applies a changed station.
func (p *Plugin) reload() {
	fc, err := cliconfig.LoadFileConfig(p.path)
	if err != nil {
		p.logger.Warn("config reload failed", ports.Err(err))
		return
	}
	base, err := cliconfig.NormalizeBaseURL(fc.BaseURL)
	if err != nil || fc.PIN == "" {
		p.logger.Warn("config reload ignored: incomplete station",
			ports.String("url", fc.BaseURL))
		return
	}
	next := ports.Station{BaseURL: base, PIN: fc.PIN, Sector: fc.Sector}

	p.mu.Lock()
	if next == p.station {
		p.mu.Unlock()
		return
	}
	p.station = next
	set := p.setStation
	p.mu.Unlock()

	set(next)
	p.logger.Info("station settings reloaded",
		ports.String("url", next.BaseURL),
		ports.String("sector", next.Sector))

	select {
	case p.reloaded <- next:
	default:
	}
}

// Ensure Plugin implements app.Plugin.
var _ app.Plugin = (*Plugin)(nil)
