package app

import (
	"context"
	"errors"
	"sync"

	"github.com/nuhsistemas/scankiosk/internal/domain"
	"github.com/nuhsistemas/scankiosk/internal/ports"
)

// KioskConfig describes the station a kiosk serves.
type KioskConfig struct {
	ConfigPath string
	Station    ports.Station
	SetStation func(ports.Station)
}

// Kiosk runs the input sources of one station against a shared arbitrator.
type Kiosk struct {
	cfg        KioskConfig
	arbitrator *Arbitrator
	sources    []ports.Source
	plugins    []Plugin
	lifecycle  *Lifecycle
	logger     ports.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// KioskOption configures optional behavior of a Kiosk.
type KioskOption func(*Kiosk)

// WithSource registers an input source.
func WithSource(s ports.Source) KioskOption {
	return func(k *Kiosk) {
		k.sources = append(k.sources, s)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p Plugin) KioskOption {
	return func(k *Kiosk) {
		k.plugins = append(k.plugins, p)
	}
}

// WithObserver reports lifecycle transitions to obs.
func WithObserver(obs StateObserver) KioskOption {
	return func(k *Kiosk) {
		k.lifecycle.observer = obs
	}
}

// NewKiosk creates a stopped kiosk.
func NewKiosk(cfg KioskConfig, arbitrator *Arbitrator, logger ports.Logger, opts ...KioskOption) *Kiosk {
	if cfg.SetStation == nil {
		cfg.SetStation = func(ports.Station) {}
	}
	k := &Kiosk{
		cfg:        cfg,
		arbitrator: arbitrator,
		lifecycle:  NewLifecycle(logger, nil),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Start initializes plugins and launches every source in the background.
func (k *Kiosk) Start(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := k.lifecycle.TransitionTo(RunStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	k.cancel = cancel
	k.lifecycle.SetCancel(cancel)

	pluginCfg := PluginConfig{
		ConfigPath: k.cfg.ConfigPath,
		Station:    k.cfg.Station,
		SetStation: k.cfg.SetStation,
		Logger:     k.logger,
	}
	for i, p := range k.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			k.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			k.shutdownPlugins(k.plugins[:i])
			cancel()
			_ = k.lifecycle.TransitionTo(RunCrashed, "plugin init failed: "+p.Name())
			return err
		}
		k.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	if err := k.lifecycle.TransitionTo(RunRunning, "sources starting"); err != nil {
		cancel()
		return err
	}

	for _, src := range k.sources {
		src := src
		k.lifecycle.Go(func() {
			k.logger.Info("source started", ports.String("source", src.Name()))
			err := src.Run(runCtx, k.arbitrator)
			switch {
			case err == nil, errors.Is(err, context.Canceled):
				k.logger.Info("source stopped", ports.String("source", src.Name()))
			default:
				k.logger.Error("source failed",
					ports.String("source", src.Name()),
					ports.Err(err))
			}
		})
	}

	k.arbitrator.presenter.Ready()
	return nil
}

// Stop cancels the sources, waits for them and shuts plugins down.
// Returns ErrShutdownTimeout if a source did not return in time.
func (k *Kiosk) Stop() error {
	k.mu.Lock()
	if !k.lifecycle.CanStop() {
		k.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := k.lifecycle.TransitionTo(RunStopping, "Stop() called"); err != nil {
		k.mu.Unlock()
		return err
	}
	if k.cancel != nil {
		k.cancel()
	}
	k.mu.Unlock()

	err := k.lifecycle.WaitWithTimeout(ShutdownTimeout)
	k.shutdownPlugins(k.plugins)

	if err != nil {
		_ = k.lifecycle.TransitionTo(RunCrashed, "shutdown timeout")
	} else {
		_ = k.lifecycle.TransitionTo(RunStopped, "graceful shutdown")
	}
	return err
}

// Done returns a channel closed once every source has returned.
// Call it after Start.
func (k *Kiosk) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		k.lifecycle.wg.Wait()
		close(done)
	}()
	return done
}

// Status returns the current lifecycle state.
func (k *Kiosk) Status() RunState {
	return k.lifecycle.State()
}

// shutdownPlugins shuts plugins down in reverse order.
func (k *Kiosk) shutdownPlugins(plugins []Plugin) {
	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			k.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			continue
		}
		k.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
	}
}
