package configwatcher

import "github.com/nuhsistemas/scankiosk/internal/app"

// WithConfigWatcher returns a kiosk option that enables settings reloads.
//
// Usage:
//
//	k := app.NewKiosk(cfg, arb, logger,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) app.KioskOption {
	return app.WithPlugin(New(cfg))
}

// WithDefaultConfigWatcher returns a kiosk option that enables settings
// reloads with default settings (debounce 100ms).
func WithDefaultConfigWatcher() app.KioskOption {
	return WithConfigWatcher(DefaultConfig())
}
