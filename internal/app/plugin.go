package app

import (
	"context"

	"github.com/nuhsistemas/scankiosk/internal/ports"
)

// Plugin extends a Kiosk with a background task that runs for the kiosk's
// lifetime. Plugins are initialized in registration order and shut down in
// reverse order.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}

// PluginConfig is what a plugin gets from the kiosk at start.
type PluginConfig struct {
	// ConfigPath is the operator settings file, if any.
	ConfigPath string

	// Station is the station in use at start.
	Station ports.Station

	// SetStation swaps the station used for new validations.
	SetStation func(ports.Station)

	Logger ports.Logger
}
