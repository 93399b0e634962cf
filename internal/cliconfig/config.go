// Package cliconfig resolves the kiosk configuration from flags,
// environment variables and the settings file.
package cliconfig

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nuhsistemas/scankiosk/internal/domain"
	"github.com/nuhsistemas/scankiosk/internal/ports"
)

// Default timings.
const (
	DefaultHTTPTimeout   = 15 * time.Second
	DefaultResultTimeout = 5 * time.Second
	DefaultCooldown      = time.Second
)

// Config holds CLI configuration for scankiosk.
type Config struct {
	BaseURL string
	PIN     string
	Sector  string

	StateDir string

	HTTPTimeout   time.Duration
	ResultTimeout time.Duration
	Cooldown      time.Duration

	EnableKeyboard bool
	EnableQR       bool
	QRDevice       string
	EnableNFC      bool
	NFCDevice      string
	EnableFacial   bool
	FacialDir      string

	SendDeviceInfo bool
	LogLevel       string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		HTTPTimeout:    DefaultHTTPTimeout,
		ResultTimeout:  DefaultResultTimeout,
		Cooldown:       DefaultCooldown,
		EnableKeyboard: true,
		SendDeviceInfo: true,
		LogLevel:       "info",
	}
}

// Validate checks the configuration for running the kiosk and sets derived
// defaults.
func (c *Config) Validate() error {
	u, err := NormalizeBaseURL(c.BaseURL)
	if err != nil {
		return err
	}
	c.BaseURL = u

	if strings.TrimSpace(c.PIN) == "" {
		return fmt.Errorf("%w: pin is required", domain.ErrInvalidConfig)
	}
	c.PIN = strings.TrimSpace(c.PIN)

	if err := c.ResolveStateDir(); err != nil {
		return err
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%w: http timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.ResultTimeout <= 0 {
		return fmt.Errorf("%w: result timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("%w: cooldown must not be negative", domain.ErrInvalidConfig)
	}

	if !c.EnableKeyboard && !c.EnableQR && !c.EnableNFC && !c.EnableFacial {
		return fmt.Errorf("%w: at least one input channel must be enabled", domain.ErrInvalidConfig)
	}
	if c.EnableQR && c.QRDevice == "" {
		return fmt.Errorf("%w: qr-device is required when the QR channel is enabled", domain.ErrInvalidConfig)
	}
	if c.EnableNFC && c.NFCDevice == "" {
		return fmt.Errorf("%w: nfc-device is required when the NFC channel is enabled", domain.ErrInvalidConfig)
	}
	if c.EnableFacial && c.FacialDir == "" {
		return fmt.Errorf("%w: facial-dir is required when the facial channel is enabled", domain.ErrInvalidConfig)
	}
	return nil
}

// ResolveStateDir defaults StateDir to ~/.scankiosk.
func (c *Config) ResolveStateDir() error {
	if c.StateDir != "" {
		return nil
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("%w: state-dir is required: %v", domain.ErrInvalidConfig, err)
	}
	c.StateDir = filepath.Join(h, ".scankiosk")
	return nil
}

// Station returns the station the configuration points at.
func (c *Config) Station() ports.Station {
	return ports.Station{BaseURL: c.BaseURL, PIN: c.PIN, Sector: c.Sector}
}

// NormalizeBaseURL checks that raw is an absolute http(s) URL and strips
// trailing slashes.
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: url is required", domain.ErrInvalidConfig)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: url: %v", domain.ErrInvalidConfig, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: url %q must be an absolute http or https URL", domain.ErrInvalidConfig, raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
