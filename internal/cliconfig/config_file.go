package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	BaseURL       string       `toml:"base_url"`
	PIN           string       `toml:"pin"`
	Sector        string       `toml:"sector,omitempty"`
	StateDir      string       `toml:"state_dir,omitempty"`
	HTTPTimeout   string       `toml:"http_timeout,omitempty"`
	ResultTimeout string       `toml:"result_timeout,omitempty"`
	Cooldown      string       `toml:"cooldown,omitempty"`
	LogLevel      string       `toml:"log_level,omitempty"`
	DeviceInfo    *bool        `toml:"device_info,omitempty"`
	Channels      FileChannels `toml:"channels"`
}

// FileChannels is the [channels] table.
type FileChannels struct {
	Keyboard  *bool  `toml:"keyboard,omitempty"`
	QR        *bool  `toml:"qrcode,omitempty"`
	QRDevice  string `toml:"qrcode_device,omitempty"`
	NFC       *bool  `toml:"nfc,omitempty"`
	NFCDevice string `toml:"nfc_device,omitempty"`
	Facial    *bool  `toml:"facial,omitempty"`
	FacialDir string `toml:"facial_dir,omitempty"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// SaveFileConfig writes fc to path atomically, creating the directory if
// needed. The file holds the station PIN so it is private to the user.
func SaveFileConfig(path string, fc FileConfig) error {
	b, err := toml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.scankiosk/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".scankiosk", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("url", fc.BaseURL, &cfg.BaseURL)
	s.setString("pin", fc.PIN, &cfg.PIN)
	s.setString("sector", fc.Sector, &cfg.Sector)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("result-timeout", fc.ResultTimeout, &cfg.ResultTimeout); err != nil {
		return err
	}
	if err := s.setDuration("cooldown", fc.Cooldown, &cfg.Cooldown); err != nil {
		return err
	}

	s.setBool("device-info", fc.DeviceInfo, &cfg.SendDeviceInfo)

	ch := fc.Channels
	s.setBool("keyboard", ch.Keyboard, &cfg.EnableKeyboard)
	s.setBool("qr", ch.QR, &cfg.EnableQR)
	s.setString("qr-device", ch.QRDevice, &cfg.QRDevice)
	s.setBool("nfc", ch.NFC, &cfg.EnableNFC)
	s.setString("nfc-device", ch.NFCDevice, &cfg.NFCDevice)
	s.setBool("facial", ch.Facial, &cfg.EnableFacial)
	s.setString("facial-dir", ch.FacialDir, &cfg.FacialDir)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
