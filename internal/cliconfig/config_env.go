package cliconfig

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads SCANKIOSK_* variables from the given .env files into the
// process environment. Missing files are skipped and variables already set
// are left alone.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// ApplyEnvConfig applies configuration from environment variables (SCANKIOSK_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("url", os.Getenv("SCANKIOSK_URL"), &cfg.BaseURL)
	s.setString("pin", os.Getenv("SCANKIOSK_PIN"), &cfg.PIN)
	s.setString("sector", os.Getenv("SCANKIOSK_SECTOR"), &cfg.Sector)
	s.setString("state-dir", os.Getenv("SCANKIOSK_STATE_DIR"), &cfg.StateDir)
	s.setString("log-level", os.Getenv("SCANKIOSK_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("qr-device", os.Getenv("SCANKIOSK_QR_DEVICE"), &cfg.QRDevice)
	s.setString("nfc-device", os.Getenv("SCANKIOSK_NFC_DEVICE"), &cfg.NFCDevice)
	s.setString("facial-dir", os.Getenv("SCANKIOSK_FACIAL_DIR"), &cfg.FacialDir)

	if err := s.setDuration("timeout", os.Getenv("SCANKIOSK_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("result-timeout", os.Getenv("SCANKIOSK_RESULT_TIMEOUT"), &cfg.ResultTimeout); err != nil {
		return err
	}
	if err := s.setDuration("cooldown", os.Getenv("SCANKIOSK_COOLDOWN"), &cfg.Cooldown); err != nil {
		return err
	}

	s.setBoolFromString("keyboard", os.Getenv("SCANKIOSK_KEYBOARD"), &cfg.EnableKeyboard)
	s.setBoolFromString("qr", os.Getenv("SCANKIOSK_QR"), &cfg.EnableQR)
	s.setBoolFromString("nfc", os.Getenv("SCANKIOSK_NFC"), &cfg.EnableNFC)
	s.setBoolFromString("facial", os.Getenv("SCANKIOSK_FACIAL"), &cfg.EnableFacial)
	s.setBoolFromString("device-info", os.Getenv("SCANKIOSK_DEVICE_INFO"), &cfg.SendDeviceInfo)

	return nil
}
