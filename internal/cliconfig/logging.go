package cliconfig

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}).With().Timestamp().Logger().Level(zerolog.InfoLevel)
}

// Logger returns the package logger.
func Logger() zerolog.Logger {
	return logger
}

// SetLogLevel changes the package logger level ("debug", "info", ...).
func SetLogLevel(level string) error {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	logger = logger.Level(l)
	return nil
}
