package app

import (
	"time"

	"github.com/nuhsistemas/scankiosk/internal/ports"
)

// realClock implements ports.Clock with the time package.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) ports.Timer {
	return time.AfterFunc(d, f)
}
