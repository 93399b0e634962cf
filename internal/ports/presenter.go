package ports

import (
	"time"

	"github.com/nuhsistemas/scankiosk/internal/domain"
)

// Notification is a transient message shown to the operator.
type Notification struct {
	Channel domain.Channel
	Title   string
	Message string
}

// Presenter renders arbitrator transitions to the operator.
// Calls are made outside the arbitrator lock and must not call back into it.
type Presenter interface {
	// Result shows an outcome for the given display duration.
	Result(scan domain.ScanEvent, outcome domain.Outcome, display time.Duration)

	// Cue plays the grant or deny sound.
	Cue(granted bool)

	// Notify shows a transient error notification.
	Notify(n Notification)

	// Ready signals that the kiosk accepts the next scan.
	Ready()
}
