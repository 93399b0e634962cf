package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nuhsistemas/scankiosk/internal/domain"
	"github.com/nuhsistemas/scankiosk/internal/ports"
)

// Default arbitrator timings.
const (
	DefaultCooldown      = time.Second
	DefaultResultTimeout = 5 * time.Second
)

// ScanState is the arbitrator's position in the scan cycle.
type ScanState int

const (
	StateIdle ScanState = iota
	StateSubmitting
	StateResult
)

// String returns a human-readable representation of the state.
func (s ScanState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateSubmitting:
		return "Submitting"
	case StateResult:
		return "Result"
	default:
		return "Unknown"
	}
}

// ArbitratorConfig holds the arbitrator timings.
type ArbitratorConfig struct {
	// Cooldown is how long the reentrancy lock stays held after the remote
	// call resolves. It debounces repeated presentations of the same tag.
	Cooldown time.Duration

	// ResultTimeout is how long a result is shown before the automatic reset.
	ResultTimeout time.Duration
}

// Arbitrator serializes presentations from every input source into at most
// one outstanding validation, logs each attempt and drives the
// Idle -> Submitting -> Result -> Idle cycle.
//
// Presentations that arrive while a scan is submitting, while a result is
// shown or during the cooldown are dropped with domain.ErrBusy.
type Arbitrator struct {
	cfg       ArbitratorConfig
	validator ports.Validator
	history   ports.HistoryRepository
	presenter ports.Presenter
	clock     ports.Clock
	logger    ports.Logger
	onCycle   []func()

	mu          sync.Mutex
	state       ScanState
	locked      bool
	cycle       uint64
	current     *domain.Outcome
	resultTimer ports.Timer
	ready       chan struct{}
}

// ArbitratorOption configures optional behavior of an Arbitrator.
type ArbitratorOption func(*Arbitrator)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c ports.Clock) ArbitratorOption {
	return func(a *Arbitrator) {
		a.clock = c
	}
}

// WithCycleEnd registers f to run after every accepted presentation has been
// resolved and logged, whatever the outcome. The NFC session is torn down here.
func WithCycleEnd(f func()) ArbitratorOption {
	return func(a *Arbitrator) {
		a.onCycle = append(a.onCycle, f)
	}
}

// NewArbitrator creates an arbitrator in StateIdle.
func NewArbitrator(cfg ArbitratorConfig, validator ports.Validator, history ports.HistoryRepository,
	presenter ports.Presenter, logger ports.Logger, opts ...ArbitratorOption) *Arbitrator {
	if cfg.Cooldown < 0 {
		cfg.Cooldown = 0
	}
	if cfg.ResultTimeout <= 0 {
		cfg.ResultTimeout = DefaultResultTimeout
	}

	ready := make(chan struct{})
	close(ready)

	a := &Arbitrator{
		cfg:       cfg,
		validator: validator,
		history:   history,
		presenter: presenter,
		clock:     realClock{},
		logger:    logger,
		state:     StateIdle,
		ready:     ready,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Submit presents a raw value on the given channel.
func (a *Arbitrator) Submit(ctx context.Context, value string, channel domain.Channel) error {
	return a.Present(ctx, domain.Presentation{Value: value, Channel: channel})
}

// Present validates a presentation if the arbitrator is idle.
//
// An empty value or a busy arbitrator is a silent no-op: no request is
// issued and no history entry is written. Otherwise exactly one request is
// issued and exactly one history entry is appended.
//
// The request runs to completion even if ctx is cancelled; only its values
// are inherited.
func (a *Arbitrator) Present(ctx context.Context, p domain.Presentation) error {
	if p.Value == "" {
		return domain.ErrEmptyValue
	}
	if !p.Channel.Valid() {
		return domain.ErrUnknownChannel
	}

	a.mu.Lock()
	if a.locked || a.state != StateIdle {
		a.mu.Unlock()
		a.logger.Debug("scan dropped", ports.Any("channel", p.Channel))
		return domain.ErrBusy
	}
	a.locked = true
	a.state = StateSubmitting
	a.ready = make(chan struct{})
	a.mu.Unlock()

	scan := domain.ScanEvent{Value: p.Value, Channel: p.Channel, Timestamp: a.clock.Now()}

	a.logger.Info("scan accepted",
		ports.Any("channel", scan.Channel),
		ports.String("value", scan.Value),
	)

	outcome, verr := a.validator.Validate(context.WithoutCancel(ctx), p)

	var entry domain.HistoryEntry
	if verr != nil {
		entry = domain.NewFailureEntry(scan, domain.FailureFromError(verr))
	} else {
		entry = domain.NewOutcomeEntry(scan, outcome)
	}
	herr := a.history.Append(context.WithoutCancel(ctx), entry)
	if herr != nil {
		a.logger.Error("history append failed",
			ports.String("entry", entry.ID),
			ports.Err(herr),
		)
	}

	if verr != nil {
		a.fail(scan, verr)
		if herr != nil {
			return errors.Join(verr, herr)
		}
		return verr
	}
	a.show(scan, outcome)
	return herr
}

// fail returns to Idle without showing a result.
func (a *Arbitrator) fail(scan domain.ScanEvent, err error) {
	a.logger.Warn("validation failed",
		ports.Any("channel", scan.Channel),
		ports.String("value", scan.Value),
		ports.Err(err),
	)

	a.mu.Lock()
	a.state = StateIdle
	a.mu.Unlock()

	a.presenter.Notify(ports.Notification{
		Channel: scan.Channel,
		Message: failureMessage(err),
	})
	a.presenter.Ready()
	a.endCycle()
}

// show enters Result and arms the automatic reset.
func (a *Arbitrator) show(scan domain.ScanEvent, outcome domain.Outcome) {
	a.logger.Info("validation resolved",
		ports.Any("channel", scan.Channel),
		ports.Bool("granted", outcome.Success),
		ports.String("subject", outcome.SubjectName),
	)

	a.mu.Lock()
	a.state = StateResult
	a.current = &outcome
	a.cycle++
	cycle := a.cycle
	a.mu.Unlock()

	a.presenter.Result(scan, outcome, a.cfg.ResultTimeout)
	a.presenter.Cue(outcome.Success)

	// The countdown starts once the result is on screen. A dismissal during
	// the presenter calls already closed this cycle.
	a.mu.Lock()
	if a.state == StateResult && a.cycle == cycle {
		a.resultTimer = a.clock.AfterFunc(a.cfg.ResultTimeout, func() {
			a.reset(cycle, "timeout")
		})
	}
	a.mu.Unlock()
	a.endCycle()
}

// endCycle runs the cycle hooks and schedules the lock release.
func (a *Arbitrator) endCycle() {
	for _, f := range a.onCycle {
		f()
	}
	a.clock.AfterFunc(a.cfg.Cooldown, a.finish)
}

// finish releases the reentrancy lock.
func (a *Arbitrator) finish() {
	a.mu.Lock()
	a.locked = false
	a.signalReadyLocked()
	a.mu.Unlock()
}

// Dismiss closes the current result. It is equivalent to the countdown
// reaching zero. Returns false if no result is shown.
func (a *Arbitrator) Dismiss() bool {
	a.mu.Lock()
	if a.state != StateResult {
		a.mu.Unlock()
		return false
	}
	cycle := a.cycle
	a.mu.Unlock()
	return a.reset(cycle, "dismissed")
}

// reset leaves Result for the given cycle. Only the first of timeout and
// dismissal takes effect.
func (a *Arbitrator) reset(cycle uint64, reason string) bool {
	a.mu.Lock()
	if a.state != StateResult || a.cycle != cycle {
		a.mu.Unlock()
		return false
	}
	a.state = StateIdle
	a.current = nil
	if a.resultTimer != nil {
		a.resultTimer.Stop()
		a.resultTimer = nil
	}
	a.signalReadyLocked()
	a.mu.Unlock()

	a.logger.Debug("result closed", ports.String("reason", reason))
	a.presenter.Ready()
	return true
}

// signalReadyLocked wakes WaitReady callers once the arbitrator accepts
// scans again. Caller must hold a.mu.
func (a *Arbitrator) signalReadyLocked() {
	if a.state != StateIdle || a.locked {
		return
	}
	select {
	case <-a.ready:
	default:
		close(a.ready)
	}
}

// WaitReady blocks until a presentation would be accepted or ctx is done.
func (a *Arbitrator) WaitReady(ctx context.Context) error {
	a.mu.Lock()
	ready := a.ready
	a.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the current scan state.
func (a *Arbitrator) State() ScanState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Current returns the outcome being shown, if any.
func (a *Arbitrator) Current() (domain.Outcome, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return domain.Outcome{}, false
	}
	return *a.current, true
}

func failureMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) && ve.Kind == domain.FailureTransport {
		return "Não foi possível conectar com a URL fornecida!"
	}
	return "Não foi possível comunicar com a URL fornecida!"
}
