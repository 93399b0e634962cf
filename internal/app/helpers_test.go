package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nuhsistemas/scankiosk/internal/domain"
	"github.com/nuhsistemas/scankiosk/internal/ports"
)

// mockLogger implements ports.Logger for testing.
type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...ports.Field) {}
func (mockLogger) Info(msg string, fields ...ports.Field)  {}
func (mockLogger) Warn(msg string, fields ...ports.Field)  {}
func (mockLogger) Error(msg string, fields ...ports.Field) {}

// fakeClock fires AfterFunc callbacks only when Advance moves past them.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	done    bool
	stopped bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) ports.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and runs every timer that came due, in order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.done && !t.at.After(c.now) {
			t.done = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.stopped = true
	return true
}

// fakeValidator returns a fixed outcome or error and records every call.
type fakeValidator struct {
	mu      sync.Mutex
	calls   []domain.Presentation
	ctxErrs []error
	outcome domain.Outcome
	err     error

	// When block is set, Validate signals started and waits on block.
	block   chan struct{}
	started chan struct{}
}

func (v *fakeValidator) Validate(ctx context.Context, p domain.Presentation) (domain.Outcome, error) {
	v.mu.Lock()
	v.calls = append(v.calls, p)
	v.ctxErrs = append(v.ctxErrs, ctx.Err())
	block, started := v.block, v.started
	outcome, err := v.outcome, v.err
	v.mu.Unlock()

	if block != nil {
		started <- struct{}{}
		<-block
	}
	return outcome, err
}

func (v *fakeValidator) Calls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.calls)
}

func (v *fakeValidator) set(outcome domain.Outcome, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.outcome, v.err = outcome, err
}

// memHistory is an in-memory ports.HistoryRepository.
type memHistory struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
	err     error
}

func (h *memHistory) Append(ctx context.Context, e domain.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.entries = append([]domain.HistoryEntry{e}, h.entries...)
	return nil
}

func (h *memHistory) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.HistoryEntry{}, h.entries...), nil
}

func (h *memHistory) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
	return nil
}

func (h *memHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *memHistory) Newest() domain.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[0]
}

// recordingPresenter counts presenter calls.
type recordingPresenter struct {
	mu      sync.Mutex
	results []domain.Outcome
	cues    []bool
	notes   []ports.Notification
	readies int
	events  []string

	// onResult runs at the start of Result, outside the lock.
	onResult func()
}

func (p *recordingPresenter) Result(scan domain.ScanEvent, o domain.Outcome, d time.Duration) {
	if p.onResult != nil {
		p.onResult()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, o)
	p.events = append(p.events, "result")
}

func (p *recordingPresenter) Cue(granted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cues = append(p.cues, granted)
}

func (p *recordingPresenter) Notify(n ports.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notes = append(p.notes, n)
}

func (p *recordingPresenter) Ready() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readies++
	p.events = append(p.events, "ready")
}

func (p *recordingPresenter) counts() (results, notes, readies int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.results), len(p.notes), p.readies
}

type arbitratorFixture struct {
	arb       *Arbitrator
	clock     *fakeClock
	validator *fakeValidator
	history   *memHistory
	presenter *recordingPresenter
	cycles    int
}

func newArbitratorFixture(opts ...ArbitratorOption) *arbitratorFixture {
	f := &arbitratorFixture{
		clock:     newFakeClock(),
		validator: &fakeValidator{},
		history:   &memHistory{},
		presenter: &recordingPresenter{},
	}
	opts = append([]ArbitratorOption{
		WithClock(f.clock),
		WithCycleEnd(func() { f.cycles++ }),
	}, opts...)
	f.arb = NewArbitrator(ArbitratorConfig{
		Cooldown:      DefaultCooldown,
		ResultTimeout: DefaultResultTimeout,
	}, f.validator, f.history, f.presenter, &mockLogger{}, opts...)
	return f
}
