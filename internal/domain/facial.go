package domain

import (
	"sort"
	"sync"
)

// EnrollmentFields are the auxiliary form fields a first facial capture
// produces. They are held client-side until the follow-up capture.
type EnrollmentFields map[string]string

// Keys returns the field names in sorted order.
func (f EnrollmentFields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FacialState is the accumulation state of facial mode. It is one of
// FacialIdle or AwaitingSecondCapture.
type FacialState interface {
	facialState()
}

// FacialIdle means no enrollment fields are held.
type FacialIdle struct{}

// AwaitingSecondCapture holds enrollment fields until the next capture
// attaches them to a validation request.
type AwaitingSecondCapture struct {
	Fields EnrollmentFields
}

func (FacialIdle) facialState()            {}
func (AwaitingSecondCapture) facialState() {}

// FacialCapture tracks the two-phase facial submission. It is owned by the
// facial source and is independent of the arbitrator lock.
type FacialCapture struct {
	mu    sync.Mutex
	state FacialState
}

// NewFacialCapture returns an accumulator in the idle state.
func NewFacialCapture() *FacialCapture {
	return &FacialCapture{state: FacialIdle{}}
}

// State returns the current accumulation state.
func (c *FacialCapture) State() FacialState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Hold stores enrollment fields from a first-phase capture, replacing any
// fields already held. Empty fields leave the state idle.
func (c *FacialCapture) Hold(fields EnrollmentFields) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(fields) == 0 {
		c.state = FacialIdle{}
		return
	}
	held := make(EnrollmentFields, len(fields))
	for k, v := range fields {
		held[k] = v
	}
	c.state = AwaitingSecondCapture{Fields: held}
}

// Attach builds the presentation for a follow-up capture, including any
// held fields. The held fields stay in place until Complete is called so a
// dropped submission does not lose them.
func (c *FacialCapture) Attach(capture Capture) Presentation {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := Presentation{
		Value:   capture.Name,
		Channel: ChannelFacial,
		Capture: &capture,
	}
	if s, ok := c.state.(AwaitingSecondCapture); ok {
		p.Enrollment = s.Fields
	}
	return p
}

// Complete returns the accumulator to idle after a capture was accepted.
func (c *FacialCapture) Complete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = FacialIdle{}
}
