package domain

import (
	"strings"

	"github.com/google/uuid"
)

// HistoryEntry records one validation attempt. Exactly one of Outcome or
// Failure is set. Entries are never mutated after creation.
type HistoryEntry struct {
	ID      string    `json:"id"`
	Scan    ScanEvent `json:"scan"`
	Outcome *Outcome  `json:"outcome,omitempty"`
	Failure *Failure  `json:"failure,omitempty"`
}

// NewOutcomeEntry records a well-formed server verdict.
func NewOutcomeEntry(scan ScanEvent, outcome Outcome) HistoryEntry {
	return HistoryEntry{
		ID:      uuid.NewString(),
		Scan:    scan,
		Outcome: &outcome,
	}
}

// NewFailureEntry records a validation that produced no verdict.
func NewFailureEntry(scan ScanEvent, failure *Failure) HistoryEntry {
	return HistoryEntry{
		ID:      uuid.NewString(),
		Scan:    scan,
		Failure: failure,
	}
}

// Granted reports whether the server let the subject through.
func (e HistoryEntry) Granted() bool {
	return e.Outcome != nil && e.Outcome.Success
}

// Message returns the server message, or the failure diagnostic.
func (e HistoryEntry) Message() string {
	switch {
	case e.Outcome != nil:
		return e.Outcome.Message
	case e.Failure != nil:
		return e.Failure.Message
	default:
		return ""
	}
}

// FilterHistory returns the entries whose value contains query,
// case-insensitively. An empty query returns all entries.
func FilterHistory(entries []HistoryEntry, query string) []HistoryEntry {
	if query == "" {
		return entries
	}
	q := strings.ToLower(query)
	out := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Scan.Value), q) {
			out = append(out, e)
		}
	}
	return out
}
