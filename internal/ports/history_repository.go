package ports

import (
	"context"

	"github.com/nuhsistemas/scankiosk/internal/domain"
)

// HistoryRepository persists the append-only log of validation attempts.
// The log survives restarts and is only emptied by Clear.
type HistoryRepository interface {
	// Append adds an entry. The newest entry is listed first.
	Append(ctx context.Context, entry domain.HistoryEntry) error

	// List returns all entries, newest first.
	// Returns an empty slice and nil error if no history exists.
	List(ctx context.Context) ([]domain.HistoryEntry, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error
}
