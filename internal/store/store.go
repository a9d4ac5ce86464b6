package store

import (
	"context"

	"signalnoise/internal/models"
)

// Store defines the durable mirror of the full board state.
//
// Implementations hold no task state between calls: every SaveAll replaces
// the whole artifact, and LoadAll decodes it afresh.
//
// Every method checks ctx before touching the artifact and returns ctx.Err()
// if it is already done; SQLite also passes ctx to the driver. Every failure
// is logged with the artifact location before it is returned.
type Store interface {
	// SaveAll overwrites the durable artifact with both columns.
	// A failure is logged and returned; the caller decides what to report.
	SaveAll(ctx context.Context, signal, noise []models.Task) error

	// LoadAll returns the persisted columns. An absent, unreadable or corrupt
	// artifact yields an empty snapshot and a nil error. An error means the
	// load itself did not run (ctx done, database unreachable) and the
	// returned snapshot must not be adopted.
	LoadAll(ctx context.Context) (models.Snapshot, error)

	// EraseAll removes the durable artifact. Erasing an absent artifact succeeds.
	EraseAll(ctx context.Context) error

	// Location describes where the artifact lives, for log messages.
	Location() string

	// Lifecycle
	Close() error
}
