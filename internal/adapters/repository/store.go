// Package repository provides read access to the fixture collections.
package repository

import (
	"context"

	"github.com/nvoss/goalfeed/internal/domain/model"
)

// Store provides read access to the three fixture collections. Fixture moves
// between collections are performed by the external ingestion process; this
// subsystem only reads.
type Store interface {
	// FetchAll reads staging, active and completed fixtures with the
	// per-collection sort policy applied:
	//   staging   kickoff time ascending (soonest first)
	//   active    last activity descending, kickoff descending tiebreak
	//   completed kickoff descending, capped to the most recent N
	FetchAll(ctx context.Context) (model.FixtureSnapshot, error)

	// Ping issues a lightweight liveness probe against the document store.
	Ping(ctx context.Context) error

	// Close releases the underlying client.
	Close(ctx context.Context) error
}
