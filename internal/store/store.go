// Package store persists the leaderboard snapshot. Two backends implement
// the same contract: a JSON file tree and a DynamoDB single-table layout.
package store

import (
	"context"

	"github.com/acmclub/ojrank/internal/models"
)

// SnapshotStore is the persistence boundary of the aggregation pipeline.
//
// Load returns an empty snapshot (not an error) when nothing has been
// persisted yet, which is what triggers the caller's first-run path.
//
// Save must archive the previously live snapshot under a date-stamped key
// before replacing it, and implementations serialize concurrent Save calls
// internally so partial writes can never interleave.
type SnapshotStore interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	Save(ctx context.Context, snapshot *models.Snapshot) error
}
