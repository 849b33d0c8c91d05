// Package source fetches raw per-participant contest results. The rest of
// the pipeline only ever sees the ResultSource interface, so the scraping
// strategy can change without touching any scoring contract.
package source

import (
	"context"

	"github.com/acmclub/ojrank/internal/models"
)

// ResultSource returns one contest day's participant rows. A failure to
// reach or parse the upstream ranking page must surface as an error; an
// empty result list always means the contest genuinely had no participants.
type ResultSource interface {
	Fetch(ctx context.Context, contestID int) ([]models.ParticipantResult, error)
}
