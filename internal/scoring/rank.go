package scoring

import (
	"sort"

	"github.com/acmclub/ojrank/internal/models"
)

// AssignRanks recomputes every user's derived score, sorts the roster by
// score descending and assigns dense competition ranks: tied scores share a
// rank, the next distinct score takes its 1-based position in the sorted
// order. Trend compares each user's new rank to the rank persisted by the
// previous pass; users ranked for the first time stay neutral.
func AssignRanks(users []*models.UserRecord) {
	previous := make(map[string]int, len(users))
	for _, u := range users {
		previous[u.ID] = u.Rank
		u.RecomputeDerived()
	}

	sort.SliceStable(users, func(i, j int) bool {
		return users[i].Score > users[j].Score
	})

	for i, u := range users {
		if i > 0 && u.Score == users[i-1].Score {
			u.Rank = users[i-1].Rank
		} else {
			u.Rank = i + 1
		}

		prev := previous[u.ID]
		switch {
		case prev == 0:
			// First appearance: no previous rank to compare against.
			u.Trend = models.TrendNeutral
		case u.Rank < prev:
			u.Trend = models.TrendUp
		case u.Rank > prev:
			u.Trend = models.TrendDown
		default:
			u.Trend = models.TrendNeutral
		}
	}
}
