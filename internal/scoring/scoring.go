// Package scoring implements the per-day score aggregation: point awards
// from raw contest rows, streak bonuses and dense rank assignment. The
// functions are pure over the roster so they stay testable without any
// store or transport wired in.
package scoring

import (
	"github.com/acmclub/ojrank/internal/models"
)

const (
	// AttemptPoints is awarded for a problem attempted without an accepted
	// submission.
	AttemptPoints = 1

	// AcceptPoints is awarded for an accepted submission on the first two
	// tracked problems; the third problem carries double weight.
	AcceptPoints       = 5
	AcceptPointsWeight = 10

	// FirstAcceptanceBonus goes to every participant whose accepted marker
	// equals the day minimum for that problem.
	FirstAcceptanceBonus = 5
)

// slotPoints returns the acceptance award for a tracked problem by its
// position in the tracked set.
func slotPoints(slot int) int {
	if slot == 2 {
		return AcceptPointsWeight
	}
	return AcceptPoints
}

// DayMinimums computes, per tracked problem, the minimum accepted marker
// across all participants of one contest day. Problems nobody solved are
// absent from the result.
func DayMinimums(results []models.ParticipantResult, problems []string) map[string]string {
	minimums := make(map[string]string, len(problems))

	for _, label := range problems {
		for _, r := range results {
			marker := r.Markers[label]
			if !models.Accepted(marker) {
				continue
			}
			current, ok := minimums[label]
			if !ok || marker < current {
				minimums[label] = marker
			}
		}
	}

	return minimums
}

// DayPoints computes one participant's points for one contest day, and
// whether the day counts as completed. Completion requires a submission on
// every tracked problem, accepted or not.
func DayPoints(markers, minimums map[string]string, problems []string) (int, bool) {
	points := 0
	completed := true

	for slot, label := range problems {
		marker := markers[label]

		switch {
		case !models.Attempted(marker):
			completed = false
		case !models.Accepted(marker):
			points += AttemptPoints
		default:
			points += slotPoints(slot)
			if marker == minimums[label] {
				points += FirstAcceptanceBonus
			}
		}
	}

	return points, completed
}

// MergeDay folds one day's results into the roster: existing users
// accumulate points and grow their dayInfo, new users get a fresh record.
// Rows without a participant id are counted as skipped and never abort the
// batch. Returns (merged, skipped).
//
// MergeDay does not guard against the same day being merged twice; callers
// must check the snapshot's processed-day ledger first.
func MergeDay(snapshot *models.Snapshot, results []models.ParticipantResult, problems []string) (int, int) {
	minimums := DayMinimums(results, problems)

	merged, skipped := 0, 0
	for _, r := range results {
		if r.ID == "" {
			skipped++
			continue
		}

		points, completed := DayPoints(r.Markers, minimums, problems)
		flag := "0"
		if completed {
			flag = "1"
		}

		if u := snapshot.FindUser(r.ID); u != nil {
			u.BaseScore += points
			u.DayInfo += flag
			if r.Name != "" {
				u.Name = r.Name
			}
		} else {
			u := models.NewUserRecord(r.ID, r.Name)
			u.BaseScore = points
			u.DayInfo = flag
			snapshot.Users = append(snapshot.Users, u)
		}
		merged++
	}

	return merged, skipped
}
