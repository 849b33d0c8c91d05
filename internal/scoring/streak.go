package scoring

import (
	"strings"

	"github.com/acmclub/ojrank/internal/models"
)

var streakRun = strings.Repeat("1", models.StreakLength)

// EvaluateStreaks flips HasSevenStreak for every user whose dayInfo contains
// a run of seven completed days. The flag is sticky: once set it survives
// any number of later incomplete days. Scanning the whole string (not just
// the fresh suffix) catches runs that finished on an earlier pass.
func EvaluateStreaks(users []*models.UserRecord) {
	for _, u := range users {
		if u.HasSevenStreak {
			continue
		}
		if strings.Contains(u.DayInfo, streakRun) {
			u.HasSevenStreak = true
		}
	}
}
