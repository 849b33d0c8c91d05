package models

// Problem marker conventions used by contest result sources. A marker is
// empty when the problem was never attempted, NotSolvedMarker when it was
// attempted without an accepted submission, and otherwise carries the
// submission-order value used for first-acceptance comparison.
const NotSolvedMarker = "-"

// ParticipantResult is one participant's row from a single contest day.
type ParticipantResult struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Markers map[string]string `json:"markers"`
}

// Attempted reports whether the marker represents any submission at all.
func Attempted(marker string) bool {
	return marker != ""
}

// Accepted reports whether the marker represents an accepted submission.
func Accepted(marker string) bool {
	return marker != "" && marker != NotSolvedMarker
}
