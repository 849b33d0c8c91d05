package models

import (
	"fmt"
	"strings"
	"time"
)

// Trend describes how a user's rank moved relative to the previous
// aggregation pass.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

const (
	// SevenStreakBonus is granted once dayInfo ever contains seven
	// consecutive completed days.
	SevenStreakBonus = 20

	// StreakLength is the run of completed days that qualifies for the
	// bonus.
	StreakLength = 7
)

// UserRecord is one tracked participant. Records are created the first time
// a participant id shows up in a day's contest results and are never removed
// by the aggregation pipeline.
type UserRecord struct {
	ID   string `json:"id" dynamodbav:"id"`
	Name string `json:"name" dynamodbav:"name"`

	// BaseScore accumulates daily problem awards and never decreases.
	BaseScore int `json:"baseScore" dynamodbav:"base_score"`
	// ContestScore is reserved for score sources outside the daily pass.
	ContestScore int `json:"contestScore" dynamodbav:"contest_score"`
	// Score is derived from BaseScore, ContestScore and the streak bonus on
	// every ranking pass; it is never authoritative on its own.
	Score int `json:"score" dynamodbav:"score"`

	// DayInfo holds one '1' or '0' per processed contest day, in order.
	DayInfo        string `json:"dayInfo" dynamodbav:"day_info"`
	HasSevenStreak bool   `json:"hasSevenStreak" dynamodbav:"has_seven_streak"`

	// Progress is the percentage of processed days completed, derived from
	// DayInfo alongside Score.
	Progress int `json:"progress" dynamodbav:"progress"`

	Rank  int   `json:"rank" dynamodbav:"rank"`
	Trend Trend `json:"trend" dynamodbav:"trend"`

	Avatar      string    `json:"avatar" dynamodbav:"avatar"`
	LastUpdated time.Time `json:"lastUpdated" dynamodbav:"last_updated"`
}

// NewUserRecord creates a record for a participant's first appearance.
func NewUserRecord(id, name string) *UserRecord {
	return &UserRecord{
		ID:     id,
		Name:   name,
		Trend:  TrendNeutral,
		Avatar: AvatarURL(id),
	}
}

// RecomputeDerived refreshes Score and Progress from their inputs.
func (u *UserRecord) RecomputeDerived() {
	u.Score = u.BaseScore + u.ContestScore
	if u.HasSevenStreak {
		u.Score += SevenStreakBonus
	}

	u.Progress = 0
	if len(u.DayInfo) > 0 {
		completed := strings.Count(u.DayInfo, "1")
		u.Progress = completed * 100 / len(u.DayInfo)
	}
}

// AvatarURL derives a stable placeholder avatar for a participant id.
func AvatarURL(id string) string {
	return fmt.Sprintf("https://i.pravatar.cc/150?u=%s", id)
}
