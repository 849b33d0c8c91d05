package models

import "time"

// SnapshotVersion is bumped whenever the persisted layout changes shape.
const SnapshotVersion = 1

// Snapshot is the full persisted roster as of the last successful pipeline
// run, plus the ledger of contest days already merged into it. The ledger is
// the guard that keeps a re-run of the same day from double-counting.
type Snapshot struct {
	Version       int           `json:"version" dynamodbav:"version"`
	UpdatedAt     time.Time     `json:"updatedAt" dynamodbav:"updated_at"`
	ProcessedDays []string      `json:"processedDays" dynamodbav:"processed_days"`
	Users         []*UserRecord `json:"users" dynamodbav:"users"`
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		Version: SnapshotVersion,
		Users:   make([]*UserRecord, 0),
	}
}

// FindUser returns the record for a participant id, or nil.
func (s *Snapshot) FindUser(id string) *UserRecord {
	for _, u := range s.Users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// HasProcessedDay reports whether a contest day (ISO date) was already
// merged.
func (s *Snapshot) HasProcessedDay(day string) bool {
	for _, d := range s.ProcessedDays {
		if d == day {
			return true
		}
	}
	return false
}

func (s *Snapshot) MarkProcessed(day string) {
	if !s.HasProcessedDay(day) {
		s.ProcessedDays = append(s.ProcessedDays, day)
	}
}

// Key handlers for the dynamo backend, single-table style.
func SnapshotLivePK() string {
	return "SNAPSHOT#LIVE"
}

func SnapshotArchivePK(day string) string {
	return "SNAPSHOT#" + day
}

func SnapshotSK() string {
	return "META"
}
