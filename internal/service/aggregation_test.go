package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acmclub/ojrank/internal/apperrors"
	"github.com/acmclub/ojrank/internal/contest"
	"github.com/acmclub/ojrank/internal/logger"
	"github.com/acmclub/ojrank/internal/models"
)

var testProblems = []string{"A", "B", "C"}

// fakeSource serves canned results per contest id.
type fakeSource struct {
	results map[int][]models.ParticipantResult
	err     error
	fetches int
}

func (f *fakeSource) Fetch(_ context.Context, contestID int) ([]models.ParticipantResult, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return f.results[contestID], nil
}

func testCalendar(t *testing.T) *contest.Calendar {
	t.Helper()
	c, err := contest.NewCalendar("2025-10-01", []int{101, 102, 103, 104, 105, 106, 107, 108}, "UTC")
	require.NoError(t, err)
	return c
}

func participant(id string, a, b, c string) models.ParticipantResult {
	return models.ParticipantResult{
		ID:   id,
		Name: "p-" + id,
		Markers: map[string]string{
			"A": a, "B": b, "C": c,
		},
	}
}

func newPipeline(t *testing.T, st *memoryStore, src *fakeSource) AggregationService {
	t.Helper()
	return NewAggregationService(st, src, testCalendar(t), nil, nil, testProblems, logger.Development("test"))
}

func onDay(n int) time.Time {
	// Day n=1 maps to the first contest id.
	return time.Date(2025, time.October, 1+n, 23, 0, 0, 0, time.UTC)
}

func TestRunForDate_FirstDay(t *testing.T) {
	st := &memoryStore{}
	src := &fakeSource{results: map[int][]models.ParticipantResult{
		101: {
			participant("u1", "0:45:10", "1:02:00", ""),
			participant("u2", "-", "1:02:00", "2:00:00"),
		},
	}}

	pipeline := newPipeline(t, st, src)
	require.NoError(t, pipeline.RunForDate(context.Background(), onDay(1)))

	require.NotNil(t, st.snapshot)
	require.Len(t, st.snapshot.Users, 2)
	assert.True(t, st.snapshot.HasProcessedDay("2025-10-02"))

	// u2 solved two problems including the double-weight third plus a
	// first-acceptance bonus on B is not theirs (tie on marker values gives
	// the bonus to every holder of the minimum).
	u1 := st.snapshot.FindUser("u1")
	u2 := st.snapshot.FindUser("u2")
	require.NotNil(t, u1)
	require.NotNil(t, u2)

	// u1: A 5+5, B 5+5 (tie on the minimum marker), C untouched.
	assert.Equal(t, 20, u1.BaseScore)
	assert.Equal(t, "0", u1.DayInfo)
	// u2: A attempted 1, B 5+5, C 10+5.
	assert.Equal(t, 26, u2.BaseScore)
	assert.Equal(t, "1", u2.DayInfo)

	assert.Equal(t, 1, u2.Rank)
	assert.Equal(t, 2, u1.Rank)
	assert.Equal(t, models.TrendNeutral, u1.Trend)
	assert.Equal(t, models.TrendNeutral, u2.Trend)

	// Roster persists sorted by score descending.
	assert.Equal(t, "u2", st.snapshot.Users[0].ID)
}

func TestRunForDate_RerunIsGuarded(t *testing.T) {
	st := &memoryStore{}
	src := &fakeSource{results: map[int][]models.ParticipantResult{
		101: {participant("u1", "-", "-", "-")},
	}}

	pipeline := newPipeline(t, st, src)
	ctx := context.Background()

	require.NoError(t, pipeline.RunForDate(ctx, onDay(1)))
	require.NoError(t, pipeline.RunForDate(ctx, onDay(1)))

	// Second run skipped before fetching: one fetch, one save, no double
	// counting.
	assert.Equal(t, 1, src.fetches)
	assert.Equal(t, 1, st.saves)
	assert.Equal(t, 3, st.snapshot.FindUser("u1").BaseScore)
	assert.Equal(t, "1", st.snapshot.FindUser("u1").DayInfo)
}

func TestRunForDate_FetchFailureLeavesRosterUntouched(t *testing.T) {
	st := &memoryStore{snapshot: rosterOf(2)}
	src := &fakeSource{err: apperrors.New(apperrors.CodeSourceFetch, "upstream down")}

	pipeline := newPipeline(t, st, src)

	err := pipeline.RunForDate(context.Background(), onDay(1))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeSourceFetch))

	assert.Equal(t, 0, st.saves)
	assert.False(t, st.snapshot.HasProcessedDay("2025-10-02"))
}

func TestRunForDate_OutOfCalendarRange(t *testing.T) {
	st := &memoryStore{}
	src := &fakeSource{}

	pipeline := newPipeline(t, st, src)

	err := pipeline.RunForDate(context.Background(), time.Date(2026, time.January, 1, 23, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeOutOfRange))
	assert.Equal(t, 0, src.fetches)
	assert.Equal(t, 0, st.saves)
}

func TestRunForDate_TrendAcrossDays(t *testing.T) {
	st := &memoryStore{}
	src := &fakeSource{results: map[int][]models.ParticipantResult{
		// Day 1: u1 ahead of u2. Day 2: u2 overtakes.
		101: {
			participant("u1", "0:10:00", "0:20:00", ""),
			participant("u2", "-", "", ""),
		},
		102: {
			participant("u1", "", "", ""),
			participant("u2", "0:05:00", "0:06:00", "0:07:00"),
		},
	}}

	pipeline := newPipeline(t, st, src)
	ctx := context.Background()

	require.NoError(t, pipeline.RunForDate(ctx, onDay(1)))
	require.NoError(t, pipeline.RunForDate(ctx, onDay(2)))

	u1 := st.snapshot.FindUser("u1")
	u2 := st.snapshot.FindUser("u2")

	assert.Equal(t, 1, u2.Rank)
	assert.Equal(t, models.TrendUp, u2.Trend)
	assert.Equal(t, 2, u1.Rank)
	assert.Equal(t, models.TrendDown, u1.Trend)
}

func TestRunForDate_SevenDayStreakGrantsBonus(t *testing.T) {
	st := &memoryStore{}
	results := map[int][]models.ParticipantResult{}
	for day := 0; day < 7; day++ {
		results[101+day] = []models.ParticipantResult{
			participant("u1", "-", "-", "-"),
		}
	}
	src := &fakeSource{results: results}

	pipeline := newPipeline(t, st, src)
	ctx := context.Background()

	for day := 1; day <= 6; day++ {
		require.NoError(t, pipeline.RunForDate(ctx, onDay(day)))
	}
	u := st.snapshot.FindUser("u1")
	assert.False(t, u.HasSevenStreak)
	assert.Equal(t, 18, u.Score)

	require.NoError(t, pipeline.RunForDate(ctx, onDay(7)))
	u = st.snapshot.FindUser("u1")
	assert.True(t, u.HasSevenStreak)
	assert.Equal(t, 21+models.SevenStreakBonus, u.Score)
}

func TestDeleteUser(t *testing.T) {
	st := &memoryStore{snapshot: rosterOf(3)}
	pipeline := newPipeline(t, st, &fakeSource{})
	ctx := context.Background()

	victim := st.snapshot.Users[0].ID
	require.NoError(t, pipeline.DeleteUser(ctx, victim))

	assert.Len(t, st.snapshot.Users, 2)
	assert.Nil(t, st.snapshot.FindUser(victim))
	// Remaining users are re-ranked from 1.
	assert.Equal(t, 1, st.snapshot.Users[0].Rank)

	err := pipeline.DeleteUser(ctx, "nope")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}
