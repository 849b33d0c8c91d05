package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acmclub/ojrank/internal/logger"
)

type noopAggregation struct{}

func (noopAggregation) RunForDate(context.Context, time.Time) error { return nil }
func (noopAggregation) RunToday(context.Context) error              { return nil }
func (noopAggregation) DeleteUser(context.Context, string) error    { return nil }

func TestNextFireTime(t *testing.T) {
	s, err := NewScheduler(noopAggregation{}, "22:30", time.UTC, logger.Development("test"))
	require.NoError(t, err)

	morning := time.Date(2025, time.October, 2, 9, 0, 0, 0, time.UTC)
	next := s.nextFireTime(morning)
	assert.Equal(t, time.Date(2025, time.October, 2, 22, 30, 0, 0, time.UTC), next)

	// Already past today's slot: tomorrow.
	evening := time.Date(2025, time.October, 2, 23, 0, 0, 0, time.UTC)
	next = s.nextFireTime(evening)
	assert.Equal(t, time.Date(2025, time.October, 3, 22, 30, 0, 0, time.UTC), next)

	// Exactly on the slot also rolls over.
	onTime := time.Date(2025, time.October, 2, 22, 30, 0, 0, time.UTC)
	next = s.nextFireTime(onTime)
	assert.Equal(t, time.Date(2025, time.October, 3, 22, 30, 0, 0, time.UTC), next)
}

func TestNewScheduler_RejectsBadTime(t *testing.T) {
	_, err := NewScheduler(noopAggregation{}, "25:99", time.UTC, logger.Development("test"))
	assert.Error(t, err)
}
