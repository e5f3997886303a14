package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"youngscholars/internal/models"
)

func newTestCache(t *testing.T) *LeaderboardCache {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	ctx := context.Background()
	client, err := Connect(ctx, url)
	require.NoError(t, err)

	prefix := "test:" + uuid.New().String() + ":"
	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return NewLeaderboardCache(client, prefix)
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{
			name: "thursday",
			at:   time.Date(2026, 10, 15, 13, 30, 0, 0, time.UTC),
			want: time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "monday midnight",
			at:   time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday belongs to previous week",
			at:   time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC),
			want: time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekStart(tt.at))
		})
	}
}

func TestWeekKey(t *testing.T) {
	c := NewLeaderboardCache(nil, "")
	assert.Equal(t, "youngscholars:leaderboard:week:2026-W42", c.weekKey(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "youngscholars:leaderboard:week:2027-W01", c.weekKey(time.Date(2027, 1, 4, 0, 0, 0, 0, time.UTC)))
}

func TestRecordAndTop(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, c.RecordCompletion(ctx, 1, 4, now))
	require.NoError(t, c.RecordCompletion(ctx, 2, 1, now))
	require.NoError(t, c.RecordCompletion(ctx, 2, 2, now))

	all, err := c.Top(ctx, models.PeriodAll, now, 10)
	require.NoError(t, err)
	assert.Equal(t, []Score{{LearnerID: 1, BooksRead: 4}, {LearnerID: 2, BooksRead: 2}}, all)

	week, err := c.Top(ctx, models.PeriodWeek, now, 10)
	require.NoError(t, err)
	assert.Equal(t, []Score{{LearnerID: 2, BooksRead: 2}, {LearnerID: 1, BooksRead: 1}}, week)

	lastMonth, err := c.Top(ctx, models.PeriodWeek, now.AddDate(0, -1, 0), 10)
	require.NoError(t, err)
	assert.Empty(t, lastMonth)
}

func TestRebuild(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, c.RecordCompletion(ctx, 9, 100, now))
	require.NoError(t, c.Rebuild(ctx, map[int64]int{1: 3, 2: 5, 3: 0}, map[int64]int{2: 1}, now))

	all, err := c.Top(ctx, models.PeriodAll, now, 10)
	require.NoError(t, err)
	assert.Equal(t, []Score{{LearnerID: 2, BooksRead: 5}, {LearnerID: 1, BooksRead: 3}}, all)

	week, err := c.Top(ctx, models.PeriodWeek, now, 1)
	require.NoError(t, err)
	assert.Equal(t, []Score{{LearnerID: 2, BooksRead: 1}}, week)
}
