// Package cache keeps leaderboard rankings in Redis sorted sets.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"youngscholars/internal/models"
)

const (
	defaultPrefix = "youngscholars:leaderboard:"

	// Weekly sets outlive their week so late reads still see final standings
	weekTTL = 8 * 24 * time.Hour
)

// Score is one learner's position in a cached ranking
type Score struct {
	LearnerID int64
	BooksRead int
}

// LeaderboardCache ranks learners by books read, all time and per ISO week.
//
// Keys:
//   - {prefix}all holds learnerID -> total books read
//   - {prefix}week:{year}-W{week} holds learnerID -> books completed that week
type LeaderboardCache struct {
	client *redis.Client
	prefix string
}

// Connect opens a Redis client from a redis:// URL and checks it responds
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// NewLeaderboardCache creates a cache on client. An empty prefix uses the default key prefix.
func NewLeaderboardCache(client *redis.Client, prefix string) *LeaderboardCache {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &LeaderboardCache{client: client, prefix: prefix}
}

// WeekStart returns midnight UTC on the Monday of t's ISO week
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

func (c *LeaderboardCache) allKey() string {
	return c.prefix + "all"
}

func (c *LeaderboardCache) weekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%sweek:%d-W%02d", c.prefix, year, week)
}

// RecordCompletion stores the learner's new total and counts one book for the week of at
func (c *LeaderboardCache) RecordCompletion(ctx context.Context, learnerID int64, booksRead int, at time.Time) error {
	member := strconv.FormatInt(learnerID, 10)
	weekKey := c.weekKey(at)

	pipe := c.client.TxPipeline()
	pipe.ZAdd(ctx, c.allKey(), redis.Z{Score: float64(booksRead), Member: member})
	pipe.ZIncrBy(ctx, weekKey, 1, member)
	pipe.Expire(ctx, weekKey, weekTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}
	return nil
}

// Top returns the highest scores for period at time at, best first
func (c *LeaderboardCache) Top(ctx context.Context, period models.LeaderboardPeriod, at time.Time, limit int) ([]Score, error) {
	key := c.allKey()
	if period == models.PeriodWeek {
		key = c.weekKey(at)
	}

	results, err := c.client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	scores := make([]Score, 0, len(results))
	for _, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		if z.Score <= 0 {
			continue
		}
		scores = append(scores, Score{LearnerID: id, BooksRead: int(z.Score)})
	}
	return scores, nil
}

// Rebuild replaces the all-time set and the set for the week of at
func (c *LeaderboardCache) Rebuild(ctx context.Context, allTime, week map[int64]int, at time.Time) error {
	weekKey := c.weekKey(at)

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, c.allKey(), weekKey)
	if members := toMembers(allTime); len(members) > 0 {
		pipe.ZAdd(ctx, c.allKey(), members...)
	}
	if members := toMembers(week); len(members) > 0 {
		pipe.ZAdd(ctx, weekKey, members...)
		pipe.Expire(ctx, weekKey, weekTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to rebuild leaderboard: %w", err)
	}
	return nil
}

// Ping checks the Redis connection
func (c *LeaderboardCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func toMembers(counts map[int64]int) []redis.Z {
	members := make([]redis.Z, 0, len(counts))
	for id, n := range counts {
		if n <= 0 {
			continue
		}
		members = append(members, redis.Z{Score: float64(n), Member: strconv.FormatInt(id, 10)})
	}
	return members
}
