package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"youngscholars/internal/cache"
	"youngscholars/internal/models"
	"youngscholars/internal/repository"
	"youngscholars/internal/validation"
)

const (
	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 100
)

// RankingCache keeps precomputed leaderboard scores
type RankingCache interface {
	RecordCompletion(ctx context.Context, learnerID int64, booksRead int, at time.Time) error
	Top(ctx context.Context, period models.LeaderboardPeriod, at time.Time, limit int) ([]cache.Score, error)
	Rebuild(ctx context.Context, allTime, week map[int64]int, at time.Time) error
}

// LeaderboardService ranks learners by books completed. Rankings come from
// the cache when one is configured and from SQL otherwise.
type LeaderboardService struct {
	cache    RankingCache
	learners *repository.LearnerRepository
	history  *repository.HistoryRepository
	now      func() time.Time
}

// NewLeaderboardService creates a new leaderboard service. rankings may be nil.
func NewLeaderboardService(rankings RankingCache, learners *repository.LearnerRepository, history *repository.HistoryRepository) *LeaderboardService {
	return &LeaderboardService{
		cache:    rankings,
		learners: learners,
		history:  history,
		now:      time.Now,
	}
}

// ParsePeriod accepts "week", "all" or empty (all time)
func ParsePeriod(s string) (models.LeaderboardPeriod, error) {
	switch models.LeaderboardPeriod(s) {
	case "", models.PeriodAll:
		return models.PeriodAll, nil
	case models.PeriodWeek:
		return models.PeriodWeek, nil
	default:
		return "", validation.ValidationError{Field: "period", Message: "period must be week or all"}
	}
}

// Top returns the best readers for the period, best first
func (s *LeaderboardService) Top(ctx context.Context, period models.LeaderboardPeriod, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	if limit > MaxLeaderboardSize {
		limit = MaxLeaderboardSize
	}

	if s.cache != nil {
		entries, err := s.topFromCache(ctx, period, limit)
		if err == nil {
			return entries, nil
		}
		log.Printf("Leaderboard cache unavailable, using database: %v", err)
	}

	if period == models.PeriodWeek {
		return s.history.TopReadersSince(ctx, cache.WeekStart(s.now()), limit)
	}
	return s.learners.TopLearners(ctx, limit)
}

func (s *LeaderboardService) topFromCache(ctx context.Context, period models.LeaderboardPeriod, limit int) ([]models.LeaderboardEntry, error) {
	scores, err := s.cache.Top(ctx, period, s.now(), limit)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(scores))
	for _, score := range scores {
		ids = append(ids, score.LearnerID)
	}
	learners, err := s.learners.GetLearnersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(scores))
	for _, score := range scores {
		learner, ok := learners[score.LearnerID]
		if !ok {
			continue
		}
		rank := len(entries) + 1
		entries = append(entries, models.LeaderboardEntry{
			Rank:        rank,
			LearnerID:   learner.ID,
			FirstName:   learner.FirstName,
			NickName:    learner.NickName,
			AvatarColor: learner.AvatarColor,
			BooksRead:   score.BooksRead,
			Medal:       models.MedalForRank(rank),
		})
	}
	return entries, nil
}

// RecordCompletion updates the cached rankings after a completed book
func (s *LeaderboardService) RecordCompletion(ctx context.Context, learnerID int64, booksRead int, at time.Time) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.RecordCompletion(ctx, learnerID, booksRead, at)
}

// RebuildLeaderboard recomputes the cached rankings from the database
func (s *LeaderboardService) RebuildLeaderboard(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	learners, err := s.learners.GetAllLearners(ctx)
	if err != nil {
		return err
	}
	allTime := make(map[int64]int, len(learners))
	for _, l := range learners {
		allTime[l.ID] = l.BooksRead
	}

	now := s.now()
	week, err := s.history.CompletionsSince(ctx, cache.WeekStart(now))
	if err != nil {
		return err
	}

	if err := s.cache.Rebuild(ctx, allTime, week, now); err != nil {
		return fmt.Errorf("failed to rebuild leaderboard cache: %w", err)
	}
	log.Printf("Leaderboard rebuilt: %d learners, %d active this week", len(allTime), len(week))
	return nil
}
