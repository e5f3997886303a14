package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

const jobTimeout = 2 * time.Minute

// LeaderboardRebuilder recomputes cached rankings from the database
type LeaderboardRebuilder interface {
	RebuildLeaderboard(ctx context.Context) error
}

// Scheduler manages periodic background jobs
type Scheduler struct {
	scheduler *gocron.Scheduler
	rebuilder LeaderboardRebuilder
	interval  time.Duration
}

// New creates a scheduler that rebuilds the leaderboard every interval
func New(rebuilder LeaderboardRebuilder, interval time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		rebuilder: rebuilder,
		interval:  interval,
	}
}

// Start schedules the jobs and runs them without blocking.
// The first rebuild runs immediately.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.rebuildLeaderboard); err != nil {
		return fmt.Errorf("failed to schedule leaderboard rebuild: %w", err)
	}

	s.scheduler.StartAsync()
	log.Printf("Scheduler started: leaderboard rebuild every %v", s.interval)
	return nil
}

// Stop terminates all scheduled jobs
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) rebuildLeaderboard() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	if err := s.rebuilder.RebuildLeaderboard(ctx); err != nil {
		log.Printf("Leaderboard rebuild failed: %v", err)
		return
	}
	log.Printf("Leaderboard rebuilt in %v", time.Since(start))
}
