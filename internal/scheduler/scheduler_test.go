package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRebuilder struct {
	calls chan struct{}
	err   error
}

func (f *fakeRebuilder) RebuildLeaderboard(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("rebuild should run with a deadline")
	}
	f.calls <- struct{}{}
	return f.err
}

func TestSchedulerRunsRebuildOnStart(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "success", err: nil},
		{name: "failure is logged", err: errors.New("redis down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rebuilder := &fakeRebuilder{calls: make(chan struct{}, 1), err: tt.err}
			s := New(rebuilder, time.Hour)
			if err := s.Start(); err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			defer s.Stop()

			select {
			case <-rebuilder.calls:
			case <-time.After(5 * time.Second):
				t.Fatal("leaderboard rebuild did not run")
			}
		})
	}
}
