package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndListLearners(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	session := env.register(t, "pat@example.com", "Amara")

	added, err := env.learners.AddLearner(ctx, session.Parent.ID, ChildInput{FirstName: "Tobi", Age: 7, AvatarColor: "#4ade80"})
	require.NoError(t, err)
	assert.Equal(t, "#4ade80", added.AvatarColor)
	assert.Equal(t, session.Parent.ID, added.ParentID)

	learners, err := env.learners.ListLearners(ctx, session.Parent.ID)
	require.NoError(t, err)
	require.Len(t, learners, 2)

	_, err = env.learners.AddLearner(ctx, session.Parent.ID, ChildInput{FirstName: "Baddie", Age: 7})
	assert.ErrorIs(t, err, ErrInappropriateName)
}

func TestGetLearnerOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pat := env.register(t, "pat@example.com", "Amara")
	sam := env.register(t, "sam@example.com", "Tobi")

	got, err := env.learners.GetLearner(ctx, pat.Parent.ID, pat.Children[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Amara", got.FirstName)

	_, err = env.learners.GetLearner(ctx, sam.Parent.ID, pat.Children[0].ID)
	assert.ErrorIs(t, err, ErrLearnerNotFound)
}

func TestReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	session := env.register(t, "pat@example.com", "Amara")
	parentID, learnerID := session.Parent.ID, session.Children[0].ID

	for i := 0; i < 6; i++ {
		_, err := env.reading.CompleteBook(ctx, parentID, learnerID, "ocean-friends", 10)
		require.NoError(t, err)
	}

	report, err := env.learners.Report(ctx, parentID, learnerID)
	require.NoError(t, err)

	assert.Equal(t, 6, report.BooksCompleted)
	assert.Equal(t, 6, report.BooksThisWeek)
	assert.Equal(t, 60, report.TotalReadingMinutes)
	assert.Equal(t, "Beginner", report.ReadingLevelLabel)
	assert.Equal(t, "Intermediate", report.NextLevelLabel)
	assert.Equal(t, 4, report.BooksToNextLevel)
	require.NotNil(t, report.LatestBadge)
	assert.Equal(t, "book-worm", report.LatestBadge.ID)
	assert.Len(t, report.RecentHistory, reportHistorySize)
	assert.Len(t, report.Badges, 7)
	assert.WithinDuration(t, time.Now(), report.JoinedDate, time.Minute)

	env.learners.now = func() time.Time { return time.Now().AddDate(0, 0, 8) }
	report, err = env.learners.Report(ctx, parentID, learnerID)
	require.NoError(t, err)
	assert.Zero(t, report.BooksThisWeek)
}

func TestBadgeProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	session := env.register(t, "pat@example.com", "Amara")
	parentID, learnerID := session.Parent.ID, session.Children[0].ID

	_, err := env.reading.CompleteBook(ctx, parentID, learnerID, "ocean-friends", 0)
	require.NoError(t, err)

	progress, err := env.learners.BadgeProgress(ctx, parentID, learnerID)
	require.NoError(t, err)
	require.Len(t, progress, 7)
	assert.True(t, progress[0].Earned)
	assert.False(t, progress[1].Earned)
	assert.Equal(t, 4, progress[1].BooksRemaining)
}
