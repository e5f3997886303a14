package service

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"youngscholars/internal/achievement"
	"youngscholars/internal/database"
	"youngscholars/internal/models"
	"youngscholars/internal/progression"
	"youngscholars/internal/repository"
	"youngscholars/internal/security"
)

// recordingNotifier keeps every notification it is given
type recordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, learner *models.Learner, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.sent...)
}

type testEnv struct {
	db          *database.DB
	parents     *repository.ParentRepository
	learnerRepo *repository.LearnerRepository
	history     *repository.HistoryRepository
	bookRepo    *repository.BookRepository
	learners    *LearnerService
	auth        *AuthService
	books       *BookService
	reading     *ReadingService
	leaderboard *LeaderboardService
	notifier    *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, db.RunMigrations(ctx, "../../migrations"))
	_, err = db.LoadBadWords(ctx, strings.NewReader("meanie\nbaddie\n"))
	require.NoError(t, err)

	env := &testEnv{
		db:          db,
		parents:     repository.NewParentRepository(db),
		learnerRepo: repository.NewLearnerRepository(db),
		history:     repository.NewHistoryRepository(db),
		bookRepo:    repository.NewBookRepository(db),
		notifier:    &recordingNotifier{},
	}

	ladder := progression.ThreeLevelLadder()
	catalog := achievement.DefaultCatalog()
	email, err := NewEmailService(ctx, "us-east-1", "", "", "", false)
	require.NoError(t, err)

	env.learners = NewLearnerService(env.learnerRepo, env.history, db, ladder, catalog)
	env.auth = NewAuthService(env.parents, env.learners, security.NewTokenIssuer("test-secret", time.Hour), email)
	env.books = NewBookService(env.bookRepo)
	env.leaderboard = NewLeaderboardService(nil, env.learnerRepo, env.history)
	env.reading = NewReadingService(ReadingServiceDeps{
		Learners:    env.learnerRepo,
		Books:       env.bookRepo,
		Progress:    env.history,
		Leaderboard: env.leaderboard,
		Notifier:    env.notifier,
		Ladder:      ladder,
		Catalog:     catalog,
	})

	env.addBook(t, "ocean-friends", "Ocean Friends", 3)
	env.addBook(t, "space-trip", "A Trip to Space", 4)
	return env
}

func (e *testEnv) addBook(t *testing.T, id, title string, pages int) {
	t.Helper()

	book := &models.Book{
		ID:           id,
		Title:        title,
		Author:       "Test Author",
		AgeMin:       3,
		AgeMax:       4,
		Difficulty:   "Easy",
		ReadingLevel: "Read-along",
	}
	for i := 1; i <= pages; i++ {
		book.Pages = append(book.Pages, models.BookPage{PageNumber: i, Text: "Page text"})
	}
	questions := []models.QuizQuestion{
		{Question: "Who lives in the ocean?", Choices: []string{"Fish", "Lion", "Owl"}, AnswerIndex: 0},
		{Question: "What color is the sea?", Choices: []string{"Red", "Blue"}, AnswerIndex: 1},
	}
	require.NoError(t, e.bookRepo.SaveBook(context.Background(), book, questions))
}

// register creates a parent with the given children and returns the session
func (e *testEnv) register(t *testing.T, email string, children ...string) *Session {
	t.Helper()

	in := RegisterInput{Email: email, Password: "password123", FirstName: "Pat"}
	for _, name := range children {
		in.Children = append(in.Children, ChildInput{FirstName: name, Age: 6})
	}
	session, err := e.auth.Register(context.Background(), in)
	require.NoError(t, err)
	return session
}

// setBooksRead moves a learner's counter without going through completions
func (e *testEnv) setBooksRead(t *testing.T, learnerID int64, n int) {
	t.Helper()
	_, err := e.db.ExecContext(context.Background(), "UPDATE learners SET books_read = ? WHERE id = ?", n, learnerID)
	require.NoError(t, err)
}
