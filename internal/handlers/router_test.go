package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"youngscholars/internal/achievement"
	"youngscholars/internal/database"
	"youngscholars/internal/models"
	"youngscholars/internal/progression"
	"youngscholars/internal/repository"
	"youngscholars/internal/security"
	"youngscholars/internal/service"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "handlers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, db.RunMigrations(ctx, "../../migrations"))
	_, err = db.LoadBadWords(ctx, strings.NewReader("meanie\n"))
	require.NoError(t, err)

	learnerRepo := repository.NewLearnerRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	bookRepo := repository.NewBookRepository(db)

	book := &models.Book{ID: "ocean-friends", Title: "Ocean Friends", AgeMin: 3, AgeMax: 4, Difficulty: "Easy", ReadingLevel: "Read-along"}
	for i := 1; i <= 3; i++ {
		book.Pages = append(book.Pages, models.BookPage{PageNumber: i, Text: "Splash"})
	}
	questions := []models.QuizQuestion{
		{Question: "Who swims?", Choices: []string{"Fish", "Cat"}, AnswerIndex: 0},
	}
	require.NoError(t, bookRepo.SaveBook(ctx, book, questions))

	ladder := progression.ThreeLevelLadder()
	catalog := achievement.DefaultCatalog()
	email, err := service.NewEmailService(ctx, "us-east-1", "", "", "", false)
	require.NoError(t, err)

	tokens := security.NewTokenIssuer("handler-secret", time.Hour)
	learners := service.NewLearnerService(learnerRepo, historyRepo, db, ladder, catalog)
	auth := service.NewAuthService(repository.NewParentRepository(db), learners, tokens, email)
	leaderboard := service.NewLeaderboardService(nil, learnerRepo, historyRepo)
	reading := service.NewReadingService(service.ReadingServiceDeps{
		Learners:    learnerRepo,
		Books:       bookRepo,
		Progress:    historyRepo,
		Leaderboard: leaderboard,
		Ladder:      ladder,
		Catalog:     catalog,
	})

	limiter := security.NewRateLimiter(100, time.Minute)
	t.Cleanup(limiter.Stop)

	return NewRouter(Handlers{
		Middleware:  NewMiddleware(auth, limiter),
		Auth:        NewAuthHandler(auth),
		Children:    NewChildHandler(learners, reading),
		Catalog:     NewCatalogHandler(service.NewBookService(bookRepo), catalog),
		Leaderboard: NewLeaderboardHandler(leaderboard),
		DB:          db,
	})
}

func doRequest(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func registerParent(t *testing.T, h http.Handler, email string) service.Session {
	t.Helper()

	body := fmt.Sprintf(`{"email":%q,"password":"password123","firstName":"Pat","children":[{"firstName":"Mia","age":5}]}`, email)
	rec := doRequest(t, h, http.MethodPost, "/api/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var session service.Session
	decodeBody(t, rec, &session)
	require.NotEmpty(t, session.Token)
	require.Len(t, session.Children, 1)
	return session
}

func TestHealthz(t *testing.T) {
	h := newTestRouter(t)

	rec := doRequest(t, h, http.MethodGet, "/healthz", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRegisterAndLogin(t *testing.T) {
	h := newTestRouter(t)
	registerParent(t, h, "pat@example.com")

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{name: "login ok", path: "/api/login", body: `{"email":"PAT@example.com","password":"password123"}`, status: http.StatusOK},
		{name: "wrong password", path: "/api/login", body: `{"email":"pat@example.com","password":"nope12345"}`, status: http.StatusUnauthorized},
		{name: "duplicate email", path: "/api/register", body: `{"email":"pat@example.com","password":"password123","firstName":"Pat","children":[{"firstName":"Leo"}]}`, status: http.StatusConflict},
		{name: "no children", path: "/api/register", body: `{"email":"sam@example.com","password":"password123","firstName":"Sam"}`, status: http.StatusBadRequest},
		{name: "bad child name", path: "/api/register", body: `{"email":"kim@example.com","password":"password123","firstName":"Kim","children":[{"firstName":"Meanie","age":5}]}`, status: http.StatusBadRequest},
		{name: "malformed json", path: "/api/login", body: `{"email":`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, tt.path, "", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestChildRoutesRequireToken(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing", token: ""},
		{name: "garbage", token: "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodGet, "/api/children", tt.token, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestCompleteBookFlow(t *testing.T) {
	h := newTestRouter(t)
	session := registerParent(t, h, "pat@example.com")
	childPath := fmt.Sprintf("/api/children/%d", session.Children[0].ID)

	rec := doRequest(t, h, http.MethodPut, childPath+"/books/ocean-friends/progress", session.Token, `{"currentPage":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(t, h, http.MethodGet, childPath+"/books/ocean-friends/progress", session.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var progress models.ReadingProgress
	decodeBody(t, rec, &progress)
	assert.Equal(t, 2, progress.CurrentPage)

	rec = doRequest(t, h, http.MethodPost, childPath+"/books/ocean-friends/complete", session.Token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result service.CompletionResult
	decodeBody(t, rec, &result)
	assert.Equal(t, 1, result.Learner.BooksRead)
	require.Len(t, result.NewBadges, 1)
	assert.Equal(t, "first-read", result.NewBadges[0].ID)
	assert.False(t, result.LevelChanged)

	rec = doRequest(t, h, http.MethodGet, childPath+"/history", session.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history []models.ReadingHistoryEntry
	decodeBody(t, rec, &history)
	require.Len(t, history, 1)
	assert.Equal(t, "ocean-friends", history[0].BookID)

	rec = doRequest(t, h, http.MethodGet, childPath+"/report", session.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var report service.Report
	decodeBody(t, rec, &report)
	assert.Equal(t, 1, report.BooksCompleted)
	assert.Equal(t, "Beginner", report.ReadingLevelLabel)

	rec = doRequest(t, h, http.MethodGet, "/api/leaderboard?period=week", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []models.LeaderboardEntry
	decodeBody(t, rec, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, session.Children[0].ID, entries[0].LearnerID)
}

func TestChildErrors(t *testing.T) {
	h := newTestRouter(t)
	owner := registerParent(t, h, "pat@example.com")
	other := registerParent(t, h, "sam@example.com")
	childPath := fmt.Sprintf("/api/children/%d", owner.Children[0].ID)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		status int
	}{
		{name: "non numeric id", method: http.MethodGet, path: "/api/children/abc", token: owner.Token, status: http.StatusBadRequest},
		{name: "someone else's child", method: http.MethodGet, path: childPath, token: other.Token, status: http.StatusNotFound},
		{name: "unknown book", method: http.MethodPost, path: childPath + "/books/missing/complete", token: owner.Token, status: http.StatusNotFound},
		{name: "negative minutes", method: http.MethodPost, path: childPath + "/books/ocean-friends/complete", token: owner.Token, body: `{"minutes":-3}`, status: http.StatusBadRequest},
		{name: "page out of range", method: http.MethodPut, path: childPath + "/books/ocean-friends/progress", token: owner.Token, body: `{"currentPage":9}`, status: http.StatusBadRequest},
		{name: "restart", method: http.MethodDelete, path: childPath + "/books/ocean-friends/progress", token: owner.Token, status: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestCatalogRoutes(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "list books", method: http.MethodGet, path: "/api/books?age=3-4", status: http.StatusOK},
		{name: "bad age", method: http.MethodGet, path: "/api/books?age=old", status: http.StatusBadRequest},
		{name: "get book", method: http.MethodGet, path: "/api/books/ocean-friends", status: http.StatusOK},
		{name: "missing book", method: http.MethodGet, path: "/api/books/nope", status: http.StatusNotFound},
		{name: "quiz", method: http.MethodGet, path: "/api/quiz/ocean-friends", status: http.StatusOK},
		{name: "grade", method: http.MethodPost, path: "/api/quiz/ocean-friends/grade", body: `{"answers":{"0":0}}`, status: http.StatusOK},
		{name: "badges", method: http.MethodGet, path: "/api/badges", status: http.StatusOK},
		{name: "bad period", method: http.MethodGet, path: "/api/leaderboard?period=month", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, tt.method, tt.path, "", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestListBadgesInThresholdOrder(t *testing.T) {
	h := newTestRouter(t)

	rec := doRequest(t, h, http.MethodGet, "/api/badges", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var badges []models.Badge
	decodeBody(t, rec, &badges)
	require.Len(t, badges, 7)
	assert.Equal(t, "first-read", badges[0].ID)
	assert.Equal(t, "reading-champion", badges[6].ID)
}
