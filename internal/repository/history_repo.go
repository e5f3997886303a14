package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"youngscholars/internal/database"
	"youngscholars/internal/models"
)

// HistoryRepository handles reading history and in-progress reading state
type HistoryRepository struct {
	db *database.DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *database.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// GetHistory returns a learner's completed books, newest first
func (r *HistoryRepository) GetHistory(ctx context.Context, learnerID int64, limit int) ([]models.ReadingHistoryEntry, error) {
	query := `
		SELECT id, learner_id, book_id, title, pages, minutes, completed_at
		FROM reading_history
		WHERE learner_id = ?
		ORDER BY completed_at DESC, id DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, learnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reading history: %w", err)
	}
	defer rows.Close()

	entries := []models.ReadingHistoryEntry{}
	for rows.Next() {
		var e models.ReadingHistoryEntry
		if err := rows.Scan(&e.ID, &e.LearnerID, &e.BookID, &e.Title, &e.Pages, &e.Minutes, &e.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reading history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountCompletedSince counts books a learner finished at or after since
func (r *HistoryRepository) CountCompletedSince(ctx context.Context, learnerID int64, since time.Time) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM reading_history WHERE learner_id = ? AND completed_at >= ?"
	if err := r.db.QueryRowContext(ctx, query, learnerID, since.UTC()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completed books: %w", err)
	}
	return count, nil
}

// TopReadersSince ranks learners by books completed at or after since
func (r *HistoryRepository) TopReadersSince(ctx context.Context, since time.Time, limit int) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT l.id, l.first_name, l.nick_name, l.avatar_color, COUNT(*) AS completed
		FROM reading_history h
		JOIN learners l ON l.id = h.learner_id
		WHERE h.completed_at >= ?
		GROUP BY l.id, l.first_name, l.nick_name, l.avatar_color
		ORDER BY completed DESC, l.id ASC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, since.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly leaderboard: %w", err)
	}
	defer rows.Close()

	return scanLeaderboard(rows)
}

// CompletionsSince returns books completed at or after since, per learner
func (r *HistoryRepository) CompletionsSince(ctx context.Context, since time.Time) (map[int64]int, error) {
	query := `
		SELECT learner_id, COUNT(*)
		FROM reading_history
		WHERE completed_at >= ?
		GROUP BY learner_id
	`
	rows, err := r.db.QueryContext(ctx, query, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var learnerID int64
		var count int
		if err := rows.Scan(&learnerID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan completions: %w", err)
		}
		counts[learnerID] = count
	}
	return counts, rows.Err()
}

// GetReadingProgress returns the saved position in a book, or nil when none is saved
func (r *HistoryRepository) GetReadingProgress(ctx context.Context, learnerID int64, bookID string) (*models.ReadingProgress, error) {
	query := `
		SELECT learner_id, book_id, current_page, quiz_answers, updated_at
		FROM reading_progress
		WHERE learner_id = ? AND book_id = ?
	`
	progress := &models.ReadingProgress{}
	var answers string
	err := r.db.QueryRowContext(ctx, query, learnerID, bookID).Scan(
		&progress.LearnerID,
		&progress.BookID,
		&progress.CurrentPage,
		&answers,
		&progress.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reading progress: %w", err)
	}

	progress.QuizAnswers = map[int]int{}
	if answers != "" {
		if err := json.Unmarshal([]byte(answers), &progress.QuizAnswers); err != nil {
			return nil, fmt.Errorf("failed to decode quiz answers: %w", err)
		}
	}
	return progress, nil
}

// SaveReadingProgress stores the current page and quiz answers for a book
func (r *HistoryRepository) SaveReadingProgress(ctx context.Context, progress *models.ReadingProgress) error {
	answers := progress.QuizAnswers
	if answers == nil {
		answers = map[int]int{}
	}
	encoded, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("failed to encode quiz answers: %w", err)
	}

	now := time.Now().UTC()
	query := r.db.Dialect.UpsertQuery("reading_progress",
		[]string{"learner_id", "book_id", "current_page", "quiz_answers", "updated_at"},
		[]string{"learner_id", "book_id"},
		[]string{"current_page", "quiz_answers", "updated_at"},
	)
	if _, err := r.db.ExecContext(ctx, query, progress.LearnerID, progress.BookID, progress.CurrentPage, string(encoded), now); err != nil {
		return fmt.Errorf("failed to save reading progress: %w", err)
	}

	progress.QuizAnswers = answers
	progress.UpdatedAt = now
	return nil
}

// ClearReadingProgress removes the saved position in a book
func (r *HistoryRepository) ClearReadingProgress(ctx context.Context, learnerID int64, bookID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM reading_progress WHERE learner_id = ? AND book_id = ?", learnerID, bookID)
	if err != nil {
		return fmt.Errorf("failed to clear reading progress: %w", err)
	}
	return nil
}
