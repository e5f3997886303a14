package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"youngscholars/internal/database"
	"youngscholars/internal/models"
)

const learnerColumns = `id, parent_id, first_name, last_name, nick_name, age, avatar_color,
	reading_level, books_read, total_reading_minutes, latest_badge_id, created_at, updated_at`

// LearnerRepository handles database operations for learner profiles and their badges
type LearnerRepository struct {
	db *database.DB
}

// NewLearnerRepository creates a new learner repository
func NewLearnerRepository(db *database.DB) *LearnerRepository {
	return &LearnerRepository{db: db}
}

// ProgressUpdate is everything written when a learner finishes a book.
// PreviousBooksRead is the count the learner was loaded with.
type ProgressUpdate struct {
	Learner           *models.Learner
	PreviousBooksRead int
	NewBadges         []models.Badge
	History           *models.ReadingHistoryEntry
}

// CreateLearner inserts a new learner profile
func (r *LearnerRepository) CreateLearner(ctx context.Context, learner *models.Learner) error {
	return insertLearner(ctx, r.db, learner)
}

func insertLearner(ctx context.Context, q database.DBTX, learner *models.Learner) error {
	query := `
		INSERT INTO learners (parent_id, first_name, last_name, nick_name, age, avatar_color,
			reading_level, books_read, total_reading_minutes, latest_badge_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := q.ExecReturningID(ctx, query,
		learner.ParentID,
		learner.FirstName,
		learner.LastName,
		learner.NickName,
		learner.Age,
		learner.AvatarColor,
		string(learner.ReadingLevel),
		learner.BooksRead,
		learner.TotalReadingMinutes,
		"",
	)
	if err != nil {
		return fmt.Errorf("failed to create learner: %w", err)
	}

	now := time.Now()
	learner.ID = id
	learner.CreatedAt = now
	learner.UpdatedAt = now
	return nil
}

// GetLearnerByID retrieves a learner with their earned badges
func (r *LearnerRepository) GetLearnerByID(ctx context.Context, id int64) (*models.Learner, error) {
	query := "SELECT " + learnerColumns + " FROM learners WHERE id = ?"

	var latestBadgeID string
	learner, err := scanLearner(r.db.QueryRowContext(ctx, query, id), &latestBadgeID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get learner: %w", err)
	}

	if err := r.attachBadges(ctx, learner, latestBadgeID); err != nil {
		return nil, err
	}
	return learner, nil
}

// GetParentLearners retrieves all learners belonging to a parent, oldest profile first
func (r *LearnerRepository) GetParentLearners(ctx context.Context, parentID int64) ([]models.Learner, error) {
	query := "SELECT " + learnerColumns + " FROM learners WHERE parent_id = ? ORDER BY created_at ASC, id ASC"
	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query learners: %w", err)
	}

	var learners []models.Learner
	var latestBadgeIDs []string
	for rows.Next() {
		var latestBadgeID string
		learner, err := scanLearner(rows, &latestBadgeID)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan learner: %w", err)
		}
		learners = append(learners, *learner)
		latestBadgeIDs = append(latestBadgeIDs, latestBadgeID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate learners: %w", err)
	}
	rows.Close()

	// Badges are loaded after the learner rows are closed; SQLite runs on a single connection
	for i := range learners {
		if err := r.attachBadges(ctx, &learners[i], latestBadgeIDs[i]); err != nil {
			return nil, err
		}
	}
	return learners, nil
}

// GetAllLearners retrieves every learner without badges, ordered by ID
func (r *LearnerRepository) GetAllLearners(ctx context.Context) ([]models.Learner, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+learnerColumns+" FROM learners ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query learners: %w", err)
	}
	defer rows.Close()

	var learners []models.Learner
	for rows.Next() {
		var latestBadgeID string
		learner, err := scanLearner(rows, &latestBadgeID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan learner: %w", err)
		}
		learners = append(learners, *learner)
	}
	return learners, rows.Err()
}

// GetLearnersByIDs retrieves learners without badges, keyed by ID.
// Unknown IDs are absent from the result.
func (r *LearnerRepository) GetLearnersByIDs(ctx context.Context, ids []int64) (map[int64]models.Learner, error) {
	result := make(map[int64]models.Learner, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := "SELECT " + learnerColumns + " FROM learners WHERE id IN (" + placeholders + ")"
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query learners: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var latestBadgeID string
		learner, err := scanLearner(rows, &latestBadgeID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan learner: %w", err)
		}
		result[learner.ID] = *learner
	}
	return result, rows.Err()
}

// SaveProgress writes a completed book in one transaction: the learner's
// counters and level, newly earned badges and the history entry. It fails with
// ErrConcurrentUpdate when books_read no longer equals PreviousBooksRead.
func (r *LearnerRepository) SaveProgress(ctx context.Context, update ProgressUpdate) error {
	learner := update.Learner
	latestBadgeID := ""
	if learner.LatestBadge != nil {
		latestBadgeID = learner.LatestBadge.ID
	}

	now := time.Now().UTC()

	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		query := `
			UPDATE learners
			SET books_read = ?, reading_level = ?, total_reading_minutes = ?, latest_badge_id = ?, updated_at = ?
			WHERE id = ? AND books_read = ?
		`
		result, err := tx.ExecContext(ctx, query,
			learner.BooksRead,
			string(learner.ReadingLevel),
			learner.TotalReadingMinutes,
			latestBadgeID,
			now,
			learner.ID,
			update.PreviousBooksRead,
		)
		if err != nil {
			return fmt.Errorf("failed to update learner: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check learner update: %w", err)
		}
		if affected == 0 {
			return ErrConcurrentUpdate
		}

		var position int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM learner_badges WHERE learner_id = ?", learner.ID).Scan(&position); err != nil {
			return fmt.Errorf("failed to count badges: %w", err)
		}

		badgeQuery := `
			INSERT INTO learner_badges (learner_id, badge_id, position, title, description, icon, color, earned_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
		for i, badge := range update.NewBadges {
			if _, err := tx.ExecContext(ctx, badgeQuery,
				learner.ID, badge.ID, position+i, badge.Title, badge.Description, badge.Icon, badge.Color, now,
			); err != nil {
				return fmt.Errorf("failed to award badge %s: %w", badge.ID, err)
			}
		}

		if entry := update.History; entry != nil {
			historyQuery := `
				INSERT INTO reading_history (learner_id, book_id, title, pages, minutes, completed_at)
				VALUES (?, ?, ?, ?, ?, ?)
			`
			id, err := tx.ExecReturningID(ctx, historyQuery,
				learner.ID, entry.BookID, entry.Title, entry.Pages, entry.Minutes, now,
			)
			if err != nil {
				return fmt.Errorf("failed to record reading history: %w", err)
			}
			entry.ID = id
			entry.LearnerID = learner.ID
			entry.CompletedAt = now
		}
		return nil
	})
	if err != nil {
		return err
	}

	learner.UpdatedAt = now
	stampEarned(learner, update.NewBadges, now)
	return nil
}

// stampEarned sets EarnedAt on the learner's copies of the newly earned badges
func stampEarned(learner *models.Learner, newBadges []models.Badge, at time.Time) {
	fresh := make(map[string]bool, len(newBadges))
	for _, b := range newBadges {
		fresh[b.ID] = true
	}
	for i := range learner.Badges {
		if fresh[learner.Badges[i].ID] && learner.Badges[i].EarnedAt == nil {
			earnedAt := at
			learner.Badges[i].EarnedAt = &earnedAt
		}
	}
	if learner.LatestBadge != nil && fresh[learner.LatestBadge.ID] && learner.LatestBadge.EarnedAt == nil {
		earnedAt := at
		learner.LatestBadge.EarnedAt = &earnedAt
	}
}

// TopLearners ranks learners by total books read
func (r *LearnerRepository) TopLearners(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT id, first_name, nick_name, avatar_color, books_read
		FROM learners
		WHERE books_read > 0
		ORDER BY books_read DESC, id ASC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	return scanLeaderboard(rows)
}

func (r *LearnerRepository) attachBadges(ctx context.Context, learner *models.Learner, latestBadgeID string) error {
	query := `
		SELECT badge_id, title, description, icon, color, earned_at
		FROM learner_badges
		WHERE learner_id = ?
		ORDER BY position ASC
	`
	rows, err := r.db.QueryContext(ctx, query, learner.ID)
	if err != nil {
		return fmt.Errorf("failed to query badges: %w", err)
	}
	defer rows.Close()

	learner.Badges = []models.Badge{}
	for rows.Next() {
		var badge models.Badge
		var earnedAt time.Time
		if err := rows.Scan(&badge.ID, &badge.Title, &badge.Description, &badge.Icon, &badge.Color, &earnedAt); err != nil {
			return fmt.Errorf("failed to scan badge: %w", err)
		}
		badge.EarnedAt = &earnedAt
		learner.Badges = append(learner.Badges, badge)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate badges: %w", err)
	}

	for i := range learner.Badges {
		if learner.Badges[i].ID == latestBadgeID {
			latest := learner.Badges[i]
			learner.LatestBadge = &latest
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLearner(row rowScanner, latestBadgeID *string) (*models.Learner, error) {
	learner := &models.Learner{}
	var level string
	err := row.Scan(
		&learner.ID,
		&learner.ParentID,
		&learner.FirstName,
		&learner.LastName,
		&learner.NickName,
		&learner.Age,
		&learner.AvatarColor,
		&level,
		&learner.BooksRead,
		&learner.TotalReadingMinutes,
		latestBadgeID,
		&learner.CreatedAt,
		&learner.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	learner.ReadingLevel = models.ReadingLevel(level)
	return learner, nil
}

func scanLeaderboard(rows *sql.Rows) ([]models.LeaderboardEntry, error) {
	entries := []models.LeaderboardEntry{}
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.LearnerID, &e.FirstName, &e.NickName, &e.AvatarColor, &e.BooksRead); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		e.Rank = len(entries) + 1
		e.Medal = models.MedalForRank(e.Rank)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
