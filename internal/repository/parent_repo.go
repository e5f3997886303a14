package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"youngscholars/internal/database"
	"youngscholars/internal/models"
)

// ParentRepository handles database operations for parent accounts
type ParentRepository struct {
	db *database.DB
}

// NewParentRepository creates a new parent repository
func NewParentRepository(db *database.DB) *ParentRepository {
	return &ParentRepository{db: db}
}

// CreateFamily inserts a parent and their children in one transaction.
// IDs and timestamps are filled in on success.
func (r *ParentRepository) CreateFamily(ctx context.Context, parent *models.Parent, learners []*models.Learner) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		query := `
			INSERT INTO parents (email, password_hash, first_name, last_name)
			VALUES (?, ?, ?, ?)
		`
		id, err := tx.ExecReturningID(ctx, query, parent.Email, parent.PasswordHash, parent.FirstName, parent.LastName)
		if err != nil {
			return fmt.Errorf("failed to create parent: %w", err)
		}

		now := time.Now()
		parent.ID = id
		parent.CreatedAt = now
		parent.UpdatedAt = now

		for _, learner := range learners {
			learner.ParentID = id
			if err := insertLearner(ctx, tx, learner); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetParentByEmail retrieves a parent by email address
func (r *ParentRepository) GetParentByEmail(ctx context.Context, email string) (*models.Parent, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, created_at, updated_at
		FROM parents
		WHERE email = ?
	`
	return r.scanParent(r.db.QueryRowContext(ctx, query, email))
}

// GetParentByID retrieves a parent by ID
func (r *ParentRepository) GetParentByID(ctx context.Context, id int64) (*models.Parent, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, created_at, updated_at
		FROM parents
		WHERE id = ?
	`
	return r.scanParent(r.db.QueryRowContext(ctx, query, id))
}

func (r *ParentRepository) scanParent(row *sql.Row) (*models.Parent, error) {
	parent := &models.Parent{}
	err := row.Scan(
		&parent.ID,
		&parent.Email,
		&parent.PasswordHash,
		&parent.FirstName,
		&parent.LastName,
		&parent.CreatedAt,
		&parent.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get parent: %w", err)
	}
	return parent, nil
}

// EmailExists checks if an email is already registered
func (r *ParentRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM parents WHERE email = ?", email).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}
