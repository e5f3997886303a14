package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"youngscholars/internal/database"
)

const backupVersion = "1.0"

// BackupData is the complete, database independent backup document
type BackupData struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Parents    []ParentBackup   `json:"parents"`
	Learners   []LearnerBackup  `json:"learners"`
	Books      []BookBackup     `json:"books"`
	History    []HistoryBackup  `json:"reading_history"`
	Progress   []ProgressBackup `json:"reading_progress"`
	BadWords   []string         `json:"bad_words"`
}

// ParentBackup is a parent account
type ParentBackup struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LearnerBackup is a learner profile with its earned badges
type LearnerBackup struct {
	ID                  int64         `json:"id"`
	ParentID            int64         `json:"parent_id"`
	FirstName           string        `json:"first_name"`
	LastName            string        `json:"last_name"`
	NickName            string        `json:"nick_name"`
	Age                 int           `json:"age"`
	AvatarColor         string        `json:"avatar_color"`
	ReadingLevel        string        `json:"reading_level"`
	BooksRead           int           `json:"books_read"`
	TotalReadingMinutes int           `json:"total_reading_minutes"`
	LatestBadgeID       string        `json:"latest_badge_id"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
	Badges              []BadgeBackup `json:"badges"`
}

// BadgeBackup is one earned badge, in earned order
type BadgeBackup struct {
	BadgeID     string    `json:"badge_id"`
	Position    int       `json:"position"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	EarnedAt    time.Time `json:"earned_at"`
}

// BookBackup is a catalog book with its pages and quiz
type BookBackup struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Author       string       `json:"author"`
	CoverImage   string       `json:"cover_image"`
	Description  string       `json:"description"`
	Category     string       `json:"category"`
	AgeMin       int          `json:"age_min"`
	AgeMax       int          `json:"age_max"`
	Difficulty   string       `json:"difficulty"`
	ReadingLevel string       `json:"reading_level"`
	Tags         string       `json:"tags"`
	Rating       float64      `json:"rating"`
	CreatedAt    time.Time    `json:"created_at"`
	Pages        []PageBackup `json:"pages"`
	Quiz         []QuizBackup `json:"quiz"`
}

// PageBackup is one page of a book
type PageBackup struct {
	PageNumber int    `json:"page_number"`
	Body       string `json:"body"`
	Image      string `json:"image"`
	AudioURL   string `json:"audio_url"`
}

// QuizBackup is one quiz question; Choices holds the stored JSON array
type QuizBackup struct {
	ID          int64  `json:"id"`
	Position    int    `json:"position"`
	Question    string `json:"question"`
	Choices     string `json:"choices"`
	AnswerIndex int    `json:"answer_index"`
}

// HistoryBackup is one completed book
type HistoryBackup struct {
	ID          int64     `json:"id"`
	LearnerID   int64     `json:"learner_id"`
	BookID      string    `json:"book_id"`
	Title       string    `json:"title"`
	Pages       int       `json:"pages"`
	Minutes     int       `json:"minutes"`
	CompletedAt time.Time `json:"completed_at"`
}

// ProgressBackup is a saved position in a book
type ProgressBackup struct {
	LearnerID   int64     `json:"learner_id"`
	BookID      string    `json:"book_id"`
	CurrentPage int       `json:"current_page"`
	QuizAnswers string    `json:"quiz_answers"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export writes a complete backup of the database to a file
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(ctx, file); err != nil {
		return err
	}
	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter writes a complete backup of the database as indented JSON
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	backup, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return nil
}

// Snapshot reads every table into a BackupData
func (s *BackupService) Snapshot(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{
		Version:    backupVersion,
		ExportedAt: time.Now().UTC(),
	}

	steps := []struct {
		name string
		fn   func(context.Context, *BackupData) error
	}{
		{"parents", s.exportParents},
		{"learners", s.exportLearners},
		{"badges", s.exportBadges},
		{"books", s.exportBooks},
		{"pages", s.exportPages},
		{"quiz questions", s.exportQuiz},
		{"reading history", s.exportHistory},
		{"reading progress", s.exportProgress},
		{"bad words", s.exportBadWords},
	}
	for _, step := range steps {
		if err := step.fn(ctx, backup); err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", step.name, err)
		}
	}

	log.Printf("Exported: %d parents, %d learners, %d books, %d history entries",
		len(backup.Parents), len(backup.Learners), len(backup.Books), len(backup.History))
	return backup, nil
}

// Import restores a backup file
func (s *BackupService) Import(ctx context.Context, inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file)
}

// ImportFromReader restores a backup in a single transaction
func (s *BackupService) ImportFromReader(ctx context.Context, reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != backupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := importParents(ctx, tx, backup.Parents); err != nil {
			return fmt.Errorf("failed to import parents: %w", err)
		}
		if err := importLearners(ctx, tx, backup.Learners); err != nil {
			return fmt.Errorf("failed to import learners: %w", err)
		}
		if err := importBooks(ctx, tx, backup.Books); err != nil {
			return fmt.Errorf("failed to import books: %w", err)
		}
		if err := importHistory(ctx, tx, backup.History); err != nil {
			return fmt.Errorf("failed to import reading history: %w", err)
		}
		if err := importProgress(ctx, tx, backup.Progress); err != nil {
			return fmt.Errorf("failed to import reading progress: %w", err)
		}
		if err := importBadWords(ctx, tx, backup.BadWords); err != nil {
			return fmt.Errorf("failed to import bad words: %w", err)
		}
		return resetSequences(ctx, tx)
	})
	if err != nil {
		return err
	}

	log.Println("Database import completed successfully")
	return nil
}

// ClearData deletes every row, children before parents
func (s *BackupService) ClearData(ctx context.Context) error {
	tables := []string{
		"reading_progress",
		"reading_history",
		"learner_badges",
		"learners",
		"parents",
		"quiz_questions",
		"book_pages",
		"books",
		"bad_words",
	}

	return s.db.WithTx(ctx, func(tx *database.Tx) error {
		for _, table := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
			log.Printf("Cleared table: %s", table)
		}
		return nil
	})
}

func (s *BackupService) exportParents(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, email, password_hash, first_name, last_name, created_at, updated_at FROM parents ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	backup.Parents = []ParentBackup{}
	for rows.Next() {
		var p ParentBackup
		if err := rows.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.FirstName, &p.LastName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
		backup.Parents = append(backup.Parents, p)
	}
	return rows.Err()
}

func (s *BackupService) exportLearners(ctx context.Context, backup *BackupData) error {
	query := `
		SELECT id, parent_id, first_name, last_name, nick_name, age, avatar_color, reading_level,
			books_read, total_reading_minutes, latest_badge_id, created_at, updated_at
		FROM learners ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	backup.Learners = []LearnerBackup{}
	for rows.Next() {
		l := LearnerBackup{Badges: []BadgeBackup{}}
		if err := rows.Scan(&l.ID, &l.ParentID, &l.FirstName, &l.LastName, &l.NickName, &l.Age, &l.AvatarColor,
			&l.ReadingLevel, &l.BooksRead, &l.TotalReadingMinutes, &l.LatestBadgeID, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return err
		}
		backup.Learners = append(backup.Learners, l)
	}
	return rows.Err()
}

// exportBadges attaches badges to the learners already exported
func (s *BackupService) exportBadges(ctx context.Context, backup *BackupData) error {
	index := make(map[int64]int, len(backup.Learners))
	for i, l := range backup.Learners {
		index[l.ID] = i
	}

	rows, err := s.db.QueryContext(ctx, "SELECT learner_id, badge_id, position, title, description, icon, color, earned_at FROM learner_badges ORDER BY learner_id, position")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var learnerID int64
		var b BadgeBackup
		if err := rows.Scan(&learnerID, &b.BadgeID, &b.Position, &b.Title, &b.Description, &b.Icon, &b.Color, &b.EarnedAt); err != nil {
			return err
		}
		if i, ok := index[learnerID]; ok {
			backup.Learners[i].Badges = append(backup.Learners[i].Badges, b)
		}
	}
	return rows.Err()
}

func (s *BackupService) exportBooks(ctx context.Context, backup *BackupData) error {
	query := `
		SELECT id, title, author, cover_image, description, category, age_min, age_max,
			difficulty, reading_level, tags, rating, created_at
		FROM books ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	backup.Books = []BookBackup{}
	for rows.Next() {
		b := BookBackup{Pages: []PageBackup{}, Quiz: []QuizBackup{}}
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.CoverImage, &b.Description, &b.Category, &b.AgeMin, &b.AgeMax,
			&b.Difficulty, &b.ReadingLevel, &b.Tags, &b.Rating, &b.CreatedAt); err != nil {
			return err
		}
		backup.Books = append(backup.Books, b)
	}
	return rows.Err()
}

func bookIndex(backup *BackupData) map[string]int {
	index := make(map[string]int, len(backup.Books))
	for i, b := range backup.Books {
		index[b.ID] = i
	}
	return index
}

func (s *BackupService) exportPages(ctx context.Context, backup *BackupData) error {
	index := bookIndex(backup)

	rows, err := s.db.QueryContext(ctx, "SELECT book_id, page_number, body, image, audio_url FROM book_pages ORDER BY book_id, page_number")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var bookID string
		var p PageBackup
		if err := rows.Scan(&bookID, &p.PageNumber, &p.Body, &p.Image, &p.AudioURL); err != nil {
			return err
		}
		if i, ok := index[bookID]; ok {
			backup.Books[i].Pages = append(backup.Books[i].Pages, p)
		}
	}
	return rows.Err()
}

func (s *BackupService) exportQuiz(ctx context.Context, backup *BackupData) error {
	index := bookIndex(backup)

	rows, err := s.db.QueryContext(ctx, "SELECT id, book_id, position, question, choices, answer_index FROM quiz_questions ORDER BY book_id, position, id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var bookID string
		var q QuizBackup
		if err := rows.Scan(&q.ID, &bookID, &q.Position, &q.Question, &q.Choices, &q.AnswerIndex); err != nil {
			return err
		}
		if i, ok := index[bookID]; ok {
			backup.Books[i].Quiz = append(backup.Books[i].Quiz, q)
		}
	}
	return rows.Err()
}

func (s *BackupService) exportHistory(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, learner_id, book_id, title, pages, minutes, completed_at FROM reading_history ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	backup.History = []HistoryBackup{}
	for rows.Next() {
		var h HistoryBackup
		if err := rows.Scan(&h.ID, &h.LearnerID, &h.BookID, &h.Title, &h.Pages, &h.Minutes, &h.CompletedAt); err != nil {
			return err
		}
		backup.History = append(backup.History, h)
	}
	return rows.Err()
}

func (s *BackupService) exportProgress(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, "SELECT learner_id, book_id, current_page, quiz_answers, updated_at FROM reading_progress ORDER BY learner_id, book_id")
	if err != nil {
		return err
	}
	defer rows.Close()

	backup.Progress = []ProgressBackup{}
	for rows.Next() {
		var p ProgressBackup
		if err := rows.Scan(&p.LearnerID, &p.BookID, &p.CurrentPage, &p.QuizAnswers, &p.UpdatedAt); err != nil {
			return err
		}
		backup.Progress = append(backup.Progress, p)
	}
	return rows.Err()
}

func (s *BackupService) exportBadWords(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, "SELECT word FROM bad_words ORDER BY word")
	if err != nil {
		return err
	}
	defer rows.Close()

	backup.BadWords = []string{}
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return err
		}
		backup.BadWords = append(backup.BadWords, word)
	}
	return rows.Err()
}

func importParents(ctx context.Context, tx *database.Tx, parents []ParentBackup) error {
	log.Printf("Importing %d parents...", len(parents))
	query := "INSERT INTO parents (id, email, password_hash, first_name, last_name, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	for _, p := range parents {
		if _, err := tx.ExecContext(ctx, query, p.ID, p.Email, p.PasswordHash, p.FirstName, p.LastName, p.CreatedAt, p.UpdatedAt); err != nil {
			return fmt.Errorf("parent %d: %w", p.ID, err)
		}
	}
	return nil
}

func importLearners(ctx context.Context, tx *database.Tx, learners []LearnerBackup) error {
	log.Printf("Importing %d learners...", len(learners))
	query := `
		INSERT INTO learners (id, parent_id, first_name, last_name, nick_name, age, avatar_color, reading_level,
			books_read, total_reading_minutes, latest_badge_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	badgeQuery := `
		INSERT INTO learner_badges (learner_id, badge_id, position, title, description, icon, color, earned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, l := range learners {
		if _, err := tx.ExecContext(ctx, query, l.ID, l.ParentID, l.FirstName, l.LastName, l.NickName, l.Age, l.AvatarColor,
			l.ReadingLevel, l.BooksRead, l.TotalReadingMinutes, l.LatestBadgeID, l.CreatedAt, l.UpdatedAt); err != nil {
			return fmt.Errorf("learner %d: %w", l.ID, err)
		}
		for _, b := range l.Badges {
			if _, err := tx.ExecContext(ctx, badgeQuery, l.ID, b.BadgeID, b.Position, b.Title, b.Description, b.Icon, b.Color, b.EarnedAt); err != nil {
				return fmt.Errorf("badge %s for learner %d: %w", b.BadgeID, l.ID, err)
			}
		}
	}
	return nil
}

func importBooks(ctx context.Context, tx *database.Tx, books []BookBackup) error {
	log.Printf("Importing %d books...", len(books))
	query := `
		INSERT INTO books (id, title, author, cover_image, description, category, age_min, age_max,
			difficulty, reading_level, tags, rating, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	pageQuery := "INSERT INTO book_pages (book_id, page_number, body, image, audio_url) VALUES (?, ?, ?, ?, ?)"
	quizQuery := "INSERT INTO quiz_questions (id, book_id, position, question, choices, answer_index) VALUES (?, ?, ?, ?, ?, ?)"

	for _, b := range books {
		if _, err := tx.ExecContext(ctx, query, b.ID, b.Title, b.Author, b.CoverImage, b.Description, b.Category, b.AgeMin, b.AgeMax,
			b.Difficulty, b.ReadingLevel, b.Tags, b.Rating, b.CreatedAt); err != nil {
			return fmt.Errorf("book %s: %w", b.ID, err)
		}
		for _, p := range b.Pages {
			if _, err := tx.ExecContext(ctx, pageQuery, b.ID, p.PageNumber, p.Body, p.Image, p.AudioURL); err != nil {
				return fmt.Errorf("page %d of book %s: %w", p.PageNumber, b.ID, err)
			}
		}
		for _, q := range b.Quiz {
			if _, err := tx.ExecContext(ctx, quizQuery, q.ID, b.ID, q.Position, q.Question, q.Choices, q.AnswerIndex); err != nil {
				return fmt.Errorf("quiz question %d of book %s: %w", q.ID, b.ID, err)
			}
		}
	}
	return nil
}

func importHistory(ctx context.Context, tx *database.Tx, history []HistoryBackup) error {
	log.Printf("Importing %d history entries...", len(history))
	query := "INSERT INTO reading_history (id, learner_id, book_id, title, pages, minutes, completed_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	for _, h := range history {
		if _, err := tx.ExecContext(ctx, query, h.ID, h.LearnerID, h.BookID, h.Title, h.Pages, h.Minutes, h.CompletedAt.UTC()); err != nil {
			return fmt.Errorf("history entry %d: %w", h.ID, err)
		}
	}
	return nil
}

func importProgress(ctx context.Context, tx *database.Tx, progress []ProgressBackup) error {
	query := "INSERT INTO reading_progress (learner_id, book_id, current_page, quiz_answers, updated_at) VALUES (?, ?, ?, ?, ?)"
	for _, p := range progress {
		answers := p.QuizAnswers
		if answers == "" {
			answers = "{}"
		}
		if _, err := tx.ExecContext(ctx, query, p.LearnerID, p.BookID, p.CurrentPage, answers, p.UpdatedAt); err != nil {
			return fmt.Errorf("progress for learner %d book %s: %w", p.LearnerID, p.BookID, err)
		}
	}
	return nil
}

func importBadWords(ctx context.Context, tx *database.Tx, words []string) error {
	if len(words) == 0 {
		return nil
	}
	query := tx.Dialect().UpsertQuery("bad_words", []string{"word"}, []string{"word"}, []string{"word"})
	for _, word := range words {
		if _, err := tx.ExecContext(ctx, query, word); err != nil {
			return fmt.Errorf("word %q: %w", word, err)
		}
	}
	return nil
}

// resetSequences moves id generation past imported ids
func resetSequences(ctx context.Context, tx *database.Tx) error {
	for _, table := range []string{"parents", "learners", "quiz_questions", "reading_history"} {
		query := tx.Dialect().ResetIdentityQuery(table)
		if query == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to reset sequence for %s: %w", table, err)
		}
	}
	return nil
}
