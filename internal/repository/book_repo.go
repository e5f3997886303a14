package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"youngscholars/internal/database"
	"youngscholars/internal/models"
)

const bookColumns = `id, title, author, cover_image, description, category, age_min, age_max,
	difficulty, reading_level, tags, rating, created_at`

// BookRepository handles the book catalog, book pages and quiz questions
type BookRepository struct {
	db *database.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *database.DB) *BookRepository {
	return &BookRepository{db: db}
}

// ListBooks returns catalog books matching the filter, ordered by title.
// An age filter matches the exact "min-max" range.
func (r *BookRepository) ListBooks(ctx context.Context, filter models.BookFilter) ([]models.Book, error) {
	var conditions []string
	var args []any

	if filter.Age != "" && filter.Age != "all" {
		ageMin, ageMax, err := models.ParseAgeRange(filter.Age)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, "age_min = ?", "age_max = ?")
		args = append(args, ageMin, ageMax)
	}
	if filter.ReadingLevel != "" && filter.ReadingLevel != "all" {
		conditions = append(conditions, "reading_level = ?")
		args = append(args, filter.ReadingLevel)
	}

	query := "SELECT " + bookColumns + " FROM books"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY title ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *book)
	}
	return books, rows.Err()
}

// GetBookByID retrieves a book with its pages
func (r *BookRepository) GetBookByID(ctx context.Context, id string) (*models.Book, error) {
	book, err := scanBook(r.db.QueryRowContext(ctx, "SELECT "+bookColumns+" FROM books WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	pages, err := r.GetPages(ctx, id)
	if err != nil {
		return nil, err
	}
	book.Pages = pages
	return book, nil
}

// GetPages returns a book's pages in reading order
func (r *BookRepository) GetPages(ctx context.Context, bookID string) ([]models.BookPage, error) {
	query := `
		SELECT book_id, page_number, body, image, audio_url
		FROM book_pages
		WHERE book_id = ?
		ORDER BY page_number ASC
	`
	rows, err := r.db.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	pages := []models.BookPage{}
	for rows.Next() {
		var p models.BookPage
		if err := rows.Scan(&p.BookID, &p.PageNumber, &p.Text, &p.Image, &p.AudioURL); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// GetQuizQuestions returns a book's quiz in question order
func (r *BookRepository) GetQuizQuestions(ctx context.Context, bookID string) ([]models.QuizQuestion, error) {
	query := `
		SELECT id, book_id, position, question, choices, answer_index
		FROM quiz_questions
		WHERE book_id = ?
		ORDER BY position ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz: %w", err)
	}
	defer rows.Close()

	questions := []models.QuizQuestion{}
	for rows.Next() {
		var q models.QuizQuestion
		var choices string
		if err := rows.Scan(&q.ID, &q.BookID, &q.Position, &q.Question, &choices, &q.AnswerIndex); err != nil {
			return nil, fmt.Errorf("failed to scan quiz question: %w", err)
		}
		if err := json.Unmarshal([]byte(choices), &q.Choices); err != nil {
			return nil, fmt.Errorf("failed to decode choices for question %d: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// SaveBook inserts or replaces a book together with its pages and quiz
func (r *BookRepository) SaveBook(ctx context.Context, book *models.Book, questions []models.QuizQuestion) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		query := tx.Dialect().UpsertQuery("books",
			[]string{"id", "title", "author", "cover_image", "description", "category", "age_min", "age_max", "difficulty", "reading_level", "tags", "rating"},
			[]string{"id"},
			[]string{"title", "author", "cover_image", "description", "category", "age_min", "age_max", "difficulty", "reading_level", "tags", "rating"},
		)
		if _, err := tx.ExecContext(ctx, query,
			book.ID,
			book.Title,
			book.Author,
			book.CoverImage,
			book.Description,
			book.Category,
			book.AgeMin,
			book.AgeMax,
			book.Difficulty,
			string(book.ReadingLevel),
			strings.Join(book.Tags, ","),
			book.Rating,
		); err != nil {
			return fmt.Errorf("failed to save book %s: %w", book.ID, err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM book_pages WHERE book_id = ?", book.ID); err != nil {
			return fmt.Errorf("failed to clear pages: %w", err)
		}
		for i, page := range book.Pages {
			number := page.PageNumber
			if number == 0 {
				number = i + 1
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO book_pages (book_id, page_number, body, image, audio_url) VALUES (?, ?, ?, ?, ?)",
				book.ID, number, page.Text, page.Image, page.AudioURL,
			); err != nil {
				return fmt.Errorf("failed to save page %d: %w", number, err)
			}
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM quiz_questions WHERE book_id = ?", book.ID); err != nil {
			return fmt.Errorf("failed to clear quiz: %w", err)
		}
		for i, q := range questions {
			choices, err := json.Marshal(q.Choices)
			if err != nil {
				return fmt.Errorf("failed to encode choices: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO quiz_questions (book_id, position, question, choices, answer_index) VALUES (?, ?, ?, ?, ?)",
				book.ID, i+1, q.Question, string(choices), q.AnswerIndex,
			); err != nil {
				return fmt.Errorf("failed to save quiz question: %w", err)
			}
		}
		return nil
	})
}

// CountBooks returns the number of books in the catalog
func (r *BookRepository) CountBooks(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM books").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return count, nil
}

func scanBook(row rowScanner) (*models.Book, error) {
	book := &models.Book{}
	var level, tags string
	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.CoverImage,
		&book.Description,
		&book.Category,
		&book.AgeMin,
		&book.AgeMax,
		&book.Difficulty,
		&level,
		&tags,
		&book.Rating,
		&book.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	book.ReadingLevel = models.ReadingLevel(level)
	book.Tags = splitTags(tags)
	return book, nil
}

func splitTags(s string) []string {
	tags := []string{}
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
