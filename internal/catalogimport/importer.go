// Package catalogimport loads books, pages and quiz questions from a
// spreadsheet into the catalog.
//
// An .xlsx workbook carries three sheets. A .csv import reads the books file
// and picks up pages.csv and quiz.csv from the same directory when present.
// The first row of every sheet is a header; columns are matched by name.
package catalogimport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"youngscholars/internal/models"
)

// BookStore saves a book with its pages and quiz
type BookStore interface {
	SaveBook(ctx context.Context, book *models.Book, questions []models.QuizQuestion) error
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath   string
	BooksSheet string
	PagesSheet string
	QuizSheet  string
	DryRun     bool
}

// DefaultImportConfig returns the default sheet names
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		BooksSheet: "Books",
		PagesSheet: "Pages",
		QuizSheet:  "Quiz",
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Saved          int
	Skipped        int
	Errors         []string
}

// sheetSource returns the rows of a named sheet, or nil when it does not exist
type sheetSource interface {
	Rows(sheet string) ([][]string, error)
	Close() error
}

// Import reads the spreadsheet and saves every valid book
func Import(ctx context.Context, store BookStore, config ImportConfig) (*ImportResult, error) {
	src, err := openSource(config)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	bookRows, err := src.Rows(config.BooksSheet)
	if err != nil {
		return nil, err
	}
	if bookRows == nil {
		return nil, fmt.Errorf("sheet %q not found", config.BooksSheet)
	}
	pageRows, err := src.Rows(config.PagesSheet)
	if err != nil {
		return nil, err
	}
	quizRows, err := src.Rows(config.QuizSheet)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}

	books, order := parseBooks(bookRows, result)
	attachPages(books, pageRows, result)
	questions := parseQuiz(books, quizRows, result)

	for _, id := range order {
		book := books[id]
		if len(book.Pages) == 0 {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Book %s: no pages", id))
			continue
		}
		if config.DryRun {
			result.Saved++
			continue
		}
		if err := store.SaveBook(ctx, book, questions[id]); err != nil {
			return result, fmt.Errorf("failed to save book %s: %w", id, err)
		}
		result.Saved++
	}

	log.Printf("Catalog import: %d processed, %d saved, %d skipped, %d errors",
		result.TotalProcessed, result.Saved, result.Skipped, len(result.Errors))
	return result, nil
}

func openSource(config ImportConfig) (sheetSource, error) {
	path := config.FilePath
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		return &csvSource{booksPath: path, booksSheet: config.BooksSheet}, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	return &excelSource{file: f}, nil
}

type excelSource struct {
	file *excelize.File
}

func (s *excelSource) Rows(sheet string) ([][]string, error) {
	if idx, err := s.file.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := s.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows of %s: %w", sheet, err)
	}
	return rows, nil
}

func (s *excelSource) Close() error {
	return s.file.Close()
}

// csvSource maps the books sheet to the given file and every other sheet to
// a lower-cased sibling file, e.g. Pages -> pages.csv
type csvSource struct {
	booksPath  string
	booksSheet string
}

func (s *csvSource) Rows(sheet string) ([][]string, error) {
	path := s.booksPath
	if sheet != s.booksSheet {
		path = filepath.Join(filepath.Dir(s.booksPath), strings.ToLower(sheet)+".csv")
	}

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV %s: %w", path, err)
		}
		rows = append(rows, row)
	}
	if rows == nil {
		rows = [][]string{}
	}
	return rows, nil
}

func (s *csvSource) Close() error { return nil }

// header maps lower-cased column names to their index
type header map[string]int

func newHeader(row []string) header {
	h := make(header, len(row))
	for i, name := range row {
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return h
}

func (h header) get(row []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseBooks(rows [][]string, result *ImportResult) (map[string]*models.Book, []string) {
	books := make(map[string]*models.Book)
	var order []string
	if len(rows) == 0 {
		return books, order
	}

	h := newHeader(rows[0])
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rowNum := i + 2
		result.TotalProcessed++

		book, err := parseBookRow(h, row)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Books row %d: %v", rowNum, err))
			continue
		}
		if _, dup := books[book.ID]; dup {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Books row %d: duplicate book id %s", rowNum, book.ID))
			continue
		}
		books[book.ID] = book
		order = append(order, book.ID)
	}
	return books, order
}

func parseBookRow(h header, row []string) (*models.Book, error) {
	book := &models.Book{
		ID:           h.get(row, "id"),
		Title:        h.get(row, "title"),
		Author:       h.get(row, "author"),
		CoverImage:   h.get(row, "cover_image"),
		Description:  h.get(row, "description"),
		Category:     h.get(row, "category"),
		Difficulty:   h.get(row, "difficulty"),
		ReadingLevel: models.ReadingLevel(h.get(row, "reading_level")),
	}
	if book.ID == "" {
		return nil, errors.New("id cannot be empty")
	}
	if book.Title == "" {
		return nil, errors.New("title cannot be empty")
	}
	if book.Difficulty == "" {
		book.Difficulty = "Easy"
	}

	if ages := h.get(row, "age_range"); ages != "" {
		ageMin, ageMax, err := models.ParseAgeRange(ages)
		if err != nil {
			return nil, err
		}
		book.AgeMin, book.AgeMax = ageMin, ageMax
	}

	if rating := h.get(row, "rating"); rating != "" {
		value, err := strconv.ParseFloat(rating, 64)
		if err != nil || value < 0 || value > 5 {
			return nil, fmt.Errorf("invalid rating %q", rating)
		}
		book.Rating = value
	}

	for _, tag := range strings.Split(h.get(row, "tags"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			book.Tags = append(book.Tags, tag)
		}
	}
	return book, nil
}

func attachPages(books map[string]*models.Book, rows [][]string, result *ImportResult) {
	if len(rows) == 0 {
		return
	}

	h := newHeader(rows[0])
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rowNum := i + 2

		book, ok := books[h.get(row, "book_id")]
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("Pages row %d: unknown book %q", rowNum, h.get(row, "book_id")))
			continue
		}

		number := len(book.Pages) + 1
		if raw := h.get(row, "page"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				result.Errors = append(result.Errors, fmt.Sprintf("Pages row %d: invalid page number %q", rowNum, raw))
				continue
			}
			number = n
		}

		book.Pages = append(book.Pages, models.BookPage{
			BookID:     book.ID,
			PageNumber: number,
			Text:       h.get(row, "text"),
			Image:      h.get(row, "image"),
			AudioURL:   h.get(row, "audio_url"),
		})
	}
}

// parseQuiz reads questions with choice columns choice_1, choice_2, ... and
// a 1-based answer column
func parseQuiz(books map[string]*models.Book, rows [][]string, result *ImportResult) map[string][]models.QuizQuestion {
	questions := make(map[string][]models.QuizQuestion)
	if len(rows) == 0 {
		return questions
	}

	h := newHeader(rows[0])
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rowNum := i + 2

		bookID := h.get(row, "book_id")
		if _, ok := books[bookID]; !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("Quiz row %d: unknown book %q", rowNum, bookID))
			continue
		}

		q := models.QuizQuestion{BookID: bookID, Question: h.get(row, "question")}
		for n := 1; ; n++ {
			col := fmt.Sprintf("choice_%d", n)
			if _, ok := h[col]; !ok {
				break
			}
			if choice := h.get(row, col); choice != "" {
				q.Choices = append(q.Choices, choice)
			}
		}

		answer, err := strconv.Atoi(h.get(row, "answer"))
		switch {
		case q.Question == "":
			err = errors.New("question cannot be empty")
		case len(q.Choices) < 2:
			err = errors.New("at least two choices are required")
		case err != nil || answer < 1 || answer > len(q.Choices):
			err = fmt.Errorf("answer must be between 1 and %d", len(q.Choices))
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Quiz row %d: %v", rowNum, err))
			continue
		}

		q.AnswerIndex = answer - 1
		q.Position = len(questions[bookID]) + 1
		questions[bookID] = append(questions[bookID], q)
	}
	return questions
}
