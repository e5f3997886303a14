package service

import (
	"context"

	"youngscholars/internal/models"
	"youngscholars/internal/repository"
	"youngscholars/internal/validation"
)

// QuestionResult is the outcome of one graded quiz question
type QuestionResult struct {
	QuestionID  int64 `json:"questionId"`
	Selected    int   `json:"selected"`
	AnswerIndex int   `json:"answerIndex"`
	Correct     bool  `json:"correct"`
}

// QuizResult is a graded quiz. Unanswered questions count as wrong.
type QuizResult struct {
	Total   int              `json:"total"`
	Correct int              `json:"correct"`
	Results []QuestionResult `json:"results"`
}

// BookService serves the book catalog and quizzes
type BookService struct {
	books *repository.BookRepository
}

// NewBookService creates a new book service
func NewBookService(books *repository.BookRepository) *BookService {
	return &BookService{books: books}
}

// ListBooks returns catalog books matching the filter
func (s *BookService) ListBooks(ctx context.Context, filter models.BookFilter) ([]models.Book, error) {
	if filter.Age != "" && filter.Age != "all" {
		if _, _, err := models.ParseAgeRange(filter.Age); err != nil {
			return nil, validation.ValidationError{Field: "age", Message: "age must look like 3-4 or be all"}
		}
	}

	books, err := s.books.ListBooks(ctx, filter)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []models.Book{}
	}
	return books, nil
}

// GetBook returns a book with its pages
func (s *BookService) GetBook(ctx context.Context, id string) (*models.Book, error) {
	book, err := s.books.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	return book, nil
}

// GetQuiz returns the questions asked after a book. A book without a quiz
// yields an empty list.
func (s *BookService) GetQuiz(ctx context.Context, bookID string) ([]models.QuizQuestion, error) {
	if _, err := s.GetBook(ctx, bookID); err != nil {
		return nil, err
	}
	return s.books.GetQuizQuestions(ctx, bookID)
}

// GradeQuiz scores answers keyed by question index
func (s *BookService) GradeQuiz(ctx context.Context, bookID string, answers map[int]int) (*QuizResult, error) {
	questions, err := s.GetQuiz(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return gradeQuiz(questions, answers), nil
}

func gradeQuiz(questions []models.QuizQuestion, answers map[int]int) *QuizResult {
	result := &QuizResult{Total: len(questions), Results: make([]QuestionResult, 0, len(questions))}

	for i, q := range questions {
		selected, ok := answers[i]
		if !ok {
			selected = -1
		}
		correct := ok && selected == q.AnswerIndex
		if correct {
			result.Correct++
		}
		result.Results = append(result.Results, QuestionResult{
			QuestionID:  q.ID,
			Selected:    selected,
			AnswerIndex: q.AnswerIndex,
			Correct:     correct,
		})
	}
	return result
}
