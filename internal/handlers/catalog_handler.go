package handlers

import (
	"net/http"

	"youngscholars/internal/achievement"
	"youngscholars/internal/models"
	"youngscholars/internal/service"
)

// CatalogHandler serves books, quizzes and the badge catalog
type CatalogHandler struct {
	bookService *service.BookService
	catalog     achievement.Catalog
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(bookService *service.BookService, catalog achievement.Catalog) *CatalogHandler {
	return &CatalogHandler{
		bookService: bookService,
		catalog:     catalog,
	}
}

type gradeRequest struct {
	Answers map[int]int `json:"answers"`
}

// ListBooks returns books filtered by ?age=3-4 and ?readingLevel=
func (h *CatalogHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := models.BookFilter{
		Age:          query.Get("age"),
		ReadingLevel: query.Get("readingLevel"),
	}

	books, err := h.bookService.ListBooks(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, "Error listing books", err)
		return
	}
	respondJSON(w, http.StatusOK, books)
}

// GetBook returns a book with its pages
func (h *CatalogHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.bookService.GetBook(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, "Error getting book", err)
		return
	}
	respondJSON(w, http.StatusOK, book)
}

// GetQuiz returns the questions for a book
func (h *CatalogHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	questions, err := h.bookService.GetQuiz(r.Context(), r.PathValue("bookId"))
	if err != nil {
		respondWithServiceError(w, "Error getting quiz", err)
		return
	}
	respondJSON(w, http.StatusOK, questions)
}

// GradeQuiz scores submitted answers
func (h *CatalogHandler) GradeQuiz(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	result, err := h.bookService.GradeQuiz(r.Context(), r.PathValue("bookId"), req.Answers)
	if err != nil {
		respondWithServiceError(w, "Error grading quiz", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ListBadges returns the badge catalog in threshold order
func (h *CatalogHandler) ListBadges(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.Badges)
}
