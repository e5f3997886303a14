package handlers

import (
	"net/http"
	"strconv"

	"youngscholars/internal/service"
)

// ChildHandler serves a parent's children and their reading
type ChildHandler struct {
	learnerService *service.LearnerService
	readingService *service.ReadingService
}

// NewChildHandler creates a new child handler
func NewChildHandler(learnerService *service.LearnerService, readingService *service.ReadingService) *ChildHandler {
	return &ChildHandler{
		learnerService: learnerService,
		readingService: readingService,
	}
}

type completeRequest struct {
	Minutes int `json:"minutes"`
}

type progressRequest struct {
	CurrentPage int         `json:"currentPage"`
	QuizAnswers map[int]int `json:"quizAnswers"`
}

// childID parses the {id} path value, writing a 400 when it is not a number
func childID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, ErrInvalidChildID, "", nil)
		return 0, false
	}
	return id, true
}

// ListChildren returns the parent's children
func (h *ChildHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	learners, err := h.learnerService.ListLearners(r.Context(), GetParentIDFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, "Error listing children", err)
		return
	}
	respondJSON(w, http.StatusOK, learners)
}

// CreateChild adds a child to the parent's account
func (h *ChildHandler) CreateChild(w http.ResponseWriter, r *http.Request) {
	var req service.ChildInput
	if !decodeJSON(w, r, &req, false) {
		return
	}

	learner, err := h.learnerService.AddLearner(r.Context(), GetParentIDFromContext(r.Context()), req)
	if err != nil {
		respondWithServiceError(w, "Error creating child", err)
		return
	}
	respondJSON(w, http.StatusCreated, learner)
}

// GetChild returns one child's record
func (h *ChildHandler) GetChild(w http.ResponseWriter, r *http.Request) {
	id, ok := childID(w, r)
	if !ok {
		return
	}

	learner, err := h.learnerService.GetLearner(r.Context(), GetParentIDFromContext(r.Context()), id)
	if err != nil {
		respondWithServiceError(w, "Error getting child", err)
		return
	}
	respondJSON(w, http.StatusOK, learner)
}

// Report returns the settings view for a child
func (h *ChildHandler) Report(w http.ResponseWriter, r *http.Request) {
	id, ok := childID(w, r)
	if !ok {
		return
	}

	report, err := h.learnerService.Report(r.Context(), GetParentIDFromContext(r.Context()), id)
	if err != nil {
		respondWithServiceError(w, "Error building report", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// Badges returns the child's standing against every badge
func (h *ChildHandler) Badges(w http.ResponseWriter, r *http.Request) {
	id, ok := childID(w, r)
	if !ok {
		return
	}

	progress, err := h.learnerService.BadgeProgress(r.Context(), GetParentIDFromContext(r.Context()), id)
	if err != nil {
		respondWithServiceError(w, "Error getting badge progress", err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

// History returns completed books, newest first. ?limit= caps the list.
func (h *ChildHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := childID(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	history, err := h.learnerService.History(r.Context(), GetParentIDFromContext(r.Context()), id, limit)
	if err != nil {
		respondWithServiceError(w, "Error getting reading history", err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// GetProgress returns the saved page and quiz answers for a book
func (h *ChildHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := childID(w, r)
	if !ok {
		return
	}

	progress, err := h.readingService.GetProgress(r.Context(), GetParentIDFromContext(r.Context()), id, r.PathValue("bookId"))
	if err != nil {
		respondWithServiceError(w, "Error getting reading progress", err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

// SaveProgress stores the page the child is on
func (h *ChildHandler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := childID(w, r)
	if !ok {
		return
	}

	var req progressRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	progress, err := h.readingService.SaveProgress(r.Context(), GetParentIDFromContext(r.Context()), id, r.PathValue("bookId"), req.CurrentPage, req.QuizAnswers)
	if err != nil {
		respondWithServiceError(w, "Error saving reading progress", err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

// RestartBook clears the saved position in a book
func (h *ChildHandler) RestartBook(w http.ResponseWriter, r *http.Request) {
	id, ok := childID(w, r)
	if !ok {
		return
	}

	if err := h.readingService.RestartBook(r.Context(), GetParentIDFromContext(r.Context()), id, r.PathValue("bookId")); err != nil {
		respondWithServiceError(w, "Error restarting book", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CompleteBook records a finished book and reports new badges and level changes
func (h *ChildHandler) CompleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := childID(w, r)
	if !ok {
		return
	}

	var req completeRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	result, err := h.readingService.CompleteBook(r.Context(), GetParentIDFromContext(r.Context()), id, r.PathValue("bookId"), req.Minutes)
	if err != nil {
		respondWithServiceError(w, "Error completing book", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
