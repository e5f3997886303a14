package handlers

import (
	"net/http"
	"strconv"

	"youngscholars/internal/service"
)

// LeaderboardHandler serves reader rankings
type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(leaderboardService *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// Leaderboard returns the top readers for ?period=week|all
func (h *LeaderboardHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	period, err := service.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.leaderboardService.Top(r.Context(), period, limit)
	if err != nil {
		respondWithServiceError(w, "Error getting leaderboard", err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
