package handlers

import (
	"net/http"

	"youngscholars/internal/service"
)

// AuthHandler handles parent registration and login
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a parent account together with the children's profiles
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if !decodeJSON(w, r, &req, false) {
		return
	}

	session, err := h.authService.Register(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, "Error registering parent", err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

// Login exchanges an email and password for a bearer token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, "Error logging in", err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}
