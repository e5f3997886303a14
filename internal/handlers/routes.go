package handlers

import (
	"context"
	"log"
	"net/http"
	"time"
)

// Pinger checks a backing store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CachePinger checks the ranking cache is reachable
type CachePinger interface {
	Ping(ctx context.Context) error
}

// Handlers groups everything the router needs. Cache may be nil.
type Handlers struct {
	Middleware  *Middleware
	Auth        *AuthHandler
	Children    *ChildHandler
	Catalog     *CatalogHandler
	Leaderboard *LeaderboardHandler
	DB          Pinger
	Cache       CachePinger
}

// NewRouter registers every API route and wraps the mux with request ids
// and logging
func NewRouter(h Handlers) http.Handler {
	mux := http.NewServeMux()
	m := h.Middleware

	mux.HandleFunc("GET /healthz", h.health)

	mux.HandleFunc("POST /api/register", m.RateLimit(h.Auth.Register))
	mux.HandleFunc("POST /api/login", m.RateLimit(h.Auth.Login))

	mux.HandleFunc("GET /api/children", m.RequireParent(h.Children.ListChildren))
	mux.HandleFunc("POST /api/children", m.RequireParent(h.Children.CreateChild))
	mux.HandleFunc("GET /api/children/{id}", m.RequireParent(h.Children.GetChild))
	mux.HandleFunc("GET /api/children/{id}/report", m.RequireParent(h.Children.Report))
	mux.HandleFunc("GET /api/children/{id}/badges", m.RequireParent(h.Children.Badges))
	mux.HandleFunc("GET /api/children/{id}/history", m.RequireParent(h.Children.History))
	mux.HandleFunc("GET /api/children/{id}/books/{bookId}/progress", m.RequireParent(h.Children.GetProgress))
	mux.HandleFunc("PUT /api/children/{id}/books/{bookId}/progress", m.RequireParent(h.Children.SaveProgress))
	mux.HandleFunc("DELETE /api/children/{id}/books/{bookId}/progress", m.RequireParent(h.Children.RestartBook))
	mux.HandleFunc("POST /api/children/{id}/books/{bookId}/complete", m.RequireParent(h.Children.CompleteBook))

	mux.HandleFunc("GET /api/books", h.Catalog.ListBooks)
	mux.HandleFunc("GET /api/books/{id}", h.Catalog.GetBook)
	mux.HandleFunc("GET /api/quiz/{bookId}", h.Catalog.GetQuiz)
	mux.HandleFunc("POST /api/quiz/{bookId}/grade", h.Catalog.GradeQuiz)
	mux.HandleFunc("GET /api/badges", h.Catalog.ListBadges)

	mux.HandleFunc("GET /api/leaderboard", h.Leaderboard.Leaderboard)

	return RequestID(Logging(mux))
}

func (h Handlers) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.DB.PingContext(ctx); err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "Database unavailable", "Health check failed", err)
		return
	}

	// Leaderboards fall back to the database, so a cache outage only degrades
	status := map[string]string{"status": "ok"}
	if h.Cache != nil {
		status["cache"] = "ok"
		if err := h.Cache.Ping(ctx); err != nil {
			log.Printf("Cache health check failed: %v", err)
			status["cache"] = "unavailable"
		}
	}
	respondJSON(w, http.StatusOK, status)
}
