package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"youngscholars/internal/service"
	"youngscholars/internal/validation"
)

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithError(recorder, 418, "Teapot", "", nil)

	if recorder.Code != 418 {
		t.Fatalf("expected status 418, got %d", recorder.Code)
	}

	body := strings.TrimSpace(recorder.Body.String())
	if body != `{"error":"Teapot"}` {
		t.Fatalf("unexpected body %q", body)
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON content type, got %q", ct)
	}
}

func TestRespondWithErrorLogsMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := log.Default()
	originalOutput := logger.Writer()
	logger.SetOutput(&buf)
	defer logger.SetOutput(originalOutput)

	recorder := httptest.NewRecorder()
	err := errors.New("boom")

	respondWithError(recorder, 500, "Internal server error", "", err)

	logOutput := buf.String()
	if !strings.Contains(logOutput, "Internal server error") {
		t.Fatalf("expected log to include user message, got %q", logOutput)
	}
	if !strings.Contains(logOutput, "boom") {
		t.Fatalf("expected log to include error, got %q", logOutput)
	}
}

func TestRespondWithServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: validation.ValidationError{Field: "age", Message: "too young"}, want: http.StatusBadRequest},
		{name: "wrapped validation", err: fmt.Errorf("register: %w", validation.ValidationError{Field: "email"}), want: http.StatusBadRequest},
		{name: "credentials", err: service.ErrInvalidCredentials, want: http.StatusUnauthorized},
		{name: "email taken", err: service.ErrEmailTaken, want: http.StatusConflict},
		{name: "learner", err: service.ErrLearnerNotFound, want: http.StatusNotFound},
		{name: "book", err: service.ErrBookNotFound, want: http.StatusNotFound},
		{name: "conflict", err: service.ErrConcurrentUpdate, want: http.StatusConflict},
		{name: "inappropriate", err: service.ErrInappropriateName, want: http.StatusBadRequest},
		{name: "unexpected", err: errors.New("disk on fire"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondWithServiceError(recorder, "test", tt.err)
			if recorder.Code != tt.want {
				t.Errorf("status = %d, want %d", recorder.Code, tt.want)
			}
		})
	}
}
