package models

import "time"

// ReadingHistoryEntry records one completed book
type ReadingHistoryEntry struct {
	ID          int64     `json:"id"`
	LearnerID   int64     `json:"childId"`
	BookID      string    `json:"bookId"`
	Title       string    `json:"title"`
	Pages       int       `json:"pages"`
	Minutes     int       `json:"minutes"`
	CompletedAt time.Time `json:"completedAt"`
}

// ReadingProgress is the saved position in a book that is still being read.
// QuizAnswers maps question index to the chosen answer index.
type ReadingProgress struct {
	LearnerID   int64       `json:"childId"`
	BookID      string      `json:"bookId"`
	CurrentPage int         `json:"currentPage"`
	QuizAnswers map[int]int `json:"quizAnswers"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
