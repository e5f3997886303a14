package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Book is a catalog entry
type Book struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Author       string       `json:"author"`
	CoverImage   string       `json:"coverImage"`
	Description  string       `json:"description"`
	Category     string       `json:"category"`
	AgeMin       int          `json:"ageMin"`
	AgeMax       int          `json:"ageMax"`
	Difficulty   string       `json:"difficulty"`
	ReadingLevel ReadingLevel `json:"readingLevel"`
	Tags         []string     `json:"tags"`
	Rating       float64      `json:"rating"`
	Pages        []BookPage   `json:"pages,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// AgeRange formats the age bounds the way catalog filters expect, e.g. "3-4"
func (b *Book) AgeRange() string {
	return fmt.Sprintf("%d-%d", b.AgeMin, b.AgeMax)
}

// BookPage is one page of a book's content
type BookPage struct {
	BookID     string `json:"-"`
	PageNumber int    `json:"page"`
	Text       string `json:"text"`
	Image      string `json:"image,omitempty"`
	AudioURL   string `json:"audioUrl,omitempty"`
}

// QuizQuestion is a multiple choice question asked after a book
type QuizQuestion struct {
	ID          int64    `json:"id"`
	BookID      string   `json:"-"`
	Position    int      `json:"-"`
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answer_index"`
}

// BookFilter narrows a catalog listing. "all" or empty disables a filter.
type BookFilter struct {
	Age          string
	ReadingLevel string
}

// ParseAgeRange parses "min-max" into its bounds
func ParseAgeRange(s string) (ageMin, ageMax int, err error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid age range %q", s)
	}
	ageMin, err = strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid age range %q", s)
	}
	ageMax, err = strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid age range %q", s)
	}
	if ageMin < 0 || ageMax < ageMin {
		return 0, 0, fmt.Errorf("invalid age range %q", s)
	}
	return ageMin, ageMax, nil
}
