package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"youngscholars/internal/achievement"
	"youngscholars/internal/models"
	"youngscholars/internal/progression"
	"youngscholars/internal/repository"
	"youngscholars/internal/validation"
)

const (
	maxSaveAttempts   = 3
	maxSessionMinutes = 24 * 60
)

// LearnerStore loads and persists learner progress
type LearnerStore interface {
	GetLearnerByID(ctx context.Context, id int64) (*models.Learner, error)
	SaveProgress(ctx context.Context, update repository.ProgressUpdate) error
}

// BookLookup finds catalog books
type BookLookup interface {
	GetBookByID(ctx context.Context, id string) (*models.Book, error)
}

// ProgressStore keeps the saved position of books in progress
type ProgressStore interface {
	GetReadingProgress(ctx context.Context, learnerID int64, bookID string) (*models.ReadingProgress, error)
	SaveReadingProgress(ctx context.Context, progress *models.ReadingProgress) error
	ClearReadingProgress(ctx context.Context, learnerID int64, bookID string) error
}

// LeaderboardRecorder is told about every completed book
type LeaderboardRecorder interface {
	RecordCompletion(ctx context.Context, learnerID int64, booksRead int, at time.Time) error
}

// CompletionResult describes what finishing a book changed
type CompletionResult struct {
	Learner       *models.Learner             `json:"child"`
	NewBadges     []models.Badge              `json:"newBadges"`
	PreviousLevel models.ReadingLevel         `json:"previousLevel"`
	LevelChanged  bool                        `json:"levelChanged"`
	LevelLabel    string                      `json:"levelLabel"`
	History       *models.ReadingHistoryEntry `json:"history"`
	Message       string                      `json:"message"`
	Notifications []Notification              `json:"notifications"`
}

// ReadingServiceDeps are the collaborators of a ReadingService.
// Leaderboard may be nil.
type ReadingServiceDeps struct {
	Learners    LearnerStore
	Books       BookLookup
	Progress    ProgressStore
	Leaderboard LeaderboardRecorder
	Notifier    Notifier
	Ladder      progression.Ladder
	Catalog     achievement.Catalog
}

// ReadingService records reading sessions and book completions
type ReadingService struct {
	learners    LearnerStore
	books       BookLookup
	progress    ProgressStore
	leaderboard LeaderboardRecorder
	notifier    Notifier
	ladder      progression.Ladder
	catalog     achievement.Catalog
	locks       *keyedMutex
}

// NewReadingService creates a new reading service
func NewReadingService(deps ReadingServiceDeps) *ReadingService {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &ReadingService{
		learners:    deps.Learners,
		books:       deps.Books,
		progress:    deps.Progress,
		leaderboard: deps.Leaderboard,
		notifier:    notifier,
		ladder:      deps.Ladder,
		catalog:     deps.Catalog,
		locks:       newKeyedMutex(),
	}
}

// CompleteBook records that a learner finished a book. The books-read count
// goes up by one, newly satisfied badges are awarded, the reading level may
// advance one rung, and everything is saved together with a history entry.
// Completions for the same learner are serialized.
func (s *ReadingService) CompleteBook(ctx context.Context, parentID, learnerID int64, bookID string, minutes int) (*CompletionResult, error) {
	if minutes < 0 || minutes > maxSessionMinutes {
		return nil, validation.ValidationError{Field: "minutes", Message: fmt.Sprintf("minutes must be between 0 and %d", maxSessionMinutes)}
	}

	book, err := s.books.GetBookByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}

	unlock := s.locks.Lock(learnerID)
	defer unlock()

	var result *CompletionResult
	for attempt := 1; ; attempt++ {
		result, err = s.completeOnce(ctx, parentID, learnerID, book, minutes)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrConcurrentUpdate) || attempt == maxSaveAttempts {
			return nil, err
		}
		log.Printf("Learner %d changed during completion, retrying (attempt %d)", learnerID, attempt)
	}

	learner := result.Learner
	if s.leaderboard != nil {
		if err := s.leaderboard.RecordCompletion(ctx, learner.ID, learner.BooksRead, result.History.CompletedAt); err != nil {
			log.Printf("Failed to update leaderboard for learner %d: %v", learner.ID, err)
		}
	}

	for _, n := range result.Notifications {
		if err := s.notifier.Notify(ctx, learner, n); err != nil {
			log.Printf("Failed to deliver %s notification for learner %d: %v", n.Kind, learner.ID, err)
		}
	}

	return result, nil
}

func (s *ReadingService) completeOnce(ctx context.Context, parentID, learnerID int64, book *models.Book, minutes int) (*CompletionResult, error) {
	learner, err := s.ownedLearner(ctx, parentID, learnerID)
	if err != nil {
		return nil, err
	}

	previousBooks := learner.BooksRead
	previousLevel := s.ladder.Normalize(learner.ReadingLevel)

	counted := *learner
	counted.BooksRead++
	counted.TotalReadingMinutes += minutes
	counted.ReadingLevel = previousLevel

	evaluated := achievement.Evaluate(s.catalog, &counted)
	updated := evaluated.Learner
	updated.ReadingLevel = s.ladder.Promote(updated.ReadingLevel, updated.BooksRead)

	history := &models.ReadingHistoryEntry{
		BookID:  book.ID,
		Title:   book.Title,
		Pages:   len(book.Pages),
		Minutes: minutes,
	}

	err = s.learners.SaveProgress(ctx, repository.ProgressUpdate{
		Learner:           updated,
		PreviousBooksRead: previousBooks,
		NewBadges:         evaluated.NewBadges,
		History:           history,
	})
	if err != nil {
		return nil, err
	}

	result := &CompletionResult{
		Learner:       updated,
		NewBadges:     evaluated.NewBadges,
		PreviousLevel: previousLevel,
		LevelChanged:  updated.ReadingLevel != previousLevel,
		LevelLabel:    s.ladder.Label(updated.ReadingLevel),
		History:       history,
		Message:       fmt.Sprintf("Great job, %s! You finished %q!", updated.FirstName, book.Title),
		Notifications: []Notification{},
	}
	for _, badge := range evaluated.NewBadges {
		result.Notifications = append(result.Notifications, BadgeNotification(badge))
	}
	if result.LevelChanged {
		result.Notifications = append(result.Notifications, LevelUpNotification(updated, result.LevelLabel))
	}
	return result, nil
}

// ownedLearner loads a learner and checks it belongs to the parent
func (s *ReadingService) ownedLearner(ctx context.Context, parentID, learnerID int64) (*models.Learner, error) {
	learner, err := s.learners.GetLearnerByID(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	if learner == nil || learner.ParentID != parentID {
		return nil, ErrLearnerNotFound
	}
	return learner, nil
}

// GetProgress returns the saved position in a book. A book never opened
// starts on page one with no answers.
func (s *ReadingService) GetProgress(ctx context.Context, parentID, learnerID int64, bookID string) (*models.ReadingProgress, error) {
	if _, err := s.ownedLearner(ctx, parentID, learnerID); err != nil {
		return nil, err
	}

	progress, err := s.progress.GetReadingProgress(ctx, learnerID, bookID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = &models.ReadingProgress{
			LearnerID:   learnerID,
			BookID:      bookID,
			CurrentPage: 1,
			QuizAnswers: map[int]int{},
		}
	}
	return progress, nil
}

// SaveProgress stores the page a learner is on and their quiz answers so far
func (s *ReadingService) SaveProgress(ctx context.Context, parentID, learnerID int64, bookID string, currentPage int, answers map[int]int) (*models.ReadingProgress, error) {
	if _, err := s.ownedLearner(ctx, parentID, learnerID); err != nil {
		return nil, err
	}

	book, err := s.books.GetBookByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}

	if currentPage < 1 || (len(book.Pages) > 0 && currentPage > len(book.Pages)) {
		return nil, validation.ValidationError{Field: "currentPage", Message: fmt.Sprintf("page must be between 1 and %d", len(book.Pages))}
	}
	for question, choice := range answers {
		if question < 0 || choice < 0 {
			return nil, validation.ValidationError{Field: "quizAnswers", Message: "answers must use non-negative indexes"}
		}
	}

	progress := &models.ReadingProgress{
		LearnerID:   learnerID,
		BookID:      bookID,
		CurrentPage: currentPage,
		QuizAnswers: answers,
	}
	if err := s.progress.SaveReadingProgress(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// RestartBook forgets the saved position in a book
func (s *ReadingService) RestartBook(ctx context.Context, parentID, learnerID int64, bookID string) error {
	if _, err := s.ownedLearner(ctx, parentID, learnerID); err != nil {
		return err
	}
	return s.progress.ClearReadingProgress(ctx, learnerID, bookID)
}
