package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"youngscholars/internal/achievement"
	"youngscholars/internal/cache"
	"youngscholars/internal/credentials"
	"youngscholars/internal/models"
	"youngscholars/internal/progression"
	"youngscholars/internal/repository"
	"youngscholars/internal/validation"
)

const (
	// MaxHistoryEntries caps reading history listings
	MaxHistoryEntries = 50
	reportHistorySize = 5
)

// BadWordChecker reports whether text contains a blocked word
type BadWordChecker interface {
	ContainsBadWord(ctx context.Context, text string) (bool, error)
}

// ChildInput is the profile submitted when adding a child
type ChildInput struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	NickName    string `json:"nickName"`
	Age         int    `json:"age"`
	AvatarColor string `json:"avatarColor"`
}

// Report is the parent's settings view of one child
type Report struct {
	Learner             *models.Learner              `json:"child"`
	ReadingLevelLabel   string                       `json:"readingLevelLabel"`
	NextLevelLabel      string                       `json:"nextLevelLabel"`
	BooksToNextLevel    int                          `json:"booksToNextLevel"`
	BooksCompleted      int                          `json:"booksCompleted"`
	BooksThisWeek       int                          `json:"booksThisWeek"`
	TotalReadingMinutes int                          `json:"totalReadingMinutes"`
	JoinedDate          time.Time                    `json:"joinedDate"`
	LatestBadge         *models.Badge                `json:"latestBadge"`
	Badges              []achievement.BadgeProgress  `json:"badges"`
	RecentHistory       []models.ReadingHistoryEntry `json:"recentHistory"`
}

// LearnerService manages children's reading profiles
type LearnerService struct {
	learners *repository.LearnerRepository
	history  *repository.HistoryRepository
	badWords BadWordChecker
	ladder   progression.Ladder
	catalog  achievement.Catalog
	now      func() time.Time
}

// NewLearnerService creates a new learner service
func NewLearnerService(learners *repository.LearnerRepository, history *repository.HistoryRepository, badWords BadWordChecker, ladder progression.Ladder, catalog achievement.Catalog) *LearnerService {
	return &LearnerService{
		learners: learners,
		history:  history,
		badWords: badWords,
		ladder:   ladder,
		catalog:  catalog,
		now:      time.Now,
	}
}

// prepareLearner validates a child profile and fills in defaults. New
// learners start at the bottom of the ladder with nothing read.
func (s *LearnerService) prepareLearner(ctx context.Context, in ChildInput) (*models.Learner, error) {
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	nickName := strings.TrimSpace(in.NickName)

	if err := validation.ValidateLearnerName(firstName); err != nil {
		return nil, err
	}
	if err := validation.ValidateAge(in.Age); err != nil {
		return nil, err
	}

	for _, name := range []string{firstName, lastName, nickName} {
		if name == "" {
			continue
		}
		bad, err := s.badWords.ContainsBadWord(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to check name: %w", err)
		}
		if bad {
			return nil, ErrInappropriateName
		}
	}

	if nickName == "" {
		generated, err := credentials.GenerateNickname()
		if err != nil {
			return nil, fmt.Errorf("failed to generate nickname: %w", err)
		}
		nickName = generated
	}

	color := in.AvatarColor
	if !credentials.IsAvatarColor(color) {
		generated, err := credentials.RandomAvatarColor()
		if err != nil {
			return nil, fmt.Errorf("failed to pick avatar color: %w", err)
		}
		color = generated
	}

	return &models.Learner{
		FirstName:    firstName,
		LastName:     lastName,
		NickName:     nickName,
		Age:          in.Age,
		AvatarColor:  color,
		ReadingLevel: s.ladder.Lowest(),
		Badges:       []models.Badge{},
	}, nil
}

// AddLearner adds a child to an existing parent account
func (s *LearnerService) AddLearner(ctx context.Context, parentID int64, in ChildInput) (*models.Learner, error) {
	learner, err := s.prepareLearner(ctx, in)
	if err != nil {
		return nil, err
	}
	learner.ParentID = parentID

	if err := s.learners.CreateLearner(ctx, learner); err != nil {
		return nil, err
	}
	return learner, nil
}

// ListLearners returns a parent's children
func (s *LearnerService) ListLearners(ctx context.Context, parentID int64) ([]models.Learner, error) {
	learners, err := s.learners.GetParentLearners(ctx, parentID)
	if err != nil {
		return nil, err
	}
	for i := range learners {
		learners[i].ReadingLevel = s.ladder.Normalize(learners[i].ReadingLevel)
	}
	return learners, nil
}

// GetLearner returns a child owned by the parent. Children of other parents
// are reported as not found.
func (s *LearnerService) GetLearner(ctx context.Context, parentID, learnerID int64) (*models.Learner, error) {
	learner, err := s.learners.GetLearnerByID(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	if learner == nil || learner.ParentID != parentID {
		return nil, ErrLearnerNotFound
	}
	learner.ReadingLevel = s.ladder.Normalize(learner.ReadingLevel)
	return learner, nil
}

// BadgeProgress lists every catalog badge with the child's progress towards it
func (s *LearnerService) BadgeProgress(ctx context.Context, parentID, learnerID int64) ([]achievement.BadgeProgress, error) {
	learner, err := s.GetLearner(ctx, parentID, learnerID)
	if err != nil {
		return nil, err
	}
	return achievement.Progress(s.catalog, learner), nil
}

// History returns the child's completed books, newest first
func (s *LearnerService) History(ctx context.Context, parentID, learnerID int64, limit int) ([]models.ReadingHistoryEntry, error) {
	if _, err := s.GetLearner(ctx, parentID, learnerID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxHistoryEntries {
		limit = MaxHistoryEntries
	}
	return s.history.GetHistory(ctx, learnerID, limit)
}

// Report builds the settings view for a child
func (s *LearnerService) Report(ctx context.Context, parentID, learnerID int64) (*Report, error) {
	learner, err := s.GetLearner(ctx, parentID, learnerID)
	if err != nil {
		return nil, err
	}

	thisWeek, err := s.history.CountCompletedSince(ctx, learnerID, cache.WeekStart(s.now()))
	if err != nil {
		return nil, err
	}

	recent, err := s.history.GetHistory(ctx, learnerID, reportHistorySize)
	if err != nil {
		return nil, err
	}

	return &Report{
		Learner:             learner,
		ReadingLevelLabel:   s.ladder.Label(learner.ReadingLevel),
		NextLevelLabel:      s.ladder.NextLabel(learner.ReadingLevel),
		BooksToNextLevel:    s.ladder.BooksToNextLevel(learner.ReadingLevel, learner.BooksRead),
		BooksCompleted:      learner.BooksRead,
		BooksThisWeek:       thisWeek,
		TotalReadingMinutes: learner.TotalReadingMinutes,
		JoinedDate:          learner.CreatedAt,
		LatestBadge:         learner.LatestBadge,
		Badges:              achievement.Progress(s.catalog, learner),
		RecentHistory:       recent,
	}, nil
}
