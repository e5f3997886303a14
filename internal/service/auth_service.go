package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"youngscholars/internal/models"
	"youngscholars/internal/repository"
	"youngscholars/internal/security"
	"youngscholars/internal/validation"
)

// maxChildrenPerSignup bounds how many children one registration may create
const maxChildrenPerSignup = 10

// RegisterInput is a parent sign-up with the children to create alongside
type RegisterInput struct {
	Email     string       `json:"email"`
	Password  string       `json:"password"`
	FirstName string       `json:"firstName"`
	LastName  string       `json:"lastName"`
	Children  []ChildInput `json:"children"`
}

// Session is the result of a successful login or registration
type Session struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	Parent    *models.Parent   `json:"parent"`
	Children  []models.Learner `json:"children,omitempty"`
}

// AuthService handles parent registration and login
type AuthService struct {
	parentRepo *repository.ParentRepository
	learners   *LearnerService
	tokens     *security.TokenIssuer
	email      *EmailService
}

// NewAuthService creates a new auth service
func NewAuthService(parentRepo *repository.ParentRepository, learners *LearnerService, tokens *security.TokenIssuer, email *EmailService) *AuthService {
	return &AuthService{
		parentRepo: parentRepo,
		learners:   learners,
		tokens:     tokens,
		email:      email,
	}
}

// Register creates a parent account and its children in one step
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)

	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(firstName); err != nil {
		return nil, err
	}
	if len(in.Children) == 0 {
		return nil, ErrNoChildren
	}
	if len(in.Children) > maxChildrenPerSignup {
		return nil, validation.ValidationError{Field: "children", Message: fmt.Sprintf("at most %d children per sign-up", maxChildrenPerSignup)}
	}

	exists, err := s.parentRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	learners := make([]*models.Learner, 0, len(in.Children))
	for _, child := range in.Children {
		learner, err := s.learners.prepareLearner(ctx, child)
		if err != nil {
			return nil, err
		}
		learners = append(learners, learner)
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	parent := &models.Parent{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
	}
	if err := s.parentRepo.CreateFamily(ctx, parent, learners); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(parent.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	children := make([]models.Learner, 0, len(learners))
	names := make([]string, 0, len(learners))
	for _, l := range learners {
		children = append(children, *l)
		names = append(names, l.FirstName)
	}

	if s.email != nil {
		if err := s.email.SendWelcomeEmail(ctx, parent.Email, parent.FirstName, names); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", parent.Email, err)
		}
	}

	return &Session{Token: token, ExpiresAt: expiresAt, Parent: parent, Children: children}, nil
}

// Login authenticates a parent by email and password
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	parent, err := s.parentRepo.GetParentByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if parent == nil || !security.CheckPassword(password, parent.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(parent.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &Session{Token: token, ExpiresAt: expiresAt, Parent: parent}, nil
}

// Authenticate resolves a bearer token to a parent id
func (s *AuthService) Authenticate(token string) (int64, error) {
	return s.tokens.Verify(token)
}
