package service

import (
	"errors"

	"youngscholars/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrLearnerNotFound    = errors.New("learner not found")
	ErrBookNotFound       = errors.New("book not found")
	ErrInappropriateName  = errors.New("name contains inappropriate words")
	ErrNoChildren         = errors.New("at least one child is required")

	// ErrConcurrentUpdate means the learner changed while a completion was being saved
	ErrConcurrentUpdate = repository.ErrConcurrentUpdate
)
