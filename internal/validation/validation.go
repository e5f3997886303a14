package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const (
	MinLearnerAge = 2
	MaxLearnerAge = 14
	maxNameLength = 50
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks a parent's name
func ValidateName(name string) error {
	return validateName("name", name, 2)
}

// ValidateLearnerName checks a child's first name. Letters, spaces, hyphens
// and apostrophes only.
func ValidateLearnerName(name string) error {
	if err := validateName("firstName", name, 1); err != nil {
		return err
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && r != ' ' && r != '-' && r != '\'' {
			return ValidationError{Field: "firstName", Message: "name may only contain letters, spaces, hyphens and apostrophes"}
		}
	}
	return nil
}

// ValidateAge checks a child's age is within the supported range
func ValidateAge(age int) error {
	if age < MinLearnerAge || age > MaxLearnerAge {
		return ValidationError{
			Field:   "age",
			Message: fmt.Sprintf("age must be between %d and %d", MinLearnerAge, MaxLearnerAge),
		}
	}
	return nil
}

func validateName(field, name string, minLength int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: field, Message: field + " is required"}
	}
	if len([]rune(name)) < minLength {
		return ValidationError{Field: field, Message: fmt.Sprintf("%s must be at least %d characters", field, minLength)}
	}
	if len([]rune(name)) > maxNameLength {
		return ValidationError{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", field, maxNameLength)}
	}
	return nil
}
