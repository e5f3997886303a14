package handlers

const (
	ErrInvalidJSON         = "Invalid JSON body"
	ErrUnauthorized        = "Unauthorized"
	ErrInternalServerError = "Internal server error"
	ErrTooManyRequests     = "Too many requests, please try again later"
	ErrInvalidChildID      = "Invalid child ID"

	maxBodyBytes = 1 << 20
)
