package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/signal-now/signal-agent/internal/agent"
	"github.com/signal-now/signal-agent/internal/github"
)

// ErrEmailAlreadyExists rejects a registration against a taken email.
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials covers every login failure mode with one message,
// so responses do not reveal whether the email exists.
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates the authenticated user's row is gone.
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch rejects a password change whose current-password
// proof is wrong.
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation carries a field-level request validation failure.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus maps service, activity-source, and pipeline errors onto
// response status codes. Matches through wrapping, so handlers can annotate
// errors freely.
func HTTPStatus(err error) int {
	var (
		emailTaken    *ErrEmailAlreadyExists
		badCreds      *ErrInvalidCredentials
		userGone      *ErrUserNotFound
		wrongPassword *ErrPasswordMismatch
		invalid       *ErrValidation
		notFound      *github.NotFoundError
		rateLimited   *github.RateLimitError
		missingConfig *agent.MissingConfigurationError
		badOutput     *agent.MalformedOutputError
	)

	switch {
	case errors.As(err, &emailTaken):
		return http.StatusConflict
	case errors.As(err, &badCreds), errors.As(err, &wrongPassword):
		return http.StatusUnauthorized
	case errors.As(err, &userGone), errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &invalid), errors.As(err, &missingConfig):
		return http.StatusBadRequest
	case errors.As(err, &rateLimited):
		return http.StatusTooManyRequests
	case errors.As(err, &badOutput):
		// The upstream model spoke; we just could not use what it said.
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
