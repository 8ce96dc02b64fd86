package model

import (
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Field length bounds enforced before a request is attempted.
const (
	AuthorMinLen      = 2
	AuthorMaxLen      = 50
	DescriptionMinLen = 2
	DescriptionMaxLen = 500
)

// emailPattern is a permissive shape check; the server remains the
// authority on deliverability.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Todo is a task record owned by the server. The id is assigned on
// creation and immutable; author and email are fixed at submission time.
// UpdatedByAdmin is set server-side whenever an administrator edits the
// record and is read-only from the client's perspective.
type Todo struct {
	ID             int    `json:"id"`
	Description    string `json:"description"`
	Author         string `json:"author"`
	Email          string `json:"email"`
	Completed      bool   `json:"completed"`
	UpdatedByAdmin bool   `json:"updatedByAdmin"`
}

// CreateTodoInput is the payload for submitting a new todo.
type CreateTodoInput struct {
	Author      string `json:"author"`
	Email       string `json:"email"`
	Description string `json:"description"`
}

// TodoPatch is a partial update applied by an administrator. Nil fields
// are left untouched by the server.
type TodoPatch struct {
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// ValidationError reports a client-side form constraint violation.
// It never reaches the network; submission is blocked instead.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err (or any error in its chain) is a
// ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Validate checks the creation payload against the client-side constraints.
func (in CreateTodoInput) Validate() error {
	if err := validateAuthor(in.Author); err != nil {
		return err
	}
	if !emailPattern.MatchString(in.Email) {
		return &ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	return validateDescription(in.Description)
}

// Validate checks the patch against the client-side constraints.
// Nil fields are not sent, so they are not validated.
func (p TodoPatch) Validate() error {
	if p.Description != nil {
		return validateDescription(*p.Description)
	}
	return nil
}

func validateAuthor(author string) error {
	n := utf8.RuneCountInString(author)
	if n < AuthorMinLen {
		return &ValidationError{
			Field:   "author",
			Message: fmt.Sprintf("must be at least %d characters", AuthorMinLen),
		}
	}
	if n > AuthorMaxLen {
		return &ValidationError{
			Field:   "author",
			Message: fmt.Sprintf("must be at most %d characters", AuthorMaxLen),
		}
	}
	return nil
}

func validateDescription(description string) error {
	n := utf8.RuneCountInString(description)
	if n < DescriptionMinLen {
		return &ValidationError{
			Field:   "description",
			Message: fmt.Sprintf("must be at least %d characters", DescriptionMinLen),
		}
	}
	if n > DescriptionMaxLen {
		return &ValidationError{
			Field:   "description",
			Message: fmt.Sprintf("must be at most %d characters", DescriptionMaxLen),
		}
	}
	return nil
}
