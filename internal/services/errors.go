package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrForbidden is returned when the caller identity does not match the
	// record's owner.
	ErrForbidden = errors.New("access denied")
	// ErrInvalidCredentials is returned on any login failure; it never says
	// whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNoAttachment is returned when a policy exists but carries no
	// attachment.
	ErrNoAttachment = errors.New("no attachment found")
)

// FieldError is a single violated field constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated constraint for a request, not
// just the first one found.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		messages[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(messages, "; ")
}

// violations accumulates field errors during input validation.
type violations struct {
	fields []FieldError
}

func (v *violations) add(field, message string) {
	v.fields = append(v.fields, FieldError{Field: field, Message: message})
}

// err returns nil when nothing was violated, otherwise the full list.
func (v *violations) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}
