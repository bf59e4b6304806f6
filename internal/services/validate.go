package services

import (
	"net/mail"
	"strings"
)

func validEmail(email string) bool {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return false
	}
	addr, err := mail.ParseAddress(trimmed)
	return err == nil && addr.Address == trimmed
}

func minLength(value string, min int) bool {
	return len(strings.TrimSpace(value)) >= min
}
