package services

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"pricegov/internal/models"
)

var phoneRegex = regexp.MustCompile(`^\+?1?\d{9,15}$`)

const phoneHint = "Phone number must be entered in the format: '+999999999'. Up to 15 digits allowed."

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func validPhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

// minLen checks trimmed length in runes.
func minLen(field, value string, n int) error {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < n {
		return models.Invalid("%s must be at least %d characters long.", field, n)
	}
	return nil
}

func maxLen(field, value string, n int) error {
	if utf8.RuneCountInString(value) > n {
		return models.Invalid("%s must be at most %d characters long.", field, n)
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
