package security

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	ErrInvalidEmail     = errors.New("invalid email address format")
	ErrInvalidColumns   = errors.New("column count must be a positive integer")
	ErrInvalidDelimiter = errors.New("delimiter must be a single character")
)

// ValidateEmail checks if the provided email is a valid format to prevent header injection.
func ValidateEmail(email string) error {
	// Simple but effective check for most cases.
	// Prevents \r and \n which are used for header injection.
	if strings.ContainsAny(email, "\r\n") {
		return ErrInvalidEmail
	}

	// Basic check for @ and .
	atIdx := strings.Index(email, "@")
	dotIdx := strings.LastIndex(email, ".")
	if atIdx < 1 || dotIdx < atIdx+2 || dotIdx == len(email)-1 {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateColumns parses a column count field. It must be a positive
// integer; anything else is rejected before the parser ever runs.
func ValidateColumns(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return 0, ErrInvalidColumns
	}
	return n, nil
}

// ValidateDelimiter checks a field separator override: exactly one
// character and not a line terminator.
func ValidateDelimiter(delim string) error {
	if utf8.RuneCountInString(delim) != 1 {
		return ErrInvalidDelimiter
	}
	if strings.ContainsAny(delim, "\r\n") {
		return ErrInvalidDelimiter
	}
	return nil
}
