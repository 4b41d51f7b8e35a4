package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	passwordMinLength = 8
	passwordMaxLength = 100
	passwordSymbols   = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`
)

// RawPassword is a plaintext password that passed the password policy. It is
// transient: never persisted and never logged.
type RawPassword struct {
	value string
}

// NewRawPassword validates the password policy. Every violated rule is
// collected so the caller sees all problems at once, not just the first.
func NewRawPassword(raw string) (RawPassword, error) {
	var violations []string

	if n := utf8.RuneCountInString(raw); n < passwordMinLength || n > passwordMaxLength {
		violations = append(violations, "must be between 8 and 100 characters")
	}

	// Class checks are ASCII-only: accented letters do not satisfy the
	// letter rules.
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range raw {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}

	if !hasUpper {
		violations = append(violations, "must contain at least one uppercase letter")
	}
	if !hasLower {
		violations = append(violations, "must contain at least one lowercase letter")
	}
	if !hasDigit {
		violations = append(violations, "must contain at least one digit")
	}
	if !hasSymbol {
		violations = append(violations, "must contain at least one special character")
	}

	if len(violations) > 0 {
		return RawPassword{}, InvalidPassword("password " + strings.Join(violations, "; "))
	}

	return RawPassword{value: raw}, nil
}

// Value returns the plaintext password for hashing.
func (p RawPassword) Value() string {
	return p.value
}

// String masks the password so it can never leak through formatting.
func (p RawPassword) String() string {
	return "********"
}

// EncodedPassword is an opaque password hash. No format validation is applied;
// the hashing algorithm owns the format.
type EncodedPassword struct {
	value string
}

// NewEncodedPassword wraps an existing hash, e.g. when rehydrating from
// storage or after encoding.
func NewEncodedPassword(hash string) EncodedPassword {
	return EncodedPassword{value: hash}
}

// Value returns the stored hash.
func (p EncodedPassword) Value() string {
	return p.value
}

// String masks the hash in formatted output.
func (p EncodedPassword) String() string {
	return "********"
}
