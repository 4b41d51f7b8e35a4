package domain

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Email is a validated, normalized email address. The zero value is invalid;
// construction through NewEmail is the only validation point.
type Email struct {
	value string
}

// NewEmail trims and lower-cases the input, then validates the format.
func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return Email{}, InvalidEmail("email must not be blank")
	}
	if !emailPattern.MatchString(normalized) {
		return Email{}, InvalidEmail("invalid email format: " + normalized)
	}
	return Email{value: normalized}, nil
}

// Value returns the normalized address.
func (e Email) Value() string {
	return e.value
}

func (e Email) String() string {
	return e.value
}
