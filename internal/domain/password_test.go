package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// RawPassword Policy Tests
// ============================================================================

func TestNewRawPassword_Valid(t *testing.T) {
	pw, err := NewRawPassword("Test1234!")
	require.NoError(t, err)
	assert.Equal(t, "Test1234!", pw.Value())
}

func TestNewRawPassword_EachRuleIsIndependent(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"too short", "Ab1!x"},
		{"too long", strings.Repeat("Ab1!", 26)},
		{"no uppercase", "test1234!"},
		{"no lowercase", "TEST1234!"},
		{"no digit", "Testtest!"},
		{"no symbol", "Test12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRawPassword(tt.password)
			assert.Error(t, err)
		})
	}
}

func TestNewRawPassword_AggregatesAllViolations(t *testing.T) {
	// "abc" violates length, uppercase, digit, and symbol at once.
	_, err := NewRawPassword("abc")
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "between 8 and 100 characters")
	assert.Contains(t, msg, "uppercase")
	assert.Contains(t, msg, "digit")
	assert.Contains(t, msg, "special character")
	assert.NotContains(t, msg, "lowercase letter")
}

func TestNewRawPassword_BoundaryLengths(t *testing.T) {
	_, err := NewRawPassword("Abc123!x")
	assert.NoError(t, err, "8 characters should pass")

	long := "Abc123!" + strings.Repeat("x", 93)
	require.Len(t, long, 100)
	_, err = NewRawPassword(long)
	assert.NoError(t, err, "100 characters should pass")

	_, err = NewRawPassword(long + "x")
	assert.Error(t, err, "101 characters should fail")
}

func TestNewRawPassword_LengthCountsCharactersNotBytes(t *testing.T) {
	// 7 characters but 10 bytes: must still fail the length rule.
	_, err := NewRawPassword("Aa1!ééé")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 8 and 100 characters")

	// 8 characters including multibyte ones pass.
	_, err = NewRawPassword("Aa1!éééé")
	assert.NoError(t, err)
}

func TestNewRawPassword_AccentedLettersDoNotSatisfyClassRules(t *testing.T) {
	_, err := NewRawPassword("Éabcdef1!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uppercase")

	_, err = NewRawPassword("éABCDEF1!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lowercase")
}

func TestRawPassword_StringIsMasked(t *testing.T) {
	pw, err := NewRawPassword("Test1234!")
	require.NoError(t, err)
	assert.Equal(t, "********", pw.String())
	assert.NotContains(t, pw.String(), "Test1234!")
}

// ============================================================================
// EncodedPassword Tests
// ============================================================================

func TestNewEncodedPassword_AcceptsAnyHash(t *testing.T) {
	hash := "$2a$12$abcdefghijklmnopqrstuv"
	encoded := NewEncodedPassword(hash)
	assert.Equal(t, hash, encoded.Value())
}

func TestEncodedPassword_StringIsMasked(t *testing.T) {
	encoded := NewEncodedPassword("some-hash")
	assert.Equal(t, "********", encoded.String())
}
