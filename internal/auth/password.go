package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/toymall/user-service/internal/domain"
)

// bcryptCost trades login latency for brute-force resistance. 12 keeps a
// single hash under ~300ms on current hardware.
const bcryptCost = 12

// PasswordEncoder is the one-way hashing port consumed by the use cases.
type PasswordEncoder interface {
	Encode(raw domain.RawPassword) (domain.EncodedPassword, error)
	Matches(raw domain.RawPassword, encoded domain.EncodedPassword) bool
}

// BcryptEncoder implements PasswordEncoder with bcrypt. The salt is embedded
// in the hash, so no separate salt storage is needed.
type BcryptEncoder struct {
	cost int
}

// NewBcryptEncoder creates an encoder with the default cost.
func NewBcryptEncoder() *BcryptEncoder {
	return &BcryptEncoder{cost: bcryptCost}
}

// bcryptMaxInputBytes is bcrypt's hard input limit. The password policy
// allows up to 100 characters, so inputs are truncated before hashing; the
// same truncation on verify keeps Encode and Matches consistent.
const bcryptMaxInputBytes = 72

// Encode hashes the raw password. bcrypt only fails on an out-of-range cost,
// but the contract still surfaces the error.
func (e *BcryptEncoder) Encode(raw domain.RawPassword) (domain.EncodedPassword, error) {
	hash, err := bcrypt.GenerateFromPassword(bcryptInput(raw), e.cost)
	if err != nil {
		return domain.EncodedPassword{}, fmt.Errorf("encode password: %w", err)
	}
	return domain.NewEncodedPassword(string(hash)), nil
}

// Matches verifies a raw password against a stored hash. It never returns an
// error: any mismatch or malformed hash yields false.
func (e *BcryptEncoder) Matches(raw domain.RawPassword, encoded domain.EncodedPassword) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded.Value()), bcryptInput(raw)) == nil
}

func bcryptInput(raw domain.RawPassword) []byte {
	b := []byte(raw.Value())
	if len(b) > bcryptMaxInputBytes {
		b = b[:bcryptMaxInputBytes]
	}
	return b
}
