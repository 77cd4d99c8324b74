package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"smartexpense/internal/core"
)

const minPasswordLength = 8

// HashPassword validates and hashes a plaintext password.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", core.Validation(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	// bcrypt operates on at most 72 bytes.
	if len(password) > 72 {
		return "", core.Validation("password too long (max 72 bytes)")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
