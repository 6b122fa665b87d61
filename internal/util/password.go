package util

import (
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost balances hash strength against login latency. Raising it only
// affects newly stored hashes; existing ones keep their recorded cost.
const bcryptCost = 12

// HashPassword turns a plaintext password into a bcrypt hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies a plaintext password against a bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
