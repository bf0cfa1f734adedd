package auth

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), normalizeCost(cost))
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// NewDecoyHash hashes a random password at cost. Logins for unknown users
// compare against it so they take as long as a wrong password; cost must
// match the cost stored passwords are hashed with.
func NewDecoyHash(cost int) (string, error) {
	return HashPassword(uuid.NewString(), cost)
}

// BurnPasswordCheck runs a comparison against decoy whose result is discarded.
func BurnPasswordCheck(decoy, plain string) {
	_ = bcrypt.CompareHashAndPassword([]byte(decoy), []byte(plain))
}

func normalizeCost(cost int) int {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}
