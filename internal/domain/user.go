package domain

import "time"

// User is a principal that can sign in to the dashboard.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
