package domain

import "time"

// Subscription records a plan selected by an authenticated user.
type Subscription struct {
	ID            string
	SubjectID     string
	SubjectName   string
	Plan          string
	ClientAddress string
	CreatedAt     time.Time
}
