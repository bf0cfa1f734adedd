package domain

import "time"

// Credential is the metadata of an issued session credential. The signed
// string itself is opaque to everything outside internal/auth.
type Credential struct {
	ID           string
	SubjectID    string
	SubjectName  string
	BoundAddress string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}
