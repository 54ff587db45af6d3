package models

import "time"

// TempURL is a registered access token for a stored file.
type TempURL struct {
	Token     string
	File      StoredFile
	ExpiresAt time.Time
}

// Expired reports whether the token is no longer valid at now.
func (t TempURL) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
