// Package tempurls implements the expiring registry that maps temp URL
// tokens to stored files.
package tempurls

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/server/models"
)

// ErrInvalidTTL is returned by Set for a non-positive ttl.
var ErrInvalidTTL = errors.New("ttl must be positive")

// Repository is a TTL-keyed map from token to stored file.
type Repository interface {
	// Set registers token -> file for ttl. Registering an existing token
	// replaces its target and expiry in one step.
	Set(ctx context.Context, token string, file models.StoredFile, ttl time.Duration) error

	// Get returns the live registration for token. Absent and expired tokens
	// both yield common.ErrorNotFound.
	Get(ctx context.Context, token string) (*models.TempURL, error)

	// FindByValue returns a live token registered for file, if any, and
	// common.ErrorNotFound otherwise.
	FindByValue(ctx context.Context, file models.StoredFile) (*models.TempURL, error)

	// Delete revokes token. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error

	// PurgeExpired drops expired registrations and reports how many were removed.
	PurgeExpired(ctx context.Context) (int64, error)
}
