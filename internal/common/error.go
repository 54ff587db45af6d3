// Package common defines sentinel errors and shared constants used across the
// filekeeper server and client. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository and storage errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Validation errors, raised before any side effect.
	ErrInvalidName     = errors.New("invalid name")
	ErrEmptyFile       = errors.New("empty file")
	ErrPayloadTooLarge = errors.New("payload too large")

	// Write failures reported by the blob store.
	ErrStorageWrite = errors.New("storage write error")

	// Temp URL lifecycle errors.
	ErrTokenExpiredOrUnknown = errors.New("token expired or unknown")
)
