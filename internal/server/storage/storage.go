// Package storage provides the blob store backends: a local filesystem
// (through afero) and an S3-compatible object store.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/server/models"
)

// Store keeps raw bytes addressed by (savePath, saveName).
//
// Put never overwrites: an existing blob yields common.ErrorAlreadyExists.
// Get and Stat return common.ErrorNotFound for a missing blob. Delete of a
// missing blob succeeds.
type Store interface {
	Put(ctx context.Context, file models.StoredFile, r io.Reader, size int64, contentType string) (int64, error)
	Get(ctx context.Context, file models.StoredFile) (io.ReadCloser, models.ObjectInfo, error)
	Stat(ctx context.Context, file models.StoredFile) (models.ObjectInfo, error)
	Delete(ctx context.Context, file models.StoredFile) error
}

// Presigner is implemented by stores that can hand out direct, time-limited
// download URLs.
type Presigner interface {
	PresignGet(ctx context.Context, file models.StoredFile, ttl time.Duration) (string, error)
}

// ctxReader stops a copy as soon as ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// Blob store backends understood by Open.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// Open builds the store selected by backend. root is used by the local
// backend, s3c by the S3 backend.
func Open(ctx context.Context, backend, root string, s3c S3Config) (Store, error) {
	switch backend {
	case "", BackendLocal:
		return NewLocalStoreAt(root)
	case BackendS3:
		return NewS3Store(ctx, s3c)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
