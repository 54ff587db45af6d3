package tempurls

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
)

// MemoryRepository keeps registrations in process memory. Expired entries
// are invisible immediately and removed by PurgeExpired.
type MemoryRepository struct {
	mu      sync.RWMutex
	byToken map[string]models.TempURL
	byFile  map[models.StoredFile]string
	now     func() time.Time
}

// NewMemoryRepository creates an empty registry using the wall clock.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byToken: make(map[string]models.TempURL),
		byFile:  make(map[models.StoredFile]string),
		now:     time.Now,
	}
}

func (r *MemoryRepository) Set(ctx context.Context, token string, file models.StoredFile, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byToken[token]; ok && prev.File != file && r.byFile[prev.File] == token {
		delete(r.byFile, prev.File)
	}
	r.byToken[token] = models.TempURL{Token: token, File: file, ExpiresAt: r.now().Add(ttl)}
	r.byFile[file] = token
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, token string) (*models.TempURL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	tu, ok := r.byToken[token]
	if !ok || tu.Expired(r.now()) {
		return nil, common.ErrorNotFound
	}
	return &tu, nil
}

func (r *MemoryRepository) FindByValue(ctx context.Context, file models.StoredFile) (*models.TempURL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.byFile[file]
	if !ok {
		return nil, common.ErrorNotFound
	}
	tu, ok := r.byToken[token]
	if !ok || tu.File != file || tu.Expired(r.now()) {
		return nil, common.ErrorNotFound
	}
	return &tu, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if tu, ok := r.byToken[token]; ok {
		if r.byFile[tu.File] == token {
			delete(r.byFile, tu.File)
		}
		delete(r.byToken, token)
	}
	return nil
}

func (r *MemoryRepository) PurgeExpired(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var n int64
	for token, tu := range r.byToken {
		if !tu.Expired(now) {
			continue
		}
		if r.byFile[tu.File] == token {
			delete(r.byFile, tu.File)
		}
		delete(r.byToken, token)
		n++
	}
	return n, nil
}
