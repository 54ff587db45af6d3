package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/logging"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/dmitrijs2005/filekeeper/internal/server/storage"
	"github.com/spf13/afero"
)

// --- helpers ---

var errDiskFull = errors.New("disk full")

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// flakyStore is a LocalStore over an in-memory fs whose Put fails for the
// names listed in failOn.
type flakyStore struct {
	*storage.LocalStore
	failOn map[string]bool
}

func newMemStore() *storage.LocalStore {
	return storage.NewLocalStore(afero.NewMemMapFs())
}

func (s *flakyStore) Put(ctx context.Context, file models.StoredFile, r io.Reader, size int64, contentType string) (int64, error) {
	if s.failOn[file.SaveName] {
		return 0, errDiskFull
	}
	return s.LocalStore.Put(ctx, file, r, size, contentType)
}

// fakeRegistry is a tempurls.Repository driven by a fakeClock.
type fakeRegistry struct {
	mu    sync.Mutex
	clock *fakeClock
	items map[string]models.TempURL

	sets   int
	setErr error
}

func newFakeRegistry(c *fakeClock) *fakeRegistry {
	return &fakeRegistry{clock: c, items: map[string]models.TempURL{}}
}

func (r *fakeRegistry) Set(_ context.Context, token string, file models.StoredFile, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setErr != nil {
		return r.setErr
	}
	r.sets++
	r.items[token] = models.TempURL{Token: token, File: file, ExpiresAt: r.clock.Now().Add(ttl)}
	return nil
}

func (r *fakeRegistry) Get(_ context.Context, token string) (*models.TempURL, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tu, ok := r.items[token]
	if !ok || tu.Expired(r.clock.Now()) {
		return nil, common.ErrorNotFound
	}
	return &tu, nil
}

func (r *fakeRegistry) FindByValue(_ context.Context, file models.StoredFile) (*models.TempURL, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tu := range r.items {
		if tu.File == file && !tu.Expired(r.clock.Now()) {
			tu := tu
			return &tu, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeRegistry) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, token)
	return nil
}

func (r *fakeRegistry) PurgeExpired(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, tu := range r.items {
		if tu.Expired(r.clock.Now()) {
			delete(r.items, k)
			n++
		}
	}
	return n, nil
}

func newTestUploadService(store storage.Store, maxSize int64) *UploadService {
	ids := 0
	var mu sync.Mutex
	a := &PathAllocator{
		now: newFakeClock().Now,
		newID: func() string {
			mu.Lock()
			defer mu.Unlock()
			ids++
			return "id-" + string(rune('0'+ids))
		},
	}
	return NewUploadService(store, a, maxSize, 4, logging.Nop{})
}

func newTestTempURLService(store storage.Store, clock *fakeClock, ttl time.Duration) (*TempURLService, *fakeRegistry) {
	reg := newFakeRegistry(clock)
	s := NewTempURLService(reg, store, ttl, logging.Nop{})
	s.now = clock.Now
	return s, reg
}
