package janitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/filekeeper/internal/logging"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/tempurls"
)

type fakePurger struct {
	calls atomic.Int32
	n     int64
	err   error
}

func (f *fakePurger) PurgeExpired(context.Context) (int64, error) {
	f.calls.Add(1)
	return f.n, f.err
}

type countObserver struct {
	mu    sync.Mutex
	total int64
}

func (o *countObserver) ObservePurge(n int64) {
	o.mu.Lock()
	o.total += n
	o.mu.Unlock()
}

func (o *countObserver) Total() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.total
}

func TestPurge_ReportsCount(t *testing.T) {
	p := &fakePurger{n: 3}
	obs := &countObserver{}
	m := NewManager(logging.Nop{}, p, obs)

	m.purge()
	m.purge()

	assert.Equal(t, int32(2), p.calls.Load())
	assert.Equal(t, int64(6), obs.Total())
}

func TestPurge_ErrorIsNotObserved(t *testing.T) {
	obs := &countObserver{}
	m := NewManager(logging.Nop{}, &fakePurger{n: 5, err: errors.New("db down")}, obs)

	m.purge()
	assert.Zero(t, obs.Total())
}

func TestPurge_MemoryRegistry(t *testing.T) {
	repo := tempurls.NewMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, "short", models.StoredFile{SavePath: "/a", SaveName: "b"}, time.Nanosecond))
	require.NoError(t, repo.Set(ctx, "long", models.StoredFile{SavePath: "/a", SaveName: "c"}, time.Hour))
	time.Sleep(time.Millisecond)

	obs := &countObserver{}
	NewManager(logging.Nop{}, repo, obs).purge()

	assert.Equal(t, int64(1), obs.Total())
	_, err := repo.Get(ctx, "long")
	assert.NoError(t, err)
}

func TestRun_SchedulesAndStops(t *testing.T) {
	p := &fakePurger{}
	m := NewManager(logging.Nop{}, p, &countObserver{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, "@every 1s") }()

	require.Eventually(t, func() bool { return p.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop after context cancel")
	}
}

func TestRun_Disabled(t *testing.T) {
	m := NewManager(logging.Nop{}, &fakePurger{}, &countObserver{})
	assert.NoError(t, m.Run(context.Background(), ""))
}

func TestRun_InvalidSchedule(t *testing.T) {
	m := NewManager(logging.Nop{}, &fakePurger{}, &countObserver{})
	err := m.Run(context.Background(), "every now and then")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid janitor schedule")
}
