// Package repomanager selects and wires the registry backend and its schema
// migrations.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/tempurls"
)

// Registry backends understood by New.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// RepositoryManager vends repositories bound to one backend.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	TempURLs() tempurls.Repository
	Close() error
}

// New opens the manager for backend. The PostgreSQL backend connects with
// dsn and applies pending migrations before returning.
func New(ctx context.Context, backend, dsn string) (RepositoryManager, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemoryRepositoryManager(), nil
	case BackendPostgres:
		m, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		if err := m.RunMigrations(ctx); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown registry backend %q", backend)
	}
}

// MemoryRepositoryManager keeps the registry in process memory; it has no
// schema and nothing to close.
type MemoryRepositoryManager struct {
	tempURLs *tempurls.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{tempURLs: tempurls.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) TempURLs() tempurls.Repository { return m.tempURLs }

func (m *MemoryRepositoryManager) Close() error { return nil }
