package tempurls

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/dbx"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
)

// PostgresRepository stores registrations in the temp_urls table. Expiry is
// enforced in every query, so a row past expires_at is never returned even
// before the janitor removes it.
type PostgresRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresRepository constructs a repository bound to db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, now: time.Now}
}

// Set drops expired rows of the same file and upserts the token in one
// transaction.
func (r *PostgresRepository) Set(ctx context.Context, token string, file models.StoredFile, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	now := r.now()

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		cleanup := `
			DELETE FROM temp_urls
			WHERE save_path = $1 AND save_name = $2 AND expires_at <= $3
		`
		if _, err := tx.ExecContext(ctx, cleanup, file.SavePath, file.SaveName, now); err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		upsert := `
			INSERT INTO temp_urls (token, save_path, save_name, expires_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (token) DO UPDATE
			SET save_path = EXCLUDED.save_path,
				save_name = EXCLUDED.save_name,
				expires_at = EXCLUDED.expires_at
		`
		if _, err := tx.ExecContext(ctx, upsert, token, file.SavePath, file.SaveName, now.Add(ttl)); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
}

func (r *PostgresRepository) Get(ctx context.Context, token string) (*models.TempURL, error) {
	query := `
		SELECT save_path, save_name, expires_at
		FROM temp_urls
		WHERE token = $1 AND expires_at > $2
	`
	tu := &models.TempURL{Token: token}
	err := r.db.QueryRowContext(ctx, query, token, r.now()).
		Scan(&tu.File.SavePath, &tu.File.SaveName, &tu.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tu, nil
}

func (r *PostgresRepository) FindByValue(ctx context.Context, file models.StoredFile) (*models.TempURL, error) {
	query := `
		SELECT token, expires_at
		FROM temp_urls
		WHERE save_path = $1 AND save_name = $2 AND expires_at > $3
		ORDER BY expires_at DESC
		LIMIT 1
	`
	tu := &models.TempURL{File: file}
	err := r.db.QueryRowContext(ctx, query, file.SavePath, file.SaveName, r.now()).
		Scan(&tu.Token, &tu.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tu, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, token string) error {
	query := `
		DELETE FROM temp_urls
		WHERE token = $1
	`
	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) PurgeExpired(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM temp_urls
		WHERE expires_at <= $1
	`
	res, err := r.db.ExecContext(ctx, query, r.now())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
