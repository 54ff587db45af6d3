package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/logging"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/tempurls"
	"github.com/dmitrijs2005/filekeeper/internal/server/storage"
	"github.com/dmitrijs2005/filekeeper/internal/shared"
)

// TempURLService exchanges a stored file location for a short-lived token
// and back.
type TempURLService struct {
	repo     tempurls.Repository
	store    storage.Store
	ttl      time.Duration
	now      func() time.Time
	newToken func() (string, error)
	logger   logging.Logger
}

func NewTempURLService(repo tempurls.Repository, store storage.Store, ttl time.Duration, logger logging.Logger) *TempURLService {
	return &TempURLService{
		repo:     repo,
		store:    store,
		ttl:      ttl,
		now:      time.Now,
		newToken: shared.NewToken,
		logger:   logger.With("module", "tempurl_service"),
	}
}

// TTL is the lifetime given to every registration.
func (s *TempURLService) TTL() time.Duration {
	return s.ttl
}

// Issue returns a live token for the file, reusing one that is already
// registered and minting a new one otherwise. Either way the registration
// is (re)written with a fresh TTL. reused reports which path was taken.
//
// Two concurrent calls for the same file may both mint; each token then
// resolves to the file independently.
func (s *TempURLService) Issue(ctx context.Context, savePath, saveName string) (tu *models.TempURL, reused bool, err error) {
	ctx, span := tracer.Start(ctx, "TempURLService.Issue")
	defer func() { endSpan(span, err) }()

	file, err := ParseLocation(savePath, saveName)
	if err != nil {
		return nil, false, err
	}
	span.SetAttributes(attribute.String("file.save_path", file.SavePath), attribute.String("file.save_name", file.SaveName))

	if _, err := s.store.Stat(ctx, file); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, false, fmt.Errorf("%w: %s/%s", common.ErrorNotFound, file.SavePath, file.SaveName)
		}
		return nil, false, err
	}

	var token string
	existing, err := s.repo.FindByValue(ctx, file)
	switch {
	case err == nil:
		token, reused = existing.Token, true
	case errors.Is(err, common.ErrorNotFound):
		if token, err = s.newToken(); err != nil {
			return nil, false, fmt.Errorf("mint token: %w", err)
		}
	default:
		return nil, false, err
	}

	expiresAt := s.now().Add(s.ttl)
	if err := s.repo.Set(ctx, token, file, s.ttl); err != nil {
		return nil, false, err
	}

	s.logger.Debug(ctx, "temp url issued", "save_path", file.SavePath, "save_name", file.SaveName, "reused", reused)

	return &models.TempURL{Token: token, File: file, ExpiresAt: expiresAt}, reused, nil
}

// Resolve maps a token back to its file. Unknown and expired tokens are
// reported the same way. The file itself is not checked; a download after
// a delete fails with not found.
func (s *TempURLService) Resolve(ctx context.Context, token string) (file models.StoredFile, err error) {
	ctx, span := tracer.Start(ctx, "TempURLService.Resolve")
	defer func() { endSpan(span, err) }()

	if token == "" {
		return models.StoredFile{}, common.ErrTokenExpiredOrUnknown
	}
	tu, err := s.repo.Get(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.StoredFile{}, common.ErrTokenExpiredOrUnknown
		}
		return models.StoredFile{}, err
	}
	return tu.File, nil
}

// Revoke invalidates token immediately. Unknown tokens are ignored.
func (s *TempURLService) Revoke(ctx context.Context, token string) (err error) {
	ctx, span := tracer.Start(ctx, "TempURLService.Revoke")
	defer func() { endSpan(span, err) }()

	if token == "" {
		return nil
	}
	return s.repo.Delete(ctx, token)
}
