package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/logging"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/dmitrijs2005/filekeeper/internal/server/storage"
)

// ErrPresignUnsupported is returned when the blob store cannot presign.
var ErrPresignUnsupported = errors.New("blob store does not support presigned urls")

// FileService streams and deletes stored files. It never consults the
// token registry.
type FileService struct {
	store  storage.Store
	logger logging.Logger
}

func NewFileService(store storage.Store, logger logging.Logger) *FileService {
	return &FileService{store: store, logger: logger.With("module", "file_service")}
}

// Download opens the file for streaming. The caller must close the reader.
func (s *FileService) Download(ctx context.Context, savePath, saveName string) (rc io.ReadCloser, info models.ObjectInfo, err error) {
	file, err := ParseLocation(savePath, saveName)
	if err != nil {
		return nil, models.ObjectInfo{}, err
	}

	ctx, span := tracer.Start(ctx, "FileService.Download", fileAttrs(file))
	defer func() { endSpan(span, err) }()

	return s.store.Get(ctx, file)
}

// Delete removes the file; deleting a missing file succeeds. Outstanding
// temp URLs are left registered.
func (s *FileService) Delete(ctx context.Context, savePath, saveName string) (err error) {
	file, err := ParseLocation(savePath, saveName)
	if err != nil {
		return err
	}

	ctx, span := tracer.Start(ctx, "FileService.Delete", fileAttrs(file))
	defer func() { endSpan(span, err) }()

	if err := s.store.Delete(ctx, file); err != nil {
		return err
	}
	s.logger.Info(ctx, "file deleted", "save_path", file.SavePath, "save_name", file.SaveName)
	return nil
}

// CanPresign reports whether PresignDownload can succeed.
func (s *FileService) CanPresign() bool {
	_, ok := s.store.(storage.Presigner)
	return ok
}

// PresignDownload returns a direct download URL valid for ttl.
func (s *FileService) PresignDownload(ctx context.Context, file models.StoredFile, ttl time.Duration) (string, error) {
	p, ok := s.store.(storage.Presigner)
	if !ok {
		return "", ErrPresignUnsupported
	}
	if _, err := s.store.Stat(ctx, file); err != nil {
		return "", err
	}
	return p.PresignGet(ctx, file, ttl)
}
