package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/logging"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/dmitrijs2005/filekeeper/internal/server/storage"
)

// UploadService validates payloads, allocates their location and writes
// them through the blob store. Tokens are never issued here.
type UploadService struct {
	store       storage.Store
	allocator   *PathAllocator
	maxSize     int64
	concurrency int
	logger      logging.Logger
}

func NewUploadService(store storage.Store, allocator *PathAllocator, maxSize int64, concurrency int, logger logging.Logger) *UploadService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &UploadService{
		store:       store,
		allocator:   allocator,
		maxSize:     maxSize,
		concurrency: concurrency,
		logger:      logger.With("module", "upload_service"),
	}
}

// MaxFileSize is the per-file limit in bytes.
func (s *UploadService) MaxFileSize() int64 {
	return s.maxSize
}

// UploadUnnamed stores p under an auto-generated name inside targetDir.
func (s *UploadService) UploadUnnamed(ctx context.Context, targetDir string, p models.Payload) (models.UploadResult, error) {
	return s.uploadOne(ctx, "UploadService.UploadUnnamed", targetDir, p.Name, true, p)
}

// UploadNamed stores p as saveName inside targetDir.
func (s *UploadService) UploadNamed(ctx context.Context, targetDir, saveName string, p models.Payload) (models.UploadResult, error) {
	return s.uploadOne(ctx, "UploadService.UploadNamed", targetDir, saveName, false, p)
}

func (s *UploadService) uploadOne(ctx context.Context, op, targetDir, callerName string, auto bool, p models.Payload) (res models.UploadResult, err error) {
	ctx, span := tracer.Start(ctx, op)
	defer func() { endSpan(span, err) }()

	if err := s.validate(p); err != nil {
		return models.UploadResult{}, err
	}
	file, err := s.allocator.Allocate(targetDir, callerName, auto)
	if err != nil {
		return models.UploadResult{}, err
	}
	span.SetAttributes(attribute.String("file.save_path", file.SavePath), attribute.String("file.save_name", file.SaveName))

	res, err = s.write(ctx, file, p)
	if err != nil {
		return models.UploadResult{}, err
	}
	res.Status = models.UploadStatusOK
	return res, nil
}

// UploadBatch stores every payload under an auto-generated name.
//
// All payloads are validated and allocated first; if any of them is invalid
// nothing is written and the error is returned. Writes then run
// concurrently and the result list, in input order, reports each file as
// ok or failed. Successful writes are kept even when others fail.
func (s *UploadService) UploadBatch(ctx context.Context, targetDir string, payloads []models.Payload) (results []models.UploadResult, err error) {
	ctx, span := tracer.Start(ctx, "UploadService.UploadBatch")
	span.SetAttributes(attribute.Int("batch.size", len(payloads)))
	defer func() { endSpan(span, err) }()

	if len(payloads) == 0 {
		return nil, fmt.Errorf("%w: no files in request", common.ErrEmptyFile)
	}

	files := make([]models.StoredFile, len(payloads))
	for i, p := range payloads {
		if err := s.validate(p); err != nil {
			return nil, fmt.Errorf("file #%d %q: %w", i+1, p.Name, err)
		}
		if files[i], err = s.allocator.Allocate(targetDir, p.Name, true); err != nil {
			return nil, err
		}
	}

	results = make([]models.UploadResult, len(payloads))
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i := range payloads {
		g.Go(func() error {
			res, werr := s.write(ctx, files[i], payloads[i])
			if werr != nil {
				s.logger.Warn(ctx, "batch item failed", "save_path", files[i].SavePath, "save_name", files[i].SaveName, "error", werr)
				res = models.UploadResult{
					SavePath:     files[i].SavePath,
					SaveName:     files[i].SaveName,
					OriginalName: payloads[i].Name,
					Status:       models.UploadStatusFailed,
					Error:        werr.Error(),
					Err:          werr,
				}
			} else {
				res.Status = models.UploadStatusOK
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

func (s *UploadService) validate(p models.Payload) error {
	if p.Size <= 0 {
		return fmt.Errorf("%w: %q has no content", common.ErrEmptyFile, p.Name)
	}
	if s.maxSize > 0 && p.Size > s.maxSize {
		return fmt.Errorf("%w: %q is %d bytes, limit is %d", common.ErrPayloadTooLarge, p.Name, p.Size, s.maxSize)
	}
	return nil
}

func (s *UploadService) write(ctx context.Context, file models.StoredFile, p models.Payload) (models.UploadResult, error) {
	n, err := s.store.Put(ctx, file, capReader(p.Body, s.maxSize), p.Size, p.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrPayloadTooLarge):
			return models.UploadResult{}, fmt.Errorf("%w: %q exceeds %d bytes", common.ErrPayloadTooLarge, p.Name, s.maxSize)
		case errors.Is(err, common.ErrorAlreadyExists):
			return models.UploadResult{}, fmt.Errorf("%w: %s/%s", common.ErrorAlreadyExists, file.SavePath, file.SaveName)
		default:
			return models.UploadResult{}, fmt.Errorf("%w: %w", common.ErrStorageWrite, err)
		}
	}
	if n == 0 {
		_ = s.store.Delete(ctx, file)
		return models.UploadResult{}, fmt.Errorf("%w: %q has no content", common.ErrEmptyFile, p.Name)
	}

	s.logger.Info(ctx, "file stored", "save_path", file.SavePath, "save_name", file.SaveName, "size", n)

	return models.UploadResult{
		SavePath:     file.SavePath,
		SaveName:     file.SaveName,
		OriginalName: p.Name,
		Size:         n,
	}, nil
}

// cappedReader fails with common.ErrPayloadTooLarge once more than max
// bytes have been read. A max of zero disables the cap.
type cappedReader struct {
	r    io.Reader
	max  int64
	read int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += int64(n)
	if c.read > c.max {
		return n, common.ErrPayloadTooLarge
	}
	return n, err
}

// cappedReadSeeker keeps the underlying reader seekable so the S3 client
// can rewind and size the body.
type cappedReadSeeker struct {
	cappedReader
	s io.Seeker
}

func (c *cappedReadSeeker) Seek(offset int64, whence int) (int64, error) {
	pos, err := c.s.Seek(offset, whence)
	if err == nil {
		c.read = pos
	}
	return pos, err
}

func capReader(r io.Reader, max int64) io.Reader {
	if max <= 0 {
		return r
	}
	if s, ok := r.(io.Seeker); ok {
		return &cappedReadSeeker{cappedReader: cappedReader{r: r, max: max}, s: s}
	}
	return &cappedReader{r: r, max: max}
}
