package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/filekeeper/internal/client/models"
)

// Upload is one file handed to a batch upload.
type Upload struct {
	Name string
	Body io.Reader
}

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	UploadFile(ctx context.Context, savePath string, file Upload) (*models.UploadResult, error)
	UploadNamedFile(ctx context.Context, savePath, saveName string, file Upload) (*models.UploadResult, error)
	UploadFiles(ctx context.Context, savePath string, files []Upload) ([]models.UploadResult, error)
	GetFileURL(ctx context.Context, savePath, saveName string) (*models.TempURL, error)
	Download(ctx context.Context, savePath, saveName string) (io.ReadCloser, error)
	Open(ctx context.Context, tokenOrURL string) (io.ReadCloser, error)
	Delete(ctx context.Context, savePath, saveName string) error
	Revoke(ctx context.Context, token string) error
}
