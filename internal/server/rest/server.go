// Package rest exposes the filekeeper services over HTTP using gin.
package rest

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/logging"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/dmitrijs2005/filekeeper/internal/server/observability"
)

const (
	shutdownTimeout    = 5 * time.Second
	readHeaderTimeout  = 10 * time.Second
	maxMultipartMemory = 8 << 20
	// multipartOverhead is the room left for the param part and the
	// multipart framing on top of the file itself.
	multipartOverhead = 1 << 20
)

// Uploader stores incoming files.
type Uploader interface {
	UploadUnnamed(ctx context.Context, targetDir string, p models.Payload) (models.UploadResult, error)
	UploadNamed(ctx context.Context, targetDir, saveName string, p models.Payload) (models.UploadResult, error)
	UploadBatch(ctx context.Context, targetDir string, payloads []models.Payload) ([]models.UploadResult, error)
}

// TempURLIssuer hands out and resolves temp URL tokens.
type TempURLIssuer interface {
	Issue(ctx context.Context, savePath, saveName string) (*models.TempURL, bool, error)
	Resolve(ctx context.Context, token string) (models.StoredFile, error)
	Revoke(ctx context.Context, token string) error
	TTL() time.Duration
}

// FileGateway streams and deletes stored files.
type FileGateway interface {
	Download(ctx context.Context, savePath, saveName string) (io.ReadCloser, models.ObjectInfo, error)
	Delete(ctx context.Context, savePath, saveName string) error
	CanPresign() bool
	PresignDownload(ctx context.Context, file models.StoredFile, ttl time.Duration) (string, error)
}

// Options tune the HTTP surface.
type Options struct {
	Address string
	// PublicBaseURL prefixes temp URLs; the request host is used when empty.
	PublicBaseURL string
	// PresignRedirect answers temp URL fetches with a redirect to the blob
	// store when it can presign.
	PresignRedirect    bool
	CORSAllowedOrigins []string
	// MaxFileSize caps single-file upload bodies at this size plus
	// multipart framing. Zero leaves bodies uncapped.
	MaxFileSize int64
}

type HTTPServer struct {
	opts    Options
	engine  *gin.Engine
	logger  logging.Logger
	metrics *observability.Metrics
	uploads Uploader
	links   TempURLIssuer
	files   FileGateway
}

func NewHTTPServer(opts Options, l logging.Logger, m *observability.Metrics, up Uploader, links TempURLIssuer, files FileGateway) *HTTPServer {
	s := &HTTPServer{
		opts:    opts,
		logger:  l.With("module", "http_server"),
		metrics: m,
		uploads: up,
		links:   links,
		files:   files,
	}
	s.engine = s.newEngine()
	return s
}

func (s *HTTPServer) newEngine() *gin.Engine {
	engine := gin.New()
	// savePath may carry an encoded slash ("%2Fdocs") inside one segment.
	engine.UseRawPath = true
	engine.UnescapePathValues = true
	engine.MaxMultipartMemory = maxMultipartMemory

	engine.Use(s.requestID, s.accessLog, gin.CustomRecovery(s.recover))
	if len(s.opts.CORSAllowedOrigins) > 0 {
		engine.Use(cors.New(corsConfig(s.opts.CORSAllowedOrigins)))
	}

	engine.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
	engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	file := engine.Group("/file")
	{
		file.GET("/get-file-url/:savePath/:saveName", s.getFileURL)
		file.POST("/upload-file", s.limitBody, s.uploadFile)
		file.POST("/upload-named-file", s.limitBody, s.uploadNamedFile)
		file.POST("/upload-files", s.uploadFiles)
		file.DELETE("/delete-file", s.deleteFile)
		file.POST("/download-file", s.downloadFile)
		file.GET("/temp/:token", s.fetchTemp)
		file.DELETE("/temp/:token", s.revokeTemp)
	}
	return engine
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
		}
	}
	if !cfg.AllowAllOrigins {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", common.RequestIDHeaderName}
	cfg.ExposeHeaders = []string{"Content-Disposition", common.RequestIDHeaderName}
	return cfg
}

// Handler returns the routed engine, mostly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}

	srv := &http.Server{Handler: s.engine, ReadHeaderTimeout: readHeaderTimeout}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP server forced to shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// baseURL is where temp URLs point to.
func (s *HTTPServer) baseURL(c *gin.Context) string {
	if s.opts.PublicBaseURL != "" {
		return strings.TrimRight(s.opts.PublicBaseURL, "/")
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
