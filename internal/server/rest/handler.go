package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/dmitrijs2005/filekeeper/internal/server/services"
)

const (
	paramPart    = "param"
	maxParamSize = 64 << 10

	variantUnnamed = "unnamed"
	variantNamed   = "named"
	variantBatch   = "batch"
)

type uploadParam struct {
	SavePath string `json:"savePath"`
}

type uploadNamedParam struct {
	SavePath string `json:"savePath"`
	SaveName string `json:"saveName"`
}

type downloadRequest struct {
	SavePath string `json:"savePath"`
	FileName string `json:"fileName"`
	SaveName string `json:"saveName"`
}

type tempURLResponse struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *HTTPServer) getFileURL(c *gin.Context) {
	ctx := c.Request.Context()

	tu, reused, err := s.links.Issue(ctx, c.Param("savePath"), c.Param("saveName"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.ObserveTempURL(reused)

	c.JSON(http.StatusOK, tempURLResponse{
		Token:     tu.Token,
		URL:       s.baseURL(c) + "/file/temp/" + tu.Token,
		ExpiresAt: tu.ExpiresAt.UTC(),
	})
}

func (s *HTTPServer) uploadFile(c *gin.Context) {
	var param uploadParam
	if err := bindParam(c, &param); err != nil {
		s.fail(c, err)
		return
	}
	p, closeFn, err := formPayload(c, "file")
	if err != nil {
		s.fail(c, err)
		return
	}
	defer closeFn()

	res, err := s.uploads.UploadUnnamed(c.Request.Context(), param.SavePath, p)
	s.observeUpload(variantUnnamed, res, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *HTTPServer) uploadNamedFile(c *gin.Context) {
	var param uploadNamedParam
	if err := bindParam(c, &param); err != nil {
		s.fail(c, err)
		return
	}
	p, closeFn, err := formPayload(c, "file")
	if err != nil {
		s.fail(c, err)
		return
	}
	defer closeFn()

	res, err := s.uploads.UploadNamed(c.Request.Context(), param.SavePath, param.SaveName, p)
	s.observeUpload(variantNamed, res, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// uploadFiles answers 200 when every file was stored, 207 when only some
// were, and 500 when none were. The body lists every file either way.
func (s *HTTPServer) uploadFiles(c *gin.Context) {
	var param uploadParam
	if err := bindParam(c, &param); err != nil {
		s.fail(c, err)
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		s.fail(c, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	headers := form.File["files"]
	payloads := make([]models.Payload, 0, len(headers))
	for _, fh := range headers {
		p, closeFn, err := openPayload(fh)
		if err != nil {
			s.fail(c, err)
			return
		}
		defer closeFn()
		payloads = append(payloads, p)
	}

	results, err := s.uploads.UploadBatch(c.Request.Context(), param.SavePath, payloads)
	if err != nil {
		s.fail(c, err)
		return
	}

	failed := 0
	for _, r := range results {
		s.observeUpload(variantBatch, r, r.Err)
		if r.Status == models.UploadStatusFailed {
			failed++
		}
	}

	status := http.StatusOK
	switch {
	case failed == len(results):
		status = http.StatusInternalServerError
	case failed > 0:
		status = http.StatusMultiStatus
	}
	c.JSON(status, results)
}

// deleteFile accepts either savePath+saveName or the whole location in
// savePath.
func (s *HTTPServer) deleteFile(c *gin.Context) {
	savePath, saveName := c.Query("savePath"), c.Query("saveName")
	if saveName == "" {
		savePath, saveName = services.SplitSavePath(savePath)
	}

	if err := s.files.Delete(c.Request.Context(), savePath, saveName); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (s *HTTPServer) downloadFile(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	rc, info, name, err := s.openDownload(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer rc.Close()

	if req.FileName != "" {
		name = req.FileName
	}
	c.DataFromReader(http.StatusOK, info.Size, "application/octet-stream", rc, map[string]string{
		"Content-Disposition": "filename=" + name,
		"Set-Cookie":          common.DownloadCookie,
	})
}

// openDownload resolves the stored file a download request addresses and
// returns its save name. Without saveName, savePath is read as the whole
// location first; only when nothing is stored there is it taken as the
// directory holding fileName.
func (s *HTTPServer) openDownload(ctx context.Context, req downloadRequest) (io.ReadCloser, models.ObjectInfo, string, error) {
	if req.SaveName != "" {
		rc, info, err := s.files.Download(ctx, req.SavePath, req.SaveName)
		return rc, info, req.SaveName, err
	}

	if dir, name := services.SplitSavePath(req.SavePath); name != "" {
		rc, info, err := s.files.Download(ctx, dir, name)
		if err == nil || !errors.Is(err, common.ErrorNotFound) || req.FileName == "" {
			return rc, info, name, err
		}
	}
	if req.FileName == "" {
		return nil, models.ObjectInfo{}, "", fmt.Errorf("%w: savePath names no file", errBadRequest)
	}

	rc, info, err := s.files.Download(ctx, req.SavePath, req.FileName)
	return rc, info, req.FileName, err
}

// fetchTemp serves the file behind a temp URL token.
func (s *HTTPServer) fetchTemp(c *gin.Context) {
	ctx := c.Request.Context()

	file, err := s.links.Resolve(ctx, c.Param("token"))
	if err != nil {
		s.fail(c, err)
		return
	}

	if s.opts.PresignRedirect && s.files.CanPresign() {
		u, err := s.files.PresignDownload(ctx, file, s.links.TTL())
		if err != nil {
			s.fail(c, err)
			return
		}
		c.Redirect(http.StatusFound, u)
		return
	}

	rc, info, err := s.files.Download(ctx, file.SavePath, file.SaveName)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer rc.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, info.Size, contentType, rc, map[string]string{
		"Content-Disposition": "filename=" + file.SaveName,
		"Set-Cookie":          common.DownloadCookie,
	})
}

func (s *HTTPServer) revokeTemp(c *gin.Context) {
	if err := s.links.Revoke(c.Request.Context(), c.Param("token")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) observeUpload(variant string, res models.UploadResult, err error) {
	status := models.UploadStatusOK
	if err != nil {
		status = models.UploadStatusFailed
	}
	s.metrics.ObserveUpload(variant, status, res.Size)
}

// bindParam decodes the JSON "param" part. Browsers send it either as a
// plain field or as a file part holding a JSON blob.
func bindParam(c *gin.Context, dst any) error {
	raw, ok := c.GetPostForm(paramPart)
	if !ok {
		fh, err := c.FormFile(paramPart)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				return fmt.Errorf("%w: missing %q part", errBadRequest, paramPart)
			}
			return fmt.Errorf("%w: %w", errBadRequest, err)
		}
		f, err := fh.Open()
		if err != nil {
			return fmt.Errorf("%w: %w", errBadRequest, err)
		}
		defer f.Close()
		b, err := io.ReadAll(io.LimitReader(f, maxParamSize))
		if err != nil {
			return fmt.Errorf("%w: %w", errBadRequest, err)
		}
		raw = string(b)
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("%w: %q part is not valid JSON: %w", errBadRequest, paramPart, err)
	}
	return nil
}

func formPayload(c *gin.Context, field string) (models.Payload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return models.Payload{}, nil, fmt.Errorf("%w: missing %q part: %w", errBadRequest, field, err)
	}
	return openPayload(fh)
}

func openPayload(fh *multipart.FileHeader) (models.Payload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return models.Payload{}, nil, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	return models.Payload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
