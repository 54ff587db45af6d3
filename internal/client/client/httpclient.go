package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/client/models"
	"github.com/dmitrijs2005/filekeeper/internal/netx"
)

const paramPart = "param"

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewFileKeeperClient returns a client for the server at baseURL, e.g.
// "http://127.0.0.1:8080". timeout bounds every request including the body
// transfer; zero disables it.
func NewFileKeeperClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server address %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server address %q: scheme must be http or https", baseURL)
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return netx.CheckResponse(resp, http.StatusOK)
}

func (c *HTTPClient) UploadFile(ctx context.Context, savePath string, file Upload) (*models.UploadResult, error) {
	param, err := json.Marshal(map[string]string{"savePath": savePath})
	if err != nil {
		return nil, err
	}
	return c.uploadOne(ctx, "/file/upload-file", param, file)
}

func (c *HTTPClient) UploadNamedFile(ctx context.Context, savePath, saveName string, file Upload) (*models.UploadResult, error) {
	param, err := json.Marshal(map[string]string{"savePath": savePath, "saveName": saveName})
	if err != nil {
		return nil, err
	}
	return c.uploadOne(ctx, "/file/upload-named-file", param, file)
}

func (c *HTTPClient) uploadOne(ctx context.Context, path string, param []byte, file Upload) (*models.UploadResult, error) {
	body, contentType := netx.MultipartBody(
		netx.Part{Field: paramPart, Body: bytes.NewReader(param)},
		netx.Part{Field: "file", FileName: file.Name, Body: file.Body},
	)

	resp, err := c.do(ctx, http.MethodPost, path, body, contentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := netx.CheckResponse(resp, http.StatusOK); err != nil {
		return nil, err
	}

	var res models.UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode upload result: %w", err)
	}
	return &res, nil
}

// UploadFiles sends all files in one request. The per-file results are
// returned for full and partial success; when nothing was stored they are
// returned together with ErrUploadFailed.
func (c *HTTPClient) UploadFiles(ctx context.Context, savePath string, files []Upload) ([]models.UploadResult, error) {
	param, err := json.Marshal(map[string]string{"savePath": savePath})
	if err != nil {
		return nil, err
	}

	parts := make([]netx.Part, 0, len(files)+1)
	parts = append(parts, netx.Part{Field: paramPart, Body: bytes.NewReader(param)})
	for _, f := range files {
		parts = append(parts, netx.Part{Field: "files", FileName: f.Name, Body: f.Body})
	}
	body, contentType := netx.MultipartBody(parts...)

	resp, err := c.do(ctx, http.MethodPost, "/file/upload-files", body, contentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusMultiStatus, http.StatusInternalServerError:
	default:
		return nil, netx.CheckResponse(resp)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upload results: %w", err)
	}

	var results []models.UploadResult
	if err := json.Unmarshal(b, &results); err != nil {
		if resp.StatusCode == http.StatusInternalServerError {
			// a plain error body, not per-file results
			resp.Body = io.NopCloser(bytes.NewReader(b))
			return nil, netx.CheckResponse(resp)
		}
		return nil, fmt.Errorf("decode upload results: %w", err)
	}

	if resp.StatusCode == http.StatusInternalServerError {
		return results, ErrUploadFailed
	}
	return results, nil
}

func (c *HTTPClient) GetFileURL(ctx context.Context, savePath, saveName string) (*models.TempURL, error) {
	path := "/file/get-file-url/" + url.PathEscape(savePath) + "/" + url.PathEscape(saveName)

	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := netx.CheckResponse(resp, http.StatusOK); err != nil {
		return nil, err
	}

	var tu models.TempURL
	if err := json.NewDecoder(resp.Body).Decode(&tu); err != nil {
		return nil, fmt.Errorf("decode temp url: %w", err)
	}
	return &tu, nil
}

// Download returns the file body. The caller closes it.
func (c *HTTPClient) Download(ctx context.Context, savePath, saveName string) (io.ReadCloser, error) {
	b, err := json.Marshal(map[string]string{"savePath": savePath, "saveName": saveName, "fileName": saveName})
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, "/file/download-file", bytes.NewReader(b), "application/json")
	if err != nil {
		return nil, err
	}
	return bodyOrError(resp)
}

// Open fetches a file through a temp URL. Both the bare token and the full
// URL are accepted. Presigned redirects are followed.
func (c *HTTPClient) Open(ctx context.Context, tokenOrURL string) (io.ReadCloser, error) {
	target := tokenOrURL
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = c.baseURL + "/file/temp/" + url.PathEscape(tokenOrURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return bodyOrError(resp)
}

func (c *HTTPClient) Delete(ctx context.Context, savePath, saveName string) error {
	q := url.Values{}
	q.Set("savePath", savePath)
	q.Set("saveName", saveName)

	resp, err := c.do(ctx, http.MethodDelete, "/file/delete-file?"+q.Encode(), nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return netx.CheckResponse(resp, http.StatusOK)
}

func (c *HTTPClient) Revoke(ctx context.Context, token string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/file/temp/"+url.PathEscape(token), nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return netx.CheckResponse(resp, http.StatusNoContent)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		if rc, ok := body.(io.Closer); ok {
			_ = rc.Close()
		}
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return resp, nil
}

func bodyOrError(resp *http.Response) (io.ReadCloser, error) {
	if err := netx.CheckResponse(resp, http.StatusOK); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}
