// Package netx holds small HTTP client helpers shared by the CLI: streaming
// multipart bodies and status checking.
package netx

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/dmitrijs2005/filekeeper/internal/common"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 4 << 10

// Part is one multipart part. Parts without FileName are sent as plain
// form fields.
type Part struct {
	Field    string
	FileName string
	Body     io.Reader
}

// MultipartBody streams parts as a multipart/form-data body without
// buffering them. It returns the body and its Content-Type. Errors while
// reading a part surface on the reader side.
func MultipartBody(parts ...Part) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeParts(mw, parts))
	}()

	return pr, mw.FormDataContentType()
}

func writeParts(mw *multipart.Writer, parts []Part) error {
	for _, p := range parts {
		var (
			w   io.Writer
			err error
		)
		if p.FileName == "" {
			w, err = mw.CreateFormField(p.Field)
		} else {
			w, err = mw.CreateFormFile(p.Field, p.FileName)
		}
		if err != nil {
			return err
		}
		if _, err := io.Copy(w, p.Body); err != nil {
			return fmt.Errorf("write part %q: %w", p.Field, err)
		}
	}
	return mw.Close()
}

// StatusError is an unexpected HTTP status with the server's message.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return "request failed: " + e.Status
	}
	return fmt.Sprintf("request failed: %s; %s", e.Status, e.Message)
}

// Unwrap maps well-known statuses to the shared sentinel errors so callers
// can use errors.Is.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrorAlreadyExists
	case http.StatusRequestEntityTooLarge:
		return common.ErrPayloadTooLarge
	default:
		return nil
	}
}

// CheckResponse returns nil when resp has one of the expected statuses and
// a *StatusError otherwise. The body is not consumed on success.
func CheckResponse(resp *http.Response, expected ...int) error {
	if slices.Contains(expected, resp.StatusCode) {
		return nil
	}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Code: resp.StatusCode, Status: resp.Status, Message: errorMessage(b)}
}

// errorMessage extracts {"error","details"} bodies and falls back to the raw
// text.
func errorMessage(b []byte) string {
	var body struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(b, &body); err == nil && body.Error != "" {
		if body.Details != "" {
			return body.Error + ": " + body.Details
		}
		return body.Error
	}
	return strings.TrimSpace(string(b))
}
