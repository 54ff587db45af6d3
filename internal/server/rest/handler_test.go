package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
)

func TestGetFileURL_EncodedSavePath(t *testing.T) {
	exp := time.Date(2026, 10, 17, 12, 10, 0, 0, time.UTC)
	links := &fakeLinks{tu: &models.TempURL{Token: "abc123", ExpiresAt: exp}}
	s := newTestServer(Options{PublicBaseURL: "https://files.example.com/"}, nil, links, nil)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/file/get-file-url/%2Fdocs/report.pdf", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "/docs", links.gotPath)
	assert.Equal(t, "report.pdf", links.gotName)

	var got tempURLResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "abc123", got.Token)
	assert.Equal(t, "https://files.example.com/file/temp/abc123", got.URL)
	assert.True(t, exp.Equal(got.ExpiresAt))
}

func TestGetFileURL_HostFallback(t *testing.T) {
	links := &fakeLinks{tu: &models.TempURL{Token: "t"}}
	s := newTestServer(Options{}, nil, links, nil)

	req := httptest.NewRequest(http.MethodGet, "/file/get-file-url/docs/a.txt", nil)
	req.Host = "localhost:8080"
	rec := serve(s, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"url":"http://localhost:8080/file/temp/t"`)
}

func TestGetFileURL_Errors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{common.ErrorNotFound, http.StatusNotFound},
		{common.ErrInvalidName, http.StatusBadRequest},
		{errors.New("registry down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		s := newTestServer(Options{}, nil, &fakeLinks{err: tt.err}, nil)
		rec := serve(s, httptest.NewRequest(http.MethodGet, "/file/get-file-url/docs/a.txt", nil))
		assert.Equal(t, tt.code, rec.Code, tt.err.Error())

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body.Error)
		if tt.code == http.StatusInternalServerError {
			assert.Empty(t, body.Details)
		}
	}
}

func TestUploadFile(t *testing.T) {
	up := &fakeUploader{res: models.UploadResult{SavePath: "/in", SaveName: "id.txt", OriginalName: "a.txt", Size: 5, Status: models.UploadStatusOK}}
	s := newTestServer(Options{}, up, nil, nil)

	rec := serve(s, multipartRequest(t, "/file/upload-file",
		part{field: "param", body: `{"savePath":"/in"}`},
		part{field: "file", filename: "a.txt", body: "hello"},
	))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "/in", up.gotDir)
	assert.Equal(t, []string{"a.txt"}, up.gotFiles)
	assert.Equal(t, []string{"hello"}, up.gotBody)

	var got models.UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "id.txt", got.SaveName)
}

func TestUploadFile_ParamAsJSONBlob(t *testing.T) {
	up := &fakeUploader{}
	s := newTestServer(Options{}, up, nil, nil)

	rec := serve(s, multipartRequest(t, "/file/upload-file",
		part{field: "param", filename: "blob", body: `{"savePath":"/blob"}`},
		part{field: "file", filename: "a.txt", body: "x"},
	))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/blob", up.gotDir)
}

func TestUploadFile_BadRequests(t *testing.T) {
	s := newTestServer(Options{}, &fakeUploader{}, nil, nil)

	rec := serve(s, multipartRequest(t, "/file/upload-file", part{field: "file", filename: "a.txt", body: "x"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(s, multipartRequest(t, "/file/upload-file", part{field: "param", body: `{"savePath":`}, part{field: "file", filename: "a.txt", body: "x"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(s, multipartRequest(t, "/file/upload-file", part{field: "param", body: `{}`}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/file/upload-file", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, serve(s, req).Code)
}

func TestUpload_ServiceErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{common.ErrEmptyFile, http.StatusBadRequest},
		{common.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge},
		{common.ErrorAlreadyExists, http.StatusConflict},
		{common.ErrInvalidName, http.StatusBadRequest},
		{common.ErrStorageWrite, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		s := newTestServer(Options{}, &fakeUploader{err: tt.err}, nil, nil)
		rec := serve(s, multipartRequest(t, "/file/upload-named-file",
			part{field: "param", body: `{"savePath":"/docs","saveName":"a.txt"}`},
			part{field: "file", filename: "a.txt", body: "x"},
		))
		assert.Equal(t, tt.code, rec.Code, tt.err.Error())
	}
}

func TestUpload_BodyOverCap(t *testing.T) {
	oversize := strings.Repeat("x", 2<<20)

	t.Run("declared length", func(t *testing.T) {
		up := &fakeUploader{}
		s := newTestServer(Options{MaxFileSize: 16}, up, nil, nil)

		rec := serve(s, multipartRequest(t, "/file/upload-named-file",
			part{field: "param", body: `{"savePath":"/docs","saveName":"a.bin"}`},
			part{field: "file", filename: "a.bin", body: oversize},
		))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Empty(t, up.gotName)
	})

	t.Run("streamed body", func(t *testing.T) {
		up := &fakeUploader{}
		s := newTestServer(Options{MaxFileSize: 16}, up, nil, nil)

		req := multipartRequest(t, "/file/upload-file",
			part{field: "param", body: `{"savePath":"/docs"}`},
			part{field: "file", filename: "a.bin", body: oversize},
		)
		req.Body = io.NopCloser(io.MultiReader(req.Body))
		req.ContentLength = -1

		rec := serve(s, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Empty(t, up.gotDir)
	})

	t.Run("within cap", func(t *testing.T) {
		up := &fakeUploader{}
		s := newTestServer(Options{MaxFileSize: 16}, up, nil, nil)

		rec := serve(s, multipartRequest(t, "/file/upload-named-file",
			part{field: "param", body: `{"savePath":"/docs","saveName":"a.bin"}`},
			part{field: "file", filename: "a.bin", body: "small"},
		))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "a.bin", up.gotName)
	})
}

func TestStatusFor_CappedBody(t *testing.T) {
	err := fmt.Errorf("%w: %w", errBadRequest, &http.MaxBytesError{Limit: 16})
	code, _ := statusFor(err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
}

func TestUploadNamedFile(t *testing.T) {
	up := &fakeUploader{}
	s := newTestServer(Options{}, up, nil, nil)

	rec := serve(s, multipartRequest(t, "/file/upload-named-file",
		part{field: "param", body: `{"savePath":"/docs","saveName":"report.pdf"}`},
		part{field: "file", filename: "local.pdf", body: "%PDF"},
	))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/docs", up.gotDir)
	assert.Equal(t, "report.pdf", up.gotName)
}

func TestUploadFiles_StatusCodes(t *testing.T) {
	ok := models.UploadResult{Status: models.UploadStatusOK, Size: 1}
	bad := models.UploadResult{Status: models.UploadStatusFailed, Error: "storage write error", Err: common.ErrStorageWrite}

	tests := []struct {
		name    string
		results []models.UploadResult
		code    int
	}{
		{"all ok", []models.UploadResult{ok, ok, ok}, http.StatusOK},
		{"partial", []models.UploadResult{ok, bad, ok}, http.StatusMultiStatus},
		{"all failed", []models.UploadResult{bad, bad, bad}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &fakeUploader{batch: tt.results}
			s := newTestServer(Options{}, up, nil, nil)

			rec := serve(s, multipartRequest(t, "/file/upload-files",
				part{field: "param", body: `{"savePath":"/batch"}`},
				part{field: "files", filename: "one.txt", body: "1"},
				part{field: "files", filename: "two.txt", body: "2"},
				part{field: "files", filename: "three.txt", body: "3"},
			))
			require.Equal(t, tt.code, rec.Code)
			assert.Equal(t, []string{"one.txt", "two.txt", "three.txt"}, up.gotFiles)

			var got []models.UploadResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Len(t, got, 3)
		})
	}
}

func TestUploadFiles_Rejected(t *testing.T) {
	s := newTestServer(Options{}, &fakeUploader{err: common.ErrPayloadTooLarge}, nil, nil)
	rec := serve(s, multipartRequest(t, "/file/upload-files",
		part{field: "param", body: `{"savePath":"/batch"}`},
		part{field: "files", filename: "one.txt", body: "1"},
	))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestDeleteFile(t *testing.T) {
	tests := []struct {
		query      string
		path, name string
	}{
		{"?savePath=/docs&saveName=report.pdf", "/docs", "report.pdf"},
		{"?savePath=/docs/report.pdf", "/docs", "report.pdf"},
		{"?savePath=%2Fdocs%2Freport.pdf", "/docs", "report.pdf"},
	}
	for _, tt := range tests {
		files := &fakeFiles{}
		s := newTestServer(Options{}, nil, nil, files)

		rec := serve(s, httptest.NewRequest(http.MethodDelete, "/file/delete-file"+tt.query, nil))
		require.Equal(t, http.StatusOK, rec.Code, tt.query)
		assert.Empty(t, rec.Body.String())
		assert.Equal(t, tt.path, files.gotPath)
		assert.Equal(t, tt.name, files.gotName)
	}
}

func TestDeleteFile_Invalid(t *testing.T) {
	s := newTestServer(Options{}, nil, nil, &fakeFiles{err: common.ErrInvalidName})
	rec := serve(s, httptest.NewRequest(http.MethodDelete, "/file/delete-file?savePath=../x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadFile_LegacyHeaders(t *testing.T) {
	files := &fakeFiles{body: "%PDF-1.4", info: models.ObjectInfo{ContentType: "application/pdf"},
		only: &models.StoredFile{SavePath: "/docs", SaveName: "report.pdf"}}
	s := newTestServer(Options{}, nil, nil, files)

	req := httptest.NewRequest(http.MethodPost, "/file/download-file", strings.NewReader(`{"savePath":"/docs","fileName":"report.pdf"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(s, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.4", rec.Body.String())
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "filename=report.pdf", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, common.DownloadCookie, rec.Header().Get("Set-Cookie"))
	assert.Equal(t, "/docs", files.gotPath)
	assert.Equal(t, "report.pdf", files.gotName)
}

func TestDownloadFile_SaveNameDiffersFromFileName(t *testing.T) {
	files := &fakeFiles{body: "x"}
	s := newTestServer(Options{}, nil, nil, files)

	req := httptest.NewRequest(http.MethodPost, "/file/download-file",
		strings.NewReader(`{"savePath":"/in","saveName":"0b7c.pdf","fileName":"Quarterly.pdf"}`))
	rec := serve(s, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0b7c.pdf", files.gotName)
	assert.Equal(t, "filename=Quarterly.pdf", rec.Header().Get("Content-Disposition"))
}

func TestDownloadFile_Errors(t *testing.T) {
	s := newTestServer(Options{}, nil, nil, &fakeFiles{err: common.ErrorNotFound})

	rec := serve(s, httptest.NewRequest(http.MethodPost, "/file/download-file", strings.NewReader(`{"savePath":"/docs","fileName":"gone.pdf"}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodPost, "/file/download-file", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodPost, "/file/download-file", strings.NewReader(`{"savePath":"/docs/"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadFile_FullLocationInSavePath(t *testing.T) {
	files := &fakeFiles{body: "x", only: &models.StoredFile{SavePath: "/docs", SaveName: "report.pdf"}}
	s := newTestServer(Options{}, nil, nil, files)

	rec := serve(s, httptest.NewRequest(http.MethodPost, "/file/download-file", strings.NewReader(`{"savePath":"/docs/report.pdf"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/docs", files.gotPath)
	assert.Equal(t, "report.pdf", files.gotName)
	assert.Equal(t, "filename=report.pdf", rec.Header().Get("Content-Disposition"))
}

func TestFetchTemp_Streams(t *testing.T) {
	links := &fakeLinks{file: models.StoredFile{SavePath: "/docs", SaveName: "report.pdf"}}
	files := &fakeFiles{body: "%PDF", info: models.ObjectInfo{ContentType: "application/pdf"}}
	s := newTestServer(Options{}, nil, links, files)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/file/temp/tok", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok", links.gotToken)
	assert.Equal(t, "%PDF", rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "filename=report.pdf", rec.Header().Get("Content-Disposition"))
}

func TestFetchTemp_Redirect(t *testing.T) {
	links := &fakeLinks{file: models.StoredFile{SavePath: "/docs", SaveName: "report.pdf"}}
	files := &fakeFiles{presignURL: "https://bucket.s3/"}

	s := newTestServer(Options{PresignRedirect: true}, nil, links, files)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/file/temp/tok", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://bucket.s3/docs/report.pdf", rec.Header().Get("Location"))

	// without the option the file is proxied
	s = newTestServer(Options{}, nil, links, files)
	rec = serve(s, httptest.NewRequest(http.MethodGet, "/file/temp/tok", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFetchTemp_Unknown(t *testing.T) {
	s := newTestServer(Options{}, nil, &fakeLinks{err: common.ErrTokenExpiredOrUnknown}, nil)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/file/temp/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRevokeTemp(t *testing.T) {
	links := &fakeLinks{}
	s := newTestServer(Options{}, nil, links, nil)

	rec := serve(s, httptest.NewRequest(http.MethodDelete, "/file/temp/tok", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "tok", links.revoked)
}
