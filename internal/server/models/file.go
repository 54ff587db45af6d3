// Package models defines the data types shared by the storage, registry and
// service layers of the filekeeper server.
package models

import (
	"io"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/filex"
)

// StoredFile identifies exactly one blob. The pair is never reused for
// different content without an explicit delete first.
type StoredFile struct {
	// SavePath is the directory-like part, e.g. "/docs".
	SavePath string `json:"savePath"`
	// SaveName is the file base name inside SavePath, e.g. "report.pdf".
	SaveName string `json:"saveName"`
}

// Key returns the slash separated storage key of the file.
func (f StoredFile) Key() string {
	return filex.ObjectKey(f.SavePath, f.SaveName)
}

// ObjectInfo is what the blob store knows about a stored file.
type ObjectInfo struct {
	File        StoredFile
	Size        int64
	ContentType string
	ModTime     time.Time
}

// Payload is one incoming file of an upload request. Body is consumed once.
type Payload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Upload result statuses reported per file.
const (
	UploadStatusOK     = "ok"
	UploadStatusFailed = "failed"
)

// UploadResult describes where a payload ended up.
type UploadResult struct {
	SavePath     string `json:"savePath"`
	SaveName     string `json:"saveName"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	Status       string `json:"status,omitempty"`
	Error        string `json:"error,omitempty"`

	// Err keeps the typed failure for callers that need errors.Is.
	Err error `json:"-"`
}

// File returns the stored location of the result.
func (r UploadResult) File() StoredFile {
	return StoredFile{SavePath: r.SavePath, SaveName: r.SaveName}
}
