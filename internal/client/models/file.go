// Package models defines the payloads the CLI exchanges with the filekeeper
// server.
package models

import "time"

// Upload result statuses as reported by the server.
const (
	UploadStatusOK     = "ok"
	UploadStatusFailed = "failed"
)

// UploadResult is the server's answer for one uploaded file.
type UploadResult struct {
	SavePath     string `json:"savePath"`
	SaveName     string `json:"saveName"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	Status       string `json:"status,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Failed reports whether the server could not store the file.
func (r UploadResult) Failed() bool {
	return r.Status == UploadStatusFailed
}

// Location joins SavePath and SaveName the way the server expects it in
// delete requests.
func (r UploadResult) Location() string {
	if r.SavePath == "" || r.SavePath == "/" {
		return "/" + r.SaveName
	}
	return r.SavePath + "/" + r.SaveName
}

// TempURL is an issued temporary link.
type TempURL struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LocalFile is a file picked from disk for upload.
type LocalFile struct {
	Path string
	Name string
	Size int64
}
