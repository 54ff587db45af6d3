package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUploadResult_Location(t *testing.T) {
	tests := []struct {
		name string
		r    UploadResult
		want string
	}{
		{name: "nested", r: UploadResult{SavePath: "/docs/2026", SaveName: "a.txt"}, want: "/docs/2026/a.txt"},
		{name: "root", r: UploadResult{SavePath: "/", SaveName: "a.txt"}, want: "/a.txt"},
		{name: "empty path", r: UploadResult{SaveName: "a.txt"}, want: "/a.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Location())
		})
	}
}

func TestUploadResult_Failed(t *testing.T) {
	assert.True(t, UploadResult{Status: UploadStatusFailed}.Failed())
	assert.False(t, UploadResult{Status: UploadStatusOK}.Failed())
	assert.False(t, UploadResult{}.Failed())
}
