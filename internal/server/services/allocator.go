// Package services implements the filekeeper core: path allocation, the
// upload pipeline, temp URL issuance and the download/delete gateway.
package services

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/google/uuid"
)

const (
	maxNameLength = 255
	maxExtLength  = 16
)

// PathAllocator derives where an incoming upload is stored. It never
// touches the blob store.
type PathAllocator struct {
	now   func() time.Time
	newID func() string
}

func NewPathAllocator() *PathAllocator {
	return &PathAllocator{now: time.Now, newID: uuid.NewString}
}

// Allocate returns the location for an upload into targetDir.
//
// In auto mode callerName is the client's original file name and only its
// extension is kept: "<uuid><ext>". In named mode callerName becomes the
// save name verbatim once it passes ValidateName. An empty targetDir maps to
// a /YYYY/MM/DD directory of the current UTC date.
func (a *PathAllocator) Allocate(targetDir, callerName string, autoNamed bool) (models.StoredFile, error) {
	if strings.TrimSpace(targetDir) == "" {
		targetDir = a.now().UTC().Format("2006/01/02")
	}
	dir, err := ValidateDir(targetDir)
	if err != nil {
		return models.StoredFile{}, err
	}

	if autoNamed {
		return models.StoredFile{SavePath: dir, SaveName: a.newID() + extension(callerName)}, nil
	}

	if err := ValidateName(callerName); err != nil {
		return models.StoredFile{}, err
	}
	return models.StoredFile{SavePath: dir, SaveName: callerName}, nil
}

// ValidateDir rejects blank directories, traversal segments, backslashes
// and NUL bytes, and returns the cleaned directory. The result always
// starts with a slash, so "docs" and "/docs" name the same directory.
func ValidateDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("%w: save path is blank", common.ErrInvalidName)
	}
	if strings.ContainsAny(dir, "\\\x00") {
		return "", fmt.Errorf("%w: save path %q contains forbidden characters", common.ErrInvalidName, dir)
	}
	for _, seg := range strings.Split(dir, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: save path %q escapes its root", common.ErrInvalidName, dir)
		}
	}

	return path.Clean("/" + dir), nil
}

// ValidateName checks a caller-supplied file name.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: file name is blank", common.ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: file name %q is reserved", common.ErrInvalidName, name)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w: file name %q contains a path separator", common.ErrInvalidName, name)
	case len(name) > maxNameLength:
		return fmt.Errorf("%w: file name is longer than %d bytes", common.ErrInvalidName, maxNameLength)
	}
	return nil
}

// ParseLocation validates a (savePath, saveName) pair received from a
// caller and returns it in canonical form.
func ParseLocation(savePath, saveName string) (models.StoredFile, error) {
	dir, err := ValidateDir(savePath)
	if err != nil {
		return models.StoredFile{}, err
	}
	if err := ValidateName(saveName); err != nil {
		return models.StoredFile{}, err
	}
	return models.StoredFile{SavePath: dir, SaveName: saveName}, nil
}

// SplitSavePath splits "dir/name" into its directory and base name; it is
// used when a caller sends the whole location in savePath.
func SplitSavePath(p string) (string, string) {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return "/", p
	}
	dir := p[:i]
	if dir == "" {
		dir = "/"
	}
	return dir, p[i+1:]
}

// extension returns the lower-cased extension of a client file name, which
// may carry a Windows or Unix directory prefix. Odd extensions are dropped.
func extension(original string) string {
	base := original
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	ext := strings.ToLower(path.Ext(base))
	if ext == "." || len(ext) > maxExtLength || strings.ContainsAny(ext, " \x00") {
		return ""
	}
	return ext
}
