// Package filex holds path helpers shared by the blob store backends.
package filex

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// EnsureDir creates dir (and any parents) on fs and reports a clear error
// when a regular file is in the way.
func EnsureDir(fs afero.Fs, dir string) error {
	info, err := fs.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("mkdir %s: not a directory", dir)
	case err == nil:
		return nil
	case !os.IsNotExist(err):
		return fmt.Errorf("stat %s: %w", dir, err)
	}

	if err := fs.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// ObjectKey maps a (savePath, saveName) pair to a slash separated key with
// no leading slash, e.g. ("/docs", "report.pdf") -> "docs/report.pdf".
// Callers are expected to have rejected traversal segments already.
func ObjectKey(savePath, saveName string) string {
	dir := path.Clean("/" + savePath)
	return strings.TrimPrefix(path.Join(dir, saveName), "/")
}
