package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/filex"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

// LocalStore keeps blobs as regular files below the root of fs.
type LocalStore struct {
	fs afero.Fs
}

// NewLocalStore uses fs as-is; tests pass afero.NewMemMapFs().
func NewLocalStore(fs afero.Fs) *LocalStore {
	return &LocalStore{fs: fs}
}

// NewLocalStoreAt roots the store at dir on the OS filesystem, creating the
// directory if needed.
func NewLocalStoreAt(dir string) (*LocalStore, error) {
	osfs := afero.NewOsFs()
	if err := filex.EnsureDir(osfs, dir); err != nil {
		return nil, err
	}
	return NewLocalStore(afero.NewBasePathFs(osfs, dir)), nil
}

func (s *LocalStore) path(file models.StoredFile) string {
	return "/" + file.Key()
}

// Put creates the blob exclusively and removes what was written if the copy
// fails or ctx is cancelled.
func (s *LocalStore) Put(ctx context.Context, file models.StoredFile, r io.Reader, _ int64, _ string) (int64, error) {
	p := s.path(file)

	if err := filex.EnsureDir(s.fs, path.Dir(p)); err != nil {
		return 0, err
	}

	f, err := s.fs.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, common.ErrorAlreadyExists
		}
		return 0, fmt.Errorf("create %s: %w", p, err)
	}

	n, err := io.Copy(f, &ctxReader{ctx: ctx, r: r})
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", p, cerr)
	}
	if err != nil {
		_ = s.fs.Remove(p)
		return n, err
	}
	return n, nil
}

func (s *LocalStore) Get(ctx context.Context, file models.StoredFile) (io.ReadCloser, models.ObjectInfo, error) {
	info, err := s.Stat(ctx, file)
	if err != nil {
		return nil, models.ObjectInfo{}, err
	}

	f, err := s.fs.Open(s.path(file))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, models.ObjectInfo{}, common.ErrorNotFound
		}
		return nil, models.ObjectInfo{}, fmt.Errorf("open %s: %w", s.path(file), err)
	}

	mtype, err := mimetype.DetectReader(f)
	if err == nil {
		info.ContentType = mtype.String()
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, models.ObjectInfo{}, fmt.Errorf("rewind %s: %w", s.path(file), err)
	}

	return f, info, nil
}

func (s *LocalStore) Stat(ctx context.Context, file models.StoredFile) (models.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return models.ObjectInfo{}, err
	}

	fi, err := s.fs.Stat(s.path(file))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.ObjectInfo{}, common.ErrorNotFound
		}
		return models.ObjectInfo{}, fmt.Errorf("stat %s: %w", s.path(file), err)
	}
	if fi.IsDir() {
		return models.ObjectInfo{}, common.ErrorNotFound
	}

	return models.ObjectInfo{File: file, Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

// Delete removes a regular file. Missing files and directories are left
// alone without error.
func (s *LocalStore) Delete(ctx context.Context, file models.StoredFile) error {
	if _, err := s.Stat(ctx, file); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}
	if err := s.fs.Remove(s.path(file)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", s.path(file), err)
	}
	return nil
}
