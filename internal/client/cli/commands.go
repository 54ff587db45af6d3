package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/dmitrijs2005/filekeeper/internal/client/client"
	"github.com/dmitrijs2005/filekeeper/internal/client/models"
)

var errNoFiles = errors.New("no files given")

// openLocal opens a file for upload and returns its size.
func openLocal(path string) (*os.File, models.LocalFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, models.LocalFile{}, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, models.LocalFile{}, err
	}
	if st.IsDir() {
		f.Close()
		return nil, models.LocalFile{}, fmt.Errorf("%s is a directory", path)
	}
	return f, models.LocalFile{Path: path, Name: filepath.Base(path), Size: st.Size()}, nil
}

// saveLocal writes r into a new file at path. Existing files are never
// overwritten; a partially written file is removed.
func saveLocal(path string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return n, err
	}
	return n, nil
}

func (a *App) printResult(r models.UploadResult) {
	if r.Failed() {
		fmt.Fprintf(a.out, "  %-30s FAILED: %s\n", r.OriginalName, r.Error)
		return
	}
	fmt.Fprintf(a.out, "  %-30s -> %s (%s)\n", r.OriginalName, r.Location(), humanize.Bytes(uint64(r.Size)))
}

func (a *App) Upload(ctx context.Context, args []string) error {
	path, err := a.argOrPrompt(args, 0, "Local file to upload")
	if err != nil {
		return err
	}
	savePath := optionalArg(args, 1, "")

	f, lf, err := openLocal(path)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := a.client.UploadFile(ctx, savePath, client.Upload{Name: lf.Name, Body: f})
	if err != nil {
		return err
	}
	a.printResult(*res)
	return nil
}

func (a *App) UploadNamed(ctx context.Context, args []string) error {
	path, err := a.argOrPrompt(args, 0, "Local file to upload")
	if err != nil {
		return err
	}
	savePath, err := a.argOrPrompt(args, 1, "Save path (directory on the server)")
	if err != nil {
		return err
	}
	saveName, err := a.argOrPrompt(args, 2, "Save name")
	if err != nil {
		return err
	}

	f, lf, err := openLocal(path)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := a.client.UploadNamedFile(ctx, savePath, saveName, client.Upload{Name: lf.Name, Body: f})
	if err != nil {
		return err
	}
	a.printResult(*res)
	return nil
}

func (a *App) UploadMany(ctx context.Context, args []string) error {
	savePath, err := a.argOrPrompt(args, 0, "Save path (directory on the server, empty for today's folder)")
	if err != nil {
		return err
	}

	paths := args[min(1, len(args)):]
	if len(paths) == 0 {
		line, err := GetSimpleText(a.scanner, "Local files, separated by spaces", a.out)
		if err != nil {
			return err
		}
		paths = strings.Fields(line)
	}
	if len(paths) == 0 {
		return errNoFiles
	}

	uploads := make([]client.Upload, 0, len(paths))
	var total int64
	for _, p := range paths {
		f, lf, err := openLocal(p)
		if err != nil {
			return err
		}
		defer f.Close()
		total += lf.Size
		uploads = append(uploads, client.Upload{Name: lf.Name, Body: f})
	}

	fmt.Fprintf(a.out, "Uploading %d files (%s)\n", len(uploads), humanize.Bytes(uint64(total)))

	results, err := a.client.UploadFiles(ctx, savePath, uploads)
	for _, r := range results {
		a.printResult(r)
	}
	return err
}

func (a *App) URL(ctx context.Context, args []string) error {
	savePath, err := a.argOrPrompt(args, 0, "Save path")
	if err != nil {
		return err
	}
	saveName, err := a.argOrPrompt(args, 1, "Save name")
	if err != nil {
		return err
	}

	tu, err := a.client.GetFileURL(ctx, savePath, saveName)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s\n  token: %s\n  expires %s\n", tu.URL, tu.Token, humanize.Time(tu.ExpiresAt))
	return nil
}

func (a *App) Open(ctx context.Context, args []string) error {
	target, err := a.argOrPrompt(args, 0, "Temporary URL or token")
	if err != nil {
		return err
	}
	local, err := a.argOrPrompt(args, 1, "Local file to write")
	if err != nil {
		return err
	}

	rc, err := a.client.Open(ctx, target)
	if err != nil {
		return err
	}
	defer rc.Close()

	return a.save(local, rc)
}

func (a *App) Download(ctx context.Context, args []string) error {
	savePath, err := a.argOrPrompt(args, 0, "Save path")
	if err != nil {
		return err
	}
	saveName, err := a.argOrPrompt(args, 1, "Save name")
	if err != nil {
		return err
	}
	local := optionalArg(args, 2, saveName)

	rc, err := a.client.Download(ctx, savePath, saveName)
	if err != nil {
		return err
	}
	defer rc.Close()

	return a.save(local, rc)
}

func (a *App) save(local string, r io.Reader) error {
	n, err := saveLocal(local, r)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %s to %s\n", humanize.Bytes(uint64(n)), local)
	return nil
}

// Delete accepts "<dir> <name>" or the whole location as one argument.
func (a *App) Delete(ctx context.Context, args []string) error {
	savePath, err := a.argOrPrompt(args, 0, "Save path")
	if err != nil {
		return err
	}
	saveName := optionalArg(args, 1, "")

	if err := a.client.Delete(ctx, savePath, saveName); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted")
	return nil
}

func (a *App) Revoke(ctx context.Context, args []string) error {
	token, err := a.argOrPrompt(args, 0, "Token")
	if err != nil {
		return err
	}
	if err := a.client.Revoke(ctx, token); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Revoked")
	return nil
}
