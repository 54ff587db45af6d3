package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	calls []string
	args  [][]string
	err   error
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return f.err
}

func (f *fakeExec) Upload(_ context.Context, args []string) error {
	return f.record("upload", args)
}
func (f *fakeExec) UploadNamed(_ context.Context, args []string) error {
	return f.record("uploadnamed", args)
}
func (f *fakeExec) UploadMany(_ context.Context, args []string) error {
	return f.record("uploadmany", args)
}
func (f *fakeExec) URL(_ context.Context, args []string) error { return f.record("url", args) }
func (f *fakeExec) Open(_ context.Context, args []string) error {
	return f.record("open", args)
}
func (f *fakeExec) Download(_ context.Context, args []string) error {
	return f.record("download", args)
}
func (f *fakeExec) Delete(_ context.Context, args []string) error {
	return f.record("delete", args)
}
func (f *fakeExec) Revoke(_ context.Context, args []string) error {
	return f.record("revoke", args)
}

func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprint(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	capturePrintln(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"upload ./a.txt /docs",
		"uploadnamed ./a.txt /docs a.txt",
		"uploadmany /docs a b c",
		"",
		"url /docs a.txt",
		"open tok out.bin",
		"download /docs a.txt",
		"rm /docs/a.txt",
		"revoke tok",
		"exit",
		"upload never.txt",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	assert.Equal(t, []string{"upload", "uploadnamed", "uploadmany", "url", "open", "download", "delete", "revoke"}, exec.calls)
	assert.Equal(t, []string{"./a.txt", "/docs"}, exec.args[0])
	assert.Equal(t, []string{"/docs", "a", "b", "c"}, exec.args[2])
	assert.Equal(t, []string{"/docs/a.txt"}, exec.args[6])
}

func TestRunREPL_UnknownCommandAndErrors(t *testing.T) {
	lines := capturePrintln(t)

	input := strings.NewReader("get 42\nrevoke tok\nquit\n")
	exec := &fakeExec{err: errors.New("boom")}

	runREPL(context.Background(), exec, func() string { return "(online)" }, bufio.NewScanner(input))

	assert.Equal(t, []string{"revoke"}, exec.calls)
	assert.Contains(t, *lines, "fk (online)> ")
	assert.Contains(t, *lines, "Unknown command:get")
	assert.Contains(t, *lines, "Error:boom")
	assert.Equal(t, "Bye!", (*lines)[len(*lines)-1])
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	capturePrintln(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("upload a\n")))

	assert.Empty(t, exec.calls)
}
