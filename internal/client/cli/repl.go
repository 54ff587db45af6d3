package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Upload(ctx context.Context, args []string) error
	UploadNamed(ctx context.Context, args []string) error
	UploadMany(ctx context.Context, args []string) error
	URL(ctx context.Context, args []string) error
	Open(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Revoke(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  upload <local file> [save path]                 upload, server picks the name
  uploadnamed <local file> <save path> <name>     upload under a given name
  uploadmany <save path> <local file>...          upload several files at once
  url <save path> <name>                          issue a temporary URL
  open <token|url> [local file]                   fetch a file via temporary URL
  download <save path> <name> [local file]        download a stored file
  delete <save path> [name]                       delete a stored file
  revoke <token>                                  revoke a temporary URL
  exit | quit                                     leave the program`

// runREPL starts a simple read–eval–print loop for the filekeeper CLI.
//
// It reads a line from the provided scanner, splits it into a command and
// its arguments, and dispatches to methods on 'a'. Unknown commands are
// reported back to the user. The loop exits on scanner EOF, on ctx
// cancellation, or when the user types "exit" or "quit".
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("fk %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText)

		case "upload":
			err = a.Upload(ctx, args)

		case "uploadnamed":
			err = a.UploadNamed(ctx, args)

		case "uploadmany":
			err = a.UploadMany(ctx, args)

		case "url":
			err = a.URL(ctx, args)

		case "open":
			err = a.Open(ctx, args)

		case "download":
			err = a.Download(ctx, args)

		case "delete", "rm":
			err = a.Delete(ctx, args)

		case "revoke":
			err = a.Revoke(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
