// Package cli provides the interactive filekeeper command-line client.
//
// It wires configuration, the HTTP API client and an interactive REPL. A
// background watcher pings the server and switches the prompt between
// online and offline.
//
// Key features:
//   - Upload one file (server-chosen or caller-chosen name) or many at once
//   - Issue, open and revoke temporary URLs
//   - Download and delete stored files
//
// Commands take their arguments inline; missing ones are prompted for.
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
