// Package client contains the CLI side of the filekeeper HTTP API.
//
// # Overview
//
// The Client interface lists every call the CLI makes: uploads (single,
// named, batch), temp URL issue/open/revoke, download, delete and a health
// ping. HTTPClient implements it over net/http and streams file bodies as
// multipart parts without buffering them in memory.
//
// # Error Handling
//
// Transport failures are wrapped with ErrUnavailable. Unexpected statuses
// come back as *netx.StatusError, which unwraps to common.ErrorNotFound,
// common.ErrorAlreadyExists or common.ErrPayloadTooLarge where it applies.
// A batch upload where the server stored nothing returns its per-file
// results together with ErrUploadFailed.
//
// # Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation.
package client
