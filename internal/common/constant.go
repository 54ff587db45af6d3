package common

// RequestIDHeaderName carries the request id between the client and the
// HTTP server; the server generates one when it is missing.
const RequestIDHeaderName = "X-Request-Id"

// DownloadCookie is set on every file download response. Browser clients
// poll for it to detect that a download has started.
const DownloadCookie = "fileDownload=true; path=/"
