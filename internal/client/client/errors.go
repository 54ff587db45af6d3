package client

import "errors"

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUploadFailed = errors.New("no file was stored")
)
