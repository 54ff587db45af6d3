package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/filekeeper/internal/common"
)

// errBadRequest marks malformed requests: missing parts, bad JSON.
var errBadRequest = errors.New("bad request")

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// statusFor maps a service error to its HTTP status and a short title. A
// body cut off by the size cap surfaces through the multipart parser, so it
// is checked before the bad request marker.
func statusFor(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, "file too large"
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad request"
	case errors.Is(err, common.ErrInvalidName):
		return http.StatusBadRequest, "invalid name"
	case errors.Is(err, common.ErrEmptyFile):
		return http.StatusBadRequest, "empty file"
	case errors.Is(err, common.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "file too large"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, "file already exists"
	case errors.Is(err, common.ErrTokenExpiredOrUnknown):
		return http.StatusNotFound, "temp url expired or unknown"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "file not found"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// fail writes the error response. Internal errors are logged and their
// details are not sent to the caller.
func (s *HTTPServer) fail(c *gin.Context, err error) {
	status, title := statusFor(err)
	resp := ErrorResponse{Error: title}
	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request error", "error", err)
	} else {
		resp.Details = err.Error()
		s.logger.Warn(c.Request.Context(), title, "error", err)
	}
	c.AbortWithStatusJSON(status, resp)
}
