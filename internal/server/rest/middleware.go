package rest

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/logging"
)

// requestID keeps the caller's request id or assigns a new one, echoes it
// in the response and binds it to the request context so every log entry
// of the request carries it.
func (s *HTTPServer) requestID(c *gin.Context) {
	id := c.GetHeader(common.RequestIDHeaderName)
	if id == "" {
		id = uuid.NewString()
	}
	c.Request = c.Request.WithContext(logging.ContextWithRequestID(c.Request.Context(), id))
	c.Header(common.RequestIDHeaderName, id)
	c.Next()
}

// accessLog logs every request and feeds the http metrics. Unmatched paths
// share one route label to keep cardinality bounded.
func (s *HTTPServer) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	elapsed := time.Since(start)

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	status := c.Writer.Status()
	s.metrics.ObserveHTTP(c.Request.Method, route, status, elapsed)

	args := []any{
		"method", c.Request.Method,
		"route", route,
		"status", status,
		"duration", elapsed,
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", args...)
		return
	}
	s.logger.Info(c.Request.Context(), "request", args...)
}

func (s *HTTPServer) recover(c *gin.Context, rec any) {
	s.logger.Error(c.Request.Context(), "panic in handler", "panic", rec)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// limitBody refuses single-file uploads whose body cannot fit the file
// limit. A declared length is checked up front; streamed bodies are cut off
// by http.MaxBytesReader.
func (s *HTTPServer) limitBody(c *gin.Context) {
	if s.opts.MaxFileSize <= 0 {
		c.Next()
		return
	}
	limit := s.opts.MaxFileSize + multipartOverhead
	if c.Request.ContentLength > limit {
		s.fail(c, fmt.Errorf("%w: request body of %d bytes exceeds %d", common.ErrPayloadTooLarge, c.Request.ContentLength, limit))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	c.Next()
}
