package services

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrijs2005/filekeeper/internal/server/models"
)

var tracer = otel.Tracer("github.com/dmitrijs2005/filekeeper/internal/server/services")

func fileAttrs(f models.StoredFile) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.String("file.save_path", f.SavePath),
		attribute.String("file.save_name", f.SaveName),
	)
}

// endSpan records err on span (if any) and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
