package observability

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/dmitrijs2005/filekeeper/internal/logging"
)

const serviceName = "filekeeper"

// InitTracerProvider exports spans as pretty-printed JSON to w and installs
// the provider globally. Swap the exporter for OTLP in real deployments.
func InitTracerProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint(), stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	)
	otel.SetTracerProvider(tp)
	return tp, nil
}

// ShutdownTracerProvider flushes pending spans.
func ShutdownTracerProvider(ctx context.Context, tp *sdktrace.TracerProvider, logger logging.Logger) {
	if err := tp.Shutdown(ctx); err != nil {
		logger.Error(ctx, "failed to shutdown tracer provider", "error", err)
	}
}
