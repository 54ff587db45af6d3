package logging

import "context"

type requestIDKey struct{}

// ContextWithRequestID returns a copy of ctx carrying the request id. Every
// adapter adds it to entries logged with that context.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id set by ContextWithRequestID or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// contextArgs appends the context-bound attributes to args.
func contextArgs(ctx context.Context, args []any) []any {
	if id := RequestIDFromContext(ctx); id != "" {
		return append(args[:len(args):len(args)], "request_id", id)
	}
	return args
}
