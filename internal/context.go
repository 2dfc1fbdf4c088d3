package internal

import "context"

// A private type to prevent key collisions in context.
type requestIDKeyType struct{}

// RequestIDKey is the key the request id of an HTTP request is stored under in its context.
var RequestIDKey = requestIDKeyType{}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestID returns the request id carried by ctx, if any.
func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(RequestIDKey).(string)
	return id, ok && id != ""
}
