package auth

import (
	"context"

	"google.golang.org/grpc/metadata"
)

const (
	AnalystIDHeader = "x-analyst-id"
	RequestIDHeader = "x-request-id"
)

type ctxKey int

const (
	analystIDKey ctxKey = iota
	requestIDKey
)

// WithAnalystID records who is acting.
func WithAnalystID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, analystIDKey, id)
}

// GetAnalystID returns the acting analyst from the context, falling back to incoming metadata.
func GetAnalystID(ctx context.Context) string {
	if val, ok := ctx.Value(analystIDKey).(string); ok {
		return val
	}
	return fromMetadata(ctx, AnalystIDHeader)
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	if val, ok := ctx.Value(requestIDKey).(string); ok {
		return val
	}
	return fromMetadata(ctx, RequestIDHeader)
}

func fromMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if val := md.Get(key); len(val) > 0 {
			return val[0]
		}
	}
	return ""
}
