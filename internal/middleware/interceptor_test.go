package middleware

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-salesinsight-service/internal/auth"
	"github.com/fekuna/omnipos-salesinsight-service/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var info = &grpc.UnaryServerInfo{FullMethod: "/salesinsight.v1.SalesInsightService/GetSummary"}

func TestContextInterceptor_PropagatesIDs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	interceptor := ContextInterceptor(logger.FromZap(zap.New(core)))

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
		auth.RequestIDHeader, "req-1",
		auth.AnalystIDHeader, "jdoe",
	))

	var gotRequest, gotAnalyst string
	resp, err := interceptor(ctx, nil, info, func(ctx context.Context, _ any) (any, error) {
		gotRequest = auth.GetRequestID(ctx)
		gotAnalyst = auth.GetAnalystID(ctx)
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Equal(t, "req-1", gotRequest)
	assert.Equal(t, "jdoe", gotAnalyst)

	entries := logs.FilterMessage("rpc").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "OK", fields["code"])
}

func TestContextInterceptor_GeneratesRequestID(t *testing.T) {
	interceptor := ContextInterceptor(logger.NewNop())

	var got string
	_, err := interceptor(context.Background(), nil, info, func(ctx context.Context, _ any) (any, error) {
		got = auth.GetRequestID(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	assert.Len(t, got, 36)
}

func TestContextInterceptor_RecoversPanic(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	interceptor := ContextInterceptor(logger.FromZap(zap.New(core)))

	_, err := interceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Equal(t, 1, logs.FilterMessage("panic in handler").Len())
	assert.Equal(t, 1, logs.FilterMessage("rpc failed").Len())
}

func TestContextInterceptor_ClientErrorsLogAtInfo(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	interceptor := ContextInterceptor(logger.FromZap(zap.New(core)))

	_, err := interceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.NotFound, "customer not found")
	})
	assert.Equal(t, codes.NotFound, status.Code(err))
	entries := logs.FilterMessage("rpc").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "NotFound", entries[0].ContextMap()["code"])
}
