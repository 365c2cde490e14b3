package middleware

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-salesinsight-service/internal/auth"
	"github.com/fekuna/omnipos-salesinsight-service/internal/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ContextInterceptor tags every call with a request id, echoes it back in the
// response header and logs the outcome. A panicking handler becomes codes.Internal.
func ContextInterceptor(log logger.ZapLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		start := time.Now()

		requestID := auth.GetRequestID(ctx)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = auth.WithRequestID(ctx, requestID)
		if analyst := auth.GetAnalystID(ctx); analyst != "" {
			ctx = auth.WithAnalystID(ctx, analyst)
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(auth.RequestIDHeader, requestID))

		defer func() {
			if r := recover(); r != nil {
				log.Error("panic in handler",
					zap.String("method", info.FullMethod),
					zap.String("request_id", requestID),
					zap.Any("panic", r),
				)
				err = status.Error(codes.Internal, "internal error")
			}

			fields := []zap.Field{
				zap.String("method", info.FullMethod),
				zap.String("request_id", requestID),
				zap.Duration("took", time.Since(start)),
				zap.String("code", status.Code(err).String()),
			}
			if err != nil && status.Code(err) == codes.Internal {
				log.Error("rpc failed", append(fields, zap.Error(err))...)
				return
			}
			log.Info("rpc", fields...)
		}()

		return handler(ctx, req)
	}
}
