// Package rpc carries the shared pieces of the gRPC surface: unary method
// descriptors over protobuf well-known types, JSON-shaped struct payloads and the
// mapping from domain errors to status codes.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/fekuna/omnipos-salesinsight-service/internal/apperror"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Unary builds a method descriptor for a handler taking request type Req.
// newReq must return a fresh, empty request message.
func Unary[Req proto.Message](service, method string, newReq func() Req, call func(srv any, ctx context.Context, req Req) (proto.Message, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			req := newReq()
			if err := dec(req); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv, ctx, req)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
				return call(srv, ctx, req.(Req))
			})
		},
	}
}

// ToStruct converts v through its JSON form, so decimals keep their string
// representation and field names follow the json tags.
func ToStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// ListOf wraps a slice under a single key, since a Struct payload must be an object.
func ListOf(key string, v any) (*structpb.Struct, error) {
	return ToStruct(map[string]any{key: v})
}

func String(req *structpb.Struct, key string) (string, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return "", nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return "", nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", apperror.InvalidInput("%s must be a string", key)
	}
	return s.StringValue, nil
}

func Int(req *structpb.Struct, key string) (int, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return 0, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, apperror.InvalidInput("%s must be a number", key)
	}
	if n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
		return 0, apperror.InvalidInput("%s must be an integer, got %v", key, n.NumberValue)
	}
	return int(n.NumberValue), nil
}

func Bool(req *structpb.Struct, key string) (bool, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return false, nil
	}
	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, apperror.InvalidInput("%s must be a boolean", key)
	}
	return b.BoolValue, nil
}

// Status maps a domain error onto a gRPC status error.
func Status(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var ie *apperror.IntegrityError
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, apperror.ErrDataUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.As(err, &ie):
		return status.Error(codes.DataLoss, fmt.Sprintf("%s check failed, residual %s", ie.Check, ie.Residual.StringFixed(2)))
	case errors.Is(err, apperror.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, apperror.ErrConfig):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
