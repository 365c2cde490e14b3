package handler

import (
	"context"

	"github.com/fekuna/omnipos-salesinsight-service/internal/logger"
	"github.com/fekuna/omnipos-salesinsight-service/internal/rpc"
	"github.com/fekuna/omnipos-salesinsight-service/internal/sales"
	"github.com/fekuna/omnipos-salesinsight-service/internal/sales/dto"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "salesinsight.v1.SalesInsightService"

type SalesInsightServer interface {
	ListDecliners(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListGrowers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetOnePager(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	ExportChart(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	GetSummary(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

func newStruct() *structpb.Struct { return &structpb.Struct{} }

func newString() *wrapperspb.StringValue { return &wrapperspb.StringValue{} }

func newEmpty() *emptypb.Empty { return &emptypb.Empty{} }

func server(srv any) SalesInsightServer { return srv.(SalesInsightServer) }

// ServiceDesc is hand-written over well-known types. No .proto file backs it,
// so Metadata stays empty and the server does not offer reflection.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SalesInsightServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "ListDecliners", newStruct, func(srv any, ctx context.Context, req *structpb.Struct) (proto.Message, error) {
			return server(srv).ListDecliners(ctx, req)
		}),
		rpc.Unary(ServiceName, "ListGrowers", newStruct, func(srv any, ctx context.Context, req *structpb.Struct) (proto.Message, error) {
			return server(srv).ListGrowers(ctx, req)
		}),
		rpc.Unary(ServiceName, "GetOnePager", newString, func(srv any, ctx context.Context, req *wrapperspb.StringValue) (proto.Message, error) {
			return server(srv).GetOnePager(ctx, req)
		}),
		rpc.Unary(ServiceName, "ExportChart", newString, func(srv any, ctx context.Context, req *wrapperspb.StringValue) (proto.Message, error) {
			return server(srv).ExportChart(ctx, req)
		}),
		rpc.Unary(ServiceName, "GetSummary", newEmpty, func(srv any, ctx context.Context, req *emptypb.Empty) (proto.Message, error) {
			return server(srv).GetSummary(ctx, req)
		}),
	},
}

func RegisterSalesInsightServer(s grpc.ServiceRegistrar, srv SalesInsightServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type SalesHandler struct {
	uc     sales.UseCase
	logger logger.ZapLogger
}

func NewSalesHandler(uc sales.UseCase, log logger.ZapLogger) *SalesHandler {
	return &SalesHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *SalesHandler) ListDecliners(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input, err := listInput(req)
	if err != nil {
		return nil, rpc.Status(err)
	}
	rep, err := h.uc.ListDecliners(ctx, input)
	if err != nil {
		h.logger.Error("failed to list decliners", zap.Error(err))
		return nil, rpc.Status(err)
	}
	return h.reply(rep)
}

func (h *SalesHandler) ListGrowers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input, err := listInput(req)
	if err != nil {
		return nil, rpc.Status(err)
	}
	rep, err := h.uc.ListGrowers(ctx, input)
	if err != nil {
		h.logger.Error("failed to list growers", zap.Error(err))
		return nil, rpc.Status(err)
	}
	return h.reply(rep)
}

func (h *SalesHandler) GetOnePager(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	op, err := h.uc.GetOnePager(ctx, req.GetValue())
	if err != nil {
		h.logger.Warn("failed to build one-pager", zap.String("customer_id", req.GetValue()), zap.Error(err))
		return nil, rpc.Status(err)
	}
	return h.reply(op)
}

func (h *SalesHandler) ExportChart(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	chart, err := h.uc.ExportChart(ctx, req.GetValue())
	if err != nil {
		h.logger.Warn("failed to export chart", zap.String("customer_id", req.GetValue()), zap.Error(err))
		return nil, rpc.Status(err)
	}
	return h.reply(chart)
}

func (h *SalesHandler) GetSummary(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	s, err := h.uc.GetSummary(ctx)
	if err != nil {
		h.logger.Error("failed to build summary", zap.Error(err))
		return nil, rpc.Status(err)
	}
	return h.reply(s)
}

func (h *SalesHandler) reply(v any) (*structpb.Struct, error) {
	s, err := rpc.ToStruct(v)
	if err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
		return nil, rpc.Status(err)
	}
	return s, nil
}

func listInput(req *structpb.Struct) (*dto.ListInput, error) {
	filter, err := rpc.String(req, "filter")
	if err != nil {
		return nil, err
	}
	limit, err := rpc.Int(req, "limit")
	if err != nil {
		return nil, err
	}
	return &dto.ListInput{Filter: filter, Limit: limit}, nil
}
