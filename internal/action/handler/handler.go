package handler

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-salesinsight-service/internal/action"
	"github.com/fekuna/omnipos-salesinsight-service/internal/action/dto"
	"github.com/fekuna/omnipos-salesinsight-service/internal/auth"
	"github.com/fekuna/omnipos-salesinsight-service/internal/logger"
	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
	"github.com/fekuna/omnipos-salesinsight-service/internal/rpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "salesinsight.v1.ActionService"

type ActionServer interface {
	AddAction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetAction(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	ListActions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateActionStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DeleteAction(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error)
	CountActions(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

func newStruct() *structpb.Struct { return &structpb.Struct{} }

func newString() *wrapperspb.StringValue { return &wrapperspb.StringValue{} }

func newEmpty() *emptypb.Empty { return &emptypb.Empty{} }

func server(srv any) ActionServer { return srv.(ActionServer) }

// ServiceDesc is hand-written over well-known types. No .proto file backs it,
// so Metadata stays empty and the server does not offer reflection.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ActionServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "AddAction", newStruct, func(srv any, ctx context.Context, req *structpb.Struct) (proto.Message, error) {
			return server(srv).AddAction(ctx, req)
		}),
		rpc.Unary(ServiceName, "GetAction", newString, func(srv any, ctx context.Context, req *wrapperspb.StringValue) (proto.Message, error) {
			return server(srv).GetAction(ctx, req)
		}),
		rpc.Unary(ServiceName, "ListActions", newStruct, func(srv any, ctx context.Context, req *structpb.Struct) (proto.Message, error) {
			return server(srv).ListActions(ctx, req)
		}),
		rpc.Unary(ServiceName, "UpdateActionStatus", newStruct, func(srv any, ctx context.Context, req *structpb.Struct) (proto.Message, error) {
			return server(srv).UpdateActionStatus(ctx, req)
		}),
		rpc.Unary(ServiceName, "DeleteAction", newString, func(srv any, ctx context.Context, req *wrapperspb.StringValue) (proto.Message, error) {
			return server(srv).DeleteAction(ctx, req)
		}),
		rpc.Unary(ServiceName, "CountActions", newEmpty, func(srv any, ctx context.Context, req *emptypb.Empty) (proto.Message, error) {
			return server(srv).CountActions(ctx, req)
		}),
	},
}

func RegisterActionServer(s grpc.ServiceRegistrar, srv ActionServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type ActionHandler struct {
	uc     action.UseCase
	now    func() time.Time
	logger logger.ZapLogger
}

func NewActionHandler(uc action.UseCase, log logger.ZapLogger) *ActionHandler {
	return &ActionHandler{
		uc:     uc,
		now:    time.Now,
		logger: log,
	}
}

func (h *ActionHandler) AddAction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	customerID, err := rpc.String(req, "customer_id")
	if err != nil {
		return nil, rpc.Status(err)
	}
	description, err := rpc.String(req, "description")
	if err != nil {
		return nil, rpc.Status(err)
	}

	a, err := h.uc.AddAction(ctx, &dto.AddActionInput{
		CustomerID:  customerID,
		Description: description,
		CreatedBy:   auth.GetAnalystID(ctx),
	})
	if err != nil {
		h.logger.Error("failed to add action", zap.String("customer_id", customerID), zap.Error(err))
		return nil, rpc.Status(err)
	}
	return h.reply(a)
}

func (h *ActionHandler) GetAction(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	a, err := h.uc.GetAction(ctx, req.GetValue())
	if err != nil {
		h.logger.Warn("failed to get action", zap.String("id", req.GetValue()), zap.Error(err))
		return nil, rpc.Status(err)
	}
	return h.reply(a)
}

func (h *ActionHandler) ListActions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	filters, err := h.listFilters(req)
	if err != nil {
		return nil, rpc.Status(err)
	}
	actions, err := h.uc.ListActions(ctx, filters)
	if err != nil {
		h.logger.Error("failed to list actions", zap.Error(err))
		return nil, rpc.Status(err)
	}
	if actions == nil {
		actions = []model.Action{}
	}
	out, err := rpc.ListOf("actions", actions)
	if err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
		return nil, rpc.Status(err)
	}
	return out, nil
}

func (h *ActionHandler) UpdateActionStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := rpc.String(req, "id")
	if err != nil {
		return nil, rpc.Status(err)
	}
	st, err := rpc.String(req, "status")
	if err != nil {
		return nil, rpc.Status(err)
	}

	a, err := h.uc.UpdateStatus(ctx, id, model.ActionStatus(st))
	if err != nil {
		h.logger.Warn("failed to update action status", zap.String("id", id), zap.Error(err))
		return nil, rpc.Status(err)
	}
	return h.reply(a)
}

func (h *ActionHandler) DeleteAction(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := h.uc.DeleteAction(ctx, req.GetValue()); err != nil {
		h.logger.Warn("failed to delete action", zap.String("id", req.GetValue()), zap.Error(err))
		return nil, rpc.Status(err)
	}
	return &emptypb.Empty{}, nil
}

func (h *ActionHandler) CountActions(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	counts, err := h.uc.CountByStatus(ctx)
	if err != nil {
		h.logger.Error("failed to count actions", zap.Error(err))
		return nil, rpc.Status(err)
	}
	return h.reply(counts)
}

func (h *ActionHandler) reply(v any) (*structpb.Struct, error) {
	s, err := rpc.ToStruct(v)
	if err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
		return nil, rpc.Status(err)
	}
	return s, nil
}

func (h *ActionHandler) listFilters(req *structpb.Struct) (*dto.ActionFilters, error) {
	customerID, err := rpc.String(req, "customer_id")
	if err != nil {
		return nil, err
	}
	st, err := rpc.String(req, "status")
	if err != nil {
		return nil, err
	}
	overdue, err := rpc.Bool(req, "overdue")
	if err != nil {
		return nil, err
	}

	filters := &dto.ActionFilters{CustomerID: customerID, Status: model.ActionStatus(st)}
	if overdue {
		now := h.now().UTC()
		filters.OverdueAt = &now
	}
	return filters, nil
}
