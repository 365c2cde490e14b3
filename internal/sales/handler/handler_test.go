package handler

import (
	"context"
	"net"
	"testing"

	"github.com/fekuna/omnipos-salesinsight-service/config"
	"github.com/fekuna/omnipos-salesinsight-service/internal/auth"
	"github.com/fekuna/omnipos-salesinsight-service/internal/logger"
	"github.com/fekuna/omnipos-salesinsight-service/internal/middleware"
	"github.com/fekuna/omnipos-salesinsight-service/internal/sales/source"
	"github.com/fekuna/omnipos-salesinsight-service/internal/sales/usecase"
	"github.com/fekuna/omnipos-salesinsight-service/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func dial(t *testing.T) *grpc.ClientConn {
	t.Helper()
	log := logger.NewNop()

	src, err := source.NewSynthetic(config.SyntheticConfig{Seed: 42, Customers: 50, DeclineBias: 0.03}, log)
	require.NoError(t, err)
	uc, err := usecase.NewSalesUseCase(src, scoring.DefaultWeights(), 10, log)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(middleware.ContextInterceptor(log)))
	RegisterSalesInsightServer(srv, NewSalesHandler(uc, log))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func method(name string) string { return "/" + ServiceName + "/" + name }

func TestHandler_ListDecliners(t *testing.T) {
	conn := dial(t)
	req, err := structpb.NewStruct(map[string]any{"limit": 5})
	require.NoError(t, err)

	var header metadata.MD
	out := &structpb.Struct{}
	require.NoError(t, conn.Invoke(context.Background(), method("ListDecliners"), req, out, grpc.Header(&header)))

	assert.Equal(t, "decliners", out.Fields["kind"].GetStringValue())
	assert.Equal(t, "synthetic", out.Fields["source"].GetStringValue())
	rows := out.Fields["rows"].GetListValue().GetValues()
	require.Len(t, rows, 5)
	first := rows[0].GetStructValue()
	abs := first.Fields["components"].GetStructValue().Fields["absolute"].GetNumberValue()
	assert.True(t, abs > 0 && abs <= 1, "absolute component %v", abs)
	assert.NotEmpty(t, first.Fields["row"].GetStructValue().Fields["yoy_delta"].GetStringValue())
	assert.NotEmpty(t, header.Get(auth.RequestIDHeader))
}

func TestHandler_ListGrowersUsesDefaultLimit(t *testing.T) {
	conn := dial(t)
	out := &structpb.Struct{}
	require.NoError(t, conn.Invoke(context.Background(), method("ListGrowers"), &structpb.Struct{}, out))

	rows := out.Fields["rows"].GetListValue().GetValues()
	assert.LessOrEqual(t, len(rows), 10)
	assert.NotEmpty(t, rows)
}

func TestHandler_InvalidListInput(t *testing.T) {
	conn := dial(t)
	req, err := structpb.NewStruct(map[string]any{"limit": "ten"})
	require.NoError(t, err)

	err = conn.Invoke(context.Background(), method("ListDecliners"), req, &structpb.Struct{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHandler_GetOnePager(t *testing.T) {
	conn := dial(t)
	out := &structpb.Struct{}
	require.NoError(t, conn.Invoke(context.Background(), method("GetOnePager"), wrapperspb.String("CUST0001"), out))

	assert.Equal(t, "CUST0001", out.Fields["customer_id"].GetStringValue())
	assert.NotNil(t, out.Fields["pvm"].GetStructValue())
	assert.GreaterOrEqual(t, len(out.Fields["weekly"].GetListValue().GetValues()), 52)
}

func TestHandler_UnknownCustomerIsNotFound(t *testing.T) {
	conn := dial(t)
	err := conn.Invoke(context.Background(), method("GetOnePager"), wrapperspb.String("CUST9999"), &structpb.Struct{})
	assert.Equal(t, codes.NotFound, status.Code(err))

	err = conn.Invoke(context.Background(), method("ExportChart"), wrapperspb.String(""), &structpb.Struct{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHandler_ExportChartAndSummary(t *testing.T) {
	conn := dial(t)

	chart := &structpb.Struct{}
	require.NoError(t, conn.Invoke(context.Background(), method("ExportChart"), wrapperspb.String("CUST0002"), chart))
	assert.Len(t, chart.Fields["pvm"].GetListValue().GetValues(), 6)

	summary := &structpb.Struct{}
	require.NoError(t, conn.Invoke(context.Background(), method("GetSummary"), &emptypb.Empty{}, summary))
	assert.Equal(t, 50.0, summary.Fields["customers"].GetNumberValue())
	assert.NotEmpty(t, summary.Fields["top_decliner"].GetStringValue())
}
