package main

import (
	actionH "github.com/fekuna/omnipos-salesinsight-service/internal/action/handler"
	"github.com/fekuna/omnipos-salesinsight-service/internal/logger"
	"github.com/fekuna/omnipos-salesinsight-service/internal/middleware"
	salesH "github.com/fekuna/omnipos-salesinsight-service/internal/sales/handler"

	"google.golang.org/grpc"
)

// newGRPCServer registers the sales and action services behind the context
// interceptor. Reflection is not registered since neither service has a
// file descriptor to describe.
func newGRPCServer(log logger.ZapLogger, sales salesH.SalesInsightServer, actions actionH.ActionServer) *grpc.Server {
	srv := grpc.NewServer(
		grpc.UnaryInterceptor(middleware.ContextInterceptor(log)),
	)
	salesH.RegisterSalesInsightServer(srv, sales)
	actionH.RegisterActionServer(srv, actions)
	return srv
}
