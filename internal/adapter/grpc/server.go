package grpc

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/middleware"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/logger"
)

// ServiceName is the health-check service key for the promotion engine.
const ServiceName = "promotion.PromotionService"

// Reflection and health Watch are streams and bypass the unary auth chain.
func publicMethods() map[string]bool {
	return map[string]bool{
		grpc_health_v1.Health_Check_FullMethodName: true,
	}
}

// NewGRPCServer builds the gRPC server with tracing, recovery, logging and auth,
// and registers health and reflection. Serving status starts NOT_SERVING;
// the caller flips it once dependencies are up.
func NewGRPCServer(appLogger *logger.Logger, jwtSecret string) (*grpc.Server, *health.Server) {
	log := appLogger.Named("gRPC")

	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			middleware.RecoveryInterceptor(log),
			middleware.LoggingInterceptor(log),
			middleware.AuthInterceptor(jwtSecret, log, publicMethods(), nil),
		),
	)

	reflection.Register(server)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	log.Info("gRPC server configured",
		zap.Bool("tracing_enabled", true),
		zap.Bool("auth_enabled", jwtSecret != ""),
	)
	return server, healthServer
}

// SetServing flips both the overall and the service health status.
func SetServing(hs *health.Server, serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	hs.SetServingStatus("", status)
	hs.SetServingStatus(ServiceName, status)
}
