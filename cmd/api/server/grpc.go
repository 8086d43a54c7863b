package server

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"usuarios-api/internal/adapter/gin/handler"
	"usuarios-api/pkg/logger"
)

const healthCheckInterval = 10 * time.Second

// SetupGRPC creates a gRPC server exposing only the standard health service.
func SetupGRPC() (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
		),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	reflection.Register(grpcServer)

	return grpcServer, hs
}

// watchStore flips the overall health status with the result of periodic store pings
// until ctx is done.
func watchStore(ctx context.Context, hs *health.Server, store handler.Pinger, l *zap.Logger) {
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, healthCheckInterval/2)
		defer cancel()

		status := healthpb.HealthCheckResponse_SERVING
		if err := store.Ping(pingCtx); err != nil {
			if ctx.Err() != nil {
				return
			}
			l.Warn("store ping failed", zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		hs.SetServingStatus("", status)
	}

	check()
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
