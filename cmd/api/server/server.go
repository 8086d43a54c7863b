package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	"usuarios-api/cmd/api/di"
	"usuarios-api/internal/config"
)

// Server struct holds all server dependencies
type Server struct {
	Config    *config.Config
	Logger    *zap.Logger
	Container *di.Container
	Gin       *http.Server
	GRPC      *grpc.Server
	Health    *health.Server
}

// New creates a new server instance. The gRPC health server is only built when GRPC_PORT is set.
func New(cfg *config.Config, l *zap.Logger, c *di.Container) *Server {
	s := &Server{
		Config:    cfg,
		Logger:    l,
		Container: c,
		Gin:       SetupGinServer(c, httpAddress(cfg), l),
	}
	if cfg.App.GRPCPort != "" {
		s.GRPC, s.Health = SetupGRPC()
	}
	return s
}

// Start runs the REST server and, when configured, the gRPC health server.
// It blocks until one of them fails or is shut down.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 2)

	if s.GRPC != nil {
		lc := net.ListenConfig{}
		lis, err := lc.Listen(ctx, "tcp", grpcAddress(s.Config))
		if err != nil {
			return fmt.Errorf("failed to listen on gRPC port: %w", err)
		}

		go watchStore(ctx, s.Health, s.Container.Store, s.Logger)
		go func() {
			s.Logger.Info("gRPC health server running", zap.String("address", lis.Addr().String()))
			if err := s.GRPC.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errCh <- fmt.Errorf("gRPC server: %w", err)
			}
		}()
	}

	go func() {
		s.Logger.Info("REST API running", zap.String("address", s.Gin.Addr))
		if err := s.Gin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
			return
		}
		errCh <- nil
	}()

	return <-errCh
}

func grpcAddress(cfg *config.Config) string {
	return ":" + cfg.App.GRPCPort
}

func httpAddress(cfg *config.Config) string {
	return ":" + cfg.App.HTTPPort
}
