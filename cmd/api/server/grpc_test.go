package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestWatchStore(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want healthpb.HealthCheckResponse_ServingStatus
	}{
		{name: "store reachable", want: healthpb.HealthCheckResponse_SERVING},
		{name: "store down", err: errors.New("connection refused"), want: healthpb.HealthCheckResponse_NOT_SERVING},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := health.NewServer()
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				watchStore(ctx, hs, stubPinger{err: tt.err}, zaptest.NewLogger(t))
				close(done)
			}()

			require.Eventually(t, func() bool {
				resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{})
				return err == nil && resp.GetStatus() == tt.want
			}, time.Second, 10*time.Millisecond)

			cancel()
			<-done
		})
	}
}

func TestSetupGRPC_RegistersHealth(t *testing.T) {
	srv, hs := SetupGRPC()
	defer srv.Stop()

	require.NotNil(t, hs)
	_, ok := srv.GetServiceInfo()[healthpb.Health_ServiceDesc.ServiceName]
	require.True(t, ok)
}
