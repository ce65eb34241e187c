package grpc

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func startServer(t *testing.T, probes ...Probe) (*HealthServer, healthpb.HealthClient) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := NewHealthServer(probes, HealthConfig{Interval: 10 * time.Millisecond}, nil)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return srv, healthpb.NewHealthClient(conn)
}

func check(t *testing.T, client healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.Status
}

func TestHealth_NotServingBeforeFirstProbe(t *testing.T) {
	_, client := startServer(t)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ServiceName))
}

func TestHealth_ServingWhenProbesPass(t *testing.T) {
	srv, client := startServer(t, Probe{Name: "slot", Check: func(context.Context) error { return nil }})

	got := srv.CheckNow(context.Background())

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, got)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ServiceName))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ""))
}

func TestHealth_NotServingWhenAnyProbeFails(t *testing.T) {
	srv, client := startServer(t,
		Probe{Name: "slot", Check: func(context.Context) error { return nil }},
		Probe{Name: "orders", Check: func(context.Context) error { return errors.New("connection refused") }},
	)

	got := srv.CheckNow(context.Background())

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, got)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ServiceName))
}

func TestHealth_ProbeTimeoutBoundsCheck(t *testing.T) {
	srv := NewHealthServer([]Probe{{Name: "slow", Check: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}}, HealthConfig{ProbeTimeout: 10 * time.Millisecond}, nil)
	t.Cleanup(srv.Stop)

	start := time.Now()
	got := srv.CheckNow(context.Background())

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, got)
	assert.Less(t, time.Since(start), time.Second)
}

func TestHealth_RunFollowsBackend(t *testing.T) {
	var down atomic.Bool
	srv, client := startServer(t, Probe{Name: "orders", Check: func(context.Context) error {
		if down.Load() {
			return errors.New("down")
		}
		return nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx)

	assert.Eventually(t, func() bool {
		return check(t, client, ServiceName) == healthpb.HealthCheckResponse_SERVING
	}, 2*time.Second, 10*time.Millisecond)

	down.Store(true)
	assert.Eventually(t, func() bool {
		return check(t, client, ServiceName) == healthpb.HealthCheckResponse_NOT_SERVING
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHealth_UnknownService(t *testing.T) {
	_, client := startServer(t)

	_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "inventory"})

	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
}
