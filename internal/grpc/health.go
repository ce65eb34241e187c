// Package grpc exposes the storefront on the standard gRPC health protocol.
// The serving status follows the reachability of the configured backends.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/fjod/sweetshop/internal/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const ServiceName = "storefront"

// Probe reports whether one backend is reachable.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthConfig struct {
	// Interval between probe rounds in Run.
	Interval time.Duration
	// ProbeTimeout bounds each single probe.
	ProbeTimeout time.Duration
}

type HealthServer struct {
	grpcServer *grpc.Server
	health     *health.Server
	probes     []Probe
	cfg        HealthConfig
	log        *slog.Logger
}

func NewHealthServer(probes []Probe, cfg HealthConfig, log *slog.Logger) *HealthServer {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 2 * time.Second
	}
	s := &HealthServer{
		grpcServer: grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler())),
		health:     health.NewServer(),
		probes:     probes,
		cfg:        cfg,
		log:        logger.OrNop(log),
	}
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	// Enable reflection for grpcurl/grpcui
	reflection.Register(s.grpcServer)

	// not serving until the first probe round
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// CheckNow runs every probe once and publishes the combined status.
func (s *HealthServer) CheckNow(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	var errs []error
	for _, p := range s.probes {
		pctx, cancel := context.WithTimeout(ctx, s.cfg.ProbeTimeout)
		err := p.Check(pctx)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
		}
	}

	status := healthpb.HealthCheckResponse_SERVING
	if err := errors.Join(errs...); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		s.log.WarnContext(ctx, "health probe failed", "error", err)
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

// Run probes immediately and then every interval until ctx is done.
func (s *HealthServer) Run(ctx context.Context) {
	s.CheckNow(ctx)
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CheckNow(ctx)
		}
	}
}

func (s *HealthServer) Serve(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// Stop reports NOT_SERVING to watchers and drains in-flight calls.
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
