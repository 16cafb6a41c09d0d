// Package grpcapi exposes the standard gRPC health service so orchestrators
// can probe trackar-server without going through HTTP.
package grpcapi

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health entry reported alongside the server-wide one.
const ServiceName = "trackar.v1.Attendance"

type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	logger     *log.Logger
}

// Listen binds addr and registers the health service.  Both the server-wide
// entry and ServiceName report SERVING.
func Listen(addr string, logger *log.Logger) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:   lis,
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     logger,
	}, nil
}

func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// SetServing flips ServiceName between SERVING and NOT_SERVING.
func (s *Server) SetServing(ok bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if ok {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
}

// Serve blocks until ctx is cancelled, then marks every entry NOT_SERVING and
// stops gracefully.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Printf("grpc health listening at %v", s.listener.Addr())

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		return served(<-serveErr)
	case err := <-serveErr:
		return served(err)
	}
}

// Close stops the server immediately.
func (s *Server) Close() {
	s.health.Shutdown()
	s.grpcServer.Stop()
	_ = s.listener.Close()
}

func served(err error) error {
	if err == nil || errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return fmt.Errorf("serve gRPC: %w", err)
}
