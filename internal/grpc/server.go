package grpc

import (
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// UpstreamService is the health service name that reports whether the
// last sync against the remote health API succeeded.
const UpstreamService = "migranthealth.v1.Upstream"

type Server struct {
	health     *health.Server
	grpcServer *grpc.Server
}

func NewServer() *Server {
	h := health.NewServer()
	h.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.SetServingStatus(UpstreamService, healthpb.HealthCheckResponse_UNKNOWN)
	return &Server{health: h}
}

func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.grpcServer = grpc.NewServer()
	healthpb.RegisterHealthServer(s.grpcServer, s.health)

	slog.Info("gRPC server listening", "addr", addr)
	return s.grpcServer.Serve(lis)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}
}

// SetUpstreamServing records the outcome of the latest upstream sync.
func (s *Server) SetUpstreamServing(ok bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(UpstreamService, status)
}

func (s *Server) Health() healthpb.HealthServer {
	return s.health
}
