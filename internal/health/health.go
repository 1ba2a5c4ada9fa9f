// Package health exposes the standard grpc health service so orchestrators
// can probe the database without speaking the text protocol.
package health

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server implements the app.Dependency interface for the health endpoint.
type Server struct {
	address  string
	port     int
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
}

type Config struct {
	Address string
	Port    int
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Address == "" {
		errGrp = append(errGrp, errors.New("address required"))
	}
	if c.Port < 0 {
		errGrp = append(errGrp, errors.New("port cannot be negative"))
	}
	return errors.Join(errGrp...)
}

func New(cfg *Config) (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Address, cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to create listener on port %d: %w", cfg.Port, err)
	}

	return &Server{
		address:  cfg.Address,
		port:     cfg.Port,
		server:   srv,
		health:   hs,
		listener: lis,
	}, nil
}

func (s *Server) Start() error {
	log.Info().Str("addr", s.listener.Addr().String()).Msg("health server listening")

	errCh := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		if err := s.server.Serve(s.listener); err != nil {
			errCh <- err
			log.Error().Err(err).Msg("health server failed")
			return
		}
		errCh <- nil
	}()

	// Block briefly for error or nil return
	select {
	case err := <-errCh:
		return err
	case <-time.After(500 * time.Millisecond):
		s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		return nil
	}
}

func (s *Server) Stop() error {
	log.Info().Msg("stopping health server")
	s.health.Shutdown()
	s.server.GracefulStop()
	return nil
}

func (s *Server) Name() string {
	return "Health Server"
}

// Addr is the address the health listener is bound to.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
