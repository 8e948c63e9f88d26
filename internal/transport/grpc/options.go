package grpc

import (
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

// KeepaliveConfig mirrors internal/config.GRPCConfig's keepalive knobs.
type KeepaliveConfig struct {
	Time                  time.Duration
	Timeout               time.Duration
	MaxConnectionIdle     time.Duration
	MaxConnectionAge      time.Duration
	MaxConnectionAgeGrace time.Duration
}

// DefaultKeepaliveConfig mirrors config.GRPCConfig's defaults (300s time,
// 20s timeout, 900s idle, 1800s age, 5s grace).
func DefaultKeepaliveConfig() KeepaliveConfig {
	return KeepaliveConfig{
		Time:                  300 * time.Second,
		Timeout:               20 * time.Second,
		MaxConnectionIdle:     900 * time.Second,
		MaxConnectionAge:      1800 * time.Second,
		MaxConnectionAgeGrace: 5 * time.Second,
	}
}

// NewServer builds a *grpc.Server instrumented with otelgrpc, carrying the
// context/header propagation interceptor (invariant I5's gRPC-hop
// extension), with both the control plane and search backend services
// registered on it.
func NewServer(keepaliveCfg KeepaliveConfig, control ControlPlaneServer, backend SearchBackendServer) *grpc.Server {
	s := grpc.NewServer(
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:                  keepaliveCfg.Time,
			Timeout:               keepaliveCfg.Timeout,
			MaxConnectionIdle:     keepaliveCfg.MaxConnectionIdle,
			MaxConnectionAge:      keepaliveCfg.MaxConnectionAge,
			MaxConnectionAgeGrace: keepaliveCfg.MaxConnectionAgeGrace,
		}),
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(UnaryServerPropagationInterceptor),
	)
	if control != nil {
		RegisterControlPlaneServer(s, control)
	}
	if backend != nil {
		RegisterSearchBackendServer(s, backend)
	}
	return s
}

// Dial opens a client connection to target instrumented with otelgrpc and
// the propagation interceptor, defaulting to insecure transport credentials
// (callers needing TLS pass their own grpc.WithTransportCredentials via
// extraOpts, which is applied after the defaults).
func Dial(target string, extraOpts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithChainUnaryInterceptor(UnaryClientPropagationInterceptor),
	}, extraOpts...)
	return grpc.NewClient(target, opts...)
}
