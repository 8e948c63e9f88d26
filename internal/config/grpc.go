package config

// GRPCConfig holds gRPC control-plane server configuration.
type GRPCConfig struct {
	GRPCPort string `env:"BULKSCROLL_GRPC_PORT"`
	GRPCHost string `env:"BULKSCROLL_GRPC_HOST"`

	GRPCKeepaliveTime                           int  `env:"BULKSCROLL_GRPC_KEEPALIVE_TIME"`
	GRPCKeepaliveTimeout                        int  `env:"BULKSCROLL_GRPC_KEEPALIVE_TIMEOUT"`
	GRPCMaxConnectionIdle                       int  `env:"BULKSCROLL_GRPC_MAX_CONNECTION_IDLE"`
	GRPCMaxConnectionAge                        int  `env:"BULKSCROLL_GRPC_MAX_CONNECTION_AGE"`
	GRPCMaxConnectionAgeGrace                   int  `env:"BULKSCROLL_GRPC_MAX_CONNECTION_AGE_GRACE"`
	GRPCKeepaliveEnforcementMinTime             int  `env:"BULKSCROLL_GRPC_KEEPALIVE_ENFORCEMENT_MIN_TIME"`
	GRPCKeepaliveEnforcementPermitWithoutStream bool `env:"BULKSCROLL_GRPC_KEEPALIVE_ENFORCEMENT_PERMIT_WITHOUT_STREAM"`
}

// applyDefaults fills zero fields with the same defaults
// internal/transport/grpc.DefaultKeepaliveConfig uses, so an unset env var
// and an unset struct field produce identical server behavior.
func (c *GRPCConfig) applyDefaults() {
	if c.GRPCPort == "" {
		c.GRPCPort = "8080"
	}
	if c.GRPCHost == "" {
		c.GRPCHost = "localhost"
	}
	if c.GRPCKeepaliveTime == 0 {
		c.GRPCKeepaliveTime = 300
	}
	if c.GRPCKeepaliveTimeout == 0 {
		c.GRPCKeepaliveTimeout = 20
	}
	if c.GRPCMaxConnectionIdle == 0 {
		c.GRPCMaxConnectionIdle = 900
	}
	if c.GRPCMaxConnectionAge == 0 {
		c.GRPCMaxConnectionAge = 1800
	}
	if c.GRPCMaxConnectionAgeGrace == 0 {
		c.GRPCMaxConnectionAgeGrace = 5
	}
	if c.GRPCKeepaliveEnforcementMinTime == 0 {
		c.GRPCKeepaliveEnforcementMinTime = 5
	}
}
