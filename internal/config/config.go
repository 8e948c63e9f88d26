package config

import (
	"fmt"
	"time"

	"github.com/rezkam/bulkscroll/internal/env"
)

// ServerConfig holds all configuration for the bulkscroll server binary:
// the gRPC control plane, its REST mirror, the audit trail, the recurring
// schedule, and the admin API-key authenticator.
type ServerConfig struct {
	GRPC            GRPCConfig
	HTTP            HTTPConfig
	Backend         BackendConfig
	Audit           AuditConfig
	Schedule        ScheduleConfig
	APIKey          APIKeyConfig
	Observability   ObservabilityConfig
	ShutdownTimeout time.Duration `env:"BULKSCROLL_SHUTDOWN_TIMEOUT"`
}

// LoadServerConfig loads configuration from the environment, applies
// defaults, and validates the result.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	cfg.GRPC.applyDefaults()
	cfg.HTTP.applyDefaults()
	cfg.Backend.applyDefaults()
	cfg.Audit.applyDefaults()
	cfg.Schedule.applyDefaults()
	cfg.APIKey.applyDefaults()
	cfg.Observability.applyDefaults()
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}

	if err := cfg.Audit.validateDSN(); err != nil {
		return nil, err
	}

	return cfg, nil
}
