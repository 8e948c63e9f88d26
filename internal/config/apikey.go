package config

import (
	"errors"
	"fmt"

	"github.com/rezkam/bulkscroll/internal/env"
)

var (
	ErrNameRequired = errors.New("name is required (use -name flag)")
	ErrInvalidDays  = errors.New("days must be >= 0 (0 = never expires)")
)

// APIKeyGenConfig holds configuration for the `bulkscroll apikey create`
// subcommand: Name and DaysValid come from flags, everything else from the
// environment.
type APIKeyGenConfig struct {
	Audit     AuditConfig
	APIKey    APIKeyConfig
	Name      string
	DaysValid int
}

// LoadAPIKeyGenConfig loads apikey generation configuration from the
// environment, folding in the command-line-supplied name and expiry.
func LoadAPIKeyGenConfig(name string, daysValid int) (*APIKeyGenConfig, error) {
	cfg := &APIKeyGenConfig{Name: name, DaysValid: daysValid}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load apikey config: %w", err)
	}

	cfg.Audit.applyDefaults()
	cfg.APIKey.applyDefaults()

	if err := cfg.Audit.validateDSN(); err != nil {
		return nil, err
	}
	return cfg, cfg.validate()
}

func (c *APIKeyGenConfig) validate() error {
	if c.Name == "" {
		return ErrNameRequired
	}
	if c.DaysValid < 0 {
		return ErrInvalidDays
	}
	return nil
}
