package config

// ObservabilityConfig holds OpenTelemetry configuration, consumed by
// pkg/observability.
type ObservabilityConfig struct {
	OTelEnabled   bool   `env:"BULKSCROLL_OTEL_ENABLED"`
	OTelCollector string `env:"BULKSCROLL_OTEL_COLLECTOR"`
	ServiceName   string `env:"OTEL_SERVICE_NAME"`
}

func (c *ObservabilityConfig) applyDefaults() {
	if c.OTelCollector == "" {
		c.OTelCollector = "localhost:4317"
	}
	if c.ServiceName == "" {
		c.ServiceName = "bulkscroll"
	}
}
