package config

// BackendConfig points the control plane at the search-cluster gRPC front
// door it drives ScrollDriver runs against (internal/transport/grpc's
// SearchBackendServer).
type BackendConfig struct {
	Endpoint string `env:"BULKSCROLL_BACKEND_ENDPOINT"`
}

func (c *BackendConfig) applyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:9091"
	}
}
