package config

// APIKeyConfig holds API key format configuration for the key-generator
// subcommand (spec §"Admin surface authentication").
type APIKeyConfig struct {
	APIKeyType     string `env:"BULKSCROLL_API_KEY_TYPE"`
	APIServiceName string `env:"BULKSCROLL_API_SERVICE_NAME"`
	APIVersion     string `env:"BULKSCROLL_API_VERSION"`
}

func (c *APIKeyConfig) applyDefaults() {
	if c.APIKeyType == "" {
		c.APIKeyType = "sk"
	}
	if c.APIServiceName == "" {
		c.APIServiceName = "bulkscroll"
	}
	if c.APIVersion == "" {
		c.APIVersion = "v1"
	}
}
