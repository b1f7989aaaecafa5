package server

// HTTPServerConfig holds the API server configuration
type HTTPServerConfig struct {
	Address     string   `mapstructure:"address"      yaml:"address"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}
