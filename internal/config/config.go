package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort         int    `mapstructure:"APP_PORT"`
	EngineURL       string `mapstructure:"ENGINE_URL"`
	EngineEventsURL string `mapstructure:"ENGINE_EVENTS_URL"`
	// PollIntervalMS controls the status poll loop that runs while a
	// message exchange is in flight.
	PollIntervalMS int    `mapstructure:"POLL_INTERVAL_MS"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	// MCPServers is a comma-separated list of external tool server
	// endpoints to discover tools from.
	MCPServers string `mapstructure:"MCP_SERVERS"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8090)
	viper.SetDefault("ENGINE_URL", "http://localhost:8091")
	viper.SetDefault("ENGINE_EVENTS_URL", "ws://localhost:8091/api/v1/events")
	viper.SetDefault("POLL_INTERVAL_MS", 2000)
	viper.SetDefault("LOG_LEVEL", "INFO")
	viper.SetDefault("MCP_SERVERS", "")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// PollInterval returns the poll loop period as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// MCPServerList splits the configured MCP endpoints, dropping empties.
func (c *Config) MCPServerList() []string {
	if c.MCPServers == "" {
		return nil
	}
	parts := strings.Split(c.MCPServers, ",")
	servers := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			servers = append(servers, s)
		}
	}
	return servers
}
