package config

import "time"

// Config holds runtime settings for the ChronoKeeper CLI.
//
// Fields:
//   - DataDir: directory holding the local SQLite database.
//   - ServerEndpointAddr: base URL of the remote event API.
//   - AssistantEndpointAddr: base URL of the assistant service.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - RemoteTimeout: upper bound for a single remote call.
type Config struct {
	DataDir               string
	ServerEndpointAddr    string
	AssistantEndpointAddr string
	OnlineCheckInterval   time.Duration
	RemoteTimeout         time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = "."
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.AssistantEndpointAddr = "http://127.0.0.1:8090"
	c.OnlineCheckInterval = 3 * time.Second
	c.RemoteTimeout = 5 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
