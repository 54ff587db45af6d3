package config

import (
	"strings"
	"time"
)

// Config holds runtime settings for the filekeeper CLI.
//
//   - ServerEndpointAddr: base URL of the filekeeper HTTP server. A bare
//     host:port is accepted and gets an http:// prefix.
//   - OnlineCheckInterval: period of the /health probe; zero turns it off.
//   - RequestTimeout: upper bound for one request including the transfer.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
}

// LoadDefaults points the CLI at a local server.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 5 * time.Minute
}

// LoadConfig applies defaults, the optional JSON file and then the flags,
// each overriding the previous one, and normalizes the server address.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	cfg.ServerEndpointAddr = normalizeAddr(cfg.ServerEndpointAddr)
	return cfg
}

func normalizeAddr(addr string) string {
	addr = strings.TrimRight(strings.TrimSpace(addr), "/")
	if addr != "" && !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return addr
}
