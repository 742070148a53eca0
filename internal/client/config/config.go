// Package config holds settings for the MealMate terminal chat client:
// defaults, then an optional JSON file, then command-line flags.
package config

import "time"

// Config holds runtime settings for the chat client.
//
// Fields:
//   - ServerURL: base URL of the MealMate server; the websocket URL is derived from it.
//   - RequestTimeout: limit for each REST call made before the chat starts.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
}

func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3001"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig applies defaults, then JSON (if present) and flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
