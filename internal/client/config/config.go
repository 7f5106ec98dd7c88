package config

import "time"

// Config holds runtime settings for the Medi Mate CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the REST API.
//   - RequestTimeout: upper bound for one HTTP call. Uploads wait for transcription and summarization, so keep it generous.
//   - DownloadDir: directory, relative to the working directory, where downloaded audio is saved.
type Config struct {
	ServerBaseURL  string
	RequestTimeout time.Duration
	DownloadDir    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:5000"
	c.RequestTimeout = 10 * time.Minute
	c.DownloadDir = "downloads"
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
