package pkgbench

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml"
)

// Settings is the effective client configuration after environment, file
// and flag sources have been merged.
type Settings struct {
	APIURL          string        `json:"api_url"`
	LogLevel        string        `json:"log_level"`
	Timeout         time.Duration `json:"timeout"`
	DownloadTimeout time.Duration `json:"download_timeout"`
	PollInterval    time.Duration `json:"poll_interval"`
	TLSVerification bool          `json:"tls_verification"`
}

type Config struct {
	API  APIConfig  `toml:"api"`
	Poll PollConfig `toml:"poll"`
	Log  LogConfig  `toml:"log"`
}

type APIConfig struct {
	URL                 string `toml:"url"`
	Timeout             string `toml:"timeout"`
	DownloadTimeout     string `toml:"download_timeout"`
	SkipTLSVerification bool   `toml:"skip_tls_verification"`
}

type PollConfig struct {
	Interval string `toml:"interval"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	tree, err := toml.Load(string(data))
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	var cfg Config
	if err := tree.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Apply overlays the values present in the file on top of s.
func (c *Config) Apply(s *Settings) error {
	if c.API.URL != "" {
		s.APIURL = c.API.URL
	}
	if c.API.SkipTLSVerification {
		s.TLSVerification = false
	}
	if c.Log.Level != "" {
		s.LogLevel = c.Log.Level
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"api.timeout", c.API.Timeout, &s.Timeout},
		{"api.download_timeout", c.API.DownloadTimeout, &s.DownloadTimeout},
		{"poll.interval", c.Poll.Interval, &s.PollInterval},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.key, d.raw, err)
		}
		if v <= 0 {
			return fmt.Errorf("invalid %s %q: must be positive", d.key, d.raw)
		}
		*d.dst = v
	}

	return nil
}
