package switcher

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level extswitchd configuration.
type Config struct {
	// DBPath is the SQLite database holding profile groups and settings.
	DBPath string `yaml:"db_path"`

	// HTTPAddr is the admin API bind address.
	HTTPAddr string `yaml:"http_addr"`

	// AuthSecret enables bearer-token auth on the admin API when non-empty.
	AuthSecret string `yaml:"auth_secret"`

	Browser   BrowserConfig   `yaml:"browser"`
	Companion CompanionConfig `yaml:"companion"`
	Watch     WatchConfig     `yaml:"watch"`
}

// BrowserConfig locates the Chrome instance to observe.
type BrowserConfig struct {
	// ControlURL is the DevTools endpoint of a running Chrome started with
	// --remote-debugging-port. Empty launches a headful Chrome.
	ControlURL string `yaml:"control_url"`
}

// CompanionConfig locates the companion extension's localhost bridge.
type CompanionConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// WatchConfig tunes the profile hot-reload loop.
type WatchConfig struct {
	Interval time.Duration `yaml:"interval"`
	Debounce time.Duration `yaml:"debounce"`
}

// LoadConfigFile reads a YAML configuration file and applies defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("switcher: read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("switcher: parse config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills unset fields with the standard local setup.
func (c *Config) ApplyDefaults() {
	if c.DBPath == "" {
		c.DBPath = "extswitch.db"
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = "127.0.0.1:9555"
	}
	if c.Companion.URL == "" {
		c.Companion.URL = "http://127.0.0.1:9556"
	}
	if c.Companion.Timeout <= 0 {
		c.Companion.Timeout = 5 * time.Second
	}
	if c.Watch.Interval <= 0 {
		c.Watch.Interval = 500 * time.Millisecond
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = time.Second
	}
}
