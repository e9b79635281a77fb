package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const (
	EnvBotToken = "TELEGRAM_BOT_TOKEN"
	EnvChatID   = "TELEGRAM_CHAT_ID"
)

type Source struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID string `yaml:"chat_id"`
	APIURL string `yaml:"api_url"`
}

type MarketConfig struct {
	APIURL       string `yaml:"api_url"`
	FearGreedURL string `yaml:"fear_greed_url"`
}

type StoreConfig struct {
	Path      string `yaml:"path,omitempty"`
	Retention string `yaml:"retention"`
}

type Config struct {
	Timezone     string         `yaml:"timezone"`
	MaxItems     int            `yaml:"max_items"`
	EveningHour  *int           `yaml:"evening_hour"`
	FetchTimeout string         `yaml:"fetch_timeout"`
	Telegram     TelegramConfig `yaml:"telegram"`
	Market       MarketConfig   `yaml:"market"`
	Store        StoreConfig    `yaml:"store"`
	Sources      []Source       `yaml:"sources"`
}

// BotToken returns the resolved bot token (config or env var).
func (c *Config) BotToken() string {
	if c.Telegram.Token != "" {
		return c.Telegram.Token
	}
	return os.Getenv(EnvBotToken)
}

// ChatID returns the resolved destination chat (config or env var).
func (c *Config) ChatID() string {
	if c.Telegram.ChatID != "" {
		return c.Telegram.ChatID
	}
	return os.Getenv(EnvChatID)
}

// Location resolves the configured time zone, defaulting to Europe/Prague.
func (c *Config) Location() (*time.Location, error) {
	name := c.Timezone
	if name == "" {
		name = "Europe/Prague"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", name, err)
	}
	return loc, nil
}

// GetMaxItems returns the headline cap, defaulting to 8.
func (c *Config) GetMaxItems() int {
	if c.MaxItems <= 0 {
		return 8
	}
	return c.MaxItems
}

// GetEveningHour returns the local hour from which evening sections are
// shown. An explicit 0 is honored and means every hour counts as evening.
func (c *Config) GetEveningHour() int {
	if c.EveningHour == nil {
		return 18
	}
	return *c.EveningHour
}

func (c *Config) FetchTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil || d <= 0 {
		return 20 * time.Second
	}
	return d
}

func (c *Config) RetentionDuration() time.Duration {
	if c.Store.Retention == "" {
		return 90 * 24 * time.Hour
	}
	// Support "Nd" day syntax
	if d, ok := parseDays(c.Store.Retention); ok {
		return d
	}
	d, err := time.ParseDuration(c.Store.Retention)
	if err != nil {
		return 90 * 24 * time.Hour
	}
	return d
}

func parseDays(s string) (time.Duration, bool) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, true
		}
	}
	return 0, false
}

func (c *Config) EnabledSources() []Source {
	var out []Source
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) SourceNames() []string {
	var names []string
	for _, s := range c.EnabledSources() {
		names = append(names, s.Name)
	}
	return names
}

// StorePath returns the configured publish-log path or the XDG default.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(xdg.DataHome, "cryptodigest", "cryptodigest.db")
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "cryptodigest", "config.yaml")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path on top of the embedded defaults. A missing
// file is created from the defaults. A user-supplied sources list replaces
// the default one, since source order decides which duplicate survives.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: just use embedded defaults
			_ = writeDefaults(path)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	for i, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if s.URL == "" {
			return fmt.Errorf("source %q: url is required", s.Name)
		}
		u, err := url.Parse(s.URL)
		if err != nil {
			return fmt.Errorf("source %q: invalid url: %w", s.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("source %q: url scheme must be http or https, got %q", s.Name, u.Scheme)
		}
	}
	if h := cfg.EveningHour; h != nil && (*h < 0 || *h > 23) {
		return fmt.Errorf("evening_hour must be between 0 and 23, got %d", *h)
	}
	if _, err := cfg.Location(); err != nil {
		return err
	}
	return nil
}
