package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/playdailyfive/daily5/internal/source"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

type RetryConfig struct {
	MaxAttempts     int    `yaml:"max_attempts"`
	BaseDelay       string `yaml:"base_delay"`
	RequestTimeout  string `yaml:"request_timeout"`
	PolitenessDelay string `yaml:"politeness_delay"`
}

type FilterConfig struct {
	MaxQuestionChars int      `yaml:"max_question_chars"`
	MaxOptionChars   int      `yaml:"max_option_chars"`
	Categories       []string `yaml:"categories"`
}

type SelectionConfig struct {
	Quota           map[string]int `yaml:"quota"`
	GeneralCategory string         `yaml:"general_category"`
	GeneralMin      int            `yaml:"general_min"`
	CategoryCap     int            `yaml:"category_cap"`
}

type Config struct {
	Epoch    string `yaml:"epoch"`
	Timezone string `yaml:"timezone"`
	APIURL   string `yaml:"api_url"`
	PoolSize int    `yaml:"pool_size"`

	Retry     RetryConfig     `yaml:"retry"`
	Filter    FilterConfig    `yaml:"filter"`
	Selection SelectionConfig `yaml:"selection"`

	LedgerCap int    `yaml:"ledger_cap"`
	Retention string `yaml:"retention"`

	ArtifactPath string `yaml:"artifact_path"`
	LedgerPath   string `yaml:"ledger_path"`
	PoolsDir     string `yaml:"pools_dir"`
	HistoryPath  string `yaml:"history_path"`
	FloorPath    string `yaml:"floor_path"`
}

func (c *Config) RequestTimeout() time.Duration {
	return parseDuration(c.Retry.RequestTimeout, 10*time.Second)
}

func (c *Config) BaseDelay() time.Duration {
	return parseDuration(c.Retry.BaseDelay, time.Second)
}

func (c *Config) PolitenessDelay() time.Duration {
	return parseDuration(c.Retry.PolitenessDelay, 0)
}

// RetentionDuration supports plain Go durations plus "Nd" day syntax.
func (c *Config) RetentionDuration() time.Duration {
	if c.Retention == "" {
		return 365 * 24 * time.Hour
	}
	if len(c.Retention) > 1 && c.Retention[len(c.Retention)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(c.Retention, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	return parseDuration(c.Retention, 365*24*time.Hour)
}

// Total is the artifact size: the sum of the difficulty quotas.
func (c *Config) Total() int {
	n := 0
	for _, v := range c.Selection.Quota {
		n += v
	}
	if n <= 0 {
		return 5
	}
	return n
}

func (c *Config) QuotaFor(d source.Difficulty) int {
	return c.Selection.Quota[string(d)]
}

func (c *Config) ArtifactFile() string {
	if c.ArtifactPath != "" {
		return c.ArtifactPath
	}
	return filepath.Join(xdg.DataHome, "daily5", "today.json")
}

func (c *Config) LedgerFile() string {
	if c.LedgerPath != "" {
		return c.LedgerPath
	}
	return filepath.Join(xdg.DataHome, "daily5", "ledger.json")
}

func (c *Config) HistoryFile() string {
	if c.HistoryPath != "" {
		return c.HistoryPath
	}
	return filepath.Join(xdg.DataHome, "daily5", "history.db")
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "daily5", "config.yaml")
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
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

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Write defaults to config path on first run
			if err := writeDefaults(path); err != nil {
				// Non-fatal: just use embedded defaults
				return defaults, nil
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func Validate(cfg *Config) error {
	if _, err := time.Parse("20060102", cfg.Epoch); err != nil {
		return fmt.Errorf("epoch must be YYYYMMDD, got %q", cfg.Epoch)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("unknown timezone %q: %w", cfg.Timezone, err)
	}
	u, err := url.Parse(cfg.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_url scheme must be http or https, got %q", u.Scheme)
	}
	for name, v := range cfg.Selection.Quota {
		switch source.Difficulty(name) {
		case source.Easy, source.Medium, source.Hard:
		default:
			return fmt.Errorf("unknown quota difficulty %q (valid: easy, medium, hard)", name)
		}
		if v < 0 {
			return fmt.Errorf("quota for %q must not be negative", name)
		}
	}
	if cfg.Total() <= 0 {
		return fmt.Errorf("difficulty quotas must sum to a positive total")
	}
	if cfg.Selection.GeneralMin > cfg.Total() {
		return fmt.Errorf("general_min %d exceeds quiz size %d", cfg.Selection.GeneralMin, cfg.Total())
	}
	return nil
}
