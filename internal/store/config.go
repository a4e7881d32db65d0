package store

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"llm-crypto-agent/internal/types"
)

type Config struct {
	Mode        string `yaml:"mode"`         // DRY_RUN or LIVE
	PollSeconds int    `yaml:"poll_seconds"` // sleep between decision cycles

	Journal struct {
		Directory string `yaml:"directory"`
		Prefix    string `yaml:"prefix"`
		Extension string `yaml:"extension"`
	} `yaml:"journal"`

	History struct {
		DSN string `yaml:"dsn"` // sqlite file path, ":memory:", or "" to disable
	} `yaml:"history"`

	Constraints struct {
		MaxRuntimeHours  float64  `yaml:"max_runtime_hours"`
		ProfitTargetUSDC float64  `yaml:"profit_target_usdc"`
		MaxTransactions  int      `yaml:"max_transactions"`
		MaxPurchaseUSDC  float64  `yaml:"max_purchase_usdc"`
		ForbiddenAssets  []string `yaml:"forbidden_assets"`
	} `yaml:"constraints"`

	Oracle struct {
		Provider       string  `yaml:"provider"` // OLLAMA, OPENAI, or empty for noop
		Model          string  `yaml:"model"`
		Endpoint       string  `yaml:"endpoint"`
		Temperature    float64 `yaml:"temperature"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		MaxTokens      int     `yaml:"max_tokens"`
	} `yaml:"oracle"`

	News struct {
		Enabled        bool `yaml:"enabled"`
		MaxHeadlines   int  `yaml:"max_headlines"`
		CacheMinutes   int  `yaml:"cache_minutes"`
		TimeoutSeconds int  `yaml:"timeout_seconds"`
	} `yaml:"news"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if c.PollSeconds <= 0 {
		return fmt.Errorf("poll_seconds must be positive, got %d", c.PollSeconds)
	}
	if c.Constraints.MaxRuntimeHours <= 0 {
		return fmt.Errorf("constraints.max_runtime_hours must be positive, got %.2f", c.Constraints.MaxRuntimeHours)
	}
	if c.Constraints.MaxTransactions <= 0 {
		return fmt.Errorf("constraints.max_transactions must be positive, got %d", c.Constraints.MaxTransactions)
	}
	if c.Constraints.MaxPurchaseUSDC <= 0 {
		return fmt.Errorf("constraints.max_purchase_usdc must be positive, got %.2f", c.Constraints.MaxPurchaseUSDC)
	}
	if c.Oracle.TimeoutSeconds <= 0 {
		return fmt.Errorf("oracle.timeout_seconds must be positive, got %d", c.Oracle.TimeoutSeconds)
	}
	return nil
}

// LoadConfig reads the YAML config at path, applies defaults, and validates.
// A missing file yields the defaults alone so the agent runs out of the box.
func LoadConfig(path string) (*Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func applyDefaults(c *Config) {
	if c.Mode == "" {
		c.Mode = "DRY_RUN"
	}
	if c.PollSeconds == 0 {
		c.PollSeconds = 60
	}
	if c.Journal.Directory == "" {
		c.Journal.Directory = "journals"
	}
	if c.Journal.Prefix == "" {
		c.Journal.Prefix = "journal"
	}
	if c.Journal.Extension == "" {
		c.Journal.Extension = ".md"
	}
	if c.Constraints.MaxRuntimeHours == 0 {
		c.Constraints.MaxRuntimeHours = 5
	}
	if c.Constraints.ProfitTargetUSDC == 0 {
		c.Constraints.ProfitTargetUSDC = 50
	}
	if c.Constraints.MaxTransactions == 0 {
		c.Constraints.MaxTransactions = 15
	}
	if c.Constraints.MaxPurchaseUSDC == 0 {
		c.Constraints.MaxPurchaseUSDC = 200
	}
	if c.Constraints.ForbiddenAssets == nil {
		c.Constraints.ForbiddenAssets = []string{"SOL", "SUI", "BTC", "ETH"}
	}
	if c.Oracle.Provider == "" {
		c.Oracle.Provider = "OLLAMA"
	}
	if c.Oracle.Model == "" {
		c.Oracle.Model = "llama3"
	}
	if c.Oracle.Temperature == 0 {
		c.Oracle.Temperature = 0.2
	}
	if c.Oracle.TimeoutSeconds == 0 {
		c.Oracle.TimeoutSeconds = 30
	}
	if c.News.MaxHeadlines == 0 {
		c.News.MaxHeadlines = 10
	}
	if c.News.CacheMinutes == 0 {
		c.News.CacheMinutes = 30
	}
	if c.News.TimeoutSeconds == 0 {
		c.News.TimeoutSeconds = 15
	}
}

// PollInterval returns the cycle sleep as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}

// ConstraintSet builds the immutable session bounds from config.
func (c *Config) ConstraintSet() types.ConstraintSet {
	return types.NewConstraintSet(
		time.Duration(c.Constraints.MaxRuntimeHours*float64(time.Hour)),
		c.Constraints.ProfitTargetUSDC,
		c.Constraints.MaxTransactions,
		c.Constraints.MaxPurchaseUSDC,
		c.Constraints.ForbiddenAssets,
	)
}
