package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete agent configuration.
type Config struct {
	Agent   AgentConfig   `json:"agent" yaml:"agent"`
	Broker  BrokerConfig  `json:"broker" yaml:"broker"`
	Feed    FeedConfig    `json:"feed" yaml:"feed"`
	Bars    BarsConfig    `json:"bars" yaml:"bars"`
	OANDA   OANDAConfig   `json:"oanda" yaml:"oanda"`
	Predict PredictConfig `json:"predict" yaml:"predict"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// AgentConfig contains the decision parameters
type AgentConfig struct {
	Instrument string  `json:"instrument" yaml:"instrument" validate:"required"`
	Units      float64 `json:"units" yaml:"units" validate:"gt=0"`
	Mode       string  `json:"mode" yaml:"mode" validate:"required,oneof=collect test trade"`
	Entry      string  `json:"entry" yaml:"entry" validate:"omitempty,oneof=always-buy crossover"`
	Timezone   string  `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	Lookback   string  `json:"lookback,omitempty" yaml:"lookback,omitempty"` // e.g. "1440h"
}

// BrokerConfig selects where orders go. The paper broker fills against the
// tick feed.
type BrokerConfig struct {
	Type     string  `json:"type" yaml:"type" validate:"required,oneof=paper oanda"`
	Currency string  `json:"currency,omitempty" yaml:"currency,omitempty"`
	Balance  float64 `json:"balance,omitempty" yaml:"balance,omitempty" validate:"gte=0"`
}

type FeedConfig struct {
	Type string `json:"type" yaml:"type" validate:"required,oneof=csv websocket oanda"`
	File string `json:"file,omitempty" yaml:"file,omitempty"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty" validate:"omitempty,url"`
}

// BarsConfig selects the historical bar source used for warm-up.
type BarsConfig struct {
	Type string `json:"type" yaml:"type" validate:"required,oneof=none csv oanda"`
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

type OANDAConfig struct {
	Environment string `json:"environment,omitempty" yaml:"environment,omitempty" validate:"omitempty,oneof=practice live"`
	AccountID   string `json:"account_id,omitempty" yaml:"account_id,omitempty"`
	// Token is read from OANDA_TOKEN and never written to disk.
	Token string `json:"-" yaml:"-"`
}

type PredictConfig struct {
	URL     string `json:"url,omitempty" yaml:"url,omitempty" validate:"omitempty,url"`
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"` // e.g. "10s"
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type        string `json:"type" yaml:"type" validate:"required,oneof=csv sqlite redis"`
	TradesFile  string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	DBPath      string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	RedisAddr   string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	RedisStream string `json:"redis_stream,omitempty" yaml:"redis_stream,omitempty"`
}

type MetricsConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"` // empty disables the endpoint
}

type LogConfig struct {
	Level string `json:"level,omitempty" yaml:"level,omitempty" validate:"omitempty,oneof=debug info warn error"`
}

// LoadFromFile loads configuration from a YAML or JSON file, applies
// environment overrides and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", jerr)
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; variables already set win.
func LoadEnv(files ...string) error {
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// ApplyEnv fills secrets and deployment overrides from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("OANDA_TOKEN"); v != "" {
		c.OANDA.Token = v
	}
	if v := os.Getenv("OANDA_ACCOUNT_ID"); v != "" {
		c.OANDA.AccountID = v
	}
	if v := os.Getenv("PREDICT_URL"); v != "" {
		c.Predict.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Journal.RedisAddr = v
	}
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return err
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("agent.timezone: %w", err)
	}
	if _, err := parseDuration(c.Agent.Lookback); err != nil {
		return fmt.Errorf("agent.lookback: %w", err)
	}
	if _, err := parseDuration(c.Predict.Timeout); err != nil {
		return fmt.Errorf("predict.timeout: %w", err)
	}

	if c.Agent.Mode == "trade" && c.Predict.URL == "" {
		return fmt.Errorf("predict.url required for trade mode")
	}

	needOANDA := c.Broker.Type == "oanda" || c.Feed.Type == "oanda" || c.Bars.Type == "oanda"
	if needOANDA {
		if c.OANDA.AccountID == "" {
			return fmt.Errorf("oanda.account_id required when using OANDA")
		}
		if c.OANDA.Token == "" {
			return fmt.Errorf("OANDA_TOKEN must be set when using OANDA")
		}
	}

	if c.Broker.Type == "paper" && c.Broker.Balance <= 0 {
		return fmt.Errorf("broker.balance must be positive for the paper broker")
	}
	if c.Feed.Type == "csv" && c.Feed.File == "" {
		return fmt.Errorf("feed.file required for csv feed")
	}
	if c.Feed.Type == "websocket" && c.Feed.URL == "" {
		return fmt.Errorf("feed.url required for websocket feed")
	}
	if c.Bars.Type == "csv" && c.Bars.File == "" {
		return fmt.Errorf("bars.file required for csv bars")
	}

	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" {
			return fmt.Errorf("journal trades_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "redis":
		if c.Journal.RedisAddr == "" {
			return fmt.Errorf("journal redis_addr required for Redis type")
		}
	}
	return nil
}

func fieldError(fe validator.FieldError) error {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "oneof":
		return fmt.Errorf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "gt":
		return fmt.Errorf("%s must be positive", field)
	case "gte":
		return fmt.Errorf("%s must not be negative", field)
	case "url":
		return fmt.Errorf("%s must be a URL", field)
	default:
		return fmt.Errorf("%s failed %s validation", field, fe.Tag())
	}
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}

// Location returns the timezone the calendar day is evaluated in.
func (c *Config) Location() (*time.Location, error) {
	if c.Agent.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Agent.Timezone)
}

// LookbackDuration returns the warm-up window, or 0 for the default.
func (c *Config) LookbackDuration() time.Duration {
	d, _ := parseDuration(c.Agent.Lookback)
	return d
}

// PredictTimeout returns the prediction timeout, or 0 for the default.
func (c *Config) PredictTimeout() time.Duration {
	d, _ := parseDuration(c.Predict.Timeout)
	return d
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Agent: AgentConfig{
			Instrument: "USD_JPY",
			Units:      10000,
			Mode:       "test",
			Entry:      "always-buy",
			Lookback:   "1440h",
		},
		Broker: BrokerConfig{
			Type:     "paper",
			Currency: "JPY",
			Balance:  1000000,
		},
		Feed: FeedConfig{
			Type: "csv",
			File: "./ticks.csv",
		},
		Bars: BarsConfig{
			Type: "csv",
			File: "./bars.csv",
		},
		OANDA: OANDAConfig{
			Environment: "practice",
		},
		Predict: PredictConfig{
			URL:     "http://tensorflow:5000/api/estimator",
			Timeout: "10s",
		},
		Journal: JournalConfig{
			Type:       "sqlite",
			DBPath:     "./trades.db",
			TradesFile: "./trades.csv",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
