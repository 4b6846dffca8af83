// Package config loads the backtest configuration from YAML with environment
// variable overrides for paths and logging.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for a backtest run.
type Config struct {
	Backtest Backtest `yaml:"backtest"`
	Fees     Fees     `yaml:"fees"`
	Storage  Storage  `yaml:"storage"`
	Logging  Logging  `yaml:"logging"`
}

// Backtest selects the instrument, period and account parameters.
type Backtest struct {
	Symbol      string  `yaml:"symbol"`
	From        string  `yaml:"from"` // YYYY-MM-DD
	To          string  `yaml:"to"`   // YYYY-MM-DD
	InitialCash float64 `yaml:"initial_cash"`
	LotSize     int64   `yaml:"lot_size"`
}

// Fees holds the A-share fee schedule parameters.
type Fees struct {
	CommissionRate float64 `yaml:"commission_rate"`
	StampDutyRate  float64 `yaml:"stamp_duty_rate"`
	MinCommission  float64 `yaml:"min_commission"`
}

// Storage holds data input and result output locations.
type Storage struct {
	BarArchivePath string `yaml:"bar_archive_path"` // mmap binary archive
	DuckDBPath     string `yaml:"duckdb_path"`      // columnar archive, used when set
	ResultDBPath   string `yaml:"result_db_path"`   // sqlite results
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML file at path, applies defaults and environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Backtest: Backtest{
			InitialCash: 100000,
			LotSize:     100,
		},
		Fees: Fees{
			CommissionRate: 0.0003,
			StampDutyRate:  0.001,
			MinCommission:  5.0,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ASHARE_BAR_ARCHIVE"); v != "" {
		cfg.Storage.BarArchivePath = v
	}
	if v := os.Getenv("ASHARE_DUCKDB_PATH"); v != "" {
		cfg.Storage.DuckDBPath = v
	}
	if v := os.Getenv("ASHARE_RESULT_DB"); v != "" {
		cfg.Storage.ResultDBPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate rejects parameter values outside their economic ranges before any
// component is constructed with them.
func (c *Config) Validate() error {
	if c.Backtest.Symbol == "" {
		return fmt.Errorf("backtest.symbol is required")
	}
	if _, err := c.FromDate(); err != nil {
		return fmt.Errorf("backtest.from: %w", err)
	}
	to, err := c.ToDate()
	if err != nil {
		return fmt.Errorf("backtest.to: %w", err)
	}
	from, _ := c.FromDate()
	if !to.After(from) {
		return fmt.Errorf("backtest.to %s must be after backtest.from %s", c.Backtest.To, c.Backtest.From)
	}
	if c.Backtest.InitialCash <= 0 {
		return fmt.Errorf("backtest.initial_cash %f must be positive", c.Backtest.InitialCash)
	}
	if c.Backtest.LotSize <= 0 {
		return fmt.Errorf("backtest.lot_size %d must be positive", c.Backtest.LotSize)
	}
	if c.Fees.CommissionRate < 0 || c.Fees.CommissionRate >= 1 {
		return fmt.Errorf("fees.commission_rate %f must be in [0, 1)", c.Fees.CommissionRate)
	}
	if c.Fees.StampDutyRate < 0 || c.Fees.StampDutyRate >= 1 {
		return fmt.Errorf("fees.stamp_duty_rate %f must be in [0, 1)", c.Fees.StampDutyRate)
	}
	if c.Fees.MinCommission < 0 {
		return fmt.Errorf("fees.min_commission %f must not be negative", c.Fees.MinCommission)
	}
	return nil
}

func (c *Config) FromDate() (time.Time, error) {
	return time.Parse(time.DateOnly, c.Backtest.From)
}

func (c *Config) ToDate() (time.Time, error) {
	return time.Parse(time.DateOnly, c.Backtest.To)
}
