package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM         LLMConfig        `yaml:"llm"`
	Trading     TradingConfig    `yaml:"trading"`
	Instruments []Instrument     `yaml:"instruments"`
	Telegram    TelegramConfig   `yaml:"telegram"`
	Web         WebConfig        `yaml:"web"`
	Logging     LoggingConfig    `yaml:"logging"`
}

type LLMConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type TradingConfig struct {
	Interval         string  `yaml:"interval"`
	AutoTrade        bool    `yaml:"auto_trade"`
	StopLossPct      float64 `yaml:"stop_loss_pct"`       // negative, e.g. -15
	MaxPositionUSD   float64 `yaml:"max_position_usd"`
	CooldownMinutes  int     `yaml:"cooldown_minutes"`
	DailyTradeLimit  int     `yaml:"daily_trade_limit"`
	BuySizeCap       int     `yaml:"buy_size_cap"`
	MinLot           int     `yaml:"min_lot"`
	HistoryLimit     int     `yaml:"history_limit"`
	QuoteTimeoutSec  int     `yaml:"quote_timeout_seconds"`
	NewsTimeoutSec   int     `yaml:"news_timeout_seconds"`
}

// Instrument is one tracked symbol. Threshold overrides tighten or loosen the
// fallback rule engine's BUY/SELL bands for that symbol alone.
type Instrument struct {
	Symbol        string   `yaml:"symbol"`
	Currency      string   `yaml:"currency"`
	Enabled       bool     `yaml:"enabled"`
	BuyThreshold  *float64 `yaml:"buy_threshold"`
	SellThreshold *float64 `yaml:"sell_threshold"`

	// FixedNotionalUSD sizes every BUY as notional/price instead of the
	// confidence-scaled default.
	FixedNotionalUSD float64 `yaml:"fixed_notional_usd"`

	// RebalanceOnly restricts BUYs to the first RebalanceWindowDays days of
	// each calendar month.
	RebalanceOnly       bool `yaml:"rebalance_only"`
	RebalanceWindowDays int  `yaml:"rebalance_window_days"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type WebConfig struct {
	Port int `yaml:"port"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.deepseek.com/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "deepseek-chat"
	}
	if cfg.LLM.TimeoutSeconds == 0 {
		cfg.LLM.TimeoutSeconds = 60
	}
	if cfg.Trading.Interval == "" {
		cfg.Trading.Interval = "30m"
	}
	if cfg.Trading.StopLossPct == 0 {
		cfg.Trading.StopLossPct = -15
	}
	if cfg.Trading.MaxPositionUSD == 0 {
		cfg.Trading.MaxPositionUSD = 50000
	}
	if cfg.Trading.CooldownMinutes == 0 {
		cfg.Trading.CooldownMinutes = 25
	}
	if cfg.Trading.DailyTradeLimit == 0 {
		cfg.Trading.DailyTradeLimit = 6
	}
	if cfg.Trading.BuySizeCap == 0 {
		cfg.Trading.BuySizeCap = 100
	}
	if cfg.Trading.MinLot == 0 {
		cfg.Trading.MinLot = 10
	}
	if cfg.Trading.HistoryLimit == 0 {
		cfg.Trading.HistoryLimit = 200
	}
	if cfg.Trading.QuoteTimeoutSec == 0 {
		cfg.Trading.QuoteTimeoutSec = 15
	}
	if cfg.Trading.NewsTimeoutSec == 0 {
		cfg.Trading.NewsTimeoutSec = 30
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	for i := range cfg.Instruments {
		inst := &cfg.Instruments[i]
		if inst.Currency == "" {
			inst.Currency = "USD"
		}
		if inst.RebalanceOnly && inst.RebalanceWindowDays == 0 {
			inst.RebalanceWindowDays = 3
		}
	}
}

func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Trading.Interval); err != nil {
		return fmt.Errorf("invalid trading.interval %q: %w", c.Trading.Interval, err)
	}
	if c.Trading.StopLossPct >= 0 {
		return fmt.Errorf("trading.stop_loss_pct must be negative, got %v", c.Trading.StopLossPct)
	}
	if len(c.Instruments) == 0 {
		return fmt.Errorf("at least one instrument is required")
	}
	seen := make(map[string]bool, len(c.Instruments))
	for _, inst := range c.Instruments {
		if inst.Symbol == "" {
			return fmt.Errorf("instrument symbol is required")
		}
		if seen[inst.Symbol] {
			return fmt.Errorf("duplicate instrument %q", inst.Symbol)
		}
		seen[inst.Symbol] = true
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}

// EnabledSymbols returns the symbols the cycle should process, in config order.
func (c *Config) EnabledSymbols() []string {
	var out []string
	for _, inst := range c.Instruments {
		if inst.Enabled {
			out = append(out, inst.Symbol)
		}
	}
	return out
}

func (c *Config) Instrument(symbol string) *Instrument {
	for i := range c.Instruments {
		if c.Instruments[i].Symbol == symbol {
			return &c.Instruments[i]
		}
	}
	return nil
}

func (c *Config) TradingInterval() time.Duration {
	d, _ := time.ParseDuration(c.Trading.Interval)
	return d
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

func (c *Config) QuoteTimeout() time.Duration {
	return time.Duration(c.Trading.QuoteTimeoutSec) * time.Second
}

func (c *Config) NewsTimeout() time.Duration {
	return time.Duration(c.Trading.NewsTimeoutSec) * time.Second
}

func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.Trading.CooldownMinutes) * time.Minute
}
