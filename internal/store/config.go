package store

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Intervals supported for the quote timeframe, mapped to UDF resolutions.
var SupportedIntervals = map[string]string{
	"1m":  "1",
	"5m":  "5",
	"15m": "15",
	"1h":  "60",
	"1d":  "D",
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Waha struct {
		BaseURL string `yaml:"base_url"`
		Session string `yaml:"session"`
		APIKey  string `yaml:"-"` // env only, never from file
	} `yaml:"waha"`
	TradingView struct {
		BaseURL        string `yaml:"base_url"`
		Interval       string `yaml:"interval"`
		Bars           int    `yaml:"bars"`
		Exchange       string `yaml:"exchange"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		Username       string `yaml:"-"` // env only
		Password       string `yaml:"-"` // env only
	} `yaml:"tradingview"`
	IndexSymbol string `yaml:"index_symbol"`
	Cache       struct {
		TTLSeconds int `yaml:"ttl_seconds"`
		MaxEntries int `yaml:"max_entries"`
	} `yaml:"cache"`
	RateLimit struct {
		WindowSeconds int `yaml:"window_seconds"`
		MaxRequests   int `yaml:"max_requests"`
	} `yaml:"rate_limit"`
	Commands struct {
		QuoteMarker  string `yaml:"quote_marker"`
		IndexKeyword string `yaml:"index_keyword"`
		HelpKeyword  string `yaml:"help_keyword"`
	} `yaml:"commands"`
	Reply struct {
		OnUnrecognized string `yaml:"on_unrecognized"` // "ignore" or "help"
		Signature      string `yaml:"signature"`
	} `yaml:"reply"`
}

func (c *Config) Validate() error {
	if _, ok := SupportedIntervals[c.TradingView.Interval]; !ok {
		return fmt.Errorf("invalid tradingview.interval '%s': must be one of 1m, 5m, 15m, 1h, 1d", c.TradingView.Interval)
	}
	if c.TradingView.Bars < 2 {
		return fmt.Errorf("tradingview.bars must be at least 2, got %d", c.TradingView.Bars)
	}
	if c.Waha.BaseURL == "" {
		return fmt.Errorf("waha.base_url cannot be empty")
	}
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache.ttl_seconds must be positive, got %d", c.Cache.TTLSeconds)
	}
	if c.RateLimit.WindowSeconds <= 0 || c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("rate_limit window/max must be positive, got %d/%d",
			c.RateLimit.WindowSeconds, c.RateLimit.MaxRequests)
	}
	if c.Reply.OnUnrecognized != "ignore" && c.Reply.OnUnrecognized != "help" {
		return fmt.Errorf("reply.on_unrecognized must be 'ignore' or 'help', got '%s'", c.Reply.OnUnrecognized)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}
	return nil
}

// LoadConfig reads the YAML config file, fills defaults, and applies
// environment overrides. A missing file is not an error: the bot runs on
// defaults plus environment.
func LoadConfig(path string) (*Config, error) {
	var c Config

	b, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	c.applyDefaults()
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Waha.BaseURL == "" {
		c.Waha.BaseURL = "http://localhost:3000"
	}
	if c.Waha.Session == "" {
		c.Waha.Session = "default"
	}
	if c.TradingView.BaseURL == "" {
		c.TradingView.BaseURL = "https://udf.tradingview.com"
	}
	if c.TradingView.Interval == "" {
		c.TradingView.Interval = "1d"
	}
	if c.TradingView.Bars == 0 {
		c.TradingView.Bars = 2
	}
	if c.TradingView.Exchange == "" {
		c.TradingView.Exchange = "IDX"
	}
	if c.TradingView.TimeoutSeconds == 0 {
		c.TradingView.TimeoutSeconds = 15
	}
	if c.IndexSymbol == "" {
		c.IndexSymbol = "COMPOSITE"
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 15
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 256
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = 5
	}
	if c.RateLimit.MaxRequests == 0 {
		c.RateLimit.MaxRequests = 1
	}
	if c.Commands.QuoteMarker == "" {
		c.Commands.QuoteMarker = "$"
	}
	if c.Commands.IndexKeyword == "" {
		c.Commands.IndexKeyword = "!ihsg"
	}
	if c.Commands.HelpKeyword == "" {
		c.Commands.HelpKeyword = "!help"
	}
	if c.Reply.OnUnrecognized == "" {
		c.Reply.OnUnrecognized = "ignore"
	}
	if c.Reply.Signature == "" {
		c.Reply.Signature = "© Haris Stockbit"
	}
}

// applyEnv overrides file values from the environment.
func (c *Config) applyEnv() {
	c.Waha.BaseURL = strings.TrimRight(envStr("WAHA_BASE_URL", c.Waha.BaseURL), "/")
	c.Waha.Session = envStr("WAHA_SESSION", c.Waha.Session)
	c.Waha.APIKey = envStr("WAHA_API_KEY", "")
	c.TradingView.BaseURL = envStr("TV_BASE_URL", c.TradingView.BaseURL)
	c.TradingView.Interval = envStr("TV_INTERVAL", c.TradingView.Interval)
	c.TradingView.Bars = envInt("TV_BARS", c.TradingView.Bars)
	c.TradingView.Username = envStr("TRADINGVIEW_USERNAME", "")
	c.TradingView.Password = envStr("TRADINGVIEW_PASSWORD", "")
	c.IndexSymbol = strings.ToUpper(envStr("IHSG_SYMBOL", c.IndexSymbol))
	c.Cache.TTLSeconds = envInt("CACHE_TTL_SECONDS", c.Cache.TTLSeconds)
	c.RateLimit.WindowSeconds = envInt("RATE_LIMIT_SECONDS", c.RateLimit.WindowSeconds)
	c.RateLimit.MaxRequests = envInt("RATE_LIMIT_MAX", c.RateLimit.MaxRequests)
	c.Reply.OnUnrecognized = envStr("REPLY_ON_UNRECOGNIZED", c.Reply.OnUnrecognized)
	c.Server.Port = envInt("PORT", c.Server.Port)
}

// Resolution returns the UDF resolution string for the configured interval.
func (c *Config) Resolution() string {
	return SupportedIntervals[c.TradingView.Interval]
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func (c *Config) RateWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}

func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.TradingView.TimeoutSeconds) * time.Second
}

func envStr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func envInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
