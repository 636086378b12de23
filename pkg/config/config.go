package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultThresholdPct applies to indicators that omit threshold_pct.
const DefaultThresholdPct = 5.0

// Indicator describes one FRED series watched by the economic monitor.
// A nil ThresholdPct means the key was omitted; an explicit 0 disables the percent rule.
type Indicator struct {
	Symbol       string   `yaml:"symbol"`
	Name         string   `yaml:"name"`
	ThresholdPct *float64 `yaml:"threshold_pct"`
	ThresholdAbs *float64 `yaml:"threshold_abs"`
}

// Percent returns the percent threshold, falling back to DefaultThresholdPct when unset.
func (i Indicator) Percent() float64 {
	if i.ThresholdPct == nil {
		return DefaultThresholdPct
	}
	return *i.ThresholdPct
}

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Logger struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logger"`
	MarketData struct {
		Enabled        bool          `yaml:"enabled" default:"true"`
		Provider       string        `yaml:"provider" default:"yfinance"`
		CacheTTL       time.Duration `yaml:"cache_ttl" default:"15m"`
		CacheMaxSize   int           `yaml:"cache_max_size" default:"1000"`
		FMPEnabled     bool          `yaml:"fmp_enabled" default:"true"`
		PolygonEnabled bool          `yaml:"polygon_enabled" default:"true"`
		FREDEnabled    bool          `yaml:"fred_enabled" default:"true"`
		CleanSchedule  string        `yaml:"clean_schedule" default:"@every 5m"`
	} `yaml:"market_data"`
	FMP struct {
		APIKey  string        `yaml:"api_key"`
		BaseURL string        `yaml:"base_url" default:"https://financialmodelingprep.com"`
		Timeout time.Duration `yaml:"timeout" default:"10s"`
	} `yaml:"fmp"`
	Polygon struct {
		APIKey            string        `yaml:"api_key"`
		BaseURL           string        `yaml:"base_url" default:"https://api.polygon.io"`
		Timeout           time.Duration `yaml:"timeout" default:"10s"`
		Enabled           bool          `yaml:"enabled" default:"true"`
		Tickers           []string      `yaml:"tickers"`
		ArticlesPerTicker int           `yaml:"articles_per_ticker" default:"5"`
		ScrapeSchedule    string        `yaml:"scrape_schedule" default:"@every 30m"`
	} `yaml:"polygon"`
	FRED struct {
		APIKey        string               `yaml:"api_key"`
		BaseURL       string               `yaml:"base_url" default:"https://api.stlouisfed.org"`
		Timeout       time.Duration        `yaml:"timeout" default:"10s"`
		CheckSchedule string               `yaml:"check_schedule" default:"@every 1h"`
		Indicators    map[string]Indicator `yaml:"indicators"`
	} `yaml:"fred"`
	Yahoo struct {
		Enabled bool `yaml:"enabled" default:"true"`
	} `yaml:"yahoo"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"marketfeed"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		AlertsTopic  string   `yaml:"alerts_topic" default:"marketfeed.alerts"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"10ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Telegram struct {
		BotToken string        `yaml:"bot_token"`
		ChatID   string        `yaml:"chat_id"`
		BaseURL  string        `yaml:"base_url" default:"https://api.telegram.org"`
		Timeout  time.Duration `yaml:"timeout" default:"10s"`
	} `yaml:"telegram"`
	Notifications struct {
		Enabled    bool          `yaml:"enabled"`
		Workers    int           `yaml:"workers" default:"2"`
		RetryLimit int           `yaml:"retry_limit" default:"3"`
		RetryDelay time.Duration `yaml:"retry_delay" default:"30s"`
	} `yaml:"notifications"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled" default:"true"`
		Rate    float64 `yaml:"rate" default:"5"`
		Burst   int     `yaml:"burst" default:"20"`
	} `yaml:"ratelimit"`
}

// Default returns a Config with struct-tag defaults and the default indicator set.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	c.FRED.Indicators = DefaultIndicators()
	return &c
}

// DefaultIndicators is the watched FRED series set.
func DefaultIndicators() map[string]Indicator {
	f := func(v float64) *float64 { return &v }
	return map[string]Indicator{
		"treasury_10y": {Symbol: "DGS10", Name: "10-Year Treasury Rate", ThresholdPct: f(5.0), ThresholdAbs: f(0.1)},
		"treasury_2y":  {Symbol: "DGS2", Name: "2-Year Treasury Rate", ThresholdPct: f(5.0), ThresholdAbs: f(0.1)},
		"fed_funds":    {Symbol: "FEDFUNDS", Name: "Federal Funds Rate", ThresholdPct: f(10.0), ThresholdAbs: f(0.25)},
		"unemployment": {Symbol: "UNRATE", Name: "Unemployment Rate", ThresholdPct: f(5.0), ThresholdAbs: f(0.2)},
		"cpi":          {Symbol: "CPIAUCSL", Name: "Consumer Price Index", ThresholdPct: f(1.0)},
		"sp500":        {Symbol: "SP500", Name: "S&P 500 Index", ThresholdPct: f(2.0)},
	}
}

// Load reads and parses a YAML configuration file. An empty path yields defaults.
// A configured fred.indicators map replaces the default set rather than merging into it.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		c.FRED.Indicators = nil
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		if c.FRED.Indicators == nil {
			c.FRED.Indicators = DefaultIndicators()
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads .env (if present), the YAML file, and then applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("FMP_API_KEY"); v != "" {
		c.FMP.APIKey = v
	}
	if v := getenv("POLYGON_API_KEY"); v != "" {
		c.Polygon.APIKey = v
	}
	if v := getenv("FRED_API_KEY"); v != "" {
		c.FRED.APIKey = v
	}
	if v := getenv("MARKET_DATA_PROVIDER"); v != "" {
		c.MarketData.Provider = strings.ToLower(v)
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := getenv("ALERTS_TOPIC"); v != "" {
		c.Kafka.AlertsTopic = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive, got %d", c.Server.Port)
	}
	switch c.MarketData.Provider {
	case "openbb", "fmp", "yahoo", "yfinance":
	default:
		return fmt.Errorf("market_data.provider must be one of openbb, fmp, yahoo, yfinance, got '%s'", c.MarketData.Provider)
	}
	if c.MarketData.CacheTTL <= 0 {
		return fmt.Errorf("market_data.cache_ttl must be positive")
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
		}
		if c.Kafka.AlertsTopic == "" {
			return fmt.Errorf("kafka.alerts_topic is required when kafka is enabled")
		}
	}
	if c.Notifications.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("notifications require redis to be enabled")
	}
	for key, ind := range c.FRED.Indicators {
		if ind.Symbol == "" {
			return fmt.Errorf("fred.indicators.%s.symbol is required", key)
		}
	}
	return nil
}
