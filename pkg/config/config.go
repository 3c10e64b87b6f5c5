package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logger struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logger"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Binance struct {
		BaseURL      string        `yaml:"base_url"`
		WebSocketURL string        `yaml:"websocket_url"`
		Symbols      []string      `yaml:"symbols"`
		Interval     string        `yaml:"interval"`
		CandleLimit  int           `yaml:"candle_limit"`
		Timeout      time.Duration `yaml:"timeout"`
		CacheTTL     time.Duration `yaml:"cache_ttl"`
		StaleTTL     time.Duration `yaml:"stale_ttl"`
		RatePerMin   int           `yaml:"rate_per_min"`
		Stream       bool          `yaml:"stream"`
	} `yaml:"binance"`
	FearGreed struct {
		URL      string        `yaml:"url"`
		Timeout  time.Duration `yaml:"timeout"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"feargreed"`
	Scan struct {
		Interval      time.Duration `yaml:"interval"`
		MinConfidence float64       `yaml:"min_confidence"`
		Critical      struct {
			BuyConfidence  float64 `yaml:"buy_confidence"`
			BuyRawScore    float64 `yaml:"buy_raw_score"`
			SellConfidence float64 `yaml:"sell_confidence"`
			SellRawScore   float64 `yaml:"sell_raw_score"`
		} `yaml:"critical"`
	} `yaml:"scan"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		c.Binance.BaseURL = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Binance.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, splitErr := splitHostPort(v)
		if splitErr != nil {
			return nil, fmt.Errorf("REDIS_ADDR: %w", splitErr)
		}
		c.Redis.Host, c.Redis.Port = host, port
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "console"
	}
	if c.Logger.Output == "" {
		c.Logger.Output = "stdout"
	}
	if c.Binance.BaseURL == "" {
		c.Binance.BaseURL = "https://api.binance.com"
	}
	if c.Binance.WebSocketURL == "" {
		c.Binance.WebSocketURL = "wss://stream.binance.com:9443/ws"
	}
	if c.Binance.Interval == "" {
		c.Binance.Interval = "1h"
	}
	if c.Binance.CandleLimit == 0 {
		c.Binance.CandleLimit = 100
	}
	if c.Binance.Timeout == 0 {
		c.Binance.Timeout = 10 * time.Second
	}
	if c.Binance.CacheTTL == 0 {
		c.Binance.CacheTTL = 5 * time.Minute
	}
	if c.Binance.StaleTTL == 0 {
		c.Binance.StaleTTL = 24 * time.Hour
	}
	if c.Binance.RatePerMin == 0 {
		c.Binance.RatePerMin = 1100
	}
	if c.FearGreed.URL == "" {
		c.FearGreed.URL = "https://api.alternative.me/fng/"
	}
	if c.FearGreed.Timeout == 0 {
		c.FearGreed.Timeout = 5 * time.Second
	}
	if c.FearGreed.CacheTTL == 0 {
		c.FearGreed.CacheTTL = 30 * time.Minute
	}
	if c.Scan.Interval == 0 {
		c.Scan.Interval = 15 * time.Minute
	}
	if c.Scan.MinConfidence == 0 {
		c.Scan.MinConfidence = 30
	}
	if c.Scan.Critical.BuyConfidence == 0 {
		c.Scan.Critical.BuyConfidence = 60
	}
	if c.Scan.Critical.BuyRawScore == 0 {
		c.Scan.Critical.BuyRawScore = 40
	}
	if c.Scan.Critical.SellConfidence == 0 {
		c.Scan.Critical.SellConfidence = 60
	}
	if c.Scan.Critical.SellRawScore == 0 {
		c.Scan.Critical.SellRawScore = 40
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "signalpulse"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Binance.Symbols) == 0 {
		return fmt.Errorf("binance.symbols cannot be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535], got %d", c.Server.Port)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	return nil
}

func splitHostPort(addr string) (string, int, error) {
	host, portStr, found := strings.Cut(addr, ":")
	if !found || host == "" {
		return "", 0, fmt.Errorf("expected host:port, got %q", addr)
	}
	var port int
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		return "", 0, fmt.Errorf("invalid port %q", portStr)
	}
	return host, port, nil
}
