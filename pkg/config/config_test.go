package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalYAML = `
environment: test
server:
  port: 8080
binance:
  symbols: [BTCUSDT, ETHUSDT]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Binance.BaseURL != "https://api.binance.com" {
		t.Errorf("unexpected base url %q", cfg.Binance.BaseURL)
	}
	if cfg.Binance.Interval != "1h" || cfg.Binance.CandleLimit != 100 {
		t.Errorf("unexpected binance defaults: %+v", cfg.Binance)
	}
	if cfg.Binance.StaleTTL != 24*time.Hour {
		t.Errorf("unexpected stale ttl %v", cfg.Binance.StaleTTL)
	}
	if cfg.Scan.Interval != 15*time.Minute || cfg.Scan.MinConfidence != 30 {
		t.Errorf("unexpected scan defaults: %+v", cfg.Scan)
	}
	if cfg.Scan.Critical.BuyConfidence != 60 || cfg.Scan.Critical.SellRawScore != 40 {
		t.Errorf("unexpected critical defaults: %+v", cfg.Scan.Critical)
	}
	if cfg.Logger.Level != "info" || cfg.Logger.Format != "console" {
		t.Errorf("unexpected logger defaults: %+v", cfg.Logger)
	}
}

func TestLoadRejectsMissingSymbols(t *testing.T) {
	body := `
environment: test
server:
  port: 8080
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatal("expected validation error for empty symbols")
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	body := `
environment: test
server:
  port: 70000
binance:
  symbols: [BTCUSDT]
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatal("expected validation error for port out of range")
	}
}

func TestLoadRejectsKafkaWithoutBrokers(t *testing.T) {
	body := minimalYAML + `
kafka:
  enabled: true
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatal("expected validation error for kafka without brokers")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("SYMBOLS", "SOLUSDT,ADAUSDT")
	t.Setenv("REDIS_ADDR", "cache.internal:6380")

	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Binance.Symbols) != 2 || cfg.Binance.Symbols[0] != "SOLUSDT" {
		t.Errorf("SYMBOLS override not applied: %v", cfg.Binance.Symbols)
	}
	if cfg.Redis.Host != "cache.internal" || cfg.Redis.Port != 6380 {
		t.Errorf("REDIS_ADDR override not applied: %s:%d", cfg.Redis.Host, cfg.Redis.Port)
	}
}

func TestLoadWithEnvRejectsBadRedisAddr(t *testing.T) {
	t.Setenv("REDIS_ADDR", "no-port")

	if _, err := LoadWithEnv(writeConfig(t, minimalYAML)); err == nil {
		t.Fatal("expected error for malformed REDIS_ADDR")
	}
}
