// Package config defines the top-level configuration for the pair
// arbitrage bot and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by PAIRBOT_* environment variables.
type Config struct {
	Wallet      WalletConfig      `toml:"wallet"`
	Polymarket  PolymarketConfig  `toml:"polymarket"`
	Credentials CredentialsConfig `toml:"credentials"`
	Discovery   DiscoveryConfig   `toml:"discovery"`
	Trading     TradingConfig     `toml:"trading"`
	Database    DatabaseConfig    `toml:"database"`
	Redis       RedisConfig       `toml:"redis"`
	S3          S3Config          `toml:"s3"`
	Notify      NotifyConfig      `toml:"notify"`
	Mode        string            `toml:"mode"`
	LogLevel    string            `toml:"log_level"`
}

// WalletConfig holds Ethereum wallet credentials used to derive CLOB API keys.
type WalletConfig struct {
	PrivateKey       string `toml:"private_key"`
	EncryptedKeyPath string `toml:"encrypted_key_path"`
	KeyPassword      string `toml:"key_password"`
}

// PolymarketConfig holds API endpoints and chain parameters.
type PolymarketConfig struct {
	ClobHost  string `toml:"clob_host"`
	GammaHost string `toml:"gamma_host"`
	ChainID   int    `toml:"chain_id"`
}

// CredentialsConfig holds pre-derived CLOB API credentials. When all three
// fields are set the auth derivation step is skipped.
type CredentialsConfig struct {
	ApiKey        string `toml:"api_key"`
	ApiSecret     string `toml:"api_secret"`
	ApiPassphrase string `toml:"api_passphrase"`
}

// DiscoveryConfig holds market selection criteria.
type DiscoveryConfig struct {
	IncludeKeywords []string `toml:"include_keywords"`
	ExcludeKeywords []string `toml:"exclude_keywords"`
	Categories      []string `toml:"categories"`
	MinVolume       float64  `toml:"min_volume"`
	MinLiquidity    float64  `toml:"min_liquidity"`
	OnlyActive      bool     `toml:"only_active"`
	MaxMarkets      int      `toml:"max_markets"`
}

// TradingConfig holds edge thresholds, risk limits, and execution timing.
type TradingConfig struct {
	MinEdgeBps           float64  `toml:"min_edge_bps"`
	FeeBps               float64  `toml:"fee_bps"`
	SlippageBps          float64  `toml:"slippage_bps"`
	MaxSlippageLiveBps   float64  `toml:"max_slippage_live_bps"`
	MinOrderSize         float64  `toml:"min_order_size"`
	MaxNotionalPerTrade  float64  `toml:"max_notional_per_trade"`
	MaxDailyNotional     float64  `toml:"max_daily_notional"`
	MaxOpenOrders        int      `toml:"max_open_orders"`
	SettleWait           duration `toml:"settle_wait"`
	Cooldown             duration `toml:"cooldown"`
	ArchiveRetentionDays int      `toml:"archive_retention_days"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			ClobHost:  "https://clob.polymarket.com",
			GammaHost: "https://gamma-api.polymarket.com",
			ChainID:   137,
		},
		Discovery: DiscoveryConfig{
			MinVolume:    10000,
			MinLiquidity: 1000,
			OnlyActive:   true,
			MaxMarkets:   50,
		},
		Trading: TradingConfig{
			MinEdgeBps:           30,
			FeeBps:               0,
			SlippageBps:          20,
			MaxSlippageLiveBps:   100,
			MinOrderSize:         5,
			MaxNotionalPerTrade:  50,
			MaxDailyNotional:     500,
			MaxOpenOrders:        4,
			SettleWait:           duration{3 * time.Second},
			Cooldown:             duration{2 * time.Second},
			ArchiveRetentionDays: 90,
		},
		Database: DatabaseConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "pairbot",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "pairbot-data",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Notify: NotifyConfig{
			Events: []string{"opportunity", "fill", "imbalance", "limit"},
		},
		Mode:     "scan",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":    true,
	"live":    true,
	"archive": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, live, archive)", c.Mode))
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Live trading always needs a wallet key: authenticated requests carry the
	// signer's address even when the API credentials are pre-derived.
	if strings.ToLower(c.Mode) == "live" {
		hasWallet := c.Wallet.PrivateKey != "" || c.Wallet.EncryptedKeyPath != ""
		if !hasWallet {
			errs = append(errs, "live mode requires a wallet key source (wallet.private_key or wallet.encrypted_key_path)")
		}
		if c.Wallet.EncryptedKeyPath != "" && c.Wallet.KeyPassword == "" {
			errs = append(errs, "wallet: key_password is required when encrypted_key_path is set")
		}
	}

	// Credentials — all three fields must be set together, or all empty.
	ck := c.Credentials.ApiKey != ""
	cs := c.Credentials.ApiSecret != ""
	cp := c.Credentials.ApiPassphrase != ""
	if (ck || cs || cp) && !(ck && cs && cp) {
		errs = append(errs, "credentials: api_key, api_secret, and api_passphrase must all be set together")
	}

	if c.Polymarket.ClobHost == "" {
		errs = append(errs, "polymarket: clob_host must not be empty")
	}
	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}
	if c.Polymarket.ChainID <= 0 {
		errs = append(errs, "polymarket: chain_id must be positive")
	}

	// Trading
	if c.Trading.MinEdgeBps <= 0 {
		errs = append(errs, "trading: min_edge_bps must be > 0")
	}
	if c.Trading.FeeBps < 0 {
		errs = append(errs, "trading: fee_bps must be >= 0")
	}
	if c.Trading.SlippageBps < 0 {
		errs = append(errs, "trading: slippage_bps must be >= 0")
	}
	if c.Trading.MinOrderSize <= 0 {
		errs = append(errs, "trading: min_order_size must be > 0")
	}
	if c.Trading.MaxNotionalPerTrade <= 0 {
		errs = append(errs, "trading: max_notional_per_trade must be > 0")
	}
	if c.Trading.MaxDailyNotional <= 0 {
		errs = append(errs, "trading: max_daily_notional must be > 0")
	}
	if c.Trading.MaxOpenOrders < 1 {
		errs = append(errs, "trading: max_open_orders must be >= 1")
	}
	if c.Trading.SettleWait.Duration <= 0 {
		errs = append(errs, "trading: settle_wait must be > 0")
	}

	// Discovery
	if c.Discovery.MaxMarkets < 0 {
		errs = append(errs, "discovery: max_markets must be >= 0")
	}

	// Database
	if strings.TrimSpace(c.Database.DSN) == "" {
		if c.Database.Host == "" {
			errs = append(errs, "database: host must not be empty (or set database.dsn)")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database: port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.Database == "" {
			errs = append(errs, "database: database must not be empty")
		}
	}
	if c.Database.PoolMaxConns < 1 {
		errs = append(errs, "database: pool_max_conns must be >= 1")
	}
	if c.Database.PoolMinConns < 0 {
		errs = append(errs, "database: pool_min_conns must be >= 0")
	}
	if c.Database.PoolMinConns > c.Database.PoolMaxConns {
		errs = append(errs, "database: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
