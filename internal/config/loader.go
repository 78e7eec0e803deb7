package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies PAIRBOT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known PAIRBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Wallet ──
	setStr(&cfg.Wallet.PrivateKey, "PAIRBOT_WALLET_PRIVATE_KEY")
	setStr(&cfg.Wallet.EncryptedKeyPath, "PAIRBOT_WALLET_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Wallet.KeyPassword, "PAIRBOT_WALLET_KEY_PASSWORD")

	// ── Polymarket ──
	setStr(&cfg.Polymarket.ClobHost, "PAIRBOT_POLYMARKET_CLOB_HOST")
	setStr(&cfg.Polymarket.GammaHost, "PAIRBOT_POLYMARKET_GAMMA_HOST")
	setInt(&cfg.Polymarket.ChainID, "PAIRBOT_POLYMARKET_CHAIN_ID")

	// ── Credentials ──
	setStr(&cfg.Credentials.ApiKey, "PAIRBOT_CREDENTIALS_API_KEY")
	setStr(&cfg.Credentials.ApiSecret, "PAIRBOT_CREDENTIALS_API_SECRET")
	setStr(&cfg.Credentials.ApiPassphrase, "PAIRBOT_CREDENTIALS_API_PASSPHRASE")

	// ── Discovery ──
	setStringSlice(&cfg.Discovery.IncludeKeywords, "PAIRBOT_DISCOVERY_INCLUDE_KEYWORDS")
	setStringSlice(&cfg.Discovery.ExcludeKeywords, "PAIRBOT_DISCOVERY_EXCLUDE_KEYWORDS")
	setStringSlice(&cfg.Discovery.Categories, "PAIRBOT_DISCOVERY_CATEGORIES")
	setFloat64(&cfg.Discovery.MinVolume, "PAIRBOT_DISCOVERY_MIN_VOLUME")
	setFloat64(&cfg.Discovery.MinLiquidity, "PAIRBOT_DISCOVERY_MIN_LIQUIDITY")
	setBool(&cfg.Discovery.OnlyActive, "PAIRBOT_DISCOVERY_ONLY_ACTIVE")
	setInt(&cfg.Discovery.MaxMarkets, "PAIRBOT_DISCOVERY_MAX_MARKETS")

	// ── Trading ──
	setFloat64(&cfg.Trading.MinEdgeBps, "PAIRBOT_TRADING_MIN_EDGE_BPS")
	setFloat64(&cfg.Trading.FeeBps, "PAIRBOT_TRADING_FEE_BPS")
	setFloat64(&cfg.Trading.SlippageBps, "PAIRBOT_TRADING_SLIPPAGE_BPS")
	setFloat64(&cfg.Trading.MaxSlippageLiveBps, "PAIRBOT_TRADING_MAX_SLIPPAGE_LIVE_BPS")
	setFloat64(&cfg.Trading.MinOrderSize, "PAIRBOT_TRADING_MIN_ORDER_SIZE")
	setFloat64(&cfg.Trading.MaxNotionalPerTrade, "PAIRBOT_TRADING_MAX_NOTIONAL_PER_TRADE")
	setFloat64(&cfg.Trading.MaxDailyNotional, "PAIRBOT_TRADING_MAX_DAILY_NOTIONAL")
	setInt(&cfg.Trading.MaxOpenOrders, "PAIRBOT_TRADING_MAX_OPEN_ORDERS")
	setDuration(&cfg.Trading.SettleWait, "PAIRBOT_TRADING_SETTLE_WAIT")
	setDuration(&cfg.Trading.Cooldown, "PAIRBOT_TRADING_COOLDOWN")
	setInt(&cfg.Trading.ArchiveRetentionDays, "PAIRBOT_TRADING_ARCHIVE_RETENTION_DAYS")

	// ── Database ──
	setStr(&cfg.Database.DSN, "PAIRBOT_DATABASE_DSN")
	setStr(&cfg.Database.Host, "PAIRBOT_DATABASE_HOST")
	setInt(&cfg.Database.Port, "PAIRBOT_DATABASE_PORT")
	setStr(&cfg.Database.Database, "PAIRBOT_DATABASE_DATABASE")
	setStr(&cfg.Database.User, "PAIRBOT_DATABASE_USER")
	setStr(&cfg.Database.Password, "PAIRBOT_DATABASE_PASSWORD")
	setStr(&cfg.Database.SSLMode, "PAIRBOT_DATABASE_SSL_MODE")
	setInt(&cfg.Database.PoolMaxConns, "PAIRBOT_DATABASE_POOL_MAX_CONNS")
	setInt(&cfg.Database.PoolMinConns, "PAIRBOT_DATABASE_POOL_MIN_CONNS")
	setBool(&cfg.Database.RunMigrations, "PAIRBOT_DATABASE_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "PAIRBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "PAIRBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "PAIRBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "PAIRBOT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "PAIRBOT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "PAIRBOT_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "PAIRBOT_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "PAIRBOT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "PAIRBOT_S3_REGION")
	setStr(&cfg.S3.Bucket, "PAIRBOT_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "PAIRBOT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "PAIRBOT_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "PAIRBOT_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "PAIRBOT_S3_FORCE_PATH_STYLE")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "PAIRBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "PAIRBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "PAIRBOT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "PAIRBOT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "PAIRBOT_MODE")
	setStr(&cfg.LogLevel, "PAIRBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
