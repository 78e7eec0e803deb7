package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_AreValid(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "bogus"
	cfg.LogLevel = "loud"
	cfg.Trading.MinEdgeBps = 0
	cfg.Redis.Addr = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "unknown log_level")
	assert.Contains(t, err.Error(), "min_edge_bps")
	assert.Contains(t, err.Error(), "redis: addr")
}

func TestValidate_LiveModeNeedsWalletKey(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "live"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "live mode requires a wallet key source")

	// Pre-derived API credentials alone are not enough: authenticated
	// requests still need the wallet address.
	cfg.Credentials = CredentialsConfig{ApiKey: "k", ApiSecret: "s", ApiPassphrase: "p"}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "live mode requires a wallet key source")

	cfg.Wallet.PrivateKey = "0xabc"
	assert.NoError(t, cfg.Validate())

	cfg.Credentials = CredentialsConfig{}
	assert.NoError(t, cfg.Validate())
}

func TestValidate_PartialCredentialsRejected(t *testing.T) {
	cfg := Defaults()
	cfg.Credentials.ApiKey = "k"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must all be set together")
}

func TestLoad_MergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
mode = "live"

[trading]
min_edge_bps = 45.0
settle_wait = "7s"

[credentials]
api_key = "file-key"
api_secret = "file-secret"
api_passphrase = "file-pass"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("PAIRBOT_CREDENTIALS_API_KEY", "env-key")
	t.Setenv("PAIRBOT_TRADING_MAX_DAILY_NOTIONAL", "750")

	cfg, err := Load(path)
	require.NoError(t, err)

	// File overrides defaults; env overrides file.
	assert.Equal(t, "live", cfg.Mode)
	assert.Equal(t, 45.0, cfg.Trading.MinEdgeBps)
	assert.Equal(t, 7*time.Second, cfg.Trading.SettleWait.Duration)
	assert.Equal(t, "env-key", cfg.Credentials.ApiKey)
	assert.Equal(t, "file-secret", cfg.Credentials.ApiSecret)
	assert.Equal(t, 750.0, cfg.Trading.MaxDailyNotional)

	// Untouched fields keep defaults.
	assert.Equal(t, "https://clob.polymarket.com", cfg.Polymarket.ClobHost)
}
