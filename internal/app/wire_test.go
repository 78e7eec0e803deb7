package app

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/pairbot/internal/config"
	"github.com/alanyoungcy/pairbot/internal/domain"
)

// Well-known throwaway key, never funded.
const testWalletKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestBuildClobClient_LiveWithoutWalletFailsFast(t *testing.T) {
	cfg := config.Defaults()
	cfg.Mode = "live"
	cfg.Credentials = config.CredentialsConfig{
		ApiKey:        "key",
		ApiSecret:     "c2VjcmV0",
		ApiPassphrase: "pass",
	}

	_, err := buildClobClient(context.Background(), &cfg, slog.Default())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingCredentials)
}

func TestBuildClobClient_LiveWithWalletAndCredentials(t *testing.T) {
	cfg := config.Defaults()
	cfg.Mode = "live"
	cfg.Wallet.PrivateKey = testWalletKey
	cfg.Credentials = config.CredentialsConfig{
		ApiKey:        "key",
		ApiSecret:     "c2VjcmV0",
		ApiPassphrase: "pass",
	}

	// Full credentials skip derivation, so no network access happens here.
	clob, err := buildClobClient(context.Background(), &cfg, slog.Default())
	require.NoError(t, err)
	assert.NotNil(t, clob)
}

func TestBuildClobClient_ScanModeIsUnauthenticated(t *testing.T) {
	cfg := config.Defaults()
	cfg.Mode = "scan"

	clob, err := buildClobClient(context.Background(), &cfg, slog.Default())
	require.NoError(t, err)
	assert.NotNil(t, clob)
}
