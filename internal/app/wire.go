package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	s3blob "github.com/alanyoungcy/pairbot/internal/blob/s3"
	"github.com/alanyoungcy/pairbot/internal/cache/redis"
	"github.com/alanyoungcy/pairbot/internal/config"
	"github.com/alanyoungcy/pairbot/internal/crypto"
	"github.com/alanyoungcy/pairbot/internal/domain"
	"github.com/alanyoungcy/pairbot/internal/notify"
	"github.com/alanyoungcy/pairbot/internal/platform/polymarket"
	"github.com/alanyoungcy/pairbot/internal/store/postgres"
)

// Dependencies bundles every dependency the application modes need. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	// Stores
	RunStore         domain.RunStore
	OpportunityStore domain.OpportunityStore
	OrderStore       domain.OrderStore
	ImbalanceStore   domain.ImbalanceStore
	DailyNotional    domain.DailyNotionalStore

	// Coordination
	LockManager domain.LockManager

	// Exchange
	Clob  *polymarket.ClobClient
	Gamma *polymarket.GammaClient

	// Object storage; nil unless S3 is enabled or the mode is archive.
	Archiver *s3blob.Archiver

	// Notifications
	Notifier *notify.Notifier
}

// needsS3 returns true for modes that require object storage.
func needsS3(cfg *config.Config) bool {
	return cfg.S3.Enabled || strings.ToLower(cfg.Mode) == "archive"
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Database.DSN,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Database,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.PoolMaxConns,
		MinConns: cfg.Database.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Database.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.RunStore = postgres.NewRunStore(pool)
	deps.OpportunityStore = postgres.NewOpportunityStore(pool)
	deps.OrderStore = postgres.NewOrderStore(pool)
	deps.ImbalanceStore = postgres.NewImbalanceStore(pool)
	deps.DailyNotional = postgres.NewDailyNotionalStore(pool)

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.LockManager = redis.NewLockManager(redisClient)

	// --- Exchange clients ---
	deps.Gamma = polymarket.NewGammaClient(cfg.Polymarket.GammaHost)

	clob, err := buildClobClient(ctx, cfg, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	deps.Clob = clob

	// --- S3 ---
	if needsS3(cfg) {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}

		deps.Archiver = s3blob.NewArchiver(
			s3blob.NewWriter(s3Client),
			deps.OpportunityStore,
			deps.OrderStore,
			deps.ImbalanceStore,
			logger,
		)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}

// buildClobClient assembles the CLOB client, resolving credentials for live
// mode. Pre-derived API credentials win over wallet-based derivation; scan
// and archive modes get an unauthenticated read-only client.
func buildClobClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*polymarket.ClobClient, error) {
	live := strings.ToLower(cfg.Mode) == "live"

	var signer *crypto.Signer
	if cfg.Wallet.PrivateKey != "" || cfg.Wallet.EncryptedKeyPath != "" {
		key, err := crypto.LoadKey(crypto.KeyConfig{
			RawPrivateKey:    cfg.Wallet.PrivateKey,
			EncryptedKeyPath: cfg.Wallet.EncryptedKeyPath,
			KeyPassword:      cfg.Wallet.KeyPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("wire: load wallet key: %w", err)
		}
		signer, err = crypto.NewSigner(key, cfg.Polymarket.ChainID)
		if err != nil {
			return nil, fmt.Errorf("wire: signer: %w", err)
		}
	}

	// Authenticated requests need the signer's address even with pre-derived
	// credentials, so a signer-less live run must die here, not mid-sweep.
	if live && signer == nil {
		return nil, fmt.Errorf("wire: live mode: %w", domain.ErrMissingCredentials)
	}

	var hmacAuth *crypto.HMACAuth
	if cfg.Credentials.ApiKey != "" {
		hmacAuth = &crypto.HMACAuth{
			Key:        cfg.Credentials.ApiKey,
			Secret:     cfg.Credentials.ApiSecret,
			Passphrase: cfg.Credentials.ApiPassphrase,
		}
	}

	clob := polymarket.NewClobClient(cfg.Polymarket.ClobHost, signer, hmacAuth)

	// Live mode without pre-derived credentials derives them via ClobAuth.
	if live && hmacAuth == nil {
		if err := clob.DeriveAPIKey(ctx); err != nil {
			return nil, fmt.Errorf("wire: derive api key: %w", err)
		}
		logger.InfoContext(ctx, "derived CLOB API credentials")
	}

	return clob, nil
}
