// Package discovery selects tradable binary markets from a venue catalog by
// applying keyword, category, activity, and depth filters.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alanyoungcy/pairbot/internal/domain"
)

// Source lists candidate markets from the venue catalog.
type Source interface {
	ListMarkets(ctx context.Context, limit int) ([]domain.MarketInfo, error)
}

// Config holds the market selection criteria. Zero values disable the
// corresponding filter.
type Config struct {
	IncludeKeywords []string
	ExcludeKeywords []string
	Categories      []string
	MinVolume       float64
	MinLiquidity    float64
	OnlyActive      bool
	MaxMarkets      int
}

// Discoverer filters a Source's catalog down to executable candidates.
type Discoverer struct {
	source Source
	cfg    Config
	logger *slog.Logger
}

// New creates a Discoverer with the given selection criteria.
func New(source Source, cfg Config, logger *slog.Logger) *Discoverer {
	return &Discoverer{
		source: source,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "discovery")),
	}
}

// Discover returns the filtered candidate set, capped at MaxMarkets. Markets
// missing either outcome token are dropped regardless of other criteria since
// both legs are required for execution.
func (d *Discoverer) Discover(ctx context.Context) ([]domain.MarketInfo, error) {
	fetchLimit := 0
	if d.cfg.MaxMarkets > 0 {
		// Over-fetch so filtering still leaves enough candidates.
		fetchLimit = d.cfg.MaxMarkets * 4
	}

	markets, err := d.source.ListMarkets(ctx, fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("discovery: list markets: %w", err)
	}

	selected := make([]domain.MarketInfo, 0, len(markets))
	for _, m := range markets {
		if !d.Matches(m) {
			continue
		}
		selected = append(selected, m)
		if d.cfg.MaxMarkets > 0 && len(selected) == d.cfg.MaxMarkets {
			break
		}
	}

	d.logger.InfoContext(ctx, "market discovery complete",
		slog.Int("fetched", len(markets)),
		slog.Int("selected", len(selected)),
	)
	return selected, nil
}

// Matches reports whether a single market passes every configured filter.
func (d *Discoverer) Matches(m domain.MarketInfo) bool {
	if m.YesTokenID == "" || m.NoTokenID == "" {
		return false
	}
	if d.cfg.OnlyActive && !m.Active {
		return false
	}
	if m.Volume < d.cfg.MinVolume {
		return false
	}
	if m.Liquidity < d.cfg.MinLiquidity {
		return false
	}

	question := strings.ToLower(m.Question)
	for _, kw := range d.cfg.ExcludeKeywords {
		if strings.Contains(question, strings.ToLower(kw)) {
			return false
		}
	}
	if len(d.cfg.IncludeKeywords) > 0 && !containsAny(question, d.cfg.IncludeKeywords) {
		return false
	}
	if len(d.cfg.Categories) > 0 && !matchesCategory(m.Category, d.cfg.Categories) {
		return false
	}
	return true
}

func containsAny(haystack string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func matchesCategory(category string, allowed []string) bool {
	for _, c := range allowed {
		if strings.EqualFold(category, c) {
			return true
		}
	}
	return false
}
