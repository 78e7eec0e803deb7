package discovery

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/pairbot/internal/domain"
)

type staticSource struct {
	markets []domain.MarketInfo
}

func (s *staticSource) ListMarkets(_ context.Context, _ int) ([]domain.MarketInfo, error) {
	return s.markets, nil
}

func tradable(id, question string) domain.MarketInfo {
	return domain.MarketInfo{
		ID:         id,
		Question:   question,
		YesTokenID: id + "-yes",
		NoTokenID:  id + "-no",
		Volume:     50000,
		Liquidity:  10000,
		Category:   "crypto",
		Active:     true,
	}
}

func TestMatches_RequiresBothTokens(t *testing.T) {
	d := New(nil, Config{}, slog.Default())

	m := tradable("m1", "Will BTC close above 100k?")
	assert.True(t, d.Matches(m))

	m.NoTokenID = ""
	assert.False(t, d.Matches(m))

	m = tradable("m1", "q")
	m.YesTokenID = ""
	assert.False(t, d.Matches(m))
}

func TestMatches_Keywords(t *testing.T) {
	d := New(nil, Config{
		IncludeKeywords: []string{"BTC", "eth"},
		ExcludeKeywords: []string{"parlay"},
	}, slog.Default())

	assert.True(t, d.Matches(tradable("m1", "Will btc close above 100k?")))
	assert.True(t, d.Matches(tradable("m2", "ETH above 5k by June?")))
	assert.False(t, d.Matches(tradable("m3", "Will it rain tomorrow?")))
	// Exclusion wins even when an include keyword matches.
	assert.False(t, d.Matches(tradable("m4", "BTC parlay special")))
}

func TestMatches_DepthAndActivity(t *testing.T) {
	d := New(nil, Config{
		MinVolume:    1000,
		MinLiquidity: 500,
		OnlyActive:   true,
	}, slog.Default())

	m := tradable("m1", "q")
	assert.True(t, d.Matches(m))

	m.Volume = 999
	assert.False(t, d.Matches(m))

	m = tradable("m1", "q")
	m.Liquidity = 499
	assert.False(t, d.Matches(m))

	m = tradable("m1", "q")
	m.Active = false
	assert.False(t, d.Matches(m))
}

func TestMatches_Categories(t *testing.T) {
	d := New(nil, Config{Categories: []string{"Crypto", "politics"}}, slog.Default())

	assert.True(t, d.Matches(tradable("m1", "q"))) // category "crypto"

	m := tradable("m2", "q")
	m.Category = "sports"
	assert.False(t, d.Matches(m))
}

func TestDiscover_CapsAtMaxMarkets(t *testing.T) {
	src := &staticSource{}
	for i := 0; i < 10; i++ {
		src.markets = append(src.markets, tradable(string(rune('a'+i)), "q"))
	}

	d := New(src, Config{MaxMarkets: 3}, slog.Default())
	got, err := d.Discover(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestDiscover_FiltersBeforeCapping(t *testing.T) {
	inactive := tradable("skip", "q")
	inactive.Active = false

	src := &staticSource{markets: []domain.MarketInfo{
		inactive,
		tradable("keep1", "q"),
		tradable("keep2", "q"),
	}}

	d := New(src, Config{OnlyActive: true, MaxMarkets: 2}, slog.Default())
	got, err := d.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "keep1", got[0].ID)
	assert.Equal(t, "keep2", got[1].ID)
}
