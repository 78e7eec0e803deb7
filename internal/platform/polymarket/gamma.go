package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/alanyoungcy/pairbot/internal/domain"
)

// GammaClient is the REST client for the Polymarket Gamma API, which serves
// the market catalog. All Gamma endpoints are public.
type GammaClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGammaClient creates a new Gamma REST client.
// baseURL is the API root, e.g. "https://gamma-api.polymarket.com".
func NewGammaClient(baseURL string) *GammaClient {
	return &GammaClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// marketList tolerates the catalog's varying envelope: the market array may
// sit under data, markets, or results, or be the top-level value itself.
type marketList []APIMarket

func (l *marketList) UnmarshalJSON(data []byte) error {
	var bare []APIMarket
	if err := json.Unmarshal(data, &bare); err == nil {
		*l = bare
		return nil
	}

	var wrapped struct {
		Data    []APIMarket `json:"data"`
		Markets []APIMarket `json:"markets"`
		Results []APIMarket `json:"results"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("market list: unrecognized envelope: %w", err)
	}
	switch {
	case wrapped.Data != nil:
		*l = wrapped.Data
	case wrapped.Markets != nil:
		*l = wrapped.Markets
	default:
		*l = wrapped.Results
	}
	return nil
}

// ListMarkets fetches up to limit catalog markets (0 means the API default)
// and converts them to domain form.
func (g *GammaClient) ListMarkets(ctx context.Context, limit int) ([]domain.MarketInfo, error) {
	path := "/markets"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: list markets: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: read response: %w", err)
	}
	if err := checkHTTPStatus(resp.StatusCode, respBody); err != nil {
		return nil, fmt.Errorf("polymarket/gamma: list markets: %w", err)
	}

	var list marketList
	if err := json.Unmarshal(respBody, &list); err != nil {
		return nil, fmt.Errorf("polymarket/gamma: decode markets: %w", err)
	}

	markets := make([]domain.MarketInfo, 0, len(list))
	for i := range list {
		markets = append(markets, list[i].ToDomainMarket())
	}
	return markets, nil
}
