package polymarket

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/pairbot/internal/domain"
)

// flexFloat unmarshals from a JSON number or a numeric string, since the
// Gamma and CLOB APIs switch between the two across endpoints.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("flex float: %s", string(data))
	}
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("flex float %q: %w", s, err)
	}
	*f = flexFloat(n)
	return nil
}

// flexBool unmarshals from JSON bool or string ("true"/"false"/"1") so market
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// --------------------------------------------------------------------------
// Order book DTOs
// --------------------------------------------------------------------------

// BookLevel is one price level of an order book. The API encodes levels
// either as an object with price/size keys (long or short form) or as a
// two-element [price, size] array; both decode into the same canonical level.
type BookLevel struct {
	Price float64
	Size  float64
}

func (l *BookLevel) UnmarshalJSON(data []byte) error {
	var obj struct {
		Price *flexFloat `json:"price"`
		P     *flexFloat `json:"p"`
		Size  *flexFloat `json:"size"`
		S     *flexFloat `json:"s"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && (obj.Price != nil || obj.P != nil) {
		l.Price = coalesce(obj.Price, obj.P)
		l.Size = coalesce(obj.Size, obj.S)
		return nil
	}

	var pair []flexFloat
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("book level: unrecognized encoding: %s", string(data))
	}
	if len(pair) < 2 {
		return fmt.Errorf("book level: pair needs 2 elements, got %d", len(pair))
	}
	l.Price = float64(pair[0])
	l.Size = float64(pair[1])
	return nil
}

func coalesce(vals ...*flexFloat) float64 {
	for _, v := range vals {
		if v != nil {
			return float64(*v)
		}
	}
	return 0
}

// APIBook is an order-book snapshot from the CLOB REST API. Some deployments
// name the ask ladder "asks", others "ask"; Levels() merges the two.
type APIBook struct {
	AssetID   string      `json:"asset_id"`
	Market    string      `json:"market"`
	Asks      []BookLevel `json:"asks"`
	Ask       []BookLevel `json:"ask"`
	Bids      []BookLevel `json:"bids"`
	Timestamp string      `json:"timestamp"`
}

// ToDomainOrderBook converts the snapshot to canonical domain levels.
func (b *APIBook) ToDomainOrderBook() domain.OrderBook {
	asks := b.Asks
	if len(asks) == 0 {
		asks = b.Ask
	}

	book := domain.OrderBook{
		AssetID: b.AssetID,
		Asks:    make([]domain.PriceLevel, 0, len(asks)),
		Bids:    make([]domain.PriceLevel, 0, len(b.Bids)),
	}
	for _, lvl := range asks {
		book.Asks = append(book.Asks, domain.PriceLevel{Price: lvl.Price, Size: lvl.Size})
	}
	for _, lvl := range b.Bids {
		book.Bids = append(book.Bids, domain.PriceLevel{Price: lvl.Price, Size: lvl.Size})
	}

	if ts, err := strconv.ParseInt(b.Timestamp, 10, 64); err == nil {
		book.Timestamp = time.UnixMilli(ts)
	} else if t, err := time.Parse(time.RFC3339, b.Timestamp); err == nil {
		book.Timestamp = t
	} else {
		book.Timestamp = time.Now()
	}
	return book
}

// --------------------------------------------------------------------------
// CLOB order DTOs
// --------------------------------------------------------------------------

// APIOrderResult is the response from placing an order via the CLOB API.
type APIOrderResult struct {
	Success  bool   `json:"success"`
	ErrorMsg string `json:"errorMsg,omitempty"`
	OrderID  string `json:"orderID,omitempty"`
	Status   string `json:"status,omitempty"`
}

// APIOrderStatus is a single order's state as polled from the CLOB API. The
// venue reports it under "status" on some endpoints and "state" on others.
type APIOrderStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	State  string `json:"state"`
}

// ToDomainOrderState keeps both raw fields so callers apply the status-or-
// state precedence themselves.
func (s *APIOrderStatus) ToDomainOrderState() domain.OrderState {
	return domain.OrderState{Status: s.Status, State: s.State}
}

// --------------------------------------------------------------------------
// Catalog DTOs
// --------------------------------------------------------------------------

// APIToken is a token entry inside a market's tokens or outcomes collection.
type APIToken struct {
	TokenID string `json:"token_id"`
	ID      string `json:"tokenId"`
	Outcome string `json:"outcome"`
}

func (t *APIToken) tokenID() string {
	if t.TokenID != "" {
		return t.TokenID
	}
	return t.ID
}

// APIMarket represents a market as returned by the catalog API. Token IDs can
// arrive as top-level fields (snake or camel case) or inside a tokens/outcomes
// collection keyed by outcome label.
type APIMarket struct {
	ID           string `json:"id"`
	ConditionID  string `json:"condition_id"`
	Question     string `json:"question"`
	Category     string `json:"category"`
	YesTokenID   string `json:"yes_token_id"`
	YesTokenCC   string `json:"yesTokenId"`
	NoTokenID    string `json:"no_token_id"`
	NoTokenCC    string `json:"noTokenId"`
	Tokens       []APIToken `json:"tokens"`
	Outcomes     []APIToken `json:"outcomes"`
	Volume       flexFloat  `json:"volume"`
	VolumeNum    flexFloat  `json:"volumeNum"`
	Liquidity    flexFloat  `json:"liquidity"`
	LiquidityNum flexFloat  `json:"liquidityNum"`
	Active       flexBool   `json:"active"`
	Closed       flexBool   `json:"closed"`
}

// ToDomainMarket converts the catalog entry to a domain.MarketInfo. Markets
// where the yes or no token cannot be located come back with the respective
// ID empty; discovery drops those.
func (m *APIMarket) ToDomainMarket() domain.MarketInfo {
	info := domain.MarketInfo{
		ID:        m.ID,
		Question:  m.Question,
		Category:  m.Category,
		Volume:    float64(m.Volume),
		Liquidity: float64(m.Liquidity),
		Active:    bool(m.Active) && !bool(m.Closed),
	}
	if info.ID == "" {
		info.ID = m.ConditionID
	}
	if info.Volume == 0 {
		info.Volume = float64(m.VolumeNum)
	}
	if info.Liquidity == 0 {
		info.Liquidity = float64(m.LiquidityNum)
	}

	info.YesTokenID = firstNonEmpty(m.YesTokenID, m.YesTokenCC)
	info.NoTokenID = firstNonEmpty(m.NoTokenID, m.NoTokenCC)

	if info.YesTokenID == "" || info.NoTokenID == "" {
		yes, no := tokensByOutcome(m.Tokens)
		if yes == "" && no == "" {
			yes, no = tokensByOutcome(m.Outcomes)
		}
		if info.YesTokenID == "" {
			info.YesTokenID = yes
		}
		if info.NoTokenID == "" {
			info.NoTokenID = no
		}
	}
	return info
}

// tokensByOutcome maps a token collection's entries to the yes/no sides by
// outcome label. "yes"/"true" select the yes side, "no"/"false" the no side.
func tokensByOutcome(tokens []APIToken) (yes, no string) {
	for i := range tokens {
		switch strings.ToLower(tokens[i].Outcome) {
		case "yes", "true":
			if yes == "" {
				yes = tokens[i].tokenID()
			}
		case "no", "false":
			if no == "" {
				no = tokens[i].tokenID()
			}
		}
	}
	return yes, no
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
