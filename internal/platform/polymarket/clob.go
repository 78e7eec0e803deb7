package polymarket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alanyoungcy/pairbot/internal/crypto"
	"github.com/alanyoungcy/pairbot/internal/domain"
)

// ClobClient is the REST client for the Polymarket CLOB (Central Limit
// Order Book) API. It serves order-book reads, limit order placement,
// cancellation, and status polls.
type ClobClient struct {
	baseURL    string
	httpClient *http.Client
	signer     *crypto.Signer
	hmacAuth   *crypto.HMACAuth
}

// NewClobClient creates a new CLOB REST client.
//
// baseURL is the CLOB API root, e.g. "https://clob.polymarket.com".
// signer may be nil for read-only (dry-run) use; authenticated calls then
// fail with domain.ErrMissingCredentials.
func NewClobClient(baseURL string, signer *crypto.Signer, hmac *crypto.HMACAuth) *ClobClient {
	return &ClobClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		signer:   signer,
		hmacAuth: hmac,
	}
}

// GetOrderBook fetches the current order-book snapshot for a token. The
// endpoint is public; no auth headers are attached.
func (c *ClobClient) GetOrderBook(ctx context.Context, tokenID string) (domain.OrderBook, error) {
	path := "/book?token_id=" + url.QueryEscape(tokenID)

	respBody, err := c.doRequest(ctx, http.MethodGet, path, nil, false)
	if err != nil {
		return domain.OrderBook{}, fmt.Errorf("polymarket/clob: get book for %s: %w", tokenID, err)
	}

	var book APIBook
	if err := json.Unmarshal(respBody, &book); err != nil {
		return domain.OrderBook{}, fmt.Errorf("polymarket/clob: decode book: %w", err)
	}
	if book.AssetID == "" {
		book.AssetID = tokenID
	}
	return book.ToDomainOrderBook(), nil
}

// PlaceLimitBuy submits a limit buy for size units of tokenID at price.
func (c *ClobClient) PlaceLimitBuy(ctx context.Context, tokenID string, price, size float64) (domain.OrderResult, error) {
	body := map[string]any{
		"token_id": tokenID,
		"side":     "BUY",
		"type":     "GTC",
		"price":    strconv.FormatFloat(price, 'f', -1, 64),
		"size":     strconv.FormatFloat(size, 'f', -1, 64),
	}

	respBody, err := c.doRequest(ctx, http.MethodPost, "/order", body, true)
	if err != nil {
		return domain.OrderResult{}, fmt.Errorf("polymarket/clob: place limit buy: %w", err)
	}

	var apiResult APIOrderResult
	if err := json.Unmarshal(respBody, &apiResult); err != nil {
		return domain.OrderResult{}, fmt.Errorf("polymarket/clob: decode order result: %w", err)
	}
	if !apiResult.Success {
		return domain.OrderResult{}, fmt.Errorf("polymarket/clob: order rejected: %s", apiResult.ErrorMsg)
	}

	return domain.OrderResult{OrderID: apiResult.OrderID, Status: apiResult.Status}, nil
}

// Cancel cancels a single order by its exchange ID.
func (c *ClobClient) Cancel(ctx context.Context, orderID string) error {
	body := map[string]any{
		"orderID": orderID,
	}

	respBody, err := c.doRequest(ctx, http.MethodDelete, "/order", body, true)
	if err != nil {
		return fmt.Errorf("polymarket/clob: cancel order %s: %w", orderID, err)
	}

	var result struct {
		Success  bool   `json:"success"`
		ErrorMsg string `json:"errorMsg"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("polymarket/clob: decode cancel response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("polymarket/clob: cancel failed: %s", result.ErrorMsg)
	}

	return nil
}

// GetOrderStatus polls a single order's current state.
func (c *ClobClient) GetOrderStatus(ctx context.Context, orderID string) (domain.OrderState, error) {
	path := fmt.Sprintf("/order/%s", orderID)

	respBody, err := c.doRequest(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return domain.OrderState{}, fmt.Errorf("polymarket/clob: get order %s: %w", orderID, err)
	}

	var status APIOrderStatus
	if err := json.Unmarshal(respBody, &status); err != nil {
		return domain.OrderState{}, fmt.Errorf("polymarket/clob: decode order status: %w", err)
	}
	return status.ToDomainOrderState(), nil
}

// DeriveAPIKey performs the CLOB auth flow to obtain an HMAC API key. It
// signs a ClobAuth EIP-712 message and sends it with L1 headers to the
// derive-api-key endpoint. L1 requires POLY_ADDRESS, POLY_SIGNATURE,
// POLY_TIMESTAMP, POLY_NONCE. On success it populates the client's hmacAuth
// field.
func (c *ClobClient) DeriveAPIKey(ctx context.Context) error {
	if c.signer == nil {
		return fmt.Errorf("polymarket/clob: derive api key: %w", domain.ErrMissingCredentials)
	}

	address := c.signer.Address().Hex()
	timestamp := time.Now().Unix()
	nonce := int64(0)

	sig, err := c.signer.SignAuthMessage(address, timestamp, nonce)
	if err != nil {
		return fmt.Errorf("polymarket/clob: sign auth message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/derive-api-key", nil)
	if err != nil {
		return fmt.Errorf("polymarket/clob: create auth request: %w", err)
	}
	req.Header.Set("POLY_ADDRESS", address)
	req.Header.Set("POLY_SIGNATURE", sig)
	req.Header.Set("POLY_TIMESTAMP", fmt.Sprintf("%d", timestamp))
	req.Header.Set("POLY_NONCE", fmt.Sprintf("%d", nonce))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("polymarket/clob: auth request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("polymarket/clob: read auth response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("polymarket/clob: auth failed (HTTP %d): %s", resp.StatusCode, string(respBody))
	}

	var authResp struct {
		APIKey     string `json:"apiKey"`
		Secret     string `json:"secret"`
		Passphrase string `json:"passphrase"`
	}
	if err := json.Unmarshal(respBody, &authResp); err != nil {
		return fmt.Errorf("polymarket/clob: decode auth response: %w", err)
	}

	c.hmacAuth = &crypto.HMACAuth{
		Key:        authResp.APIKey,
		Secret:     authResp.Secret,
		Passphrase: authResp.Passphrase,
	}

	return nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doRequest builds, optionally signs (HMAC), sends, and reads an HTTP request
// against the CLOB API. It returns the raw response body.
func (c *ClobClient) doRequest(ctx context.Context, method, path string, body any, authenticated bool) ([]byte, error) {
	if authenticated && (c.hmacAuth == nil || c.signer == nil) {
		return nil, domain.ErrMissingCredentials
	}

	var bodyReader io.Reader
	var bodyStr string

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyStr = string(jsonBody)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authenticated {
		address := c.signer.Address().Hex()
		headers := c.hmacAuth.L2Headers(address, method, path, bodyStr)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}

	return respBody, nil
}

// checkHTTPStatus maps non-2xx status codes to appropriate domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}
