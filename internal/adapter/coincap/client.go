package coincap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/wooshnp/crypto-wallet-management/internal/domain"
)

// DefaultBaseURL is the public CoinCap REST API endpoint.
const DefaultBaseURL = "https://api.coincap.io/v2"

// Intervals supported by the history endpoint.
const (
	IntervalM1  = "m1"
	IntervalM5  = "m5"
	IntervalM15 = "m15"
	IntervalM30 = "m30"
	IntervalH1  = "h1"
	IntervalH2  = "h2"
	IntervalH6  = "h6"
	IntervalH12 = "h12"
	IntervalD1  = "d1"
)

// Asset is a CoinCap asset as returned by the /assets endpoints.
// All numeric fields arrive as strings; callers parse the ones they need.
type Asset struct {
	ID        string `json:"id"`
	Rank      string `json:"rank"`
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	PriceUsd  string `json:"priceUsd"`
	Supply    string `json:"supply"`
	MarketCap string `json:"marketCapUsd"`
}

// HistoryPoint is one bucketed price observation from the history endpoint.
type HistoryPoint struct {
	PriceUsd string `json:"priceUsd"`
	Time     int64  `json:"time"` // epoch milliseconds
}

// Client talks to the CoinCap REST API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new CoinCap client. An empty baseURL selects the
// public API; a nil httpClient selects http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

type assetResponse struct {
	Data *Asset `json:"data"`
}

type assetsResponse struct {
	Data []Asset `json:"data"`
}

type historyResponse struct {
	Data []HistoryPoint `json:"data"`
}

// GetAsset retrieves a single asset by its CoinCap ID.
// Returns domain.ErrAssetNotFound on a 404 or when the response carries
// no data object.
func (c *Client) GetAsset(ctx context.Context, id string) (*Asset, error) {
	var out assetResponse
	if err := c.getJSON(ctx, "/assets/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("get asset %s: %w", id, err)
	}
	if out.Data == nil {
		return nil, fmt.Errorf("get asset %s: empty response body: %w", id, domain.ErrAssetNotFound)
	}
	return out.Data, nil
}

// SearchAssets retrieves assets matching a free-text search with pagination.
func (c *Client) SearchAssets(ctx context.Context, search string, limit, offset int) ([]Asset, error) {
	query := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
	if search != "" {
		query.Set("search", search)
	}

	var out assetsResponse
	if err := c.getJSON(ctx, "/assets", query, &out); err != nil {
		return nil, fmt.Errorf("search assets %q: %w", search, err)
	}
	return out.Data, nil
}

// GetAssetHistory retrieves interval-bucketed price history for an asset.
// start and end are epoch-millisecond bounds.
func (c *Client) GetAssetHistory(ctx context.Context, id, interval string, start, end int64) ([]HistoryPoint, error) {
	query := url.Values{
		"interval": {interval},
		"start":    {strconv.FormatInt(start, 10)},
		"end":      {strconv.FormatInt(end, 10)},
	}

	var out historyResponse
	if err := c.getJSON(ctx, "/assets/"+url.PathEscape(id)+"/history", query, &out); err != nil {
		return nil, fmt.Errorf("get history for %s: %w", id, err)
	}
	return out.Data, nil
}

// getJSON performs a GET request and decodes the JSON body into out.
// A 404 maps to domain.ErrAssetNotFound; every other failure (transport,
// non-2xx status, malformed body) maps to domain.ProviderError.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &domain.ProviderError{Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.ProviderError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrAssetNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return &domain.ProviderError{Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.ProviderError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
