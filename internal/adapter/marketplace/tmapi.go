package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pandamall/atlogistics/internal/domain"
)

// TMAPIConfig holds the configuration for the TMAPI upstream.
type TMAPIConfig struct {
	BaseURL string // e.g. https://tmapi.top/api
	Token   string // apiToken query credential; empty = not configured
	Timeout time.Duration
}

// TMAPIClient implements port.MarketplaceProvider against the TMAPI REST
// surface. Every request carries a hard client timeout so a slow upstream
// can never hang a caller.
type TMAPIClient struct {
	cfg        TMAPIConfig
	httpClient *http.Client
}

// NewTMAPIClient creates a new TMAPI-backed marketplace provider.
func NewTMAPIClient(cfg TMAPIConfig) *TMAPIClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &TMAPIClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Configured reports whether an upstream credential is present. Without one
// the proxy layer serves mock data outright.
func (t *TMAPIClient) Configured() bool {
	return strings.TrimSpace(t.cfg.Token) != "" && t.cfg.Token != "demo"
}

// Search returns one page of listings for a keyword.
func (t *TMAPIClient) Search(ctx context.Context, platform domain.Platform, keyword string, page, sort int) (*domain.SearchResult, error) {
	params := url.Values{
		"keyword":  {keyword},
		"page":     {strconv.Itoa(page)},
		"sort":     {strconv.Itoa(sort)},
		"apiToken": {t.cfg.Token},
	}

	var resp struct {
		Code int `json:"code"`
		Data struct {
			Items    []domain.MarketProduct `json:"items"`
			NextPage int                    `json:"next_page"`
		} `json:"data"`
		Msg string `json:"msg"`
	}
	if err := t.get(ctx, fmt.Sprintf("/%s/search", platform), params, &resp); err != nil {
		return nil, fmt.Errorf("tmapi search: %w", err)
	}
	if resp.Code != 200 {
		return nil, fmt.Errorf("tmapi search: upstream code %d: %s", resp.Code, resp.Msg)
	}

	products := resp.Data.Items
	for i := range products {
		products[i].Platform = platform
		if products[i].Currency == "" {
			products[i].Currency = platform.Currency()
		}
	}
	return &domain.SearchResult{
		Platform: platform,
		Products: products,
		NextPage: resp.Data.NextPage,
	}, nil
}

// ItemDetail returns a single listing by upstream item ID.
func (t *TMAPIClient) ItemDetail(ctx context.Context, platform domain.Platform, itemID string) (*domain.MarketProduct, error) {
	params := url.Values{
		"item_id":  {itemID},
		"apiToken": {t.cfg.Token},
	}

	var resp struct {
		Code int                   `json:"code"`
		Data *domain.MarketProduct `json:"data"`
		Msg  string                `json:"msg"`
	}
	if err := t.get(ctx, fmt.Sprintf("/%s/item-detail", platform), params, &resp); err != nil {
		return nil, fmt.Errorf("tmapi item detail: %w", err)
	}
	if resp.Code != 200 || resp.Data == nil {
		return nil, fmt.Errorf("tmapi item detail: upstream code %d: %s", resp.Code, resp.Msg)
	}

	resp.Data.Platform = platform
	if resp.Data.Currency == "" {
		resp.Data.Currency = platform.Currency()
	}
	return resp.Data, nil
}

// get performs a GET against the upstream and decodes the JSON body into out.
// Non-JSON payloads are rejected here so callers never parse an HTML error page.
func (t *TMAPIClient) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		return fmt.Errorf("upstream returned non-JSON content type %q", ct)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upstream status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode upstream response: %w", err)
	}
	return nil
}
