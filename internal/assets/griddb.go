package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/playdex/catalogd/internal/config"
	"github.com/playdex/catalogd/internal/metrics"
)

// GridDBClient talks to the dedicated artwork provider. Without an API key
// every lookup returns an empty bundle and the chain degrades to the lower
// tiers.
type GridDBClient struct {
	cfg  config.GridDBConfig
	http *http.Client
}

func NewGridDBClient(cfg config.GridDBConfig) *GridDBClient {
	return &GridDBClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// Enabled reports whether the provider can be queried at all.
func (c *GridDBClient) Enabled() bool {
	return c.cfg.APIKey != ""
}

func (c *GridDBClient) get(ctx context.Context, path string) []map[string]any {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("steamgriddb", "error").Inc()
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		metrics.ProviderRequests.WithLabelValues("steamgriddb", "error").Inc()
		return nil
	}
	metrics.ProviderRequests.WithLabelValues("steamgriddb", "ok").Inc()

	var payload struct {
		Success bool             `json:"success"`
		Data    []map[string]any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || !payload.Success {
		return nil
	}
	return payload.Data
}

func firstURL(items []map[string]any) string {
	for _, item := range items {
		if u, _ := item["url"].(string); u != "" {
			return u
		}
	}
	return ""
}

// Resolve looks up curated artwork for an app id, falling back from the
// direct steam-id endpoints to a title search when the id is unknown to the
// provider.
func (c *GridDBClient) Resolve(ctx context.Context, appID, titleHint string) Bundle {
	if !c.Enabled() {
		return Bundle{}
	}

	bundle := c.bundleByPrefix(ctx, "/steam/"+appID)
	if bundle.HasPrimary() {
		return bundle
	}
	if titleHint == "" {
		return bundle
	}

	gameID := c.searchGameID(ctx, titleHint)
	if gameID == "" {
		return bundle
	}
	return c.bundleByPrefix(ctx, "/game/"+gameID)
}

func (c *GridDBClient) bundleByPrefix(ctx context.Context, suffix string) Bundle {
	return Bundle{
		Grid: firstURL(c.get(ctx, "/grids"+suffix)),
		Hero: firstURL(c.get(ctx, "/heroes"+suffix)),
		Logo: firstURL(c.get(ctx, "/logos"+suffix)),
		Icon: firstURL(c.get(ctx, "/icons"+suffix)),
	}
}

func (c *GridDBClient) searchGameID(ctx context.Context, term string) string {
	items := c.get(ctx, "/search/autocomplete/"+url.PathEscape(term))
	for _, item := range items {
		switch id := item["id"].(type) {
		case float64:
			return fmt.Sprintf("%.0f", id)
		case string:
			if id != "" {
				return id
			}
		}
	}
	return ""
}
