// Package steam talks to the primary catalog provider: the paged app-list
// API, the store appdetails endpoint and store search. All calls are
// rate-limited and memoized through an injected TTL cache; every failure mode
// degrades to a nil/empty result, never a panic across the pipeline.
package steam

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

	"golang.org/x/time/rate"

	"github.com/playdex/catalogd/internal/cache"
	"github.com/playdex/catalogd/internal/config"
	"github.com/playdex/catalogd/internal/metrics"
)

const userAgent = "playdex-catalogd/1.0"

// applist pagination guard; the store service pages ~50k apps at a time
const maxListPages = 500

// AppEntry is one {app_id, name} pair from the upstream list endpoints.
type AppEntry struct {
	AppID string `json:"app_id"`
	Name  string `json:"name"`
}

// Client is the primary catalog provider client.
type Client struct {
	cfg     config.SteamConfig
	http    *http.Client
	limiter *rate.Limiter
	cache   *cache.TTLCache

	summaryTTL time.Duration
}

// NewClient creates a client with the configured timeout, a token-bucket
// limiter and a shared memo cache.
func NewClient(cfg config.SteamConfig, memo *cache.TTLCache) *Client {
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 4
	}
	return &Client{
		cfg:        cfg,
		http:       &http.Client{Timeout: cfg.RequestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		cache:      memo,
		summaryTTL: time.Hour,
	}
}

// requestJSON performs a rate-limited GET and decodes the JSON object body.
// Non-200 responses and malformed bodies return a nil payload alongside the
// status code.
func (c *Client) requestJSON(ctx context.Context, rawURL string, params url.Values) (map[string]any, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}
	target := rawURL
	if len(params) > 0 {
		target = rawURL + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json,text/plain,*/*")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("steam", "error").Inc()
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		metrics.ProviderRequests.WithLabelValues("steam", "error").Inc()
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	metrics.ProviderRequests.WithLabelValues("steam", "ok").Inc()

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return payload, resp.StatusCode, nil
}

// FetchAppList retrieves the full upstream title list. With an API key it
// walks the paginated store-service endpoint; without one, or when paging
// yields nothing, it falls back to the legacy full-dump endpoint.
func (c *Client) FetchAppList(ctx context.Context) ([]AppEntry, error) {
	if c.cfg.WebAPIKey != "" {
		apps, err := c.fetchPagedAppList(ctx)
		if err == nil && len(apps) > 0 {
			return apps, nil
		}
	}
	return c.fetchLegacyAppList(ctx)
}

func (c *Client) fetchPagedAppList(ctx context.Context) ([]AppEntry, error) {
	endpoint := strings.TrimRight(c.cfg.WebAPIURL, "/") + "/IStoreService/GetAppList/v1/"
	var all []AppEntry
	seen := map[string]bool{}
	lastAppID := 0

	for page := 0; page < maxListPages; page++ {
		params := url.Values{}
		params.Set("key", c.cfg.WebAPIKey)
		params.Set("max_results", "50000")
		params.Set("last_appid", strconv.Itoa(lastAppID))
		params.Set("include_games", "true")
		params.Set("include_dlc", "true")
		params.Set("include_software", "true")
		params.Set("include_videos", "false")
		params.Set("include_hardware", "false")

		payload, _, err := c.requestJSON(ctx, endpoint, params)
		if err != nil {
			break
		}
		response := asMap(payload["response"])
		items := asList(response["apps"])
		if len(items) == 0 {
			break
		}

		pageAdded := 0
		for _, raw := range items {
			item := asMap(raw)
			appID := numericString(item["appid"])
			name := strings.TrimSpace(asString(item["name"]))
			if appID == "" || name == "" || seen[appID] {
				continue
			}
			seen[appID] = true
			all = append(all, AppEntry{AppID: appID, Name: name})
			pageAdded++
		}

		haveMore, _ := response["have_more_results"].(bool)
		next := int(asFloat(response["last_appid"]))
		if !haveMore || next <= lastAppID || pageAdded == 0 {
			break
		}
		lastAppID = next
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("paged app list returned no entries")
	}
	return all, nil
}

func (c *Client) fetchLegacyAppList(ctx context.Context) ([]AppEntry, error) {
	endpoint := strings.TrimRight(c.cfg.WebAPIURL, "/") + "/ISteamApps/GetAppList/v2/"
	payload, _, err := c.requestJSON(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	items := asList(asMap(payload["applist"])["apps"])
	var apps []AppEntry
	for _, raw := range items {
		item := asMap(raw)
		appID := numericString(item["appid"])
		name := strings.TrimSpace(asString(item["name"]))
		if appID == "" || name == "" {
			continue
		}
		apps = append(apps, AppEntry{AppID: appID, Name: name})
	}
	return apps, nil
}

// storeAppDetails calls the appdetails endpoint for one app id, optionally
// with a filter list, and returns the inner data payload on success.
func (c *Client) storeAppDetails(ctx context.Context, appID, filters string) map[string]any {
	endpoint := strings.TrimRight(c.cfg.StoreAPIURL, "/") + "/appdetails"
	params := url.Values{}
	params.Set("appids", appID)
	params.Set("cc", "us")
	params.Set("l", "english")
	if filters != "" {
		params.Set("filters", filters)
	}
	payload, _, err := c.requestJSON(ctx, endpoint, params)
	if err != nil {
		return nil
	}
	entry := asMap(payload[appID])
	if success, _ := entry["success"].(bool); !success {
		return nil
	}
	return asMap(entry["data"])
}

// storeAppDetailsBatch requests appdetails for several ids in one call and
// returns the successful per-id data payloads.
func (c *Client) storeAppDetailsBatch(ctx context.Context, appIDs []string, filters string) map[string]map[string]any {
	endpoint := strings.TrimRight(c.cfg.StoreAPIURL, "/") + "/appdetails"
	params := url.Values{}
	params.Set("appids", strings.Join(appIDs, ","))
	params.Set("cc", "us")
	params.Set("l", "english")
	if filters != "" {
		params.Set("filters", filters)
	}
	payload, _, err := c.requestJSON(ctx, endpoint, params)
	if err != nil {
		return nil
	}
	entries := make(map[string]map[string]any)
	for _, appID := range appIDs {
		entry := asMap(payload[appID])
		if success, _ := entry["success"].(bool); !success {
			continue
		}
		if data := asMap(entry["data"]); data != nil {
			entries[appID] = data
		}
	}
	return entries
}

const summaryFilters = "basic,price_overview,platforms,genres,release_date"

// GetSummaries fetches summaries for a set of app ids, chunked by the
// configured appdetails batch size so a page costs a handful of requests
// instead of one per id. The store rejects some multi-id requests; those
// chunks retry id by id. Results are memoized like GetSummary.
func (c *Client) GetSummaries(ctx context.Context, appIDs []string) map[string]*Summary {
	out := make(map[string]*Summary, len(appIDs))
	var missing []string
	for _, appID := range appIDs {
		if c.cache != nil {
			if cached, ok := c.cache.Get("steam:summary:" + appID); ok {
				if summary, ok := cached.(*Summary); ok {
					out[appID] = summary
					continue
				}
			}
		}
		missing = append(missing, appID)
	}

	batch := c.cfg.AppDetailsBatch
	if batch < 1 {
		batch = 1
	}
	for start := 0; start < len(missing); start += batch {
		end := start + batch
		if end > len(missing) {
			end = len(missing)
		}
		chunk := missing[start:end]

		entries := c.storeAppDetailsBatch(ctx, chunk, summaryFilters)
		if len(entries) == 0 && len(chunk) > 1 {
			entries = make(map[string]map[string]any)
			for _, appID := range chunk {
				if data := c.storeAppDetails(ctx, appID, summaryFilters); data != nil {
					entries[appID] = data
				}
			}
		}
		for _, appID := range chunk {
			data, ok := entries[appID]
			if !ok {
				continue
			}
			summary := summaryFromPayload(appID, data)
			if c.cache != nil {
				c.cache.Set("steam:summary:"+appID, summary, c.summaryTTL)
			}
			out[appID] = summary
		}
	}
	return out
}

// GetSummary fetches the lightweight summary for an app id, memoized for an
// hour. Returns nil when the store has nothing for the id.
func (c *Client) GetSummary(ctx context.Context, appID string) *Summary {
	cacheKey := "steam:summary:" + appID
	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey); ok {
			if summary, ok := cached.(*Summary); ok {
				return summary
			}
		}
	}
	data := c.storeAppDetails(ctx, appID, summaryFilters)
	if data == nil {
		return nil
	}
	summary := summaryFromPayload(appID, data)
	if c.cache != nil {
		c.cache.Set(cacheKey, summary, c.summaryTTL)
	}
	return summary
}

// GetDetail fetches the full detail payload for an app id, memoized for an
// hour. Returns nil when the store has nothing for the id.
func (c *Client) GetDetail(ctx context.Context, appID string) *Detail {
	cacheKey := "steam:detail:" + appID
	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey); ok {
			if detail, ok := cached.(*Detail); ok {
				return detail
			}
		}
	}
	data := c.storeAppDetails(ctx, appID, "")
	if data == nil {
		return nil
	}
	detail := detailFromPayload(appID, data)
	if c.cache != nil {
		c.cache.Set(cacheKey, detail, c.summaryTTL)
	}
	return detail
}

// SearchStore queries the upstream store search endpoint. Used only as the
// pre-ingest fallback path; index search never depends on it.
func (c *Client) SearchStore(ctx context.Context, term string) []AppEntry {
	endpoint := c.cfg.StoreSearchURL
	if endpoint == "" {
		endpoint = "https://store.steampowered.com/api/storesearch/"
	}
	params := url.Values{}
	params.Set("term", term)
	params.Set("l", "en")
	params.Set("cc", "us")
	payload, _, err := c.requestJSON(ctx, endpoint, params)
	if err != nil {
		return nil
	}
	var results []AppEntry
	for _, raw := range asList(payload["items"]) {
		item := asMap(raw)
		appID := numericString(item["id"])
		name := strings.TrimSpace(asString(item["name"]))
		if appID == "" || name == "" {
			continue
		}
		results = append(results, AppEntry{AppID: appID, Name: name})
	}
	return results
}

// GetMostPlayed returns the current most-played app ids, trimmed to the
// configured trending limit and cached. Needs an API key; without one the
// priority rail simply has no trending segment.
func (c *Client) GetMostPlayed(ctx context.Context) []string {
	const cacheKey = "steam:hot_appids"
	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey); ok {
			if ids, ok := cached.([]string); ok {
				return ids
			}
		}
	}
	if c.cfg.WebAPIKey == "" {
		return nil
	}
	endpoint := strings.TrimRight(c.cfg.WebAPIURL, "/") + "/ISteamChartsService/GetMostPlayedGames/v1/"
	params := url.Values{}
	params.Set("key", c.cfg.WebAPIKey)
	payload, _, err := c.requestJSON(ctx, endpoint, params)
	if err != nil {
		return nil
	}
	var ids []string
	for _, raw := range asList(asMap(payload["response"])["ranks"]) {
		item := asMap(raw)
		if appID := numericString(item["appid"]); appID != "" {
			ids = append(ids, appID)
		}
	}
	if c.cfg.TrendingLimit > 0 && len(ids) > c.cfg.TrendingLimit {
		ids = ids[:c.cfg.TrendingLimit]
	}
	if c.cache != nil && len(ids) > 0 {
		c.cache.Set(cacheKey, ids, c.cfg.TrendingCacheTTL)
	}
	return ids
}
