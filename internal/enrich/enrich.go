// Package enrich pulls secondary-provider data for a title: structured app
// data, price history and the ld+json blocks embedded in the public HTML
// page. The provider is best effort; 403s are recorded, never retried in a
// tight loop.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/playdex/catalogd/internal/config"
	"github.com/playdex/catalogd/internal/metrics"
	"github.com/playdex/catalogd/internal/models"
)

var ldJSONPattern = regexp.MustCompile(`(?is)<script[^>]*type=["']application/ld\+json["'][^>]*>(.*?)</script>`)

const (
	priceHistoryCap = 200
	hiddenTagsCap   = 200
	depotsCap       = 500
)

// Result is one enrichment pass for a single app id.
type Result struct {
	PriceHistory []map[string]any
	HiddenTags   []string
	Depots       []any
	BranchMap    map[string]any
	Payload      map[string]any
	Confidence   float64
	Source       string
}

// Client fetches from the secondary provider.
type Client struct {
	cfg  config.SteamDBConfig
	http *http.Client
	now  func() time.Time
}

func NewClient(cfg config.SteamDBConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.RequestTimeout},
		now:  time.Now,
	}
}

func (c *Client) base() string {
	return strings.TrimRight(c.cfg.BaseURL, "/")
}

func (c *Client) requestJSON(ctx context.Context, url string) (map[string]any, int) {
	body, status := c.request(ctx, url, "application/json")
	if body == nil {
		return nil, status
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, status
	}
	return payload, status
}

func (c *Client) requestText(ctx context.Context, url string) (string, int) {
	body, status := c.request(ctx, url, "text/html,*/*")
	return string(body), status
}

func (c *Client) request(ctx context.Context, url, accept string) ([]byte, int) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0
	}
	req.Header.Set("User-Agent", "playdex-catalogd/1.0")
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("steamdb", "error").Inc()
		return nil, 0
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		metrics.ProviderRequests.WithLabelValues("steamdb", "error").Inc()
		return nil, resp.StatusCode
	}
	metrics.ProviderRequests.WithLabelValues("steamdb", "ok").Inc()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, resp.StatusCode
	}
	return body, resp.StatusCode
}

// Fetch gathers the three sub-sources for an app id and folds them into a
// Result with an additive confidence score. Always returns a non-nil Result;
// a fully failed fetch comes back with source "steamdb_unavailable".
func (c *Client) Fetch(ctx context.Context, appID string) *Result {
	statusCodes := map[string]any{}

	appData, appStatus := c.requestJSON(ctx, fmt.Sprintf("%s/api/GetAppData/?appid=%s", c.base(), appID))
	statusCodes["steamdb_api_app_data"] = statusOrNil(appStatus)
	priceData, priceStatus := c.requestJSON(ctx, fmt.Sprintf("%s/api/GetPrice/?appid=%s&cc=us", c.base(), appID))
	statusCodes["steamdb_api_price"] = statusOrNil(priceStatus)
	htmlData, htmlStatus := c.requestText(ctx, fmt.Sprintf("%s/app/%s/", c.base(), appID))
	statusCodes["steamdb_html"] = statusOrNil(htmlStatus)

	result := Assemble(appID, appData, priceData, htmlData, statusCodes, c.now().UTC())
	return result
}

func statusOrNil(status int) any {
	if status == 0 {
		return nil
	}
	return status
}

// Assemble folds the raw sub-source payloads into a Result. Split from Fetch
// so the scoring and coercion rules are testable without HTTP.
func Assemble(appID string, appData, priceData map[string]any, html string, statusCodes map[string]any, fetchedAt time.Time) *Result {
	ldBlocks := ExtractLDJSONBlocks(html)

	payloadData := appData
	if inner, ok := appData["data"].(map[string]any); ok {
		payloadData = inner
	}

	hiddenTags := coerceTagList(firstPresent(payloadData, "hidden_tags", "hiddenTags", "tags"))
	if len(hiddenTags) == 0 {
		hiddenTags = genreTagsFromBlocks(ldBlocks)
	}
	if len(hiddenTags) > hiddenTagsCap {
		hiddenTags = hiddenTags[:hiddenTagsCap]
	}

	depots := CoerceJSONList(firstPresent(payloadData, "depots", "Depot"))
	if len(depots) > depotsCap {
		depots = depots[:depotsCap]
	}

	branchMap, _ := firstPresent(payloadData, "branches", "branch_map").(map[string]any)
	priceHistory := ExtractPriceHistory(priceData)

	confidence := 0.0
	if len(appData) > 0 {
		confidence += 0.5
	}
	if len(priceHistory) > 0 {
		confidence += 0.25
	}
	if len(ldBlocks) > 0 {
		confidence += 0.2
	}
	if len(depots) > 0 {
		confidence += 0.1
	}
	if len(branchMap) > 0 {
		confidence += 0.05
	}
	if confidence > 1 {
		confidence = 1
	}

	source := models.EnrichmentSourceUnavailable
	if confidence >= 0.35 {
		source = models.EnrichmentSourceStructured
	}

	blocked := false
	for _, code := range statusCodes {
		if status, ok := code.(int); ok && status == http.StatusForbidden {
			blocked = true
		}
	}

	payload := map[string]any{
		"app_id":       appID,
		"status_codes": statusCodes,
		"blocked":      blocked,
		"fetched_at":   fetchedAt.Format(time.RFC3339),
	}
	if len(appData) > 0 {
		payload["app_data"] = appData
	}
	if len(priceData) > 0 {
		payload["price_data"] = priceData
	}
	if len(ldBlocks) > 0 {
		payload["ld_json"] = ldBlocks
	}

	return &Result{
		PriceHistory: priceHistory,
		HiddenTags:   hiddenTags,
		Depots:       depots,
		BranchMap:    branchMap,
		Payload:      payload,
		Confidence:   confidence,
		Source:       source,
	}
}

// ExtractLDJSONBlocks pulls every parseable ld+json object out of an HTML
// document. Top-level arrays are flattened one level.
func ExtractLDJSONBlocks(html string) []map[string]any {
	var blocks []map[string]any
	for _, match := range ldJSONPattern.FindAllStringSubmatch(html, -1) {
		candidate := strings.TrimSpace(match[1])
		if candidate == "" {
			continue
		}
		var parsed any
		if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
			continue
		}
		switch value := parsed.(type) {
		case map[string]any:
			blocks = append(blocks, value)
		case []any:
			for _, entry := range value {
				if block, ok := entry.(map[string]any); ok {
					blocks = append(blocks, block)
				}
			}
		}
	}
	return blocks
}

// CoerceJSONList normalizes a provider field that may arrive as a list or as
// an id-keyed object into a flat list.
func CoerceJSONList(raw any) []any {
	switch value := raw.(type) {
	case []any:
		return value
	case map[string]any:
		normalized := make([]any, 0, len(value))
		for key, item := range value {
			if nested, ok := item.(map[string]any); ok {
				entry := map[string]any{"id": key}
				for k, v := range nested {
					entry[k] = v
				}
				normalized = append(normalized, entry)
			} else {
				normalized = append(normalized, map[string]any{"id": key, "value": item})
			}
		}
		return normalized
	}
	return nil
}

// ExtractPriceHistory flattens the price payload into rows. Providers nest
// the series under different keys; each candidate container is scanned.
func ExtractPriceHistory(payload map[string]any) []map[string]any {
	if len(payload) == 0 {
		return nil
	}
	var candidates []any
	for _, key := range []string{"prices", "price_history", "data", "result"} {
		if value, ok := payload[key]; ok && value != nil {
			candidates = append(candidates, value)
		}
	}
	if len(candidates) == 0 {
		candidates = append(candidates, payload)
	}

	var history []map[string]any
	appendRow := func(currency any, entry map[string]any) {
		row := map[string]any{
			"currency":         firstValue(currency, entry["currency"]),
			"current":          firstValue(entry["current"], entry["final"]),
			"lowest":           entry["lowest"],
			"discount_percent": firstValue(entry["discount_percent"], entry["discount"]),
			"date":             firstValue(entry["date"], entry["updated_at"]),
		}
		for _, value := range row {
			if value != nil {
				history = append(history, row)
				return
			}
		}
	}

	for _, candidate := range candidates {
		switch value := candidate.(type) {
		case []any:
			for _, raw := range value {
				if entry, ok := raw.(map[string]any); ok {
					appendRow(nil, entry)
				}
			}
		case map[string]any:
			for currency, raw := range value {
				if entry, ok := raw.(map[string]any); ok {
					appendRow(currency, entry)
				}
			}
		}
	}
	if len(history) > priceHistoryCap {
		history = history[:priceHistoryCap]
	}
	return history
}

func coerceTagList(raw any) []string {
	var tags []string
	for _, item := range CoerceJSONList(raw) {
		var text string
		switch value := item.(type) {
		case string:
			text = value
		case map[string]any:
			if s, ok := value["value"].(string); ok {
				text = s
			} else if s, ok := value["name"].(string); ok {
				text = s
			}
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

func genreTagsFromBlocks(blocks []map[string]any) []string {
	for _, block := range blocks {
		switch genre := block["genre"].(type) {
		case []any:
			var tags []string
			for _, item := range genre {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					tags = append(tags, strings.TrimSpace(s))
				}
			}
			if len(tags) > 0 {
				return tags
			}
		case string:
			if trimmed := strings.TrimSpace(genre); trimmed != "" {
				return []string{trimmed}
			}
		}
	}
	return nil
}

func firstPresent(payload map[string]any, keys ...string) any {
	for _, key := range keys {
		if value, ok := payload[key]; ok && value != nil {
			if list, isList := value.([]any); isList && len(list) == 0 {
				continue
			}
			return value
		}
	}
	return nil
}

func firstValue(values ...any) any {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// Upsert writes the enrichment row for a title, replacing prior content.
// Returns the stored confidence.
func Upsert(db *gorm.DB, titleID string, result *Result) (float64, error) {
	var row models.EnrichmentRecord
	err := db.Where("title_id = ?", titleID).First(&row).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return 0, err
	}
	if err == gorm.ErrRecordNotFound {
		row = models.EnrichmentRecord{TitleID: titleID}
	}

	row.PriceHistory = models.ToJSON(result.PriceHistory)
	row.HiddenTags = models.ToJSON(result.HiddenTags)
	row.Depots = models.ToJSON(result.Depots)
	row.BranchMap = models.ToJSON(result.BranchMap)
	row.Payload = models.ToJSON(result.Payload)
	row.Confidence = result.Confidence
	row.Source = result.Source
	if err := db.Save(&row).Error; err != nil {
		return 0, err
	}
	return row.Confidence, nil
}

// IsRecent reports whether a timestamp is inside the freshness window.
func IsRecent(timestamp time.Time, maxAge time.Duration) bool {
	if timestamp.IsZero() {
		return false
	}
	return time.Since(timestamp) < maxAge
}
