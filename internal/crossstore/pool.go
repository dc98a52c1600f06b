// Package crossstore builds the tertiary storefront candidate pool and
// resolves catalog titles against it. Matching is heuristic string scoring;
// a mapping below the confidence floor is never persisted.
package crossstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/playdex/catalogd/internal/config"
	"github.com/playdex/catalogd/internal/metrics"
	"github.com/playdex/catalogd/internal/normalize"
)

// Candidate is one storefront offer eligible for matching.
type Candidate struct {
	EpicProductID   string            `json:"epic_product_id"`
	Title           string            `json:"title"`
	NormalizedTitle string            `json:"normalized_title"`
	ReleaseYear     int               `json:"release_year"`
	Developer       string            `json:"developer"`
	Seller          string            `json:"seller"`
	PageSlug        string            `json:"page_slug"`
	Assets          map[string]string `json:"assets"`
}

// Pool caches the candidate list. A failed refresh serves the stale pool
// rather than emptying it.
type Pool struct {
	cfg  config.EpicConfig
	http *http.Client

	mu       sync.Mutex
	items    []Candidate
	loadedAt time.Time
	now      func() time.Time
}

func NewPool(cfg config.EpicConfig) *Pool {
	return &Pool{
		cfg:  cfg,
		http: &http.Client{Timeout: 12 * time.Second},
		now:  time.Now,
	}
}

// Candidates returns the current pool, refreshing it when the TTL is past.
func (p *Pool) Candidates(ctx context.Context, forceRefresh bool) []Candidate {
	if !p.cfg.Enabled {
		return nil
	}

	p.mu.Lock()
	fresh := len(p.items) > 0 && p.now().Sub(p.loadedAt) < p.cfg.PoolCacheTTL
	if !forceRefresh && fresh {
		cached := append([]Candidate(nil), p.items...)
		p.mu.Unlock()
		return cached
	}
	p.mu.Unlock()

	candidates, err := p.fetch(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil || len(candidates) == 0 {
		return append([]Candidate(nil), p.items...)
	}
	p.items = candidates
	p.loadedAt = p.now()
	return append([]Candidate(nil), p.items...)
}

func (p *Pool) fetch(ctx context.Context) ([]Candidate, error) {
	params := url.Values{}
	params.Set("locale", p.cfg.Locale)
	params.Set("country", p.cfg.Country)
	params.Set("allowCountries", p.cfg.Country)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.FreeGamesURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("epic", "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		metrics.ProviderRequests.WithLabelValues("epic", "error").Inc()
		return nil, fmt.Errorf("storefront catalog returned status %d", resp.StatusCode)
	}
	metrics.ProviderRequests.WithLabelValues("epic", "ok").Inc()

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return parseCandidates(payload), nil
}

// parseCandidates walks data.Catalog.searchStore.elements and dedupes
// offers by product id, last occurrence winning.
func parseCandidates(payload map[string]any) []Candidate {
	elements := asList(asMap(asMap(asMap(payload["data"])["Catalog"])["searchStore"])["elements"])
	deduped := map[string]Candidate{}
	var order []string

	for _, raw := range elements {
		item := asMap(raw)
		title := strings.TrimSpace(asString(item["title"]))
		if title == "" {
			continue
		}
		productID := strings.TrimSpace(asString(item["id"]))
		if productID == "" {
			productID = strings.TrimSpace(asString(item["productSlug"]))
		}
		if productID == "" {
			continue
		}
		if _, exists := deduped[productID]; !exists {
			order = append(order, productID)
		}
		deduped[productID] = Candidate{
			EpicProductID:   productID,
			Title:           title,
			NormalizedTitle: normalize.Title(title),
			ReleaseYear:     normalize.ExtractYear(asString(item["releaseDate"])),
			Developer:       strings.TrimSpace(asString(item["developerDisplayName"])),
			Seller:          strings.TrimSpace(asString(asMap(item["seller"])["name"])),
			PageSlug:        firstPageSlug(item),
			Assets:          extractCandidateAssets(item),
		}
	}

	candidates := make([]Candidate, 0, len(deduped))
	for _, id := range order {
		candidates = append(candidates, deduped[id])
	}
	return candidates
}

func firstPageSlug(item map[string]any) string {
	for _, raw := range asList(asMap(item["catalogNs"])["mappings"]) {
		if slug := strings.TrimSpace(asString(asMap(raw)["pageSlug"])); slug != "" {
			return slug
		}
	}
	return ""
}

// extractCandidateAssets maps the offer keyImages list onto the four asset
// slots, cross-substituting so a candidate with any image fills grid, hero
// and icon.
func extractCandidateAssets(item map[string]any) map[string]string {
	images := asList(item["keyImages"])

	pick := func(types ...string) string {
		allowed := map[string]bool{}
		for _, t := range types {
			allowed[t] = true
		}
		for _, raw := range images {
			entry := asMap(raw)
			imageType := strings.ToLower(strings.TrimSpace(asString(entry["type"])))
			imageURL := strings.TrimSpace(asString(entry["url"]))
			if imageURL != "" && allowed[imageType] {
				return imageURL
			}
		}
		return ""
	}

	selected := map[string]string{
		"grid": pick("offerimagetall", "dieselstorefronttall", "offerimageportrait", "thumbnail"),
		"hero": pick("offerimagewide", "dieselstorefrontwide", "featuredmedia", "hero", "background"),
		"logo": pick("logo", "offerlogo", "diesellogo"),
		"icon": pick("icon", "square", "thumbnail", "dieselstorefrontsmall"),
	}
	if selected["grid"] == "" {
		selected["grid"] = firstNonEmpty(selected["icon"], selected["hero"])
	}
	if selected["hero"] == "" {
		selected["hero"] = firstNonEmpty(selected["grid"], selected["icon"])
	}
	if selected["icon"] == "" {
		selected["icon"] = firstNonEmpty(selected["grid"], selected["hero"])
	}
	return selected
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func asMap(raw any) map[string]any {
	m, _ := raw.(map[string]any)
	return m
}

func asList(raw any) []any {
	l, _ := raw.([]any)
	return l
}

func asString(raw any) string {
	s, _ := raw.(string)
	return s
}
