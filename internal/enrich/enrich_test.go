package enrich

import (
	"testing"
	"time"

	"github.com/playdex/catalogd/internal/models"
)

func TestAssembleConfidenceTiers(t *testing.T) {
	fetchedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	appData := map[string]any{
		"data": map[string]any{
			"hidden_tags": []any{"Souls-like", " Co-op "},
			"depots":      []any{map[string]any{"id": "228990"}},
			"branches":    map[string]any{"public": map[string]any{"buildid": "123"}},
		},
	}
	priceData := map[string]any{
		"prices": []any{
			map[string]any{"currency": "USD", "final": 19.99, "lowest": 4.99},
		},
	}
	html := `<html><script type="application/ld+json">{"@type":"VideoGame","genre":["Action"]}</script></html>`

	result := Assemble("570", appData, priceData, html, map[string]any{"steamdb_api_app_data": 200}, fetchedAt)

	// 0.5 app data + 0.25 price + 0.2 ld+json + 0.1 depots + 0.05 branches
	if result.Confidence != 1.0 {
		t.Errorf("expected full confidence 1.0, got %.2f", result.Confidence)
	}
	if result.Source != models.EnrichmentSourceStructured {
		t.Errorf("expected structured source, got %s", result.Source)
	}
	if len(result.HiddenTags) != 2 || result.HiddenTags[1] != "Co-op" {
		t.Errorf("expected trimmed hidden tags, got %v", result.HiddenTags)
	}
	if len(result.PriceHistory) != 1 {
		t.Fatalf("expected one price row, got %d", len(result.PriceHistory))
	}
	if result.PriceHistory[0]["current"] != 19.99 {
		t.Errorf("expected final coerced to current, got %v", result.PriceHistory[0]["current"])
	}
}

func TestAssembleUnavailable(t *testing.T) {
	result := Assemble("570", nil, nil, "", map[string]any{"steamdb_html": nil}, time.Now().UTC())
	if result.Confidence != 0 {
		t.Errorf("expected zero confidence, got %.2f", result.Confidence)
	}
	if result.Source != models.EnrichmentSourceUnavailable {
		t.Errorf("expected unavailable source, got %s", result.Source)
	}
	if result.Payload["blocked"] != false {
		t.Errorf("expected blocked=false, got %v", result.Payload["blocked"])
	}
}

func TestAssembleBlockedFlag(t *testing.T) {
	result := Assemble("570", nil, nil, "", map[string]any{"steamdb_html": 403}, time.Now().UTC())
	if result.Payload["blocked"] != true {
		t.Errorf("expected blocked=true on 403, got %v", result.Payload["blocked"])
	}
}

func TestAssembleGenreFallbackFromLDJSON(t *testing.T) {
	html := `<script type='application/ld+json'>[{"@type":"VideoGame","genre":"Strategy"}]</script>`
	result := Assemble("570", nil, nil, html, map[string]any{}, time.Now().UTC())
	if len(result.HiddenTags) != 1 || result.HiddenTags[0] != "Strategy" {
		t.Errorf("expected ld+json genre fallback, got %v", result.HiddenTags)
	}
}

func TestExtractLDJSONBlocks(t *testing.T) {
	html := `
		<script type="application/ld+json">{"a":1}</script>
		<script type="application/ld+json">not json</script>
		<script type="application/ld+json">[{"b":2},{"c":3}]</script>
	`
	blocks := ExtractLDJSONBlocks(html)
	if len(blocks) != 3 {
		t.Errorf("expected 3 parsed blocks, got %d", len(blocks))
	}
}

func TestCoerceJSONList(t *testing.T) {
	fromMap := CoerceJSONList(map[string]any{
		"228990": map[string]any{"name": "binaries"},
		"228991": "raw",
	})
	if len(fromMap) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(fromMap))
	}
	for _, raw := range fromMap {
		entry := raw.(map[string]any)
		if entry["id"] == nil {
			t.Errorf("expected id key injected, got %v", entry)
		}
	}
	if got := CoerceJSONList("scalar"); got != nil {
		t.Errorf("expected nil for scalar input, got %v", got)
	}
}

func TestExtractPriceHistoryCurrencyMap(t *testing.T) {
	payload := map[string]any{
		"data": map[string]any{
			"usd": map[string]any{"current": 9.99, "discount": 50},
		},
	}
	history := ExtractPriceHistory(payload)
	if len(history) != 1 {
		t.Fatalf("expected one row, got %d", len(history))
	}
	if history[0]["currency"] != "usd" {
		t.Errorf("expected map key as currency, got %v", history[0]["currency"])
	}
	if history[0]["discount_percent"] != 50 {
		t.Errorf("expected discount coerced, got %v", history[0]["discount_percent"])
	}
}

func TestIsRecent(t *testing.T) {
	if IsRecent(time.Time{}, time.Hour) {
		t.Error("zero time must never be recent")
	}
	if !IsRecent(time.Now().Add(-time.Minute), time.Hour) {
		t.Error("one minute ago should be recent within an hour")
	}
	if IsRecent(time.Now().Add(-2*time.Hour), time.Hour) {
		t.Error("two hours ago should be stale within an hour")
	}
}
