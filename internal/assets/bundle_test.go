package assets

import "testing"

func TestFallbackBundleComplete(t *testing.T) {
	bundle := FallbackBundle("440").Normalize()
	if bundle.Grid == "" || bundle.Hero == "" || bundle.Logo == "" || bundle.Icon == "" {
		t.Errorf("fallback bundle must fill every slot, got %+v", bundle)
	}
	if bundle.Grid != "https://cdn.cloudflare.steamstatic.com/steam/apps/440/header.jpg" {
		t.Errorf("unexpected grid url %q", bundle.Grid)
	}
}

func TestNormalizeCrossSubstitutes(t *testing.T) {
	bundle := Bundle{Hero: "https://cdn.example/hero.jpg"}.Normalize()
	if bundle.Grid != "https://cdn.example/hero.jpg" {
		t.Errorf("expected hero to fill grid, got %q", bundle.Grid)
	}
	if bundle.Icon == "" || bundle.Logo == "" {
		t.Errorf("expected all slots filled from single image, got %+v", bundle)
	}
}

func TestChooseSourcePriority(t *testing.T) {
	sgdb := Bundle{Grid: "https://sgdb.example/grid.png"}
	epic := Bundle{Hero: "https://epic.example/hero.jpg"}
	steam := FallbackBundle("570")

	source, selected, score := ChooseSource(sgdb, epic, steam)
	if source != "steamgriddb" || score != QualityGridDB {
		t.Errorf("expected dedicated provider to win, got %s/%.2f", source, score)
	}
	if selected.Grid != sgdb.Grid {
		t.Errorf("expected sgdb grid selected, got %q", selected.Grid)
	}

	source, _, score = ChooseSource(Bundle{}, epic, steam)
	if source != "epic" || score != QualityEpic {
		t.Errorf("expected storefront tier, got %s/%.2f", source, score)
	}

	source, selected, score = ChooseSource(Bundle{}, Bundle{}, steam)
	if source != "steam" || score != QualitySteam {
		t.Errorf("expected floor tier, got %s/%.2f", source, score)
	}
	if selected.Normalize().IsEmpty() {
		t.Error("floor bundle must not be empty")
	}
}

func TestChooseSourceRejectsBadgePlaceholder(t *testing.T) {
	epic := Bundle{
		Grid: "https://cdn.epic.example/offer/badge_placeholder.png",
		Hero: "https://cdn.epic.example/offer/Badge-340x480.png",
	}
	source, _, _ := ChooseSource(Bundle{}, epic, FallbackBundle("570"))
	if source != "steam" {
		t.Errorf("badge-only storefront bundle must lose to the floor, got %s", source)
	}

	real := Bundle{Grid: "https://cdn.epic.example/offer/tall.jpg"}
	source, _, _ = ChooseSource(Bundle{}, real, FallbackBundle("570"))
	if source != "epic" {
		t.Errorf("real storefront artwork should win over the floor, got %s", source)
	}
}

func TestBundleFromMap(t *testing.T) {
	raw := map[string]any{"grid": "g", "hero": "h", "logo": 42, "icon": nil}
	bundle := BundleFromMap(raw)
	if bundle.Grid != "g" || bundle.Hero != "h" {
		t.Errorf("unexpected bundle %+v", bundle)
	}
	if bundle.Logo != "" || bundle.Icon != "" {
		t.Errorf("non-string slots must read as empty, got %+v", bundle)
	}
}
