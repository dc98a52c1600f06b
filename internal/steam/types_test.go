package steam

import "testing"

func TestSummaryFromPayload(t *testing.T) {
	data := map[string]any{
		"name":              "Half-Life 2 ",
		"type":              "Game",
		"short_description": "Classic shooter.",
		"header_image":      "https://example.com/header.jpg",
		"background_raw":    "https://example.com/bg.jpg",
		"release_date":      map[string]any{"date": "16 Nov, 2004", "coming_soon": false},
		"genres": []any{
			map[string]any{"id": "1", "description": "Action"},
			map[string]any{"id": "2", "description": ""},
		},
		"platforms":  map[string]any{"windows": true, "mac": true, "linux": false},
		"developers": []any{"Valve"},
	}

	summary := summaryFromPayload("220", data)
	if summary.Name != "Half-Life 2" {
		t.Errorf("expected trimmed name, got %q", summary.Name)
	}
	if summary.ItemType != "game" {
		t.Errorf("expected lowercased item type, got %q", summary.ItemType)
	}
	if len(summary.Genres) != 1 || summary.Genres[0] != "Action" {
		t.Errorf("expected single non-empty genre, got %v", summary.Genres)
	}
	if len(summary.Platforms) != 2 {
		t.Errorf("expected windows+mac, got %v", summary.Platforms)
	}
	if summary.Background != "https://example.com/bg.jpg" {
		t.Errorf("expected background_raw preferred, got %q", summary.Background)
	}
}

func TestDetailFromPayload(t *testing.T) {
	data := map[string]any{
		"name": "Portal 2",
		"type": "game",
		"screenshots": []any{
			map[string]any{"path_full": "https://example.com/s1.jpg"},
			map[string]any{"path_thumbnail": "https://example.com/t1.jpg"},
		},
		"dlc":             []any{float64(620100), "620200", "not-a-number"},
		"recommendations": map[string]any{"total": float64(412)},
		"pc_requirements": map[string]any{"minimum": "Windows 7"},
	}

	detail := detailFromPayload("620", data)
	if len(detail.Screenshots) != 1 {
		t.Errorf("expected only full-path screenshots, got %v", detail.Screenshots)
	}
	if len(detail.DLC) != 2 {
		t.Errorf("expected two valid dlc ids, got %v", detail.DLC)
	}
	if detail.Recommendations != 412 {
		t.Errorf("expected recommendations 412, got %d", detail.Recommendations)
	}
	if _, ok := detail.Requirements["windows"]; !ok {
		t.Errorf("expected windows requirements block, got %v", detail.Requirements)
	}
}

func TestNumericString(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{float64(220), "220"},
		{"440", "440"},
		{" 570 ", "570"},
		{"abc", ""},
		{float64(0), ""},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := numericString(tc.in); got != tc.want {
			t.Errorf("numericString(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
