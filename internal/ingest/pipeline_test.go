package ingest

import (
	"testing"

	"github.com/playdex/catalogd/internal/models"
)

func TestChooseNameNeverDowngrades(t *testing.T) {
	cases := []struct {
		existing string
		incoming string
		want     string
	}{
		{"Team Fortress 2", "Steam App 440", "Team Fortress 2"},
		{"Team Fortress 2", "440", "Team Fortress 2"},
		{"Steam App 440", "Team Fortress 2", "Team Fortress 2"},
		{"Steam App 440", "Steam App 440", "Steam App 440"},
		{"", "Team Fortress 2", "Team Fortress 2"},
		{"Team Fortress 2", "", "Team Fortress 2"},
		{"Team Fortress 2", "Team Fortress 2 Classic", "Team Fortress 2 Classic"},
	}
	for _, tc := range cases {
		if got := ChooseName(tc.existing, tc.incoming); got != tc.want {
			t.Errorf("ChooseName(%q, %q) = %q, want %q", tc.existing, tc.incoming, got, tc.want)
		}
	}
}

func TestDetailBound(t *testing.T) {
	cases := []struct {
		touched      int
		maxItems     int
		detailsBatch int
		want         int
	}{
		{200000, 0, 80, 80},
		{200000, 50, 80, 50},
		{200000, 500, 80, 80},
		{40, 0, 80, 40},
		{40, 0, 0, 40},
		{0, 100, 80, 0},
	}
	for _, tc := range cases {
		if got := detailBound(tc.touched, tc.maxItems, tc.detailsBatch); got != tc.want {
			t.Errorf("detailBound(%d, %d, %d) = %d, want %d",
				tc.touched, tc.maxItems, tc.detailsBatch, got, tc.want)
		}
	}
}

func TestClassifyItemType(t *testing.T) {
	cases := map[string]string{
		"game":        models.TitleTypeGame,
		"dlc":         models.TitleTypeDLC,
		"software":    models.TitleTypeSoftware,
		"application": models.TitleTypeSoftware,
		"video":       models.TitleTypeUnknown,
		"":            models.TitleTypeUnknown,
	}
	for raw, want := range cases {
		if got := classifyItemType(raw); got != want {
			t.Errorf("classifyItemType(%q) = %q, want %q", raw, got, want)
		}
	}
}
