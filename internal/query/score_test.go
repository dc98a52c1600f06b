package query

import (
	"testing"

	"github.com/playdex/catalogd/internal/models"
)

func TestScoreCandidateBands(t *testing.T) {
	noRank := map[string]int{}
	cases := []struct {
		query string
		name  string
		appID string
		want  float64
	}{
		{"Team Fortress 2", "Team Fortress 2", "440", 100.0},
		{"Team Fortress", "Team Fortress 2", "440", 94.0},
		{"Fortress", "Team Fortress 2", "440", 88.0},
		{"tf2", "Team Fortress 2", "440", 93.0},
		{"440", "Team Fortress 2", "440", 100.0},
		{"44", "Team Fortress 2", "440", 90.0},
	}
	for _, tc := range cases {
		if got := ScoreCandidate(tc.query, tc.name, tc.appID, noRank); got != tc.want {
			t.Errorf("ScoreCandidate(%q, %q, %q) = %.1f, want %.1f", tc.query, tc.name, tc.appID, got, tc.want)
		}
	}
}

func TestScoreCandidateSequelSuffixDeterminism(t *testing.T) {
	noRank := map[string]int{}
	gta5 := ScoreCandidate("gta5", "Grand Theft Auto V", "271590", noRank)
	gtao := ScoreCandidate("gta5", "Grand Theft Auto Online", "271591", noRank)
	if gta5 <= gtao {
		t.Errorf("digit-suffix query must rank the numbered sequel first: gta5=%.1f gtao=%.1f", gta5, gtao)
	}
}

func TestScoreCandidateHotBoost(t *testing.T) {
	base := ScoreCandidate("Fortress", "Team Fortress 2", "440", map[string]int{})
	boosted := ScoreCandidate("Fortress", "Team Fortress 2", "440", map[string]int{"440": 0})
	if boosted != base+6.0 {
		t.Errorf("expected +6.0 boost at rank 0, got %.2f vs %.2f", boosted, base)
	}
	deepRank := ScoreCandidate("Fortress", "Team Fortress 2", "440", map[string]int{"440": 500})
	if deepRank != base {
		t.Errorf("boost must never go negative, got %.2f vs %.2f", deepRank, base)
	}
}

func TestNoisePenalty(t *testing.T) {
	if got := NoisePenalty("Half-Life 2", models.TitleTypeGame); got != 0 {
		t.Errorf("clean game must carry no penalty, got %.1f", got)
	}
	if got := NoisePenalty("Half-Life 2 Soundtrack", models.TitleTypeGame); got != 20.0 {
		t.Errorf("soundtrack marker must demote, got %.1f", got)
	}
	if got := NoisePenalty("Episode One", models.TitleTypeDLC); got != 30.0 {
		t.Errorf("hard dlc classification must demote most, got %.1f", got)
	}
}

func TestBuildCatalogItemFallbacks(t *testing.T) {
	s := &Service{}
	title := models.Title{AppID: "440", Name: "Team Fortress 2", TitleType: models.TitleTypeGame}

	item := s.buildCatalogItem(&title)
	if item.HeaderImage == "" || item.Background == "" || item.Artwork.T0 == "" {
		t.Errorf("bare title must still render full artwork, got %+v", item)
	}
	if item.Artwork.Version != 1 {
		t.Errorf("missing asset row defaults version to 1, got %d", item.Artwork.Version)
	}
	if item.Genres == nil || item.Platforms == nil {
		t.Error("list fields must be non-nil for stable JSON shapes")
	}
}

func TestBuildCatalogItemPrefersSelectedAssets(t *testing.T) {
	s := &Service{}
	title := models.Title{AppID: "440", Name: "Team Fortress 2"}
	title.Assets = &models.TitleAsset{
		SelectedAssets: models.ToJSON(map[string]string{
			"grid": "https://sgdb.example/grid.png",
			"hero": "https://sgdb.example/hero.png",
		}),
		Version: 3,
	}

	item := s.buildCatalogItem(&title)
	if item.HeaderImage != "https://sgdb.example/grid.png" {
		t.Errorf("selected grid must win the header slot, got %q", item.HeaderImage)
	}
	if item.Background != "https://sgdb.example/hero.png" {
		t.Errorf("selected hero must win the background slot, got %q", item.Background)
	}
	if item.Artwork.Version != 3 {
		t.Errorf("asset version must flow through, got %d", item.Artwork.Version)
	}
}
