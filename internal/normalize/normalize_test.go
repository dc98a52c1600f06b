package normalize

import (
	"testing"
)

func TestTitleNormalization(t *testing.T) {
	cases := map[string]string{
		"Half-Life® 2: Episode One": "half life 2 episode one",
		"  DOOM Eternal  ":          "doom eternal",
		"---":                       "",
		"Grand Theft Auto V":        "grand theft auto v",
	}
	for input, want := range cases {
		if got := Title(input); got != want {
			t.Errorf("Title(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestCompact(t *testing.T) {
	if got := Compact("Grand Theft Auto V"); got != "grandtheftautov" {
		t.Errorf("Compact: got %q", got)
	}
	if got := Compact("S.T.A.L.K.E.R. 2"); got != "stalker2" {
		t.Errorf("Compact: got %q", got)
	}
}

func TestRomanToInt(t *testing.T) {
	cases := map[string]int{
		"v":     5,
		"iii":   3,
		"ix":    9,
		"xiv":   14,
		"":      0,
		"hello": 0,
		"vx":    5, // malformed but parseable; subtractive rule applies
	}
	for input, want := range cases {
		if got := RomanToInt(input); got != want {
			t.Errorf("RomanToInt(%q) = %d, want %d", input, got, want)
		}
	}
}

func TestAcronymVariants(t *testing.T) {
	variants := AcronymVariants("Grand Theft Auto V")
	for _, want := range []string{"gta", "gta5", "grandtheftautov"} {
		if !variants[want] {
			t.Errorf("expected variant %q in %v", want, variants)
		}
	}

	// Stopwords drop out of the initials.
	variants = AcronymVariants("The Legend of Zelda")
	if !variants["lz"] {
		t.Errorf("expected stopword-filtered initials lz, got %v", variants)
	}
}

func TestSearchVariants(t *testing.T) {
	variants := SearchVariants("The Witcher 3: Wild Hunt")
	if len(variants) == 0 || variants[0] != "The Witcher 3: Wild Hunt" {
		t.Fatalf("expected original query first, got %v", variants)
	}
	found := false
	for _, v := range variants {
		if v == "The Witcher 3" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected subtitle head variant, got %v", variants)
	}
	if len(variants) > 4 {
		t.Errorf("expected at most 4 variants, got %d", len(variants))
	}
}

func TestExtractYear(t *testing.T) {
	if got := ExtractYear("Nov 16, 2004"); got != 2004 {
		t.Errorf("ExtractYear: got %d", got)
	}
	if got := ExtractYear("coming soon"); got != 0 {
		t.Errorf("ExtractYear: got %d, want 0", got)
	}
}

func TestIsPlaceholderName(t *testing.T) {
	placeholders := []string{"", "  ", "440", "Steam App 440", "steam app 999999"}
	for _, name := range placeholders {
		if !IsPlaceholderName(name) {
			t.Errorf("expected %q to be a placeholder", name)
		}
	}
	real := []string{"Team Fortress 2", "Dota 2", "App of War"}
	for _, name := range real {
		if IsPlaceholderName(name) {
			t.Errorf("did not expect %q to be a placeholder", name)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("Half-Life 2", "Half Life 2"); got != 1 {
		t.Errorf("identical normalized titles should score 1, got %f", got)
	}
	close := Similarity("Half-Life 2", "Half-Life")
	far := Similarity("Half-Life 2", "Stardew Valley")
	if close <= far {
		t.Errorf("expected related titles to outscore unrelated: %f vs %f", close, far)
	}
	if far > 0.3 {
		t.Errorf("unrelated titles scored too high: %f", far)
	}
	if got := Similarity("", "anything"); got != 0 {
		t.Errorf("empty input should score 0, got %f", got)
	}
}

func TestJaccard(t *testing.T) {
	if got := Jaccard("dota 2", "dota 2"); got != 1 {
		t.Errorf("Jaccard identical: got %f", got)
	}
	got := Jaccard("grand theft auto", "grand theft auto v")
	if got <= 0.7 || got >= 1 {
		t.Errorf("Jaccard subset: got %f", got)
	}
}
