package complete

import (
	"strings"
	"testing"

	"github.com/playdex/catalogd/internal/models"
)

func TestTemplatedDescription(t *testing.T) {
	desc := TemplatedDescription("Team Fortress 2", models.TitleTypeGame)
	if !strings.HasPrefix(desc, "Team Fortress 2 is a game") {
		t.Errorf("unexpected description %q", desc)
	}

	desc = TemplatedDescription("Some Tool", "")
	if !strings.Contains(desc, "is a game") {
		t.Errorf("empty type must default to game, got %q", desc)
	}

	desc = TemplatedDescription("Expansion Pack", models.TitleTypeDLC)
	if !strings.Contains(desc, "is a dlc") {
		t.Errorf("dlc type must be reflected, got %q", desc)
	}
}
