// Package assets resolves a presentable artwork bundle per title from an
// ordered provider chain: dedicated artwork provider, then storefront-derived
// assets, then the primary-provider CDN convention as the floor.
package assets

import (
	"fmt"
	"strings"
)

// Quality scores per source tier
const (
	QualityGridDB = 1.0
	QualityEpic   = 0.92
	QualitySteam  = 0.75
)

const steamCDNBase = "https://cdn.cloudflare.steamstatic.com/steam/apps"

// Bundle is the four-slot artwork set for a title.
type Bundle struct {
	Grid string `json:"grid"`
	Hero string `json:"hero"`
	Logo string `json:"logo"`
	Icon string `json:"icon"`
}

// IsEmpty reports whether no slot is filled.
func (b Bundle) IsEmpty() bool {
	return b.Grid == "" && b.Hero == "" && b.Logo == "" && b.Icon == ""
}

// HasPrimary reports whether the bundle carries a grid or hero image, the
// selection criterion for winning the provider chain.
func (b Bundle) HasPrimary() bool {
	return b.Grid != "" || b.Hero != ""
}

// Map renders the bundle in the persisted jsonb shape.
func (b Bundle) Map() map[string]string {
	return map[string]string{"grid": b.Grid, "hero": b.Hero, "logo": b.Logo, "icon": b.Icon}
}

// Normalize cross-substitutes slots so every slot, logo included, is filled
// whenever any image is available.
func (b Bundle) Normalize() Bundle {
	out := b
	if out.Grid == "" {
		out.Grid = firstOf(out.Icon, out.Hero, out.Logo)
	}
	if out.Hero == "" {
		out.Hero = firstOf(out.Grid, out.Icon, out.Logo)
	}
	if out.Icon == "" {
		out.Icon = firstOf(out.Grid, out.Hero, out.Logo)
	}
	if out.Logo == "" {
		out.Logo = firstOf(out.Grid, out.Hero, out.Icon)
	}
	return out
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// FallbackBundle builds the deterministic CDN-convention bundle for an app
// id. Always complete, never requires a network call.
func FallbackBundle(appID string) Bundle {
	return Bundle{
		Grid: fmt.Sprintf("%s/%s/header.jpg", steamCDNBase, appID),
		Hero: fmt.Sprintf("%s/%s/library_hero.jpg", steamCDNBase, appID),
		Logo: fmt.Sprintf("%s/%s/logo.png", steamCDNBase, appID),
		Icon: fmt.Sprintf("%s/%s/capsule_616x353.jpg", steamCDNBase, appID),
	}
}

// isBadgePlaceholder detects the storefront's badge-only placeholder images,
// which carry no real artwork and must lose to the CDN floor.
func isBadgePlaceholder(url string) bool {
	lower := strings.ToLower(url)
	return strings.Contains(lower, "badge") || strings.Contains(lower, "placeholder")
}

// stripPlaceholders clears slots holding badge placeholders so the bundle no
// longer counts as having primary artwork.
func stripPlaceholders(b Bundle) Bundle {
	out := b
	if isBadgePlaceholder(out.Grid) {
		out.Grid = ""
	}
	if isBadgePlaceholder(out.Hero) {
		out.Hero = ""
	}
	if isBadgePlaceholder(out.Logo) {
		out.Logo = ""
	}
	if isBadgePlaceholder(out.Icon) {
		out.Icon = ""
	}
	return out
}

// ChooseSource picks the first tier with primary artwork and returns its
// name, the winning bundle and the tier quality score. The storefront bundle
// is placeholder-stripped before it competes.
func ChooseSource(sgdb, epic, steam Bundle) (string, Bundle, float64) {
	if sgdb.HasPrimary() {
		return "steamgriddb", sgdb, QualityGridDB
	}
	epic = stripPlaceholders(epic)
	if epic.HasPrimary() {
		return "epic", epic, QualityEpic
	}
	return "steam", steam, QualitySteam
}

// BundleFromMap reads the persisted jsonb shape back into a Bundle.
func BundleFromMap(raw map[string]any) Bundle {
	get := func(key string) string {
		s, _ := raw[key].(string)
		return s
	}
	return Bundle{Grid: get("grid"), Hero: get("hero"), Logo: get("logo"), Icon: get("icon")}
}
