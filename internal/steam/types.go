package steam

import (
	"fmt"
	"strconv"
	"strings"
)

// Summary is the lightweight appdetails projection used during list ingest.
type Summary struct {
	AppID            string         `json:"app_id"`
	Name             string         `json:"name"`
	ItemType         string         `json:"item_type"`
	ShortDescription string         `json:"short_description"`
	HeaderImage      string         `json:"header_image"`
	CapsuleImage     string         `json:"capsule_image"`
	Background       string         `json:"background"`
	ReleaseDate      string         `json:"release_date"`
	ComingSoon       bool           `json:"coming_soon"`
	Genres           []string       `json:"genres"`
	Platforms        []string       `json:"platforms"`
	Developers       []string       `json:"developers"`
	Publishers       []string       `json:"publishers"`
	Price            map[string]any `json:"price"`
	Payload          map[string]any `json:"-"`
}

// Detail extends Summary with the heavy fields fetched on demand.
type Detail struct {
	Summary
	DetailedDescription string         `json:"detailed_description"`
	AboutTheGame        string         `json:"about_the_game"`
	Website             string         `json:"website"`
	Categories          []string       `json:"categories"`
	Screenshots         []string       `json:"screenshots"`
	Requirements        map[string]any `json:"requirements"`
	Recommendations     int            `json:"recommendations"`
	DLC                 []string       `json:"dlc"`
	FullGameAppID       string         `json:"full_game_app_id"`
}

func summaryFromPayload(appID string, data map[string]any) *Summary {
	release := asMap(data["release_date"])
	comingSoon, _ := release["coming_soon"].(bool)

	summary := &Summary{
		AppID:            appID,
		Name:             strings.TrimSpace(asString(data["name"])),
		ItemType:         strings.ToLower(strings.TrimSpace(asString(data["type"]))),
		ShortDescription: strings.TrimSpace(asString(data["short_description"])),
		HeaderImage:      asString(data["header_image"]),
		CapsuleImage:     asString(data["capsule_image"]),
		Background:       asString(data["background_raw"]),
		ReleaseDate:      strings.TrimSpace(asString(release["date"])),
		ComingSoon:       comingSoon,
		Genres:           namedDescriptions(data["genres"]),
		Platforms:        platformNames(asMap(data["platforms"])),
		Developers:       stringList(data["developers"]),
		Publishers:       stringList(data["publishers"]),
		Price:            asMap(data["price_overview"]),
		Payload:          data,
	}
	if summary.Background == "" {
		summary.Background = asString(data["background"])
	}
	return summary
}

func detailFromPayload(appID string, data map[string]any) *Detail {
	detail := &Detail{
		Summary:             *summaryFromPayload(appID, data),
		DetailedDescription: asString(data["detailed_description"]),
		AboutTheGame:        asString(data["about_the_game"]),
		Website:             strings.TrimSpace(asString(data["website"])),
		Categories:          namedDescriptions(data["categories"]),
		Requirements:        requirementBlocks(data),
		Recommendations:     int(asFloat(asMap(data["recommendations"])["total"])),
		FullGameAppID:       numericString(asMap(data["fullgame"])["appid"]),
	}
	for _, raw := range asList(data["screenshots"]) {
		if full := asString(asMap(raw)["path_full"]); full != "" {
			detail.Screenshots = append(detail.Screenshots, full)
		}
	}
	for _, raw := range asList(data["dlc"]) {
		if id := numericString(raw); id != "" {
			detail.DLC = append(detail.DLC, id)
		}
	}
	return detail
}

// namedDescriptions extracts the description field from lists shaped like
// [{"id": ..., "description": "Action"}, ...].
func namedDescriptions(raw any) []string {
	var out []string
	for _, item := range asList(raw) {
		if desc := strings.TrimSpace(asString(asMap(item)["description"])); desc != "" {
			out = append(out, desc)
		}
	}
	return out
}

func platformNames(platforms map[string]any) []string {
	var out []string
	for _, name := range []string{"windows", "mac", "linux"} {
		if enabled, _ := platforms[name].(bool); enabled {
			out = append(out, name)
		}
	}
	return out
}

func requirementBlocks(data map[string]any) map[string]any {
	out := map[string]any{}
	for key, field := range map[string]string{
		"windows": "pc_requirements",
		"mac":     "mac_requirements",
		"linux":   "linux_requirements",
	} {
		if block := asMap(data[field]); len(block) > 0 {
			out[key] = block
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func stringList(raw any) []string {
	var out []string
	for _, item := range asList(raw) {
		if value := strings.TrimSpace(asString(item)); value != "" {
			out = append(out, value)
		}
	}
	return out
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

func asFloat(raw any) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return 0
}

// numericString renders an upstream id as a bare decimal string. JSON numbers
// arrive as float64, ids as strings occasionally.
func numericString(raw any) string {
	switch v := raw.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		if _, err := strconv.Atoi(trimmed); err == nil {
			return trimmed
		}
		return ""
	case float64:
		if v <= 0 {
			return ""
		}
		return strconv.FormatInt(int64(v), 10)
	case int:
		if v <= 0 {
			return ""
		}
		return strconv.Itoa(v)
	case fmt.Stringer:
		return numericString(v.String())
	}
	return ""
}
