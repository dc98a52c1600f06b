package steam

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// SeedSource loads the locally installed title list used when the remote app
// list cannot be fetched. The seed file is a JSON array of app ids (numbers
// or strings); the optional manifest map provides real names for them.
type SeedSource struct {
	FilePath     string
	ManifestPath string
}

// Load reads the seed list. Entries without a manifest name get the
// placeholder name "Steam App {id}" which the ingest upsert treats as
// non-authoritative.
func (s SeedSource) Load() ([]AppEntry, error) {
	if s.FilePath == "" {
		return nil, fmt.Errorf("no seed file configured")
	}
	raw, err := os.ReadFile(s.FilePath)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var ids []any
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	names := s.loadManifestNames()
	seen := map[string]bool{}
	var entries []AppEntry
	for _, item := range ids {
		appID := numericString(item)
		if appID == "" || seen[appID] {
			continue
		}
		seen[appID] = true
		name := names[appID]
		if name == "" {
			name = "Steam App " + appID
		}
		entries = append(entries, AppEntry{AppID: appID, Name: name})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("seed file %s contains no usable app ids", s.FilePath)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].AppID < entries[j].AppID })
	return entries, nil
}

func (s SeedSource) loadManifestNames() map[string]string {
	names := map[string]string{}
	if s.ManifestPath == "" {
		return names
	}
	raw, err := os.ReadFile(s.ManifestPath)
	if err != nil {
		return names
	}
	var mapped map[string]any
	if err := json.Unmarshal(raw, &mapped); err != nil {
		return names
	}
	for appID, value := range mapped {
		if name := strings.TrimSpace(asString(value)); name != "" {
			names[strings.TrimSpace(appID)] = name
		}
	}
	return names
}
