// Package query serves catalog reads: listing, ranked search, detail,
// classification, coverage and ingest status. All ranking is deterministic
// so identical inputs always produce identical orderings.
package query

import (
	"strings"

	"github.com/playdex/catalogd/internal/normalize"
)

// MinScore is the relevance floor below which a candidate is dropped.
const MinScore = 25.0

// noiseMarkers demote derivative catalog entries when include_dlc is off.
var noiseMarkers = []string{"soundtrack", "demo", "bundle", "dlc", "artbook", "season pass", "trailer"}

// tokenScore rates how many query tokens appear in the candidate, mapped
// onto the 60..80 band so it sits below the structural match tiers.
func tokenScore(queryNorm, candidateNorm string) float64 {
	tokens := strings.Fields(queryNorm)
	if len(tokens) == 0 {
		return 0
	}
	candidateTokens := strings.Fields(candidateNorm)
	if len(candidateTokens) == 0 {
		return 0
	}
	matched := 0
	for _, token := range tokens {
		for _, ct := range candidateTokens {
			if strings.HasPrefix(ct, token) || strings.Contains(ct, token) {
				matched++
				break
			}
		}
	}
	ratio := float64(matched) / float64(len(tokens))
	return 60.0 + ratio*20.0
}

// ScoreCandidate rates one candidate for a query. Tiers: exact name 100,
// name prefix 94, exact acronym 93, substring 88, acronym prefix 86, token
// overlap 60..80. Numeric queries also rate against the app id. A hot-rank
// position adds a small boost capped at 6 points.
func ScoreCandidate(query, name, appID string, hotRank map[string]int) float64 {
	name = strings.TrimSpace(name)
	if name == "" && appID == "" {
		return 0
	}

	queryNorm := normalize.Title(query)
	queryCompact := normalize.Compact(query)
	nameNorm := normalize.Title(name)

	score := 0.0
	if queryNorm != "" && nameNorm != "" {
		switch {
		case nameNorm == queryNorm:
			score = 100.0
		case strings.HasPrefix(nameNorm, queryNorm):
			score = 94.0
		case strings.Contains(nameNorm, queryNorm):
			score = 88.0
		default:
			score = tokenScore(queryNorm, nameNorm)
		}
	}

	if queryCompact != "" && name != "" {
		variants := normalize.AcronymVariants(name)
		if variants[queryCompact] {
			if score < 93.0 {
				score = 93.0
			}
		} else if len(queryCompact) >= 2 {
			for variant := range variants {
				if strings.HasPrefix(variant, queryCompact) {
					if score < 86.0 {
						score = 86.0
					}
					break
				}
			}
		}
	}

	if isDigits(queryCompact) && appID != "" {
		switch {
		case appID == queryCompact:
			score = 100.0
		case strings.HasPrefix(appID, queryCompact):
			if score < 90.0 {
				score = 90.0
			}
		case strings.Contains(appID, queryCompact):
			if score < 75.0 {
				score = 75.0
			}
		}
	}

	if rank, ok := hotRank[appID]; ok {
		boost := 6.0 - float64(rank)*0.05
		if boost > 0 {
			score += boost
		}
	}

	if score > 100.0 {
		score = 100.0
	}
	return score
}

// NoisePenalty returns the demotion applied to derivative entries when the
// caller excluded DLC-like results. A hard classification outweighs name
// markers.
func NoisePenalty(name, titleType string) float64 {
	if titleType == "dlc" {
		return 30.0
	}
	lower := strings.ToLower(name)
	for _, marker := range noiseMarkers {
		if strings.Contains(lower, marker) {
			return 20.0
		}
	}
	return 0
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
