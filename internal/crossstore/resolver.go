package crossstore

import (
	"time"

	"gorm.io/gorm"

	"github.com/playdex/catalogd/internal/models"
	"github.com/playdex/catalogd/internal/normalize"
)

// TitleFacts carries the fields matching needs, decoupled from the row type.
type TitleFacts struct {
	AppID       string
	Name        string
	ReleaseDate string
	Developer   string
}

// Match is an accepted candidate with its blended confidence score.
type Match struct {
	Candidate  Candidate
	Confidence float64
}

// similarityScore blends normalized string similarity (0.62), token Jaccard
// (0.33) and a 0.05 prefix bonus, clamped to [0, 1]. Identical normalized
// names score 1.0 outright.
func similarityScore(left, right string) float64 {
	a := normalize.Title(left)
	b := normalize.Title(right)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	score := normalize.Similarity(a, b)*0.62 + normalize.Jaccard(a, b)*0.33
	if len(a) > 0 && len(b) > 0 && (hasPrefix(a, b) || hasPrefix(b, a)) {
		score += 0.05
	}
	return clamp01(score)
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SelectMatch scores every candidate against the title and returns the best
// one when it clears minConfidence. Year proximity and developer token
// overlap adjust the name score before clamping.
func SelectMatch(title TitleFacts, candidates []Candidate, minConfidence float64) *Match {
	if len(candidates) == 0 || title.Name == "" {
		return nil
	}

	titleYear := normalize.ExtractYear(title.ReleaseDate)
	devTokens := normalize.TokenSet(title.Developer)

	var best *Candidate
	bestScore := -1.0
	for i := range candidates {
		candidate := &candidates[i]
		score := similarityScore(title.Name, candidate.Title)

		if titleYear > 0 && candidate.ReleaseYear > 0 {
			delta := titleYear - candidate.ReleaseYear
			if delta < 0 {
				delta = -delta
			}
			switch {
			case delta == 0:
				score += 0.06
			case delta == 1:
				score += 0.03
			case delta >= 5:
				score -= 0.08
			}
		}

		if len(devTokens) > 0 {
			if intersects(devTokens, normalize.TokenSet(candidate.Developer)) {
				score += 0.04
			} else if intersects(devTokens, normalize.TokenSet(candidate.Seller)) {
				score += 0.02
			}
		}

		score = clamp01(score)
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}

	if best == nil || bestScore < minConfidence {
		return nil
	}
	return &Match{Candidate: *best, Confidence: bestScore}
}

func intersects(a, b map[string]bool) bool {
	for token := range a {
		if b[token] {
			return true
		}
	}
	return false
}

// UpsertMapping persists the match for a title. An existing mapping for a
// different product is only replaced when the new score is at least as good.
// Returns the confidence now stored for the title.
func UpsertMapping(db *gorm.DB, title TitleFacts, match Match) (float64, error) {
	productID := match.Candidate.EpicProductID
	if productID == "" {
		return 0, nil
	}

	var existing models.CrossStoreMapping
	err := db.Where("steam_app_id = ?", title.AppID).
		Order("confidence DESC, updated_at DESC").
		First(&existing).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return 0, err
	}
	if err == gorm.ErrRecordNotFound {
		existing = models.CrossStoreMapping{SteamAppID: title.AppID, EpicProductID: productID}
	}

	sameProduct := existing.EpicProductID == productID
	if existing.ID != "" && !sameProduct && existing.Confidence > match.Confidence {
		return existing.Confidence, nil
	}

	existing.EpicProductID = productID
	existing.Confidence = match.Confidence
	existing.Evidence = models.ToJSON(map[string]any{
		"matched_title": match.Candidate.Title,
		"steam_title":   title.Name,
		"page_slug":     match.Candidate.PageSlug,
		"developer":     match.Candidate.Developer,
		"seller":        match.Candidate.Seller,
		"assets":        match.Candidate.Assets,
		"score":         match.Confidence,
		"state":         models.MappingStateMatched,
		"updated_at":    time.Now().UTC().Format(time.RFC3339),
	})
	if err := db.Save(&existing).Error; err != nil {
		return 0, err
	}
	return match.Confidence, nil
}
