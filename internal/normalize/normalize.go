// Package normalize holds the deterministic text primitives shared by alias
// matching, cross-store scoring and catalog search. Everything in here is
// pure: same input, same output, no locale tables.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nonAlnum    = regexp.MustCompile(`[^a-z0-9]+`)
	yearPattern = regexp.MustCompile(`(19|20)\d{2}`)
)

var acronymStopwords = map[string]bool{
	"the": true, "of": true, "and": true, "for": true, "to": true, "a": true, "an": true,
}

var romanDigits = map[byte]int{
	'i': 1, 'v': 5, 'x': 10, 'l': 50, 'c': 100, 'd': 500, 'm': 1000,
}

// Title lowercases, strips non-alphanumerics to spaces and collapses runs.
// "Half-Life® 2: Episode One" -> "half life 2 episode one".
func Title(value string) string {
	cleaned := nonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(value)), " ")
	return strings.Join(strings.Fields(cleaned), " ")
}

// Compact keeps only alphanumerics: "Grand Theft Auto V" -> "grandtheftautov".
func Compact(value string) string {
	var b strings.Builder
	for _, ch := range strings.ToLower(value) {
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// Tokens splits a normalized title into its words.
func Tokens(value string) []string {
	normalized := Title(value)
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}

// TokenSet returns the distinct token set of a title.
func TokenSet(value string) map[string]bool {
	set := map[string]bool{}
	for _, token := range Tokens(value) {
		set[token] = true
	}
	return set
}

// RomanToInt parses a roman-numeral token ("iii" -> 3). Returns 0 when the
// token is not a plausible numeral.
func RomanToInt(token string) int {
	raw := strings.ToLower(strings.TrimSpace(token))
	if raw == "" || len(raw) > 6 {
		return 0
	}
	total, prev := 0, 0
	for i := len(raw) - 1; i >= 0; i-- {
		value, ok := romanDigits[raw[i]]
		if !ok {
			return 0
		}
		if value < prev {
			total -= value
		} else {
			total += value
			prev = value
		}
	}
	if total <= 0 || total > 3999 {
		return 0
	}
	return total
}

// AcronymVariants builds the compacted lookup forms for a multi-word title:
// bare initials ("gta"), initials plus a trailing digit or roman-numeral
// suffix ("gta5"), and the fully compacted name. Stopwords are dropped from
// the initials unless that would leave nothing.
func AcronymVariants(value string) map[string]bool {
	variants := map[string]bool{}
	tokens := Tokens(value)
	if len(tokens) == 0 {
		return variants
	}

	var alpha, filtered []string
	for _, token := range tokens {
		if strings.IndexFunc(token, func(r rune) bool { return r >= 'a' && r <= 'z' }) >= 0 {
			alpha = append(alpha, token)
			if !acronymStopwords[token] {
				filtered = append(filtered, token)
			}
		}
	}
	acronymTokens := filtered
	if len(acronymTokens) == 0 {
		acronymTokens = alpha
	}

	var full strings.Builder
	var base strings.Builder
	for _, token := range acronymTokens {
		full.WriteByte(token[0])
		// Roman-numeral tokens read as sequel markers, not words, so they
		// stay out of the base initials and come back as digit suffixes.
		if RomanToInt(token) == 0 {
			base.WriteByte(token[0])
		}
	}
	if full.Len() >= 2 {
		variants[full.String()] = true
	}
	if base.Len() >= 2 {
		variants[base.String()] = true
	}

	var suffixes []string
	for _, token := range tokens {
		if _, err := strconv.Atoi(token); err == nil {
			suffixes = append(suffixes, token)
		} else if n := RomanToInt(token); n > 0 {
			suffixes = append(suffixes, strconv.Itoa(n))
		}
	}
	for _, suffix := range suffixes {
		if base.Len() > 0 {
			variants[base.String()+suffix] = true
		}
	}

	if compact := Compact(value); compact != "" {
		variants[compact] = true
	}
	return variants
}

// SearchVariants expands a raw query into the forms worth matching upstream:
// the query itself, its normalized form and subtitle-stripped heads. At most
// four variants, original first.
func SearchVariants(query string) []string {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil
	}
	variants := []string{trimmed}
	add := func(candidate string) {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			return
		}
		for _, existing := range variants {
			if existing == candidate {
				return
			}
		}
		variants = append(variants, candidate)
	}

	add(Title(trimmed))
	if head, _, found := strings.Cut(trimmed, ":"); found {
		add(head)
		add(Title(head))
	}
	if head, _, found := strings.Cut(trimmed, "-"); found {
		add(head)
	}
	if len(variants) > 4 {
		variants = variants[:4]
	}
	return variants
}

// ExtractYear pulls a plausible release year (1900-2100) out of free-form
// release-date text.
func ExtractYear(value string) int {
	match := yearPattern.FindString(value)
	if match == "" {
		return 0
	}
	year, err := strconv.Atoi(match)
	if err != nil || year < 1900 || year > 2100 {
		return 0
	}
	return year
}

// IsPlaceholderName reports whether a title name looks synthesized rather
// than real: empty, a bare numeric id, or the templated "Steam App N" form.
// Ingestion must never overwrite a real name with one of these.
func IsPlaceholderName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return true
	}
	if _, err := strconv.Atoi(trimmed); err == nil {
		return true
	}
	lower := strings.ToLower(trimmed)
	if rest, found := strings.CutPrefix(lower, "steam app "); found {
		if _, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil {
			return true
		}
	}
	return false
}

// Similarity is a character-bigram Dice coefficient over normalized titles,
// in [0,1]. Identical normalized titles score 1.
func Similarity(left, right string) float64 {
	a := Title(left)
	b := Title(right)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	bigramsA := bigrams(a)
	bigramsB := bigrams(b)
	if len(bigramsA) == 0 || len(bigramsB) == 0 {
		return 0
	}
	overlap := 0
	for gram, count := range bigramsA {
		if other := bigramsB[gram]; other > 0 {
			if other < count {
				overlap += other
			} else {
				overlap += count
			}
		}
	}
	totalA, totalB := 0, 0
	for _, count := range bigramsA {
		totalA += count
	}
	for _, count := range bigramsB {
		totalB += count
	}
	return 2 * float64(overlap) / float64(totalA+totalB)
}

// Jaccard is the token-set Jaccard index of two titles, in [0,1].
func Jaccard(left, right string) float64 {
	setA := TokenSet(left)
	setB := TokenSet(right)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	for token := range setA {
		if setB[token] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func bigrams(value string) map[string]int {
	grams := map[string]int{}
	if len(value) < 2 {
		grams[value] = 1
		return grams
	}
	for i := 0; i+2 <= len(value); i++ {
		grams[value[i:i+2]]++
	}
	return grams
}
