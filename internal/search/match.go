// Package search provides the string matching used by menu filters and
// hardware lookups.
package search

import (
	"sort"
	"strings"
)

// ContainsFold reports whether text contains query, ignoring case and
// surrounding whitespace in the query. An empty query matches everything.
// This is the standard menu filter predicate.
func ContainsFold(text, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(query))
}

// Match represents a fuzzy search match with its score.
type Match struct {
	Text      string  // The original text that was matched
	Score     float64 // Match score (higher is better)
	Positions []int   // Character positions that matched the query
}

// Fuzzy performs subsequence fuzzy matching.
type Fuzzy struct {
	caseSensitive bool
	minScore      float64
}

// NewFuzzy creates a new fuzzy matcher with default settings
func NewFuzzy() *Fuzzy {
	return &Fuzzy{
		caseSensitive: false,
		minScore:      0.1,
	}
}

// SetCaseSensitive enables or disables case-sensitive matching
func (f *Fuzzy) SetCaseSensitive(enabled bool) *Fuzzy {
	f.caseSensitive = enabled
	return f
}

// SetMinScore sets the minimum score threshold for matches
func (f *Fuzzy) SetMinScore(score float64) *Fuzzy {
	f.minScore = score
	return f
}

// Match performs fuzzy matching of query against text
func (f *Fuzzy) Match(query, text string) (*Match, bool) {
	if query == "" {
		return &Match{Text: text, Score: 1.0, Positions: []int{}}, true
	}

	normalizedQuery := f.normalize(query)
	normalizedText := f.normalize(text)

	positions, score := calculateMatch(normalizedQuery, normalizedText)
	if score < f.minScore {
		return nil, false
	}

	return &Match{Text: text, Score: score, Positions: positions}, true
}

// Search performs fuzzy search across multiple strings, best matches first.
func (f *Fuzzy) Search(query string, texts []string) []Match {
	matches := make([]Match, 0, len(texts))

	for _, text := range texts {
		if match, ok := f.Match(query, text); ok {
			matches = append(matches, *match)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			// If scores are equal, prefer shorter strings
			return len(matches[i].Text) < len(matches[j].Text)
		}
		return matches[i].Score > matches[j].Score
	})

	return matches
}

func (f *Fuzzy) normalize(text string) string {
	if !f.caseSensitive {
		text = strings.ToLower(text)
	}
	return strings.Join(strings.Fields(text), " ")
}

// calculateMatch finds query as a subsequence of text and scores the match.
func calculateMatch(query, text string) ([]int, float64) {
	if len(query) == 0 {
		return []int{}, 1.0
	}
	if len(text) == 0 {
		return []int{}, 0.0
	}

	var positions []int
	queryRunes := []rune(query)
	queryIndex := 0
	consecutive := 0
	bestConsecutive := 0

	for textIndex, char := range []rune(text) {
		if queryIndex < len(queryRunes) && queryRunes[queryIndex] == char {
			positions = append(positions, textIndex)
			queryIndex++
			consecutive++
			if consecutive > bestConsecutive {
				bestConsecutive = consecutive
			}
		} else {
			consecutive = 0
		}
	}

	// Every query character must match somewhere.
	if queryIndex < len(queryRunes) {
		return []int{}, 0.0
	}

	return positions, calculateScore(queryRunes, []rune(text), positions, bestConsecutive)
}

func calculateScore(query, text []rune, positions []int, bestConsecutive int) float64 {
	if len(positions) == 0 {
		return 0.0
	}

	// Base score: ratio of matched characters to query length
	baseScore := float64(len(positions)) / float64(len(query))

	// Bonus for consecutive matches
	consecutiveBonus := float64(bestConsecutive) / float64(len(query)) * 0.5

	// Bonus for matches at the beginning of the string
	startBonus := 0.0
	if positions[0] == 0 {
		startBonus = 0.2
	}

	// Bonus for shorter strings (all else being equal)
	lengthBonus := float64(len(query)) / float64(len(text)) * 0.3

	// Penalty for gaps between matches
	gapPenalty := 0.0
	if len(positions) > 1 {
		totalGaps := positions[len(positions)-1] - positions[0] + 1 - len(positions)
		gapPenalty = float64(totalGaps) / float64(len(text)) * 0.3
	}

	// Normalize by the maximum attainable sum so only a gapless match of
	// the whole text from position 0 scores 1.0.
	const maxScore = 1.0 + 0.5 + 0.2 + 0.3
	score := (baseScore + consecutiveBonus + startBonus + lengthBonus - gapPenalty) / maxScore

	return max(0.0, score)
}
