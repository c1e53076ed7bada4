// Package fuzzy provides fuzzy matching for "did you mean" suggestions.
// Used by action/errors.go when a path token names no declared action.
package fuzzy

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// Matcher provides fuzzy matching functionality for CLI suggestions
type Matcher struct {
	maxDistance int
	minLength   int
	params      *levenshtein.Params
}

// NewMatcher creates a new fuzzy matcher with the given max edit distance
func NewMatcher(maxDistance int) *Matcher {
	return &Matcher{
		maxDistance: maxDistance,
		minLength:   2, // Don't suggest for very short inputs
		params:      levenshtein.NewParams().MaxCost(maxDistance),
	}
}

// Match represents a fuzzy match result
type Match struct {
	Value    string
	Distance int
	Score    float64 // 0.0 to 1.0, higher is better
}

// FindBest finds the best matching string from candidates
// Returns empty string if no good match found
func (m *Matcher) FindBest(input string, candidates []string) string {
	matches := m.FindMatches(input, candidates)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Value
}

// FindMatches finds all candidates within the max edit distance, best first.
// Exact (case-insensitive) matches are not fuzzy and are skipped.
func (m *Matcher) FindMatches(input string, candidates []string) []Match {
	if len(input) < m.minLength {
		return nil
	}

	input = strings.ToLower(input)
	var matches []Match
	for _, candidate := range candidates {
		candidateLower := strings.ToLower(candidate)
		if input == candidateLower {
			continue
		}

		distance := levenshtein.Distance(input, candidateLower, m.params)
		if distance > m.maxDistance {
			continue
		}
		matches = append(matches, Match{
			Value:    candidate,
			Distance: distance,
			// Winkler-adjusted similarity rewards a shared prefix
			Score: levenshtein.Match(input, candidateLower, nil),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Value < matches[j].Value
	})

	return matches
}

// Convenience functions for CLI usage

// FindBestAction finds the best matching action name
func FindBestAction(input string, actions []string, maxDistance int) string {
	return NewMatcher(maxDistance).FindBest(input, actions)
}

// FindSuggestions finds up to maxSuggestions candidates for an error message
func FindSuggestions(input string, candidates []string, maxDistance, maxSuggestions int) []string {
	matches := NewMatcher(maxDistance).FindMatches(input, candidates)

	suggestions := make([]string, 0, min(len(matches), maxSuggestions))
	for i, match := range matches {
		if i >= maxSuggestions {
			break
		}
		suggestions = append(suggestions, match.Value)
	}
	return suggestions
}
