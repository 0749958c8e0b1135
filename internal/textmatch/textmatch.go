// Package textmatch resolves a free-text oil reference against a small
// candidate set. It is a pure function with an explicit threshold and
// tie-break order so the command router can be tested without it and it can
// be tested without the command router.
package textmatch

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Threshold is the minimum normalized similarity (1 - distance/maxLen) for a
// non-exact match. Tolerates a one or two character slip on typical oil names
// without matching unrelated words.
const Threshold = 0.72

// Candidate is one matchable entry. Aliases carry the other-language names
// for the same oil; a hit on any alias counts for the candidate.
type Candidate struct {
	Name    string
	Aliases []string
}

// Best returns the index of the best-matching candidate, or ok=false when
// nothing clears the threshold. Ties break toward an exact (case-insensitive)
// match first, then toward the earlier candidate, so callers listing the
// primary oil before the alternative get the documented preference order.
func Best(query string, candidates []Candidate) (int, bool) {
	query = normalize(query)
	if query == "" || len(candidates) == 0 {
		return 0, false
	}

	bestIndex := -1
	bestScore := 0.0
	bestExact := false

	for i, candidate := range candidates {
		score, exact := candidateScore(query, candidate)
		if score < Threshold {
			continue
		}

		better := false
		switch {
		case exact && !bestExact:
			better = true
		case exact == bestExact && score > bestScore:
			better = true
		}

		if bestIndex == -1 || better {
			bestIndex = i
			bestScore = score
			bestExact = exact
		}
	}

	if bestIndex == -1 {
		return 0, false
	}
	return bestIndex, true
}

func candidateScore(query string, candidate Candidate) (float64, bool) {
	names := append([]string{candidate.Name}, candidate.Aliases...)

	best := 0.0
	exact := false
	for _, name := range names {
		name = normalize(name)
		if name == "" {
			continue
		}

		if name == query {
			return 1.0, true
		}

		if score := similarity(query, name); score > best {
			best = score
		}
	}

	return best, exact
}

func similarity(a, b string) float64 {
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}

	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
