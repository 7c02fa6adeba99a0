package textutil

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	// DefaultThreshold is the general-purpose minimum ratio for a match.
	DefaultThreshold = 0.7
	// SubtreeThreshold is the stricter ratio used when a match decides
	// whether an entire subtree is duplicated.
	SubtreeThreshold = 0.8
)

// Ratio computes a Levenshtein similarity in [0, 1] between the normalized
// forms of a and b. Two empty keys are identical.
func Ratio(a, b string) float64 {
	return RatioKeys(Normalize(a), Normalize(b))
}

// RatioKeys is Ratio over keys already produced by Normalize.
func RatioKeys(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// BestMatch returns the index of the candidate most similar to name whose
// ratio is at least threshold. Ties keep the earliest candidate, so the
// result is deterministic for a deterministic candidate order. An empty
// candidate slice never matches.
func BestMatch(name string, candidates []string, threshold float64) (int, float64, bool) {
	return BestMatchFunc(name, candidates, func(s string) string { return s }, threshold)
}

// BestMatchFunc is BestMatch over arbitrary values, using nameOf to read the
// comparable text of each candidate.
func BestMatchFunc[T any](name string, candidates []T, nameOf func(T) string, threshold float64) (int, float64, bool) {
	if len(candidates) == 0 {
		return -1, 0, false
	}
	key := Normalize(name)
	bestIdx := -1
	bestScore := 0.0
	for i, candidate := range candidates {
		score := RatioKeys(key, Normalize(nameOf(candidate)))
		if score > bestScore || bestIdx == -1 {
			bestIdx = i
			bestScore = score
		}
		if score == 1 {
			break
		}
	}
	if bestScore < threshold {
		return -1, bestScore, false
	}
	return bestIdx, bestScore, true
}
