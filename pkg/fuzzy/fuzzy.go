package fuzzy

import (
	"strings"
	"unicode/utf8"
)

// Tolerances for the relative edit-distance rules. Both were picked
// empirically; keep them in sync with any stored data that relied on them.
const (
	// DedupRatio applies to the shorter of the two titles being compared.
	DedupRatio = 0.25
	// TodoMatchRatio applies to the length of the assistant todo text.
	TodoMatchRatio = 0.3
)

// LevenshteinDistance calculates the edit distance between two strings
// This measures how many single-character edits (insertions, deletions, or substitutions)
// are required to change one string into another. Comparison is case-insensitive.
func LevenshteinDistance(s1, s2 string) int {
	r1 := []rune(strings.ToLower(s1))
	r2 := []rune(strings.ToLower(s2))

	if len(r1) == 0 || len(r2) == 0 {
		return max(len(r1), len(r2))
	}

	m := len(r1)
	n := len(r2)

	// Two rolling rows are enough; only the previous row is read.
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// IsSameTask reports whether two task titles describe the same task:
// the distance must stay below DedupRatio of the shorter title.
func IsSameTask(a, b string) bool {
	shorter := min(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	return float64(LevenshteinDistance(a, b)) < float64(shorter)*DedupRatio
}

// MatchesTodo reports whether a todo entry refers to the given task title.
// The tolerance scales with the todo text only, so argument order matters.
func MatchesTodo(todo, title string) bool {
	return float64(LevenshteinDistance(todo, title)) < float64(utf8.RuneCountInString(todo))*TodoMatchRatio
}

// FuzzyMatch checks if query fuzzy-matches text within a given threshold
// threshold is the maximum allowed edit distance
func FuzzyMatch(query, text string, threshold int) bool {
	query = normalizeString(query)
	text = normalizeString(text)

	// If query is contained in text, it's a match
	if strings.Contains(text, query) {
		return true
	}

	// Check if any word in text fuzzy-matches the query
	for _, word := range strings.Fields(text) {
		if LevenshteinDistance(query, word) <= threshold {
			return true
		}
		if strings.HasPrefix(word, query) {
			return true
		}
	}

	// Check overall distance for short texts
	if len(text) < 50 {
		maxDistance := threshold + len(query)/5
		if LevenshteinDistance(query, text) <= maxDistance {
			return true
		}
	}

	return false
}

// SearchThreshold returns the typo tolerance used for a search query.
func SearchThreshold(query string) int {
	switch n := utf8.RuneCountInString(query); {
	case n <= 3:
		return 1
	case n >= 8:
		return 3
	default:
		return 2
	}
}

// normalizeString converts to lowercase and collapses whitespace
func normalizeString(s string) string {
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}
