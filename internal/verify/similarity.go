package verify

import "strings"

// Fixed similarity grades for the structural matches that short-circuit the
// edit-distance comparison.
const (
	exactMatchScore = 1.0
	substringScore  = 0.85
	lastTokenScore  = 0.75
)

// NameSimilarity scores how alike two person names are, in [0,1]. Both names
// are normalized first. Exact match wins, then substring containment in
// either direction, then a shared last token (surname) when both names have
// at least two tokens, and finally normalized Levenshtein distance.
func NameSimilarity(a, b string) float64 {
	a = NormalizeName(a)
	b = NormalizeName(b)

	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return exactMatchScore
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return substringScore
	}

	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	if len(tokensA) >= 2 && len(tokensB) >= 2 &&
		tokensA[len(tokensA)-1] == tokensB[len(tokensB)-1] {
		return lastTokenScore
	}

	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return 1 - float64(levenshtein(a, b))/float64(maxLen)
}

// levenshtein computes the edit distance between two strings using a
// two-row dynamic programming table.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
