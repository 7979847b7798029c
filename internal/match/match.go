// Package match picks the best-fitting effect name for a user-typed query.
package match

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Closest returns the candidate with the smallest edit distance to query,
// compared case-insensitively. Ties are broken by lexical order so repeated
// calls with the same inputs always pick the same candidate. The boolean is
// false only when candidates is empty.
func Closest(query string, candidates []string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}

	q := strings.ToLower(query)
	best := ""
	bestDist := -1
	for _, cand := range candidates {
		dist := levenshtein.ComputeDistance(q, strings.ToLower(cand))
		if bestDist < 0 || dist < bestDist || (dist == bestDist && cand < best) {
			best = cand
			bestDist = dist
		}
	}
	return best, true
}
