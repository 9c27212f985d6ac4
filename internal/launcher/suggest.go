package launcher

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// distance added to candidates that only match by edit distance, so that
// subsequence matches always rank first
const distanceEditFallback = 100

// Suggest returns the candidate closest to name, or "" when nothing is close
// enough to be a plausible typo.
func Suggest(name string, candidates []string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}

	best, bestDistance := "", -1
	for _, candidate := range candidates {
		distance := fuzzy.RankMatchFold(name, candidate)
		if distance < 0 {
			edits := fuzzy.LevenshteinDistance(name, strings.ToLower(candidate))
			if edits > len(name)/2 {
				continue
			}
			distance = distanceEditFallback + edits
		}

		if bestDistance < 0 || distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}

	return best
}
