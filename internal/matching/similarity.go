package matching

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Similarity computes a normalized string-similarity score in [0, 1]
// between two hearing comments: 1 minus the Levenshtein distance divided
// by the longer input's length, after normalization.
//
// Inputs are lowercased and have whitespace runs collapsed first, so
// formatting churn in the source (double spaces, trailing newlines, case
// changes) does not depress the score. Two comments that are both empty
// after normalization compare as identical; body-name and date-window
// eligibility still gate any pairing built on that score.
func Similarity(a, b string) float64 {
	a = normalizeComment(a)
	b = normalizeComment(b)

	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}

	dist := levenshtein.ComputeDistance(a, b)
	if dist >= longest {
		return 0.0
	}
	return 1.0 - float64(dist)/float64(longest)
}

func normalizeComment(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
