package command

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxTypoDistance bounds the edit distance of a "did you mean" suggestion.
const maxTypoDistance = 2

// Suggest returns the known keyword closest to word, or "" when nothing is
// close enough. Abbreviations ("rep") are matched before typos ("lsit").
func Suggest(word string) string {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return ""
	}
	all := Keywords()

	if ranks := fuzzy.RankFindFold(word, all); len(ranks) > 0 {
		sort.Stable(ranks)
		return ranks[0].Target
	}

	best, bestDist := "", maxTypoDistance+1
	for _, k := range all {
		if d := fuzzy.LevenshteinDistance(word, k); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}
