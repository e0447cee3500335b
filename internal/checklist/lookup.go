package checklist

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Match is the closest checklist to a spoken name.
type Match struct {
	Index    int
	Distance int
	// Similarity is 1 - Distance/longer name length, in [0, 1].
	Similarity float64
}

// Accepted reports whether the match is close enough to start the
// checklist without asking the user first.
func (m Match) Accepted(minSimilarity float64) bool {
	return m.Similarity >= minSimilarity
}

// FindByName returns the checklist whose name is closest to spoken. Ties
// go to the earliest checklist. ok is false for an empty collection.
func FindByName(col Collection, spoken string) (m Match, ok bool) {
	target := normalize(spoken)
	for i, c := range col.Checklists {
		name := normalize(c.Name)
		d := levenshtein.ComputeDistance(target, name)
		if !ok || d < m.Distance {
			m = Match{Index: i, Distance: d, Similarity: similarity(d, target, name)}
			ok = true
		}
	}
	return m, ok
}

func similarity(d int, a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(d)/float64(longest)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
