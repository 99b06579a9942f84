// Package search ranks command names against a typed query.
package search

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// MatchKind orders results: exact matches first, then prefixes, then fuzzy
type MatchKind int

const (
	Exact MatchKind = iota
	Prefix
	Fuzzy
)

func (k MatchKind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Prefix:
		return "prefix"
	default:
		return "fuzzy"
	}
}

// Result is one matching name
type Result struct {
	Name  string
	Index int // position in the input slice
	Kind  MatchKind
	score int
}

// Rank returns the names matching query, best first. Matching ignores case
// and surrounding whitespace. An empty query matches nothing.
func Rank(names []string, query string) []Result {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	lowered := make([]string, len(names))
	for i, n := range names {
		lowered[i] = strings.ToLower(strings.TrimSpace(n))
	}

	fuzzyScores := make(map[int]int)
	for _, m := range fuzzy.Find(q, lowered) {
		fuzzyScores[m.Index] = m.Score
	}

	var results []Result
	for i, n := range lowered {
		r := Result{Name: names[i], Index: i}
		switch {
		case n == q:
			r.Kind = Exact
		case strings.HasPrefix(n, q):
			r.Kind = Prefix
		default:
			score, ok := fuzzyScores[i]
			if !ok {
				continue
			}
			r.Kind = Fuzzy
			r.score = score
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(a, b int) bool {
		if results[a].Kind != results[b].Kind {
			return results[a].Kind < results[b].Kind
		}
		return results[a].score > results[b].score
	})

	return results
}
