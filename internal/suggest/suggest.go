// Package suggest ranks candidate names against a misspelled query for
// "did you mean" diagnostics, using the fzf matching algorithm.
package suggest

import (
	"sort"
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// maxQueryRunes guards the matcher against pathological input: anything
// longer is truncated before searching.
const maxQueryRunes = 256

func init() {
	algo.Init("default")
}

type scored struct {
	text  string
	score int
}

// Closest returns up to limit candidates nearest to query, best first.
// Candidates below the similarity floor are dropped; an empty candidate set
// short-circuits without building any matching state.
func Closest(candidates []string, query string, limit int) []string {
	if len(candidates) == 0 || limit <= 0 {
		return nil
	}

	queryRunes := []rune(strings.ToLower(query))
	if len(queryRunes) > maxQueryRunes {
		queryRunes = queryRunes[:maxQueryRunes]
	}
	if len(queryRunes) == 0 {
		return nil
	}

	slab := util.MakeSlab(100*1024, 2048)
	ranked := make([]scored, 0, len(candidates))
	for _, cand := range candidates {
		s := similarity(cand, queryRunes, slab)
		if s <= 0 {
			continue
		}
		if !closeEnough(cand, string(queryRunes)) {
			continue
		}
		ranked = append(ranked, scored{text: cand, score: s})
	}
	if len(ranked) == 0 {
		return nil
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].text < ranked[j].text
	})

	if limit > len(ranked) {
		limit = len(ranked)
	}
	out := make([]string, 0, limit)
	for _, r := range ranked[:limit] {
		out = append(out, r.text)
	}
	return out
}

// Best returns the single closest candidate, if any clears the floor.
func Best(candidates []string, query string) (string, bool) {
	out := Closest(candidates, query, 1)
	if len(out) == 0 {
		return "", false
	}
	return out[0], true
}

// similarity scores in both directions: fzf requires every pattern rune to
// appear in the text, so a query with an extra character ("fooo" vs "foo")
// only matches with the roles swapped.
func similarity(candidate string, queryRunes []rune, slab *util.Slab) int {
	lowered := strings.ToLower(candidate)

	text := util.ToChars([]byte(lowered))
	res, _ := algo.FuzzyMatchV2(false, true, true, &text, queryRunes, false, slab)
	score := res.Score

	qText := util.ToChars([]byte(string(queryRunes)))
	rev, _ := algo.FuzzyMatchV2(false, true, true, &qText, []rune(lowered), false, slab)
	if rev.Score > score {
		score = rev.Score
	}
	return score
}

// closeEnough is the similarity floor: the shorter name must cover at least
// half of the longer one, so wildly different names never surface as
// suggestions.
func closeEnough(a, b string) bool {
	la, lb := len([]rune(strings.ToLower(a))), len([]rune(b))
	shorter, longer := la, lb
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	return shorter*2 >= longer
}
