package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func names(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Name)
	}
	return out
}

func TestRankOrdersByKind(t *testing.T) {
	cmds := []string{"ask-clipboard", "autocomplete", "Auto", "cancel"}

	got := Rank(cmds, "auto")

	assert.Equal(t, []string{"Auto", "autocomplete"}, names(got))
	assert.Equal(t, Exact, got[0].Kind)
	assert.Equal(t, 2, got[0].Index)
	assert.Equal(t, Prefix, got[1].Kind)
}

func TestRankFuzzy(t *testing.T) {
	cmds := []string{"cancel", "ask-clipboard", "autocomplete"}

	got := Rank(cmds, "acb")

	assert.Equal(t, []string{"ask-clipboard"}, names(got))
	assert.Equal(t, Fuzzy, got[0].Kind)
}

func TestRankPrefixBeforeFuzzy(t *testing.T) {
	cmds := []string{"summarize", "sum"}

	got := Rank(cmds, " SU ")

	assert.Equal(t, []string{"summarize", "sum"}, names(got))
	for _, r := range got {
		assert.Equal(t, Prefix, r.Kind)
	}

	got = Rank([]string{"xsux", "sum"}, "su")
	assert.Equal(t, []string{"sum", "xsux"}, names(got))
	assert.Equal(t, Fuzzy, got[1].Kind)
}

func TestRankEmptyQuery(t *testing.T) {
	assert.Empty(t, Rank([]string{"a"}, "  "))
}

func TestRankNoMatch(t *testing.T) {
	assert.Empty(t, Rank([]string{"cancel"}, "zzz"))
}
