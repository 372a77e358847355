package assistant

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

var examples = []string{
	"Create new employee John Smith",
	"Allocate laptop to employee EMP001",
	"Show me all available assets",
	"Get employee onboarding status",
	"Send notification to new employees",
}

// minSuggestionToken is the shortest token used for ranking; shorter ones
// are subsequences of nearly every example.
const minSuggestionToken = 3

// Suggestions returns the example commands in their default order.
func Suggestions() []string {
	out := make([]string, len(examples))
	copy(out, examples)
	return out
}

// RankSuggestions orders the example commands by how well tokens fuzzily
// match them. Examples no token matches keep their default order at the end.
func RankSuggestions(tokens []string) []string {
	lowered := make([]string, len(examples))
	for i, e := range examples {
		lowered[i] = strings.ToLower(e)
	}

	scores := make([]int, len(examples))
	matched := make([]bool, len(examples))
	for _, token := range tokens {
		if len(token) < minSuggestionToken {
			continue
		}
		for _, m := range fuzzy.Find(strings.ToLower(token), lowered) {
			scores[m.Index] += m.Score
			matched[m.Index] = true
		}
	}

	order := make([]int, len(examples))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if matched[a] != matched[b] {
			return matched[a]
		}
		return matched[a] && scores[a] > scores[b]
	})

	out := make([]string, len(order))
	for i, idx := range order {
		out[i] = examples[idx]
	}
	return out
}
