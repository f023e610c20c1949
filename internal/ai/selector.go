package ai

import (
	"sort"
	"strings"
)

// rankRule assigns Rank to any model whose lower-cased name satisfies Match.
type rankRule struct {
	Match func(name string) bool
	Rank  int
}

func containsAny(subs ...string) func(string) bool {
	return func(name string) bool {
		for _, s := range subs {
			if strings.Contains(name, s) {
				return true
			}
		}
		return false
	}
}

// rankRules is evaluated top to bottom; the first match wins.
// Cheaper and faster variants come first.
var rankRules = []rankRule{
	{Match: containsAny("2.0-flash", "flash-2.0"), Rank: 0},
	{Match: containsAny("flash"), Rank: 1},
	{Match: containsAny("pro"), Rank: 2},
}

const fallbackRank = 3

// RankOf returns the priority of a model name; lower is tried first.
func RankOf(name string) int {
	lower := strings.ToLower(name)
	for _, r := range rankRules {
		if r.Match(lower) {
			return r.Rank
		}
	}
	return fallbackRank
}

// ShortName strips the provider's "models/" prefix.
func ShortName(name string) string {
	return strings.TrimPrefix(name, "models/")
}

// RankModels orders the provider's models by RankOf, keeping the provider's
// relative order within a rank. The result is not truncated.
func RankModels(names []string) []ModelCandidate {
	out := make([]ModelCandidate, 0, len(names))
	for _, n := range names {
		out = append(out, ModelCandidate{
			FullName:  n,
			ShortName: ShortName(n),
			Rank:      RankOf(n),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rank < out[j].Rank
	})
	return out
}
