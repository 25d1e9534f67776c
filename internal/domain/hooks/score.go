package hooks

import (
	"strings"

	"github.com/pramudya/trendcut/internal/types"
)

// KeywordSet holds the configured case-insensitive hook triggers.
// Built once at startup, read-only afterwards, safe for concurrent use.
type KeywordSet struct {
	words []string
}

// DefaultKeywords mirrors the trigger set the clipper shipped with,
// plus a few English staples of short-form hooks.
func DefaultKeywords() []string {
	return []string{
		"wow", "gila", "viral", "kaget", "ternyata", "fakta",
		"rahasia", "wajib", "jangan", "breaking", "terungkap",
		"wait", "secret", "you won't believe",
	}
}

// NewKeywordSet lowercases, trims and dedupes the configured triggers.
func NewKeywordSet(words []string) KeywordSet {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return KeywordSet{words: out}
}

// Len reports the number of distinct triggers.
func (k KeywordSet) Len() int { return len(k.words) }

// Matches reports whether any trigger is a substring of text,
// case-insensitively.
func (k KeywordSet) Matches(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range k.words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// Weights tune the scorer. Kept configurable on purpose: the matching rule
// is plain substring and the constants are heuristics, not gospel.
type Weights struct {
	// Match is added once per transcript unit containing any trigger.
	Match float64
	// FrontBonus is added for matched units starting in the first third of
	// the window. Short-form viewers decide in the first seconds, so
	// front-loaded hooks rank higher.
	FrontBonus float64
}

func DefaultWeights() Weights { return Weights{Match: 1.0, FrontBonus: 0.5} }

// Score rates the hookiness of the window [winStart, winEnd) given the
// transcript units that may intersect it. Pure and deterministic; a window
// with no intersecting units or no matches scores exactly 0.
func Score(ks KeywordSet, w Weights, units []types.TranscriptUnit, winStart, winEnd float64) float64 {
	if winEnd <= winStart {
		return 0
	}
	frontEdge := winStart + (winEnd-winStart)/3
	var score float64
	for _, u := range units {
		if u.End <= winStart || u.Start >= winEnd {
			continue
		}
		if !ks.Matches(u.Text) {
			continue
		}
		// A unit counts once no matter how many triggers it contains.
		score += w.Match
		if u.Start < frontEdge {
			score += w.FrontBonus
		}
	}
	return score
}
