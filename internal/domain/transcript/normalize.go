package transcript

import (
	"sort"
	"strings"

	"github.com/pramudya/trendcut/internal/types"
)

// Normalize turns raw subtitle triples into a scoring-ready sequence:
// sorted by start, no overlaps, no empty text, no inverted spans.
// An empty or nil input (transcript unavailable) yields an empty slice.
func Normalize(raw []types.TranscriptUnit) []types.TranscriptUnit {
	units := make([]types.TranscriptUnit, 0, len(raw))
	for _, u := range raw {
		text := strings.TrimSpace(u.Text)
		if text == "" {
			continue
		}
		if u.End <= u.Start || u.Start < 0 {
			continue
		}
		units = append(units, types.TranscriptUnit{Start: u.Start, End: u.End, Text: text})
	}

	sort.SliceStable(units, func(i, j int) bool {
		if units[i].Start != units[j].Start {
			return units[i].Start < units[j].Start
		}
		return units[i].End < units[j].End
	})

	out := units[:0]
	for _, u := range units {
		if len(out) > 0 {
			prev := &out[len(out)-1]
			// Identical spans are duplicates (auto-subs repeat cues).
			if u.Start == prev.Start && u.End == prev.End {
				if u.Text != prev.Text {
					prev.Text = prev.Text + " " + u.Text
				}
				continue
			}
			// Overlap: clip this unit's start to the previous end.
			if u.Start < prev.End {
				u.Start = prev.End
				if u.End <= u.Start {
					continue
				}
			}
		}
		out = append(out, u)
	}
	return out
}
