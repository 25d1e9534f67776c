package segments

import (
	"fmt"
	"math"
	"sort"

	"github.com/pramudya/trendcut/internal/domain/hooks"
	"github.com/pramudya/trendcut/internal/types"
)

// epsilon absorbs float drift when fitting windows against the video end.
const epsilon = 1e-9

// Options tune the planner. Zero values fall back to the defaults the
// clipper ships with (15s..60s clamp, 30s windows).
type Options struct {
	MinLen     float64
	MaxLen     float64
	DefaultLen float64

	Keywords hooks.KeywordSet
	Weights  hooks.Weights
}

func (o Options) normalized() Options {
	if o.MinLen <= 0 {
		o.MinLen = 15
	}
	if o.MaxLen <= 0 {
		o.MaxLen = 60
	}
	if o.DefaultLen <= 0 {
		o.DefaultLen = 30
	}
	if o.Weights == (hooks.Weights{}) {
		o.Weights = hooks.DefaultWeights()
	}
	return o
}

// Plan selects up to nClips non-overlapping windows for one video, sorted
// by start. With a transcript it scores hook candidates and keeps the best;
// without one (or when hooks cannot fill the quota) it falls back to
// uniform equal-length windows over the uncovered timeline. Returning fewer
// segments than requested is a valid plan, not an error.
func Plan(video types.Video, units []types.TranscriptUnit, nClips int, opts Options) ([]types.Segment, error) {
	if nClips < 1 {
		return nil, fmt.Errorf("clips must be >= 1, got %d", nClips)
	}
	dur := video.DurationSec
	if math.IsNaN(dur) || dur <= 0 {
		return nil, &types.InvalidVideoError{VideoID: video.ID, DurationSec: dur}
	}
	opts = opts.normalized()

	var picked []types.Segment
	if len(units) > 0 {
		picked = planHooks(units, dur, nClips, opts)
	}
	if len(picked) < nClips {
		fill := uniformFill(gaps(picked, dur), nClips-len(picked), dur, nClips, opts)
		picked = append(picked, fill...)
	}

	sort.Slice(picked, func(i, j int) bool { return picked[i].Start < picked[j].Start })
	return picked, nil
}

// planHooks generates one candidate window per transcript unit boundary,
// scores them, and greedily keeps the top non-overlapping nClips.
func planHooks(units []types.TranscriptUnit, dur float64, nClips int, opts Options) []types.Segment {
	winLen := clamp(opts.DefaultLen, opts.MinLen, opts.MaxLen)

	var cands []types.Segment
	seen := make(map[float64]struct{}, len(units))
	for _, u := range units {
		start := u.Start
		// Shift left so the window never extends past the video end.
		if start+winLen > dur {
			start = dur - winLen
		}
		if start < 0 {
			// Video shorter than one window: a single full-length window is
			// still usable when it clears the minimum.
			if dur+epsilon < opts.MinLen {
				continue
			}
			start = 0
		}
		if _, ok := seen[start]; ok {
			continue
		}
		seen[start] = struct{}{}
		end := math.Min(start+winLen, dur)
		score := hooks.Score(opts.Keywords, opts.Weights, units, start, end)
		if score <= 0 {
			continue
		}
		cands = append(cands, types.Segment{Start: start, End: end, Score: score, Source: types.SourceHook})
	}

	// Score descending, start ascending as the deterministic tie-break.
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].Start < cands[j].Start
	})

	var picked []types.Segment
	for _, c := range cands {
		if len(picked) == nClips {
			break
		}
		if overlapsAny(c, picked) {
			continue
		}
		picked = append(picked, c)
	}
	return picked
}

// gaps returns the uncovered portions of [0, dur) given the already picked
// segments, earliest first.
func gaps(picked []types.Segment, dur float64) []types.Segment {
	sorted := append([]types.Segment(nil), picked...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var out []types.Segment
	cursor := 0.0
	for _, s := range sorted {
		if s.Start-cursor > epsilon {
			out = append(out, types.Segment{Start: cursor, End: s.Start})
		}
		if s.End > cursor {
			cursor = s.End
		}
	}
	if dur-cursor > epsilon {
		out = append(out, types.Segment{Start: cursor, End: dur})
	}
	return out
}

// uniformFill partitions the gaps into equal-length windows front to back.
// Window length is duration/nClips clamped to [MinLen, MaxLen]; a trailing
// remainder shorter than the window is dropped, so no window ever falls
// below MinLen.
func uniformFill(gs []types.Segment, need int, dur float64, nClips int, opts Options) []types.Segment {
	winLen := clamp(dur/float64(nClips), opts.MinLen, opts.MaxLen)

	var out []types.Segment
	for _, g := range gs {
		start := g.Start
		for need > 0 && start+winLen <= g.End+epsilon {
			end := math.Min(start+winLen, dur)
			out = append(out, types.Segment{Start: start, End: end, Source: types.SourceUniform})
			start = end
			need--
		}
		if need == 0 {
			break
		}
	}
	return out
}

func overlapsAny(s types.Segment, picked []types.Segment) bool {
	for _, p := range picked {
		if s.Overlaps(p) {
			return true
		}
	}
	return false
}

func clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}
