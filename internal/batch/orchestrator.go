// Package batch fans the clipping work out over a bounded worker pool and
// folds the per-clip outcomes back into one deterministic report.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pramudya/trendcut/internal/domain/segments"
	"github.com/pramudya/trendcut/internal/domain/transcript"
	"github.com/pramudya/trendcut/internal/ports"
	"github.com/pramudya/trendcut/internal/types"
)

// Materializer renders one job into its terminal result. Implementations
// must isolate failures: a returned result, never a panic or batch error.
type Materializer interface {
	Materialize(ctx context.Context, job types.ClipJob) types.ClipResult
}

type Deps struct {
	Sources     ports.SourceResolver
	Transcripts ports.TranscriptService
	Clips       Materializer
}

type Orchestrator struct {
	d        Deps
	planOpts segments.Options
	outDir   string
	aspect   string
	workers  int
	log      *logrus.Logger
}

func New(d Deps, planOpts segments.Options, outDir string, workers int, log *logrus.Logger) *Orchestrator {
	if workers < 1 {
		workers = 2
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(os.Stderr)
	}
	return &Orchestrator{
		d:        d,
		planOpts: planOpts,
		outDir:   outDir,
		aspect:   "9:16",
		workers:  workers,
		log:      log,
	}
}

// queued carries the video input ordinal so the report can be sorted at
// aggregation time instead of relying on execution order.
type queued struct {
	ord int
	job types.ClipJob
}

type done struct {
	ord int
	res types.ClipResult
}

// Run plans and renders clips for every video. Planning runs sequentially
// per video in input order; rendering fans out over the worker pool. One
// job's failure never aborts the batch, and a video whose resolution or
// planning fails contributes a recorded video-level failure instead of
// results. The returned report is ordered by (video input order, segment
// start) regardless of scheduling.
func (o *Orchestrator) Run(ctx context.Context, videos []types.Video, clipsPerVideo int) types.Report {
	var (
		report types.Report
		jobs   []queued
	)

	for ord, video := range videos {
		if ctx.Err() != nil {
			report.VideoFailures = append(report.VideoFailures, types.VideoFailure{
				Video: video, Stage: "plan", Reason: types.DetailCanceled,
			})
			continue
		}
		vjobs, fail := o.prepare(ctx, ord, video, clipsPerVideo)
		if fail != nil {
			report.VideoFailures = append(report.VideoFailures, *fail)
			continue
		}
		jobs = append(jobs, vjobs...)
	}

	results := o.render(ctx, jobs)
	sort.Slice(results, func(i, j int) bool {
		if results[i].ord != results[j].ord {
			return results[i].ord < results[j].ord
		}
		return results[i].res.Job.Segment.Start < results[j].res.Job.Segment.Start
	})
	for _, r := range results {
		report.Results = append(report.Results, r.res)
		if r.res.Status == types.StatusOK {
			report.OK++
		} else {
			report.Failed++
		}
	}
	return report
}

// prepare resolves the source, fetches the transcript (any failure means
// "unavailable", not fatal) and plans this video's segments.
func (o *Orchestrator) prepare(ctx context.Context, ord int, video types.Video, clipsPerVideo int) ([]queued, *types.VideoFailure) {
	log := o.log.WithField("video_id", video.ID)

	media, err := o.d.Sources.Resolve(ctx, video)
	if err != nil {
		log.WithError(err).Warn("source resolution failed, skipping video")
		return nil, &types.VideoFailure{Video: video, Stage: "resolve", Reason: err.Error()}
	}
	if media.DurationSec > 0 {
		// Probed duration is ground truth over discovery metadata.
		video.DurationSec = media.DurationSec
	}

	var units []types.TranscriptUnit
	raw, err := o.d.Transcripts.Transcript(ctx, video)
	if err != nil {
		log.WithError(err).Info("transcript unavailable, uniform planning")
	} else {
		units = transcript.Normalize(raw)
	}

	plan, err := segments.Plan(video, units, clipsPerVideo, o.planOpts)
	if err != nil {
		var ive *types.InvalidVideoError
		if errors.As(err, &ive) {
			log.WithError(err).Warn("invalid video metadata, skipping video")
		} else {
			log.WithError(err).Warn("planning failed, skipping video")
		}
		return nil, &types.VideoFailure{Video: video, Stage: "plan", Reason: err.Error()}
	}
	log.WithFields(logrus.Fields{
		"segments": len(plan),
		"with_transcript": len(units) > 0,
	}).Info("planned segments")

	jobs := make([]queued, 0, len(plan))
	for i, seg := range plan {
		jobs = append(jobs, queued{
			ord: ord,
			job: types.ClipJob{
				Video:      video,
				Segment:    seg,
				Index:      i + 1,
				SourcePath: media.Path,
				Aspect:     o.aspect,
				OutputPath: OutputPath(o.outDir, video.ID, i+1),
			},
		})
	}
	return jobs, nil
}

// render executes jobs on the bounded pool. Workers stop picking up new
// jobs once the context is done; jobs never started still report a
// canceled failure so every queued job yields exactly one result.
func (o *Orchestrator) render(ctx context.Context, jobs []queued) []done {
	if len(jobs) == 0 {
		return nil
	}

	in := make(chan queued)
	out := make(chan done, len(jobs))

	var wg sync.WaitGroup
	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for q := range in {
				if ctx.Err() != nil {
					out <- done{ord: q.ord, res: types.ClipResult{
						Job:         q.job,
						Status:      types.StatusFailed,
						ErrorDetail: types.DetailCanceled,
					}}
					continue
				}
				out <- done{ord: q.ord, res: o.d.Clips.Materialize(ctx, q.job)}
			}
		}()
	}

	for _, q := range jobs {
		in <- q
	}
	close(in)
	wg.Wait()
	close(out)

	results := make([]done, 0, len(jobs))
	for d := range out {
		results = append(results, d)
	}
	return results
}

var reUnsafeID = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// OutputPath builds the deterministic per-clip file name
// {video_id}_{index}.mp4 under dir, with unsafe id characters replaced.
func OutputPath(dir, videoID string, index int) string {
	safe := reUnsafeID.ReplaceAllString(videoID, "_")
	return filepath.Join(dir, fmt.Sprintf("%s_%02d.mp4", safe, index))
}
