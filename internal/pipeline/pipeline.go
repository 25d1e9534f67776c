// Package pipeline wires the adapters into a full trending-to-clips run.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pramudya/trendcut/internal/batch"
	"github.com/pramudya/trendcut/internal/clip"
	"github.com/pramudya/trendcut/internal/config"
	"github.com/pramudya/trendcut/internal/domain/hooks"
	"github.com/pramudya/trendcut/internal/domain/segments"
	"github.com/pramudya/trendcut/internal/ports"
	"github.com/pramudya/trendcut/internal/ports/adapters/ffmpeg"
	"github.com/pramudya/trendcut/internal/ports/adapters/youtube"
	"github.com/pramudya/trendcut/internal/ports/adapters/ytdlp"
	"github.com/pramudya/trendcut/internal/types"
)

// ensure adapters implement ports
var (
	_ ports.TrendingService   = (*youtube.Adapter)(nil)
	_ ports.TranscriptService = (*ytdlp.Client)(nil)
	_ ports.VideoTool         = (*ffmpeg.Adapter)(nil)
)

// Run executes the full batch: list trending videos, plan and render clips
// for each, write report.json into a fresh run directory. Only a config
// error or an empty discovery aborts the run; everything else degrades to
// skip-and-report.
func Run(ctx context.Context, cfg config.Config, log *logrus.Logger) (*types.Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()[:8]
	workDir := filepath.Join(cfg.WorkDir, "runs", runID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"run_id": runID, "workdir": workDir}).Info("workspace ready")

	trending := youtube.New(cfg.APIKey,
		youtube.WithDurationBand(cfg.MinSourceSec, cfg.MaxSourceSec))
	videos, err := trending.ListTrending(ctx, cfg.Region, cfg.Category, cfg.TopN)
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, fmt.Errorf("no trending videos for region %s category %s", cfg.Region, cfg.Category)
	}
	if len(videos) > cfg.TopN {
		videos = videos[:cfg.TopN]
	}
	log.WithField("videos", len(videos)).Info("trending videos discovered")

	dl := ytdlp.New(cfg.YtDlpPath, workDir, cfg.SubtitleLangs)
	tool := toolFromConfig(cfg)

	seedName := strings.ToLower(cfg.Region)
	if cfg.Category != "" {
		seedName += "-" + cfg.Category
	}
	runOutDir := buildRunOutDir(cfg.OutputDir, seedName, time.Now().UTC())
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		return nil, err
	}
	log.WithField("outdir", runOutDir).Info("output directory ready")

	orch := newOrchestrator(cfg, batch.Deps{
		Sources:     &downloadResolver{dl: dl, tool: tool},
		Transcripts: dl,
		Clips:       clip.New(tool, cfg.PerJobTimeout, log),
	}, runOutDir, log)

	report := orch.Run(ctx, videos, cfg.ClipsPerVideo)
	if err := writeReport(runOutDir, &report); err != nil {
		return nil, err
	}
	logSummary(log, &report, runOutDir)
	return &report, nil
}

// RunLocal clips already-downloaded files instead of trending videos.
// There is no transcript source for arbitrary local media, so planning is
// always uniform.
func RunLocal(ctx context.Context, cfg config.Config, files []string, log *logrus.Logger) (*types.Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tool := toolFromConfig(cfg)
	videos := make([]types.Video, 0, len(files))
	paths := make(map[string]string, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, err
		}
		id := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
		videos = append(videos, types.Video{ID: id, Title: id})
		paths[id] = abs
	}

	runOutDir := buildRunOutDir(cfg.OutputDir, "local", time.Now().UTC())
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		return nil, err
	}

	orch := newOrchestrator(cfg, batch.Deps{
		Sources:     &localResolver{tool: tool, paths: paths},
		Transcripts: unavailableTranscripts{},
		Clips:       clip.New(tool, cfg.PerJobTimeout, log),
	}, runOutDir, log)

	report := orch.Run(ctx, videos, cfg.ClipsPerVideo)
	if err := writeReport(runOutDir, &report); err != nil {
		return nil, err
	}
	logSummary(log, &report, runOutDir)
	return &report, nil
}

func newOrchestrator(cfg config.Config, deps batch.Deps, outDir string, log *logrus.Logger) *batch.Orchestrator {
	planOpts := segments.Options{
		MinLen:     cfg.MinSegmentSec,
		MaxLen:     cfg.MaxSegmentSec,
		DefaultLen: cfg.DefaultSegmentSec,
		Keywords:   hooks.NewKeywordSet(cfg.HookKeywords),
		Weights:    hooks.Weights{Match: cfg.MatchWeight, FrontBonus: cfg.FrontBonus},
	}
	return batch.New(deps, planOpts, outDir, cfg.MaxConcurrency, log)
}

func toolFromConfig(cfg config.Config) *ffmpeg.Adapter {
	enc := ffmpeg.DefaultEncodeSettings()
	enc.Width = cfg.OutputWidth
	enc.Height = cfg.OutputHeight
	enc.FPS = cfg.FPS
	return ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath, enc)
}

// downloadResolver fetches the source media with yt-dlp and probes it for
// the ground-truth duration.
type downloadResolver struct {
	dl   *ytdlp.Client
	tool ports.VideoTool
}

func (r *downloadResolver) Resolve(ctx context.Context, video types.Video) (types.SourceMedia, error) {
	path, err := r.dl.Download(ctx, video.ID)
	if err != nil {
		return types.SourceMedia{}, &types.FetchError{Op: "download source", Err: err}
	}
	info, err := r.tool.Probe(ctx, path)
	if err != nil {
		return types.SourceMedia{}, fmt.Errorf("probe downloaded media: %w", err)
	}
	return types.SourceMedia{Path: path, DurationSec: info.DurationSec}, nil
}

// localResolver serves pre-existing files, probing their duration.
type localResolver struct {
	tool  ports.VideoTool
	paths map[string]string
}

func (r *localResolver) Resolve(ctx context.Context, video types.Video) (types.SourceMedia, error) {
	path, ok := r.paths[video.ID]
	if !ok {
		return types.SourceMedia{}, fmt.Errorf("unknown local video %s", video.ID)
	}
	info, err := r.tool.Probe(ctx, path)
	if err != nil {
		return types.SourceMedia{}, fmt.Errorf("probe %s: %w", path, err)
	}
	return types.SourceMedia{Path: path, DurationSec: info.DurationSec}, nil
}

type unavailableTranscripts struct{}

func (unavailableTranscripts) Transcript(context.Context, types.Video) ([]types.TranscriptUnit, error) {
	return nil, &types.FetchError{Op: "fetch subtitles", Err: fmt.Errorf("no transcript source for local media")}
}

func writeReport(runOutDir string, report *types.Report) error {
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(filepath.Join(runOutDir, "report.json"), b, 0o644)
}

func logSummary(log *logrus.Logger, report *types.Report, runOutDir string) {
	log.WithFields(logrus.Fields{
		"ok":             report.OK,
		"failed":         report.Failed,
		"video_failures": len(report.VideoFailures),
		"outdir":         runOutDir,
	}).Info("batch finished")
}

// buildRunOutDir keeps run outputs separated: {name}-{timestamp}-{suffix}
// under the output root. The suffix guards against two runs starting in
// the same second.
func buildRunOutDir(outRoot, name string, now time.Time) string {
	name = normalizePathSegment(name)
	if name == "" {
		name = "run"
	}
	ts := now.UTC().Format("20060102-150405Z")
	seed := fmt.Sprintf("%s|%d", name, now.UTC().UnixNano())
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, hash(seed)[:6]))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}
