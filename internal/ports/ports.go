package ports

import (
	"context"

	"github.com/pramudya/trendcut/internal/types"
)

// TrendingService lists publicly trending videos for a region/category.
// Failures are recoverable FetchErrors; the core never retries on its own.
type TrendingService interface {
	ListTrending(ctx context.Context, region, category string, maxResults int) ([]types.Video, error)
}

// TranscriptService fetches raw timestamped subtitle text for a video.
// Any failure is treated as "transcript unavailable" by callers.
type TranscriptService interface {
	Transcript(ctx context.Context, video types.Video) ([]types.TranscriptUnit, error)
}

// SourceResolver turns a video reference into a local media file the
// toolkit can read, with its probed (ground-truth) duration.
type SourceResolver interface {
	Resolve(ctx context.Context, video types.Video) (types.SourceMedia, error)
}

// VideoTool is the external media toolkit boundary. Success is defined by
// exit code and output-file existence only; the core never parses toolkit
// logs for semantics.
type VideoTool interface {
	Probe(ctx context.Context, path string) (types.VideoInfo, error)
	RenderVertical(ctx context.Context, inPath string, startSec, durSec float64, crop types.CropRect, outPath string) error
}
