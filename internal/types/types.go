package types

// Video is one discovered source video. Immutable for the lifetime of a run.
type Video struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Channel     string  `json:"channel,omitempty"`
	Views       int64   `json:"views,omitempty"`
	DurationSec float64 `json:"duration_sec"`
	PublishedAt string  `json:"published_at,omitempty"`
}

// TranscriptUnit is one timestamped piece of subtitle text. A normalized
// sequence is sorted by Start and units never overlap.
type TranscriptUnit struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type SegmentSource string

const (
	SourceHook    SegmentSource = "HOOK"
	SourceUniform SegmentSource = "UNIFORM"
)

// Segment is a candidate time window chosen to become one output clip.
type Segment struct {
	Start  float64       `json:"start"`
	End    float64       `json:"end"`
	Score  float64       `json:"score"`
	Source SegmentSource `json:"source"`
}

// Dur returns the segment length in seconds.
func (s Segment) Dur() float64 { return s.End - s.Start }

// Overlaps reports whether two segments share any part of the timeline.
func (s Segment) Overlaps(o Segment) bool {
	return s.Start < o.End && o.Start < s.End
}

// SourceMedia is a resolved local copy of a video, ready for rendering.
type SourceMedia struct {
	Path        string
	DurationSec float64
}

// ClipJob is one (video, segment) pair selected for rendering. Owned
// exclusively by the materializer while it runs.
type ClipJob struct {
	Video      Video   `json:"video"`
	Segment    Segment `json:"segment"`
	Index      int     `json:"index"`
	SourcePath string  `json:"source_path"`
	Aspect     string  `json:"aspect"`
	OutputPath string  `json:"output_path"`
}

type ClipStatus string

const (
	StatusOK     ClipStatus = "OK"
	StatusFailed ClipStatus = "FAILED"
)

// Failure details recorded in ClipResult.ErrorDetail. Timeout and
// cancellation are distinguished from ordinary toolkit failures so the
// report stays actionable.
const (
	DetailTimeout  = "timeout"
	DetailCanceled = "canceled"
)

// ClipResult is the write-once terminal record of one ClipJob.
type ClipResult struct {
	Job         ClipJob    `json:"job"`
	Status      ClipStatus `json:"status"`
	ErrorDetail string     `json:"error_detail,omitempty"`
	OutputPath  string     `json:"output_path,omitempty"`
}

// VideoFailure records a video that produced no clips at all.
type VideoFailure struct {
	Video  Video  `json:"video"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// Report aggregates every outcome of one batch run. Results are ordered by
// video input order, then segment start within a video.
type Report struct {
	Results       []ClipResult   `json:"results"`
	VideoFailures []VideoFailure `json:"video_failures,omitempty"`
	OK            int            `json:"ok"`
	Failed        int            `json:"failed"`
}

// VideoInfo is probed stream metadata for a local media file.
type VideoInfo struct {
	DurationSec float64
	Width       int
	Height      int
}

// CropRect is an explicit crop rectangle in source pixels.
type CropRect struct {
	W, H, X, Y int
}
