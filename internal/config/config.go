// Package config is the single immutable configuration surface for a run,
// validated once at startup before any external call.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pramudya/trendcut/internal/domain/hooks"
)

// ConfigError aborts a run before any batch work starts.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "config: " + e.Reason }

type Config struct {
	// Discovery
	Region   string `validate:"required,len=2"`
	Category string
	TopN     int `validate:"min=1,max=50"`
	APIKey   string

	// Planning
	ClipsPerVideo     int     `validate:"min=1,max=10"`
	MinSegmentSec     float64 `validate:"gt=0"`
	MaxSegmentSec     float64 `validate:"gt=0"`
	DefaultSegmentSec float64 `validate:"gt=0"`
	HookKeywords      []string
	MatchWeight       float64 `validate:"gte=0"`
	FrontBonus        float64 `validate:"gte=0"`

	// Source filtering
	MinSourceSec float64 `validate:"gte=0"`
	MaxSourceSec float64 `validate:"gte=0"`

	// Rendering
	TargetAspect  string `validate:"required"`
	OutputWidth   int    `validate:"min=2"`
	OutputHeight  int    `validate:"min=2"`
	FPS           int    `validate:"min=1,max=120"`
	PerJobTimeout time.Duration

	// Execution
	MaxConcurrency int    `validate:"min=1,max=16"`
	OutputDir      string `validate:"required"`
	WorkDir        string `validate:"required"`

	// External binaries
	FFmpegPath  string
	FFprobePath string
	YtDlpPath   string

	SubtitleLangs []string

	Verbose bool
}

// Default builds the baseline configuration, with region/category/API key
// seeded from the environment the way the clipper has always read them.
func Default() Config {
	return Config{
		Region:   getenvDefault("YOUTUBE_REGION", "ID"),
		Category: getenvDefault("YOUTUBE_CATEGORY_ID", "24"),
		TopN:     5,
		APIKey:   os.Getenv("YOUTUBE_API_KEY"),

		ClipsPerVideo:     2,
		MinSegmentSec:     15,
		MaxSegmentSec:     60,
		DefaultSegmentSec: 30,
		HookKeywords:      hooks.DefaultKeywords(),
		MatchWeight:       1.0,
		FrontBonus:        0.5,

		MinSourceSec: 60,
		MaxSourceSec: 2400,

		TargetAspect:  "9:16",
		OutputWidth:   1080,
		OutputHeight:  1920,
		FPS:           30,
		PerJobTimeout: 120 * time.Second,

		MaxConcurrency: 2,
		OutputDir:      "output",
		WorkDir:        "downloads",

		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		YtDlpPath:   "yt-dlp",

		SubtitleLangs: []string{"id", "en"},
	}
}

// Validate runs struct-tag validation plus the cross-field rules the tags
// cannot express. Any violation is a fatal ConfigError.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return &ConfigError{Reason: err.Error()}
	}
	if c.MinSegmentSec > c.MaxSegmentSec {
		return &ConfigError{Reason: fmt.Sprintf(
			"min segment length %.0fs exceeds max %.0fs", c.MinSegmentSec, c.MaxSegmentSec)}
	}
	if c.DefaultSegmentSec < c.MinSegmentSec || c.DefaultSegmentSec > c.MaxSegmentSec {
		return &ConfigError{Reason: fmt.Sprintf(
			"default segment length %.0fs outside [%.0fs, %.0fs]",
			c.DefaultSegmentSec, c.MinSegmentSec, c.MaxSegmentSec)}
	}
	if c.MaxSourceSec > 0 && c.MinSourceSec > c.MaxSourceSec {
		return &ConfigError{Reason: "min source duration exceeds max"}
	}
	if c.TargetAspect != "9:16" {
		return &ConfigError{Reason: fmt.Sprintf("unsupported target aspect %q", c.TargetAspect)}
	}
	if c.PerJobTimeout <= 0 {
		return &ConfigError{Reason: "per-job timeout must be positive"}
	}
	if len(c.HookKeywords) == 0 {
		return &ConfigError{Reason: "hook keyword set is empty"}
	}
	return nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
