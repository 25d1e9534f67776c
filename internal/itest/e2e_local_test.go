//go:build integration

package itest

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pramudya/trendcut/internal/config"
	"github.com/pramudya/trendcut/internal/pipeline"
	"github.com/pramudya/trendcut/internal/types"
)

// TestE2E_LocalClipping renders real clips from a synthetic source video
// and verifies geometry, report contents and output layout.
func TestE2E_LocalClipping(t *testing.T) {
	requireBinaries(t, "ffmpeg", "ffprobe")

	tmp := t.TempDir()
	in := filepath.Join(tmp, "source.mp4")

	// 70s of black 16:9 video with silent audio.
	ff := exec.Command("ffmpeg",
		"-y",
		"-f", "lavfi",
		"-i", "color=c=black:s=1280x720:d=70",
		"-f", "lavfi",
		"-i", "anullsrc=r=44100:cl=mono",
		"-shortest",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		in,
	)
	if b, err := ff.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg fixture failed: %v\n%s", err, string(b))
	}

	cfg := config.Default()
	cfg.OutputDir = filepath.Join(tmp, "out")
	cfg.WorkDir = filepath.Join(tmp, "work")
	cfg.ClipsPerVideo = 2
	cfg.OutputWidth = 360
	cfg.OutputHeight = 640
	cfg.PerJobTimeout = 2 * time.Minute

	log := logrus.New()
	log.SetOutput(io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := pipeline.RunLocal(ctx, cfg, []string{in}, log)
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	if report.OK != 2 || report.Failed != 0 {
		t.Fatalf("unexpected report counts: ok=%d failed=%d", report.OK, report.Failed)
	}

	for _, res := range report.Results {
		if res.Status != types.StatusOK {
			t.Fatalf("clip failed: %s", res.ErrorDetail)
		}
		if _, err := os.Stat(res.OutputPath); err != nil {
			t.Fatalf("missing clip file: %v", err)
		}
		dur, err := probeDurationSeconds(res.OutputPath)
		if err != nil {
			t.Fatalf("probe clip: %v", err)
		}
		want := res.Job.Segment.Dur()
		if dur < want-1.5 || dur > want+1.5 {
			t.Fatalf("clip duration %.2fs, want about %.2fs", dur, want)
		}
	}

	runDirs, err := filepath.Glob(filepath.Join(cfg.OutputDir, "local-*"))
	if err != nil || len(runDirs) != 1 {
		t.Fatalf("expected one run dir, got %v (%v)", runDirs, err)
	}
	if _, err := os.Stat(filepath.Join(runDirs[0], "report.json")); err != nil {
		t.Fatalf("missing report.json: %v", err)
	}
}

func probeDurationSeconds(mp4Path string) (float64, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		mp4Path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
}
