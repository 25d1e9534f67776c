package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/pramudya/trendcut/internal/types"
)

// EncodeSettings are the fixed output encoding parameters for every clip.
type EncodeSettings struct {
	Width        int
	Height       int
	FPS          int
	Preset       string
	CRF          int
	AudioBitrate string
}

func DefaultEncodeSettings() EncodeSettings {
	return EncodeSettings{
		Width:        1080,
		Height:       1920,
		FPS:          30,
		Preset:       "veryfast",
		CRF:          23,
		AudioBitrate: "128k",
	}
}

type Adapter struct {
	ffmpeg  string
	ffprobe string
	enc     EncodeSettings
}

func New(ffmpegPath, ffprobePath string, enc EncodeSettings) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath, enc: enc}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

// Probe reads duration and video stream dimensions via ffprobe JSON output.
func (a *Adapter) Probe(ctx context.Context, path string) (types.VideoInfo, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.VideoInfo{}, fmt.Errorf("ffprobe: %w\n%s", err, string(b))
	}

	var po probeOutput
	if err := json.Unmarshal(b, &po); err != nil {
		return types.VideoInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := types.VideoInfo{}
	if po.Format.Duration != "" {
		sec, err := strconv.ParseFloat(po.Format.Duration, 64)
		if err != nil {
			return types.VideoInfo{}, fmt.Errorf("parse duration %q: %w", po.Format.Duration, err)
		}
		info.DurationSec = sec
	}
	for _, s := range po.Streams {
		if s.CodecType == "video" {
			info.Width = s.Width
			info.Height = s.Height
			break
		}
	}
	return info, nil
}

// RenderVertical crops, scales and re-encodes one time window into a
// vertical clip with fully explicit parameters. Exit code is the only
// success signal.
func (a *Adapter) RenderVertical(ctx context.Context, inPath string, startSec, durSec float64, crop types.CropRect, outPath string) error {
	vf := fmt.Sprintf("crop=%d:%d:%d:%d,scale=%d:%d,fps=%d",
		crop.W, crop.H, crop.X, crop.Y, a.enc.Width, a.enc.Height, a.enc.FPS)

	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-ss", fmtSeconds(startSec),
		"-t", fmtSeconds(durSec),
		"-i", inPath,
		"-vf", vf,
		"-c:v", "libx264",
		"-preset", a.enc.Preset,
		"-crf", strconv.Itoa(a.enc.CRF),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", a.enc.AudioBitrate,
		"-movflags", "+faststart",
		outPath,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg render clip: %w\n%s", err, string(b))
	}
	return nil
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
