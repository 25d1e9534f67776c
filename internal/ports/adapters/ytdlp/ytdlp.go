// Package ytdlp shells out to the yt-dlp binary for video downloads and
// subtitle retrieval.
package ytdlp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pramudya/trendcut/internal/domain/transcript"
	"github.com/pramudya/trendcut/internal/types"
)

type Client struct {
	bin     string
	workDir string
	// Subtitle language preference order, e.g. ["id", "en"]. Glob-expanded
	// to cover variants like en-US and auto-generated tracks.
	langs []string
}

func New(binPath, workDir string, langs []string) *Client {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	if len(langs) == 0 {
		langs = []string{"id", "en"}
	}
	return &Client{bin: binPath, workDir: workDir, langs: langs}
}

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}

// Download fetches the source media into the work directory and returns the
// final file path. YouTube format availability varies per video, so a small
// fallback chain of format selectors is tried in order.
func (c *Client) Download(ctx context.Context, videoID string) (string, error) {
	template := filepath.Join(c.workDir, "%(id)s.%(ext)s")
	base := []string{
		"--ignore-config",
		"--no-playlist",
		"--geo-bypass",
		"--force-ipv4",
		"--extractor-retries", "5",
	}
	attempts := [][]string{
		nil,
		{"-f", "18/b[ext=mp4]/b"},
		{"-f", "b"},
	}

	var lastErr error
	for _, extra := range attempts {
		args := append(append([]string{}, base...), extra...)
		args = append(args,
			"-o", template,
			"--print", "after_move:filepath",
			watchURL(videoID),
		)
		cmd := exec.CommandContext(ctx, c.bin, args...)
		out, err := cmd.CombinedOutput()
		if err != nil {
			lastErr = fmt.Errorf("yt-dlp download: %w\n%s", err, string(out))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		// --print writes the final path as the last non-empty line.
		path := lastLine(string(out))
		if path == "" {
			lastErr = fmt.Errorf("yt-dlp printed no output path")
			continue
		}
		return path, nil
	}
	return "", lastErr
}

// Transcript implements ports.TranscriptService: it fetches manual and
// auto-generated subtitles as WebVTT and parses the best language match.
// Every failure maps to "unavailable" (empty transcript) at the call site.
func (c *Client) Transcript(ctx context.Context, video types.Video) ([]types.TranscriptUnit, error) {
	if err := c.fetchSubtitles(ctx, video.ID); err != nil {
		return nil, &types.FetchError{Op: "fetch subtitles", Err: err}
	}
	path := c.findSubtitleFile(video.ID)
	if path == "" {
		return nil, &types.FetchError{Op: "fetch subtitles", Err: fmt.Errorf("no subtitle file for %s", video.ID)}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &types.FetchError{Op: "read subtitles", Err: err}
	}
	defer f.Close()

	raw, err := transcript.ParseVTT(f)
	if err != nil {
		return nil, &types.FetchError{Op: "parse subtitles", Err: err}
	}
	return raw, nil
}

func (c *Client) fetchSubtitles(ctx context.Context, videoID string) error {
	template := filepath.Join(c.workDir, "%(id)s.%(ext)s")
	subLangs := make([]string, 0, len(c.langs))
	for _, l := range c.langs {
		subLangs = append(subLangs, l+".*")
	}
	cmd := exec.CommandContext(ctx, c.bin,
		"--ignore-config",
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", strings.Join(subLangs, ","),
		"--convert-subs", "vtt",
		"-o", template,
		watchURL(videoID),
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("yt-dlp subtitles: %w\n%s", err, string(out))
	}
	return nil
}

// findSubtitleFile picks the downloaded .vtt matching the preferred
// language order, falling back to any subtitle track for the video.
func (c *Client) findSubtitleFile(videoID string) string {
	patterns := make([]string, 0, len(c.langs)+1)
	for _, l := range c.langs {
		patterns = append(patterns, filepath.Join(c.workDir, videoID+"*."+l+"*.vtt"))
	}
	patterns = append(patterns, filepath.Join(c.workDir, videoID+"*.vtt"))

	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err == nil && len(matches) > 0 {
			return matches[0]
		}
	}
	return ""
}
