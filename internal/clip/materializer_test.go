package clip

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pramudya/trendcut/internal/types"
)

// fakeTool writes outPath itself so the materializer's rename/cleanup
// logic runs against real files.
type fakeTool struct {
	info      types.VideoInfo
	renderErr error
	// blockOnCtx makes RenderVertical hang until the context expires,
	// simulating a stuck external process.
	blockOnCtx bool
	payload    []byte

	renderCalls int
	lastCrop    types.CropRect
}

func (f *fakeTool) Probe(context.Context, string) (types.VideoInfo, error) {
	return f.info, nil
}

func (f *fakeTool) RenderVertical(ctx context.Context, _ string, _, _ float64, crop types.CropRect, outPath string) error {
	f.renderCalls++
	f.lastCrop = crop
	if f.blockOnCtx {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.renderErr != nil {
		return f.renderErr
	}
	return os.WriteFile(outPath, f.payload, 0o644)
}

func testJob(t *testing.T, outDir string) types.ClipJob {
	t.Helper()
	return types.ClipJob{
		Video:      types.Video{ID: "vid123", DurationSec: 90},
		Segment:    types.Segment{Start: 10, End: 40, Source: types.SourceHook},
		Index:      1,
		SourcePath: filepath.Join(outDir, "source.mp4"),
		Aspect:     "9:16",
		OutputPath: filepath.Join(outDir, "vid123_01.mp4"),
	}
}

func TestMaterialize_Success(t *testing.T) {
	tmp := t.TempDir()
	tool := &fakeTool{info: types.VideoInfo{Width: 1920, Height: 1080}, payload: []byte("clip")}
	m := New(tool, time.Minute, nil)

	res := m.Materialize(context.Background(), testJob(t, tmp))
	if res.Status != types.StatusOK {
		t.Fatalf("expected OK, got %s (%s)", res.Status, res.ErrorDetail)
	}
	if res.OutputPath != filepath.Join(tmp, "vid123_01.mp4") {
		t.Fatalf("unexpected output path: %s", res.OutputPath)
	}
	if _, err := os.Stat(res.OutputPath); err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if tool.renderCalls != 1 {
		t.Fatalf("expected exactly one toolkit invocation, got %d", tool.renderCalls)
	}
	assertNoTempFiles(t, tmp)
}

func TestMaterialize_ComputesCenterCrop(t *testing.T) {
	tmp := t.TempDir()
	tool := &fakeTool{info: types.VideoInfo{Width: 1920, Height: 1080}, payload: []byte("x")}
	m := New(tool, time.Minute, nil)

	if res := m.Materialize(context.Background(), testJob(t, tmp)); res.Status != types.StatusOK {
		t.Fatalf("materialize failed: %s", res.ErrorDetail)
	}
	want := types.CropRect{W: 606, H: 1078, X: 657, Y: 1}
	if tool.lastCrop != want {
		t.Fatalf("crop = %+v, want %+v", tool.lastCrop, want)
	}
}

func TestMaterialize_NeverOverwrites(t *testing.T) {
	tmp := t.TempDir()
	existing := filepath.Join(tmp, "vid123_01.mp4")
	if err := os.WriteFile(existing, []byte("old"), 0o644); err != nil {
		t.Fatalf("seed existing file: %v", err)
	}

	tool := &fakeTool{info: types.VideoInfo{Width: 720, Height: 1280}, payload: []byte("new")}
	m := New(tool, time.Minute, nil)

	res := m.Materialize(context.Background(), testJob(t, tmp))
	if res.Status != types.StatusOK {
		t.Fatalf("materialize failed: %s", res.ErrorDetail)
	}
	if res.OutputPath == existing {
		t.Fatalf("existing output was claimed: %s", res.OutputPath)
	}
	b, err := os.ReadFile(existing)
	if err != nil || string(b) != "old" {
		t.Fatalf("pre-existing file modified: %q %v", b, err)
	}
	if filepath.Base(res.OutputPath) != "vid123_01-1.mp4" {
		t.Fatalf("unexpected fresh path: %s", res.OutputPath)
	}
}

func TestMaterialize_ToolkitFailureIsolated(t *testing.T) {
	tmp := t.TempDir()
	tool := &fakeTool{
		info:      types.VideoInfo{Width: 1280, Height: 720},
		renderErr: errors.New("exit status 1"),
	}
	m := New(tool, time.Minute, nil)

	res := m.Materialize(context.Background(), testJob(t, tmp))
	if res.Status != types.StatusFailed {
		t.Fatalf("expected FAILED, got %s", res.Status)
	}
	if res.ErrorDetail == "" {
		t.Fatalf("expected error detail")
	}
	if _, err := os.Stat(filepath.Join(tmp, "vid123_01.mp4")); !os.IsNotExist(err) {
		t.Fatalf("failed job must not leave an output file")
	}
	assertNoTempFiles(t, tmp)
}

func TestMaterialize_TimeoutKillsAndCleans(t *testing.T) {
	tmp := t.TempDir()
	tool := &fakeTool{info: types.VideoInfo{Width: 1280, Height: 720}, blockOnCtx: true}
	m := New(tool, 50*time.Millisecond, nil)

	res := m.Materialize(context.Background(), testJob(t, tmp))
	if res.Status != types.StatusFailed {
		t.Fatalf("expected FAILED, got %s", res.Status)
	}
	if res.ErrorDetail != types.DetailTimeout {
		t.Fatalf("expected %q detail, got %q", types.DetailTimeout, res.ErrorDetail)
	}
	if _, err := os.Stat(filepath.Join(tmp, "vid123_01.mp4")); !os.IsNotExist(err) {
		t.Fatalf("timed-out job must not leave a partial output file")
	}
	assertNoTempFiles(t, tmp)
}

func TestMaterialize_CancellationReported(t *testing.T) {
	tmp := t.TempDir()
	tool := &fakeTool{info: types.VideoInfo{Width: 1280, Height: 720}, blockOnCtx: true}
	m := New(tool, time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	res := m.Materialize(ctx, testJob(t, tmp))
	if res.Status != types.StatusFailed || res.ErrorDetail != types.DetailCanceled {
		t.Fatalf("expected canceled failure, got %s (%s)", res.Status, res.ErrorDetail)
	}
	assertNoTempFiles(t, tmp)
}

func TestMaterialize_EmptyOutputIsFailure(t *testing.T) {
	tmp := t.TempDir()
	tool := &fakeTool{info: types.VideoInfo{Width: 1280, Height: 720}, payload: nil}
	m := New(tool, time.Minute, nil)

	res := m.Materialize(context.Background(), testJob(t, tmp))
	if res.Status != types.StatusFailed {
		t.Fatalf("zero-byte toolkit output must fail, got %s", res.Status)
	}
	assertNoTempFiles(t, tmp)
}

func TestCenterCrop916_Table(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		want types.CropRect
	}{
		{"landscape 1080p", 1920, 1080, types.CropRect{W: 606, H: 1078, X: 657, Y: 1}},
		{"already vertical", 720, 1280, types.CropRect{W: 720, H: 1280, X: 0, Y: 0}},
		{"square", 1000, 1000, types.CropRect{W: 562, H: 998, X: 219, Y: 1}},
		{"narrower than 9:16", 400, 1280, types.CropRect{W: 400, H: 710, X: 0, Y: 285}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CenterCrop916(tt.w, tt.h)
			if got != tt.want {
				t.Fatalf("CenterCrop916(%d,%d) = %+v, want %+v", tt.w, tt.h, got, tt.want)
			}
		})
	}
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".*.part"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("temp files left behind: %v", matches)
	}
}
