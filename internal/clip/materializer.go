// Package clip renders one selected time window into a vertical output
// file, isolating every external-toolkit failure into the job's result.
package clip

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pramudya/trendcut/internal/ports"
	"github.com/pramudya/trendcut/internal/types"
)

type Materializer struct {
	tool    ports.VideoTool
	timeout time.Duration
	log     *logrus.Logger
}

func New(tool ports.VideoTool, timeout time.Duration, log *logrus.Logger) *Materializer {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(os.Stderr)
	}
	return &Materializer{tool: tool, timeout: timeout, log: log}
}

// Materialize drives exactly one toolkit invocation for the job and always
// returns a terminal ClipResult; it never panics the batch. The render
// writes to a temp path whose removal is deferred, so failure, timeout and
// cancellation all leave no partial file behind. The final path is claimed
// by rename only after the output verifies as non-empty.
func (m *Materializer) Materialize(ctx context.Context, job types.ClipJob) types.ClipResult {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	log := m.log.WithFields(logrus.Fields{
		"video_id": job.Video.ID,
		"clip":     job.Index,
	})

	info, err := m.tool.Probe(ctx, job.SourcePath)
	if err != nil {
		return m.failed(ctx, job, fmt.Errorf("probe source: %w", err))
	}
	if info.Width <= 0 || info.Height <= 0 {
		return m.failed(ctx, job, fmt.Errorf("probe source: no video stream dimensions"))
	}
	crop := CenterCrop916(info.Width, info.Height)

	finalPath, err := uniquePath(job.OutputPath)
	if err != nil {
		return m.failed(ctx, job, err)
	}
	tmpPath := filepath.Join(filepath.Dir(finalPath),
		fmt.Sprintf(".%s.%s.part", filepath.Base(finalPath), uuid.NewString()[:8]))
	// Removal is a no-op after a successful rename.
	defer os.Remove(tmpPath)

	log.WithFields(logrus.Fields{
		"start": job.Segment.Start,
		"end":   job.Segment.End,
	}).Info("rendering clip")

	err = m.tool.RenderVertical(ctx, job.SourcePath, job.Segment.Start, job.Segment.Dur(), crop, tmpPath)
	if err != nil {
		return m.failed(ctx, job, fmt.Errorf("render: %w", err))
	}

	st, err := os.Stat(tmpPath)
	if err != nil || st.Size() == 0 {
		return m.failed(ctx, job, fmt.Errorf("toolkit produced no readable output"))
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return m.failed(ctx, job, fmt.Errorf("finalize output: %w", err))
	}

	log.WithField("output", finalPath).Info("clip rendered")
	return types.ClipResult{Job: job, Status: types.StatusOK, OutputPath: finalPath}
}

// failed classifies the error, preferring the context verdict: a killed
// process reports "signal: killed" which would otherwise mask the timeout.
func (m *Materializer) failed(ctx context.Context, job types.ClipJob, err error) types.ClipResult {
	detail := err.Error()
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		detail = types.DetailTimeout
	case errors.Is(ctx.Err(), context.Canceled):
		detail = types.DetailCanceled
	}
	m.log.WithFields(logrus.Fields{
		"video_id": job.Video.ID,
		"clip":     job.Index,
		"detail":   detail,
	}).Warn("clip failed")
	return types.ClipResult{Job: job, Status: types.StatusFailed, ErrorDetail: detail}
}

// CenterCrop916 computes the horizontally centered 9:16 crop rectangle:
// crop width is min(srcW, srcH*9/16); when the source is narrower than
// 9:16 the height is cropped instead. Dimensions round down to even values
// for the encoder.
func CenterCrop916(srcW, srcH int) types.CropRect {
	cw := srcH * 9 / 16
	if cw > srcW {
		cw = srcW
	}
	ch := cw * 16 / 9
	if ch > srcH {
		ch = srcH
	}
	cw -= cw % 2
	ch -= ch % 2
	return types.CropRect{
		W: cw,
		H: ch,
		X: (srcW - cw) / 2,
		Y: (srcH - ch) / 2,
	}
}

// uniquePath returns path if free, otherwise probes numeric "-N" suffixes.
// Existing files are never silently overwritten.
func uniquePath(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path, nil
	}
	ext := filepath.Ext(path)
	stem := path[:len(path)-len(ext)]
	for i := 1; i <= 999; i++ {
		cand := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand, nil
		}
	}
	return "", fmt.Errorf("no free output path near %s", path)
}
