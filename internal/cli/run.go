package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pramudya/trendcut/internal/config"
	"github.com/pramudya/trendcut/internal/pipeline"
	"github.com/pramudya/trendcut/internal/types"
)

func runTrending(cmd *cobra.Command) error {
	cfg := buildConfig(cmd)
	if region, _ := cmd.Flags().GetString("region"); region != "" {
		cfg.Region = region
	}
	if category, _ := cmd.Flags().GetString("category"); category != "" {
		cfg.Category = category
	}
	if top, _ := cmd.Flags().GetInt("top"); top > 0 {
		cfg.TopN = top
	}
	if cfg.APIKey == "" {
		return errors.New("YOUTUBE_API_KEY is required (set it in .env)")
	}

	ctx, cancel := signalContext()
	defer cancel()

	log := newLogger(cfg.Verbose)
	report, err := pipeline.Run(ctx, cfg, log)
	if err != nil {
		return err
	}
	dumpReport(cfg, report)
	return nil
}

func runLocal(cmd *cobra.Command, files []string) error {
	cfg := buildConfig(cmd)

	ctx, cancel := signalContext()
	defer cancel()

	log := newLogger(cfg.Verbose)
	report, err := pipeline.RunLocal(ctx, cfg, files, log)
	if err != nil {
		return err
	}
	dumpReport(cfg, report)
	return nil
}

func buildConfig(cmd *cobra.Command) config.Config {
	cfg := config.Default()
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		cfg.OutputDir = out
	}
	if clips, _ := cmd.Flags().GetInt("clips"); clips > 0 {
		cfg.ClipsPerVideo = clips
	}
	if workers, _ := cmd.Flags().GetInt("concurrency"); workers > 0 {
		cfg.MaxConcurrency = workers
	}
	if timeout, _ := cmd.Flags().GetInt("timeout"); timeout > 0 {
		cfg.PerJobTimeout = time.Duration(timeout) * time.Second
	}
	if min, _ := cmd.Flags().GetInt("min"); min > 0 {
		cfg.MinSegmentSec = float64(min)
	}
	if max, _ := cmd.Flags().GetInt("max"); max > 0 {
		cfg.MaxSegmentSec = float64(max)
	}
	if l, _ := cmd.Flags().GetInt("len"); l > 0 {
		cfg.DefaultSegmentSec = float64(l)
	}
	cfg.Verbose, _ = cmd.Flags().GetBool("verbose")
	return cfg
}

func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func dumpReport(cfg config.Config, report *types.Report) {
	if cfg.Verbose {
		pp.Println(report)
	}
}

// signalContext cancels the batch on Ctrl-C; in-flight renders get the
// terminate-and-cleanup path, queued jobs report canceled.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
