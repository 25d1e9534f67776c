package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "trendcut",
		Short:        "Cut trending videos into vertical 9:16 clips",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrending(cmd)
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	flags := root.PersistentFlags()
	flags.String("out", "output", "Output directory")
	flags.Int("clips", 2, "Clips per video")
	flags.Int("concurrency", 2, "Parallel render workers")
	flags.Int("timeout", 120, "Per-clip render timeout seconds")
	flags.Bool("verbose", false, "Dump the full report")

	// Hidden tuning flags (internal)
	flags.Int("min", 15, "Min segment length seconds")
	flags.Int("max", 60, "Max segment length seconds")
	flags.Int("len", 30, "Default segment length seconds")
	_ = flags.MarkHidden("min")
	_ = flags.MarkHidden("max")
	_ = flags.MarkHidden("len")

	root.Flags().String("region", "", "Region code (default from YOUTUBE_REGION)")
	root.Flags().String("category", "", "Category id (default from YOUTUBE_CATEGORY_ID)")
	root.Flags().Int("top", 5, "Number of trending videos to clip")

	local := &cobra.Command{
		Use:   "local <file>...",
		Short: "Cut clips from already-downloaded files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocal(cmd, args)
		},
	}
	root.AddCommand(local)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
