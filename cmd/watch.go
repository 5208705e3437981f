package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pixpress/internal/codec"
	"pixpress/internal/processor"
	"pixpress/internal/tui"
	"pixpress/internal/watch"
)

var watchSettle time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [dir] [format]",
	Short: "Convert images as they are added or changed, until interrupted",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := resolveRun(cmd, args)
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true

		log, err := newLogger(cmd)
		if err != nil {
			return err
		}
		defer log.Close()

		w, err := watch.New(run, processor.NewEngine(run, codec.New(), log), log, watchSettle)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		stats, err := w.Run(ctx, nil)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tui.RenderSummary("Summary", processor.Summarize(stats, run.Formats)))
		return nil
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchSettle, "settle", watch.DefaultSettle, "how long a file must be unchanged before it is converted")
	rootCmd.AddCommand(watchCmd)
}
