package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pixpress/internal/codec"
	"pixpress/internal/config"
	"pixpress/internal/logging"
	"pixpress/internal/processor"
	"pixpress/internal/report"
	"pixpress/internal/tui"
)

var (
	configPath string
	logFile    string
	colorMode  string
	verbose    bool
	workers    int

	showTUI    bool
	reportPath string
)

var rootCmd = &cobra.Command{
	Use:   "pixpress [path] [format]",
	Short: "pixpress - batch convert images to WebP and AVIF",
	Long: `pixpress converts JPEG, PNG and TIFF images to WebP and/or AVIF next to the
originals, choosing encoder settings per image (photo, graphic or screenshot).

  pixpress                    convert public/images to both formats
  pixpress webp               convert public/images to WebP only
  pixpress ./assets           convert ./assets to both formats
  pixpress ./hero.png avif    convert one file to AVIF

A bare argument that names a subcommand (probe, profiles, watch) or a format
(webp, avif, both) is read as that word. Write a directory with those names
as a path instead, e.g. ./probe or ./webp.`,
	Args:          cobra.MaximumNArgs(2),
	SilenceErrors: true,
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

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		started := time.Now()
		engine := processor.NewEngine(run, codec.New(), log)
		stats, err := runEngine(ctx, engine, log)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), tui.RenderSummary("Summary", processor.Summarize(stats, run.Formats)))

		if reportPath != "" {
			if err := report.Write(reportPath, report.New(run, stats, started, time.Now())); err != nil {
				return err
			}
			log.Info("Report written to %s", reportPath)
		}
		return nil
	},
}

// programOptions are passed to the progress view; tests swap the terminal out.
var programOptions []tea.ProgramOption

// runEngine runs the conversion, behind the progress view when --tui is set.
// Quitting the view with Ctrl+C cancels the run. If the view cannot start,
// the run continues with log output.
func runEngine(ctx context.Context, engine *processor.Engine, log *logging.Logger) (processor.Stats, error) {
	if !showTUI {
		return engine.Run(ctx, nil)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	restore := log.Quiet(io.Discard)
	defer restore()

	updates := make(chan processor.ProgressUpdate, 64)
	program := tea.NewProgram(tui.NewModel(updates), programOptions...)

	uiDone := make(chan struct{})
	go func() {
		defer close(uiDone)
		final, err := program.Run()
		switch {
		case errors.Is(err, tea.ErrInterrupted), errors.Is(err, tea.ErrProgramKilled):
			cancel()
		case err != nil:
			restore()
			log.Warn("Progress view unavailable, falling back to log output: %v", err)
		default:
			if m, ok := final.(tui.Model); ok && m.Interrupted() {
				cancel()
			}
		}
	}()

	// Once the view is gone nothing reads updates, so keep draining them.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-uiDone
		for range updates {
		}
	}()

	stats, err := engine.Run(ctx, updates)
	close(updates)
	<-drained
	return stats, err
}

// resolveRun merges the config file, flags and positional arguments.
func resolveRun(cmd *cobra.Command, args []string) (config.Run, error) {
	file := config.Defaults()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return config.Run{}, err
		}
		file = *loaded
	}
	if cmd.Flags().Changed("workers") {
		file.Workers = workers
	}

	target, err := config.ResolveArgs(args, file.InputDir)
	if err != nil {
		return config.Run{}, err
	}
	return config.NewRun(target, file)
}

func newLogger(cmd *cobra.Command) (*logging.Logger, error) {
	mode, err := logging.ParseColorMode(colorMode)
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Out:     cmd.OutOrStdout(),
		Err:     cmd.ErrOrStderr(),
		Color:   mode,
		LogFile: logFile,
		Verbose: verbose,
	})
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML config file (input_dir, exclude, extensions, workers)")
	pf.StringVar(&logFile, "log-file", "", "also append log lines to this file")
	pf.StringVar(&colorMode, "color", "auto", "colorize output: auto, always or never")
	pf.BoolVarP(&verbose, "verbose", "v", false, "print debug detail")
	pf.IntVarP(&workers, "workers", "w", 1, "number of files converted in parallel")

	rootCmd.Flags().BoolVar(&showTUI, "tui", false, "show a live progress view instead of log lines")
	rootCmd.Flags().StringVar(&reportPath, "report", "", "write a YAML run report to this file")
}
