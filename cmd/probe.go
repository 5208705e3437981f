package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"pixpress/internal/codec"
	"pixpress/internal/display"
	"pixpress/internal/processor"
	"pixpress/internal/profile"
	"pixpress/internal/tui"
)

var probeCmd = &cobra.Command{
	Use:   "probe [path]",
	Short: "Show each image's metadata and chosen profile without converting",
	Args:  cobra.MaximumNArgs(1),
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

		engine := processor.NewEngine(run, codec.New(), log)
		files, err := engine.Files()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		counts := map[profile.Kind]int{}
		failed := 0
		for i, path := range files {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, probeFileStyle.Render(display.RelPath(path)))

			meta, kind, err := engine.Probe(path)
			if err != nil {
				failed++
				fmt.Fprintf(out, "  %s %s\n", probeBulletStyle.Render("-"), probeErrStyle.Render(err.Error()))
				continue
			}
			counts[kind]++
			probeField(out, "profile", string(kind))
			probeField(out, "format", meta.Kind.String())
			probeField(out, "size", fmt.Sprintf("%dx%d", meta.Width, meta.Height))
			probeField(out, "alpha", yesNo(meta.HasAlpha))
			if meta.HasExif {
				camera := meta.Camera
				if camera == "" {
					camera = "present"
				}
				probeField(out, "exif", camera)
			}
		}

		rows := []tui.SummaryRow{{Label: "Files", Value: fmt.Sprintf("%d", len(files))}}
		for _, p := range profile.All() {
			rows = append(rows, tui.SummaryRow{Label: string(p.Kind), Value: fmt.Sprintf("%d", counts[p.Kind])})
		}
		rows = append(rows, tui.SummaryRow{Label: "Unreadable", Value: fmt.Sprintf("%d", failed)})
		fmt.Fprintln(out)
		fmt.Fprintln(out, tui.RenderSummary("Probe", rows))
		return nil
	},
}

func probeField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %s %s %s\n",
		probeBulletStyle.Render("-"),
		probeLabelStyle.Render(label+":"),
		probeValueStyle.Render(value),
	)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

var (
	probeFileStyle   = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	probeLabelStyle  = lipgloss.NewStyle().Foreground(tui.ColorAccentAlt)
	probeValueStyle  = lipgloss.NewStyle().Foreground(tui.ColorInk)
	probeErrStyle    = lipgloss.NewStyle().Foreground(tui.ColorError)
	probeBulletStyle = lipgloss.NewStyle().Foreground(tui.ColorDim)
)

func init() {
	rootCmd.AddCommand(probeCmd)
}
