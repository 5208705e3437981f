package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pixpress/internal/profile"
	"pixpress/internal/tui"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the encoder settings used for each kind of image",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for i, p := range profile.All() {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, tui.RenderSummary(string(p.Kind), profileRows(p)))
		}
	},
}

func profileRows(p profile.Profile) []tui.SummaryRow {
	webp := "quality " + strconv.Itoa(p.WebP.Quality)
	if p.WebP.Lossless {
		webp = "lossless"
	} else if p.WebP.NearLossless {
		webp += ", near-lossless"
	}
	avif := "quality " + strconv.Itoa(p.AVIF.Quality)
	if p.AVIF.Lossless {
		avif = "lossless"
	}

	return []tui.SummaryRow{
		{Label: "WebP", Value: webp},
		{Label: "WebP effort", Value: strconv.Itoa(p.WebP.Effort)},
		{Label: "WebP alpha quality", Value: strconv.Itoa(p.WebP.AlphaQuality)},
		{Label: "AVIF", Value: avif},
		{Label: "AVIF effort", Value: strconv.Itoa(p.AVIF.Effort)},
		{Label: "AVIF chroma", Value: p.AVIF.ChromaSubsampling},
	}
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
