package cmd

import (
	"fmt"

	"github.com/jsphweid/melodex/song"
	"github.com/jsphweid/melodex/util"
	"github.com/spf13/cobra"
)

var reportFlags songFlags

func init() {
	reportFlags.register(reportCmd)
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Creates a report",
	Long:  `Generates a song without writing it and prints how each section's vocal scores`,
	RunE: func(cmd *cobra.Command, args []string) error {
		presets, err := loadPresets()
		if err != nil {
			return err
		}
		cfg, err := reportFlags.config(cmd, presets)
		if err != nil {
			return err
		}
		s, err := song.Generate(cfg)
		if err != nil {
			return err
		}
		report(s)
		return nil
	},
}

func report(s *song.Song) {
	var styles []float64
	for _, r := range s.Report() {
		if r.Notes == 0 {
			fmt.Printf("%-10v no vocal\n", r.Section.Name)
			continue
		}
		fmt.Printf("%-10v notes: %3v style: %.3f culling: %.3f bias: %.3f\n", r.Section.Name, r.Notes, r.Style, r.Culling, r.Bias)
		styles = append(styles, r.Style)
	}
	fmt.Printf("preset: %v\n", s.Preset.Name)
	fmt.Printf("session: %v\n", s.Session.ID)
	fmt.Printf("avg style: %.3f\n", util.Mean(styles))
	if s.Session.GlobalMotif != nil {
		fmt.Printf("motif intervals: %v\n", s.Session.GlobalMotif.Intervals)
	}
}
