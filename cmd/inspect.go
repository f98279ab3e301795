package cmd

import (
	"fmt"

	"github.com/jsphweid/melodex/midi"
	"github.com/jsphweid/melodex/motif"
	"github.com/jsphweid/melodex/util"
	"github.com/spf13/cobra"
)

var inspectMax int

func init() {
	inspectCmd.Flags().IntVar(&inspectMax, "max", 0, "stop after this many files, 0 for all")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file or dir>",
	Short: "Prints the motif of midi files",
	Long:  `Prints the melody motif of every midi file under a path, as --motif-from would read it`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := util.GatherAllMidiPaths(args[0], inspectMax)
		if err != nil {
			return err
		}
		for _, path := range paths {
			inspect(path)
		}
		return nil
	},
}

func inspect(path string) {
	parsed, err := midi.ReadMidiFile(path)
	if err != nil {
		fmt.Printf("Skipping %v because: %v\n", path, err)
		return
	}
	notes := midi.ExtractNotes(parsed)
	gm := motif.ExtractGlobalMotif(notes)
	fmt.Printf("file: %v\n", path)
	fmt.Printf("notes: %v\n", len(notes))
	fmt.Printf("intervals: %v\n", gm.Intervals)
	fmt.Printf("rhythm: %v\n", gm.Rhythm)
	fmt.Printf("contour: %v\n", gm.Contour)
}
