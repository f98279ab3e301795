package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "melodex",
	Short: "Generates singable vocal melodies",
	Long: `melodex writes songs whose vocal line is built phrase by phrase, kept clear
of every other track and picked from many scored candidates.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every generation step")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
