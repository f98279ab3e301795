package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jsphweid/melodex/melody"
	"github.com/jsphweid/melodex/midi"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/motif"
	"github.com/jsphweid/melodex/sample"
	"github.com/jsphweid/melodex/song"
	"github.com/jsphweid/melodex/util"
	"github.com/spf13/cobra"
)

var genFlags songFlags
var sessionPath, motifFrom, onlySection string

func init() {
	genFlags.register(generateCmd)
	generateCmd.Flags().StringVar(&sessionPath, "session", "", "session snapshot to reuse and update")
	generateCmd.Flags().StringVar(&motifFrom, "motif-from", "", "midi file whose melody seeds the song motif")
	generateCmd.Flags().StringVar(&onlySection, "section", "", "only write the first section of this type")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generates a song",
	Long:  `Generates a song and writes it to the output dir as a midi file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		presets, err := loadPresets()
		if err != nil {
			return err
		}
		cfg, err := genFlags.config(cmd, presets)
		if err != nil {
			return err
		}
		path, s, err := GenerateFile(GenerateOptions{
			Config:      cfg,
			SessionPath: sessionPath,
			MotifFrom:   motifFrom,
			Section:     onlySection,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %v (seed %v, %v sections, session %v)\n", path, cfg.Seed, len(s.Sections), s.Session.ID)
		return nil
	},
}

type GenerateOptions struct {
	Config song.Config
	// SessionPath is loaded when it exists and written after generation.
	SessionPath string
	MotifFrom   string
	Section     string
}

// GenerateFile generates a song and writes it to the output dir.
func GenerateFile(opts GenerateOptions) (string, *song.Song, error) {
	cfg := opts.Config
	if opts.SessionPath != "" {
		s, err := melody.LoadSession(opts.SessionPath)
		switch {
		case err == nil:
			cfg.Session = s
		case !errors.Is(err, fs.ErrNotExist):
			return "", nil, err
		}
	}
	if opts.MotifFrom != "" {
		gm, err := motifFromFile(opts.MotifFrom)
		if err != nil {
			return "", nil, err
		}
		if cfg.Session == nil {
			cfg.Session = melody.NewSession()
		}
		cfg.Session.GlobalMotif = &gm
	}

	s, err := song.Generate(cfg)
	if err != nil {
		return "", nil, err
	}

	tracks := s.Tracks
	if opts.Section != "" {
		sec, err := findSection(s.Sections, opts.Section)
		if err != nil {
			return "", nil, err
		}
		tracks = sample.Section(tracks, sec)
	}

	dir, err := util.EnsureOutputDir()
	if err != nil {
		return "", nil, err
	}
	path := filepath.Join(dir, uuid.NewString()+".mid")
	if err := midi.WriteFile(path, tracks, s.BPM); err != nil {
		return "", nil, err
	}
	if opts.SessionPath != "" {
		if err := s.Session.Save(opts.SessionPath); err != nil {
			return "", nil, err
		}
	}
	return path, s, nil
}

func findSection(sections []model.Section, name string) (model.Section, error) {
	t, ok := model.ParseSectionType(name)
	if !ok {
		return model.Section{}, fmt.Errorf("unknown section type %q", name)
	}
	for _, s := range sections {
		if s.Type == t {
			return s, nil
		}
	}
	return model.Section{}, fmt.Errorf("the form has no %v section", name)
}

func motifFromFile(path string) (motif.GlobalMotif, error) {
	parsed, err := midi.ReadMidiFile(path)
	if err != nil {
		return motif.GlobalMotif{}, err
	}
	notes := midi.ExtractNotes(parsed)
	if len(notes) < 2 {
		return motif.GlobalMotif{}, fmt.Errorf("%v has fewer than 2 melody notes", path)
	}
	return motif.ExtractGlobalMotif(notes), nil
}
