package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/preset"
	"github.com/jsphweid/melodex/song"
	"github.com/spf13/cobra"
)

// songFlags are shared by every command that generates a song.
type songFlags struct {
	seed       int64
	preset     string
	key        string
	strategy   string
	form       string
	bpm        float64
	low        int
	high       int
	candidates int
}

func (f *songFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Int64Var(&f.seed, "seed", 0, "random seed, defaults to the current time")
	fs.StringVar(&f.preset, "preset", "standard", "preset name")
	fs.StringVar(&f.key, "key", "C", "major key, e.g. Eb")
	fs.StringVar(&f.strategy, "strategy", song.MelodyLead.String(), "melody-lead, background-motif or synth-driven")
	fs.StringVar(&f.form, "form", "", "comma separated section types, e.g. intro,a,b,chorus")
	fs.Float64Var(&f.bpm, "bpm", constants.DefaultBPM, "tempo of the written file")
	fs.IntVar(&f.low, "low", constants.DefaultVocalLow, "lowest vocal pitch")
	fs.IntVar(&f.high, "high", constants.DefaultVocalHigh, "highest vocal pitch")
	fs.IntVar(&f.candidates, "candidates", 0, "candidates per section, 0 uses the defaults")
}

func (f *songFlags) config(cmd *cobra.Command, presets preset.Set) (song.Config, error) {
	cfg := song.DefaultConfig()
	cfg.Presets = presets
	cfg.Preset = f.preset
	cfg.BPM = f.bpm
	cfg.VocalLow, cfg.VocalHigh = f.low, f.high
	cfg.Candidates = f.candidates

	cfg.Seed = f.seed
	if !cmd.Flags().Changed("seed") {
		cfg.Seed = time.Now().UnixNano()
	}
	key, err := song.ParseKey(f.key)
	if err != nil {
		return cfg, err
	}
	cfg.Key = key
	if cfg.Strategy, err = song.ParseStrategy(f.strategy); err != nil {
		return cfg, err
	}
	if f.form != "" {
		if cfg.Form, err = parseForm(f.form); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func parseForm(s string) ([]model.SectionType, error) {
	var res []model.SectionType
	for _, name := range strings.Split(s, ",") {
		t, ok := model.ParseSectionType(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown section type %q", name)
		}
		res = append(res, t)
	}
	return res, nil
}

// loadPresets reads PRESET_PATH on top of the built-ins, if it is set.
func loadPresets() (preset.Set, error) {
	path := constants.GetPresetPath()
	if path == "" {
		return preset.Builtin(), nil
	}
	return preset.LoadFile(path)
}
