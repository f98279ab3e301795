package song

import (
	"fmt"

	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/melody"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/preset"
)

// Config is everything a song is generated from.
type Config struct {
	// Key is the tonic pitch class, 0 = C.
	Key       int
	VocalLow  int
	VocalHigh int
	Preset    string
	// Presets defaults to the built-in set.
	Presets  preset.Set
	Seed     int64
	BPM      float64
	Form     []model.SectionType
	Bars     []uint8
	Strategy Strategy
	// Candidates per section, 0 uses the default count of each section type.
	Candidates int
	// Session carries hook and motif from an earlier run. nil starts fresh.
	Session *melody.Session
}

var DefaultForm = []model.SectionType{
	model.SectionIntro,
	model.SectionA, model.SectionB, model.SectionChorus,
	model.SectionA, model.SectionB, model.SectionChorus,
	model.SectionBridge, model.SectionChorus,
	model.SectionOutro,
}

func DefaultConfig() Config {
	return Config{
		VocalLow:  constants.DefaultVocalLow,
		VocalHigh: constants.DefaultVocalHigh,
		Preset:    "standard",
		BPM:       constants.DefaultBPM,
		Form:      DefaultForm,
	}
}

// Sections lays the form out. Intro, interlude and outro have no vocal. A
// missing bar count means 8 bars, or 4 for the instrumental sections.
func (c Config) Sections() []model.Section {
	bars := make([]uint8, len(c.Form))
	for i, t := range c.Form {
		switch {
		case i < len(c.Bars):
			bars[i] = c.Bars[i]
		case isInstrumental(t):
			bars[i] = 4
		default:
			bars[i] = 8
		}
	}
	sections := model.BuildSections(c.Form, bars, model.AllTracks)
	for i := range sections {
		if isInstrumental(sections[i].Type) {
			sections[i].TrackMask &^= model.MaskOf(model.RoleVocal)
		}
	}
	return sections
}

func isInstrumental(t model.SectionType) bool {
	return t == model.SectionIntro || t == model.SectionInterlude || t == model.SectionOutro
}

func (c Config) validate() error {
	if c.VocalLow < constants.MinMidiPitch || c.VocalHigh > constants.MaxMidiPitch || c.VocalHigh-c.VocalLow < 12 {
		return fmt.Errorf("vocal range %d-%d must span at least an octave", c.VocalLow, c.VocalHigh)
	}
	if c.Key < 0 || c.Key > 11 {
		return fmt.Errorf("key %d is not a pitch class", c.Key)
	}
	if c.BPM <= 0 {
		return fmt.Errorf("bpm must be positive, got %v", c.BPM)
	}
	return nil
}

// shift is the transposition from C to the key, kept within a tritone.
func (c Config) shift() int {
	if c.Key > 6 {
		return c.Key - 12
	}
	return c.Key
}

var keyNames = map[string]int{
	"C": 0, "C#": 1, "Db": 1, "D": 2, "D#": 3, "Eb": 3, "E": 4, "F": 5,
	"F#": 6, "Gb": 6, "G": 7, "G#": 8, "Ab": 8, "A": 9, "A#": 10, "Bb": 10, "B": 11,
}

// ParseKey reads a major key name such as "Eb" or "F#".
func ParseKey(name string) (int, error) {
	k, ok := keyNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown key %q", name)
	}
	return k, nil
}
