// Package preset holds the style tables melody generation reads from.
package preset

import (
	"errors"
	"fmt"

	"github.com/jsphweid/melodex/evaluate"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/phrase"
	"github.com/jsphweid/melodex/rhythm"
	"github.com/jsphweid/melodex/util"
)

var ErrUnknownPreset = errors.New("unknown preset")

// MelodyTemplate is the per-section shape of a vocal line.
type MelodyTemplate struct {
	// Tessitura as fractions of the vocal range, 0 being the bottom.
	TessituraLow  float64 `yaml:"tessitura_low"`
	TessituraHigh float64 `yaml:"tessitura_high"`

	PlateauRatio        float64 `yaml:"plateau_ratio"`
	MaxStep             int     `yaml:"max_step"`
	TargetProb          float64 `yaml:"target_prob"`
	PhraseEndResolution float64 `yaml:"phrase_end_resolution"`
	MotifFragmentProb   float64 `yaml:"motif_fragment_prob"`

	HookRepeatsMin    int `yaml:"hook_repeats_min"`
	HookRepeatsMax    int `yaml:"hook_repeats_max"`
	BetrayalThreshold int `yaml:"betrayal_threshold"`

	Rhythm rhythm.Params `yaml:"rhythm"`
	Phrase phrase.Params `yaml:"phrase"`
}

// TessituraRange maps the template's tessitura into [low, high].
func (t MelodyTemplate) TessituraRange(low, high int) (int, int) {
	span := float64(high - low)
	lo := low + int(span*util.Clamp(t.TessituraLow, 0, 1))
	hi := low + int(span*util.Clamp(t.TessituraHigh, 0, 1))
	if hi <= lo {
		return low, high
	}
	return lo, hi
}

type StyleMelodyParams struct {
	MaxLeap           int                  `yaml:"max_leap"`
	PreferStepwise    bool                 `yaml:"prefer_stepwise"`
	PreserveDirection bool                 `yaml:"preserve_direction"`
	Weights           evaluate.Weights     `yaml:"weights"`
	Bias              evaluate.BiasWeights `yaml:"bias"`
}

type Preset struct {
	Name        string            `yaml:"name"`
	Base        string            `yaml:"base,omitempty"`
	Mood        string            `yaml:"mood"`
	Progression []int             `yaml:"progression"`
	Style       StyleMelodyParams `yaml:"style"`
	// Templates are keyed by section name, "default" is the fallback.
	Templates map[string]MelodyTemplate `yaml:"templates"`
}

// TemplateFor returns the template of a section type.
func (p Preset) TemplateFor(t model.SectionType) MelodyTemplate {
	if tpl, ok := p.Templates[t.String()]; ok {
		return tpl
	}
	if tpl, ok := p.Templates["default"]; ok {
		return tpl
	}
	return defaultTemplate()
}

func (p Preset) MoodValue() model.Mood {
	m, _ := model.ParseMood(p.Mood)
	return m
}

func (p Preset) Clone() Preset {
	c := p
	c.Progression = append([]int(nil), p.Progression...)
	c.Templates = make(map[string]MelodyTemplate, len(p.Templates))
	for k, v := range p.Templates {
		c.Templates[k] = v
	}
	return c
}

// CandidateCount is how many whole-section candidates are generated per section.
func CandidateCount(t model.SectionType) int {
	switch t {
	case model.SectionChorus:
		return 100
	case model.SectionB:
		return 60
	case model.SectionA:
		return 50
	case model.SectionBridge:
		return 40
	}
	return 20
}

// Set is a collection of presets by name.
type Set map[string]Preset

func (s Set) Lookup(name string) (Preset, error) {
	p, ok := s[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return p.Clone(), nil
}

func (s Set) Names() []string {
	return util.GetKeys(s)
}
