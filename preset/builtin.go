package preset

import (
	"github.com/jsphweid/melodex/evaluate"
	"github.com/jsphweid/melodex/phrase"
	"github.com/jsphweid/melodex/rhythm"
)

func defaultTemplate() MelodyTemplate {
	return MelodyTemplate{
		TessituraLow:        0.2,
		TessituraHigh:       0.75,
		PlateauRatio:        0.2,
		MaxStep:             2,
		TargetProb:          0.2,
		PhraseEndResolution: 0.8,
		MotifFragmentProb:   0.15,
		HookRepeatsMin:      2,
		HookRepeatsMax:      3,
		BetrayalThreshold:   2,
		Rhythm:              rhythm.Params{Density: 0.55, Syncopation: 0.3, Grid: rhythm.GridBinary, LongEnding: true},
		Phrase:              phrase.DefaultParams,
	}
}

func standard() Preset {
	chorus := defaultTemplate()
	chorus.TessituraLow, chorus.TessituraHigh = 0.4, 0.95
	chorus.Rhythm.Density = 0.65
	chorus.HookRepeatsMax = 4
	chorus.Phrase.Bars = 4

	b := defaultTemplate()
	b.TessituraLow, b.TessituraHigh = 0.3, 0.8
	b.TargetProb = 0.35

	intro := defaultTemplate()
	intro.Rhythm.Density = 0.35
	intro.Phrase.Bars = 4

	return Preset{
		Name:        "standard",
		Mood:        "straight-pop",
		Progression: []int{0, 4, 5, 3},
		Style: StyleMelodyParams{
			MaxLeap:           9,
			PreserveDirection: true,
			Weights:           evaluate.Weights{Singability: 0.3, ChordTone: 0.25, Contour: 0.2, Surprise: 0.1, Repetition: 0.15},
			Bias:              evaluate.BiasWeights{Stepwise: 0.6, Register: 0.5, Sustain: 0.3},
		},
		Templates: map[string]MelodyTemplate{
			"default": defaultTemplate(),
			"chorus":  chorus,
			"b":       b,
			"intro":   intro,
			"outro":   intro,
		},
	}
}

func ballad() Preset {
	p := standard()
	p.Name = "ballad"
	p.Mood = "ballad"
	p.Progression = []int{0, 5, 3, 4}
	p.Style.MaxLeap = 7
	p.Style.PreferStepwise = true
	p.Style.Weights = evaluate.Weights{Singability: 0.35, ChordTone: 0.25, Contour: 0.25, Surprise: 0.05, Repetition: 0.1}
	p.Style.Bias = evaluate.BiasWeights{Stepwise: 0.75, Register: 0.45, Sustain: 0.55}
	for k, t := range p.Templates {
		t.Rhythm.Density -= 0.15
		t.Phrase.BreathEighths = 2
		p.Templates[k] = t
	}
	return p
}

func dance() Preset {
	p := standard()
	p.Name = "dance"
	p.Mood = "energetic-dance"
	p.Progression = []int{5, 3, 0, 4}
	p.Style.Weights = evaluate.Weights{Singability: 0.2, ChordTone: 0.2, Contour: 0.15, Surprise: 0.15, Repetition: 0.3}
	p.Style.Bias = evaluate.BiasWeights{Stepwise: 0.5, Register: 0.6, Sustain: 0.15}
	for k, t := range p.Templates {
		t.Rhythm.Density += 0.15
		t.Rhythm.Syncopation = 0.6
		t.PlateauRatio = 0.35
		p.Templates[k] = t
	}
	return p
}

func anthem() Preset {
	p := standard()
	p.Name = "anthem"
	p.Mood = "dramatic"
	p.Progression = []int{0, 3, 5, 4}
	p.Style.MaxLeap = 12
	p.Style.Weights.Surprise = 0.2
	p.Style.Bias = evaluate.BiasWeights{Stepwise: 0.5, Register: 0.7, Sustain: 0.4}
	chorus := p.Templates["chorus"]
	chorus.TessituraLow, chorus.TessituraHigh = 0.5, 1
	chorus.Rhythm.Grid = rhythm.GridShuffle
	p.Templates["chorus"] = chorus
	return p
}

// Builtin returns the presets shipped with the binary.
func Builtin() Set {
	s := Set{}
	for _, p := range []Preset{standard(), ballad(), dance(), anthem()} {
		s[p.Name] = p
	}
	return s
}
