package song

import (
	"fmt"

	"github.com/jsphweid/melodex/harmony"
	"github.com/jsphweid/melodex/model"
)

// Strategy decides which track leads: the one generated first, which later
// tracks have to avoid.
type Strategy uint8

const (
	MelodyLead Strategy = iota
	BackgroundMotif
	SynthDriven
)

var strategyNames = [...]string{"melody-lead", "background-motif", "synth-driven"}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return "unknown"
}

func ParseStrategy(name string) (Strategy, error) {
	for i, n := range strategyNames {
		if n == name {
			return Strategy(i), nil
		}
	}
	return MelodyLead, fmt.Errorf("unknown strategy %q", name)
}

// Order is the generation order of the strategy's tracks. Bass always goes
// before the pad so low pad voices can be checked against it.
func (s Strategy) Order() []model.TrackRole {
	switch s {
	case BackgroundMotif:
		return []model.TrackRole{model.RoleBass, model.RoleChord, model.RoleMotif, model.RoleVocal}
	case SynthDriven:
		return []model.TrackRole{model.RoleBass, model.RoleChord, model.RoleArpeggio, model.RoleVocal}
	default:
		return []model.TrackRole{model.RoleVocal, model.RoleBass, model.RoleChord}
	}
}

// Apply sets the collision priorities of the strategy on the registry.
func (s Strategy) Apply(r *harmony.Registry) {
	switch s {
	case BackgroundMotif:
		r.SetPriority(model.RoleMotif, harmony.PriorityHighest)
		r.SetPriority(model.RoleVocal, harmony.PriorityMedium)
	case SynthDriven:
		r.SetPriority(model.RoleArpeggio, harmony.PriorityHighest)
		r.SetPriority(model.RoleVocal, harmony.PriorityMedium)
		r.SetPriority(model.RoleChord, harmony.PriorityLowest)
	default:
		r.SetPriority(model.RoleVocal, harmony.PriorityHighest)
	}
}
