// Package phrase splits a section into phrases before any note is generated.
package phrase

import (
	"math/rand"

	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/util"
)

type ArcStage uint8

const (
	StagePresentation ArcStage = iota
	StageDevelopment
	StageClimax
	StageResolution
)

func (s ArcStage) String() string {
	switch s {
	case StageDevelopment:
		return "development"
	case StageClimax:
		return "climax"
	case StageResolution:
		return "resolution"
	}
	return "presentation"
}

type Params struct {
	// Bars per phrase, rounded up to whole chord spans.
	Bars int `yaml:"bars"`
	// BreathEighths is the silence left at the end of each phrase.
	BreathEighths int `yaml:"breath_eighths"`
	// Anticipation is the chance that a later phrase opens with a one beat rest.
	Anticipation float64 `yaml:"anticipation"`
}

var DefaultParams = Params{Bars: 2, BreathEighths: 1, Anticipation: 0.25}

// Phrase is [Start, End) of the section timeline. Notes are placed inside
// [NoteStart, NoteEnd).
type Phrase struct {
	Index        int
	Start        uint32
	End          uint32
	Bars         int
	Stage        ArcStage
	IsHook       bool
	Anticipation bool
	BreathTicks  uint32
}

func (p Phrase) NoteStart() uint32 {
	if p.Anticipation {
		return p.Start + constants.TicksPerBeat
	}
	return p.Start
}

func (p Phrase) NoteEnd() uint32 {
	return p.End - p.BreathTicks
}

// Beats is the length available for notes.
func (p Phrase) Beats() float64 {
	if p.NoteEnd() <= p.NoteStart() {
		return 0
	}
	return float64(p.NoteEnd()-p.NoteStart()) / constants.TicksPerBeat
}

// Plan lays phrases over the section. Phrase boundaries fall on chord changes
// of the given harmonic rhythm; the last phrase takes what is left.
func Plan(s model.Section, harmonicRhythm uint32, p Params, rng *rand.Rand) []Phrase {
	if s.Bars == 0 {
		return nil
	}
	spanBars := util.Max(int(harmonicRhythm/constants.TicksPerBar), 1)
	bars := util.Max(p.Bars, 1)
	if r := bars % spanBars; r != 0 {
		bars += spanBars - r
	}
	breath := uint32(util.Clamp(p.BreathEighths, 0, 4)) * constants.TickEighth

	var res []Phrase
	for at := 0; at < int(s.Bars); at += bars {
		n := util.Min(bars, int(s.Bars)-at)
		ph := Phrase{
			Index:       len(res),
			Start:       s.StartTick + uint32(at)*constants.TicksPerBar,
			Bars:        n,
			BreathTicks: breath,
		}
		ph.End = ph.Start + uint32(n)*constants.TicksPerBar
		if ph.Index > 0 && rng.Float64() < p.Anticipation {
			ph.Anticipation = true
		}
		// short phrases keep at least a beat for notes
		if ph.Beats() < 1 {
			ph.Anticipation = false
			ph.BreathTicks = 0
		}
		res = append(res, ph)
	}
	for i := range res {
		res[i].Stage = stageOf(i, len(res))
		res[i].IsHook = IsHookSlot(s.Type, i, len(res))
	}
	return res
}

func stageOf(i, n int) ArcStage {
	switch {
	case i == 0:
		return StagePresentation
	case i == n-1:
		return StageResolution
	case n >= 3 && i == util.Clamp(n*2/3, 1, n-2):
		return StageClimax
	}
	return StageDevelopment
}

// IsHookSlot is true for the first phrase of a chorus, and for the third one
// when the chorus has more than three.
func IsHookSlot(t model.SectionType, i, n int) bool {
	if t != model.SectionChorus {
		return false
	}
	return i == 0 || (i == 2 && n > 3)
}
