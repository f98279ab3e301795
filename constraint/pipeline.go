// Package constraint holds the ordered pitch rules applied to every proposed
// melody note, plus duration shaping.
package constraint

import (
	"math/rand"

	"github.com/jsphweid/melodex/chord"
	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/util"
)

// NoteContext is computed once per note and shared by every stage.
type NoteContext struct {
	// Prev is the previous pitch of the phrase, -1 for the first note.
	Prev int

	PrevDuration      uint32
	Tick              uint32
	ChordTones        []int
	Root              int
	Low               int
	High              int
	SectionType       model.SectionType
	PreferStepwise    bool
	IsDownbeat        bool
	PreserveDirection bool

	// LeapCeiling is the style's largest allowed leap, 0 for no limit.
	LeapCeiling int
}

func (c *NoteContext) hasPrev() bool {
	return c.Prev >= 0
}

// State is what the pipeline remembers between notes of one phrase.
type State struct {
	LeapRemaining int
	LeapDir       int
	PrevInterval  int
}

type StageFunc func(pitch int, c *NoteContext, s *State, rng *rand.Rand) int

type Stage struct {
	Name  string
	Apply StageFunc
}

// DefaultStages is the fixed order every melody note goes through.
var DefaultStages = []Stage{
	{"max-interval", ClampMaxInterval},
	{"leap-resolution", LeapResolution},
	{"leap-preparation", LeapPreparation},
	{"leap-encouragement", LeapEncouragement},
	{"avoid-notes", AvoidNotes},
	{"downbeat-chord-tone", DownbeatChordTone},
	{"leap-after-reversal", LeapAfterReversal},
	{"max-interval-recheck", ClampMaxInterval},
}

const (
	leapResolutionNotes = 3
	reversalLeap        = 4
	encourageLeap       = 4
	encourageChance     = 0.6
	recoverChance       = 0.8
)

// Pipeline runs the stages in order and keeps the per-phrase State.
type Pipeline struct {
	Stages []Stage
	State  State
}

func NewPipeline() *Pipeline {
	return &Pipeline{Stages: DefaultStages}
}

// Reset forgets the previous phrase.
func (p *Pipeline) Reset() {
	p.State = State{}
}

func (p *Pipeline) Apply(pitch int, c *NoteContext, rng *rand.Rand) int {
	for _, s := range p.Stages {
		pitch = s.Apply(pitch, c, &p.State, rng)
	}
	pitch = util.Clamp(pitch, c.Low, c.High)
	p.record(c.Prev, pitch)
	return pitch
}

func (p *Pipeline) record(prev, pitch int) {
	if prev < 0 {
		p.State.PrevInterval = 0
		return
	}
	mv := pitch - prev
	if util.Abs(mv) >= constants.LeapThreshold && p.State.LeapRemaining == 0 {
		p.State.LeapRemaining = leapResolutionNotes
		p.State.LeapDir = util.Sign(mv)
	}
	p.State.PrevInterval = mv
}

// EffectiveMaxInterval is the largest movement a section allows, bounded by
// the style's leap ceiling.
func EffectiveMaxInterval(t model.SectionType, ceiling int) int {
	limit := 7
	switch t {
	case model.SectionIntro, model.SectionInterlude, model.SectionOutro:
		limit = 5
	case model.SectionA, model.SectionMixBreak:
		limit = 7
	case model.SectionB:
		limit = 8
	case model.SectionChorus, model.SectionBridge:
		limit = 9
	case model.SectionChant:
		limit = 4
	case model.SectionDrop:
		limit = 12
	}
	if ceiling > 0 {
		limit = util.Min(limit, ceiling)
	}
	return util.Min(limit, constants.MaxMelodicInterval)
}

func recoverProbability(c *NoteContext) float64 {
	if c.PreferStepwise {
		return 1
	}
	return recoverChance
}

// ClampMaxInterval snaps a too-large movement to the nearest chord tone
// within reach of the previous pitch.
func ClampMaxInterval(pitch int, c *NoteContext, _ *State, _ *rand.Rand) int {
	if !c.hasPrev() {
		return pitch
	}
	limit := EffectiveMaxInterval(c.SectionType, c.LeapCeiling)
	if util.Abs(pitch-c.Prev) <= limit {
		return pitch
	}
	low := util.Max(c.Low, c.Prev-limit)
	high := util.Min(c.High, c.Prev+limit)
	if p, ok := chord.NearestTone(c.ChordTones, pitch, low, high); ok {
		return p
	}
	return util.Clamp(c.Prev+util.Sign(pitch-c.Prev)*limit, c.Low, c.High)
}

// oppositeStep finds the chord tone 1-3 semitones from the previous pitch
// against dir, closest to the previous pitch.
func oppositeStep(c *NoteContext, dir int) (int, bool) {
	return chord.NearestToneWhere(c.ChordTones, c.Prev, c.Low, c.High, func(p int) bool {
		d := (c.Prev - p) * dir
		return d >= 1 && d <= 3
	})
}

// LeapResolution steps back against the last leap for the three notes after it.
func LeapResolution(pitch int, c *NoteContext, s *State, rng *rand.Rand) int {
	if s.LeapRemaining == 0 || !c.hasPrev() {
		return pitch
	}
	s.LeapRemaining--
	if d := (c.Prev - pitch) * s.LeapDir; d >= 1 && d <= 3 {
		return pitch
	}
	if rng.Float64() >= recoverProbability(c) {
		return pitch
	}
	if p, ok := oppositeStep(c, s.LeapDir); ok {
		return p
	}
	return pitch
}

// LeapPreparation keeps leaps after very short notes within a fourth.
func LeapPreparation(pitch int, c *NoteContext, _ *State, _ *rand.Rand) int {
	if !c.hasPrev() || c.PrevDuration == 0 || c.PrevDuration >= constants.TickEighth {
		return pitch
	}
	if util.Abs(pitch-c.Prev) <= constants.LeapThreshold {
		return pitch
	}
	low := util.Max(c.Low, c.Prev-constants.LeapThreshold)
	high := util.Min(c.High, c.Prev+constants.LeapThreshold)
	if p, ok := chord.NearestTone(c.ChordTones, pitch, low, high); ok {
		return p
	}
	return util.Clamp(pitch, low, high)
}

// LeapEncouragement turns a small step after a long note into a chord-tone leap.
func LeapEncouragement(pitch int, c *NoteContext, _ *State, rng *rand.Rand) int {
	if !c.hasPrev() || c.PrevDuration < constants.TicksPerBeat {
		return pitch
	}
	if util.Abs(pitch-c.Prev) >= encourageLeap {
		return pitch
	}
	if rng.Float64() >= encourageChance {
		return pitch
	}
	limit := EffectiveMaxInterval(c.SectionType, c.LeapCeiling)
	var leaps []int
	for _, p := range chord.TonesInRange(c.ChordTones, c.Low, c.High) {
		if d := util.Abs(p - c.Prev); d >= encourageLeap && d <= limit {
			leaps = append(leaps, p)
		}
	}
	if len(leaps) == 0 {
		return pitch
	}
	return leaps[rng.Intn(len(leaps))]
}

// AvoidNotes replaces a minor 2nd against the chord, or a tritone against its
// root, with the nearest chord tone.
func AvoidNotes(pitch int, c *NoteContext, _ *State, _ *rand.Rand) int {
	if !chord.IsAvoidNote(pitch, c.ChordTones, c.Root) {
		return pitch
	}
	if p, ok := chord.NearestTone(c.ChordTones, pitch, c.Low, c.High); ok {
		return p
	}
	return pitch
}

// DownbeatChordTone puts a chord tone on beat 1, keeping the direction from
// the previous pitch when PreserveDirection is set.
func DownbeatChordTone(pitch int, c *NoteContext, _ *State, _ *rand.Rand) int {
	if !c.IsDownbeat || chord.Contains(c.ChordTones, pitch) {
		return pitch
	}
	if c.PreserveDirection && c.hasPrev() && pitch != c.Prev {
		dir := util.Sign(pitch - c.Prev)
		if p, ok := chord.NearestToneWhere(c.ChordTones, pitch, c.Low, c.High, func(p int) bool {
			return util.Sign(p-c.Prev) == dir
		}); ok {
			return p
		}
	}
	if p, ok := chord.NearestTone(c.ChordTones, pitch, c.Low, c.High); ok {
		return p
	}
	return pitch
}

// LeapAfterReversal steps back after a leap of a third or more when the melody
// would keep going the same way.
func LeapAfterReversal(pitch int, c *NoteContext, s *State, rng *rand.Rand) int {
	if !c.hasPrev() || util.Abs(s.PrevInterval) < reversalLeap {
		return pitch
	}
	dir := util.Sign(s.PrevInterval)
	if util.Sign(pitch-c.Prev) != dir {
		return pitch
	}
	if rng.Float64() >= recoverProbability(c) {
		return pitch
	}
	if p, ok := oppositeStep(c, dir); ok {
		return p
	}
	return pitch
}
