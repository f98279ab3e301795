package constraint

import (
	"math"

	"github.com/jsphweid/melodex/chord"
	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/util"
)

// GateContext describes how a note connects to the one after it.
type GateContext struct {
	IsPhraseEnd bool
	HasNext     bool
	// Interval to the next note in semitones.
	Interval int
}

const phraseEndGate = 0.9

// GateRatio is the share of the rhythmic slot the note actually sounds.
func GateRatio(g GateContext) float64 {
	if g.IsPhraseEnd || !g.HasNext {
		return phraseEndGate
	}
	switch iv := util.Abs(g.Interval); {
	case iv == 0:
		return 1
	case iv <= 2:
		return 0.98
	case iv <= 4:
		return 0.96
	case iv <= 6:
		return 0.94
	}
	return 0.92
}

// ShapeDuration applies the gate. Phrase-end notes never get shorter than a
// quarter note.
func ShapeDuration(duration uint32, g GateContext) uint32 {
	d := uint32(math.Round(float64(duration) * GateRatio(g)))
	if g.IsPhraseEnd {
		d = util.Max(d, constants.TickQuarter)
	}
	return util.Max(d, 1)
}

// BoundaryAnalyzer is satisfied by chord.Timeline and harmony.Harmony.
type BoundaryAnalyzer interface {
	AnalyzeBoundary(pitch int, start, duration uint32) chord.Boundary
}

// ClampToBoundary stops a note at limit and at a chord change that would turn
// it into an avoid note. A zero limit means no phrase limit.
func ClampToBoundary(b BoundaryAnalyzer, pitch int, start, duration, limit uint32) uint32 {
	if limit > start && start+duration > limit {
		duration = limit - start
	}
	return b.AnalyzeBoundary(pitch, start, duration).SafeDuration
}

// IsAppoggiatura reports a diatonic non-chord tone that falls by a step onto a
// chord tone.
func IsAppoggiatura(pitch, next int, tones []int) bool {
	if !chord.IsScaleTone(pitch) || chord.Contains(tones, pitch) || !chord.Contains(tones, next) {
		return false
	}
	d := pitch - next
	return d == 1 || d == 2
}
