// Package rhythm places note onsets inside a phrase.
package rhythm

import (
	"math"
	"math/rand"

	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/util"
)

type Grid uint8

const (
	GridBinary Grid = iota
	GridTernary
	GridShuffle
)

func (g Grid) String() string {
	switch g {
	case GridTernary:
		return "ternary"
	case GridShuffle:
		return "shuffle"
	}
	return "binary"
}

func (g Grid) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *Grid) UnmarshalText(text []byte) error {
	*g = ParseGrid(string(text))
	return nil
}

func ParseGrid(s string) Grid {
	switch s {
	case "ternary", "triplet":
		return GridTernary
	case "shuffle":
		return GridShuffle
	}
	return GridBinary
}

// Position is one onset. Beat is counted from the phrase start, Eighths is the
// duration in eighth notes (fractional on a ternary grid).
type Position struct {
	Beat    float64 `msgpack:"b"`
	Eighths float64 `msgpack:"e"`
	Strong  bool    `msgpack:"s"`
}

func (p Position) StartTick() uint32 {
	return uint32(math.Round(p.Beat * constants.TicksPerBeat))
}

func (p Position) DurationTicks() uint32 {
	return uint32(math.Round(p.Eighths * constants.TickEighth))
}

func (p Position) EndBeat() float64 {
	return p.Beat + p.Eighths/2
}

type Params struct {
	// Density is the chance that a free slot gets an onset (0..1).
	Density float64 `yaml:"density"`
	// Syncopation raises the chance of off-beat onsets (0..1).
	Syncopation float64 `yaml:"syncopation"`
	Grid        Grid    `yaml:"grid"`
	// LongEnding makes the phrase end on a half note instead of a quarter.
	LongEnding bool `yaml:"long_ending"`
}

// slots returns the onset candidates of one beat as fractions of the beat.
func (g Grid) slots() []float64 {
	switch g {
	case GridTernary:
		return []float64{0, 1.0 / 3, 2.0 / 3}
	case GridShuffle:
		return []float64{0, 2.0 / 3}
	}
	return []float64{0, 0.5}
}

const (
	epsilon      = 1e-9
	maxHoldBeats = 3.0
)

func isOnBeat(beat float64) bool {
	return math.Abs(beat-math.Round(beat)) < epsilon
}

// IsStrongBeat is true for beats 1 and 3 of a 4/4 bar.
func IsStrongBeat(beat float64) bool {
	if !isOnBeat(beat) {
		return false
	}
	return int(math.Round(beat))%2 == 0
}

// Generate fills beats with onsets. The result always starts at beat 0, the
// last position starts on a beat and lasts at least a quarter note, and no
// position overlaps the next one.
func Generate(p Params, beats float64, rng *rand.Rand) []Position {
	if beats < 1 {
		return nil
	}
	ending := 1.0
	if p.LongEnding && beats >= 4 {
		ending = 2
	}
	lastStart := math.Floor(beats - ending)
	if lastStart < 0 {
		lastStart = 0
	}

	density := util.Clamp(p.Density, 0.05, 1)
	sync := util.Clamp(p.Syncopation, 0, 1)

	starts := []float64{0}
	for beat := 0.0; beat < lastStart; beat++ {
		for i, frac := range p.Grid.slots() {
			at := beat + frac
			if at < epsilon || at >= lastStart-epsilon {
				continue
			}
			prob := density
			if i > 0 {
				prob = density * (0.35 + 0.65*sync)
			} else if sync > 0.5 {
				prob = density * (1.25 - sync*0.5)
			}
			if rng.Float64() < prob {
				starts = append(starts, at)
			}
		}
	}
	if lastStart > 0 {
		starts = append(starts, lastStart)
	}

	res := make([]Position, len(starts))
	for i, s := range starts {
		end := beats
		if i+1 < len(starts) {
			// long gaps turn into rests
			end = math.Min(starts[i+1], s+maxHoldBeats)
		}
		res[i] = Position{Beat: s, Eighths: (end - s) * 2, Strong: IsStrongBeat(s)}
	}
	return res
}

// TotalBeats is where the last position ends.
func TotalBeats(ps []Position) float64 {
	if len(ps) == 0 {
		return 0
	}
	return ps[len(ps)-1].EndBeat()
}

// Scale stretches a pattern in time, e.g. 2 for augmentation.
func Scale(ps []Position, factor float64) []Position {
	res := make([]Position, len(ps))
	for i, p := range ps {
		res[i] = Position{Beat: p.Beat * factor, Eighths: p.Eighths * factor, Strong: IsStrongBeat(p.Beat * factor)}
	}
	return res
}
