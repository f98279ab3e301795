package motif

import (
	"math"
	"math/rand"

	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/rhythm"
	"github.com/jsphweid/melodex/util"
)

// HookSkeleton is a named shape of semitone offsets from the hook's first note.
type HookSkeleton struct {
	Name    string
	Offsets []int
}

var Skeletons = []HookSkeleton{
	{Name: "repeat-rise", Offsets: []int{0, 0, 2, 4, 2, 0, 0, -1}},
	{Name: "call-answer", Offsets: []int{0, 2, 4, 2, 0, -3, -1, 0}},
	{Name: "leap-fall", Offsets: []int{0, 5, 4, 2, 0, 2, 0, -3}},
	{Name: "sigh", Offsets: []int{0, -1, -3, -5, -3, -1, 0, 0}},
	{Name: "climb", Offsets: []int{0, 2, 4, 5, 7, 5, 4, 2}},
}

// Motif is the cached hook: a rhythm cell plus one pitch offset per onset.
type Motif struct {
	PatternName string            `msgpack:"pn"`
	Beats       float64           `msgpack:"bt"`
	Rhythm      []rhythm.Position `msgpack:"rh"`
	Offsets     []int             `msgpack:"of"`
	Contour     Contour           `msgpack:"co"`
}

func (m *Motif) Clone() *Motif {
	if m == nil {
		return nil
	}
	c := *m
	c.Rhythm = append([]rhythm.Position(nil), m.Rhythm...)
	c.Offsets = append([]int(nil), m.Offsets...)
	return &c
}

// NewHookMotif walks a random stepwise line over the pattern's onsets and
// blends the skeleton into it, 80% skeleton and 20% walk.
func NewHookMotif(p rhythm.Pattern, sk HookSkeleton, rng *rand.Rand) *Motif {
	m := &Motif{
		PatternName: p.Name,
		Beats:       p.Beats,
		Rhythm:      append([]rhythm.Position(nil), p.Positions...),
	}
	walk := 0
	for i := range p.Positions {
		if i > 0 {
			walk += []int{-2, -1, 0, 1, 2}[rng.Intn(5)]
		}
		m.Offsets = append(m.Offsets, walk)
	}
	m.Offsets = Blend(sk, m.Offsets, 0.8)
	m.Contour = ClassifyContour(intervalsOf(m.Offsets))
	return m
}

// Blend mixes skeleton offsets into base with the given skeleton weight. The
// skeleton is cycled when base is longer.
func Blend(sk HookSkeleton, base []int, weight float64) []int {
	res := make([]int, len(base))
	if len(sk.Offsets) == 0 {
		copy(res, base)
		return res
	}
	for i, b := range base {
		s := sk.Offsets[i%len(sk.Offsets)]
		res[i] = int(math.Round(weight*float64(s) + (1-weight)*float64(b)))
	}
	return res
}

func intervalsOf(offsets []int) []int {
	var res []int
	for i := 1; i < len(offsets); i++ {
		res = append(res, offsets[i]-offsets[i-1])
	}
	return res
}

// Betrayal is one deliberate deviation applied to a repeated hook cycle.
type Betrayal uint8

const (
	BetrayalLastPitch Betrayal = iota
	BetrayalExtendOne
	BetrayalSingleRest
	BetrayalSingleLeap
	numBetrayals
)

func (b Betrayal) String() string {
	names := [...]string{"last-pitch", "extend-one", "single-rest", "single-leap"}
	if int(b) < len(names) {
		return names[b]
	}
	return "unknown"
}

func RandomBetrayal(rng *rand.Rand) Betrayal {
	return Betrayal(rng.Intn(int(numBetrayals)))
}

// ApplyBetrayal returns a copy of cycle with exactly one mutation. limit is the
// tick the cycle may not sound past.
func ApplyBetrayal(cycle []model.NoteEvent, b Betrayal, limit uint32, rng *rand.Rand) []model.NoteEvent {
	res := model.CloneNotes(cycle)
	n := len(res)
	if n == 0 {
		return res
	}
	nextStart := func(i int) uint32 {
		if i+1 < n {
			return res[i+1].StartTick
		}
		return limit
	}
	switch b {
	case BetrayalLastPitch:
		res[n-1].Pitch = shiftPitch(res[n-1].Pitch, []int{-2, 2}[rng.Intn(2)])
	case BetrayalExtendOne:
		var room []int
		for i := range res {
			if res[i].EndTick() < nextStart(i) {
				room = append(room, i)
			}
		}
		if len(room) == 0 {
			// nothing can grow without overlapping, bend the ending instead
			return ApplyBetrayal(cycle, BetrayalLastPitch, limit, rng)
		}
		i := room[rng.Intn(len(room))]
		d := res[i].Duration + res[i].Duration/2
		res[i].Duration = util.Min(d, nextStart(i)-res[i].StartTick)
	case BetrayalSingleRest:
		i := 0
		if n > 1 {
			i = rng.Intn(n-1) + 1
		}
		// the note before i gives up half its length
		prev := util.Max(i-1, 0)
		res[prev].Duration = util.Max(res[prev].Duration/2, 1)
	case BetrayalSingleLeap:
		i := n / 2
		res[i].Pitch = shiftPitch(res[i].Pitch, []int{-5, 5}[rng.Intn(2)])
	}
	return res
}

func shiftPitch(p uint8, by int) uint8 {
	return uint8(util.Clamp(int(p)+by, 0, 127))
}
