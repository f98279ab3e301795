package chord

import (
	"sort"

	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/util"
)

// Entry is one chord span [Start, End).
type Entry struct {
	Start             uint32
	End               uint32
	Degree            int
	SecondaryDominant bool
}

func (e Entry) Contains(tick uint32) bool {
	return tick >= e.Start && tick < e.End
}

// Tones returns the chord tones of the entry as pitch classes, root first.
func (e Entry) Tones() []int {
	if e.SecondaryDominant {
		return DominantTriad(e.Degree)
	}
	return Triad(e.Degree)
}

func (e Entry) Root() int {
	return Major[ClampDegree(e.Degree)]
}

// Timeline maps ticks to chords. Entries are sorted, never overlap and cover
// [0, end of last section) without gaps.
type Timeline struct {
	entries []Entry
}

// NewTimeline lays progression out over the sections, restarting it at every
// section and changing chord every harmonicRhythm ticks.
func NewTimeline(progression []int, sections []model.Section, harmonicRhythm uint32) *Timeline {
	if len(progression) == 0 {
		progression = []int{0}
	}
	if harmonicRhythm == 0 {
		harmonicRhythm = constants.TicksPerBar
	}
	t := &Timeline{}
	var cursor uint32
	for _, s := range sections {
		end := s.EndTick()
		if end <= cursor {
			continue
		}
		// gaps before a section are covered by its first chord
		start := cursor
		i := 0
		for tick := s.StartTick; tick < end; tick += harmonicRhythm {
			spanEnd := util.Min(tick+harmonicRhythm, end)
			if spanEnd <= start {
				i++
				continue
			}
			t.push(Entry{Start: start, End: spanEnd, Degree: ClampDegree(progression[i%len(progression)])})
			start = spanEnd
			i++
		}
		cursor = end
	}
	if len(t.entries) == 0 {
		t.entries = []Entry{{Start: 0, End: constants.TicksPerBar, Degree: ClampDegree(progression[0])}}
	}
	return t
}

// push appends e, merging it with the previous entry when the chord repeats.
func (t *Timeline) push(e Entry) {
	if n := len(t.entries); n > 0 {
		last := &t.entries[n-1]
		if last.Degree == e.Degree && last.SecondaryDominant == e.SecondaryDominant && last.End == e.Start {
			last.End = e.End
			return
		}
	}
	t.entries = append(t.entries, e)
}

func (t *Timeline) Entries() []Entry {
	res := make([]Entry, len(t.entries))
	copy(res, t.entries)
	return res
}

func (t *Timeline) EndTick() uint32 {
	return t.entries[len(t.entries)-1].End
}

// index returns the entry containing tick, clamping outside the covered range.
func (t *Timeline) index(tick uint32) int {
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].End > tick
	})
	if i >= len(t.entries) {
		return len(t.entries) - 1
	}
	return i
}

func (t *Timeline) EntryAt(tick uint32) Entry {
	return t.entries[t.index(tick)]
}

func (t *Timeline) DegreeAt(tick uint32) int {
	return t.EntryAt(tick).Degree
}

func (t *Timeline) ChordTonesAt(tick uint32) []int {
	return t.EntryAt(tick).Tones()
}

func (t *Timeline) RootAt(tick uint32) int {
	return t.EntryAt(tick).Root()
}

// TensionsAt returns diatonic pitch classes that are neither chord tones nor avoid notes.
func (t *Timeline) TensionsAt(tick uint32) []int {
	e := t.EntryAt(tick)
	tones := e.Tones()
	var res []int
	for _, pc := range Major {
		if Contains(tones, pc) || IsAvoidNote(pc, tones, e.Root()) {
			continue
		}
		res = append(res, pc)
	}
	return res
}

func (t *Timeline) IsSecondaryDominantAt(tick uint32) bool {
	return t.EntryAt(tick).SecondaryDominant
}

// NextChangeTick returns the start of the first chord after the one sounding at
// afterTick. It returns 0 when that chord is the last one.
func (t *Timeline) NextChangeTick(afterTick uint32) uint32 {
	i := t.index(afterTick)
	if afterTick < t.entries[0].Start {
		return t.entries[0].Start
	}
	if i+1 >= len(t.entries) {
		return 0
	}
	return t.entries[i+1].Start
}

// RegisterSecondaryDominant replaces [start, end) of the containing entry with a
// dominant chord on degree. The entry is split into at most three entries and
// the covered range does not change. It returns false if no single entry
// contains the range.
func (t *Timeline) RegisterSecondaryDominant(start, end uint32, degree int) bool {
	if end <= start {
		return false
	}
	i := t.index(start)
	e := t.entries[i]
	if !e.Contains(start) || end > e.End {
		return false
	}
	var repl []Entry
	if e.Start < start {
		repl = append(repl, Entry{Start: e.Start, End: start, Degree: e.Degree, SecondaryDominant: e.SecondaryDominant})
	}
	repl = append(repl, Entry{Start: start, End: end, Degree: ClampDegree(degree), SecondaryDominant: true})
	if end < e.End {
		repl = append(repl, Entry{Start: end, End: e.End, Degree: e.Degree, SecondaryDominant: e.SecondaryDominant})
	}

	entries := make([]Entry, 0, len(t.entries)+2)
	entries = append(entries, t.entries[:i]...)
	entries = append(entries, repl...)
	entries = append(entries, t.entries[i+1:]...)
	t.entries = entries
	return true
}

// InsertSecondaryDominantBefore turns the last length ticks before tick into the
// secondary dominant of the chord starting at tick.
func (t *Timeline) InsertSecondaryDominantBefore(tick, length uint32) bool {
	if tick == 0 || tick >= t.EndTick() || length == 0 {
		return false
	}
	prev := t.EntryAt(tick - 1)
	target := t.EntryAt(tick)
	if prev.End != tick || prev.SecondaryDominant || target.Degree == 0 {
		return false
	}
	start := tick - util.Min(length, prev.End-prev.Start)
	if start == prev.Start && prev.End-prev.Start <= length {
		// keep at least half of the original chord
		start = prev.Start + (prev.End-prev.Start)/2
	}
	return t.RegisterSecondaryDominant(start, tick, SecondaryDominantOf(target.Degree))
}

type ToneClass uint8

const (
	ClassChordTone ToneClass = iota
	ClassTension
	ClassAvoid
)

func (c ToneClass) String() string {
	switch c {
	case ClassChordTone:
		return "chord-tone"
	case ClassTension:
		return "tension"
	}
	return "avoid"
}

func Classify(pitch int, tones []int, root int) ToneClass {
	switch {
	case Contains(tones, pitch):
		return ClassChordTone
	case IsAvoidNote(pitch, tones, root) || !IsScaleTone(pitch):
		return ClassAvoid
	}
	return ClassTension
}

// Boundary describes how a note relates to the next chord change it crosses.
type Boundary struct {
	CrossesBoundary bool
	BoundaryTick    uint32
	NextDegree      int
	Class           ToneClass
	// SafeDuration equals the input duration unless the note would turn into an
	// avoid note over the next chord, in which case it stops at the boundary.
	SafeDuration uint32
}

func (t *Timeline) AnalyzeBoundary(pitch int, start, duration uint32) Boundary {
	b := Boundary{SafeDuration: duration, Class: Classify(pitch, t.ChordTonesAt(start), t.RootAt(start))}
	next := t.NextChangeTick(start)
	if next == 0 || next <= start || next >= start+duration {
		return b
	}
	e := t.EntryAt(next)
	b.CrossesBoundary = true
	b.BoundaryTick = next
	b.NextDegree = e.Degree
	b.Class = Classify(pitch, e.Tones(), e.Root())
	if b.Class == ClassAvoid {
		b.SafeDuration = next - start
	}
	return b
}
