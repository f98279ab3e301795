package melody

import (
	"math/rand"
	"path/filepath"
	"sort"
	"testing"

	"github.com/jsphweid/melodex/chord"
	"github.com/jsphweid/melodex/harmony"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/phrase"
	"github.com/jsphweid/melodex/preset"
	"github.com/jsphweid/melodex/util"
	"github.com/stretchr/testify/assert"
)

func song() ([]model.Section, *harmony.Harmony) {
	types := []model.SectionType{model.SectionA, model.SectionB, model.SectionChorus, model.SectionA, model.SectionChorus}
	sections := model.BuildSections(types, []uint8{8, 8, 8, 8, 8}, model.AllTracks)
	tl := chord.NewTimeline([]int{0, 4, 5, 3}, sections, 1920)
	return sections, harmony.New(tl)
}

func sectionCtx(s model.Section) SectionContext {
	p, _ := preset.Builtin().Lookup("standard")
	return SectionContext{
		Section:        s,
		Template:       p.TemplateFor(s.Type),
		Style:          p.Style,
		VocalLow:       57,
		VocalHigh:      79,
		HarmonicRhythm: 1920,
		PrevPitch:      -1,
	}
}

func assertWellFormed(t *testing.T, notes []model.NoteEvent, low, high int) {
	assert := assert.New(t)
	for i, n := range notes {
		assert.GreaterOrEqual(int(n.Pitch), low)
		assert.LessOrEqual(int(n.Pitch), high)
		assert.Greater(n.Duration, uint32(0))
		if i > 0 {
			assert.LessOrEqual(notes[i-1].EndTick(), n.StartTick, "notes must not overlap")
		}
	}
}

func TestGenerateMelodyPhrase(t *testing.T) {
	sections, h := song()
	rng := rand.New(rand.NewSource(17))
	d := NewDesigner(nil)
	for _, s := range sections {
		ctx := sectionCtx(s)
		for i := 0; i < 20; i++ {
			for _, ph := range phrase.Plan(s, 1920, ctx.Template.Phrase, rng) {
				notes := d.GenerateMelodyPhrase(ctx, ph, -1, h, rng)

				assert.NotEmpty(t, notes)
				assertWellFormed(t, notes, 57, 79)
				last := notes[len(notes)-1]
				assert.GreaterOrEqual(t, last.Duration, uint32(480))
				assert.GreaterOrEqual(t, notes[0].StartTick, ph.NoteStart())
				assert.LessOrEqual(t, last.EndTick(), ph.NoteEnd())
			}
		}
	}
}

func TestGenerateSection(t *testing.T) {
	sections, h := song()
	rng := rand.New(rand.NewSource(3))
	d := NewDesigner(nil)
	for _, s := range sections {
		t.Run(s.Type.String(), func(t *testing.T) {
			notes := d.GenerateSection(sectionCtx(s), h, rng)

			assert := assert.New(t)
			assert.NotEmpty(notes)
			assertWellFormed(t, notes, 57, 79)
			assert.True(sort.SliceIsSorted(notes, func(i, j int) bool {
				return notes[i].StartTick < notes[j].StartTick
			}))
			assert.GreaterOrEqual(notes[0].StartTick, s.StartTick)
			assert.LessOrEqual(notes[len(notes)-1].EndTick(), s.EndTick())
		})
	}
}

func TestGenerateSectionSkipsMutedVocal(t *testing.T) {
	sections, h := song()
	s := sections[0]
	s.TrackMask = model.MaskOf(model.RoleBass, model.RoleChord)
	assert.Nil(t, NewDesigner(nil).GenerateSection(sectionCtx(s), h, rand.New(rand.NewSource(1))))
}

func TestMelodyAvoidsRegisteredPad(t *testing.T) {
	sections, h := song()
	var pad []model.NoteEvent
	for _, e := range h.Entries() {
		for _, pc := range e.Tones() {
			pad = append(pad, model.NoteEvent{StartTick: e.Start, Duration: e.End - e.Start, Pitch: uint8(60 + pc), Velocity: 70})
		}
	}
	reg := h.BeginGeneration(model.RoleChord)
	assert.NoError(t, reg.Commit(pad))

	rng := rand.New(rand.NewSource(21))
	d := NewDesigner(nil)
	total, clashes := 0, 0
	for _, s := range sections {
		for _, n := range d.GenerateSection(sectionCtx(s), h, rng) {
			total++
			if !h.IsPitchSafe(int(n.Pitch), n.StartTick, n.Duration, model.RoleVocal) {
				clashes++
			}
		}
	}
	assert.Greater(t, total, 0)
	assert.LessOrEqual(t, float64(clashes), 0.05*float64(total))
}

func TestHookIsCachedAndHeadReplayed(t *testing.T) {
	sections, h := song()
	chorus := sections[2]
	ctx := sectionCtx(chorus)
	rng := rand.New(rand.NewSource(5))
	d := NewDesigner(nil)

	ph := phrase.Plan(chorus, 1920, ctx.Template.Phrase, rng)[0]
	first := d.GenerateHook(ctx, ph, h, rng)
	hook := d.Session.Hook
	head := model.CloneNotes(d.Session.SabiHead)

	assert := assert.New(t)
	assert.NotNil(hook)
	assert.NotEmpty(head)
	assert.LessOrEqual(len(head), 8)
	// the phrase ending may still be adjusted after the head is cached
	for i := 0; i < len(head) && i < len(first)-1; i++ {
		assert.Equal(first[i].Pitch, head[i].Pitch)
		assert.Equal(first[i].StartTick-ph.NoteStart(), head[i].StartTick)
	}

	// two progression cycles later, so the head meets the same chords
	at := ph.NoteStart() + 15360
	later := phrase.Phrase{Index: 1, Start: at, End: at + 7680, Bars: 4, BreathTicks: 240}
	second := d.GenerateHook(ctx, later, h, rng)
	assert.Same(hook, d.Session.Hook)
	for i := 0; i < len(head) && i < len(second)-1; i++ {
		n := head[i]
		assert.Equal(n.Pitch, second[i].Pitch)
		assert.Equal(n.Duration, second[i].Duration)
		assert.Equal(n.Velocity, second[i].Velocity)
		assert.Equal(n.StartTick+later.Start, second[i].StartTick)
	}
	assertWellFormed(t, second, 57, 79)
}

func TestHookRepeats(t *testing.T) {
	sections, h := song()
	chorus := sections[2]
	ctx := sectionCtx(chorus)
	rng := rand.New(rand.NewSource(8))
	for i := 0; i < 20; i++ {
		d := NewDesigner(nil)
		ph := phrase.Plan(chorus, 1920, ctx.Template.Phrase, rng)[0]
		notes := d.GenerateHook(ctx, ph, h, rng)
		cycle := len(d.Session.Hook.Rhythm)

		assert := assert.New(t)
		assert.GreaterOrEqual(len(notes), 2*cycle)
		assert.GreaterOrEqual(notes[len(notes)-1].Duration, uint32(480))
		assertWellFormed(t, notes, 57, 79)
	}
}

func TestSelectCandidateIsAboveMedian(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for trial := 0; trial < 500; trial++ {
		n := 1 + rng.Intn(30)
		cands := make([]Candidate, n)
		scores := make([]float64, n)
		for i := range cands {
			cands[i].Score = rng.Float64() * 1.5
			scores[i] = cands[i].Score
		}
		sort.Float64s(scores)
		median := scores[n/2]
		if n%2 == 0 {
			median = (scores[n/2-1] + scores[n/2]) / 2
		}
		best := SelectCandidate(cands, rng)
		assert.GreaterOrEqual(t, cands[best].Score, median)
	}
	assert.Equal(t, -1, SelectCandidate(nil, rng))
}

func TestGenerateSectionWithEvaluation(t *testing.T) {
	sections, h := song()
	chorus := sections[2]
	ctx := sectionCtx(chorus)
	const n = 12

	base := NewSession()
	cands := (&Designer{Session: base.Clone()}).EvaluateCandidates(ctx, h, n, rand.New(rand.NewSource(31)))
	d := NewDesigner(base.Clone())
	notes := d.GenerateSectionWithEvaluation(ctx, h, n, rand.New(rand.NewSource(31)))

	var scores []float64
	chosen := -1.0
	for _, c := range cands {
		scores = append(scores, c.Score)
		if assert.ObjectsAreEqual(c.Notes, notes) {
			chosen = c.Score
		}
	}
	sort.Float64s(scores)
	median := (scores[n/2-1] + scores[n/2]) / 2

	assert := assert.New(t)
	assert.GreaterOrEqual(chosen, median)
	assert.NotNil(d.Session.GlobalMotif)
	assert.NotNil(d.Session.Hook)
	assert.Nil(base.Hook, "losing and winning candidates work on copies")

	gm := d.Session.GlobalMotif.Clone()
	d.GenerateSectionWithEvaluation(sectionCtx(sections[4]), h, 4, rand.New(rand.NewSource(2)))
	assert.Equal(gm, *d.Session.GlobalMotif, "the motif is fixed by the first chorus")
}

func TestSessionSnapshot(t *testing.T) {
	sections, h := song()
	d := NewDesigner(nil)
	d.GenerateSectionWithEvaluation(sectionCtx(sections[2]), h, 3, rand.New(rand.NewSource(4)))
	s := d.Session

	data, err := s.Marshal()
	assert.NoError(t, err)
	back, err := UnmarshalSession(data)
	assert.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(s.ID, back.ID)
	assert.Equal(s.SabiHead, back.SabiHead)
	assert.Equal(s.Hook.Offsets, back.Hook.Offsets)
	assert.Equal(s.GlobalMotif.Intervals, back.GlobalMotif.Intervals)

	path := filepath.Join(t.TempDir(), "session.bin")
	assert.NoError(s.Save(path))
	loaded, err := LoadSession(path)
	assert.NoError(err)
	assert.Equal(s.SkeletonIndex, loaded.SkeletonIndex)

	_, err = UnmarshalSession([]byte{0xc1})
	assert.Error(err)
}

func TestSessionReset(t *testing.T) {
	s := NewSession()
	id := s.ID
	s.AnchorCycle = 3
	s.SabiHead = []model.NoteEvent{{Pitch: 60}}
	s.Reset()

	assert := assert.New(t)
	assert.Equal(id, s.ID)
	assert.Equal(0, s.AnchorCycle)
	assert.Nil(s.SabiHead)
	assert.Equal(-1, s.SkeletonIndex)
}

func TestAnchorCycle(t *testing.T) {
	sections, h := song()
	d := NewDesigner(nil)
	ctx := sectionCtx(sections[1])
	ph := phrase.Phrase{Index: 0, Start: sections[1].StartTick, End: sections[1].StartTick + 7680, Bars: 4}

	var got []int
	for i := 0; i < 3; i++ {
		p, via := d.initialPitch(ctx, ph, -1, h, 60, 76)
		assert.Equal(t, -1, via)
		got = append(got, p%12)
	}
	// B starts on I, whose triad holds the tonic and the fifth but not the sixth
	assert.Equal(t, []int{0, 7}, got[:2])
	assert.Equal(t, 3, d.Session.AnchorCycle)
}

func TestInitialPitchStepsInFromFarAway(t *testing.T) {
	sections, h := song()
	d := NewDesigner(nil)
	ctx := sectionCtx(sections[0])
	ph := phrase.Phrase{Index: 1, Start: sections[0].StartTick, End: sections[0].StartTick + 7680, Bars: 4}

	assert := assert.New(t)
	// nearest C major tone to 79 inside [60, 67] is 67, an octave away
	p, via := d.initialPitch(ctx, ph, 79, h, 60, 67)
	assert.Equal(67, p)
	assert.Greater(via, 67)
	assert.Less(via, 79)
	assert.True(chord.IsScaleTone(via))

	p, via = d.initialPitch(ctx, ph, 65, h, 60, 67)
	assert.LessOrEqual(util.Abs(p-65), 7)
	assert.Equal(-1, via)
}

func assertClearOfChordChanges(t *testing.T, h harmony.Context, notes []model.NoteEvent) {
	for _, n := range notes {
		b := h.AnalyzeBoundary(int(n.Pitch), n.StartTick, n.Duration)
		assert.Equal(t, n.Duration, b.SafeDuration, "%+v sounds into an avoid note at %d", n, b.BoundaryTick)
	}
}

func TestNotesStopBeforeAvoidNotes(t *testing.T) {
	sections, h := song()
	chorus := sections[2]
	ctx := sectionCtx(chorus)

	t.Run("hook", func(t *testing.T) {
		rng := rand.New(rand.NewSource(31))
		for i := 0; i < 100; i++ {
			d := NewDesigner(nil)
			ph := phrase.Plan(chorus, 1920, ctx.Template.Phrase, rng)[0]
			ph.Anticipation = i%2 == 1
			notes := d.GenerateHook(ctx, ph, h, rng)
			assertClearOfChordChanges(t, h, notes)
			assertWellFormed(t, notes, 57, 79)
		}
	})

	t.Run("sections", func(t *testing.T) {
		rng := rand.New(rand.NewSource(37))
		for i := 0; i < 10; i++ {
			d := NewDesigner(nil)
			prev := -1
			for _, s := range sections {
				c := sectionCtx(s)
				c.PrevPitch = prev
				notes := d.GenerateSection(c, h, rng)
				assertClearOfChordChanges(t, h, notes)
				if len(notes) > 0 {
					prev = int(notes[len(notes)-1].Pitch)
				}
			}
		}
	})
}

func TestClampToChords(t *testing.T) {
	_, h := song()
	notes := []model.NoteEvent{
		// C held from I into V stops at the bar line
		{StartTick: 1440, Duration: 960, Pitch: 72},
		// an eighth would be left, so it moves to a tone of V instead
		{StartTick: 9360, Duration: 960, Pitch: 72},
		{StartTick: 10560, Duration: 480, Pitch: 67},
	}
	clampToChords(notes, h, 57, 79)

	assert := assert.New(t)
	assert.Equal(uint32(480), notes[0].Duration)
	assert.Equal(uint8(72), notes[0].Pitch)
	assert.Equal(uint32(960), notes[1].Duration)
	assert.Equal(uint8(71), notes[1].Pitch)
	assert.Equal(uint32(480), notes[2].Duration)
	assertClearOfChordChanges(t, h, notes)
}

func TestShortHookPhraseFallsBack(t *testing.T) {
	sections, h := song()
	chorus := sections[2]
	ctx := sectionCtx(chorus)
	d := NewDesigner(nil)
	d.ensureHook(rand.New(rand.NewSource(2)))

	// one bar can not hold two cycles of any hook
	ph := phrase.Phrase{Start: chorus.StartTick, End: chorus.StartTick + 1920, Bars: 1, IsHook: true, BreathTicks: 240}
	notes := d.GenerateHook(ctx, ph, h, rand.New(rand.NewSource(4)))

	assert := assert.New(t)
	assert.NotEmpty(notes)
	assert.Empty(d.Session.SabiHead, "no hook was stated")
	assertWellFormed(t, notes, 57, 79)
}
