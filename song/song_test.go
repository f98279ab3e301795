package song

import (
	"errors"
	"testing"

	"github.com/jsphweid/melodex/chord"
	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/harmony"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/preset"
	"github.com/stretchr/testify/assert"
)

func quick() Config {
	cfg := DefaultConfig()
	cfg.Form = []model.SectionType{model.SectionIntro, model.SectionA, model.SectionChorus, model.SectionChorus}
	cfg.Candidates = 3
	cfg.Seed = 42
	return cfg
}

func TestSections(t *testing.T) {
	sections := DefaultConfig().Sections()

	assert := assert.New(t)
	assert.Len(sections, len(DefaultForm))
	assert.NoError(model.ValidateSections(sections))
	assert.False(sections[0].TrackMask.Has(model.RoleVocal))
	assert.True(sections[0].TrackMask.Has(model.RoleChord))
	assert.Equal(uint8(4), sections[0].Bars)
	assert.True(sections[1].TrackMask.Has(model.RoleVocal))
	assert.Equal(uint8(8), sections[1].Bars)
}

func TestGenerate(t *testing.T) {
	for _, key := range []int{0, 2, 9} {
		cfg := quick()
		cfg.Key = key
		s, err := Generate(cfg)

		assert := assert.New(t)
		assert.NoError(err)
		assert.Equal(0, s.Harmony.OpenGenerations(), "every track registration is finished")

		v, ok := s.Track(model.RoleVocal)
		assert.True(ok)
		assert.NotEmpty(v.Notes)
		for i, n := range v.Notes {
			assert.GreaterOrEqual(int(n.Pitch), cfg.VocalLow)
			assert.LessOrEqual(int(n.Pitch), cfg.VocalHigh)
			if i > 0 {
				assert.LessOrEqual(v.Notes[i-1].EndTick(), n.StartTick)
			}
			assert.GreaterOrEqual(n.StartTick, s.Sections[1].StartTick, "the intro has no vocal")
		}

		c, ok := s.Track(model.RoleChord)
		assert.True(ok)
		assert.NotEmpty(c.Notes)
		b, ok := s.Track(model.RoleBass)
		assert.True(ok)
		assert.NotEmpty(b.Notes)
		assert.NotNil(s.Session.GlobalMotif)
		assert.NotNil(s.Session.Hook)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a, err := Generate(quick())
	assert.NoError(t, err)
	b, err := Generate(quick())
	assert.NoError(t, err)
	assert.Equal(t, a.Tracks, b.Tracks)
}

func TestStrategies(t *testing.T) {
	cases := []struct {
		strategy Strategy
		roles    []model.TrackRole
	}{
		{MelodyLead, []model.TrackRole{model.RoleVocal, model.RoleBass, model.RoleChord}},
		{BackgroundMotif, []model.TrackRole{model.RoleBass, model.RoleChord, model.RoleMotif, model.RoleVocal}},
		{SynthDriven, []model.TrackRole{model.RoleBass, model.RoleChord, model.RoleArpeggio, model.RoleVocal}},
	}
	for _, c := range cases {
		t.Run(c.strategy.String(), func(t *testing.T) {
			cfg := quick()
			cfg.Strategy = c.strategy
			s, err := Generate(cfg)

			assert := assert.New(t)
			assert.NoError(err)
			var roles []model.TrackRole
			for _, tr := range s.Tracks {
				roles = append(roles, tr.Role)
				assert.NotEmpty(tr.Notes, tr.Name())
			}
			assert.Equal(c.roles, roles)

			parsed, err := ParseStrategy(c.strategy.String())
			assert.NoError(err)
			assert.Equal(c.strategy, parsed)
		})
	}
	_, err := ParseStrategy("polka")
	assert.Error(t, err)
}

func TestStrategyPriorities(t *testing.T) {
	r := harmony.NewRegistry(nil)
	BackgroundMotif.Apply(r)

	assert := assert.New(t)
	assert.Equal(harmony.PriorityHighest, r.PriorityOf(model.RoleMotif))
	assert.Equal(harmony.PriorityMedium, r.PriorityOf(model.RoleVocal))
}

func TestLeadingMelodyIsAvoidedByPad(t *testing.T) {
	s, err := Generate(quick())
	assert.NoError(t, err)

	v, _ := s.Track(model.RoleVocal)
	c, _ := s.Track(model.RoleChord)
	vocalOnly := harmony.NewRegistry(nil)
	vocalOnly.RegisterTrack(v.Notes, model.RoleVocal)
	for _, n := range c.Notes {
		assert.True(t, vocalOnly.IsPitchSafe(int(n.Pitch), n.StartTick, n.Duration, model.RoleChord))
	}
}

func TestSessionCarriesOver(t *testing.T) {
	first, err := Generate(quick())
	assert.NoError(t, err)
	offsets := append([]int(nil), first.Session.Hook.Offsets...)
	motif := first.Session.GlobalMotif.Clone()

	cfg := quick()
	cfg.Seed = 7
	cfg.Session = first.Session
	second, err := Generate(cfg)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(offsets, second.Session.Hook.Offsets)
	assert.Equal(motif, *second.Session.GlobalMotif)
}

func TestGenerateErrors(t *testing.T) {
	cfg := quick()
	cfg.Preset = "polka"
	_, err := Generate(cfg)
	assert.True(t, errors.Is(err, preset.ErrUnknownPreset))

	cfg = quick()
	cfg.Bars = []uint8{4, 0}
	_, err = Generate(cfg)
	assert.True(t, errors.Is(err, model.ErrZeroLengthSection))
	var se *model.SectionError
	assert.True(t, errors.As(err, &se))

	cfg = quick()
	cfg.Form = nil
	_, err = Generate(cfg)
	assert.True(t, errors.Is(err, model.ErrNoSections))

	cfg = quick()
	cfg.Key = 12
	_, err = Generate(cfg)
	assert.Error(t, err)

	cfg = quick()
	cfg.VocalHigh = cfg.VocalLow + 5
	_, err = Generate(cfg)
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	s, err := Generate(quick())
	assert.NoError(t, err)
	reports := s.Report()

	assert := assert.New(t)
	assert.Len(reports, len(s.Sections))
	assert.Equal(0, reports[0].Notes, "the intro has no vocal")
	total := 0
	for _, r := range reports[1:] {
		assert.Greater(r.Notes, 0)
		assert.Greater(r.Style, 0.0)
		assert.LessOrEqual(r.Culling, 1.25)
		total += r.Notes
	}
	v, _ := s.Track(model.RoleVocal)
	assert.Equal(len(v.Notes), total)
}

func TestParseKey(t *testing.T) {
	assert := assert.New(t)
	k, err := ParseKey("Eb")
	assert.NoError(err)
	assert.Equal(3, k)
	k, err = ParseKey("B")
	assert.NoError(err)
	assert.Equal(11, k)
	_, err = ParseKey("H")
	assert.Error(err)
}

func TestPadClearsBass(t *testing.T) {
	sections := model.BuildSections([]model.SectionType{model.SectionA}, []uint8{4}, model.AllTracks)
	h := harmony.New(chord.NewTimeline([]int{0, 4, 5, 3}, sections, constants.TicksPerBar))
	assert.NoError(t, h.BeginGeneration(model.RoleBass).Commit(bass(h, sections)))
	notes := pad(h, sections)

	assert := assert.New(t)
	assert.NotEmpty(notes)
	var overV []int
	for _, n := range notes {
		assert.False(h.HasBassCollision(int(n.Pitch), n.StartTick, n.Duration, bassClearance), "%+v", n)
		if n.StartTick == constants.TicksPerBar {
			overV = append(overV, int(n.Pitch))
		}
	}
	// G would double the bass G two octaves down, so it sits above the rest
	assert.Contains(overV, 67)
	assert.NotContains(overV, 55)
}

func TestTrackRegistration(t *testing.T) {
	sections := model.BuildSections([]model.SectionType{model.SectionA}, []uint8{4}, model.AllTracks)
	h := harmony.New(chord.NewTimeline([]int{0, 4, 5, 3}, sections, constants.TicksPerBar))
	g := &generator{h: h, sections: sections, hr: constants.TicksPerBar}

	assert := assert.New(t)
	notes, err := g.track(model.RoleBass)
	assert.NoError(err)
	assert.Equal(len(notes), h.Len())

	_, err = g.track(model.RoleDrums)
	assert.ErrorIs(err, ErrNoGenerator)
	assert.Equal(len(notes), h.Len(), "a failed track registers nothing")
	assert.Equal(0, h.OpenGenerations())
}

func TestVocalStopsBeforeAvoidNotes(t *testing.T) {
	for _, seed := range []int64{1, 2, 3} {
		cfg := quick()
		cfg.Seed = seed
		s, err := Generate(cfg)
		assert.NoError(t, err)

		v, ok := s.Track(model.RoleVocal)
		assert.True(t, ok)
		for _, n := range v.Notes {
			b := s.Harmony.AnalyzeBoundary(int(n.Pitch), n.StartTick, n.Duration)
			assert.Equal(t, n.Duration, b.SafeDuration, "seed %d: %+v sounds into an avoid note at %d", seed, n, b.BoundaryTick)
		}
	}
}
