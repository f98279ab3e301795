// Package song drives a whole generation pass: form, chords, backing tracks
// and the vocal, rendered in the requested key.
package song

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/jsphweid/melodex/chord"
	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/harmony"
	"github.com/jsphweid/melodex/melody"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/preset"
	"github.com/jsphweid/melodex/util"
)

type Song struct {
	Key      int
	BPM      float64
	Sections []model.Section
	Tracks   []model.Track
	Session  *melody.Session
	// Harmony is the generation state, in C before transposition.
	Harmony *harmony.Harmony
	Preset  preset.Preset

	shift     int
	vocalLow  int
	vocalHigh int
}

// Track returns the track of role, if the song has one.
func (s *Song) Track(role model.TrackRole) (model.Track, bool) {
	for _, t := range s.Tracks {
		if t.Role == role {
			return t, true
		}
	}
	return model.Track{}, false
}

// Generate writes a song. Everything is generated in C and transposed to the
// key at the end.
func Generate(cfg Config) (*Song, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	presets := cfg.Presets
	if presets == nil {
		presets = preset.Builtin()
	}
	p, err := presets.Lookup(cfg.Preset)
	if err != nil {
		return nil, err
	}
	sections := cfg.Sections()
	if err := model.ValidateSections(sections); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	hr := uint32(constants.TicksPerBar)
	if p.MoodValue().SlowHarmony() {
		hr *= 2
	}
	tl := chord.NewTimeline(p.Progression, sections, hr)
	for i, s := range sections {
		if i > 0 && s.Type == model.SectionChorus {
			tl.InsertSecondaryDominantBefore(s.StartTick, constants.TickHalf)
		}
	}
	h := harmony.New(tl)
	cfg.Strategy.Apply(h.Registry)

	session := cfg.Session
	if session == nil {
		session = melody.NewSession()
	}
	d := melody.NewDesigner(session)
	shift := cfg.shift()
	low, high := cfg.VocalLow-shift, cfg.VocalHigh-shift

	g := &generator{
		h:          h,
		d:          d,
		preset:     p,
		sections:   sections,
		hr:         hr,
		low:        low,
		high:       high,
		candidates: cfg.Candidates,
		rng:        rng,
	}
	var tracks []model.Track
	for _, role := range cfg.Strategy.Order() {
		notes, err := g.track(role)
		if err != nil {
			return nil, err
		}
		slog.Debug("track generated", "role", role.String(), "notes", len(notes), "strategy", cfg.Strategy.String())
		tracks = append(tracks, model.Track{
			Role:    role,
			Channel: uint8(len(tracks)),
			Program: programs[role],
			Notes:   transpose(notes, shift),
		})
	}

	return &Song{
		Key:      cfg.Key,
		BPM:      cfg.BPM,
		Sections: sections,
		Tracks:   tracks,
		Session:  d.Session,
		Harmony:  h,
		Preset:   p,

		shift:     shift,
		vocalLow:  low,
		vocalHigh: high,
	}, nil
}

// ErrNoGenerator is returned for a track role nothing can generate.
var ErrNoGenerator = errors.New("no generator for track")

type generator struct {
	h          *harmony.Harmony
	d          *melody.Designer
	preset     preset.Preset
	sections   []model.Section
	hr         uint32
	low, high  int
	candidates int
	rng        *rand.Rand
}

// track generates one track and registers it. A failed track is cancelled so
// the registry never holds half of it.
func (g *generator) track(role model.TrackRole) (notes []model.NoteEvent, err error) {
	reg := g.h.BeginGeneration(role)
	defer func() { reg.Finish(notes, err) }()

	switch role {
	case model.RoleVocal:
		return vocal(g.d, g.preset, g.sections, g.hr, g.low, g.high, g.candidates, g.h, g.rng), nil
	case model.RoleChord:
		return pad(g.h, g.sections), nil
	case model.RoleBass:
		return bass(g.h, g.sections), nil
	case model.RoleMotif:
		return figure(g.h, g.sections, role, constants.TickQuarter, 67, 84, 72), nil
	case model.RoleArpeggio:
		return figure(g.h, g.sections, role, constants.TickEighth, 60, 79, 68), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoGenerator, role)
}

func transpose(notes []model.NoteEvent, by int) []model.NoteEvent {
	res := model.CloneNotes(notes)
	for i := range res {
		res[i].Pitch = util.ClampPitch(int(res[i].Pitch)+by, constants.MinMidiPitch, constants.MaxMidiPitch)
	}
	return res
}
