package song

import (
	"math/rand"

	"github.com/jsphweid/melodex/chord"
	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/harmony"
	"github.com/jsphweid/melodex/melody"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/preset"
	"github.com/jsphweid/melodex/util"
)

// The backing generators are deliberately plain. They give the registry
// something to hold so the vocal has real notes to avoid, or to be avoided by.

var programs = map[model.TrackRole]uint8{
	model.RoleVocal:    73,
	model.RoleChord:    88,
	model.RoleBass:     33,
	model.RoleMotif:    11,
	model.RoleArpeggio: 81,
}

// spans returns the chords under every section that plays role, clipped to
// the section.
func spans(h *harmony.Harmony, sections []model.Section, role model.TrackRole) []chord.Entry {
	var res []chord.Entry
	for _, s := range sections {
		if !s.TrackMask.Has(role) {
			continue
		}
		for _, e := range h.Entries() {
			start, end := util.Max(e.Start, s.StartTick), util.Min(e.End, s.EndTick())
			if start >= end {
				continue
			}
			e.Start, e.End = start, end
			res = append(res, e)
		}
	}
	return res
}

// inRegister places a pitch class in the octave starting at low.
func inRegister(pc, low int) int {
	return low + util.PitchClass(pc-low)
}

// bassClearance is how close a pad voice below middle C may get to the bass.
const bassClearance = 2

// pad holds the triad for the length of every chord, dropping voices that
// clash with tracks already committed. Low voices that crowd the bass go up
// an octave.
func pad(h *harmony.Harmony, sections []model.Section) []model.NoteEvent {
	var notes []model.NoteEvent
	for _, e := range spans(h, sections, model.RoleChord) {
		dur := e.End - e.Start
		for _, pc := range e.Tones() {
			p := inRegister(pc, 55)
			if h.HasBassCollision(p, e.Start, dur, bassClearance) {
				p += 12
			}
			if !h.IsPitchSafe(p, e.Start, dur, model.RoleChord) {
				continue
			}
			notes = append(notes, model.NoteEvent{StartTick: e.Start, Duration: dur, Pitch: uint8(p), Velocity: 64})
		}
	}
	return notes
}

// bass plays the root once a bar, the fifth when the root clashes.
func bass(h *harmony.Harmony, sections []model.Section) []model.NoteEvent {
	var notes []model.NoteEvent
	for _, e := range spans(h, sections, model.RoleBass) {
		tones := e.Tones()
		for tick := e.Start; tick < e.End; tick += constants.TicksPerBar {
			dur := util.Min(uint32(constants.TicksPerBar), e.End-tick)
			for _, pc := range []int{tones[0], tones[2]} {
				p := inRegister(pc, 36)
				if h.IsPitchSafe(p, tick, dur, model.RoleBass) {
					notes = append(notes, model.NoteEvent{StartTick: tick, Duration: dur, Pitch: uint8(p), Velocity: 80})
					break
				}
			}
		}
	}
	return notes
}

// figure cycles root, third, fifth, third over the chords in steps of step
// ticks, resolving every note against the registry.
func figure(h *harmony.Harmony, sections []model.Section, role model.TrackRole, step uint32, low, high int, velocity uint8) []model.NoteEvent {
	var notes []model.NoteEvent
	order := []int{0, 1, 2, 1}
	for _, e := range spans(h, sections, role) {
		tones := e.Tones()
		for i, tick := 0, e.Start; tick < e.End; i, tick = i+1, tick+step {
			dur := util.Min(step, e.End-tick)
			want := inRegister(tones[order[i%len(order)]], low)
			p, strategy := h.ResolveSafePitch(want, tick, dur, role, low, high)
			if strategy == harmony.StrategyFailed {
				continue
			}
			notes = append(notes, model.NoteEvent{StartTick: tick, Duration: dur, Pitch: uint8(p), Velocity: velocity})
		}
	}
	return notes
}

// vocal runs the candidate search section by section. The last pitch of one
// section leads into the next.
func vocal(d *melody.Designer, p preset.Preset, sections []model.Section, hr uint32, low, high, candidates int, h *harmony.Harmony, rng *rand.Rand) []model.NoteEvent {
	var res []model.NoteEvent
	prev := -1
	for _, s := range sections {
		ctx := melody.SectionContext{
			Section:        s,
			Template:       p.TemplateFor(s.Type),
			Style:          p.Style,
			VocalLow:       low,
			VocalHigh:      high,
			HarmonicRhythm: hr,
			PrevPitch:      prev,
		}
		notes := d.GenerateSectionWithEvaluation(ctx, h, candidates, rng)
		if len(notes) > 0 {
			prev = int(notes[len(notes)-1].Pitch)
		}
		res = append(res, notes...)
	}
	return res
}
