package melody

import (
	"log/slog"
	"math/rand"

	"github.com/jsphweid/melodex/chord"
	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/harmony"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/motif"
	"github.com/jsphweid/melodex/phrase"
	"github.com/jsphweid/melodex/rhythm"
	"github.com/jsphweid/melodex/util"
)

// ensureHook fills the session's hook caches on first use.
func (d *Designer) ensureHook(rng *rand.Rand) *motif.Motif {
	s := d.Session
	if s.HookRhythmIndex < 0 || s.HookRhythmIndex >= len(rhythm.HookPatterns) {
		s.HookRhythmIndex = rng.Intn(len(rhythm.HookPatterns))
	}
	if s.SkeletonIndex < 0 || s.SkeletonIndex >= len(motif.Skeletons) {
		s.SkeletonIndex = rng.Intn(len(motif.Skeletons))
	}
	if s.Hook == nil {
		s.Hook = motif.NewHookMotif(rhythm.HookPatterns[s.HookRhythmIndex], motif.Skeletons[s.SkeletonIndex], rng)
	}
	return s.Hook
}

// GenerateHook repeats the song's hook 2-4 times over the phrase. Cycles past
// the template's threshold get exactly one betrayal each. The first chorus
// hook's head is cached and replayed by every later one.
func (d *Designer) GenerateHook(ctx SectionContext, ph phrase.Phrase, h harmony.Context, rng *rand.Rand) []model.NoteEvent {
	hook := d.ensureHook(rng)
	cycle := uint32(hook.Beats * constants.TicksPerBeat)
	// the hook's own long ending replaces the breath
	span := ph.End - ph.NoteStart()
	if cycle == 0 || span < 2*cycle || len(hook.Offsets) == 0 {
		// too short to state the hook twice
		return d.GenerateMelodyPhrase(ctx, ph, -1, h, rng)
	}
	tpl := ctx.Template
	lo, hi := util.Max(tpl.HookRepeatsMin, 2), util.Max(tpl.HookRepeatsMax, 2)
	if hi < lo {
		hi = lo
	}
	repeats := util.Clamp(lo+rng.Intn(hi-lo+1), 2, int(span/cycle))

	low, high := ctx.tessitura()
	base := hookBase(hook, ph.NoteStart(), h, low, high)

	var notes []model.NoteEvent
	for c := 0; c < repeats; c++ {
		at := ph.NoteStart() + uint32(c)*cycle
		var cyc []model.NoteEvent
		for j, pos := range hook.Rhythm {
			v := uint8(84)
			if pos.Strong {
				v = 96
			}
			cyc = append(cyc, model.NoteEvent{
				StartTick: at + pos.StartTick(),
				Duration:  pos.DurationTicks(),
				Pitch:     uint8(util.Clamp(base+hook.Offsets[j], ctx.VocalLow, ctx.VocalHigh)),
				Velocity:  v,
			})
		}
		if tpl.BetrayalThreshold > 0 && c >= tpl.BetrayalThreshold {
			b := motif.RandomBetrayal(rng)
			cyc = motif.ApplyBetrayal(cyc, b, at+cycle, rng)
			slog.Debug("hook betrayal", "cycle", c, "kind", b.String())
		}
		notes = append(notes, cyc...)
	}

	for i := range notes {
		n := &notes[i]
		p, _ := h.ResolveSafePitch(int(n.Pitch), n.StartTick, n.Duration, model.RoleVocal, ctx.VocalLow, ctx.VocalHigh)
		n.Pitch = uint8(p)
	}
	clampToChords(notes, h, ctx.VocalLow, ctx.VocalHigh)
	notes = d.applySabiHead(notes, ph.NoteStart(), ph.End)
	ensurePhraseEnding(notes, h, ph.End, ctx.VocalLow, ctx.VocalHigh)
	clampToChords(notes, h, ctx.VocalLow, ctx.VocalHigh)
	return notes
}

// hookBase is the pitch offset 0 maps to: a chord tone that centers the hook's
// range in the tessitura.
func hookBase(m *motif.Motif, start uint32, h harmony.Context, low, high int) int {
	lo, hi := m.Offsets[0], m.Offsets[0]
	for _, o := range m.Offsets {
		lo, hi = util.Min(lo, o), util.Max(hi, o)
	}
	target := (low+high)/2 - (lo+hi)/2
	if p, ok := chord.NearestTone(h.ChordTonesAt(start), target, low-lo, high-hi); ok {
		return p
	}
	return target
}

// applySabiHead caches the first notes of the first hook, or replaces the
// start of later hooks with the cached ones.
func (d *Designer) applySabiHead(notes []model.NoteEvent, start, end uint32) []model.NoteEvent {
	s := d.Session
	if len(s.SabiHead) == 0 {
		n := util.Min(len(notes), sabiHeadLength)
		for _, note := range notes[:n] {
			note.StartTick -= start
			s.SabiHead = append(s.SabiHead, note)
		}
		return notes
	}
	var res []model.NoteEvent
	for _, n := range s.SabiHead {
		n.StartTick += start
		if n.StartTick >= end {
			break
		}
		n.Duration = util.Min(n.Duration, end-n.StartTick)
		res = append(res, n)
	}
	if len(res) == 0 {
		return notes
	}
	headEnd := res[len(res)-1].EndTick()
	for _, n := range notes {
		if n.StartTick >= headEnd {
			res = append(res, n)
		}
	}
	return res
}

// ensurePhraseEnding makes the last note a chord tone of at least a quarter
// note when the phrase has room for it.
func ensurePhraseEnding(notes []model.NoteEvent, h harmony.Context, end uint32, low, high int) {
	if len(notes) == 0 {
		return
	}
	last := &notes[len(notes)-1]
	tones := h.ChordTonesAt(last.StartTick)
	if !chord.Contains(tones, int(last.Pitch)) {
		safe := func(p int) bool {
			return h.IsPitchSafe(p, last.StartTick, last.Duration, model.RoleVocal)
		}
		if p, ok := chord.NearestToneWhere(tones, int(last.Pitch), low, high, safe); ok {
			last.Pitch = uint8(p)
		}
	}
	if last.Duration < constants.TickQuarter && end > last.StartTick {
		last.Duration = util.Min(uint32(constants.TickQuarter), end-last.StartTick)
	}
}
