// Package melody writes vocal lines section by section on top of the shared
// harmony.
package melody

import (
	"log/slog"
	"math/rand"
	"sort"

	"github.com/jsphweid/melodex/chord"
	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/constraint"
	"github.com/jsphweid/melodex/harmony"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/motif"
	"github.com/jsphweid/melodex/phrase"
	"github.com/jsphweid/melodex/preset"
	"github.com/jsphweid/melodex/rhythm"
	"github.com/jsphweid/melodex/util"
)

// SectionContext is everything one section of melody depends on besides the
// harmony and the session.
type SectionContext struct {
	Section        model.Section
	Template       preset.MelodyTemplate
	Style          preset.StyleMelodyParams
	VocalLow       int
	VocalHigh      int
	HarmonicRhythm uint32
	// PrevPitch is the last vocal pitch before this section, -1 for none.
	PrevPitch int
}

func (c SectionContext) tessitura() (int, int) {
	return c.Template.TessituraRange(c.VocalLow, c.VocalHigh)
}

// Designer generates melodies. It reads and fills the song's Session.
type Designer struct {
	Session *Session
}

func NewDesigner(s *Session) *Designer {
	if s == nil {
		s = NewSession()
	}
	return &Designer{Session: s}
}

// GenerateSection writes one section. The result is sorted, never overlaps and
// is not registered anywhere; committing it is up to the caller.
func (d *Designer) GenerateSection(ctx SectionContext, h harmony.Context, rng *rand.Rand) []model.NoteEvent {
	sec := ctx.Section
	if !sec.TrackMask.Has(model.RoleVocal) || sec.Bars == 0 {
		return nil
	}
	low, high := ctx.tessitura()
	prev := ctx.PrevPitch
	var notes []model.NoteEvent
	for _, ph := range phrase.Plan(sec, ctx.HarmonicRhythm, ctx.Template.Phrase, rng) {
		var pn []model.NoteEvent
		if ph.IsHook {
			pn = d.GenerateHook(ctx, ph, h, rng)
		} else {
			pn = d.GenerateMelodyPhrase(ctx, ph, prev, h, rng)
		}
		if len(pn) == 0 {
			continue
		}
		if prev >= 0 {
			limitCrossPhrase(prev, &pn[0], h, ctx.VocalLow, ctx.VocalHigh)
		}
		notes = append(notes, pn...)
		prev = int(pn[len(pn)-1].Pitch)
	}

	for i := range notes {
		n := &notes[i]
		if chord.Contains(h.ChordTonesAt(n.StartTick), int(n.Pitch)) {
			continue
		}
		if p := chord.SnapToScale(int(n.Pitch)); h.IsPitchSafe(p, n.StartTick, n.Duration, model.RoleVocal) {
			n.Pitch = uint8(p)
		}
	}
	finalSweep(notes, ctx, h, low, high)
	clampToChords(notes, h, ctx.VocalLow, ctx.VocalHigh)
	return notes
}

// limitCrossPhrase keeps the jump into a new phrase within a major 6th.
func limitCrossPhrase(prev int, first *model.NoteEvent, h harmony.Context, low, high int) {
	if util.Abs(int(first.Pitch)-prev) <= constants.MaxCrossPhraseInterval {
		return
	}
	lo := util.Max(low, prev-constants.MaxCrossPhraseInterval)
	hi := util.Min(high, prev+constants.MaxCrossPhraseInterval)
	tones := h.ChordTonesAt(first.StartTick)
	safe := func(p int) bool {
		return h.IsPitchSafe(p, first.StartTick, first.Duration, model.RoleVocal)
	}
	if p, ok := chord.NearestToneWhere(tones, int(first.Pitch), lo, hi, safe); ok {
		first.Pitch = uint8(p)
	} else if p, ok := chord.NearestTone(tones, int(first.Pitch), lo, hi); ok {
		first.Pitch = uint8(p)
	}
}

// finalSweep puts chord tones on downbeats and re-checks intervals over the
// whole section. Appoggiaturas survive.
func finalSweep(notes []model.NoteEvent, ctx SectionContext, h harmony.Context, low, high int) {
	var st constraint.State
	for i := range notes {
		n := &notes[i]
		tones := h.ChordTonesAt(n.StartTick)
		c := &constraint.NoteContext{
			Prev:              -1,
			Tick:              n.StartTick,
			ChordTones:        tones,
			Root:              h.RootAt(n.StartTick),
			Low:               util.Min(low, int(n.Pitch)),
			High:              util.Max(high, int(n.Pitch)),
			SectionType:       ctx.Section.Type,
			LeapCeiling:       ctx.Style.MaxLeap,
			IsDownbeat:        n.StartTick%constants.TicksPerBar == 0,
			PreserveDirection: ctx.Style.PreserveDirection,
		}
		if i > 0 {
			c.Prev = int(notes[i-1].Pitch)
		}
		p := int(n.Pitch)
		if c.IsDownbeat && i+1 < len(notes) && constraint.IsAppoggiatura(p, int(notes[i+1].Pitch), tones) {
			continue
		}
		p = constraint.DownbeatChordTone(p, c, &st, nil)
		p = constraint.ClampMaxInterval(p, c, &st, nil)
		if p != int(n.Pitch) && h.IsPitchSafe(p, n.StartTick, n.Duration, model.RoleVocal) {
			n.Pitch = uint8(p)
		}
	}
}

type movement uint8

const (
	moveSame movement = iota
	moveStepUp
	moveStepDown
	moveTarget
)

// chooseMovement draws the next movement. dir forces a contour: 1 rising,
// -1 falling, 0 free.
func chooseMovement(tpl preset.MelodyTemplate, progress float64, dir int, sameRun int, rng *rand.Rand) movement {
	r := rng.Float64()
	same := tpl.PlateauRatio
	if sameRun >= 2 {
		same = 0
	}
	if r < same {
		return moveSame
	}
	if r < same+tpl.TargetProb {
		return moveTarget
	}
	up := 0.55
	if progress >= 0.5 {
		up = 0.45
	}
	switch dir {
	case 1:
		up = 0.7
	case -1:
		up = 0.3
	}
	if rng.Float64() < up {
		return moveStepUp
	}
	return moveStepDown
}

func applyMovement(m movement, prev, target, maxStep int, rng *rand.Rand) int {
	steps := 1 + rng.Intn(util.Max(maxStep, 1))
	switch m {
	case moveSame:
		return prev
	case moveStepUp:
		return chord.ScaleStep(prev, steps)
	case moveStepDown:
		return chord.ScaleStep(prev, -steps)
	}
	if target == prev {
		return prev
	}
	return chord.ScaleStep(prev, util.Sign(target-prev))
}

func stageContour(s phrase.ArcStage) int {
	switch s {
	case phrase.StageClimax:
		return 1
	case phrase.StageResolution:
		return -1
	}
	return 0
}

// GenerateMelodyPhrase writes an ordinary phrase. prevPitch is the last pitch
// before it, -1 for none.
func (d *Designer) GenerateMelodyPhrase(ctx SectionContext, ph phrase.Phrase, prevPitch int, h harmony.Context, rng *rand.Rand) []model.NoteEvent {
	tpl := ctx.Template
	positions := rhythm.Generate(tpl.Rhythm, ph.Beats(), rng)
	if len(positions) == 0 {
		return nil
	}
	low, high := ctx.tessitura()
	center := (low + high) / 2
	pipe := constraint.NewPipeline()
	fragment := d.motifFragment(ctx, rng)
	dir := stageContour(ph.Stage)

	var notes []model.NoteEvent
	prev, sameRun := -1, 0
	var prevDur uint32
	for i, pos := range positions {
		tick := ph.NoteStart() + pos.StartTick()
		dur := pos.DurationTicks()
		isLast := i == len(positions)-1

		var desired int
		first := prev < 0
		if first {
			var via int
			desired, via = d.initialPitch(ctx, ph, prevPitch, h, low, high)
			// the connecting step takes an eighth off the front of the first slot
			if via >= 0 && dur >= 2*constants.TickEighth {
				via = util.Clamp(via, ctx.VocalLow, ctx.VocalHigh)
				if p, ok := pickSafe(h, via, prevPitch, tick, constants.TickEighth, ctx.VocalLow, ctx.VocalHigh); ok {
					notes = append(notes, model.NoteEvent{
						StartTick: tick,
						Duration:  constants.TickEighth,
						Pitch:     uint8(p),
						Velocity:  velocity(pos, false, ph.Stage, p, low, high),
					})
					prev, prevDur = p, constants.TickEighth
					tick += constants.TickEighth
					dur -= constants.TickEighth
				}
			}
		}
		tones := h.ChordTonesAt(tick)

		switch {
		case first:
		case i-1 < len(fragment):
			desired = prev + fragment[i-1]
		default:
			target, _ := chord.NearestTone(tones, center, low, high)
			m := chooseMovement(tpl, float64(i)/float64(len(positions)), dir, sameRun, rng)
			desired = applyMovement(m, prev, target, tpl.MaxStep, rng)
		}

		c := &constraint.NoteContext{
			Prev:              prev,
			PrevDuration:      prevDur,
			Tick:              tick,
			ChordTones:        tones,
			Root:              h.RootAt(tick),
			Low:               low,
			High:              high,
			SectionType:       ctx.Section.Type,
			LeapCeiling:       ctx.Style.MaxLeap,
			PreferStepwise:    ctx.Style.PreferStepwise,
			IsDownbeat:        tick%constants.TicksPerBar == 0,
			PreserveDirection: ctx.Style.PreserveDirection,
		}
		p := pipe.Apply(desired, c, rng)
		if isLast {
			p = resolvePhraseEnd(p, c, ph.Stage, tpl.PhraseEndResolution, rng)
		}
		if !chord.Contains(tones, p) {
			p = chord.SnapToScale(p)
		}
		p = util.Clamp(p, ctx.VocalLow, ctx.VocalHigh)

		safe, ok := pickSafe(h, p, prev, tick, dur, ctx.VocalLow, ctx.VocalHigh)
		if !ok {
			if !isLast {
				slog.Debug("dropped note", "tick", tick, "pitch", p)
				continue
			}
			// the phrase ending is kept, clashing if it must
			safe, _ = h.ResolveSafePitch(p, tick, dur, model.RoleVocal, ctx.VocalLow, ctx.VocalHigh)
		}
		if safe == prev {
			sameRun++
		} else {
			sameRun = 0
		}
		notes = append(notes, model.NoteEvent{
			StartTick: tick,
			Duration:  dur,
			Pitch:     uint8(safe),
			Velocity:  velocity(pos, isLast, ph.Stage, safe, low, high),
		})
		prev, prevDur = safe, dur
	}
	shapeDurations(notes, h, ph.NoteEnd())
	fixIsolated(notes, h, ctx.VocalLow, ctx.VocalHigh)
	clampToChords(notes, h, ctx.VocalLow, ctx.VocalHigh)
	return notes
}

// initialPitch picks the first pitch of a phrase. via is a scale tone to sound
// on the way when the jump from prevPitch is wider than a fifth, -1 otherwise.
func (d *Designer) initialPitch(ctx SectionContext, ph phrase.Phrase, prevPitch int, h harmony.Context, low, high int) (pitch, via int) {
	start := ph.NoteStart()
	tones := h.ChordTonesAt(start)
	center := (low + high) / 2
	t := ctx.Section.Type

	if ph.Index == 0 && (t == model.SectionChorus || t == model.SectionB) {
		anchors := []int{chord.Major[0], chord.Major[4], chord.Major[5]}
		pc := anchors[d.Session.AnchorCycle%len(anchors)]
		d.Session.AnchorCycle++
		if chord.Contains(tones, pc) {
			if p, ok := chord.NearestTone([]int{pc}, center, low, high); ok {
				return p, -1
			}
		}
		if p, ok := chord.NearestTone(tones, center+pc-util.PitchClass(center), low, high); ok {
			return p, -1
		}
	}
	if prevPitch >= 0 {
		p, ok := chord.NearestTone(tones, prevPitch, low, high)
		if !ok {
			return util.Clamp(prevPitch, low, high), -1
		}
		if util.Abs(p-prevPitch) > 7 {
			return p, chord.SnapToScale((p + prevPitch) / 2)
		}
		return p, -1
	}
	if p, ok := chord.NearestTone(tones, center, low, high); ok {
		return p, -1
	}
	return center, -1
}

// motifFragment returns 2-4 intervals of the song motif, varied for the
// section, or nil. Choruses carry the hook instead.
func (d *Designer) motifFragment(ctx SectionContext, rng *rand.Rand) []int {
	gm := d.Session.GlobalMotif
	if gm == nil || ctx.Section.Type == model.SectionChorus {
		return nil
	}
	if rng.Float64() >= ctx.Template.MotifFragmentProb {
		return nil
	}
	v := motif.Transform(*gm, motif.TransformFor(ctx.Section.Type))
	if len(v.Intervals) < 2 {
		return nil
	}
	n := util.Min(2+rng.Intn(3), len(v.Intervals))
	from := rng.Intn(len(v.Intervals) - n + 1)
	return v.Intervals[from : from+n]
}

// resolvePhraseEnd lands the phrase on a chord tone, on the root when the
// section is closing.
func resolvePhraseEnd(p int, c *constraint.NoteContext, stage phrase.ArcStage, prob float64, rng *rand.Rand) int {
	if rng.Float64() >= prob {
		return p
	}
	tones := c.ChordTones
	if stage == phrase.StageResolution {
		tones = []int{c.Root}
	}
	if r, ok := chord.NearestTone(tones, p, c.Low, c.High); ok {
		return r
	}
	return p
}

func velocity(pos rhythm.Position, isLast bool, stage phrase.ArcStage, pitch, low, high int) uint8 {
	v := 80
	if pos.Strong {
		v += 8
	}
	if isLast {
		v -= 6
	}
	if stage == phrase.StageClimax {
		v += 6
	}
	if high > low {
		v += 8 * (pitch - low) / (high - low)
	}
	return uint8(util.Clamp(v, 40, 127))
}

// pickSafe returns the candidate closest to desired and to the line that no
// other track clashes with.
func pickSafe(h harmony.Context, desired, prev int, tick, dur uint32, low, high int) (int, bool) {
	if h.IsPitchSafe(desired, tick, dur, model.RoleVocal) {
		return desired, true
	}
	var candidates []int
	tones := h.ChordTonesAt(tick)
	for p := util.Max(low, desired-7); p <= util.Min(high, desired+7); p++ {
		if p == desired {
			continue
		}
		if chord.Contains(tones, p) || (chord.IsScaleTone(p) && util.Abs(p-desired) <= 2) {
			candidates = append(candidates, p)
		}
	}
	cost := func(p int) int {
		c := 2 * util.Abs(p-desired)
		if prev >= 0 {
			c += util.Abs(p - prev)
		}
		return c
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return cost(candidates[i]) < cost(candidates[j])
	})
	for _, p := range candidates {
		if h.IsPitchSafe(p, tick, dur, model.RoleVocal) {
			return p, true
		}
	}
	return 0, false
}

// shapeDurations applies the gate and keeps notes inside the phrase and away
// from dissonant chord changes.
func shapeDurations(notes []model.NoteEvent, h harmony.Context, phraseEnd uint32) {
	for i := range notes {
		g := constraint.GateContext{IsPhraseEnd: i == len(notes)-1}
		if i+1 < len(notes) {
			g.HasNext = true
			g.Interval = int(notes[i+1].Pitch) - int(notes[i].Pitch)
		}
		d := constraint.ShapeDuration(notes[i].Duration, g)
		if g.IsPhraseEnd {
			d = util.Min(d, notes[i].Duration)
		}
		clamped := constraint.ClampToBoundary(h, int(notes[i].Pitch), notes[i].StartTick, d, phraseEnd)
		if g.IsPhraseEnd && clamped < constants.TickQuarter {
			clamped = d
		}
		notes[i].Duration = util.Max(clamped, 1)
	}
}

// fixIsolated pulls a note that leaps away and straight back towards the
// middle of its neighbours.
func fixIsolated(notes []model.NoteEvent, h harmony.Context, low, high int) {
	for i := 1; i+1 < len(notes); i++ {
		a, b, c := int(notes[i-1].Pitch), int(notes[i].Pitch), int(notes[i+1].Pitch)
		if util.Abs(b-a) < 7 || util.Abs(c-b) < 7 {
			continue
		}
		n := notes[i]
		mid := (a + c) / 2
		if p, ok := chord.NearestToneWhere(h.ChordTonesAt(n.StartTick), mid, low, high, func(p int) bool {
			return h.IsPitchSafe(p, n.StartTick, n.Duration, model.RoleVocal)
		}); ok {
			notes[i].Pitch = uint8(p)
		}
	}
}

// clampToChords ends every note at the first chord change that would turn it
// into an avoid note. A note that would be cut below a quarter moves to a tone
// of the next chord instead, when one is free.
func clampToChords(notes []model.NoteEvent, h harmony.Context, low, high int) {
	for i := range notes {
		n := &notes[i]
		b := h.AnalyzeBoundary(int(n.Pitch), n.StartTick, n.Duration)
		if b.SafeDuration >= n.Duration {
			continue
		}
		if b.SafeDuration < constants.TickQuarter {
			keeps := func(p int) bool {
				return h.IsPitchSafe(p, n.StartTick, n.Duration, model.RoleVocal) &&
					h.AnalyzeBoundary(p, n.StartTick, n.Duration).SafeDuration == n.Duration
			}
			if p, ok := chord.NearestToneWhere(h.ChordTonesAt(b.BoundaryTick), int(n.Pitch), low, high, keeps); ok {
				n.Pitch = uint8(p)
				continue
			}
		}
		n.Duration = util.Max(b.SafeDuration, 1)
	}
}
