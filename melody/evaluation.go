package melody

import (
	"log/slog"
	"math/rand"
	"sort"

	"github.com/jsphweid/melodex/evaluate"
	"github.com/jsphweid/melodex/harmony"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/motif"
	"github.com/jsphweid/melodex/preset"
)

// Candidate is one whole-section melody and its combined score.
type Candidate struct {
	Notes   []model.NoteEvent
	Score   float64
	session *Session
}

// Score rates notes as 0.4 style, 0.4 culling and 0.2 bias, plus similarity to
// the song motif weighted by section type.
func (d *Designer) Score(notes []model.NoteEvent, ctx SectionContext, h harmony.Context) float64 {
	style := evaluate.StyleScore(notes, h, ctx.Style.Weights)
	culling := evaluate.CullingScore(notes, ctx.VocalLow, ctx.VocalHigh)
	bias := evaluate.BiasScore(notes, ctx.Style.Bias, ctx.VocalLow, ctx.VocalHigh)
	sim := 0.0
	if gm := d.Session.GlobalMotif; gm != nil && len(notes) >= 2 {
		ref := motif.Transform(*gm, motif.TransformFor(ctx.Section.Type))
		sim = motif.Similarity(ref, motif.ExtractGlobalMotif(notes))
	}
	return evaluate.Total(style, culling, bias, sim, ctx.Section.Type)
}

// EvaluateCandidates generates n candidates, each with its own copy of the
// session so that caches filled by losers are thrown away.
func (d *Designer) EvaluateCandidates(ctx SectionContext, h harmony.Context, n int, rng *rand.Rand) []Candidate {
	res := make([]Candidate, 0, n)
	for i := 0; i < n; i++ {
		cd := &Designer{Session: d.Session.Clone()}
		notes := cd.GenerateSection(ctx, h, rng)
		res = append(res, Candidate{Notes: notes, Score: cd.Score(notes, ctx, h), session: cd.Session})
	}
	return res
}

// SelectCandidate drops the lower half by score and draws from the rest with
// probability proportional to score. It returns an index into cands.
func SelectCandidate(cands []Candidate, rng *rand.Rand) int {
	if len(cands) == 0 {
		return -1
	}
	order := make([]int, len(cands))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return cands[order[a]].Score > cands[order[b]].Score
	})
	kept := order[:(len(order)+1)/2]

	total := 0.0
	for _, i := range kept {
		if s := cands[i].Score; s > 0 {
			total += s
		}
	}
	if total <= 0 {
		return kept[0]
	}
	r := rng.Float64() * total
	for _, i := range kept {
		if s := cands[i].Score; s > 0 {
			r -= s
			if r < 0 {
				return i
			}
		}
	}
	return kept[len(kept)-1]
}

// GenerateSectionWithEvaluation runs the candidate search for a section. n <= 0
// uses the section's default candidate count. The winner's session becomes the
// designer's session; the first chorus also fixes the song's global motif.
func (d *Designer) GenerateSectionWithEvaluation(ctx SectionContext, h harmony.Context, n int, rng *rand.Rand) []model.NoteEvent {
	if n <= 0 {
		n = preset.CandidateCount(ctx.Section.Type)
	}
	cands := d.EvaluateCandidates(ctx, h, n, rng)
	best := SelectCandidate(cands, rng)
	if best < 0 {
		return nil
	}
	win := cands[best]
	*d.Session = *win.session
	if d.Session.GlobalMotif == nil && ctx.Section.Type == model.SectionChorus && len(win.Notes) >= 2 {
		gm := motif.ExtractGlobalMotif(win.Notes)
		d.Session.GlobalMotif = &gm
	}
	slog.Debug("section melody selected",
		"section", ctx.Section.Name,
		"candidates", n,
		"score", win.Score,
		"notes", len(win.Notes))
	return win.Notes
}
