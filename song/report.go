package song

import (
	"github.com/jsphweid/melodex/evaluate"
	"github.com/jsphweid/melodex/model"
)

// SectionReport is how the evaluator rates the vocal of one section.
type SectionReport struct {
	Section model.Section
	Notes   int
	Style   float64
	Culling float64
	Bias    float64
}

// Report rates the vocal section by section, the same way candidates were rated.
func (s *Song) Report() []SectionReport {
	v, ok := s.Track(model.RoleVocal)
	if !ok {
		return nil
	}
	v.Notes = transpose(v.Notes, -s.shift)

	var res []SectionReport
	for _, sec := range s.Sections {
		var notes []model.NoteEvent
		for _, n := range v.Notes {
			if sec.Contains(n.StartTick) {
				notes = append(notes, n)
			}
		}
		r := SectionReport{Section: sec, Notes: len(notes)}
		if len(notes) > 0 {
			r.Style = evaluate.StyleScore(notes, s.Harmony, s.Preset.Style.Weights)
			r.Culling = evaluate.CullingScore(notes, s.vocalLow, s.vocalHigh)
			r.Bias = evaluate.BiasScore(notes, s.Preset.Style.Bias, s.vocalLow, s.vocalHigh)
		}
		res = append(res, r)
	}
	return res
}
