// Package evaluate scores finished candidate melodies.
package evaluate

import (
	"math"

	"github.com/jsphweid/melodex/chord"
	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/util"
)

// ChordSource is the part of the harmony the evaluator needs.
type ChordSource interface {
	ChordTonesAt(tick uint32) []int
}

// Weights balances the five style axes. They need not sum to one.
type Weights struct {
	Singability float64 `yaml:"singability"`
	ChordTone   float64 `yaml:"chord_tone"`
	Contour     float64 `yaml:"contour"`
	Surprise    float64 `yaml:"surprise"`
	Repetition  float64 `yaml:"repetition"`
}

// BiasWeights are target ratios a style leans towards, each 0..1.
type BiasWeights struct {
	Stepwise float64 `yaml:"stepwise"`
	Register float64 `yaml:"register"`
	Sustain  float64 `yaml:"sustain"`
}

func intervals(notes []model.NoteEvent) []int {
	var res []int
	for i := 1; i < len(notes); i++ {
		res = append(res, int(notes[i].Pitch)-int(notes[i-1].Pitch))
	}
	return res
}

// Singability is 1 when the average interval is between 2 and 4 semitones.
func Singability(notes []model.NoteEvent) float64 {
	ivs := intervals(notes)
	if len(ivs) == 0 {
		return 0.5
	}
	sum := 0
	for _, iv := range ivs {
		sum += util.Abs(iv)
	}
	avg := float64(sum) / float64(len(ivs))
	switch {
	case avg < 2:
		return 0.6 + 0.2*avg
	case avg > 4:
		return math.Max(0, 1-(avg-4)*0.15)
	}
	return 1
}

func isStrongTick(tick uint32) bool {
	inBar := tick % constants.TicksPerBar
	return inBar == 0 || inBar == 2*constants.TicksPerBeat
}

// ChordToneRatio is the share of strong-beat notes that are chord tones.
func ChordToneRatio(notes []model.NoteEvent, cs ChordSource) float64 {
	strong, hits := 0, 0
	for _, n := range notes {
		if !isStrongTick(n.StartTick) {
			continue
		}
		strong++
		if chord.Contains(cs.ChordTonesAt(n.StartTick), int(n.Pitch)) {
			hits++
		}
	}
	if strong == 0 {
		return 0.5
	}
	return float64(hits) / float64(strong)
}

// ContourScore rewards an arch, a wave or a closing descent.
func ContourScore(notes []model.NoteEvent) float64 {
	n := len(notes)
	if n < 3 {
		return 0.4
	}
	peak := 0
	for i, note := range notes {
		if note.Pitch > notes[peak].Pitch {
			peak = i
		}
	}
	pos := float64(peak) / float64(n-1)
	if pos >= 0.3 && pos <= 0.7 {
		return 1
	}
	changes, dir := 0, 0
	for _, iv := range intervals(notes) {
		s := util.Sign(iv)
		if s != 0 && dir != 0 && s != dir {
			changes++
		}
		if s != 0 {
			dir = s
		}
	}
	if changes >= 2 {
		return 0.8
	}
	if notes[n-1].Pitch < notes[0].Pitch {
		return 0.7
	}
	return 0.4
}

// SurpriseScore wants one or two large leaps per melody.
func SurpriseScore(notes []model.NoteEvent) float64 {
	leaps := 0
	for _, iv := range intervals(notes) {
		if util.Abs(iv) >= 7 {
			leaps++
		}
	}
	switch {
	case leaps == 0:
		return 0.5
	case leaps <= 2:
		return 1
	case leaps == 3:
		return 0.6
	}
	return math.Max(0.2, 0.6-0.1*float64(leaps-3))
}

func segmentSimilarity(a, b []int) float64 {
	n := util.Min(len(a), len(b))
	if n == 0 {
		return 0
	}
	same := 0
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			same++
		}
	}
	return float64(same) / float64(util.Max(len(a), len(b)))
}

// RepetitionScore measures an AAAB layout over four equal segments.
func RepetitionScore(notes []model.NoteEvent) float64 {
	if len(notes) < 8 {
		return 0.3
	}
	q := len(notes) / 4
	var segs [4][]int
	for i := 0; i < 4; i++ {
		end := (i + 1) * q
		if i == 3 {
			end = len(notes)
		}
		segs[i] = intervals(notes[i*q : end])
	}
	repeat := (segmentSimilarity(segs[0], segs[1]) + segmentSimilarity(segs[0], segs[2])) / 2
	contrast := 1 - segmentSimilarity(segs[0], segs[3])
	return 0.7*repeat + 0.3*contrast
}

func StyleScore(notes []model.NoteEvent, cs ChordSource, w Weights) float64 {
	total := w.Singability + w.ChordTone + w.Contour + w.Surprise + w.Repetition
	if total <= 0 {
		return 0
	}
	s := w.Singability*Singability(notes) +
		w.ChordTone*ChordToneRatio(notes, cs) +
		w.Contour*ContourScore(notes) +
		w.Surprise*SurpriseScore(notes) +
		w.Repetition*RepetitionScore(notes)
	return s / total
}

// CullingScore starts at 1 and collects penalties for unsingable traits and
// bonuses for cohesion. It is independent of style preference.
func CullingScore(notes []model.NoteEvent, low, high int) float64 {
	if len(notes) == 0 {
		return 0
	}
	score := 1.0
	pitches := model.Pitches(notes)

	// register: time spent at the edges of the range
	edge := 0
	for _, p := range pitches {
		if p < low+2 || p > high-2 {
			edge++
		}
	}
	score -= 0.3 * float64(edge) / float64(len(pitches))

	// monotony
	run, longest := 1, 1
	unique := map[int]bool{pitches[0]: true}
	for i := 1; i < len(pitches); i++ {
		unique[pitches[i]] = true
		if pitches[i] == pitches[i-1] {
			run++
			longest = util.Max(longest, run)
		} else {
			run = 1
		}
	}
	if longest >= 4 {
		score -= 0.1 * float64(longest-3)
	}
	if len(pitches) >= 6 && len(unique) < 3 {
		score -= 0.2
	}

	// zig-zagging by large steps
	ivs := intervals(notes)
	for i := 1; i < len(ivs); i++ {
		if util.Sign(ivs[i])*util.Sign(ivs[i-1]) < 0 && util.Abs(ivs[i]) >= 3 && util.Abs(ivs[i-1]) >= 3 {
			score -= 0.05
		}
	}

	// one clear peak
	hi, hiCount := pitches[0], 0
	for _, p := range pitches {
		if p > hi {
			hi, hiCount = p, 0
		}
		if p == hi {
			hiCount++
		}
	}
	if hiCount == 1 {
		score += 0.1
	}

	if hasRepeatedFigure(ivs) {
		score += 0.1
	}

	if len(ivs) > 0 {
		sum := 0
		for _, iv := range ivs {
			sum += util.Abs(iv)
		}
		if float64(sum)/float64(len(ivs)) <= 4 {
			score += 0.05
		}
	}
	return util.Clamp(score, 0, 1.25)
}

// hasRepeatedFigure reports whether some run of three intervals occurs twice.
func hasRepeatedFigure(ivs []int) bool {
	seen := make(map[[3]int]bool)
	for i := 0; i+3 <= len(ivs); i++ {
		k := [3]int{ivs[i], ivs[i+1], ivs[i+2]}
		if seen[k] {
			return true
		}
		seen[k] = true
	}
	return false
}

// BiasScore is 1 when the melody matches the style's target ratios.
func BiasScore(notes []model.NoteEvent, b BiasWeights, low, high int) float64 {
	if len(notes) == 0 {
		return 0
	}
	ivs := intervals(notes)
	step := 0
	for _, iv := range ivs {
		if util.Abs(iv) <= 2 {
			step++
		}
	}
	stepRatio := 0.0
	if len(ivs) > 0 {
		stepRatio = float64(step) / float64(len(ivs))
	}
	reg := 0.5
	if high > low {
		reg = (util.Mean(model.Pitches(notes)) - float64(low)) / float64(high-low)
	}
	sustained := 0
	for _, n := range notes {
		if n.Duration >= constants.TickQuarter {
			sustained++
		}
	}
	sustain := float64(sustained) / float64(len(notes))
	dist := math.Abs(stepRatio-b.Stepwise) + math.Abs(reg-b.Register) + math.Abs(sustain-b.Sustain)
	return math.Max(0, 1-dist/3)
}

// MotifBonusWeight is how much similarity to the song motif counts per section.
func MotifBonusWeight(t model.SectionType) float64 {
	switch t {
	case model.SectionChorus:
		return 0.35
	case model.SectionB:
		return 0.2
	case model.SectionA:
		return 0.15
	case model.SectionOutro:
		return 0.12
	case model.SectionBridge:
		return 0.05
	}
	return 0.1
}

// Total combines the axes: 0.4 style, 0.4 culling, 0.2 bias plus the motif bonus.
func Total(style, culling, bias, motifSimilarity float64, t model.SectionType) float64 {
	return 0.4*style + 0.4*culling + 0.2*bias + MotifBonusWeight(t)*motifSimilarity
}
