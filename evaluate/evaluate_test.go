package evaluate

import (
	"testing"

	"github.com/jsphweid/melodex/chord"
	"github.com/jsphweid/melodex/model"
	"github.com/stretchr/testify/assert"
)

func line(pitches ...int) []model.NoteEvent {
	var res []model.NoteEvent
	for i, p := range pitches {
		res = append(res, model.NoteEvent{StartTick: uint32(i) * 480, Duration: 480, Pitch: uint8(p), Velocity: 90})
	}
	return res
}

func tonic() *chord.Timeline {
	sections := []model.Section{{Type: model.SectionA, Bars: 4}}
	return chord.NewTimeline([]int{0}, sections, 1920)
}

func TestSingability(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(1.0, Singability(line(60, 62, 64, 62, 60)))
	assert.InDelta(0.6, Singability(line(60, 60, 60)), 1e-9)
	assert.InDelta(0.4, Singability(line(60, 68, 60, 68)), 1e-9)
	assert.Equal(0.5, Singability(line(60)))
}

func TestChordToneRatio(t *testing.T) {
	// strong beats are ticks 0 and 960 of every bar
	notes := line(60, 61, 62, 65, 67)
	assert.InDelta(t, 2.0/3, ChordToneRatio(notes, tonic()), 1e-9)
}

func TestContourScore(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(1.0, ContourScore(line(60, 64, 67, 64, 60)))
	assert.Equal(0.7, ContourScore(line(67, 65, 64, 62, 60)))
	assert.Equal(0.4, ContourScore(line(60, 62, 64, 65, 67)))
}

func TestSurpriseScore(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(0.5, SurpriseScore(line(60, 62, 64)))
	assert.Equal(1.0, SurpriseScore(line(60, 67, 65, 64)))
	assert.Less(SurpriseScore(line(60, 67, 60, 67, 60, 67)), 0.6)
}

func TestRepetitionPrefersAAAB(t *testing.T) {
	aaab := line(60, 62, 64, 60, 62, 64, 60, 62, 64, 67, 65, 60)
	random := line(60, 67, 62, 65, 71, 64, 60, 69, 62, 72, 59, 64)
	assert.Greater(t, RepetitionScore(aaab), RepetitionScore(random))
	assert.Equal(t, 0.3, RepetitionScore(line(60, 62)))
}

func TestCullingPunishesMonotony(t *testing.T) {
	flat := line(60, 60, 60, 60, 60, 60, 60, 60)
	shaped := line(60, 62, 64, 65, 67, 65, 64, 62)

	assert := assert.New(t)
	assert.Less(CullingScore(flat, 55, 79), CullingScore(shaped, 55, 79))
	assert.Less(CullingScore(line(56, 78, 56, 78, 56, 78), 55, 79), CullingScore(shaped, 55, 79))
	assert.Equal(0.0, CullingScore(nil, 55, 79))
}

func TestBiasScore(t *testing.T) {
	notes := line(60, 62, 64, 62, 62)
	perfect := BiasWeights{Stepwise: 1, Register: 0.25, Sustain: 1}

	assert := assert.New(t)
	assert.InDelta(1.0, BiasScore(notes, perfect, 56, 80), 1e-9)
	assert.Less(BiasScore(notes, BiasWeights{}, 56, 80), 0.7)
}

func TestStyleScoreRange(t *testing.T) {
	w := Weights{Singability: 0.3, ChordTone: 0.25, Contour: 0.2, Surprise: 0.1, Repetition: 0.15}
	s := StyleScore(line(60, 64, 67, 64, 60, 62, 64, 60), tonic(), w)

	assert := assert.New(t)
	assert.Greater(s, 0.0)
	assert.LessOrEqual(s, 1.0)
	assert.Equal(0.0, StyleScore(line(60, 62), tonic(), Weights{}))
}

func TestMotifBonusWeight(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(0.35, MotifBonusWeight(model.SectionChorus))
	assert.Equal(0.05, MotifBonusWeight(model.SectionBridge))
	assert.InDelta(0.4+0.4+0.2+0.35, Total(1, 1, 1, 1, model.SectionChorus), 1e-9)
}
