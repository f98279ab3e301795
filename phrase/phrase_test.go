package phrase

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/jsphweid/melodex/model"
	"github.com/stretchr/testify/assert"
)

func TestPlanCoversSection(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, bars := range []uint8{1, 2, 3, 4, 7, 8, 16} {
		for _, hr := range []uint32{1920, 3840} {
			t.Run(fmt.Sprintf("%d bars every %d", bars, hr), func(t *testing.T) {
				s := model.Section{Type: model.SectionA, StartTick: 7680, Bars: bars}
				ps := Plan(s, hr, DefaultParams, rng)

				assert := assert.New(t)
				assert.NotEmpty(ps)
				assert.Equal(s.StartTick, ps[0].Start)
				assert.Equal(s.EndTick(), ps[len(ps)-1].End)
				for i, p := range ps {
					assert.Equal(i, p.Index)
					assert.GreaterOrEqual(p.Beats(), 1.0)
					if i > 0 {
						assert.Equal(ps[i-1].End, p.Start)
					}
					if i < len(ps)-1 {
						// inner boundaries are chord changes
						assert.Zero((p.End - s.StartTick) % hr)
					}
				}
			})
		}
	}
}

func TestPlanZeroBars(t *testing.T) {
	assert.Nil(t, Plan(model.Section{Type: model.SectionA}, 1920, DefaultParams, rand.New(rand.NewSource(1))))
}

func TestPhraseBarsRoundUpToChordSpans(t *testing.T) {
	s := model.Section{Type: model.SectionB, Bars: 8}
	ps := Plan(s, 3840, Params{Bars: 3}, rand.New(rand.NewSource(1)))

	assert := assert.New(t)
	assert.Len(ps, 2)
	assert.Equal(4, ps[0].Bars)
}

func TestArcStages(t *testing.T) {
	s := model.Section{Type: model.SectionA, Bars: 8}
	ps := Plan(s, 1920, Params{Bars: 2}, rand.New(rand.NewSource(1)))

	assert := assert.New(t)
	assert.Len(ps, 4)
	assert.Equal(StagePresentation, ps[0].Stage)
	assert.Equal(StageDevelopment, ps[1].Stage)
	assert.Equal(StageClimax, ps[2].Stage)
	assert.Equal(StageResolution, ps[3].Stage)
}

func TestHookSlots(t *testing.T) {
	assert := assert.New(t)
	assert.True(IsHookSlot(model.SectionChorus, 0, 2))
	assert.False(IsHookSlot(model.SectionChorus, 2, 3))
	assert.True(IsHookSlot(model.SectionChorus, 2, 4))
	assert.False(IsHookSlot(model.SectionChorus, 1, 4))
	assert.False(IsHookSlot(model.SectionA, 0, 4))
}

func TestAnticipationNeverOnFirstPhrase(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	s := model.Section{Type: model.SectionChorus, Bars: 8}
	seen := false
	for i := 0; i < 50; i++ {
		ps := Plan(s, 1920, Params{Bars: 2, Anticipation: 0.5}, rng)
		assert.False(t, ps[0].Anticipation)
		for _, p := range ps[1:] {
			if p.Anticipation {
				seen = true
				assert.Equal(t, p.Start+480, p.NoteStart())
			}
		}
	}
	assert.True(t, seen)
}
