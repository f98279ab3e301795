package sample

import (
	"testing"

	"github.com/jsphweid/melodex/model"
	"github.com/stretchr/testify/assert"
)

func TestCreate(t *testing.T) {
	tracks := []model.Track{{Role: model.RoleVocal, Notes: []model.NoteEvent{
		{StartTick: 0, Duration: 960, Pitch: 60},
		{StartTick: 1920, Duration: 480, Pitch: 62},
		{StartTick: 3600, Duration: 960, Pitch: 64},
		{StartTick: 3840, Duration: 480, Pitch: 65},
	}}}

	res := Create(tracks, 1920, 3840)

	assert := assert.New(t)
	assert.Len(res, 1)
	assert.Equal(model.RoleVocal, res[0].Role)
	assert.Equal([]model.NoteEvent{
		{StartTick: 0, Duration: 480, Pitch: 62},
		{StartTick: 1680, Duration: 240, Pitch: 64},
	}, res[0].Notes)
	assert.Len(tracks[0].Notes, 4, "input is untouched")

	sections := model.BuildSections([]model.SectionType{model.SectionA, model.SectionChorus}, []uint8{1, 1}, model.AllTracks)
	assert.Equal(res, Section(tracks, sections[1]))
}
