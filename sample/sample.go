package sample

import (
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/util"
)

// Create cuts [start, end) out of every track and moves it to tick 0. Notes
// that started before start are left out, notes running past end are cut.
func Create(tracks []model.Track, start, end uint32) []model.Track {
	var res []model.Track
	for _, track := range tracks {
		newTrack := track
		newTrack.Notes = nil
		for _, n := range track.Notes {
			if n.StartTick < start || n.StartTick >= end {
				continue
			}
			n.Duration = util.Min(n.Duration, end-n.StartTick)
			n.StartTick -= start
			newTrack.Notes = append(newTrack.Notes, n)
		}
		res = append(res, newTrack)
	}
	return res
}

// Section is Create over one section of the form.
func Section(tracks []model.Track, s model.Section) []model.Track {
	return Create(tracks, s.StartTick, s.EndTick())
}
