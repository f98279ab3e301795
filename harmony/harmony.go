// Package harmony is the shared harmonic state of a song: the chord timeline
// plus the registry of notes already committed by other tracks.
package harmony

import (
	"github.com/jsphweid/melodex/chord"
	"github.com/jsphweid/melodex/model"
)

// Context is what track generators may ask about the song's harmony.
type Context interface {
	DegreeAt(tick uint32) int
	ChordTonesAt(tick uint32) []int
	RootAt(tick uint32) int
	IsSecondaryDominantAt(tick uint32) bool
	NextChangeTick(afterTick uint32) uint32
	AnalyzeBoundary(pitch int, start, duration uint32) chord.Boundary
	IsPitchSafe(pitch int, start, duration uint32, exclude model.TrackRole) bool
	HasBassCollision(pitch int, start, duration uint32, threshold int) bool
	ResolveSafePitch(desired int, start, duration uint32, role model.TrackRole, low, high int) (int, Strategy)
	PitchClassesFromTrackAt(tick uint32, role model.TrackRole) []int
	RegisterNote(start, duration uint32, pitch int, role model.TrackRole)
	RegisterTrack(notes []model.NoteEvent, role model.TrackRole)
	ClearNotes()
}

// Harmony joins a timeline and a registry. One instance lives for a whole
// generation pass and is passed by pointer to every track generator.
type Harmony struct {
	*chord.Timeline
	*Registry
}

var _ Context = (*Harmony)(nil)

func New(tl *chord.Timeline) *Harmony {
	return &Harmony{Timeline: tl, Registry: NewRegistry(tl)}
}

func (h *Harmony) ResolveSafePitch(desired int, start, duration uint32, role model.TrackRole, low, high int) (int, Strategy) {
	return Resolve(h.Registry, h.Timeline, desired, start, duration, role, low, high)
}
