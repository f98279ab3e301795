package harmony

import (
	"sort"

	"github.com/jsphweid/melodex/chord"
	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/util"
)

// Priority ranks whose notes other tracks have to avoid. Notes of a track with
// PriorityNone never block anybody.
type Priority uint8

const (
	PriorityNone Priority = iota
	PriorityLowest
	PriorityMedium
	PriorityHighest
)

func (p Priority) String() string {
	names := [...]string{"none", "lowest", "medium", "highest"}
	if int(p) < len(names) {
		return names[p]
	}
	return "unknown"
}

type registeredNote struct {
	start uint32
	end   uint32
	pitch int
	role  model.TrackRole
}

// Registry is the append-only record of every committed note of the song.
// It is not safe for concurrent use.
type Registry struct {
	timeline   *chord.Timeline
	notes      []registeredNote
	priorities [model.NumRoles]Priority
	open       int
}

// NewRegistry creates an empty registry. timeline may be nil, in which case
// only the interval rules apply.
func NewRegistry(timeline *chord.Timeline) *Registry {
	r := &Registry{timeline: timeline}
	for i := range r.priorities {
		r.priorities[i] = PriorityMedium
	}
	r.priorities[model.RoleDrums] = PriorityNone
	r.priorities[model.RoleSE] = PriorityNone
	return r
}

func (r *Registry) SetPriority(role model.TrackRole, p Priority) {
	if role < model.NumRoles {
		r.priorities[role] = p
	}
}

func (r *Registry) PriorityOf(role model.TrackRole) Priority {
	if role >= model.NumRoles {
		return PriorityNone
	}
	return r.priorities[role]
}

func (r *Registry) RegisterNote(start, duration uint32, pitch int, role model.TrackRole) {
	if duration == 0 {
		return
	}
	r.notes = append(r.notes, registeredNote{start: start, end: start + duration, pitch: pitch, role: role})
}

func (r *Registry) RegisterTrack(notes []model.NoteEvent, role model.TrackRole) {
	for _, n := range notes {
		r.RegisterNote(n.StartTick, n.Duration, int(n.Pitch), role)
	}
}

func (r *Registry) ClearNotes() {
	r.notes = r.notes[:0]
}

func (r *Registry) ClearTrack(role model.TrackRole) {
	kept := r.notes[:0]
	for _, n := range r.notes {
		if n.role != role {
			kept = append(kept, n)
		}
	}
	r.notes = kept
}

func (r *Registry) Len() int {
	return len(r.notes)
}

// blocking returns the notes overlapping [start, start+duration) that a track
// other than exclude has to respect.
func (r *Registry) blocking(start, duration uint32, exclude model.TrackRole) []registeredNote {
	end := start + util.Max(duration, 1)
	var res []registeredNote
	for _, n := range r.notes {
		if n.role == exclude || n.role.IsPercussive() || r.PriorityOf(n.role) == PriorityNone {
			continue
		}
		if n.start < end && start < n.end {
			res = append(res, n)
		}
	}
	return res
}

func isDissonant(a, b int) bool {
	d := util.PitchClass(a - b)
	return d == 1 || d == 11
}

// IsPitchSafe is false when an overlapping note of another track forms a
// minor 2nd or major 7th (in any octave) with pitch. With a timeline, a
// tritone against the bass is also unsafe unless pitch is a chord tone.
func (r *Registry) IsPitchSafe(pitch int, start, duration uint32, exclude model.TrackRole) bool {
	var tones []int
	if r.timeline != nil {
		tones = r.timeline.ChordTonesAt(start)
	}
	for _, n := range r.blocking(start, duration, exclude) {
		if isDissonant(pitch, n.pitch) {
			return false
		}
		if tones != nil && n.role == model.RoleBass && util.PitchClass(pitch-n.pitch) == 6 && !chord.Contains(tones, pitch) {
			return false
		}
	}
	return true
}

// HasBassCollision applies the stricter low-register rule: below MIDI 60 a pitch
// collides with any bass note within threshold semitones or an octave doubling of it.
func (r *Registry) HasBassCollision(pitch int, start, duration uint32, threshold int) bool {
	if pitch >= constants.BassRegisterCeiling {
		return false
	}
	end := start + util.Max(duration, 1)
	for _, n := range r.notes {
		if n.role != model.RoleBass || !(n.start < end && start < n.end) {
			continue
		}
		d := util.Abs(pitch - n.pitch)
		if d <= threshold || d%12 == 0 {
			return true
		}
	}
	return false
}

// PitchClassesFromTrackAt returns the sorted pitch classes role is sounding at tick.
func (r *Registry) PitchClassesFromTrackAt(tick uint32, role model.TrackRole) []int {
	seen := make(map[int]bool)
	for _, n := range r.notes {
		if n.role == role && tick >= n.start && tick < n.end {
			seen[util.PitchClass(n.pitch)] = true
		}
	}
	return util.GetKeys(seen)
}

// SoundingPitches lists the pitches of other pitched tracks overlapping the range.
func (r *Registry) SoundingPitches(start, duration uint32, exclude model.TrackRole) []int {
	var res []int
	for _, n := range r.blocking(start, duration, exclude) {
		res = append(res, n.pitch)
	}
	sort.Ints(res)
	return res
}
