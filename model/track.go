package model

type TrackRole uint8

const (
	RoleVocal TrackRole = iota
	RoleChord
	RoleBass
	RoleMotif
	RoleArpeggio
	RoleAux
	RoleDrums
	RoleSE
	NumRoles
)

// RoleNone is used as the excluded track when nothing should be excluded.
const RoleNone TrackRole = 255

func (r TrackRole) String() string {
	names := [...]string{"vocal", "chord", "bass", "motif", "arpeggio", "aux", "drums", "se"}
	if int(r) < len(names) {
		return names[r]
	}
	return "none"
}

// IsPercussive is true for tracks whose pitches carry no harmonic meaning.
func (r TrackRole) IsPercussive() bool {
	return r == RoleDrums || r == RoleSE
}

type TrackMask uint16

const AllTracks TrackMask = 1<<NumRoles - 1

func MaskOf(roles ...TrackRole) TrackMask {
	var m TrackMask
	for _, r := range roles {
		m |= 1 << r
	}
	return m
}

func (m TrackMask) Has(r TrackRole) bool {
	if r >= NumRoles {
		return false
	}
	return m&(1<<r) != 0
}

type Mood uint8

const (
	MoodStraightPop Mood = iota
	MoodBallad
	MoodEnergeticDance
	MoodDramatic
	MoodChill
)

func (m Mood) String() string {
	names := [...]string{"straight-pop", "ballad", "energetic-dance", "dramatic", "chill"}
	if int(m) < len(names) {
		return names[m]
	}
	return "unknown"
}

func ParseMood(s string) (Mood, bool) {
	for m := MoodStraightPop; m <= MoodChill; m++ {
		if m.String() == s {
			return m, true
		}
	}
	return MoodStraightPop, false
}

// SlowHarmony is true for moods whose chords change every two bars.
func (m Mood) SlowHarmony() bool {
	return m == MoodBallad || m == MoodChill
}

// Track is one rendered part of a song.
type Track struct {
	Role    TrackRole   `json:"role"`
	Channel uint8       `json:"channel"`
	Program uint8       `json:"program"`
	Notes   []NoteEvent `json:"notes"`
}

func (t Track) Name() string {
	return t.Role.String()
}

// EndTick is the end of the last sounding note.
func (t Track) EndTick() uint32 {
	var end uint32
	for _, n := range t.Notes {
		if n.EndTick() > end {
			end = n.EndTick()
		}
	}
	return end
}
