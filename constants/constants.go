package constants

import "os"

func GetOutDir() string {
	path := os.Getenv("OUT_PATH")
	if path != "" {
		return path
	}
	return "./out"
}

// GetPresetPath returns an optional preset file. Empty means built-ins only.
func GetPresetPath() string {
	return os.Getenv("PRESET_PATH")
}

const (
	TicksPerBeat  = 480
	BeatsPerBar   = 4
	TicksPerBar   = TicksPerBeat * BeatsPerBar
	TickHalf      = TicksPerBeat * 2
	TickQuarter   = TicksPerBeat
	TickEighth    = TicksPerBeat / 2
	TickSixteenth = TicksPerBeat / 4
)

const (
	MinMidiPitch = 0
	MaxMidiPitch = 127

	DefaultVocalLow  = 57
	DefaultVocalHigh = 79

	// notes below this pitch get the stricter bass-collision rule
	BassRegisterCeiling = 60
)

const (
	// largest interval allowed between the end of one phrase and the start of the next (major 6th)
	MaxCrossPhraseInterval = 9

	// absolute ceiling for any single melodic movement
	MaxMelodicInterval = 12

	LeapThreshold = 5
)

const MaxMotifLength = 8

// NOTE: 120 is only the default for rendering, generation itself is tempo independent
const DefaultBPM = 120
