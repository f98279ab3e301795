package harmony

import (
	"log/slog"

	"github.com/jsphweid/melodex/chord"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/util"
)

// Strategy names the fallback step that produced a resolved pitch.
type Strategy uint8

const (
	StrategyNone Strategy = iota
	StrategyActualSounding
	StrategyChordTones
	StrategyConsonantInterval
	StrategyExhaustiveSearch
	StrategyFailed
)

func (s Strategy) String() string {
	names := [...]string{"none", "actual-sounding", "chord-tones", "consonant-interval", "exhaustive-search", "failed"}
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// consonantOffsets is tried in order, most consonant first.
var consonantOffsets = []int{3, -3, 4, -4, 5, -5, 7, -7, 12, -12, 2, -2, 1, -1}

const exhaustiveRange = 24

// Resolve finds a pitch near desired that does not clash with other tracks.
// Every candidate is clamped into [low, high] before it is tested. When nothing
// works desired (clamped) is returned with StrategyFailed: a clash is better
// than an out-of-range note.
func Resolve(reg *Registry, tl *chord.Timeline, desired int, start, duration uint32, role model.TrackRole, low, high int) (int, Strategy) {
	if low > high {
		low, high = high, low
	}
	safe := func(p int) bool {
		return reg.IsPitchSafe(p, start, duration, role)
	}
	clamp := func(p int) int {
		return util.Clamp(p, low, high)
	}

	if p := clamp(desired); safe(p) {
		return p, StrategyNone
	}

	// doubling something that already sounds can not clash with it
	var sounding []int
	for _, p := range reg.SoundingPitches(start, duration, role) {
		sounding = append(sounding, util.PitchClass(p))
	}
	if p, ok := firstSafe(chord.OctaveCandidates(sounding, desired, 2), clamp, safe); ok {
		return p, StrategyActualSounding
	}

	if tl != nil {
		if p, ok := firstSafe(chord.OctaveCandidates(tl.ChordTonesAt(start), desired, 2), clamp, safe); ok {
			return p, StrategyChordTones
		}
	}

	var offsets []int
	for _, o := range consonantOffsets {
		offsets = append(offsets, desired+o)
	}
	if p, ok := firstSafe(offsets, clamp, safe); ok {
		return p, StrategyConsonantInterval
	}

	offsets = offsets[:0]
	for d := 1; d <= exhaustiveRange; d++ {
		offsets = append(offsets, desired+d, desired-d)
	}
	if p, ok := firstSafe(offsets, clamp, safe); ok {
		return p, StrategyExhaustiveSearch
	}

	slog.Debug("no safe pitch", "desired", desired, "tick", start, "role", role.String())
	return clamp(desired), StrategyFailed
}

func firstSafe(candidates []int, clamp func(int) int, safe func(int) bool) (int, bool) {
	for _, c := range candidates {
		if p := clamp(c); safe(p) {
			return p, true
		}
	}
	return 0, false
}
