package chord

import (
	"sort"

	"github.com/jsphweid/melodex/util"
)

// Major holds the pitch classes of the diatonic major scale on C. Melodies are
// generated in C and transposed afterwards.
var Major = [7]int{0, 2, 4, 5, 7, 9, 11}

func ClampDegree(degree int) int {
	return util.Clamp(degree, 0, 6)
}

// Triad returns the diatonic triad of a degree as pitch classes, root first.
func Triad(degree int) []int {
	d := ClampDegree(degree)
	return []int{Major[d], Major[(d+2)%7], Major[(d+4)%7]}
}

// DominantTriad returns the major triad built on the root of degree. Used for
// secondary dominants where the third is raised.
func DominantTriad(degree int) []int {
	root := Major[ClampDegree(degree)]
	return []int{root, (root + 4) % 12, (root + 7) % 12}
}

// SecondaryDominantOf returns the degree whose root is a fifth above target.
func SecondaryDominantOf(target int) int {
	return (ClampDegree(target) + 4) % 7
}

func IsScaleTone(pitch int) bool {
	pc := util.PitchClass(pitch)
	for _, s := range Major {
		if s == pc {
			return true
		}
	}
	return false
}

// SnapToScale moves pitch to the nearest diatonic tone, preferring down on ties.
func SnapToScale(pitch int) int {
	if IsScaleTone(pitch) {
		return pitch
	}
	if IsScaleTone(pitch - 1) {
		return pitch - 1
	}
	return pitch + 1
}

// ScaleStep moves pitch by steps diatonic degrees. pitch is snapped first.
func ScaleStep(pitch, steps int) int {
	p := SnapToScale(pitch)
	dir := util.Sign(steps)
	for i := 0; i < util.Abs(steps); i++ {
		p += dir
		for !IsScaleTone(p) {
			p += dir
		}
	}
	return p
}

func Contains(pcs []int, pitch int) bool {
	pc := util.PitchClass(pitch)
	for _, c := range pcs {
		if c == pc {
			return true
		}
	}
	return false
}

// TonesInRange lists every pitch in [low, high] whose class is in pcs, ascending.
func TonesInRange(pcs []int, low, high int) []int {
	var res []int
	for p := low; p <= high; p++ {
		if Contains(pcs, p) {
			res = append(res, p)
		}
	}
	return res
}

// NearestTone returns the pitch with a class in pcs closest to target, within
// [low, high]. Ties go down. ok is false when no such pitch exists.
func NearestTone(pcs []int, target, low, high int) (int, bool) {
	return NearestToneWhere(pcs, target, low, high, nil)
}

// NearestToneWhere is NearestTone restricted to pitches accepted by keep.
func NearestToneWhere(pcs []int, target, low, high int, keep func(int) bool) (int, bool) {
	best, found := 0, false
	for _, p := range TonesInRange(pcs, low, high) {
		if keep != nil && !keep(p) {
			continue
		}
		if !found || util.Abs(p-target) < util.Abs(best-target) {
			best, found = p, true
		}
	}
	return best, found
}

// OctaveCandidates spreads the given pitch classes over +-octaves around
// center's octave, sorted by distance to center.
func OctaveCandidates(pcs []int, center, octaves int) []int {
	base := center - util.PitchClass(center)
	var res []int
	for _, pc := range pcs {
		for o := -octaves; o <= octaves; o++ {
			res = append(res, base+pc+12*o)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		di, dj := util.Abs(res[i]-center), util.Abs(res[j]-center)
		if di != dj {
			return di < dj
		}
		return res[i] < res[j]
	})
	return res
}

// IsAvoidNote is true when pitch forms a minor 2nd with any chord tone or a
// tritone with the root.
func IsAvoidNote(pitch int, tones []int, root int) bool {
	pc := util.PitchClass(pitch)
	if Contains(tones, pitch) {
		return false
	}
	for _, t := range tones {
		d := util.PitchClass(pc - t)
		if d == 1 || d == 11 {
			return true
		}
	}
	return util.PitchClass(pc-root) == 6
}
