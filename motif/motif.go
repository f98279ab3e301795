// Package motif extracts and transforms the melodic signature of a song.
package motif

import (
	"math"

	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/util"
)

type Contour uint8

const (
	ContourPlateau Contour = iota
	ContourAscending
	ContourDescending
	ContourPeak
	ContourValley
)

func (c Contour) String() string {
	names := [...]string{"plateau", "ascending", "descending", "peak", "valley"}
	if int(c) < len(names) {
		return names[c]
	}
	return "unknown"
}

// GlobalMotif is the compact signature of a song's hook: up to 8 signed
// intervals, up to 8 durations normalized to 1..8 and a contour class.
type GlobalMotif struct {
	Intervals []int   `msgpack:"i" json:"intervals"`
	Rhythm    []int   `msgpack:"r" json:"rhythm"`
	Contour   Contour `msgpack:"c" json:"contour"`
}

func (g GlobalMotif) IsEmpty() bool {
	return len(g.Intervals) == 0 && len(g.Rhythm) == 0
}

func (g GlobalMotif) Clone() GlobalMotif {
	return GlobalMotif{
		Intervals: append([]int(nil), g.Intervals...),
		Rhythm:    append([]int(nil), g.Rhythm...),
		Contour:   g.Contour,
	}
}

// ExtractGlobalMotif reads the signature off the start of notes. The result
// has min(len-1, 8) intervals and min(len, 8) rhythm values.
func ExtractGlobalMotif(notes []model.NoteEvent) GlobalMotif {
	var g GlobalMotif
	n := util.Min(len(notes), constants.MaxMotifLength)
	if n == 0 {
		return g
	}
	for i := 1; i < util.Min(len(notes), constants.MaxMotifLength+1); i++ {
		g.Intervals = append(g.Intervals, int(notes[i].Pitch)-int(notes[i-1].Pitch))
	}

	shortest := notes[0].Duration
	for _, note := range notes[:n] {
		if note.Duration > 0 && (shortest == 0 || note.Duration < shortest) {
			shortest = note.Duration
		}
	}
	for _, note := range notes[:n] {
		v := 1
		if shortest > 0 {
			v = int(math.Round(float64(note.Duration) / float64(shortest)))
		}
		g.Rhythm = append(g.Rhythm, util.Clamp(v, 1, 8))
	}
	g.Contour = ClassifyContour(g.Intervals)
	return g
}

// ClassifyContour looks at the running pitch of an interval sequence.
func ClassifyContour(intervals []int) Contour {
	if len(intervals) == 0 {
		return ContourPlateau
	}
	pitch, hi, lo := 0, 0, 0
	hiAt, loAt := 0, 0
	for i, iv := range intervals {
		pitch += iv
		if pitch > hi {
			hi, hiAt = pitch, i+1
		}
		if pitch < lo {
			lo, loAt = pitch, i+1
		}
	}
	last := len(intervals)
	switch {
	case hiAt > 0 && hiAt < last && hi-pitch >= 2 && hi >= 2:
		return ContourPeak
	case loAt > 0 && loAt < last && pitch-lo >= 2 && lo <= -2:
		return ContourValley
	case pitch >= 2:
		return ContourAscending
	case pitch <= -2:
		return ContourDescending
	}
	return ContourPlateau
}

type TransformKind uint8

const (
	TransformNone TransformKind = iota
	TransformRetrograde
	TransformInversion
	TransformAugmentation
	TransformDiminution
	TransformFragment
)

func (k TransformKind) String() string {
	names := [...]string{"none", "retrograde", "inversion", "augmentation", "diminution", "fragment"}
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// Transform derives a variant of g. Retrograde applied twice gives g back.
func Transform(g GlobalMotif, kind TransformKind) GlobalMotif {
	res := g.Clone()
	switch kind {
	case TransformRetrograde:
		// the reversed pitch line walks every interval backwards
		for i, j := 0, len(res.Intervals)-1; i <= j; i, j = i+1, j-1 {
			res.Intervals[i], res.Intervals[j] = -res.Intervals[j], -res.Intervals[i]
		}
		for i, j := 0, len(res.Rhythm)-1; i < j; i, j = i+1, j-1 {
			res.Rhythm[i], res.Rhythm[j] = res.Rhythm[j], res.Rhythm[i]
		}
	case TransformInversion:
		for i := range res.Intervals {
			res.Intervals[i] = -res.Intervals[i]
		}
	case TransformAugmentation:
		for i := range res.Rhythm {
			res.Rhythm[i] = util.Min(res.Rhythm[i]*2, 8)
		}
	case TransformDiminution:
		for i := range res.Rhythm {
			res.Rhythm[i] = util.Max((res.Rhythm[i]+1)/2, 1)
		}
	case TransformFragment:
		res.Intervals = res.Intervals[:(len(res.Intervals)+1)/2]
		res.Rhythm = res.Rhythm[:(len(res.Rhythm)+1)/2]
	}
	res.Contour = ClassifyContour(res.Intervals)
	return res
}

// TransformFor picks the variant a section type echoes the song motif with.
func TransformFor(t model.SectionType) TransformKind {
	switch t {
	case model.SectionBridge:
		return TransformInversion
	case model.SectionOutro, model.SectionIntro:
		return TransformAugmentation
	case model.SectionB:
		return TransformFragment
	case model.SectionDrop, model.SectionMixBreak:
		return TransformDiminution
	}
	return TransformNone
}

// Similarity compares two signatures, 1 meaning identical.
func Similarity(a, b GlobalMotif) float64 {
	if a.IsEmpty() || b.IsEmpty() {
		return 0
	}
	intervalSim, dirSim := 0.0, 0.0
	if n := util.Min(len(a.Intervals), len(b.Intervals)); n > 0 {
		diff, agree := 0.0, 0
		for i := 0; i < n; i++ {
			diff += math.Min(float64(util.Abs(a.Intervals[i]-b.Intervals[i])), 12)
			if util.Sign(a.Intervals[i]) == util.Sign(b.Intervals[i]) {
				agree++
			}
		}
		intervalSim = 1 - diff/(12*float64(n))
		dirSim = float64(agree) / float64(n)
	}
	rhythmSim := 0.0
	if n := util.Min(len(a.Rhythm), len(b.Rhythm)); n > 0 {
		diff := 0.0
		for i := 0; i < n; i++ {
			diff += float64(util.Abs(a.Rhythm[i] - b.Rhythm[i]))
		}
		rhythmSim = 1 - diff/(7*float64(n))
	}
	contourSim := 0.0
	if a.Contour == b.Contour {
		contourSim = 1
	}
	return 0.35*intervalSim + 0.25*dirSim + 0.25*rhythmSim + 0.15*contourSim
}
