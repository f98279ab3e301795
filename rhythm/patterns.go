package rhythm

// Pattern is a fixed rhythm cell used for hooks. Cells are whole beats long and
// their last onset leaves at least one beat.
type Pattern struct {
	Name      string
	Beats     float64
	Positions []Position
}

func cell(name string, beats float64, onsets ...[2]float64) Pattern {
	p := Pattern{Name: name, Beats: beats}
	for _, o := range onsets {
		p.Positions = append(p.Positions, Position{Beat: o[0], Eighths: o[1], Strong: IsStrongBeat(o[0])})
	}
	return p
}

// HookPatterns is the table a song picks its hook rhythm from, once.
var HookPatterns = []Pattern{
	cell("straight", 4, [2]float64{0, 2}, [2]float64{1, 1}, [2]float64{1.5, 1}, [2]float64{2, 4}),
	cell("push", 4, [2]float64{0, 1}, [2]float64{0.5, 1}, [2]float64{1, 1}, [2]float64{1.5, 3}, [2]float64{3, 2}),
	cell("long-short", 4, [2]float64{0, 3}, [2]float64{1.5, 1}, [2]float64{2, 4}),
	cell("call", 8, [2]float64{0, 1}, [2]float64{0.5, 1}, [2]float64{1, 2}, [2]float64{2, 2}, [2]float64{4, 1}, [2]float64{4.5, 1}, [2]float64{5, 2}, [2]float64{6, 4}),
	cell("syncopated", 4, [2]float64{0, 1}, [2]float64{0.5, 2}, [2]float64{1.5, 1}, [2]float64{2, 2}, [2]float64{3, 2}),
}
