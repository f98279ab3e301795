package model

type NoteEvent struct {
	StartTick uint32 `json:"start_tick" msgpack:"s"`
	Duration  uint32 `json:"duration" msgpack:"d"`
	Pitch     uint8  `json:"pitch" msgpack:"p"`
	Velocity  uint8  `json:"velocity" msgpack:"v"`
}

func (n NoteEvent) EndTick() uint32 {
	return n.StartTick + n.Duration
}

// Overlaps reports whether n sounds at any point of [start, end).
func (n NoteEvent) Overlaps(start, end uint32) bool {
	return n.StartTick < end && start < n.EndTick()
}

func Pitches(notes []NoteEvent) []int {
	res := make([]int, len(notes))
	for i, n := range notes {
		res[i] = int(n.Pitch)
	}
	return res
}

func CloneNotes(notes []NoteEvent) []NoteEvent {
	if notes == nil {
		return nil
	}
	res := make([]NoteEvent, len(notes))
	copy(res, notes)
	return res
}
