package midi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/model"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const drumChannel = 9

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	var blank smf.SMF

	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s = &blank
			e = fmt.Errorf("parsing midi file %s: %v", filepath, r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return &blank, fmt.Errorf("reading midi file: %w", err)
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return &blank, fmt.Errorf("parsing midi file %s: %w", filepath, err)
	}

	return res, nil
}

// TrackNotes returns the notes of every track, converted to the engine's 480
// ticks per beat. Unterminated notes are dropped.
func TrackNotes(s *smf.SMF) [][]model.NoteEvent {
	res := uint64(constants.TicksPerBeat)
	if tf, ok := s.TimeFormat.(smf.MetricTicks); ok && tf > 0 {
		res = uint64(tf)
	}
	scale := func(ticks uint64) uint32 {
		return uint32(ticks * constants.TicksPerBeat / res)
	}

	var all [][]model.NoteEvent
	for _, track := range s.Tracks {
		var notes []model.NoteEvent
		type pending struct {
			start    uint64
			velocity uint8
		}
		open := make(map[uint8]pending)
		var absTicks uint64
		for _, evt := range track {
			absTicks += uint64(evt.Delta)
			var ch, key, vel uint8
			switch {
			case evt.Message.GetNoteOn(&ch, &key, &vel) && vel > 0:
				open[key] = pending{start: absTicks, velocity: vel}
			case evt.Message.GetNoteOff(&ch, &key, &vel),
				evt.Message.GetNoteOn(&ch, &key, &vel):
				p, ok := open[key]
				if !ok {
					continue
				}
				delete(open, key)
				start, end := scale(p.start), scale(absTicks)
				if end <= start {
					continue
				}
				notes = append(notes, model.NoteEvent{StartTick: start, Duration: end - start, Pitch: key, Velocity: p.velocity})
			}
		}
		sort.SliceStable(notes, func(i, j int) bool {
			return notes[i].StartTick < notes[j].StartTick
		})
		all = append(all, notes)
	}
	return all
}

// ExtractNotes picks the busiest track and reduces it to a single line: the
// highest pitch at each onset, cut short where the next note starts.
func ExtractNotes(s *smf.SMF) []model.NoteEvent {
	var busiest []model.NoteEvent
	for _, notes := range TrackNotes(s) {
		if len(notes) > len(busiest) {
			busiest = notes
		}
	}

	var line []model.NoteEvent
	for _, n := range busiest {
		if k := len(line) - 1; k >= 0 && line[k].StartTick == n.StartTick {
			if n.Pitch > line[k].Pitch {
				line[k] = n
			}
			continue
		}
		line = append(line, n)
	}
	for i := 0; i+1 < len(line); i++ {
		if line[i].EndTick() > line[i+1].StartTick {
			line[i].Duration = line[i+1].StartTick - line[i].StartTick
		}
	}
	return line
}

type event struct {
	tick uint32
	off  bool
	msg  midi.Message
}

func renderTrack(t model.Track) smf.Track {
	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(t.Name()))
	channel := t.Channel
	if t.Role.IsPercussive() {
		channel = drumChannel
	} else {
		tr.Add(0, midi.ProgramChange(channel, t.Program))
	}

	events := make([]event, 0, len(t.Notes)*2)
	for _, n := range t.Notes {
		if n.Duration == 0 {
			continue
		}
		vel := n.Velocity
		if vel == 0 {
			vel = 1
		}
		events = append(events,
			event{tick: n.StartTick, msg: midi.NoteOn(channel, n.Pitch, vel)},
			event{tick: n.EndTick(), off: true, msg: midi.NoteOff(channel, n.Pitch)})
	}
	// offs first so repeated pitches retrigger
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].off && !events[j].off
	})

	var last uint32
	for _, e := range events {
		tr.Add(e.tick-last, e.msg)
		last = e.tick
	}
	tr.Close(0)
	return tr
}

// WriteSong renders the tracks as a type 1 SMF with a conductor track.
func WriteSong(w io.Writer, tracks []model.Track, bpm float64) error {
	if bpm <= 0 {
		return errors.New("bpm must be positive")
	}
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(constants.TicksPerBeat)

	var conductor smf.Track
	conductor.Add(0, smf.MetaMeter(constants.BeatsPerBar, 4))
	conductor.Add(0, smf.MetaTempo(bpm))
	conductor.Close(0)
	if err := s.Add(conductor); err != nil {
		return fmt.Errorf("adding conductor track: %w", err)
	}
	for _, t := range tracks {
		if err := s.Add(renderTrack(t)); err != nil {
			return fmt.Errorf("adding %s track: %w", t.Name(), err)
		}
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("writing midi: %w", err)
	}
	return nil
}

// WriteFile is WriteSong to a new file at path.
func WriteFile(path string, tracks []model.Track, bpm float64) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating midi file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return WriteSong(f, tracks, bpm)
}
