package model

import (
	"errors"
	"fmt"

	"github.com/jsphweid/melodex/constants"
)

type SectionType uint8

const (
	SectionIntro SectionType = iota
	SectionA
	SectionB
	SectionChorus
	SectionBridge
	SectionInterlude
	SectionOutro
	SectionChant
	SectionMixBreak
	SectionDrop
)

var sectionNames = [...]string{"intro", "a", "b", "chorus", "bridge", "interlude", "outro", "chant", "mixbreak", "drop"}

func (t SectionType) String() string {
	if int(t) < len(sectionNames) {
		return sectionNames[t]
	}
	return "unknown"
}

func ParseSectionType(s string) (SectionType, bool) {
	for i, name := range sectionNames {
		if name == s {
			return SectionType(i), true
		}
	}
	return SectionIntro, false
}

// IsVocalLead is true for sections where the vocal usually carries the song.
func (t SectionType) IsVocalLead() bool {
	switch t {
	case SectionA, SectionB, SectionChorus, SectionBridge:
		return true
	}
	return false
}

type Section struct {
	Type      SectionType `json:"type" yaml:"type"`
	Name      string      `json:"name" yaml:"name"`
	StartTick uint32      `json:"start_tick" yaml:"start_tick"`
	Bars      uint8       `json:"bars" yaml:"bars"`
	TrackMask TrackMask   `json:"track_mask" yaml:"track_mask"`
}

func (s Section) LengthTicks() uint32 {
	return uint32(s.Bars) * constants.TicksPerBar
}

func (s Section) EndTick() uint32 {
	return s.StartTick + s.LengthTicks()
}

func (s Section) Contains(tick uint32) bool {
	return tick >= s.StartTick && tick < s.EndTick()
}

var (
	ErrNoSections          = errors.New("no sections")
	ErrZeroLengthSection   = errors.New("section has zero length")
	ErrOverlappingSections = errors.New("sections overlap or are out of order")
)

// SectionError describes which section of a list broke a precondition.
type SectionError struct {
	Index   int
	Section Section
	Cause   error
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("section %d (%s @%d): %v", e.Index, e.Section.Type, e.Section.StartTick, e.Cause)
}

func (e *SectionError) Unwrap() error {
	return e.Cause
}

// ValidateSections checks the only precondition generation cannot repair.
func ValidateSections(sections []Section) error {
	if len(sections) == 0 {
		return ErrNoSections
	}
	var prevEnd uint32
	for i, s := range sections {
		if s.Bars == 0 {
			return &SectionError{Index: i, Section: s, Cause: ErrZeroLengthSection}
		}
		if i > 0 && s.StartTick < prevEnd {
			return &SectionError{Index: i, Section: s, Cause: ErrOverlappingSections}
		}
		prevEnd = s.EndTick()
	}
	return nil
}

// BuildSections lays the given types out back to back starting at tick 0.
func BuildSections(types []SectionType, bars []uint8, mask TrackMask) []Section {
	var res []Section
	var tick uint32
	for i, t := range types {
		b := uint8(8)
		if i < len(bars) {
			b = bars[i]
		}
		s := Section{Type: t, Name: t.String(), StartTick: tick, Bars: b, TrackMask: mask}
		res = append(res, s)
		tick = s.EndTick()
	}
	return res
}
