package melody

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/motif"
	"github.com/jsphweid/melodex/util"
	"github.com/vmihailenco/msgpack/v5"
)

const sabiHeadLength = 8

// Session is the song-wide memory of melody generation: the chorus hook, its
// head and the global motif. It is owned by the song and reset explicitly.
type Session struct {
	ID              string             `msgpack:"id"`
	Hook            *motif.Motif       `msgpack:"hook"`
	SkeletonIndex   int                `msgpack:"skeleton"`
	HookRhythmIndex int                `msgpack:"hook_rhythm"`
	SabiHead        []model.NoteEvent  `msgpack:"sabi"`
	GlobalMotif     *motif.GlobalMotif `msgpack:"motif"`
	AnchorCycle     int                `msgpack:"anchor"`
}

func NewSession() *Session {
	s := &Session{ID: uuid.NewString()}
	s.Reset()
	return s
}

// Reset drops every cached value but keeps the ID.
func (s *Session) Reset() {
	*s = Session{ID: s.ID, SkeletonIndex: -1, HookRhythmIndex: -1}
}

func (s *Session) Clone() *Session {
	c := *s
	c.Hook = s.Hook.Clone()
	c.SabiHead = model.CloneNotes(s.SabiHead)
	if s.GlobalMotif != nil {
		gm := s.GlobalMotif.Clone()
		c.GlobalMotif = &gm
	}
	return &c
}

func (s *Session) Marshal() ([]byte, error) {
	return msgpack.Marshal(s)
}

func UnmarshalSession(data []byte) (*Session, error) {
	var s Session
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("could not decode session: %w", err)
	}
	return &s, nil
}

// Save writes a snapshot that LoadSession reads back.
func (s *Session) Save(path string) error {
	return util.CreateBinary(path, s)
}

func LoadSession(path string) (*Session, error) {
	s, err := util.ReadBinary[Session](path)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
