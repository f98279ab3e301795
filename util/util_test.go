package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPitchClass(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(0, PitchClass(60))
	assert.Equal(11, PitchClass(-1))
	assert.Equal(7, PitchClass(67))
}

func TestClampAndSign(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(5, Clamp(9, 0, 5))
	assert.Equal(0.5, Clamp(0.1, 0.5, 1.0))
	assert.Equal(-1, Sign(-3))
	assert.Equal(0, Sign(0))
	assert.Equal(3, Abs(-3))
	assert.Equal(uint8(79), ClampPitch(90, 57, 79))
}

func TestGetKeysSorted(t *testing.T) {
	keys := GetKeys(map[string]int{"b": 1, "a": 2, "c": 3})
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestBinaryRoundTrip(t *testing.T) {
	type payload struct {
		Name  string
		Steps []int
	}
	path := filepath.Join(t.TempDir(), "p.bin")
	in := payload{Name: "hook", Steps: []int{0, 2, -1}}

	assert := assert.New(t)
	assert.NoError(CreateBinary(path, in))
	out, err := ReadBinary[payload](path)
	assert.NoError(err)
	assert.Equal(in, out)

	_, err = ReadBinary[payload](filepath.Join(t.TempDir(), "missing.bin"))
	assert.Error(err)
}

func TestGatherAllMidiPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.mid", "b.midi", "c.txt"} {
		os.WriteFile(filepath.Join(dir, name), []byte{}, 0666)
	}
	paths, err := GatherAllMidiPaths(dir, 0)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(paths, 2)

	paths, err = GatherAllMidiPaths(dir, 1)
	assert.NoError(err)
	assert.Len(paths, 1)
}
