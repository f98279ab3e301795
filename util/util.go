package util

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jsphweid/melodex/constants"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/exp/constraints"
)

func EnsureOutputDir() (string, error) {
	dir := constants.GetOutDir()
	if err := os.MkdirAll(dir, 0777); err != nil {
		return "", fmt.Errorf("could not create output dir %v: %w", dir, err)
	}
	return dir, nil
}

// GatherAllMidiPaths returns every .mid/.midi file under path. A file path is returned as is.
func GatherAllMidiPaths(path string, maxNum int) ([]string, error) {
	var res []string
	walk := func(s string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if strings.HasSuffix(s, ".mid") || strings.HasSuffix(s, ".midi") {
				if maxNum == 0 || len(res) < maxNum {
					res = append(res, s)
				}
			}
		}
		return nil
	}
	if err := filepath.WalkDir(path, walk); err != nil {
		return nil, err
	}
	return res, nil
}

func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}

func CreateBinary(filename string, data any) error {
	b, err := msgpack.Marshal(data)
	if err != nil {
		return fmt.Errorf("could not encode %v: %w", filename, err)
	}
	if err := os.WriteFile(filename, b, 0666); err != nil {
		return fmt.Errorf("write failed for file %v: %w", filename, err)
	}
	return nil
}

func ReadBinary[A any](path string) (A, error) {
	var data A
	b, err := os.ReadFile(path)
	if err != nil {
		return data, fmt.Errorf("could not load binary file: %w", err)
	}
	if err := msgpack.Unmarshal(b, &data); err != nil {
		return data, fmt.Errorf("could not decode binary file %v: %w", path, err)
	}
	return data, nil
}

type Number interface {
	constraints.Integer | constraints.Float
}

func Min[A Number](num1 A, num2 A) A {
	if num1 > num2 {
		return num2
	}
	return num1
}

func Max[A Number](num1 A, num2 A) A {
	if num1 < num2 {
		return num2
	}
	return num1
}

func Clamp[A Number](v, lo, hi A) A {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Abs[A constraints.Signed | constraints.Float](v A) A {
	if v < 0 {
		return -v
	}
	return v
}

// Sign returns -1, 0 or 1.
func Sign[A constraints.Signed | constraints.Float](v A) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

func Sum[A Number](nums []A) A {
	var total A
	for _, v := range nums {
		total += v
	}
	return total
}

func Mean[A Number](nums []A) float64 {
	if len(nums) == 0 {
		return 0
	}
	return float64(Sum(nums)) / float64(len(nums))
}

// PitchClass is always in 0..11, also for negative input.
func PitchClass(pitch int) int {
	return ((pitch % 12) + 12) % 12
}

func ClampPitch(pitch, low, high int) uint8 {
	return uint8(Clamp(Clamp(pitch, low, high), constants.MinMidiPitch, constants.MaxMidiPitch))
}
