package cmd

import (
	"testing"

	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/song"
	"github.com/stretchr/testify/assert"
)

func TestGenerateRequestConfig(t *testing.T) {
	t.Run("candidates are bounded", func(t *testing.T) {
		assert := assert.New(t)
		for in, want := range map[int]int{0: 0, 4: 4, 100: 100, 5000: maxCandidates, -3: 0} {
			cfg, err := GenerateRequest{Candidates: in}.config()
			assert.NoError(err)
			assert.Equal(want, cfg.Candidates, "requested %d", in)
		}
	})

	t.Run("fields map onto the config", func(t *testing.T) {
		cfg, err := GenerateRequest{Key: "D", Strategy: "synth-driven", Form: []string{"a", "chorus"}, BPM: 90}.config()

		assert := assert.New(t)
		assert.NoError(err)
		assert.Equal(2, cfg.Key)
		assert.Equal(song.SynthDriven, cfg.Strategy)
		assert.Equal([]model.SectionType{model.SectionA, model.SectionChorus}, cfg.Form)
		assert.Equal(90.0, cfg.BPM)
	})

	t.Run("bad section", func(t *testing.T) {
		_, err := GenerateRequest{Form: []string{"verse?"}}.config()
		assert.Error(t, err)
	})
}
