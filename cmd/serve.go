package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/motif"
	"github.com/jsphweid/melodex/preset"
	"github.com/jsphweid/melodex/song"
	"github.com/jsphweid/melodex/util"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

var servePresets preset.Set
var port int

// maxCandidates bounds the candidate search one request can ask for.
const maxCandidates = 100

func init() {
	serveCmd.Flags().IntVar(&port, "port", 8080, "port to listen on")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves song generation over http",
	Long:  `Serves POST /generate and GET /presets`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := LoadServeFiles(); err != nil {
			return err
		}
		addr := fmt.Sprintf(":%d", port)
		slog.Info("listening", "addr", addr, "presets", len(servePresets))
		return http.ListenAndServe(addr, NewRouter())
	},
}

type GenerateRequest struct {
	Seed       int64    `json:"seed"`
	Preset     string   `json:"preset"`
	Key        string   `json:"key"`
	Strategy   string   `json:"strategy"`
	Form       []string `json:"form"`
	BPM        float64  `json:"bpm"`
	VocalLow   int      `json:"vocal_low"`
	VocalHigh  int      `json:"vocal_high"`
	Candidates int      `json:"candidates"`
}

type GenerateResponse struct {
	SessionID string             `json:"session_id"`
	Key       int                `json:"key"`
	BPM       float64            `json:"bpm"`
	Sections  []model.Section    `json:"sections"`
	Tracks    []model.Track      `json:"tracks"`
	Motif     *motif.GlobalMotif `json:"motif"`
}

// LoadServeFiles loads the presets the handlers use.
func LoadServeFiles() error {
	s, err := loadPresets()
	if err != nil {
		return err
	}
	servePresets = s
	return nil
}

func NewRouter() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/generate", HandleGenerate).Methods("POST")
	router.HandleFunc("/presets", HandlePresets).Methods("GET")
	return cors.Default().Handler(router)
}

func (r GenerateRequest) config() (song.Config, error) {
	cfg := song.DefaultConfig()
	cfg.Presets = servePresets
	cfg.Seed = r.Seed
	cfg.Candidates = util.Clamp(r.Candidates, 0, maxCandidates)
	if r.Preset != "" {
		cfg.Preset = r.Preset
	}
	if r.BPM > 0 {
		cfg.BPM = r.BPM
	}
	if r.VocalLow > 0 || r.VocalHigh > 0 {
		cfg.VocalLow, cfg.VocalHigh = r.VocalLow, r.VocalHigh
	}
	var err error
	if r.Key != "" {
		if cfg.Key, err = song.ParseKey(r.Key); err != nil {
			return cfg, err
		}
	}
	if r.Strategy != "" {
		if cfg.Strategy, err = song.ParseStrategy(r.Strategy); err != nil {
			return cfg, err
		}
	}
	if len(r.Form) > 0 {
		cfg.Form = nil
		for _, name := range r.Form {
			t, ok := model.ParseSectionType(name)
			if !ok {
				return cfg, fmt.Errorf("unknown section type %q", name)
			}
			cfg.Form = append(cfg.Form, t)
		}
	}
	return cfg, nil
}

func HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var input GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Could not decode request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	cfg, err := input.config()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s, err := song.Generate(cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GenerateResponse{
		SessionID: s.Session.ID,
		Key:       s.Key,
		BPM:       s.BPM,
		Sections:  s.Sections,
		Tracks:    s.Tracks,
		Motif:     s.Session.GlobalMotif,
	})
}

func HandlePresets(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(servePresets.Names())
}
