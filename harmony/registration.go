package harmony

import (
	"errors"
	"log/slog"

	"github.com/jsphweid/melodex/model"
)

var ErrRegistrationFinished = errors.New("track registration already finished")

type registrationState uint8

const (
	statePending registrationState = iota
	stateCommitted
	stateCancelled
)

// Registration tracks one in-progress track generation. Every Registration
// must end in exactly one Commit or Cancel; Registry.OpenGenerations reports
// the ones that did not.
type Registration struct {
	reg   *Registry
	role  model.TrackRole
	state registrationState
}

// BeginGeneration opens a registration for role on the harmony's registry.
func (h *Harmony) BeginGeneration(role model.TrackRole) *Registration {
	return h.Registry.BeginGeneration(role)
}

func (r *Registry) BeginGeneration(role model.TrackRole) *Registration {
	r.open++
	return &Registration{reg: r, role: role}
}

// OpenGenerations is the number of registrations neither committed nor cancelled.
func (r *Registry) OpenGenerations() int {
	return r.open
}

func (g *Registration) Role() model.TrackRole {
	return g.role
}

func (g *Registration) Pending() bool {
	return g.state == statePending
}

// Commit makes notes visible to collision checks of later tracks.
func (g *Registration) Commit(notes []model.NoteEvent) error {
	if g.state != statePending {
		return ErrRegistrationFinished
	}
	g.state = stateCommitted
	g.reg.open--
	g.reg.RegisterTrack(notes, g.role)
	slog.Debug("track registered", "role", g.role.String(), "notes", len(notes))
	return nil
}

func (g *Registration) Cancel() error {
	if g.state != statePending {
		return ErrRegistrationFinished
	}
	g.state = stateCancelled
	g.reg.open--
	slog.Debug("track registration cancelled", "role", g.role.String())
	return nil
}

// Finish commits notes when err is nil and cancels otherwise. It is meant to be
// deferred right after BeginGeneration.
func (g *Registration) Finish(notes []model.NoteEvent, err error) {
	if !g.Pending() {
		return
	}
	if err != nil {
		g.Cancel()
		return
	}
	g.Commit(notes)
}
