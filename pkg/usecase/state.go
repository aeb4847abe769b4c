package usecase

import (
	"github.com/secmon-lab/incidex/pkg/domain/model"
	"github.com/secmon-lab/incidex/pkg/domain/types"
)

// State is an immutable snapshot of the incident store. Transitions never modify
// a State or anything it points to; they build a new one.
type State struct {
	Incidents []*model.Incident // Newest-created first after a create
	Loading   bool
	Error     string          // Display-ready message of the last failure, empty if none
	FailedOp  Op              // Operation that set Error
	Selected  *model.Incident // Incident shown in the detail view
}

// Op names a store operation
type Op string

const (
	OpRefresh Op = "refresh"
	OpCreate  Op = "create"
	OpLoad    Op = "load"
	OpUpdate  Op = "update"
	OpRemove  Op = "remove"
)

// HasError reports whether the last operation failed
func (s State) HasError() bool {
	return s.Error != ""
}

// ListFailed reports whether the last failure was a list refresh. Failures of
// single-incident operations leave the list itself intact.
func (s State) ListFailed() bool {
	return s.HasError() && s.FailedOp == OpRefresh
}

// Find returns the incident with the given ID from the list
func (s State) Find(id types.IncidentID) *model.Incident {
	for _, x := range s.Incidents {
		if x.ID == id {
			return x
		}
	}
	return nil
}

// transition is one of the closed set of state changes below
type transition func(State) State

// begin marks an operation as in flight and clears the stale error
func begin() transition {
	return func(s State) State {
		s.Loading = true
		s.Error = ""
		s.FailedOp = ""
		return s
	}
}

// beginLoad is begin, also dropping a selection that belongs to another incident
func beginLoad(id types.IncidentID) transition {
	return func(s State) State {
		s = begin()(s)
		if s.Selected != nil && s.Selected.ID != id {
			s.Selected = nil
		}
		return s
	}
}

// settle clears the loading flag without touching anything else
func settle() transition {
	return func(s State) State {
		s.Loading = false
		return s
	}
}

// done ends an operation successfully
func done(s State) State {
	s.Loading = false
	s.Error = ""
	s.FailedOp = ""
	return s
}

func fail(op Op, msg string) transition {
	return func(s State) State {
		s.Error = msg
		s.FailedOp = op
		s.Loading = false
		return s
	}
}

func setIncidents(incidents []*model.Incident) transition {
	list := make([]*model.Incident, 0, len(incidents))
	for _, x := range incidents {
		if x != nil {
			list = append(list, x.Clone())
		}
	}
	return func(s State) State {
		s.Incidents = list
		return done(s)
	}
}

func addIncident(x *model.Incident) transition {
	x = x.Clone()
	return func(s State) State {
		list := make([]*model.Incident, 0, len(s.Incidents)+1)
		list = append(list, x)
		for _, cur := range s.Incidents {
			if cur.ID != x.ID {
				list = append(list, cur)
			}
		}
		s.Incidents = list
		return done(s)
	}
}

func setSelected(x *model.Incident) transition {
	x = x.Clone()
	return func(s State) State {
		s.Selected = x
		return done(s)
	}
}

func updateIncident(x *model.Incident) transition {
	x = x.Clone()
	return func(s State) State {
		list := make([]*model.Incident, len(s.Incidents))
		for i, cur := range s.Incidents {
			if cur.ID == x.ID {
				list[i] = x
			} else {
				list[i] = cur
			}
		}
		s.Incidents = list
		if s.Selected != nil && s.Selected.ID == x.ID {
			s.Selected = x
		}
		return done(s)
	}
}

func deleteIncident(id types.IncidentID) transition {
	return func(s State) State {
		list := make([]*model.Incident, 0, len(s.Incidents))
		for _, cur := range s.Incidents {
			if cur.ID != id {
				list = append(list, cur)
			}
		}
		s.Incidents = list
		if s.Selected != nil && s.Selected.ID == id {
			s.Selected = nil
		}
		return done(s)
	}
}
