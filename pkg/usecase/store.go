package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/incidex/pkg/domain/interfaces"
	"github.com/secmon-lab/incidex/pkg/domain/model"
	"github.com/secmon-lab/incidex/pkg/domain/types"
	"github.com/secmon-lab/incidex/pkg/utils/async"
)

// Notice messages for each store operation
const (
	NoticeRefreshFailed = "Failed to fetch incidents"
	NoticeCreated       = "Incident created successfully"
	NoticeCreateFailed  = "Failed to create incident"
	NoticeLoadFailed    = "Failed to fetch incident details"
	NoticeUpdated       = "Incident updated successfully"
	NoticeUpdateFailed  = "Failed to update incident"
	NoticeDeleted       = "Incident deleted successfully"
	NoticeDeleteFailed  = "Failed to delete incident"
)

// Store keeps the client-side view of the backend's incidents. Each transition
// is applied under a lock, so Snapshot never sees a half-applied change. Two
// operations running at the same time are not ordered against each other: the
// result applied last wins.
type Store struct {
	api      interfaces.IncidentAPI
	notifier interfaces.Notifier

	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int

	tasks async.Group
}

// StoreOption is a functional option for configuring Store
type StoreOption func(*Store)

// WithNotifier sets where operation notices are sent
func WithNotifier(n interfaces.Notifier) StoreOption {
	return func(s *Store) {
		s.notifier = n
	}
}

// NewStore creates an empty store backed by api
func NewStore(api interfaces.IncidentAPI, opts ...StoreOption) *Store {
	s := &Store{
		api:      api,
		notifier: &LogNotifier{},
		state:    State{Incidents: []*model.Incident{}},
		subs:     make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current state. The returned value must not be modified.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to receive every new snapshot. Call the returned
// function to stop receiving them.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Wait blocks until every notice dispatched so far has been delivered
func (s *Store) Wait() {
	s.tasks.Wait()
}

// Refresh replaces the incident list with the backend's
func (s *Store) Refresh(ctx context.Context) error {
	return s.run(ctx, OpRefresh, begin(), NoticeRefreshFailed, "", func() (transition, error) {
		incidents, err := s.api.List(ctx)
		if err != nil {
			return nil, err
		}
		return setIncidents(incidents), nil
	})
}

// Create submits a draft and puts the new incident at the head of the list.
// Input is not validated here; see model.ValidateDraft.
func (s *Store) Create(ctx context.Context, draft model.Draft) (*model.Incident, error) {
	var created *model.Incident
	err := s.run(ctx, OpCreate, begin(), NoticeCreateFailed, NoticeCreated, func() (transition, error) {
		x, err := s.api.Create(ctx, draft)
		if err != nil {
			return nil, err
		}
		if x == nil {
			return nil, goerr.New("backend returned no incident")
		}
		created = x
		return addIncident(x), nil
	})
	if err != nil {
		return nil, err
	}
	return created.Clone(), nil
}

// Load fetches one incident and selects it
func (s *Store) Load(ctx context.Context, id types.IncidentID) (*model.Incident, error) {
	var loaded *model.Incident
	err := s.run(ctx, OpLoad, beginLoad(id), NoticeLoadFailed, "", func() (transition, error) {
		x, err := s.api.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if x == nil {
			return nil, goerr.New("backend returned no incident", goerr.V("id", id))
		}
		loaded = x
		return setSelected(x), nil
	})
	if err != nil {
		return nil, err
	}
	return loaded.Clone(), nil
}

// Update changes the fields set in patch and refreshes the list entry and the
// selection for that incident
func (s *Store) Update(ctx context.Context, id types.IncidentID, patch model.Patch) (*model.Incident, error) {
	var updated *model.Incident
	err := s.run(ctx, OpUpdate, begin(), NoticeUpdateFailed, NoticeUpdated, func() (transition, error) {
		x, err := s.api.Update(ctx, id, patch)
		if err != nil {
			return nil, err
		}
		if x == nil {
			return nil, goerr.New("backend returned no incident", goerr.V("id", id))
		}
		if x.ID.IsEmpty() {
			// Some backends omit the ID in update responses
			x = x.Clone()
			x.ID = id
		}
		updated = x
		return updateIncident(x), nil
	})
	if err != nil {
		return nil, err
	}
	return updated.Clone(), nil
}

// Remove deletes an incident, dropping it from the list and the selection
func (s *Store) Remove(ctx context.Context, id types.IncidentID) error {
	return s.run(ctx, OpRemove, begin(), NoticeDeleteFailed, NoticeDeleted, func() (transition, error) {
		if err := s.api.Remove(ctx, id); err != nil {
			return nil, err
		}
		return deleteIncident(id), nil
	})
}

// run applies start, performs op and applies its result or the failure. The
// loading flag is cleared on every path, including a panic in op.
func (s *Store) run(ctx context.Context, name Op, start transition, failNotice, okNotice string, op func() (transition, error)) error {
	s.apply(start)

	settled := false
	defer func() {
		if !settled {
			s.apply(settle())
		}
	}()

	next, err := op()
	if err != nil {
		s.apply(fail(name, err.Error()))
		settled = true
		s.notify(ctx, model.Notice{Level: model.NoticeError, Message: failNotice, Detail: err.Error()})
		return err
	}

	s.apply(next)
	settled = true
	if okNotice != "" {
		s.notify(ctx, model.Notice{Level: model.NoticeSuccess, Message: okNotice})
	}
	return nil
}

func (s *Store) apply(t transition) {
	s.mu.Lock()
	s.state = t(s.state)
	snapshot := s.state
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func (s *Store) notify(ctx context.Context, notice model.Notice) {
	if s.notifier == nil {
		return
	}

	logger := ctxlog.From(ctx)
	logger.Debug("dispatching notice", "level", notice.Level, "message", notice.Message)

	s.tasks.Go(ctx, "notify", func(ctx context.Context) error {
		if err := s.notifier.Notify(ctx, notice); err != nil {
			return goerr.Wrap(err, "failed to deliver notice",
				goerr.V("message", notice.Message))
		}
		return nil
	})
}
