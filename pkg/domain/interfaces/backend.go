package interfaces

import (
	"context"

	"github.com/secmon-lab/incidex/pkg/domain/model"
	"github.com/secmon-lab/incidex/pkg/domain/types"
)

// IncidentAPI is the triage backend as seen by the incident store
type IncidentAPI interface {
	List(ctx context.Context) ([]*model.Incident, error)
	Get(ctx context.Context, id types.IncidentID) (*model.Incident, error)
	Create(ctx context.Context, draft model.Draft) (*model.Incident, error)
	Update(ctx context.Context, id types.IncidentID, patch model.Patch) (*model.Incident, error)
	Remove(ctx context.Context, id types.IncidentID) error
	Health(ctx context.Context) (map[string]any, error)
}

// Notifier delivers transient notices about store operations
type Notifier interface {
	Notify(ctx context.Context, notice model.Notice) error
}
