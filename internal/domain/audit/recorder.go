package audit

import (
	"context"

	"github.com/google/uuid"

	"reserva-go/pkg/logger"
)

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	List(ctx context.Context, entity, entityID string, limit int) ([]Entry, error)
}

// Recorder writes audit entries without ever failing the caller. A lost
// audit row is logged and swallowed, the business write already happened.
type Recorder struct {
	repo Repository
	log  logger.Logger
}

func NewRecorder(repo Repository, log logger.Logger) *Recorder {
	return &Recorder{repo: repo, log: log}
}

func (r *Recorder) Record(ctx context.Context, actorID, actorEmail, action, entity, entityID, detail, ip string) {
	if r == nil || r.repo == nil {
		return
	}
	e := &Entry{
		ID:         uuid.NewString(),
		ActorID:    actorID,
		ActorEmail: actorEmail,
		Action:     action,
		Entity:     entity,
		EntityID:   entityID,
		Detail:     detail,
		IP:         ip,
	}
	if err := r.repo.Create(ctx, e); err != nil {
		r.log.Error("audit write failed",
			"action", action, "entity", entity, "entity_id", entityID, "error", err)
	}
}

func (r *Recorder) History(ctx context.Context, entity, entityID string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return r.repo.List(ctx, entity, entityID, limit)
}
