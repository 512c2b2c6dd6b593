package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"taller_backend/internal/events"
	"taller_backend/internal/opportunities/domain"
	"taller_backend/platform/logger"
)

// OpportunityReader is the read surface the listener needs.
type OpportunityReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Oportunidad, error)
}

// Listener schedules a follow-up reminder whenever an opportunity is created
// with a suggested contact date.
type Listener struct {
	scheduler FollowUpScheduler
	repo      OpportunityReader
	log       *logger.Logger
}

func NewListener(scheduler FollowUpScheduler, repo OpportunityReader, log *logger.Logger) *Listener {
	return &Listener{scheduler: scheduler, repo: repo, log: log}
}

// RegisterHandlers subscribes the listener on the event bus.
func (l *Listener) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.OportunidadCreada{}.EventName(), events.HandlerFunc(l.handleOportunidadCreada))
}

func (l *Listener) handleOportunidadCreada(ctx context.Context, event events.Event) error {
	created, ok := event.(events.OportunidadCreada)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	opp, err := l.repo.GetByID(ctx, created.OportunidadID)
	if err != nil {
		return err
	}
	if opp.FechaContactoSugerida == nil {
		return nil
	}

	if err := l.scheduler.ScheduleFollowUp(ctx, opp.ID, *opp.FechaContactoSugerida); err != nil {
		return fmt.Errorf("schedule follow-up for %s: %w", opp.ID, err)
	}

	l.log.Info("follow-up scheduled",
		"oportunidad_id", opp.ID,
		"run_at", opp.FechaContactoSugerida.Format("2006-01-02"),
	)
	return nil
}
