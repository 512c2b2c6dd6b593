package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"taller_backend/internal/events"
	opprepo "taller_backend/internal/opportunities/repository"
	"taller_backend/platform/apperr"
	"taller_backend/platform/config"
	"taller_backend/platform/logger"
)

// Worker consumes follow-up tasks and announces due follow-ups on the event
// bus. It only announces opportunities that are still open and unconverted at
// the time the task fires.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   opprepo.Repository
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		repo:   opprepo.New(pool),
		bus:    bus,
		log:    log,
	}
	w.mux.HandleFunc(TaskSeguimientoDue, w.handleSeguimientoDue)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleSeguimientoDue(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseSeguimientoDuePayload(task)
	if err != nil {
		return err
	}

	oportunidadID, err := uuid.Parse(payload.OportunidadID)
	if err != nil {
		return fmt.Errorf("parse oportunidad id: %w", err)
	}

	opp, err := w.repo.GetByID(ctx, oportunidadID)
	if err != nil {
		// A deleted row means there is nothing left to follow up on.
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}

	if opp.Estado.IsTerminal() || opp.ConvertidoAServicioID != nil {
		return nil
	}

	return w.bus.PublishSync(ctx, events.SeguimientoVencido{
		BaseEvent:     events.NewBaseEvent(),
		OportunidadID: opp.ID,
		AsignadaA:     opp.AsignadaA,
		Estado:        string(opp.Estado),
	})
}
