package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	opprepo "taller_backend/internal/opportunities/repository"
	"taller_backend/platform/config"
	"taller_backend/platform/logger"
)

const sweepInterval = time.Hour

// FollowUpDispatcher periodically sweeps the database for open, unconverted
// opportunities whose suggested contact date has passed and enqueues their
// reminders. It backstops the creation-time scheduling: rows that predate the
// scheduler, or whose scheduled task was lost, still get announced. The
// per-day task id keeps the sweep from duplicating reminders.
type FollowUpDispatcher struct {
	client *asynq.Client
	queue  string
	repo   opprepo.Repository
	log    *logger.Logger
}

func NewFollowUpDispatcher(cfg config.SchedulerConfig, pool *pgxpool.Pool, log *logger.Logger) (*FollowUpDispatcher, error) {
	opt, err := redisClientOpt(cfg)
	if err != nil {
		return nil, err
	}

	return &FollowUpDispatcher{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
		repo:   opprepo.New(pool),
		log:    log,
	}, nil
}

func (d *FollowUpDispatcher) Close() error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Close()
}

func (d *FollowUpDispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil || d.repo == nil {
		return
	}

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	d.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.sweep(ctx)
		}
	}
}

func (d *FollowUpDispatcher) sweep(ctx context.Context) {
	now := time.Now()

	due, err := d.repo.ListDueFollowUps(ctx, now)
	if err != nil {
		d.log.Warn("follow-up sweep failed", "error", err)
		return
	}

	for _, opp := range due {
		task, err := NewSeguimientoDueTask(SeguimientoDuePayload{OportunidadID: opp.ID.String()})
		if err != nil {
			d.log.Warn("follow-up task build failed", "oportunidad_id", opp.ID, "error", err)
			continue
		}

		_, err = d.client.EnqueueContext(ctx, task,
			asynq.Queue(d.queue),
			asynq.TaskID(seguimientoTaskID(opp.ID.String(), now)),
		)
		if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
			d.log.Warn("follow-up enqueue failed", "oportunidad_id", opp.ID, "error", err)
		}
	}
}
