package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	custrepo "taller_backend/internal/customers/repository"
	"taller_backend/internal/opportunities/domain"
	svcrepo "taller_backend/internal/services/repository"
	vehrepo "taller_backend/internal/vehicles/repository"
	"taller_backend/platform/apperr"
)

// lockTimeout bounds the wait for the opportunity row lock so a conversion
// blocked behind a concurrent one surfaces as a timeout instead of hanging.
const lockTimeout = "3s"

// PgStore implements Store on PostgreSQL. The at-most-once conversion
// guarantee comes from loading the opportunity FOR UPDATE and from the
// conditional update in MarkConverted, both inside one transaction.
type PgStore struct {
	pool      *pgxpool.Pool
	customers custrepo.TxOps
	vehicles  vehrepo.TxOps
	services  svcrepo.TxOps
}

// NewStore creates a Store backed by the given pool and the transactional
// surfaces of the customer, vehicle and service repositories.
func NewStore(pool *pgxpool.Pool, customers custrepo.TxOps, vehicles vehrepo.TxOps, services svcrepo.TxOps) *PgStore {
	return &PgStore{pool: pool, customers: customers, vehicles: vehicles, services: services}
}

// Compile-time check that PgStore implements Store.
var _ Store = (*PgStore)(nil)

// WithConversion runs fn inside a transaction that holds a row lock on the
// opportunity. The snapshot passed to fn reflects the locked row, so the
// already-converted and cancelled checks made against it cannot race.
func (s *PgStore) WithConversion(ctx context.Context, id uuid.UUID, fn func(ConversionTx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin conversion: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%s'", lockTimeout)); err != nil {
		return fmt.Errorf("set lock timeout: %w", err)
	}

	query := `SELECT ` + opportunityColumns + ` FROM oportunidades WHERE id = $1 FOR UPDATE`
	opp, err := scanOportunidad(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(opportunityNotFoundMessage)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
			return apperr.Timeout("timed out waiting for the opportunity lock")
		}
		return fmt.Errorf("lock opportunity: %w", err)
	}

	ctv := &pgTx{tx: tx, store: s, opp: opp}
	if err := fn(ctv); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit conversion: %w", err)
	}
	return nil
}

// WithIntake runs fn inside a plain transaction with no pre-existing
// opportunity, for walk-in processing.
func (s *PgStore) WithIntake(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin intake: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx, store: s}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit intake: %w", err)
	}
	return nil
}

// pgTx adapts a pgx.Tx to the Tx/ConversionTx surfaces by delegating to the
// other repositories' tx-scoped operations.
type pgTx struct {
	tx    pgx.Tx
	store *PgStore
	opp   domain.Oportunidad
}

var _ ConversionTx = (*pgTx)(nil)

func (t *pgTx) Oportunidad() domain.Oportunidad {
	return t.opp
}

func (t *pgTx) GetCustomer(ctx context.Context, id uuid.UUID) (custrepo.Customer, error) {
	return t.store.customers.GetByIDTx(ctx, t.tx, id)
}

func (t *pgTx) CreateCustomer(ctx context.Context, params custrepo.CreateParams) (custrepo.Customer, error) {
	return t.store.customers.CreateTx(ctx, t.tx, params)
}

func (t *pgTx) GetVehicle(ctx context.Context, id uuid.UUID) (vehrepo.Vehicle, error) {
	return t.store.vehicles.GetByIDTx(ctx, t.tx, id)
}

func (t *pgTx) CreateVehicle(ctx context.Context, params vehrepo.CreateParams) (vehrepo.Vehicle, error) {
	return t.store.vehicles.CreateTx(ctx, t.tx, params)
}

func (t *pgTx) CreateService(ctx context.Context, params svcrepo.CreateParams) (svcrepo.Service, error) {
	return t.store.services.CreateTx(ctx, t.tx, params)
}

func (t *pgTx) CreateOportunidad(ctx context.Context, params CreateParams) (domain.Oportunidad, error) {
	return create(ctx, t.tx, params)
}

// MarkConverted performs the terminal write. The WHERE guard means that even
// if the row lock were somehow bypassed, a second conversion still observes
// zero rows and fails with a conflict instead of producing a duplicate.
func (t *pgTx) MarkConverted(ctx context.Context, serviceID uuid.UUID) error {
	query := `
		UPDATE oportunidades
		SET convertido_a_servicio_id = $2, estado = $3, updated_at = now()
		WHERE id = $1 AND convertido_a_servicio_id IS NULL`

	tag, err := t.tx.Exec(ctx, query, t.opp.ID, serviceID, domain.EstadoCompletado)
	if err != nil {
		return fmt.Errorf("mark opportunity converted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict(alreadyConvertedMessage)
	}
	return nil
}
