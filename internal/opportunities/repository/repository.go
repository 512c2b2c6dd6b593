package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"taller_backend/internal/opportunities/domain"
	"taller_backend/platform/apperr"
)

const (
	opportunityNotFoundMessage = "opportunity not found"
	alreadyConvertedMessage    = "opportunity already converted to a service"
	noAppointmentMessage       = "opportunity has no appointment scheduled"
	pgForeignKeyViolation      = "23503"
	pgLockNotAvailable         = "55P03"
)

const opportunityColumns = `id, vehicle_id, customer_id, creada_por, asignada_a, tipo_oportunidad, titulo, descripcion, servicio_sugerido, precio_sugerido, fecha_servicio_sugerida, fecha_contacto_sugerida, estado, prioridad, origen, kilometraje_referencia, fecha_cita, hora_cita, descripcion_breve, nombre_contacto, telefono_contacto, origen_cita, convertido_a_servicio_id, motivo_perdida, created_at, updated_at`

// querier abstracts pgxpool.Pool and pgx.Tx so the same queries can run
// standalone or inside a conversion/intake transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new opportunities repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create inserts a new opportunity.
func (r *Repo) Create(ctx context.Context, params CreateParams) (domain.Oportunidad, error) {
	return create(ctx, r.pool, params)
}

func create(ctx context.Context, q querier, params CreateParams) (domain.Oportunidad, error) {
	var fechaCita *time.Time
	var horaCita, descripcionBreve, nombreContacto, telefonoContacto, origenCita *string
	if params.Cita != nil {
		fechaCita = &params.Cita.FechaCita
		horaCita = &params.Cita.HoraCita
		descripcionBreve = params.Cita.DescripcionBreve
		nombreContacto = params.Cita.NombreContacto
		telefonoContacto = params.Cita.TelefonoContacto
		origenCita = params.Cita.OrigenCita
	}

	query := `
		INSERT INTO oportunidades (vehicle_id, customer_id, creada_por, asignada_a, tipo_oportunidad, titulo, descripcion, servicio_sugerido, precio_sugerido, fecha_servicio_sugerida, fecha_contacto_sugerida, estado, prioridad, origen, kilometraje_referencia, fecha_cita, hora_cita, descripcion_breve, nombre_contacto, telefono_contacto, origen_cita)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING ` + opportunityColumns

	o, err := scanOportunidad(q.QueryRow(ctx, query,
		params.VehicleID, params.CustomerID, params.CreadaPor, params.AsignadaA,
		params.TipoOportunidad, params.Titulo, params.Descripcion, params.ServicioSugerido,
		params.PrecioSugerido, params.FechaServicioSugerida, params.FechaContactoSugerida,
		params.Estado, params.Prioridad, params.Origen, params.KilometrajeReferencia,
		fechaCita, horaCita, descripcionBreve, nombreContacto, telefonoContacto, origenCita,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return domain.Oportunidad{}, apperr.Validation("opportunity references a customer, vehicle or user that does not exist")
		}
		return domain.Oportunidad{}, fmt.Errorf("create opportunity: %w", err)
	}
	return o, nil
}

// GetByID retrieves an opportunity by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Oportunidad, error) {
	query := `SELECT ` + opportunityColumns + ` FROM oportunidades WHERE id = $1`

	o, err := scanOportunidad(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Oportunidad{}, apperr.NotFound(opportunityNotFoundMessage)
		}
		return domain.Oportunidad{}, fmt.Errorf("get opportunity by id: %w", err)
	}
	return o, nil
}

// List retrieves opportunities with filters, newest first. The fecha_cita
// filter matches the appointment's calendar day.
func (r *Repo) List(ctx context.Context, params ListParams) ([]domain.Oportunidad, int, error) {
	where := `
		WHERE ($1::text IS NULL OR estado = $1)
			AND ($2::text IS NULL OR prioridad = $2)
			AND ($3::text IS NULL OR origen = $3)
			AND ($4::uuid IS NULL OR asignada_a = $4)
			AND ($5::date IS NULL OR fecha_cita::date = $5::date)
			AND (NOT $6::bool OR fecha_cita IS NOT NULL)`

	var fechaCita *time.Time
	if params.FechaCita != nil {
		d := params.FechaCita.Truncate(24 * time.Hour)
		fechaCita = &d
	}

	args := []any{params.Estado, params.Prioridad, params.Origen, params.AsignadaA, fechaCita, params.SoloCitas}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM oportunidades`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count opportunities: %w", err)
	}

	query := `SELECT ` + opportunityColumns + ` FROM oportunidades` + where + `
		ORDER BY created_at DESC
		LIMIT $7 OFFSET $8`

	rows, err := r.pool.Query(ctx, query, append(args, params.Limit, params.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list opportunities: %w", err)
	}
	defer rows.Close()

	items, err := scanOportunidades(rows)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// UpdateEstado writes a new estado. The converted guard makes a lifecycle
// write racing a conversion lose cleanly.
func (r *Repo) UpdateEstado(ctx context.Context, id uuid.UUID, estado domain.Estado, motivoPerdida *string) (domain.Oportunidad, error) {
	query := `
		UPDATE oportunidades
		SET estado = $2, motivo_perdida = COALESCE($3, motivo_perdida), updated_at = now()
		WHERE id = $1 AND convertido_a_servicio_id IS NULL
		RETURNING ` + opportunityColumns

	o, err := scanOportunidad(r.pool.QueryRow(ctx, query, id, estado, motivoPerdida))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Oportunidad{}, r.classifyGuardedMiss(ctx, id, false)
		}
		return domain.Oportunidad{}, fmt.Errorf("update opportunity estado: %w", err)
	}
	return o, nil
}

// UpdatePrioridad sets the follow-up priority.
func (r *Repo) UpdatePrioridad(ctx context.Context, id uuid.UUID, prioridad domain.Prioridad) (domain.Oportunidad, error) {
	query := `
		UPDATE oportunidades SET prioridad = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + opportunityColumns

	o, err := scanOportunidad(r.pool.QueryRow(ctx, query, id, prioridad))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Oportunidad{}, apperr.NotFound(opportunityNotFoundMessage)
		}
		return domain.Oportunidad{}, fmt.Errorf("update opportunity prioridad: %w", err)
	}
	return o, nil
}

// UpdateAsignada sets or clears the assignee.
func (r *Repo) UpdateAsignada(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (domain.Oportunidad, error) {
	query := `
		UPDATE oportunidades SET asignada_a = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + opportunityColumns

	o, err := scanOportunidad(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Oportunidad{}, apperr.NotFound(opportunityNotFoundMessage)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return domain.Oportunidad{}, apperr.Validation("asignada_a does not reference an existing user")
		}
		return domain.Oportunidad{}, fmt.Errorf("update opportunity asignada: %w", err)
	}
	return o, nil
}

// RescheduleCita changes the appointment date/time in place. Conversion and
// the absence of a cita both surface as typed errors.
func (r *Repo) RescheduleCita(ctx context.Context, id uuid.UUID, fecha time.Time, hora string) (domain.Oportunidad, error) {
	query := `
		UPDATE oportunidades SET fecha_cita = $2, hora_cita = $3, updated_at = now()
		WHERE id = $1 AND convertido_a_servicio_id IS NULL AND fecha_cita IS NOT NULL
		RETURNING ` + opportunityColumns

	o, err := scanOportunidad(r.pool.QueryRow(ctx, query, id, fecha, hora))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Oportunidad{}, r.classifyGuardedMiss(ctx, id, true)
		}
		return domain.Oportunidad{}, fmt.Errorf("reschedule appointment: %w", err)
	}
	return o, nil
}

// UpdateIdentidad fills in customer/vehicle references, e.g. to complete a
// cita_rapida before reception.
func (r *Repo) UpdateIdentidad(ctx context.Context, id uuid.UUID, customerID, vehicleID *uuid.UUID) (domain.Oportunidad, error) {
	query := `
		UPDATE oportunidades SET
			customer_id = COALESCE($2, customer_id),
			vehicle_id = COALESCE($3, vehicle_id),
			updated_at = now()
		WHERE id = $1 AND convertido_a_servicio_id IS NULL
		RETURNING ` + opportunityColumns

	o, err := scanOportunidad(r.pool.QueryRow(ctx, query, id, customerID, vehicleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Oportunidad{}, r.classifyGuardedMiss(ctx, id, false)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return domain.Oportunidad{}, apperr.Validation("customer_id or vehicle_id does not reference an existing row")
		}
		return domain.Oportunidad{}, fmt.Errorf("update opportunity identity: %w", err)
	}
	return o, nil
}

// ListDueFollowUps returns open, unconverted opportunities whose suggested
// follow-up contact date falls on or before the given day.
func (r *Repo) ListDueFollowUps(ctx context.Context, on time.Time) ([]domain.Oportunidad, error) {
	query := `
		SELECT ` + opportunityColumns + `
		FROM oportunidades
		WHERE fecha_contacto_sugerida IS NOT NULL
			AND fecha_contacto_sugerida::date <= $1::date
			AND estado NOT IN ('completado', 'perdido')
			AND convertido_a_servicio_id IS NULL
		ORDER BY fecha_contacto_sugerida ASC`

	rows, err := r.pool.Query(ctx, query, on)
	if err != nil {
		return nil, fmt.Errorf("list due follow-ups: %w", err)
	}
	defer rows.Close()

	return scanOportunidades(rows)
}

// classifyGuardedMiss explains a zero-row guarded update: the row is missing,
// already converted, or (when the guard requires one) has no appointment.
func (r *Repo) classifyGuardedMiss(ctx context.Context, id uuid.UUID, needsCita bool) error {
	var converted bool
	var hasCita bool
	err := r.pool.QueryRow(ctx,
		`SELECT convertido_a_servicio_id IS NOT NULL, fecha_cita IS NOT NULL FROM oportunidades WHERE id = $1`,
		id,
	).Scan(&converted, &hasCita)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(opportunityNotFoundMessage)
		}
		return fmt.Errorf("classify opportunity update failure: %w", err)
	}
	if converted {
		return apperr.Conflict(alreadyConvertedMessage)
	}
	if needsCita && !hasCita {
		return apperr.Validation(noAppointmentMessage)
	}
	return apperr.NotFound(opportunityNotFoundMessage)
}

func scanOportunidad(row pgx.Row) (domain.Oportunidad, error) {
	var o domain.Oportunidad
	var fechaCita *time.Time
	var horaCita, descripcionBreve, nombreContacto, telefonoContacto, origenCita *string

	err := row.Scan(
		&o.ID, &o.VehicleID, &o.CustomerID, &o.CreadaPor, &o.AsignadaA,
		&o.TipoOportunidad, &o.Titulo, &o.Descripcion, &o.ServicioSugerido,
		&o.PrecioSugerido, &o.FechaServicioSugerida, &o.FechaContactoSugerida,
		&o.Estado, &o.Prioridad, &o.Origen, &o.KilometrajeReferencia,
		&fechaCita, &horaCita, &descripcionBreve, &nombreContacto, &telefonoContacto, &origenCita,
		&o.ConvertidoAServicioID, &o.MotivoPerdida, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return domain.Oportunidad{}, err
	}

	if fechaCita != nil {
		cita := domain.Cita{
			FechaCita:        *fechaCita,
			DescripcionBreve: descripcionBreve,
			NombreContacto:   nombreContacto,
			TelefonoContacto: telefonoContacto,
			OrigenCita:       origenCita,
		}
		if horaCita != nil {
			cita.HoraCita = *horaCita
		}
		o.Cita = &cita
	}

	return o, nil
}

func scanOportunidades(rows pgx.Rows) ([]domain.Oportunidad, error) {
	var results []domain.Oportunidad

	for rows.Next() {
		o, err := scanOportunidad(rows)
		if err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		results = append(results, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate opportunities: %w", err)
	}

	return results, nil
}
