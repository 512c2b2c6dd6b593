package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"taller_backend/internal/services/domain"
	"taller_backend/platform/apperr"
)

const serviceNotFoundMessage = "service not found"

const pgForeignKeyViolation = "23503"

const serviceColumns = `id, vehicle_id, customer_id, mecanico_id, fecha_servicio, tipo_servicio, descripcion, kilometraje, precio, estado, notas, proximo_servicio_km, proximo_servicio_fecha, garantia_meses, refacciones, created_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new services repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a service by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM servicios WHERE id = $1`

	s, err := scanService(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Service{}, apperr.NotFound(serviceNotFoundMessage)
		}
		return Service{}, fmt.Errorf("get service by id: %w", err)
	}
	return s, nil
}

// List retrieves services filtered by vehicle, customer and/or estado,
// newest first.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Service, int, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM servicios
		WHERE ($1::uuid IS NULL OR vehicle_id = $1)
			AND ($2::uuid IS NULL OR customer_id = $2)
			AND ($3::text IS NULL OR estado = $3)`

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, params.VehicleID, params.CustomerID, params.Estado).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count services: %w", err)
	}

	query := `
		SELECT ` + serviceColumns + `
		FROM servicios
		WHERE ($1::uuid IS NULL OR vehicle_id = $1)
			AND ($2::uuid IS NULL OR customer_id = $2)
			AND ($3::text IS NULL OR estado = $3)
		ORDER BY fecha_servicio DESC, created_at DESC
		LIMIT $4 OFFSET $5`

	rows, err := r.pool.Query(ctx, query, params.VehicleID, params.CustomerID, params.Estado, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	items, err := scanServices(rows)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// CreateTx inserts a new service inside the caller's transaction. Estado
// defaults to cotizado.
func (r *Repo) CreateTx(ctx context.Context, tx pgx.Tx, params CreateParams) (Service, error) {
	estado := params.Estado
	if estado == "" {
		estado = domain.EstadoCotizado
	}

	query := `
		INSERT INTO servicios (vehicle_id, customer_id, mecanico_id, fecha_servicio, tipo_servicio, descripcion, kilometraje, precio, estado, notas, proximo_servicio_km, proximo_servicio_fecha, garantia_meses, refacciones)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + serviceColumns

	s, err := scanService(tx.QueryRow(ctx, query,
		params.VehicleID, params.CustomerID, params.MecanicoID, params.FechaServicio,
		params.TipoServicio, params.Descripcion, params.Kilometraje, params.Precio, estado,
		params.Notas, params.ProximoServicioKM, params.ProximoServicioFecha,
		params.GarantiaMeses, params.Refacciones,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return Service{}, apperr.Validation("service references a customer or vehicle that does not exist")
		}
		return Service{}, fmt.Errorf("create service: %w", err)
	}
	return s, nil
}

// UpdateEstado sets a service's estado.
func (r *Repo) UpdateEstado(ctx context.Context, id uuid.UUID, estado domain.Estado) (Service, error) {
	query := `UPDATE servicios SET estado = $2 WHERE id = $1 RETURNING ` + serviceColumns

	s, err := scanService(r.pool.QueryRow(ctx, query, id, estado))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Service{}, apperr.NotFound(serviceNotFoundMessage)
		}
		return Service{}, fmt.Errorf("update service estado: %w", err)
	}
	return s, nil
}

func scanService(row pgx.Row) (Service, error) {
	var s Service
	err := row.Scan(
		&s.ID, &s.VehicleID, &s.CustomerID, &s.MecanicoID, &s.FechaServicio,
		&s.TipoServicio, &s.Descripcion, &s.Kilometraje, &s.Precio, &s.Estado,
		&s.Notas, &s.ProximoServicioKM, &s.ProximoServicioFecha,
		&s.GarantiaMeses, &s.Refacciones, &s.CreatedAt,
	)
	return s, err
}

func scanServices(rows pgx.Rows) ([]Service, error) {
	var results []Service

	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		results = append(results, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}

	return results, nil
}
