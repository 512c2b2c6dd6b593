package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"taller_backend/platform/apperr"
)

const vehicleNotFoundMessage = "vehicle not found"

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

const vehicleColumns = `id, vin, marca, modelo, anio, placa_actual, customer_id, kilometraje, combustible, transmision, activo, notas, created_at, updated_at`

// querier abstracts pgxpool.Pool and pgx.Tx so the same queries can run
// standalone or inside a caller's transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new vehicles repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a vehicle by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Vehicle, error) {
	return getByID(ctx, r.pool, id)
}

// GetByIDTx retrieves a vehicle inside the caller's transaction.
func (r *Repo) GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (Vehicle, error) {
	return getByID(ctx, tx, id)
}

func getByID(ctx context.Context, q querier, id uuid.UUID) (Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehiculos WHERE id = $1`

	v, err := scanVehicle(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vehicle{}, apperr.NotFound(vehicleNotFoundMessage)
		}
		return Vehicle{}, fmt.Errorf("get vehicle by id: %w", err)
	}
	return v, nil
}

// List retrieves vehicles filtered by owner and/or plate, newest first.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Vehicle, int, error) {
	var placaParam interface{}
	if params.Placa != "" {
		placaParam = "%" + params.Placa + "%"
	}

	countQuery := `
		SELECT COUNT(*)
		FROM vehiculos
		WHERE ($1::uuid IS NULL OR customer_id = $1)
			AND ($2::text IS NULL OR placa_actual ILIKE $2)`

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, params.CustomerID, placaParam).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count vehicles: %w", err)
	}

	query := `
		SELECT ` + vehicleColumns + `
		FROM vehiculos
		WHERE ($1::uuid IS NULL OR customer_id = $1)
			AND ($2::text IS NULL OR placa_actual ILIKE $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, params.CustomerID, placaParam, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	items, err := scanVehicles(rows)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// Exists checks if a vehicle exists by ID.
func (r *Repo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM vehiculos WHERE id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check vehicle exists: %w", err)
	}

	return exists, nil
}

// Create inserts a new vehicle.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Vehicle, error) {
	return create(ctx, r.pool, params)
}

// CreateTx inserts a new vehicle inside the caller's transaction. The row is
// visible only once the caller commits.
func (r *Repo) CreateTx(ctx context.Context, tx pgx.Tx, params CreateParams) (Vehicle, error) {
	return create(ctx, tx, params)
}

func create(ctx context.Context, q querier, params CreateParams) (Vehicle, error) {
	query := `
		INSERT INTO vehiculos (vin, marca, modelo, anio, placa_actual, customer_id, kilometraje, combustible, transmision, notas)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + vehicleColumns

	v, err := scanVehicle(q.QueryRow(ctx, query,
		params.VIN, params.Marca, params.Modelo, params.Anio, params.PlacaActual,
		params.CustomerID, params.Kilometraje, params.Combustible, params.Transmision, params.Notas,
	))
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return Vehicle{}, mapped
		}
		return Vehicle{}, fmt.Errorf("create vehicle: %w", err)
	}
	return v, nil
}

// Update applies non-nil fields to an existing vehicle.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Vehicle, error) {
	query := `
		UPDATE vehiculos SET
			vin = COALESCE($2, vin),
			marca = COALESCE($3, marca),
			modelo = COALESCE($4, modelo),
			anio = COALESCE($5, anio),
			placa_actual = COALESCE($6, placa_actual),
			customer_id = COALESCE($7, customer_id),
			kilometraje = COALESCE($8, kilometraje),
			combustible = COALESCE($9, combustible),
			transmision = COALESCE($10, transmision),
			notas = COALESCE($11, notas),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + vehicleColumns

	v, err := scanVehicle(r.pool.QueryRow(ctx, query,
		params.ID, params.VIN, params.Marca, params.Modelo, params.Anio, params.PlacaActual,
		params.CustomerID, params.Kilometraje, params.Combustible, params.Transmision, params.Notas,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vehicle{}, apperr.NotFound(vehicleNotFoundMessage)
		}
		if mapped := mapConstraintError(err); mapped != nil {
			return Vehicle{}, mapped
		}
		return Vehicle{}, fmt.Errorf("update vehicle: %w", err)
	}
	return v, nil
}

// SetActivo sets the activo flag for a vehicle.
func (r *Repo) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	query := `UPDATE vehiculos SET activo = $2, updated_at = now() WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, activo)
	if err != nil {
		return fmt.Errorf("set vehicle activo: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound(vehicleNotFoundMessage)
	}

	return nil
}

// mapConstraintError translates owner FK and VIN uniqueness violations into
// domain errors.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case pgForeignKeyViolation:
		return apperr.Validation("customer_id does not reference an existing customer")
	case pgUniqueViolation:
		return apperr.Conflict("a vehicle with this VIN already exists")
	}
	return nil
}

func scanVehicle(row pgx.Row) (Vehicle, error) {
	var v Vehicle
	err := row.Scan(
		&v.ID, &v.VIN, &v.Marca, &v.Modelo, &v.Anio, &v.PlacaActual,
		&v.CustomerID, &v.Kilometraje, &v.Combustible, &v.Transmision,
		&v.Activo, &v.Notas, &v.CreatedAt, &v.UpdatedAt,
	)
	return v, err
}

func scanVehicles(rows pgx.Rows) ([]Vehicle, error) {
	var results []Vehicle

	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		results = append(results, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vehicles: %w", err)
	}

	return results, nil
}
