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

const customerNotFoundMessage = "customer not found"

const customerColumns = `id, nombre, telefono, whatsapp, email, direccion, codigo_postal, rfc, notas, created_at, updated_at`

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

// New creates a new customers repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a customer by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Customer, error) {
	return getByID(ctx, r.pool, id)
}

// GetByIDTx retrieves a customer inside the caller's transaction.
func (r *Repo) GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (Customer, error) {
	return getByID(ctx, tx, id)
}

func getByID(ctx context.Context, q querier, id uuid.UUID) (Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM clientes WHERE id = $1`

	c, err := scanCustomer(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, apperr.NotFound(customerNotFoundMessage)
		}
		return Customer{}, fmt.Errorf("get customer by id: %w", err)
	}
	return c, nil
}

// List retrieves customers matching the search term, newest first.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Customer, int, error) {
	var searchParam interface{}
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}

	countQuery := `
		SELECT COUNT(*)
		FROM clientes
		WHERE ($1::text IS NULL OR nombre ILIKE $1 OR telefono ILIKE $1)`

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, searchParam).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	query := `
		SELECT ` + customerColumns + `
		FROM clientes
		WHERE ($1::text IS NULL OR nombre ILIKE $1 OR telefono ILIKE $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, searchParam, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	items, err := scanCustomers(rows)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// Exists checks if a customer exists by ID.
func (r *Repo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM clientes WHERE id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check customer exists: %w", err)
	}

	return exists, nil
}

// Create inserts a new customer.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Customer, error) {
	return create(ctx, r.pool, params)
}

// CreateTx inserts a new customer inside the caller's transaction. The row is
// visible only once the caller commits.
func (r *Repo) CreateTx(ctx context.Context, tx pgx.Tx, params CreateParams) (Customer, error) {
	return create(ctx, tx, params)
}

func create(ctx context.Context, q querier, params CreateParams) (Customer, error) {
	query := `
		INSERT INTO clientes (nombre, telefono, whatsapp, email, direccion, codigo_postal, rfc, notas)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + customerColumns

	c, err := scanCustomer(q.QueryRow(ctx, query,
		params.Nombre, params.Telefono, params.Whatsapp, params.Email,
		params.Direccion, params.CodigoPostal, params.RFC, params.Notas,
	))
	if err != nil {
		return Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return c, nil
}

// Update applies non-nil fields to an existing customer.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Customer, error) {
	query := `
		UPDATE clientes SET
			nombre = COALESCE($2, nombre),
			telefono = COALESCE($3, telefono),
			whatsapp = COALESCE($4, whatsapp),
			email = COALESCE($5, email),
			direccion = COALESCE($6, direccion),
			codigo_postal = COALESCE($7, codigo_postal),
			rfc = COALESCE($8, rfc),
			notas = COALESCE($9, notas),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + customerColumns

	c, err := scanCustomer(r.pool.QueryRow(ctx, query,
		params.ID, params.Nombre, params.Telefono, params.Whatsapp, params.Email,
		params.Direccion, params.CodigoPostal, params.RFC, params.Notas,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, apperr.NotFound(customerNotFoundMessage)
		}
		return Customer{}, fmt.Errorf("update customer: %w", err)
	}
	return c, nil
}

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(
		&c.ID, &c.Nombre, &c.Telefono, &c.Whatsapp, &c.Email,
		&c.Direccion, &c.CodigoPostal, &c.RFC, &c.Notas,
		&c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func scanCustomers(rows pgx.Rows) ([]Customer, error) {
	var results []Customer

	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		results = append(results, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}

	return results, nil
}
