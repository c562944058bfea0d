package servicios

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores the service catalog in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("servicios: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const servicioColumns = `id, nombre, descripcion, duracion_minutos, precio, activo`

func (r *PostgresRepository) List(ctx context.Context, soloActivos bool) ([]Servicio, error) {
	query := `SELECT ` + servicioColumns + ` FROM servicios`
	if soloActivos {
		query += ` WHERE activo`
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("servicios: list: %w", err)
	}
	defer rows.Close()

	var out []Servicio
	for rows.Next() {
		s, err := scanServicio(rows)
		if err != nil {
			return nil, fmt.Errorf("servicios: scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Servicio, error) {
	row := r.db.QueryRow(ctx, `SELECT `+servicioColumns+` FROM servicios WHERE id = $1`, id)
	s, err := scanServicio(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServicioNotFound
		}
		return nil, fmt.Errorf("servicios: get: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepository) Create(ctx context.Context, in CreateInput) (*Servicio, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO servicios (nombre, descripcion, duracion_minutos, precio, activo)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING ` + servicioColumns
	row := r.db.QueryRow(ctx, query, in.Nombre, in.Descripcion, in.DuracionMinutos, in.Precio)
	s, err := scanServicio(row)
	if err != nil {
		return nil, fmt.Errorf("servicios: insert: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, in UpdateInput) (*Servicio, error) {
	query := `
		UPDATE servicios SET
			nombre = COALESCE($2, nombre),
			descripcion = COALESCE($3, descripcion),
			duracion_minutos = COALESCE($4, duracion_minutos),
			precio = COALESCE($5, precio),
			activo = COALESCE($6, activo)
		WHERE id = $1
		RETURNING ` + servicioColumns
	row := r.db.QueryRow(ctx, query, id, in.Nombre, in.Descripcion, in.DuracionMinutos, in.Precio, in.Activo)
	s, err := scanServicio(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServicioNotFound
		}
		return nil, fmt.Errorf("servicios: update: %w", err)
	}
	return &s, nil
}

func scanServicio(row pgx.Row) (Servicio, error) {
	var s Servicio
	err := row.Scan(&s.ID, &s.Nombre, &s.Descripcion, &s.DuracionMinutos, &s.Precio, &s.Activo)
	return s, err
}
