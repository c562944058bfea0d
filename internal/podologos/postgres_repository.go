package podologos

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

// PostgresRepository stores podiatrists in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("podologos: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const podologoColumns = `id, nombres, apellidos, especialidad, disponibilidad, contacto, activo`

func (r *PostgresRepository) List(ctx context.Context, soloActivos bool) ([]Podologo, error) {
	query := `SELECT ` + podologoColumns + ` FROM podologos`
	if soloActivos {
		query += ` WHERE activo`
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("podologos: list: %w", err)
	}
	defer rows.Close()

	var out []Podologo
	for rows.Next() {
		p, err := scanPodologo(rows)
		if err != nil {
			return nil, fmt.Errorf("podologos: scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Podologo, error) {
	row := r.db.QueryRow(ctx, `SELECT `+podologoColumns+` FROM podologos WHERE id = $1`, id)
	p, err := scanPodologo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPodologoNotFound
		}
		return nil, fmt.Errorf("podologos: get: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, in CreateInput) (*Podologo, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO podologos (nombres, apellidos, especialidad, disponibilidad, contacto, activo)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING ` + podologoColumns
	row := r.db.QueryRow(ctx, query, in.Nombres, in.Apellidos, in.Especialidad, in.Disponibilidad, in.Contacto)
	p, err := scanPodologo(row)
	if err != nil {
		return nil, fmt.Errorf("podologos: insert: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, in UpdateInput) (*Podologo, error) {
	query := `
		UPDATE podologos SET
			nombres = COALESCE($2, nombres),
			apellidos = COALESCE($3, apellidos),
			especialidad = COALESCE($4, especialidad),
			disponibilidad = COALESCE($5, disponibilidad),
			contacto = COALESCE($6, contacto),
			activo = COALESCE($7, activo)
		WHERE id = $1
		RETURNING ` + podologoColumns
	row := r.db.QueryRow(ctx, query, id, in.Nombres, in.Apellidos, in.Especialidad, in.Disponibilidad, in.Contacto, in.Activo)
	p, err := scanPodologo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPodologoNotFound
		}
		return nil, fmt.Errorf("podologos: update: %w", err)
	}
	return &p, nil
}

func scanPodologo(row pgx.Row) (Podologo, error) {
	var p Podologo
	err := row.Scan(&p.ID, &p.Nombres, &p.Apellidos, &p.Especialidad, &p.Disponibilidad, &p.Contacto, &p.Activo)
	return p, err
}
