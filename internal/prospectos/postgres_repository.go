package prospectos

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores prospects in the relational database.
type PostgresRepository struct {
	db DB
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("prospectos: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const prospectoColumns = `id, nombre, telefono, email, fuente, estado, notas,
	paciente_id, created_at, updated_at`

func (r *PostgresRepository) List(ctx context.Context, estado Estado) ([]Prospecto, error) {
	query := `SELECT ` + prospectoColumns + ` FROM prospectos`
	var args []any
	if estado != "" {
		query += ` WHERE estado = $1`
		args = append(args, string(estado))
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("prospectos: list: %w", err)
	}
	defer rows.Close()

	var out []Prospecto
	for rows.Next() {
		p, err := scanProspecto(rows)
		if err != nil {
			return nil, fmt.Errorf("prospectos: scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Prospecto, error) {
	row := r.db.QueryRow(ctx, `SELECT `+prospectoColumns+` FROM prospectos WHERE id = $1`, id)
	p, err := scanProspecto(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Prospecto{}, ErrProspectoNotFound
		}
		return Prospecto{}, fmt.Errorf("prospectos: get: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, in CreateInput) (Prospecto, error) {
	if err := in.Validate(); err != nil {
		return Prospecto{}, err
	}

	query := `
		INSERT INTO prospectos (nombre, telefono, email, fuente, estado, notas)
		VALUES ($1, $2, $3, $4, 'nuevo', $5)
		RETURNING ` + prospectoColumns
	row := r.db.QueryRow(ctx, query, in.Nombre, in.Telefono, in.Email, in.Fuente, in.Notas)
	p, err := scanProspecto(row)
	if err != nil {
		return Prospecto{}, fmt.Errorf("prospectos: insert: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, in UpdateInput) (Prospecto, error) {
	var estado *string
	if in.Estado != nil {
		s := string(*in.Estado)
		estado = &s
	}
	query := `
		UPDATE prospectos SET
			nombre = COALESCE($2, nombre),
			telefono = COALESCE($3, telefono),
			email = COALESCE($4, email),
			fuente = COALESCE($5, fuente),
			estado = COALESCE($6, estado),
			notas = COALESCE($7, notas),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + prospectoColumns
	row := r.db.QueryRow(ctx, query, id,
		in.Nombre, in.Telefono, in.Email, in.Fuente, estado, in.Notas)
	p, err := scanProspecto(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Prospecto{}, ErrProspectoNotFound
		}
		return Prospecto{}, fmt.Errorf("prospectos: update: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) MarkConverted(ctx context.Context, id, pacienteID int64) (Prospecto, error) {
	query := `
		UPDATE prospectos SET estado = 'convertido', paciente_id = $2, updated_at = NOW()
		WHERE id = $1 AND estado <> 'convertido'
		RETURNING ` + prospectoColumns
	row := r.db.QueryRow(ctx, query, id, pacienteID)
	p, err := scanProspecto(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either missing or already converted; disambiguate for the caller.
			if _, getErr := r.GetByID(ctx, id); getErr == nil {
				return Prospecto{}, ErrAlreadyConverted
			}
			return Prospecto{}, ErrProspectoNotFound
		}
		return Prospecto{}, fmt.Errorf("prospectos: convert: %w", err)
	}
	return p, nil
}

func scanProspecto(row pgx.Row) (Prospecto, error) {
	var (
		p      Prospecto
		estado string
	)
	err := row.Scan(&p.ID, &p.Nombre, &p.Telefono, &p.Email, &p.Fuente, &estado,
		&p.Notas, &p.PacienteID, &p.CreatedAt, &p.UpdatedAt)
	p.Estado = Estado(estado)
	return p, err
}
