package pacientes

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

// PostgresRepository stores patients in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("pacientes: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const pacienteColumns = `id, nombres, apellidos, fecha_nacimiento, sexo, telefono,
	email, domicilio, documento_id, activo, created_at, updated_at`

// List returns patients, optionally only active ones.
func (r *PostgresRepository) List(ctx context.Context, soloActivos bool) ([]Paciente, error) {
	query := `SELECT ` + pacienteColumns + ` FROM pacientes`
	if soloActivos {
		query += ` WHERE activo`
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pacientes: list: %w", err)
	}
	defer rows.Close()

	var out []Paciente
	for rows.Next() {
		p, err := scanPaciente(rows)
		if err != nil {
			return nil, fmt.Errorf("pacientes: scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get returns the patient or ErrPacienteNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Paciente, error) {
	row := r.db.QueryRow(ctx, `SELECT `+pacienteColumns+` FROM pacientes WHERE id = $1`, id)
	p, err := scanPaciente(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPacienteNotFound
		}
		return nil, fmt.Errorf("pacientes: get: %w", err)
	}
	return &p, nil
}

// Create inserts a new active patient.
func (r *PostgresRepository) Create(ctx context.Context, in CreateInput) (*Paciente, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO pacientes (nombres, apellidos, fecha_nacimiento, sexo, telefono,
			email, domicilio, documento_id, activo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		RETURNING ` + pacienteColumns
	row := r.db.QueryRow(ctx, query,
		in.Nombres, in.Apellidos, in.FechaNacimiento, in.Sexo,
		in.Telefono, in.Email, in.Domicilio, in.DocumentoID,
	)
	p, err := scanPaciente(row)
	if err != nil {
		return nil, fmt.Errorf("pacientes: insert: %w", err)
	}
	return &p, nil
}

// Update applies a partial update via COALESCE on nullable parameters.
func (r *PostgresRepository) Update(ctx context.Context, id int64, in UpdateInput) (*Paciente, error) {
	query := `
		UPDATE pacientes SET
			nombres = COALESCE($2, nombres),
			apellidos = COALESCE($3, apellidos),
			fecha_nacimiento = COALESCE($4, fecha_nacimiento),
			sexo = COALESCE($5, sexo),
			telefono = COALESCE($6, telefono),
			email = COALESCE($7, email),
			domicilio = COALESCE($8, domicilio),
			documento_id = COALESCE($9, documento_id),
			activo = COALESCE($10, activo),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + pacienteColumns
	row := r.db.QueryRow(ctx, query, id,
		in.Nombres, in.Apellidos, in.FechaNacimiento, in.Sexo,
		in.Telefono, in.Email, in.Domicilio, in.DocumentoID, in.Activo,
	)
	p, err := scanPaciente(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPacienteNotFound
		}
		return nil, fmt.Errorf("pacientes: update: %w", err)
	}
	return &p, nil
}

func scanPaciente(row pgx.Row) (Paciente, error) {
	var p Paciente
	err := row.Scan(
		&p.ID, &p.Nombres, &p.Apellidos, &p.FechaNacimiento, &p.Sexo, &p.Telefono,
		&p.Email, &p.Domicilio, &p.DocumentoID, &p.Activo, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}
