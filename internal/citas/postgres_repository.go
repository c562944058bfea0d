package citas

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores appointments in the relational database. It
// persists reference ids only; the denormalized Paciente/Podologo/Servicio
// copies are hydrated by the Service on the way out.
type PostgresRepository struct {
	db DB
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("citas: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const citaColumns = `id, paciente_id, podologo_id, servicio_id, fecha_hora,
	duracion_minutos, estado, motivo, sala, created_by, created_at`

// List builds the WHERE clause dynamically; every filter ANDs together.
func (r *PostgresRepository) List(ctx context.Context, f Filters) ([]Cita, error) {
	query := `SELECT ` + citaColumns + ` FROM citas`
	var (
		conds  []string
		args   []any
		argIdx = 1
	)
	if f.Estado != "" {
		conds = append(conds, fmt.Sprintf("estado = $%d", argIdx))
		args = append(args, string(f.Estado))
		argIdx++
	}
	if f.PodologoID != 0 {
		conds = append(conds, fmt.Sprintf("podologo_id = $%d", argIdx))
		args = append(args, f.PodologoID)
		argIdx++
	}
	if f.PacienteID != 0 {
		conds = append(conds, fmt.Sprintf("paciente_id = $%d", argIdx))
		args = append(args, f.PacienteID)
		argIdx++
	}
	if f.FechaInicio != nil {
		conds = append(conds, fmt.Sprintf("fecha_hora >= $%d", argIdx))
		args = append(args, *f.FechaInicio)
		argIdx++
	}
	if f.FechaFin != nil {
		conds = append(conds, fmt.Sprintf("fecha_hora <= $%d", argIdx))
		args = append(args, *f.FechaFin)
		argIdx++
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY fecha_hora, id"
	if f.PerPage > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, f.PerPage)
		argIdx++
		if f.Page > 1 {
			query += fmt.Sprintf(" OFFSET $%d", argIdx)
			args = append(args, (f.Page-1)*f.PerPage)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("citas: list: %w", err)
	}
	defer rows.Close()

	var out []Cita
	for rows.Next() {
		c, err := scanCita(rows)
		if err != nil {
			return nil, fmt.Errorf("citas: scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CalendarRange(ctx context.Context, from, to time.Time) ([]Cita, error) {
	return r.List(ctx, Filters{FechaInicio: &from, FechaFin: &to})
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Cita, error) {
	row := r.db.QueryRow(ctx, `SELECT `+citaColumns+` FROM citas WHERE id = $1`, id)
	c, err := scanCita(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Cita{}, ErrCitaNotFound
		}
		return Cita{}, fmt.Errorf("citas: get: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c Cita) (Cita, error) {
	query := `
		INSERT INTO citas (paciente_id, podologo_id, servicio_id, fecha_hora,
			duracion_minutos, estado, motivo, sala, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + citaColumns
	row := r.db.QueryRow(ctx, query,
		c.PacienteID, c.PodologoID, c.ServicioID, c.FechaHora,
		c.DuracionMinutos, string(c.Estado), c.Motivo, c.Sala, c.CreatedBy,
	)
	out, err := scanCita(row)
	if err != nil {
		return Cita{}, fmt.Errorf("citas: insert: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, in UpdateInput) (Cita, error) {
	var estado *string
	if in.Estado != nil {
		s := string(*in.Estado)
		estado = &s
	}
	query := `
		UPDATE citas SET
			paciente_id = COALESCE($2, paciente_id),
			podologo_id = COALESCE($3, podologo_id),
			servicio_id = COALESCE($4, servicio_id),
			fecha_hora = COALESCE($5, fecha_hora),
			duracion_minutos = COALESCE($6, duracion_minutos),
			estado = COALESCE($7, estado),
			motivo = COALESCE($8, motivo),
			sala = COALESCE($9, sala)
		WHERE id = $1
		RETURNING ` + citaColumns
	row := r.db.QueryRow(ctx, query, id,
		in.PacienteID, in.PodologoID, in.ServicioID, in.FechaHora,
		in.DuracionMinutos, estado, in.Motivo, in.Sala,
	)
	c, err := scanCita(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Cita{}, ErrCitaNotFound
		}
		return Cita{}, fmt.Errorf("citas: update: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Reschedule(ctx context.Context, id int64, fechaHora time.Time) (Cita, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE citas SET fecha_hora = $2 WHERE id = $1 RETURNING `+citaColumns,
		id, fechaHora,
	)
	c, err := scanCita(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Cita{}, ErrCitaNotFound
		}
		return Cita{}, fmt.Errorf("citas: reschedule: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Cancel(ctx context.Context, id int64) (Cita, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE citas SET estado = $2 WHERE id = $1 RETURNING `+citaColumns,
		id, string(EstadoCancelado),
	)
	c, err := scanCita(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Cita{}, ErrCitaNotFound
		}
		return Cita{}, fmt.Errorf("citas: cancel: %w", err)
	}
	return c, nil
}

func scanCita(row pgx.Row) (Cita, error) {
	var (
		c      Cita
		estado string
	)
	err := row.Scan(
		&c.ID, &c.PacienteID, &c.PodologoID, &c.ServicioID, &c.FechaHora,
		&c.DuracionMinutos, &estado, &c.Motivo, &c.Sala, &c.CreatedBy, &c.CreatedAt,
	)
	c.Estado = Estado(estado)
	return c, err
}
