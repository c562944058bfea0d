package tratamientos

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

// PostgresRepository stores treatment plans in the relational database.
type PostgresRepository struct {
	db DB
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("tratamientos: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const tratamientoColumns = `id, paciente_id, podologo_id, descripcion, diagnostico,
	estado, fecha_inicio, fecha_fin, costo, created_at`

func (r *PostgresRepository) List(ctx context.Context, pacienteID int64, estado Estado) ([]Tratamiento, error) {
	query := `SELECT ` + tratamientoColumns + ` FROM tratamientos`
	var (
		conds  []string
		args   []any
		argIdx = 1
	)
	if pacienteID != 0 {
		conds = append(conds, fmt.Sprintf("paciente_id = $%d", argIdx))
		args = append(args, pacienteID)
		argIdx++
	}
	if estado != "" {
		conds = append(conds, fmt.Sprintf("estado = $%d", argIdx))
		args = append(args, string(estado))
		argIdx++
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("tratamientos: list: %w", err)
	}
	defer rows.Close()

	var out []Tratamiento
	for rows.Next() {
		tr, err := scanTratamiento(rows)
		if err != nil {
			return nil, fmt.Errorf("tratamientos: scan: %w", err)
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

// GetByID loads the plan along with its evoluciones, oldest first.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Tratamiento, error) {
	row := r.db.QueryRow(ctx, `SELECT `+tratamientoColumns+` FROM tratamientos WHERE id = $1`, id)
	tr, err := scanTratamiento(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tratamiento{}, ErrTratamientoNotFound
		}
		return Tratamiento{}, fmt.Errorf("tratamientos: get: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, tratamiento_id, podologo_id, fecha, tipo_visita, notas, signos_vitales
		 FROM evoluciones WHERE tratamiento_id = $1 ORDER BY fecha, id`, id)
	if err != nil {
		return Tratamiento{}, fmt.Errorf("tratamientos: evoluciones: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e Evolucion
		if err := rows.Scan(&e.ID, &e.TratamientoID, &e.PodologoID, &e.Fecha, &e.TipoVisita, &e.Notas, &e.SignosVitales); err != nil {
			return Tratamiento{}, fmt.Errorf("tratamientos: scan evolucion: %w", err)
		}
		tr.Evoluciones = append(tr.Evoluciones, e)
	}
	return tr, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, in CreateInput) (Tratamiento, error) {
	if err := in.Validate(); err != nil {
		return Tratamiento{}, err
	}

	inicio := in.FechaInicio
	if inicio.IsZero() {
		inicio = time.Now()
	}
	query := `
		INSERT INTO tratamientos (paciente_id, podologo_id, descripcion, diagnostico,
			estado, fecha_inicio, costo)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + tratamientoColumns
	row := r.db.QueryRow(ctx, query,
		in.PacienteID, in.PodologoID, in.Descripcion, in.Diagnostico,
		string(EstadoActivo), inicio, in.Costo)
	tr, err := scanTratamiento(row)
	if err != nil {
		return Tratamiento{}, fmt.Errorf("tratamientos: insert: %w", err)
	}
	return tr, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, in UpdateInput) (Tratamiento, error) {
	var estado *string
	if in.Estado != nil {
		s := string(*in.Estado)
		estado = &s
	}
	query := `
		UPDATE tratamientos SET
			descripcion = COALESCE($2, descripcion),
			diagnostico = COALESCE($3, diagnostico),
			estado = COALESCE($4, estado),
			fecha_fin = CASE
				WHEN $5::timestamptz IS NOT NULL THEN $5
				WHEN $4 = 'completado' AND fecha_fin IS NULL THEN NOW()
				ELSE fecha_fin
			END,
			costo = COALESCE($6, costo)
		WHERE id = $1
		RETURNING ` + tratamientoColumns
	row := r.db.QueryRow(ctx, query, id,
		in.Descripcion, in.Diagnostico, estado, in.FechaFin, in.Costo)
	tr, err := scanTratamiento(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tratamiento{}, ErrTratamientoNotFound
		}
		return Tratamiento{}, fmt.Errorf("tratamientos: update: %w", err)
	}
	return tr, nil
}

func (r *PostgresRepository) AddEvolucion(ctx context.Context, tratamientoID int64, in EvolucionInput) (Evolucion, error) {
	if err := in.Validate(); err != nil {
		return Evolucion{}, err
	}

	fecha := in.Fecha
	if fecha.IsZero() {
		fecha = time.Now()
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO evoluciones (tratamiento_id, podologo_id, fecha, tipo_visita, notas, signos_vitales)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, tratamiento_id, podologo_id, fecha, tipo_visita, notas, signos_vitales`,
		tratamientoID, in.PodologoID, fecha, in.TipoVisita, in.Notas, in.SignosVitales)

	var e Evolucion
	if err := row.Scan(&e.ID, &e.TratamientoID, &e.PodologoID, &e.Fecha, &e.TipoVisita, &e.Notas, &e.SignosVitales); err != nil {
		return Evolucion{}, fmt.Errorf("tratamientos: insert evolucion: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) CountByEstado(ctx context.Context, estado Estado) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM tratamientos WHERE estado = $1`, string(estado)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("tratamientos: count: %w", err)
	}
	return n, nil
}

func scanTratamiento(row pgx.Row) (Tratamiento, error) {
	var (
		tr     Tratamiento
		estado string
	)
	err := row.Scan(&tr.ID, &tr.PacienteID, &tr.PodologoID, &tr.Descripcion,
		&tr.Diagnostico, &estado, &tr.FechaInicio, &tr.FechaFin, &tr.Costo, &tr.CreatedAt)
	tr.Estado = Estado(estado)
	return tr, err
}
