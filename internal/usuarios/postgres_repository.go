package usuarios

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pielsano/podoclinic/internal/rbac"
)

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores staff accounts in the relational database.
type PostgresRepository struct {
	db DB
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("usuarios: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const usuarioColumns = `id, username, nombre, email, rol, password_hash, activo, last_login, created_at, updated_at`

func (r *PostgresRepository) List(ctx context.Context) ([]Usuario, error) {
	rows, err := r.db.Query(ctx, `SELECT `+usuarioColumns+` FROM usuarios ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("usuarios: list: %w", err)
	}
	defer rows.Close()

	var out []Usuario
	for rows.Next() {
		u, err := scanUsuario(rows)
		if err != nil {
			return nil, fmt.Errorf("usuarios: scan: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Usuario, error) {
	row := r.db.QueryRow(ctx, `SELECT `+usuarioColumns+` FROM usuarios WHERE id = $1`, id)
	u, err := scanUsuario(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Usuario{}, ErrUsuarioNotFound
		}
		return Usuario{}, fmt.Errorf("usuarios: get: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (Usuario, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+usuarioColumns+` FROM usuarios WHERE LOWER(username) = LOWER($1)`, username)
	u, err := scanUsuario(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Usuario{}, ErrUsuarioNotFound
		}
		return Usuario{}, fmt.Errorf("usuarios: get by username: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, u Usuario) (Usuario, error) {
	query := `
		INSERT INTO usuarios (username, nombre, email, rol, password_hash, activo)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + usuarioColumns
	row := r.db.QueryRow(ctx, query,
		u.Username, u.Nombre, u.Email, string(u.Rol), u.PasswordHash, u.Activo)
	out, err := scanUsuario(row)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 is unique_violation on the username index.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Usuario{}, ErrUsernameTaken
		}
		return Usuario{}, fmt.Errorf("usuarios: insert: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, u Usuario) (Usuario, error) {
	query := `
		UPDATE usuarios SET
			nombre = $2, email = $3, rol = $4, password_hash = $5, activo = $6,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + usuarioColumns
	row := r.db.QueryRow(ctx, query,
		u.ID, u.Nombre, u.Email, string(u.Rol), u.PasswordHash, u.Activo, u.LastLogin)
	out, err := scanUsuario(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Usuario{}, ErrUsuarioNotFound
		}
		return Usuario{}, fmt.Errorf("usuarios: update: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM usuarios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("usuarios: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUsuarioNotFound
	}
	return nil
}

func scanUsuario(row pgx.Row) (Usuario, error) {
	var (
		u   Usuario
		rol string
	)
	err := row.Scan(&u.ID, &u.Username, &u.Nombre, &u.Email, &rol,
		&u.PasswordHash, &u.Activo, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	u.Rol = rbac.Role(rol)
	return u, err
}
