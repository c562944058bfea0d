// Package auditoria records the append-only audit trail of user actions.
// Entries are never updated or deleted after insertion.
package auditoria

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action is the kind of audited operation.
type Action string

const (
	ActionCreate         Action = "create"
	ActionUpdate         Action = "update"
	ActionDelete         Action = "delete"
	ActionLogin          Action = "login"
	ActionLogout         Action = "logout"
	ActionPasswordChange Action = "password_change"
	ActionRoleChange     Action = "role_change"
)

// Entity is the kind of record an entry refers to.
type Entity string

const (
	EntityUsuario     Entity = "usuario"
	EntityPaciente    Entity = "paciente"
	EntityCita        Entity = "cita"
	EntityTratamiento Entity = "tratamiento"
	EntityEvolucion   Entity = "evolucion"
	EntityPodologo    Entity = "podologo"
	EntityServicio    Entity = "servicio"
	EntityProspecto   Entity = "prospecto"
)

// Entry is an immutable audit record.
type Entry struct {
	ID        string          `json:"id_audit"`
	ActorID   int64           `json:"usuario_id"`
	Action    Action          `json:"action"`
	Entity    Entity          `json:"entity"`
	EntityID  int64           `json:"entity_id,omitempty"`
	Changes   json.RawMessage `json:"changes,omitempty"`
	IPAddress string          `json:"ip_address,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Filter specifies criteria for querying audit entries.
type Filter struct {
	ActorID   int64
	Action    Action
	Entity    Entity
	EntityID  int64
	StartTime time.Time
	EndTime   time.Time
	Limit     int
	Offset    int
}

// Recorder is the append side of the audit trail, consumed by the feature
// services. Recording must never fail a business operation; implementations
// log and swallow persistence errors.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// Service persists audit entries in the relational database.
type Service struct {
	db     *sql.DB
	logErr func(msg string, args ...any)
}

// NewService creates an audit service. logErr receives persistence failures
// (typically logger.Error); nil disables failure logging.
func NewService(db *sql.DB, logErr func(msg string, args ...any)) *Service {
	return &Service{db: db, logErr: logErr}
}

// Record appends an entry, stamping id and timestamp when unset. Errors are
// reported through logErr and never returned: the audit trail must not break
// the operation being audited.
func (s *Service) Record(ctx context.Context, e Entry) {
	if err := s.insert(ctx, e); err != nil && s.logErr != nil {
		s.logErr("failed to record audit entry", "action", e.Action, "entity", e.Entity, "error", err)
	}
}

func (s *Service) insert(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_log (id, usuario_id, action, entity, entity_id, changes, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	// entity_id and ip_address are NOT NULL columns; zero values are stored
	// as-is rather than converted to NULL.
	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.ActorID,
		e.Action,
		e.Entity,
		e.EntityID,
		nullJSON(e.Changes),
		e.IPAddress,
		e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("auditoria: insert entry: %w", err)
	}
	return nil
}

// Query retrieves audit entries matching the filter, newest first.
func (s *Service) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	query := `
		SELECT id, usuario_id, action, entity, entity_id, changes, ip_address, created_at
		FROM audit_log
		WHERE 1=1
	`
	var args []any
	argIdx := 1

	if filter.ActorID != 0 {
		query += fmt.Sprintf(" AND usuario_id = $%d", argIdx)
		args = append(args, filter.ActorID)
		argIdx++
	}
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", argIdx)
		args = append(args, filter.Action)
		argIdx++
	}
	if filter.Entity != "" {
		query += fmt.Sprintf(" AND entity = $%d", argIdx)
		args = append(args, filter.Entity)
		argIdx++
	}
	if filter.EntityID != 0 {
		query += fmt.Sprintf(" AND entity_id = $%d", argIdx)
		args = append(args, filter.EntityID)
		argIdx++
	}
	if !filter.StartTime.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, filter.StartTime)
		argIdx++
	}
	if !filter.EndTime.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, filter.EndTime)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("auditoria: query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var entityID sql.NullInt64
		var ip sql.NullString
		var changes []byte
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Entity, &entityID, &changes, &ip, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("auditoria: scan entry: %w", err)
		}
		e.EntityID = entityID.Int64
		e.IPAddress = ip.String
		e.Changes = changes
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
