package auditoria

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var loggedErr bool
	service := NewService(db, func(msg string, args ...any) { loggedErr = true })

	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(1, 1))

	service.Record(context.Background(), Entry{
		ActorID:  1,
		Action:   ActionCreate,
		Entity:   EntityCita,
		EntityID: 42,
		Changes:  json.RawMessage(`{"estado":"pendiente"}`),
	})

	assert.False(t, loggedErr, "successful insert should not log an error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_RecordBindsZeroValuesNotNull(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewService(db, nil)

	// entity_id and ip_address are NOT NULL in the schema; an explicit NULL
	// would bypass the column defaults and reject the insert, so zero values
	// must be bound directly.
	mock.ExpectExec("INSERT INTO audit_log").
		WithArgs(sqlmock.AnyArg(), int64(7), "create", "cita", int64(0), nil, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	service.Record(context.Background(), Entry{
		ActorID: 7,
		Action:  ActionCreate,
		Entity:  EntityCita,
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_RecordSwallowsFailures(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var loggedErr bool
	service := NewService(db, func(msg string, args ...any) { loggedErr = true })

	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnError(assert.AnError)

	// Must not panic or propagate; audit failures never break the operation.
	service.Record(context.Background(), Entry{ActorID: 1, Action: ActionLogin, Entity: EntityUsuario})

	assert.True(t, loggedErr, "insert failure should be logged")
}

func TestService_QueryFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewService(db, nil)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "usuario_id", "action", "entity", "entity_id", "changes", "ip_address", "created_at"}).
		AddRow("a1", int64(7), "update", "cita", int64(3), []byte(`{"estado":"confirmado"}`), "10.0.0.1", now)

	mock.ExpectQuery("SELECT (.+) FROM audit_log").
		WithArgs(int64(7), "update", "cita").
		WillReturnRows(rows)

	entries, err := service.Query(context.Background(), Filter{
		ActorID: 7,
		Action:  ActionUpdate,
		Entity:  EntityCita,
		Limit:   50,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(3), entries[0].EntityID)
	assert.Equal(t, "10.0.0.1", entries[0].IPAddress)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInMemoryRecorder_AppendOnlyNewestFirst(t *testing.T) {
	rec := NewInMemoryRecorder()
	ctx := context.Background()

	rec.Record(ctx, Entry{ActorID: 1, Action: ActionCreate, Entity: EntityPaciente, EntityID: 10})
	rec.Record(ctx, Entry{ActorID: 1, Action: ActionUpdate, Entity: EntityPaciente, EntityID: 10})
	rec.Record(ctx, Entry{ActorID: 2, Action: ActionLogin, Entity: EntityUsuario})

	all, err := rec.Query(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ActionLogin, all[0].Action, "newest entry first")
	for _, e := range all {
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.Timestamp.IsZero())
	}

	pacienteOnly, err := rec.Query(ctx, Filter{Entity: EntityPaciente})
	require.NoError(t, err)
	assert.Len(t, pacienteOnly, 2)

	limited, err := rec.Query(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	offset, err := rec.Query(ctx, Filter{Offset: 5})
	require.NoError(t, err)
	assert.Empty(t, offset)
}
