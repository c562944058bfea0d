package citas

import (
	"context"
	"errors"
	"testing"
	"time"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return parsed
}

func seedWeek(t *testing.T) *InMemoryRepository {
	t.Helper()
	repo := NewInMemoryRepository()
	repo.Seed([]Cita{
		{ID: 1, PacienteID: 1, PodologoID: 1, FechaHora: mustTime(t, "2026-03-02T09:00:00Z"), Estado: EstadoPendiente},
		{ID: 2, PacienteID: 2, PodologoID: 1, FechaHora: mustTime(t, "2026-03-02T10:00:00Z"), Estado: EstadoConfirmado},
		{ID: 3, PacienteID: 1, PodologoID: 2, FechaHora: mustTime(t, "2026-03-03T09:00:00Z"), Estado: EstadoCancelado},
		{ID: 4, PacienteID: 3, PodologoID: 2, FechaHora: mustTime(t, "2026-03-10T09:00:00Z"), Estado: EstadoPendiente},
	})
	return repo
}

func TestListFiltersCombineWithAND(t *testing.T) {
	repo := seedWeek(t)
	ctx := context.Background()

	out, err := repo.List(ctx, Filters{Estado: EstadoPendiente, PodologoID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].ID != 1 {
		t.Fatalf("expected exactly cita 1, got %+v", out)
	}
}

func TestListDateRangeBoundsInclusive(t *testing.T) {
	repo := seedWeek(t)
	ctx := context.Background()

	from := mustTime(t, "2026-03-02T09:00:00Z")
	to := mustTime(t, "2026-03-03T09:00:00Z")
	out, err := repo.List(ctx, Filters{FechaInicio: &from, FechaFin: &to})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected citas 1-3 (bounds inclusive), got %d", len(out))
	}
	if out[0].ID != 1 || out[2].ID != 3 {
		t.Fatalf("expected boundary citas included, got %+v", out)
	}
}

func TestListEmptyFiltersReturnsEverything(t *testing.T) {
	repo := seedWeek(t)

	out, err := repo.List(context.Background(), Filters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("expected all 4 citas, got %d", len(out))
	}
}

func TestListOrderedByFechaHora(t *testing.T) {
	repo := seedWeek(t)

	out, err := repo.List(context.Background(), Filters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(out); i++ {
		if out[i].FechaHora.Before(out[i-1].FechaHora) {
			t.Fatalf("citas out of order at index %d", i)
		}
	}
}

func TestCalendarRangeIgnoresEstado(t *testing.T) {
	repo := seedWeek(t)

	out, err := repo.CalendarRange(context.Background(),
		mustTime(t, "2026-03-01T00:00:00Z"), mustTime(t, "2026-03-07T23:59:59Z"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Cancelled cita 3 still shows on the calendar.
	if len(out) != 3 {
		t.Fatalf("expected 3 citas in week incl. cancelled, got %d", len(out))
	}
}

func TestCancelIsSoftDelete(t *testing.T) {
	repo := seedWeek(t)
	ctx := context.Background()

	c, err := repo.Cancel(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Estado != EstadoCancelado {
		t.Fatalf("expected estado cancelado, got %q", c.Estado)
	}

	got, err := repo.GetByID(ctx, 2)
	if err != nil {
		t.Fatalf("cancelled cita must remain retrievable: %v", err)
	}
	if got.Estado != EstadoCancelado {
		t.Fatalf("expected persisted estado cancelado, got %q", got.Estado)
	}
	if got.FechaHora != mustTime(t, "2026-03-02T10:00:00Z") {
		t.Fatal("cancel must not touch other fields")
	}
}

func TestRescheduleChangesOnlyFechaHora(t *testing.T) {
	repo := seedWeek(t)
	ctx := context.Background()

	before, _ := repo.GetByID(ctx, 2)
	nueva := mustTime(t, "2026-03-05T15:00:00Z")

	c, err := repo.Reschedule(ctx, 2, nueva)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.FechaHora.Equal(nueva) {
		t.Fatalf("expected fecha_hora moved, got %v", c.FechaHora)
	}
	if c.Estado != before.Estado || c.PacienteID != before.PacienteID ||
		c.PodologoID != before.PodologoID || c.Motivo != before.Motivo {
		t.Fatal("reschedule must preserve every other field")
	}
}

func TestUpdateShallowMerge(t *testing.T) {
	repo := seedWeek(t)
	ctx := context.Background()

	motivo := "revisión de uña encarnada"
	c, err := repo.Update(ctx, 1, UpdateInput{Motivo: &motivo})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Motivo != motivo {
		t.Fatalf("expected motivo updated, got %q", c.Motivo)
	}
	if c.Estado != EstadoPendiente || c.PodologoID != 1 {
		t.Fatal("absent fields must keep their values")
	}
}

func TestUpdateEstadoAnyTransitionAllowed(t *testing.T) {
	repo := seedWeek(t)
	ctx := context.Background()

	// cita 3 is cancelado; reviving it is legal.
	estado := EstadoConfirmado
	c, err := repo.Update(ctx, 3, UpdateInput{Estado: &estado})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Estado != EstadoConfirmado {
		t.Fatalf("expected estado confirmado, got %q", c.Estado)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.GetByID(context.Background(), 99)
	if !errors.Is(err, ErrCitaNotFound) {
		t.Fatalf("expected ErrCitaNotFound, got %v", err)
	}
}

func TestCancelNotFound(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.Cancel(context.Background(), 99)
	if !errors.Is(err, ErrCitaNotFound) {
		t.Fatalf("expected ErrCitaNotFound, got %v", err)
	}
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	repo := seedWeek(t)
	ctx := context.Background()

	c, err := repo.Create(ctx, Cita{PacienteID: 1, PodologoID: 1, FechaHora: mustTime(t, "2026-03-04T11:00:00Z"), Estado: EstadoPendiente})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID != 5 {
		t.Fatalf("expected id 5 after seeding 1-4, got %d", c.ID)
	}
}

func TestDoubleBookingAllowed(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	slot := mustTime(t, "2026-03-02T09:00:00Z")

	first, err := repo.Create(ctx, Cita{PacienteID: 1, PodologoID: 1, FechaHora: slot, Estado: EstadoPendiente})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := repo.Create(ctx, Cita{PacienteID: 2, PodologoID: 1, FechaHora: slot, Estado: EstadoPendiente})
	if err != nil {
		t.Fatalf("same podologo, same slot must not be rejected: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("expected two distinct citas")
	}
}
