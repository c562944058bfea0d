package pacientes

import (
	"context"
	"testing"
)

func TestInMemoryRepository_CreateAndGet(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	p, err := repo.Create(ctx, CreateInput{
		Nombres:   "Juan Carlos",
		Apellidos: "Pérez García",
		Telefono:  "555-0101",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if !p.Activo {
		t.Fatal("expected new paciente active")
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps set")
	}

	got, err := repo.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Nombres != "Juan Carlos" {
		t.Fatalf("expected nombres preserved, got %q", got.Nombres)
	}
}

func TestInMemoryRepository_CreateRequiresNames(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.Create(context.Background(), CreateInput{Nombres: "  "})
	if err != ErrInvalidNombre {
		t.Fatalf("expected ErrInvalidNombre, got %v", err)
	}
}

func TestInMemoryRepository_GetNotFound(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.Get(context.Background(), 42)
	if err != ErrPacienteNotFound {
		t.Fatalf("expected ErrPacienteNotFound, got %v", err)
	}
}

func TestInMemoryRepository_ListActivos(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	a, _ := repo.Create(ctx, CreateInput{Nombres: "María", Apellidos: "López"})
	b, _ := repo.Create(ctx, CreateInput{Nombres: "Pedro", Apellidos: "Rodríguez"})

	inactive := false
	if _, err := repo.Update(ctx, b.ID, UpdateInput{Activo: &inactive}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all, err := repo.List(ctx, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 pacientes, got %d", len(all))
	}

	activos, err := repo.List(ctx, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(activos) != 1 || activos[0].ID != a.ID {
		t.Fatalf("expected only active paciente %d, got %v", a.ID, activos)
	}
}

func TestInMemoryRepository_UpdatePartial(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	p, _ := repo.Create(ctx, CreateInput{Nombres: "Ana", Apellidos: "Martínez", Telefono: "555-0102"})

	tel := "555-9999"
	updated, err := repo.Update(ctx, p.ID, UpdateInput{Telefono: &tel})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Telefono != tel {
		t.Fatalf("expected telefono updated, got %q", updated.Telefono)
	}
	if updated.Nombres != "Ana" {
		t.Fatalf("expected nombres untouched, got %q", updated.Nombres)
	}

	if _, err := repo.Update(ctx, 999, UpdateInput{Telefono: &tel}); err != ErrPacienteNotFound {
		t.Fatalf("expected ErrPacienteNotFound, got %v", err)
	}
}
