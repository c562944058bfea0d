package podologos

import (
	"context"
	"testing"
)

func TestInMemoryRepository_CRUD(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	p, err := repo.Create(ctx, CreateInput{
		Nombres:      "Roberto",
		Apellidos:    "González",
		Especialidad: "Podología General",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == 0 || !p.Activo {
		t.Fatalf("expected active podologo with id, got %+v", p)
	}

	esp := "Biomecánica Podal"
	updated, err := repo.Update(ctx, p.ID, UpdateInput{Especialidad: &esp})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Especialidad != esp {
		t.Fatalf("expected especialidad updated, got %q", updated.Especialidad)
	}

	inactive := false
	if _, err := repo.Update(ctx, p.ID, UpdateInput{Activo: &inactive}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	activos, _ := repo.List(ctx, true)
	if len(activos) != 0 {
		t.Fatalf("expected no active podologos, got %d", len(activos))
	}
	todos, _ := repo.List(ctx, false)
	if len(todos) != 1 {
		t.Fatalf("expected deactivated podologo retained, got %d", len(todos))
	}
}

func TestInMemoryRepository_Validation(t *testing.T) {
	repo := NewInMemoryRepository()

	if _, err := repo.Create(context.Background(), CreateInput{Nombres: "Solo"}); err != ErrInvalidNombre {
		t.Fatalf("expected ErrInvalidNombre, got %v", err)
	}
	if _, err := repo.Get(context.Background(), 7); err != ErrPodologoNotFound {
		t.Fatalf("expected ErrPodologoNotFound, got %v", err)
	}
}
