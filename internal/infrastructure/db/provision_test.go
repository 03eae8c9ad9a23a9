package db

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/validation"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/infrastructure/db/memory"
)

func TestSeedEmployees(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	created, err := SeedEmployees(ctx, store, "letmein", bcrypt.MinCost, zerolog.Nop())
	if err != nil {
		t.Fatalf("SeedEmployees: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 employees, got %d", len(created))
	}

	for _, want := range []struct {
		id   int64
		role domain.Role
	}{{1, domain.RoleTechnician}, {2, domain.RoleMechanic}} {
		e, err := store.FindEmployeeByID(ctx, want.id)
		if err != nil {
			t.Fatalf("FindEmployeeByID(%d): %v", want.id, err)
		}
		if e.Role != want.role {
			t.Errorf("employee %d role = %s, want %s", want.id, e.Role, want.role)
		}
		if !validation.IsHashedCredential(e.PasswordHash) {
			t.Errorf("employee %d hash %q is not a bcrypt hash", want.id, e.PasswordHash)
		}
		if bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte("letmein")) != nil {
			t.Errorf("employee %d hash does not match the seed password", want.id)
		}
	}
}

func TestSeedEmployees_SkipsPopulatedStore(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	if _, err := store.InsertEmployee(ctx, &domain.Employee{ID: 7, Role: domain.RoleMechanic}); err != nil {
		t.Fatalf("InsertEmployee: %v", err)
	}

	created, err := SeedEmployees(ctx, store, "letmein", bcrypt.MinCost, zerolog.Nop())
	if err != nil || created != nil {
		t.Fatalf("expected no-op, got %v, %v", created, err)
	}
	if _, err := store.FindEmployeeByID(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("employee 1 must not exist, got %v", err)
	}
}
