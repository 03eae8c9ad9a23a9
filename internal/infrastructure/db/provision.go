// Package db holds what every record store backend shares: seeding of the
// employee accounts the shop cannot create through the engine.
package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/ports"
)

// DefaultEmployees are created on an empty store: a technician with id 1 and
// a mechanic with id 2.
var DefaultEmployees = []domain.Employee{
	{ID: 1, Name: "Technician", Role: domain.RoleTechnician},
	{ID: 2, Name: "Mechanic", Role: domain.RoleMechanic},
}

// SeedEmployees inserts DefaultEmployees with bcrypt(password) as their
// credential, unless the store already holds employees. It returns the
// created records; their hashes are what an employee logs in with.
func SeedEmployees(ctx context.Context, store ports.EmployeeProvisioner, password string, cost int, logger zerolog.Logger) ([]domain.Employee, error) {
	n, err := store.CountEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("count employees: %w", err)
	}
	if n > 0 {
		logger.Debug().Int64("employees", n).Msg("employees present, skipping seed")
		return nil, nil
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	created := make([]domain.Employee, 0, len(DefaultEmployees))
	for _, e := range DefaultEmployees {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return nil, fmt.Errorf("hash credential for employee %d: %w", e.ID, err)
		}
		e.PasswordHash = string(hash)

		stored, err := store.InsertEmployee(ctx, &e)
		if err != nil {
			return nil, fmt.Errorf("insert employee %d: %w", e.ID, err)
		}
		logger.Info().
			Int64("employee_id", stored.ID).
			Str("role", string(stored.Role)).
			Str("credential_hash", stored.PasswordHash).
			Msg("employee seeded")
		created = append(created, *stored)
	}
	return created, nil
}
