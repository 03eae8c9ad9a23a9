package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/ports"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/infrastructure/db/storetest"
)

// openTestStore connects to SHOP_TEST_MONGO_URI and uses a fresh database
// that is dropped when the test ends.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("SHOP_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SHOP_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, Config{
		URI:      uri,
		Database: fmt.Sprintf("shop_test_%d", time.Now().UnixNano()),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		_ = s.db.Drop(ctx)
		_ = s.Close(ctx)
	})
	return s
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) ports.ProvisionedStore { return openTestStore(t) })
}

func TestInsertEmployee_CounterFollowsExplicitIDs(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if _, err := s.InsertEmployee(ctx, &domain.Employee{ID: 2, Name: "Mike", PasswordHash: "m", Role: domain.RoleMechanic}); err != nil {
		t.Fatalf("InsertEmployee: %v", err)
	}
	e, err := s.InsertEmployee(ctx, &domain.Employee{Name: "Tess", PasswordHash: "t", Role: domain.RoleTechnician})
	if err != nil {
		t.Fatalf("InsertEmployee: %v", err)
	}
	if e.ID != 3 {
		t.Fatalf("expected id 3 after explicit id 2, got %d", e.ID)
	}
}

func TestClientDocMapping(t *testing.T) {
	c := &domain.Client{ID: 4, Name: "Ann", Email: "ann@x.co", PasswordHash: "h"}
	if doc := toClientDoc(c); doc.Vehicle != nil {
		t.Fatalf("client without vehicle mapped to %+v", doc.Vehicle)
	}

	c.Vehicle = &domain.Vehicle{Make: "Skoda", Model: "Octavia"}
	back := toClientDoc(c).toDomain()
	if back.Vehicle == nil || *back.Vehicle != *c.Vehicle || back.Email != c.Email {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestEmployeeDocRejectsUnknownRole(t *testing.T) {
	if _, err := (employeeDoc{ID: 1, Role: "Janitor"}).toDomain(); err == nil {
		t.Fatal("expected an error for an unknown role")
	}
}
