// Package storetest holds the behaviour every ports.ProvisionedStore adapter
// must share. Adapter tests call Run with a factory for an empty store.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/ports"
)

// Run exercises store against the record store contract. newStore must return
// an empty store on every call.
func Run(t *testing.T, newStore func(t *testing.T) ports.ProvisionedStore) {
	t.Run("clients", func(t *testing.T) { testClients(t, newStore(t)) })
	t.Run("employees", func(t *testing.T) { testEmployees(t, newStore(t)) })
	t.Run("orders", func(t *testing.T) { testOrders(t, newStore(t)) })
	t.Run("reports", func(t *testing.T) { testReports(t, newStore(t)) })
}

func testClients(t *testing.T, s ports.ProvisionedStore) {
	ctx := context.Background()

	c, err := s.InsertClient(ctx, &domain.Client{Name: "Ann", Email: "ann@x.co", PasswordHash: "h1"})
	if err != nil {
		t.Fatalf("InsertClient: %v", err)
	}
	if c.ID == 0 {
		t.Fatal("InsertClient must assign an id")
	}
	if _, err := s.InsertClient(ctx, &domain.Client{Name: "Other", Email: "ann@x.co", PasswordHash: "h2"}); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for a reused email, got %v", err)
	}

	got, err := s.FindClientByEmail(ctx, "ann@x.co")
	if err != nil {
		t.Fatalf("FindClientByEmail: %v", err)
	}
	if got.ID != c.ID || got.Name != "Ann" || got.PasswordHash != "h1" || got.HasVehicle() {
		t.Fatalf("unexpected client %+v", got)
	}

	got.Vehicle = &domain.Vehicle{Make: "Toyota", Model: "Corolla"}
	if err := s.UpdateClient(ctx, got); err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}
	got, err = s.FindClientByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("FindClientByID: %v", err)
	}
	if got.Vehicle == nil || *got.Vehicle != (domain.Vehicle{Make: "Toyota", Model: "Corolla"}) {
		t.Fatalf("vehicle not persisted: %+v", got.Vehicle)
	}

	if _, err := s.FindClientByID(ctx, c.ID+100); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.FindClientByEmail(ctx, "nobody@x.co"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.UpdateClient(ctx, &domain.Client{ID: c.ID + 100, Email: "ghost@x.co"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func testEmployees(t *testing.T, s ports.ProvisionedStore) {
	ctx := context.Background()

	n, err := s.CountEmployees(ctx)
	if err != nil || n != 0 {
		t.Fatalf("CountEmployees on empty store = %d, %v", n, err)
	}
	for _, e := range []domain.Employee{
		{ID: 1, Name: "Tom", PasswordHash: "t", Role: domain.RoleTechnician},
		{ID: 2, Name: "Mike", PasswordHash: "m", Role: domain.RoleMechanic},
	} {
		if _, err := s.InsertEmployee(ctx, &e); err != nil {
			t.Fatalf("InsertEmployee(%d): %v", e.ID, err)
		}
	}
	if n, _ := s.CountEmployees(ctx); n != 2 {
		t.Fatalf("expected 2 employees, got %d", n)
	}

	e, err := s.FindEmployeeByID(ctx, 2)
	if err != nil {
		t.Fatalf("FindEmployeeByID: %v", err)
	}
	if e.Name != "Mike" || e.Role != domain.RoleMechanic || e.PasswordHash != "m" {
		t.Fatalf("unexpected employee %+v", e)
	}
	if _, err := s.FindEmployeeByID(ctx, 3); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testOrders(t *testing.T, s ports.ProvisionedStore) {
	ctx := context.Background()

	ann, err := s.InsertClient(ctx, &domain.Client{Name: "Ann", Email: "ann@x.co", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("InsertClient: %v", err)
	}
	bob, err := s.InsertClient(ctx, &domain.Client{Name: "Bob", Email: "bob@x.co", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("InsertClient: %v", err)
	}

	var ids []int64
	for _, o := range []domain.Order{
		{ClientID: ann.ID, Service: domain.ServiceInspection},
		{ClientID: bob.ID, Service: domain.ServiceRepair},
		{ClientID: ann.ID, Service: domain.ServiceRepair},
	} {
		stored, err := s.InsertOrder(ctx, &o)
		if err != nil {
			t.Fatalf("InsertOrder: %v", err)
		}
		if stored.Finished {
			t.Fatal("new orders start unfinished")
		}
		ids = append(ids, stored.ID)
	}

	o, err := s.FindOrderByID(ctx, ids[0])
	if err != nil {
		t.Fatalf("FindOrderByID: %v", err)
	}
	o.Service = domain.ServiceRepair
	o.Finished = true
	if err := s.UpdateOrder(ctx, o); err != nil {
		t.Fatalf("UpdateOrder: %v", err)
	}
	o, _ = s.FindOrderByID(ctx, ids[0])
	if o.Service != domain.ServiceRepair || !o.Finished {
		t.Fatalf("update not persisted: %+v", o)
	}

	finished, open := true, false
	got, err := s.ListOrders(ctx, ports.OrderFilter{Finished: &finished})
	if err != nil || len(got) != 1 || got[0].ID != ids[0] {
		t.Fatalf("finished orders = %+v, %v", got, err)
	}
	got, err = s.ListOrders(ctx, ports.OrderFilter{Finished: &open})
	if err != nil || len(got) != 2 || got[0].ID != ids[1] || got[1].ID != ids[2] {
		t.Fatalf("open orders = %+v, %v", got, err)
	}
	got, err = s.ListOrders(ctx, ports.OrderFilter{ClientID: &ann.ID})
	if err != nil || len(got) != 2 || got[0].ID != ids[0] || got[1].ID != ids[2] {
		t.Fatalf("Ann's orders = %+v, %v", got, err)
	}
	got, err = s.ListOrders(ctx, ports.OrderFilter{ClientID: &ann.ID, Finished: &open})
	if err != nil || len(got) != 1 || got[0].ID != ids[2] {
		t.Fatalf("Ann's open orders = %+v, %v", got, err)
	}

	if _, err := s.FindOrderByID(ctx, ids[2]+100); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testReports(t *testing.T, s ports.ProvisionedStore) {
	ctx := context.Background()

	ann, err := s.InsertClient(ctx, &domain.Client{Name: "Ann", Email: "ann@x.co", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("InsertClient: %v", err)
	}
	order, err := s.InsertOrder(ctx, &domain.Order{ClientID: ann.ID, Service: domain.ServiceRepair})
	if err != nil {
		t.Fatalf("InsertOrder: %v", err)
	}

	r, err := s.InsertReport(ctx, &domain.Report{ClientID: ann.ID, OrderID: order.ID, Cost: 15000})
	if err != nil {
		t.Fatalf("InsertReport: %v", err)
	}
	got, err := s.FindReportByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("FindReportByID: %v", err)
	}
	if *got != *r {
		t.Fatalf("report round trip: got %+v want %+v", got, r)
	}

	list, err := s.ListReports(ctx, ports.ReportFilter{ClientID: &ann.ID})
	if err != nil || len(list) != 1 || list[0].Cost != 15000 {
		t.Fatalf("Ann's reports = %+v, %v", list, err)
	}
	other := ann.ID + 100
	list, err = s.ListReports(ctx, ports.ReportFilter{ClientID: &other})
	if err != nil || len(list) != 0 {
		t.Fatalf("expected no reports, got %+v, %v", list, err)
	}
	if _, err := s.FindReportByID(ctx, r.ID+100); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
