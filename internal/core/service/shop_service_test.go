package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/ports"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/infrastructure/db/memory"
)

const (
	technicianID int64 = 1
	mechanicID   int64 = 2
)

var (
	hashOnce sync.Once
	hashes   map[string]string
)

// hashOf returns a bcrypt hash of password, generated once per test binary.
func hashOf(t *testing.T, password string) string {
	t.Helper()
	hashOnce.Do(func() {
		hashes = make(map[string]string)
		for _, pw := range []string{"ann-secret", "bob-secret", "tech-secret", "mech-secret", "wrong"} {
			h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
			if err != nil {
				panic(err)
			}
			hashes[pw] = string(h)
		}
	})
	h, ok := hashes[password]
	if !ok {
		t.Fatalf("no precomputed hash for %q", password)
	}
	return h
}

// countingStore records how often the engine reached the store for clients.
type countingStore struct {
	ports.Store
	emailLookups int
}

func (c *countingStore) FindClientByEmail(ctx context.Context, email string) (*domain.Client, error) {
	c.emailLookups++
	return c.Store.FindClientByEmail(ctx, email)
}

// failingStore fails every order lookup with a transport error.
type failingStore struct {
	ports.Store
	err error
}

func (f failingStore) FindOrderByID(context.Context, int64) (*domain.Order, error) {
	return nil, f.err
}

// recordingObserver keeps the events the engine emitted.
type recordingObserver struct {
	ports.NopObserver
	completed   map[string]int
	failed      map[string]int
	bound       []domain.Role
	cleared     int
	transitions []string
	billed      []int64
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{completed: map[string]int{}, failed: map[string]int{}}
}

func (r *recordingObserver) OperationCompleted(op string, err error, _ time.Duration) {
	if err != nil {
		r.failed[op]++
		return
	}
	r.completed[op]++
}
func (r *recordingObserver) SessionBound(role domain.Role)  { r.bound = append(r.bound, role) }
func (r *recordingObserver) SessionCleared()                { r.cleared++ }
func (r *recordingObserver) OrderTransitioned(name string)  { r.transitions = append(r.transitions, name) }
func (r *recordingObserver) ReportBilled(cost int64)        { r.billed = append(r.billed, cost) }

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	for _, e := range []domain.Employee{
		{ID: technicianID, Name: "Tom", Role: domain.RoleTechnician, PasswordHash: hashOf(t, "tech-secret")},
		{ID: mechanicID, Name: "Mike", Role: domain.RoleMechanic, PasswordHash: hashOf(t, "mech-secret")},
	} {
		if _, err := s.InsertEmployee(ctx, &e); err != nil {
			t.Fatalf("seed employee: %v", err)
		}
	}
	return s
}

func newTestService(t *testing.T, opts Options) (*ShopService, *memory.Store) {
	t.Helper()
	store := seededStore(t)
	return NewShopService(store, zerolog.Nop(), opts), store
}

func mustNoErr(t *testing.T, err error, what string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", what, err)
	}
}

func expectErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

// registerAnnWithOrder leaves the engine anonymous with Ann registered, her
// vehicle set and one open inspection order.
func registerAnnWithOrder(t *testing.T, svc *ShopService) (clientID, orderID int64) {
	t.Helper()
	ctx := context.Background()

	sess, err := svc.RegisterClient(ctx, "Ann", "ann@x.co", hashOf(t, "ann-secret"))
	mustNoErr(t, err, "RegisterClient")
	id, _ := domain.IdentityOf(sess)
	mustNoErr(t, svc.RegisterVehicle(ctx, id.ID, "Toyota", "Corolla"), "RegisterVehicle")
	order, err := svc.CreateOrder(ctx, id.ID, domain.ServiceInspection)
	mustNoErr(t, err, "CreateOrder")
	_, err = svc.LogOut(ctx)
	mustNoErr(t, err, "LogOut")
	return id.ID, order.ID
}

// ---------------------------------------------------------------------------
// End-to-end scenarios
// ---------------------------------------------------------------------------

func TestShopService_Scenarios(t *testing.T) {
	ctx := context.Background()
	obs := newRecordingObserver()
	svc, store := newTestService(t, Options{Observer: obs})

	// A: client registration through to an open order.
	sess, err := svc.RegisterClient(ctx, "Ann", "ann@x.co", hashOf(t, "ann-secret"))
	mustNoErr(t, err, "RegisterClient")
	cs, ok := sess.(domain.ClientSession)
	if !ok || cs.Name != "Ann" {
		t.Fatalf("expected client session for Ann, got %v", sess)
	}
	ann := cs.ID

	mustNoErr(t, svc.RegisterVehicle(ctx, ann, "Toyota", "Corolla"), "RegisterVehicle")
	order, err := svc.CreateOrder(ctx, ann, domain.ServiceInspection)
	mustNoErr(t, err, "CreateOrder")

	orders, err := svc.ListClientOrders(ctx)
	mustNoErr(t, err, "ListClientOrders")
	if len(orders) != 1 || orders[0].Service != domain.ServiceInspection || orders[0].Finished {
		t.Fatalf("unexpected client orders: %+v", orders)
	}
	_, err = svc.LogOut(ctx)
	mustNoErr(t, err, "LogOut")

	// B: mechanic moves the order to repair and closes it.
	sess, err = svc.EmployeeLogin(ctx, mechanicID, hashOf(t, "mech-secret"))
	mustNoErr(t, err, "EmployeeLogin mechanic")
	if _, ok := sess.(domain.MechanicSession); !ok {
		t.Fatalf("expected mechanic session, got %T", sess)
	}
	mustNoErr(t, svc.AdvanceInspectionToRepair(ctx, order.ID), "AdvanceInspectionToRepair")
	got, _ := store.FindOrderByID(ctx, order.ID)
	if got.Service != domain.ServiceRepair {
		t.Fatalf("expected Repair, got %s", got.Service)
	}
	mustNoErr(t, svc.CloseOrder(ctx, order.ID), "CloseOrder")
	got, _ = store.FindOrderByID(ctx, order.ID)
	if !got.Finished {
		t.Fatal("expected order to be finished")
	}
	_, err = svc.LogOut(ctx)
	mustNoErr(t, err, "LogOut")

	// C: technician bills the order and the client reads the report.
	sess, err = svc.EmployeeLogin(ctx, technicianID, hashOf(t, "tech-secret"))
	mustNoErr(t, err, "EmployeeLogin technician")
	if _, ok := sess.(domain.TechnicianSession); !ok {
		t.Fatalf("expected technician session, got %T", sess)
	}
	finished, err := svc.ListFinishedOrders(ctx)
	mustNoErr(t, err, "ListFinishedOrders")
	if len(finished) != 1 || finished[0].ID != order.ID {
		t.Fatalf("unexpected finished orders: %+v", finished)
	}
	report, err := svc.CreateReport(ctx, order.ID, 15000)
	mustNoErr(t, err, "CreateReport")
	if report.Cost != 15000 || report.ClientID != ann || report.OrderID != order.ID {
		t.Fatalf("unexpected report: %+v", report)
	}
	_, err = svc.LogOut(ctx)
	mustNoErr(t, err, "LogOut")

	_, err = svc.ClientLogin(ctx, "ann@x.co", hashOf(t, "ann-secret"))
	mustNoErr(t, err, "ClientLogin")
	read, err := svc.GetReport(ctx, report.ID)
	mustNoErr(t, err, "GetReport")
	if read.Cost != 15000 || read.OrderID != order.ID || read.ClientID != ann {
		t.Fatalf("report round trip mismatch: %+v", read)
	}

	summary, err := svc.GetReportSummary(ctx, report.ID)
	mustNoErr(t, err, "GetReportSummary")
	if summary.Order.ID != order.ID || !summary.Order.Finished {
		t.Fatalf("unexpected summary order: %+v", summary.Order)
	}
	reports, err := svc.ListClientReports(ctx)
	mustNoErr(t, err, "ListClientReports")
	if len(reports) != 1 {
		t.Fatalf("expected one report, got %d", len(reports))
	}

	if len(obs.transitions) != 2 || obs.transitions[0] != transitionRepair || obs.transitions[1] != transitionClose {
		t.Errorf("unexpected transitions: %v", obs.transitions)
	}
	if len(obs.billed) != 1 || obs.billed[0] != 15000 {
		t.Errorf("unexpected billing events: %v", obs.billed)
	}
	if obs.cleared != 3 {
		t.Errorf("expected 3 logouts, got %d", obs.cleared)
	}
	if obs.completed["CreateReport"] != 1 {
		t.Errorf("CreateReport completion not observed")
	}
}

// ---------------------------------------------------------------------------
// Session and authentication
// ---------------------------------------------------------------------------

func TestClientLogin_InvalidEmailSkipsStore(t *testing.T) {
	store := &countingStore{Store: seededStore(t)}
	svc := NewShopService(store, zerolog.Nop(), Options{})

	_, err := svc.ClientLogin(context.Background(), "ann@@x", hashOf(t, "ann-secret"))
	expectErr(t, err, domain.ErrEmailIncorrectFormat)
	if store.emailLookups != 0 {
		t.Fatalf("expected no store lookup, got %d", store.emailLookups)
	}
	if svc.IsLoggedIn() {
		t.Fatal("session must stay anonymous")
	}
}

func TestClientLogin_Failures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Options{})
	registerAnnWithOrder(t, svc)

	tests := []struct {
		name   string
		email  string
		hash   string
		target error
	}{
		{"unhashed password", "ann@x.co", "plaintext", domain.ErrPasswordNotHashed},
		{"unknown email", "bob@x.co", hashOf(t, "bob-secret"), domain.ErrEmailNotRegistered},
		{"wrong hash", "ann@x.co", hashOf(t, "wrong"), domain.ErrIncorrectPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, err := svc.ClientLogin(ctx, tt.email, tt.hash)
			expectErr(t, err, tt.target)
			if _, ok := sess.(domain.Anonymous); !ok {
				t.Fatalf("expected anonymous session, got %v", sess)
			}
		})
	}

	_, err := svc.ClientLogin(ctx, "ann@x.co", hashOf(t, "wrong"))
	if err.Error() != "incorrect password for ann@x.co" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestLogin_AlreadyLoggedIn(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Options{})
	_, err := svc.EmployeeLogin(ctx, mechanicID, hashOf(t, "mech-secret"))
	mustNoErr(t, err, "EmployeeLogin")

	_, err = svc.EmployeeLogin(ctx, technicianID, hashOf(t, "tech-secret"))
	expectErr(t, err, domain.ErrAlreadyLoggedIn)
	_, err = svc.ClientLogin(ctx, "not an email", "x")
	expectErr(t, err, domain.ErrAlreadyLoggedIn)
	_, err = svc.RegisterClient(ctx, "Bob", "bob@x.co", hashOf(t, "bob-secret"))
	expectErr(t, err, domain.ErrAlreadyLoggedIn)

	if _, ok := svc.CurrentSession().(domain.MechanicSession); !ok {
		t.Fatalf("session changed to %v", svc.CurrentSession())
	}
}

func TestEmployeeLogin_Failures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Options{})

	_, err := svc.EmployeeLogin(ctx, mechanicID, "$2b$10$short")
	expectErr(t, err, domain.ErrPasswordNotHashed)

	_, err = svc.EmployeeLogin(ctx, 42, hashOf(t, "mech-secret"))
	expectErr(t, err, domain.ErrEmployeeNotRegistered)
	if err.Error() != "no employee with ID 42" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	_, err = svc.EmployeeLogin(ctx, mechanicID, hashOf(t, "tech-secret"))
	expectErr(t, err, domain.ErrIncorrectPassword)
	if domain.KindOf(err) != domain.KindCredential {
		t.Fatalf("expected credential kind, got %s", domain.KindOf(err))
	}
}

func TestEmployeeLogin_UnknownStoredRole(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, Options{})
	hash := hashOf(t, "tech-secret")
	if _, err := store.InsertEmployee(ctx, &domain.Employee{ID: 9, Name: "Eve", Role: domain.RoleClient, PasswordHash: hash}); err != nil {
		t.Fatalf("InsertEmployee: %v", err)
	}

	_, err := svc.EmployeeLogin(ctx, 9, hash)
	expectErr(t, err, domain.ErrUnknownRole)
	if domain.KindOf(err) != domain.KindPermission {
		t.Fatalf("expected permission kind, got %s", domain.KindOf(err))
	}
	if svc.IsLoggedIn() {
		t.Fatal("an employee with an unknown role must not be bound")
	}
}

func TestRegisterClient_Failures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Options{})
	registerAnnWithOrder(t, svc)

	_, err := svc.RegisterClient(ctx, "Ann", "ann.x.co", hashOf(t, "ann-secret"))
	expectErr(t, err, domain.ErrEmailIncorrectFormat)

	_, err = svc.RegisterClient(ctx, "Other Ann", "ann@x.co", hashOf(t, "bob-secret"))
	expectErr(t, err, domain.ErrEmailAlreadyRegistered)
	if svc.IsLoggedIn() {
		t.Fatal("failed registration must not bind a session")
	}
}

func TestRegisterClient_StoresCredentialAsGiven(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, Options{})

	sess, err := svc.RegisterClient(ctx, "Ann", "ann@x.co", "$validhash$")
	mustNoErr(t, err, "RegisterClient")
	cs, ok := sess.(domain.ClientSession)
	if !ok || cs.Name != "Ann" {
		t.Fatalf("expected client session for Ann, got %v", sess)
	}
	c, err := store.FindClientByID(ctx, cs.ID)
	mustNoErr(t, err, "FindClientByID")
	if c.PasswordHash != "$validhash$" {
		t.Fatalf("stored credential = %q", c.PasswordHash)
	}
}

func TestRegisterClient_NoVehicle(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, Options{})

	sess, err := svc.RegisterClient(ctx, "Bob", "bob@x.co", hashOf(t, "bob-secret"))
	mustNoErr(t, err, "RegisterClient")
	id, _ := domain.IdentityOf(sess)
	c, err := store.FindClientByID(ctx, id.ID)
	mustNoErr(t, err, "FindClientByID")
	if c.HasVehicle() {
		t.Fatal("new client must not have a vehicle")
	}
	if c.PasswordHash != hashOf(t, "bob-secret") {
		t.Fatal("hash must be stored verbatim")
	}
}

func TestLogOut(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Options{})

	_, err := svc.LogOut(ctx)
	expectErr(t, err, domain.ErrNotLoggedIn)
	if err.Error() != "function LogOut requires being logged in" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	_, err = svc.EmployeeLogin(ctx, technicianID, hashOf(t, "tech-secret"))
	mustNoErr(t, err, "EmployeeLogin")
	sess, err := svc.LogOut(ctx)
	mustNoErr(t, err, "LogOut")
	if _, ok := sess.(domain.Anonymous); !ok {
		t.Fatalf("expected anonymous, got %v", sess)
	}
}

func TestSetSession(t *testing.T) {
	svc, _ := newTestService(t, Options{NewSeat: func() string { return "seat-1" }})

	svc.SetSession(domain.TechnicianSession{Identity: domain.Identity{ID: 7, Name: "Tess"}})
	if !svc.IsLoggedIn() || svc.seat != "seat-1" {
		t.Fatalf("expected bound session with seat, got %v / %q", svc.CurrentSession(), svc.seat)
	}
	svc.SetSession(nil)
	if svc.IsLoggedIn() {
		t.Fatal("nil session must reset to anonymous")
	}
	if svc.seat != "" {
		t.Fatalf("seat must be cleared, got %q", svc.seat)
	}
}

// ---------------------------------------------------------------------------
// Authorization
// ---------------------------------------------------------------------------

// roleOps runs every role-scoped operation once and returns the errors by name.
func roleOps(svc *ShopService) map[string]error {
	ctx := context.Background()
	errs := map[string]error{}
	errs["RegisterVehicle"] = svc.RegisterVehicle(ctx, 1, "Fiat", "Panda")
	_, errs["GetVehicle"] = svc.GetVehicle(ctx, 1)
	_, errs["CreateOrder"] = svc.CreateOrder(ctx, 1, domain.ServiceRepair)
	errs["CheckOrder"] = svc.CheckOrder(ctx, 1)
	_, errs["ListUnfinishedOrders"] = svc.ListUnfinishedOrders(ctx)
	_, errs["ListFinishedOrders"] = svc.ListFinishedOrders(ctx)
	_, errs["ListClientOrders"] = svc.ListClientOrders(ctx)
	errs["AdvanceInspectionToRepair"] = svc.AdvanceInspectionToRepair(ctx, 1)
	errs["CloseOrder"] = svc.CloseOrder(ctx, 1)
	_, errs["CreateReport"] = svc.CreateReport(ctx, 1, 100)
	_, errs["GetReport"] = svc.GetReport(ctx, 1)
	_, errs["GetReportSummary"] = svc.GetReportSummary(ctx, 1)
	_, errs["ListClientReports"] = svc.ListClientReports(ctx)
	_, errs["LogOut"] = svc.LogOut(ctx)
	return errs
}

func TestAnonymousSessionIsRejectedEverywhere(t *testing.T) {
	svc, _ := newTestService(t, Options{})

	for op, err := range roleOps(svc) {
		if !errors.Is(err, domain.ErrNotLoggedIn) {
			t.Errorf("%s: expected ErrNotLoggedIn, got %v", op, err)
			continue
		}
		if want := "function " + op + " requires being logged in"; err.Error() != want {
			t.Errorf("%s: message %q, want %q", op, err.Error(), want)
		}
	}
}

func TestRoleMatrix(t *testing.T) {
	denied := map[domain.Role][]string{
		domain.RoleClient: {
			"ListUnfinishedOrders", "ListFinishedOrders",
			"AdvanceInspectionToRepair", "CloseOrder", "CreateReport",
		},
		domain.RoleTechnician: {
			"CreateOrder", "ListUnfinishedOrders", "ListClientOrders",
			"AdvanceInspectionToRepair", "CloseOrder",
			"GetReport", "GetReportSummary", "ListClientReports",
		},
		domain.RoleMechanic: {
			"RegisterVehicle", "ListFinishedOrders", "ListClientOrders",
			"CreateReport", "GetReport", "GetReportSummary", "ListClientReports",
		},
	}
	sessions := map[domain.Role]domain.Session{
		domain.RoleClient:     domain.ClientSession{Identity: domain.Identity{ID: 99, Name: "Zed"}},
		domain.RoleTechnician: domain.TechnicianSession{Identity: domain.Identity{ID: technicianID, Name: "Tom"}},
		domain.RoleMechanic:   domain.MechanicSession{Identity: domain.Identity{ID: mechanicID, Name: "Mike"}},
	}

	for role, ops := range denied {
		t.Run(string(role), func(t *testing.T) {
			svc, _ := newTestService(t, Options{})
			svc.SetSession(sessions[role])

			errs := roleOps(svc)
			deniedSet := map[string]bool{}
			for _, op := range ops {
				deniedSet[op] = true
				if !errors.Is(errs[op], domain.ErrPermissionDenied) {
					t.Errorf("%s: expected ErrPermissionDenied, got %v", op, errs[op])
				}
			}
			for op, err := range errs {
				if deniedSet[op] {
					continue
				}
				if errors.Is(err, domain.ErrPermissionDenied) || errors.Is(err, domain.ErrNotLoggedIn) {
					t.Errorf("%s: expected to be permitted, got %v", op, err)
				}
			}
		})
	}
}

func TestRegisterVehicle_MechanicDeniedRegardlessOfState(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Options{})
	ann, _ := registerAnnWithOrder(t, svc)

	svc.SetSession(domain.MechanicSession{Identity: domain.Identity{ID: mechanicID, Name: "Mike"}})
	for _, clientID := range []int64{ann, 404} {
		err := svc.RegisterVehicle(ctx, clientID, "Fiat", "Panda")
		expectErr(t, err, domain.ErrPermissionDenied)
	}
}

// ---------------------------------------------------------------------------
// Vehicles
// ---------------------------------------------------------------------------

func TestRegisterVehicle_NotIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Options{})

	sess, err := svc.RegisterClient(ctx, "Ann", "ann@x.co", hashOf(t, "ann-secret"))
	mustNoErr(t, err, "RegisterClient")
	id, _ := domain.IdentityOf(sess)

	mustNoErr(t, svc.RegisterVehicle(ctx, id.ID, "Toyota", "Corolla"), "first RegisterVehicle")
	for _, v := range []domain.Vehicle{{Make: "Toyota", Model: "Corolla"}, {Make: "Fiat", Model: "Panda"}} {
		err := svc.RegisterVehicle(ctx, id.ID, v.Make, v.Model)
		expectErr(t, err, domain.ErrVehicleAlreadyRegistered)
	}

	v, err := svc.GetVehicle(ctx, id.ID)
	mustNoErr(t, err, "GetVehicle")
	if v == nil || v.String() != "Toyota Corolla" {
		t.Fatalf("unexpected vehicle %v", v)
	}
}

func TestRegisterVehicle_Failures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Options{})
	svc.SetSession(domain.TechnicianSession{Identity: domain.Identity{ID: technicianID, Name: "Tom"}})

	err := svc.RegisterVehicle(ctx, 404, "Fiat", "Panda")
	expectErr(t, err, domain.ErrClientNotFound)
	if err.Error() != "client 404 does not exist" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	err = svc.RegisterVehicle(ctx, 404, "Fiat", "")
	expectErr(t, err, domain.ErrInvalidInput)
}

func TestGetVehicle_NoneRegistered(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Options{})
	sess, err := svc.RegisterClient(ctx, "Bob", "bob@x.co", hashOf(t, "bob-secret"))
	mustNoErr(t, err, "RegisterClient")
	id, _ := domain.IdentityOf(sess)

	v, err := svc.GetVehicle(ctx, id.ID)
	mustNoErr(t, err, "GetVehicle")
	if v != nil {
		t.Fatalf("expected no vehicle, got %v", v)
	}
	_, err = svc.GetVehicle(ctx, 404)
	expectErr(t, err, domain.ErrClientNotFound)
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

func TestCreateOrder_Failures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Options{})

	sess, err := svc.RegisterClient(ctx, "Bob", "bob@x.co", hashOf(t, "bob-secret"))
	mustNoErr(t, err, "RegisterClient")
	id, _ := domain.IdentityOf(sess)

	_, err = svc.CreateOrder(ctx, id.ID, domain.ServiceRepair)
	expectErr(t, err, domain.ErrNoVehicleRegistered)

	_, err = svc.CreateOrder(ctx, 404, domain.ServiceRepair)
	expectErr(t, err, domain.ErrClientNotFound)

	_, err = svc.CreateOrder(ctx, id.ID, domain.Service("Paint"))
	expectErr(t, err, domain.ErrInvalidInput)
}

func TestCreateOrder_MechanicMayOpenOrders(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Options{})
	ann, _ := registerAnnWithOrder(t, svc)

	svc.SetSession(domain.MechanicSession{Identity: domain.Identity{ID: mechanicID, Name: "Mike"}})
	order, err := svc.CreateOrder(ctx, ann, domain.ServiceRepair)
	mustNoErr(t, err, "CreateOrder")
	if order.ClientID != ann || order.Service != domain.ServiceRepair || order.Finished {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestAdvanceInspectionToRepair_OnlyFromInspection(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, Options{})
	ann, inspection := registerAnnWithOrder(t, svc)

	repair, err := store.InsertOrder(ctx, &domain.Order{ClientID: ann, Service: domain.ServiceRepair})
	mustNoErr(t, err, "InsertOrder")
	finished, err := store.InsertOrder(ctx, &domain.Order{ClientID: ann, Service: domain.ServiceInspection, Finished: true})
	mustNoErr(t, err, "InsertOrder")

	svc.SetSession(domain.MechanicSession{Identity: domain.Identity{ID: mechanicID, Name: "Mike"}})

	for _, o := range []*domain.Order{repair, finished} {
		err := svc.AdvanceInspectionToRepair(ctx, o.ID)
		expectErr(t, err, domain.ErrOrderNotInspection)
		after, _ := store.FindOrderByID(ctx, o.ID)
		if *after != *o {
			t.Fatalf("order mutated on failure: before %+v after %+v", o, after)
		}
	}

	err = svc.AdvanceInspectionToRepair(ctx, 404)
	expectErr(t, err, domain.ErrOrderNotFound)

	mustNoErr(t, svc.AdvanceInspectionToRepair(ctx, inspection), "AdvanceInspectionToRepair")
	err = svc.AdvanceInspectionToRepair(ctx, inspection)
	expectErr(t, err, domain.ErrOrderNotInspection)
}

func TestCloseOrder_Policies(t *testing.T) {
	ctx := context.Background()
	mechanic := domain.MechanicSession{Identity: domain.Identity{ID: mechanicID, Name: "Mike"}}

	t.Run("noop", func(t *testing.T) {
		obs := newRecordingObserver()
		svc, store := newTestService(t, Options{Observer: obs})
		_, orderID := registerAnnWithOrder(t, svc)
		svc.SetSession(mechanic)

		mustNoErr(t, svc.CloseOrder(ctx, orderID), "first CloseOrder")
		before, _ := store.FindOrderByID(ctx, orderID)
		mustNoErr(t, svc.CloseOrder(ctx, orderID), "second CloseOrder")
		after, _ := store.FindOrderByID(ctx, orderID)
		if *before != *after || !after.Finished {
			t.Fatalf("re-close changed state: %+v -> %+v", before, after)
		}
		if len(obs.transitions) != 1 {
			t.Fatalf("expected a single close transition, got %v", obs.transitions)
		}
	})

	t.Run("reject", func(t *testing.T) {
		svc, store := newTestService(t, Options{ClosePolicy: CloseReject})
		_, orderID := registerAnnWithOrder(t, svc)
		svc.SetSession(mechanic)

		mustNoErr(t, svc.CloseOrder(ctx, orderID), "first CloseOrder")
		err := svc.CloseOrder(ctx, orderID)
		expectErr(t, err, domain.ErrOrderAlreadyFinished)
		if domain.KindOf(err) != domain.KindPrecondition {
			t.Fatalf("expected precondition kind, got %s", domain.KindOf(err))
		}
		after, _ := store.FindOrderByID(ctx, orderID)
		if !after.Finished || after.Service != domain.ServiceInspection {
			t.Fatalf("unexpected order state %+v", after)
		}
	})
}

func TestCloseOrder_InspectionOrderKeepsService(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, Options{})
	_, orderID := registerAnnWithOrder(t, svc)
	svc.SetSession(domain.MechanicSession{Identity: domain.Identity{ID: mechanicID, Name: "Mike"}})

	mustNoErr(t, svc.CloseOrder(ctx, orderID), "CloseOrder")
	o, _ := store.FindOrderByID(ctx, orderID)
	if o.State() != domain.StateFinished || o.Service != domain.ServiceInspection {
		t.Fatalf("unexpected order %+v", o)
	}

	err := svc.CloseOrder(ctx, 404)
	expectErr(t, err, domain.ErrOrderNotFound)
}

func TestListOrders(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, Options{})
	ann, annOrder := registerAnnWithOrder(t, svc)

	other, err := store.InsertOrder(ctx, &domain.Order{ClientID: ann + 1, Service: domain.ServiceRepair, Finished: true})
	mustNoErr(t, err, "InsertOrder")

	svc.SetSession(domain.MechanicSession{Identity: domain.Identity{ID: mechanicID, Name: "Mike"}})
	open, err := svc.ListUnfinishedOrders(ctx)
	mustNoErr(t, err, "ListUnfinishedOrders")
	if len(open) != 1 || open[0].ID != annOrder {
		t.Fatalf("unexpected unfinished orders %+v", open)
	}

	svc.SetSession(domain.TechnicianSession{Identity: domain.Identity{ID: technicianID, Name: "Tom"}})
	done, err := svc.ListFinishedOrders(ctx)
	mustNoErr(t, err, "ListFinishedOrders")
	if len(done) != 1 || done[0].ID != other.ID {
		t.Fatalf("unexpected finished orders %+v", done)
	}

	svc.SetSession(domain.ClientSession{Identity: domain.Identity{ID: ann, Name: "Ann"}})
	mine, err := svc.ListClientOrders(ctx)
	mustNoErr(t, err, "ListClientOrders")
	if len(mine) != 1 || mine[0].ID != annOrder {
		t.Fatalf("unexpected client orders %+v", mine)
	}
}

func TestCheckOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Options{})
	_, orderID := registerAnnWithOrder(t, svc)
	svc.SetSession(domain.TechnicianSession{Identity: domain.Identity{ID: technicianID, Name: "Tom"}})

	mustNoErr(t, svc.CheckOrder(ctx, orderID), "CheckOrder")
	err := svc.CheckOrder(ctx, orderID+1)
	expectErr(t, err, domain.ErrOrderNotFound)
}

// ---------------------------------------------------------------------------
// Reports
// ---------------------------------------------------------------------------

func TestCreateReport(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, Options{})
	ann, orderID := registerAnnWithOrder(t, svc)
	svc.SetSession(domain.TechnicianSession{Identity: domain.Identity{ID: technicianID, Name: "Tom"}})

	report, err := svc.CreateReport(ctx, orderID, 0)
	mustNoErr(t, err, "CreateReport")
	if report.ClientID != ann || report.OrderID != orderID {
		t.Fatalf("unexpected report %+v", report)
	}
	o, _ := store.FindOrderByID(ctx, orderID)
	if o.Finished {
		t.Fatal("billing must not close the order")
	}

	_, err = svc.CreateReport(ctx, orderID, -1)
	expectErr(t, err, domain.ErrInvalidInput)

	_, err = svc.CreateReport(ctx, 404, 100)
	expectErr(t, err, domain.ErrOrderNotFound)
}

func TestGetReport_AccessPolicies(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, policy ReportAccessPolicy) (*ShopService, int64) {
		svc, _ := newTestService(t, Options{ReportAccess: policy})
		_, orderID := registerAnnWithOrder(t, svc)
		svc.SetSession(domain.TechnicianSession{Identity: domain.Identity{ID: technicianID, Name: "Tom"}})
		report, err := svc.CreateReport(ctx, orderID, 2500)
		mustNoErr(t, err, "CreateReport")
		_, err = svc.LogOut(ctx)
		mustNoErr(t, err, "LogOut")
		_, err = svc.RegisterClient(ctx, "Bob", "bob@x.co", hashOf(t, "bob-secret"))
		mustNoErr(t, err, "RegisterClient")
		return svc, report.ID
	}

	t.Run("open", func(t *testing.T) {
		svc, reportID := setup(t, ReportAccessOpen)
		r, err := svc.GetReport(ctx, reportID)
		mustNoErr(t, err, "GetReport")
		if r.Cost != 2500 {
			t.Fatalf("unexpected report %+v", r)
		}
		_, err = svc.GetReport(ctx, reportID+1)
		expectErr(t, err, domain.ErrReportNotFound)
	})

	t.Run("owner", func(t *testing.T) {
		svc, reportID := setup(t, ReportAccessOwner)
		_, err := svc.GetReport(ctx, reportID)
		expectErr(t, err, domain.ErrPermissionDenied)
		_, err = svc.GetReportSummary(ctx, reportID)
		expectErr(t, err, domain.ErrPermissionDenied)

		reports, err := svc.ListClientReports(ctx)
		mustNoErr(t, err, "ListClientReports")
		if len(reports) != 0 {
			t.Fatalf("Bob must not see Ann's reports: %+v", reports)
		}
	})
}

func TestStoreErrorsPassThrough(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewShopService(failingStore{Store: seededStore(t), err: boom}, zerolog.Nop(), Options{})
	svc.SetSession(domain.MechanicSession{Identity: domain.Identity{ID: mechanicID, Name: "Mike"}})

	err := svc.CloseOrder(context.Background(), 1)
	if err != boom {
		t.Fatalf("expected the store error unchanged, got %v", err)
	}
	if domain.KindOf(err) != domain.KindStore {
		t.Fatalf("expected store kind, got %s", domain.KindOf(err))
	}
}

func TestParsePolicies(t *testing.T) {
	if p, err := ParseReportAccess("owner"); err != nil || p != ReportAccessOwner {
		t.Errorf("ParseReportAccess(owner) = %v, %v", p, err)
	}
	if p, err := ParseReportAccess(""); err != nil || p != ReportAccessOpen {
		t.Errorf("ParseReportAccess(\"\") = %v, %v", p, err)
	}
	if _, err := ParseReportAccess("closed"); err == nil {
		t.Error("expected error for unknown report access policy")
	}
	if p, err := ParseClosePolicy("reject"); err != nil || p != CloseReject {
		t.Errorf("ParseClosePolicy(reject) = %v, %v", p, err)
	}
	if _, err := ParseClosePolicy("ignore"); err == nil {
		t.Error("expected error for unknown close policy")
	}
}
