// Package memory is a process-local record store. It backs tests and the
// SHOP_STORE=memory mode of the command-line front-end.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/ports"
)

// Store keeps every record in maps guarded by one mutex. Records are copied
// on the way in and out so callers never share memory with the store.
type Store struct {
	mu sync.RWMutex

	clients   map[int64]domain.Client
	employees map[int64]domain.Employee
	orders    map[int64]domain.Order
	reports   map[int64]domain.Report

	nextClient   int64
	nextEmployee int64
	nextOrder    int64
	nextReport   int64
}

var _ ports.ProvisionedStore = (*Store)(nil)

func New() *Store {
	return &Store{
		clients:   make(map[int64]domain.Client),
		employees: make(map[int64]domain.Employee),
		orders:    make(map[int64]domain.Order),
		reports:   make(map[int64]domain.Report),
	}
}

// Ping always succeeds; it lets the store take part in readiness checks.
func (s *Store) Ping(context.Context) error { return nil }

func cloneClient(c domain.Client) *domain.Client {
	if c.Vehicle != nil {
		v := *c.Vehicle
		c.Vehicle = &v
	}
	return &c
}

func (s *Store) FindClientByID(_ context.Context, id int64) (*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneClient(c), nil
}

func (s *Store) FindClientByEmail(_ context.Context, email string) (*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.clients {
		if c.Email == email {
			return cloneClient(c), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) InsertClient(_ context.Context, client *domain.Client) (*domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.clients {
		if c.Email == client.Email {
			return nil, domain.ErrDuplicate
		}
	}
	s.nextClient++
	stored := *cloneClient(*client)
	stored.ID = s.nextClient
	s.clients[stored.ID] = stored
	return cloneClient(stored), nil
}

func (s *Store) UpdateClient(_ context.Context, client *domain.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[client.ID]; !ok {
		return domain.ErrNotFound
	}
	s.clients[client.ID] = *cloneClient(*client)
	return nil
}

func (s *Store) FindEmployeeByID(_ context.Context, id int64) (*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.employees[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

// InsertEmployee keeps a caller-chosen identifier and assigns the next free
// one otherwise.
func (s *Store) InsertEmployee(_ context.Context, employee *domain.Employee) (*domain.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *employee
	if stored.ID == 0 {
		s.nextEmployee++
		stored.ID = s.nextEmployee
	}
	if _, ok := s.employees[stored.ID]; ok {
		return nil, domain.ErrDuplicate
	}
	if stored.ID > s.nextEmployee {
		s.nextEmployee = stored.ID
	}
	s.employees[stored.ID] = stored
	return &stored, nil
}

func (s *Store) CountEmployees(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.employees)), nil
}

func (s *Store) FindOrderByID(_ context.Context, id int64) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

func (s *Store) ListOrders(_ context.Context, filter ports.OrderFilter) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if filter.Matches(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) InsertOrder(_ context.Context, order *domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextOrder++
	stored := *order
	stored.ID = s.nextOrder
	s.orders[stored.ID] = stored
	return &stored, nil
}

func (s *Store) UpdateOrder(_ context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.ID]; !ok {
		return domain.ErrNotFound
	}
	s.orders[order.ID] = *order
	return nil
}

func (s *Store) FindReportByID(_ context.Context, id int64) (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (s *Store) ListReports(_ context.Context, filter ports.ReportFilter) ([]domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Report, 0, len(s.reports))
	for _, r := range s.reports {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) InsertReport(_ context.Context, report *domain.Report) (*domain.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextReport++
	stored := *report
	stored.ID = s.nextReport
	s.reports[stored.ID] = stored
	return &stored, nil
}
