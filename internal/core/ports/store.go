package ports

import (
	"context"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
)

// Store adapters report a missing record with domain.ErrNotFound. Every other
// error is passed to the caller as is.

// ClientRepository persists client accounts.
type ClientRepository interface {
	FindClientByID(ctx context.Context, id int64) (*domain.Client, error)
	FindClientByEmail(ctx context.Context, email string) (*domain.Client, error)
	// InsertClient assigns the identifier and returns the stored record.
	InsertClient(ctx context.Context, client *domain.Client) (*domain.Client, error)
	UpdateClient(ctx context.Context, client *domain.Client) error
}

// EmployeeRepository looks up shop employees.
type EmployeeRepository interface {
	FindEmployeeByID(ctx context.Context, id int64) (*domain.Employee, error)
}

// EmployeeProvisioner is used outside the engine to seed employee accounts.
type EmployeeProvisioner interface {
	InsertEmployee(ctx context.Context, employee *domain.Employee) (*domain.Employee, error)
	CountEmployees(ctx context.Context) (int64, error)
}

// OrderFilter narrows ListOrders. Nil fields do not filter.
type OrderFilter struct {
	Finished *bool
	ClientID *int64
}

// Matches reports whether o satisfies the filter.
func (f OrderFilter) Matches(o domain.Order) bool {
	if f.Finished != nil && o.Finished != *f.Finished {
		return false
	}
	if f.ClientID != nil && o.ClientID != *f.ClientID {
		return false
	}
	return true
}

// OrderRepository persists work orders.
type OrderRepository interface {
	FindOrderByID(ctx context.Context, id int64) (*domain.Order, error)
	// ListOrders returns matching orders ordered by identifier.
	ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
	InsertOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	UpdateOrder(ctx context.Context, order *domain.Order) error
}

// ReportFilter narrows ListReports. Nil fields do not filter.
type ReportFilter struct {
	ClientID *int64
}

// Matches reports whether r satisfies the filter.
func (f ReportFilter) Matches(r domain.Report) bool {
	return f.ClientID == nil || r.ClientID == *f.ClientID
}

// ReportRepository persists billing reports. Reports are never updated.
type ReportRepository interface {
	FindReportByID(ctx context.Context, id int64) (*domain.Report, error)
	// ListReports returns matching reports ordered by identifier.
	ListReports(ctx context.Context, filter ReportFilter) ([]domain.Report, error)
	InsertReport(ctx context.Context, report *domain.Report) (*domain.Report, error)
}

// Store is the record store the engine runs against.
type Store interface {
	ClientRepository
	EmployeeRepository
	OrderRepository
	ReportRepository
}

// ProvisionedStore is a Store that can also seed employees.
type ProvisionedStore interface {
	Store
	EmployeeProvisioner
}
