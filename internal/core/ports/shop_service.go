package ports

import (
	"context"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
)

// ShopService is the session-bound operation set exposed to the front-end.
type ShopService interface {
	CurrentSession() domain.Session
	SetSession(session domain.Session)
	IsLoggedIn() bool

	ClientLogin(ctx context.Context, email, credentialHash string) (domain.Session, error)
	EmployeeLogin(ctx context.Context, id int64, credentialHash string) (domain.Session, error)
	RegisterClient(ctx context.Context, name, email, credentialHash string) (domain.Session, error)
	LogOut(ctx context.Context) (domain.Session, error)

	RegisterVehicle(ctx context.Context, clientID int64, vehicleMake, vehicleModel string) error
	GetVehicle(ctx context.Context, clientID int64) (*domain.Vehicle, error)

	CreateOrder(ctx context.Context, clientID int64, service domain.Service) (*domain.Order, error)
	CheckOrder(ctx context.Context, orderID int64) error
	ListUnfinishedOrders(ctx context.Context) ([]domain.Order, error)
	ListFinishedOrders(ctx context.Context) ([]domain.Order, error)
	ListClientOrders(ctx context.Context) ([]domain.Order, error)
	AdvanceInspectionToRepair(ctx context.Context, orderID int64) error
	CloseOrder(ctx context.Context, orderID int64) error

	CreateReport(ctx context.Context, orderID, cost int64) (*domain.Report, error)
	GetReport(ctx context.Context, reportID int64) (*domain.Report, error)
	GetReportSummary(ctx context.Context, reportID int64) (*domain.ReportSummary, error)
	ListClientReports(ctx context.Context) ([]domain.Report, error)
}
