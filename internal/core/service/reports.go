package service

import (
	"context"
	"errors"
	"time"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/ports"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/validation"
)

// CreateReport bills an order. The report takes its client from the order; the
// order itself is not changed.
func (s *ShopService) CreateReport(ctx context.Context, orderID, cost int64) (_ *domain.Report, err error) {
	const op = "CreateReport"
	log := s.opLogger(op).With().Int64("order_id", orderID).Logger()
	defer s.finish(log, op, time.Now(), &err)

	if _, err := s.authorize(op, techniciansOnly); err != nil {
		return nil, err
	}
	if err := validation.Struct(validation.ReportInput{Cost: cost}); err != nil {
		return nil, err
	}

	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	report, err := s.store.InsertReport(ctx, &domain.Report{
		ClientID: order.ClientID,
		OrderID:  order.ID,
		Cost:     cost,
	})
	if err != nil {
		return nil, err
	}
	s.observer.ReportBilled(report.Cost)
	log.Info().Int64("report_id", report.ID).Int64("cost", report.Cost).Msg("report created")
	return report, nil
}

// GetReport returns a report to a client, subject to the ReportAccessPolicy.
func (s *ShopService) GetReport(ctx context.Context, reportID int64) (_ *domain.Report, err error) {
	const op = "GetReport"
	log := s.opLogger(op).With().Int64("report_id", reportID).Logger()
	defer s.finish(log, op, time.Now(), &err)

	return s.readableReport(ctx, op, reportID)
}

// GetReportSummary returns a report together with the order it bills.
func (s *ShopService) GetReportSummary(ctx context.Context, reportID int64) (_ *domain.ReportSummary, err error) {
	const op = "GetReportSummary"
	log := s.opLogger(op).With().Int64("report_id", reportID).Logger()
	defer s.finish(log, op, time.Now(), &err)

	report, err := s.readableReport(ctx, op, reportID)
	if err != nil {
		return nil, err
	}
	order, err := s.store.FindOrderByID(ctx, report.OrderID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.OrderNotFound(report.OrderID)
	}
	if err != nil {
		return nil, err
	}
	return &domain.ReportSummary{Report: *report, Order: *order}, nil
}

// ListClientReports lists the reports billed to the logged-in client.
func (s *ShopService) ListClientReports(ctx context.Context) (_ []domain.Report, err error) {
	const op = "ListClientReports"
	log := s.opLogger(op)
	defer s.finish(log, op, time.Now(), &err)

	id, err := s.authorize(op, clientsOnly)
	if err != nil {
		return nil, err
	}
	return s.store.ListReports(ctx, ports.ReportFilter{ClientID: &id.ID})
}

func (s *ShopService) readableReport(ctx context.Context, op string, reportID int64) (*domain.Report, error) {
	id, err := s.authorize(op, clientsOnly)
	if err != nil {
		return nil, err
	}
	report, err := s.findReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if s.opts.ReportAccess == ReportAccessOwner && report.ClientID != id.ID {
		return nil, domain.PermissionDenied()
	}
	return report, nil
}
