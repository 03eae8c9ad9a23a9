package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/ports"
)

const (
	transitionRepair = "inspection_to_repair"
	transitionClose  = "close"
)

// CreateOrder opens a new order for a client that has a vehicle registered.
func (s *ShopService) CreateOrder(ctx context.Context, clientID int64, service domain.Service) (_ *domain.Order, err error) {
	const op = "CreateOrder"
	log := s.opLogger(op).With().Int64("client_id", clientID).Logger()
	defer s.finish(log, op, time.Now(), &err)

	if _, err := s.authorize(op, notTechnicians); err != nil {
		return nil, err
	}
	if !service.Valid() {
		return nil, domain.InvalidInput(fmt.Sprintf("unknown service %q", service))
	}

	client, err := s.findClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !client.HasVehicle() {
		return nil, domain.NoVehicleRegistered(clientID)
	}

	order, err := s.store.InsertOrder(ctx, &domain.Order{ClientID: clientID, Service: service})
	if err != nil {
		return nil, err
	}
	log.Info().Int64("order_id", order.ID).Str("service", string(order.Service)).Msg("order created")
	return order, nil
}

// CheckOrder fails with OrderNotFound unless the order exists.
func (s *ShopService) CheckOrder(ctx context.Context, orderID int64) (err error) {
	const op = "CheckOrder"
	log := s.opLogger(op).With().Int64("order_id", orderID).Logger()
	defer s.finish(log, op, time.Now(), &err)

	if _, err := s.requireLoggedIn(op); err != nil {
		return err
	}
	_, err = s.findOrder(ctx, orderID)
	return err
}

// ListUnfinishedOrders is the mechanic's work queue.
func (s *ShopService) ListUnfinishedOrders(ctx context.Context) (_ []domain.Order, err error) {
	const op = "ListUnfinishedOrders"
	log := s.opLogger(op)
	defer s.finish(log, op, time.Now(), &err)

	if _, err := s.authorize(op, mechanicsOnly); err != nil {
		return nil, err
	}
	finished := false
	return s.store.ListOrders(ctx, ports.OrderFilter{Finished: &finished})
}

// ListFinishedOrders lists orders ready to be billed.
func (s *ShopService) ListFinishedOrders(ctx context.Context) (_ []domain.Order, err error) {
	const op = "ListFinishedOrders"
	log := s.opLogger(op)
	defer s.finish(log, op, time.Now(), &err)

	if _, err := s.authorize(op, techniciansOnly); err != nil {
		return nil, err
	}
	finished := true
	return s.store.ListOrders(ctx, ports.OrderFilter{Finished: &finished})
}

// ListClientOrders lists the orders of the logged-in client.
func (s *ShopService) ListClientOrders(ctx context.Context) (_ []domain.Order, err error) {
	const op = "ListClientOrders"
	log := s.opLogger(op)
	defer s.finish(log, op, time.Now(), &err)

	id, err := s.authorize(op, clientsOnly)
	if err != nil {
		return nil, err
	}
	return s.store.ListOrders(ctx, ports.OrderFilter{ClientID: &id.ID})
}

// AdvanceInspectionToRepair switches an open inspection order to repair.
func (s *ShopService) AdvanceInspectionToRepair(ctx context.Context, orderID int64) (err error) {
	const op = "AdvanceInspectionToRepair"
	log := s.opLogger(op).With().Int64("order_id", orderID).Logger()
	defer s.finish(log, op, time.Now(), &err)

	if _, err := s.authorize(op, mechanicsOnly); err != nil {
		return err
	}
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if err := order.AdvanceToRepair(); err != nil {
		return err
	}
	if err := s.store.UpdateOrder(ctx, order); err != nil {
		return err
	}
	s.observer.OrderTransitioned(transitionRepair)
	log.Info().Msg("order moved to repair")
	return nil
}

// CloseOrder marks an order finished whatever its service. Closing a finished
// order follows the configured ClosePolicy.
func (s *ShopService) CloseOrder(ctx context.Context, orderID int64) (err error) {
	const op = "CloseOrder"
	log := s.opLogger(op).With().Int64("order_id", orderID).Logger()
	defer s.finish(log, op, time.Now(), &err)

	if _, err := s.authorize(op, mechanicsOnly); err != nil {
		return err
	}
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.Close() {
		if s.opts.ClosePolicy == CloseReject {
			return domain.OrderAlreadyFinished(orderID)
		}
		log.Debug().Msg("order already finished")
		return nil
	}
	if err := s.store.UpdateOrder(ctx, order); err != nil {
		return err
	}
	s.observer.OrderTransitioned(transitionClose)
	log.Info().Str("service", string(order.Service)).Msg("order closed")
	return nil
}
