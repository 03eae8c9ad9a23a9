package service

import (
	"context"
	"time"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/validation"
)

// RegisterVehicle attaches a vehicle to a client. A client holds at most one
// vehicle, so a second call fails.
func (s *ShopService) RegisterVehicle(ctx context.Context, clientID int64, vehicleMake, vehicleModel string) (err error) {
	const op = "RegisterVehicle"
	log := s.opLogger(op).With().Int64("client_id", clientID).Logger()
	defer s.finish(log, op, time.Now(), &err)

	if _, err := s.authorize(op, notMechanics); err != nil {
		return err
	}
	if err := validation.Struct(validation.VehicleInput{Make: vehicleMake, Model: vehicleModel}); err != nil {
		return err
	}

	client, err := s.findClient(ctx, clientID)
	if err != nil {
		return err
	}
	if client.HasVehicle() {
		return domain.VehicleAlreadyRegistered(clientID)
	}

	client.Vehicle = &domain.Vehicle{Make: vehicleMake, Model: vehicleModel}
	if err := s.store.UpdateClient(ctx, client); err != nil {
		return err
	}
	log.Info().Str("vehicle", client.Vehicle.String()).Msg("vehicle registered")
	return nil
}

// GetVehicle returns the client's vehicle, or nil when none is registered.
func (s *ShopService) GetVehicle(ctx context.Context, clientID int64) (_ *domain.Vehicle, err error) {
	const op = "GetVehicle"
	log := s.opLogger(op).With().Int64("client_id", clientID).Logger()
	defer s.finish(log, op, time.Now(), &err)

	if _, err := s.requireLoggedIn(op); err != nil {
		return nil, err
	}
	client, err := s.findClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return client.Vehicle, nil
}
