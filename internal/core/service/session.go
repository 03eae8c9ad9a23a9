package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/validation"
)

// ClientLogin binds the client registered under email. Both arguments are
// checked for shape before the store is consulted.
func (s *ShopService) ClientLogin(ctx context.Context, email, credentialHash string) (_ domain.Session, err error) {
	const op = "ClientLogin"
	log := s.opLogger(op)
	defer s.finish(log, op, time.Now(), &err)

	if s.IsLoggedIn() {
		return s.session, domain.AlreadyLoggedIn()
	}
	if !validation.IsWellFormedEmail(email) {
		return s.session, domain.EmailIncorrectFormat(email)
	}
	if !validation.IsHashedCredential(credentialHash) {
		return s.session, domain.PasswordNotHashed()
	}

	client, err := s.store.FindClientByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return s.session, domain.EmailNotRegistered(email)
	}
	if err != nil {
		return s.session, err
	}
	if !sameCredential(client.PasswordHash, credentialHash) {
		return s.session, domain.ClientIncorrectPassword(email)
	}

	s.bind(domain.ClientSession{Identity: domain.Identity{ID: client.ID, Name: client.Name}})
	s.logger.Info().Int64("client_id", client.ID).Str("seat", s.seat).Msg("client logged in")
	return s.session, nil
}

// EmployeeLogin binds the employee with the given id to the session variant of
// its stored role.
func (s *ShopService) EmployeeLogin(ctx context.Context, employeeID int64, credentialHash string) (_ domain.Session, err error) {
	const op = "EmployeeLogin"
	log := s.opLogger(op).With().Int64("employee_id", employeeID).Logger()
	defer s.finish(log, op, time.Now(), &err)

	if s.IsLoggedIn() {
		return s.session, domain.AlreadyLoggedIn()
	}
	if !validation.IsHashedCredential(credentialHash) {
		return s.session, domain.PasswordNotHashed()
	}

	employee, err := s.store.FindEmployeeByID(ctx, employeeID)
	if errors.Is(err, domain.ErrNotFound) {
		return s.session, domain.EmployeeNotRegistered(employeeID)
	}
	if err != nil {
		return s.session, err
	}
	if !sameCredential(employee.PasswordHash, credentialHash) {
		return s.session, domain.EmployeeIncorrectPassword(employeeID)
	}

	session, err := domain.EmployeeSession(*employee)
	if err != nil {
		return s.session, err
	}
	s.bind(session)
	s.logger.Info().
		Int64("employee_id", employee.ID).
		Str("role", string(employee.Role)).
		Str("seat", s.seat).
		Msg("employee logged in")
	return s.session, nil
}

// RegisterClient creates a client without a vehicle and binds it. The
// credential is stored as given; only logins check its shape.
func (s *ShopService) RegisterClient(ctx context.Context, name, email, credentialHash string) (_ domain.Session, err error) {
	const op = "RegisterClient"
	log := s.opLogger(op)
	defer s.finish(log, op, time.Now(), &err)

	if s.IsLoggedIn() {
		return s.session, domain.AlreadyLoggedIn()
	}
	if !validation.IsWellFormedEmail(email) {
		return s.session, domain.EmailIncorrectFormat(email)
	}

	_, err = s.store.FindClientByEmail(ctx, email)
	switch {
	case err == nil:
		return s.session, domain.EmailAlreadyRegistered(email)
	case !errors.Is(err, domain.ErrNotFound):
		return s.session, err
	}

	client, err := s.store.InsertClient(ctx, &domain.Client{
		Name:         name,
		Email:        email,
		PasswordHash: credentialHash,
	})
	if errors.Is(err, domain.ErrDuplicate) {
		return s.session, domain.EmailAlreadyRegistered(email)
	}
	if err != nil {
		return s.session, err
	}

	s.bind(domain.ClientSession{Identity: domain.Identity{ID: client.ID, Name: client.Name}})
	s.logger.Info().Int64("client_id", client.ID).Str("seat", s.seat).Msg("client registered")
	return s.session, nil
}

// LogOut resets the session to Anonymous.
func (s *ShopService) LogOut(_ context.Context) (_ domain.Session, err error) {
	const op = "LogOut"
	log := s.opLogger(op)
	defer s.finish(log, op, time.Now(), &err)

	if _, err := s.requireLoggedIn(op); err != nil {
		return s.session, err
	}
	s.bind(domain.Anonymous{})
	s.observer.SessionCleared()
	return s.session, nil
}

// sameCredential compares the stored and presented hashes as opaque strings.
func sameCredential(stored, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
