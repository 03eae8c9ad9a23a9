package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/ports"
)

// ReportAccessPolicy decides whether a client may read reports billed to
// another client.
type ReportAccessPolicy int

const (
	// ReportAccessOpen lets any client read any report by identifier.
	ReportAccessOpen ReportAccessPolicy = iota
	// ReportAccessOwner restricts clients to their own reports.
	ReportAccessOwner
)

// ParseReportAccess maps a configuration value to a policy.
func ParseReportAccess(s string) (ReportAccessPolicy, error) {
	switch s {
	case "", "open":
		return ReportAccessOpen, nil
	case "owner":
		return ReportAccessOwner, nil
	}
	return ReportAccessOpen, fmt.Errorf("unknown report access policy %q", s)
}

// ClosePolicy decides what closing an already finished order does.
type ClosePolicy int

const (
	// CloseNoop accepts the call and leaves the order untouched.
	CloseNoop ClosePolicy = iota
	// CloseReject fails with ErrOrderAlreadyFinished.
	CloseReject
)

// ParseClosePolicy maps a configuration value to a policy.
func ParseClosePolicy(s string) (ClosePolicy, error) {
	switch s {
	case "", "noop":
		return CloseNoop, nil
	case "reject":
		return CloseReject, nil
	}
	return CloseNoop, fmt.Errorf("unknown close policy %q", s)
}

// Options tunes a ShopService. The zero value reproduces the reference
// behaviour with no metrics.
type Options struct {
	ReportAccess ReportAccessPolicy
	ClosePolicy  ClosePolicy
	Observer     ports.Observer
	// NewSeat returns the correlation id attached to log lines of one login.
	NewSeat func() string
}

// ShopService is the session and workflow authorization engine. It holds a
// single session and is meant for one caller at a time; it is not safe for
// concurrent use.
type ShopService struct {
	store    ports.Store
	logger   zerolog.Logger
	observer ports.Observer
	opts     Options

	session domain.Session
	seat    string
}

var _ ports.ShopService = (*ShopService)(nil)

// NewShopService returns an engine with an anonymous session.
func NewShopService(store ports.Store, logger zerolog.Logger, opts Options) *ShopService {
	if opts.Observer == nil {
		opts.Observer = ports.NopObserver{}
	}
	if opts.NewSeat == nil {
		opts.NewSeat = uuid.NewString
	}
	return &ShopService{
		store:    store,
		logger:   logger,
		observer: opts.Observer,
		opts:     opts,
		session:  domain.Anonymous{},
	}
}

// CurrentSession returns the live session.
func (s *ShopService) CurrentSession() domain.Session {
	return s.session
}

// SetSession replaces the live session without touching the store. A nil
// session resets to Anonymous.
func (s *ShopService) SetSession(session domain.Session) {
	if session == nil {
		session = domain.Anonymous{}
	}
	s.bind(session)
}

// IsLoggedIn reports whether the session is bound to an identity.
func (s *ShopService) IsLoggedIn() bool {
	_, ok := domain.IdentityOf(s.session)
	return ok
}

func (s *ShopService) bind(session domain.Session) {
	s.session = session
	if _, ok := domain.IdentityOf(session); ok {
		s.seat = s.opts.NewSeat()
		s.observer.SessionBound(session.Role())
		return
	}
	s.seat = ""
}

// requireLoggedIn fails with NotLoggedIn(operation) iff the session is anonymous.
func (s *ShopService) requireLoggedIn(operation string) (domain.Identity, error) {
	id, ok := domain.IdentityOf(s.session)
	if !ok {
		return domain.Identity{}, domain.NotLoggedIn(operation)
	}
	return id, nil
}

// permit lists the session variants allowed to run an operation.
type permit struct {
	client     bool
	technician bool
	mechanic   bool
}

var (
	anyRole         = permit{client: true, technician: true, mechanic: true}
	clientsOnly     = permit{client: true}
	techniciansOnly = permit{technician: true}
	mechanicsOnly   = permit{mechanic: true}
	notMechanics    = permit{client: true, technician: true}
	notTechnicians  = permit{client: true, mechanic: true}
)

// authorize checks login state first and then the session role against p.
func (s *ShopService) authorize(operation string, p permit) (domain.Identity, error) {
	id, err := s.requireLoggedIn(operation)
	if err != nil {
		return domain.Identity{}, err
	}

	var allowed bool
	switch s.session.(type) {
	case domain.ClientSession:
		allowed = p.client
	case domain.TechnicianSession:
		allowed = p.technician
	case domain.MechanicSession:
		allowed = p.mechanic
	case domain.Anonymous:
		allowed = false
	default:
		panic(fmt.Sprintf("service: unknown session variant %T", s.session))
	}
	if !allowed {
		return domain.Identity{}, domain.PermissionDenied()
	}
	return id, nil
}

func (s *ShopService) opLogger(operation string) zerolog.Logger {
	ctx := s.logger.With().
		Str("operation", operation).
		Str("role", string(s.session.Role()))
	if s.seat != "" {
		ctx = ctx.Str("seat", s.seat)
	}
	return ctx.Logger()
}

// finish records the outcome of one operation. It is deferred with a pointer
// to the named error result.
func (s *ShopService) finish(log zerolog.Logger, operation string, start time.Time, errp *error) {
	err := *errp
	s.observer.OperationCompleted(operation, err, time.Since(start))

	if err == nil {
		log.Info().Msg("operation completed")
		return
	}
	kind := domain.KindOf(err)
	if kind == domain.KindStore {
		log.Error().Err(err).Msg("store failure")
		return
	}
	log.Warn().Err(err).Str("error_kind", kind.String()).Msg("operation rejected")
}

func (s *ShopService) findClient(ctx context.Context, id int64) (*domain.Client, error) {
	client, err := s.store.FindClientByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ClientNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (s *ShopService) findOrder(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.store.FindOrderByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.OrderNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *ShopService) findReport(ctx context.Context, id int64) (*domain.Report, error) {
	report, err := s.store.FindReportByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ReportNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}
