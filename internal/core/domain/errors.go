package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by store adapters when no record matches a lookup.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned by store adapters when a unique key already exists.
var ErrDuplicate = errors.New("record already exists")

// Session state.
var (
	ErrAlreadyLoggedIn = errors.New("already logged in")
	ErrNotLoggedIn     = errors.New("not logged in")
)

// Credentials.
var (
	ErrEmailIncorrectFormat   = errors.New("email incorrect format")
	ErrPasswordNotHashed      = errors.New("password hash is not a bcrypt hash")
	ErrEmailNotRegistered     = errors.New("email not registered")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrEmployeeNotRegistered  = errors.New("employee not registered")
	ErrIncorrectPassword      = errors.New("incorrect password")
)

// Authorization.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnknownRole      = errors.New("unknown employee role")
)

// Missing referenced records.
var (
	ErrClientNotFound = errors.New("client not found")
	ErrOrderNotFound  = errors.New("order not found")
	ErrReportNotFound = errors.New("report not found")
)

// Business rule violations.
var (
	ErrVehicleAlreadyRegistered = errors.New("vehicle already registered")
	ErrNoVehicleRegistered      = errors.New("no vehicle registered")
	ErrOrderNotInspection       = errors.New("order not in inspection state")
	ErrOrderAlreadyFinished     = errors.New("order already finished")
	ErrInvalidInput             = errors.New("invalid input")
)

// Kind groups engine failures by how a caller is expected to react.
type Kind int

const (
	// KindStore covers everything the engine did not raise itself.
	KindStore Kind = iota
	KindSessionState
	KindCredential
	KindPermission
	KindNotFound
	KindPrecondition
)

func (k Kind) String() string {
	switch k {
	case KindSessionState:
		return "session_state"
	case KindCredential:
		return "credential"
	case KindPermission:
		return "permission"
	case KindNotFound:
		return "not_found"
	case KindPrecondition:
		return "precondition"
	default:
		return "store"
	}
}

// Error is a failure raised by the engine. Err is one of the sentinels above so
// callers can match with errors.Is; the message carries the offending value.
type Error struct {
	Kind Kind
	Err  error
	msg  string
}

func (e *Error) Error() string {
	if e.msg == "" {
		return e.Err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, sentinel error, format string, args ...any) *Error {
	msg := ""
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Err: sentinel, msg: msg}
}

// KindOf classifies err. Errors not produced by the engine are store errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

func AlreadyLoggedIn() error {
	return newError(KindSessionState, ErrAlreadyLoggedIn, "")
}

// NotLoggedIn names the operation that required a bound session.
func NotLoggedIn(operation string) error {
	return newError(KindSessionState, ErrNotLoggedIn, "function %s requires being logged in", operation)
}

func EmailIncorrectFormat(email string) error {
	return newError(KindCredential, ErrEmailIncorrectFormat, "%s is not a correct email address", email)
}

func PasswordNotHashed() error {
	return newError(KindCredential, ErrPasswordNotHashed, "")
}

func EmailNotRegistered(email string) error {
	return newError(KindCredential, ErrEmailNotRegistered, "no user with email %s", email)
}

func EmailAlreadyRegistered(email string) error {
	return newError(KindCredential, ErrEmailAlreadyRegistered, "email %s already registered", email)
}

func EmployeeNotRegistered(id int64) error {
	return newError(KindCredential, ErrEmployeeNotRegistered, "no employee with ID %d", id)
}

func ClientIncorrectPassword(email string) error {
	return newError(KindCredential, ErrIncorrectPassword, "incorrect password for %s", email)
}

func EmployeeIncorrectPassword(id int64) error {
	return newError(KindCredential, ErrIncorrectPassword, "incorrect password for employee %d", id)
}

func PermissionDenied() error {
	return newError(KindPermission, ErrPermissionDenied, "")
}

// UnknownRole reports a stored employee whose role maps to no session variant.
func UnknownRole(id int64, role Role) error {
	return newError(KindPermission, ErrUnknownRole, "employee %d has unknown role %q", id, role)
}

func ClientNotFound(id int64) error {
	return newError(KindNotFound, ErrClientNotFound, "client %d does not exist", id)
}

func OrderNotFound(id int64) error {
	return newError(KindNotFound, ErrOrderNotFound, "order %d does not exist", id)
}

func ReportNotFound(id int64) error {
	return newError(KindNotFound, ErrReportNotFound, "report %d does not exist", id)
}

func VehicleAlreadyRegistered(clientID int64) error {
	return newError(KindPrecondition, ErrVehicleAlreadyRegistered, "client %d already has a vehicle registered", clientID)
}

func NoVehicleRegistered(clientID int64) error {
	return newError(KindPrecondition, ErrNoVehicleRegistered, "client %d has no vehicle registered", clientID)
}

func OrderNotInspection(id int64, state OrderState) error {
	return newError(KindPrecondition, ErrOrderNotInspection, "order %d is in %s state, not inspection", id, state)
}

func OrderAlreadyFinished(id int64) error {
	return newError(KindPrecondition, ErrOrderAlreadyFinished, "order %d is already finished", id)
}

// InvalidInput reports a malformed argument that is not a credential.
func InvalidInput(msg string) error {
	return newError(KindPrecondition, ErrInvalidInput, "%s", msg)
}
