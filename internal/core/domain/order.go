package domain

import (
	"fmt"
	"strings"
)

// Service is the kind of work an order requests.
type Service string

const (
	ServiceInspection Service = "Inspection"
	ServiceRepair     Service = "Repair"
)

// Valid reports whether s is a known service.
func (s Service) Valid() bool {
	return s == ServiceInspection || s == ServiceRepair
}

// ParseService accepts the service name case-insensitively.
func ParseService(s string) (Service, error) {
	for _, known := range []Service{ServiceInspection, ServiceRepair} {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", InvalidInput(fmt.Sprintf("unknown service %q", s))
}

// serviceTransitions defines the allowed service changes on an open order.
var serviceTransitions = map[Service][]Service{
	ServiceInspection: {ServiceRepair},
}

// CanTransitionTo reports whether an open order may move from s to next.
func (s Service) CanTransitionTo(next Service) bool {
	for _, allowed := range serviceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderState is the derived lifecycle position of an order.
type OrderState string

const (
	StateInspection OrderState = "inspection"
	StateRepair     OrderState = "repair"
	StateFinished   OrderState = "finished"
)

// Order is a unit of requested work for a client's vehicle.
type Order struct {
	ID       int64   `json:"id"`
	ClientID int64   `json:"client_id"`
	Service  Service `json:"service"`
	Finished bool    `json:"finished"`
}

// State derives the lifecycle state. A finished order keeps its service frozen.
func (o Order) State() OrderState {
	if o.Finished {
		return StateFinished
	}
	if o.Service == ServiceRepair {
		return StateRepair
	}
	return StateInspection
}

// AdvanceToRepair moves an open inspection order to repair. The order is left
// untouched when the transition is not allowed.
func (o *Order) AdvanceToRepair() error {
	if o.Finished || !o.Service.CanTransitionTo(ServiceRepair) {
		return OrderNotInspection(o.ID, o.State())
	}
	o.Service = ServiceRepair
	return nil
}

// Close marks the order finished and reports whether anything changed.
func (o *Order) Close() bool {
	if o.Finished {
		return false
	}
	o.Finished = true
	return true
}

func (o Order) String() string {
	return fmt.Sprintf("ID: %d | Client: %d | Service: %s | Finished: %t", o.ID, o.ClientID, o.Service, o.Finished)
}
