package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		kind Kind
	}{
		{AlreadyLoggedIn(), KindSessionState},
		{NotLoggedIn("CloseOrder"), KindSessionState},
		{EmailIncorrectFormat("ann@@x"), KindCredential},
		{EmployeeIncorrectPassword(2), KindCredential},
		{PermissionDenied(), KindPermission},
		{ClientNotFound(9), KindNotFound},
		{NoVehicleRegistered(1), KindPrecondition},
		{fmt.Errorf("wrapped: %w", OrderNotFound(4)), KindNotFound},
		{errors.New("connection refused"), KindStore},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.kind {
			t.Errorf("KindOf(%v) = %s, want %s", tc.err, got, tc.kind)
		}
	}
}

func TestError_MessagesAndSentinels(t *testing.T) {
	err := NotLoggedIn("RegisterVehicle")
	if !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn")
	}
	if err.Error() != "function RegisterVehicle requires being logged in" {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	err = ClientIncorrectPassword("ann@x.co")
	if !errors.Is(err, ErrIncorrectPassword) || err.Error() != "incorrect password for ann@x.co" {
		t.Fatalf("unexpected error: %v", err)
	}

	if PermissionDenied().Error() != "permission denied" {
		t.Fatalf("unexpected message: %q", PermissionDenied().Error())
	}
}
