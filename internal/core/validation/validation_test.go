package validation

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
)

func TestIsWellFormedEmail(t *testing.T) {
	valid := []string{"ann@x.co", "first.last@mail.example.com", "a-b_c@host-1.io", "zoë@x.co", "jürgen@münchen.de"}
	for _, s := range valid {
		if !IsWellFormedEmail(s) {
			t.Errorf("expected %q to be well formed", s)
		}
	}

	invalid := []string{"", "ann", "ann@@x", "ann@x", "ann@x.c", "@x.co", "ann x@x.co", "ann@.co", "zoë@x.c", "ann+tag@x.co"}
	for _, s := range invalid {
		if IsWellFormedEmail(s) {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

func TestIsHashedCredential(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("generate hash: %v", err)
	}
	if !IsHashedCredential(string(hash)) {
		t.Fatalf("expected generated hash %q to be accepted", hash)
	}

	invalid := []string{
		"",
		"secret",
		"$validhash$",
		strings.Replace(string(hash), "$2a$", "$3a$", 1),
		string(hash)[:len(hash)-1],
		string(hash) + "x",
		"$2a$99$" + string(hash)[7:], // cost out of range
	}
	for _, s := range invalid {
		if IsHashedCredential(s) {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

func TestStruct_Vehicle(t *testing.T) {
	if err := Struct(VehicleInput{Make: "Toyota", Model: "Corolla"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := Struct(VehicleInput{Make: "Toyota"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err.Error() != "model is required" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestStruct_ReportCost(t *testing.T) {
	if err := Struct(ReportInput{Cost: 0}); err != nil {
		t.Fatalf("zero cost should be accepted: %v", err)
	}
	err := Struct(ReportInput{Cost: -1})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if domain.KindOf(err) != domain.KindPrecondition {
		t.Fatalf("expected precondition kind, got %s", domain.KindOf(err))
	}
}
