// Package validation holds the input shape checks the engine runs before it
// touches the store.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
)

// wordClass is the Unicode word character set; RE2's \w is ASCII only.
const wordClass = `\p{L}\p{M}\p{N}\p{Pc}`

var (
	emailPattern = regexp.MustCompile(`^[` + wordClass + `\-.]+@([` + wordClass + `-]+\.)+[` + wordClass + `-]{2,}$`)
	hashPattern  = regexp.MustCompile(`^\$2[aby]?\$\d{1,2}\$[./A-Za-z0-9]{53}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.ToLower(f.Name)
	})
	return v
}

// IsWellFormedEmail reports whether s has the local@domain.tld shape. No
// network lookup is made.
func IsWellFormedEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsHashedCredential reports whether s looks like an encoded bcrypt hash. It
// checks the textual shape and that the header parses; it never verifies a
// password.
func IsHashedCredential(s string) bool {
	if !hashPattern.MatchString(s) {
		return false
	}
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// VehicleInput is the caller-supplied part of a vehicle registration.
type VehicleInput struct {
	Make  string `validate:"required"`
	Model string `validate:"required"`
}

// ReportInput is the caller-supplied part of a new report.
type ReportInput struct {
	Cost int64 `validate:"gte=0"`
}

// Struct validates v against its tags and converts failures into an
// InvalidInput domain error.
func Struct(v any) error {
	if err := validate.Struct(v); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
			}
			return domain.InvalidInput(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gte":
		return fmt.Sprintf("%s must not be less than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
