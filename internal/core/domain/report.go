package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is appended to formatted costs.
const DefaultCurrency = "PLN"

// Report is a billing record for one order. It is never updated.
type Report struct {
	ID       int64 `json:"id"`
	ClientID int64 `json:"client_id"`
	OrderID  int64 `json:"order_id"`
	Cost     int64 `json:"cost"`
}

func (r Report) String() string {
	return fmt.Sprintf("%d | Order: %d | Client: %d | Cost: %s", r.ID, r.OrderID, r.ClientID, FormatCost(r.Cost, DefaultCurrency))
}

// ReportSummary pairs a report with the order it bills.
type ReportSummary struct {
	Report Report `json:"report"`
	Order  Order  `json:"order"`
}

func (s ReportSummary) String() string {
	return fmt.Sprintf("%d | Order: [%s] | Cost: %s", s.Report.ID, s.Order, FormatCost(s.Report.Cost, DefaultCurrency))
}

// FormatCost renders a cost in minor units with two decimal places.
func FormatCost(minor int64, currency string) string {
	amount := decimal.New(minor, -2).StringFixed(2)
	if currency == "" {
		return amount
	}
	return amount + " " + currency
}

var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// ParseCost reads a decimal amount such as "150" or "150.5" into minor units.
// Negative amounts and amounts with more than two decimal places are rejected.
// So is anything that does not fit in int64 minor units.
func ParseCost(s string) (int64, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return 0, InvalidInput(fmt.Sprintf("%q is not an amount", s))
	}
	minor := amount.Shift(2)
	if !minor.IsInteger() {
		return 0, InvalidInput(fmt.Sprintf("%s has more than two decimal places", s))
	}
	if minor.IsNegative() {
		return 0, InvalidInput("cost must not be negative")
	}
	if minor.GreaterThan(maxMinorUnits) {
		return 0, InvalidInput(fmt.Sprintf("%s is too large", s))
	}
	return minor.IntPart(), nil
}
