package kernel

import (
	"errors"
	"fmt"

	"ordermanagement/internal/pkg/errs"
	"ordermanagement/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// PriceScale is the number of fractional digits a Price keeps.
const PriceScale = 2

var (
	// ErrPriceIsNotConstructed is returned when a Price was not created through NewPrice.
	ErrPriceIsNotConstructed = errors.New("Price must be created via NewPrice constructor")

	// MinPrice is the smallest accepted price; zero itself is rejected.
	MinPrice = decimal.New(1, -PriceScale)

	// MaxPrice is the largest accepted price (precision 18, scale 2).
	MaxPrice = decimal.RequireFromString("999999999999999.99")
)

// Price is a positive monetary amount with two fractional digits.
type Price struct {
	amount decimal.Decimal
	guard  guard.ConstructorGuard
}

// NewPrice checks 0 < amount <= MaxPrice on the amount as given, then rounds
// it to PriceScale digits. An amount that rounds below MinPrice is rejected.
func NewPrice(amount decimal.Decimal) (Price, error) {
	rounded := amount.Round(PriceScale)
	if !amount.IsPositive() || amount.GreaterThan(MaxPrice) || rounded.LessThan(MinPrice) {
		return Price{}, errs.NewValueIsOutOfRangeErrorWithCause(
			"price", amount.String(), MinPrice.String(), MaxPrice.String(),
			fmt.Errorf("%s is not greater than 0 or exceeds the upper bound", amount.String()),
		)
	}

	return Price{
		amount: rounded,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// PriceFromString parses a decimal literal such as "19.99".
func PriceFromString(s string) (Price, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, errs.NewValueIsInvalidErrorWithCause("price", err)
	}
	return NewPrice(amount)
}

// PriceFromFloat converts a JSON number. The float is rounded to PriceScale
// digits, so 19.99 stays 19.99.
func PriceFromFloat(f float64) (Price, error) {
	return NewPrice(decimal.NewFromFloat(f))
}

// Amount returns the decimal value.
func (p Price) Amount() decimal.Decimal {
	return p.amount
}

// Float64 returns the nearest float64, for JSON responses.
func (p Price) Float64() float64 {
	return p.amount.InexactFloat64()
}

// String formats the price with exactly PriceScale fractional digits.
func (p Price) String() string {
	return p.amount.StringFixed(PriceScale)
}

// IsEqual compares amounts numerically.
func (p Price) IsEqual(other Price) bool {
	return p.amount.Equal(other.amount)
}

// Validate ensures the price was built by NewPrice.
func (p Price) Validate() error {
	return p.guard.Validate(ErrPriceIsNotConstructed)
}
