package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/elena/open-accounting/internal/core/domain"
)

// Side labels one direction of a double-entry movement.
type Side string

const (
	Debit  Side = "DR"
	Credit Side = "CR"
)

// SideOf returns the side of a signed line value. Positive values are
// debits, negative values are credits. Zero counts as a debit.
func SideOf(value decimal.Decimal) Side {
	if value.IsNegative() {
		return Credit
	}
	return Debit
}

// NormalBalanceSide returns the side a positive balance is expected on for
// accounts of the given element. Assets and expenses carry debit balances;
// liabilities, equity and revenue carry credit balances.
func NormalBalanceSide(element domain.AccountElement) (Side, error) {
	switch element {
	case domain.Asset, domain.Expense:
		return Debit, nil
	case domain.Liability, domain.Equity, domain.Revenue:
		return Credit, nil
	default:
		return "", fmt.Errorf("unknown account element %q", element)
	}
}

// DisplayValue converts a signed internal value into the amount shown on a
// report for the given element: positive when the movement sits on the
// element's normal side. A payment against a liability reads as negative,
// a new invoice as positive.
func DisplayValue(value decimal.Decimal, element domain.AccountElement) (decimal.Decimal, error) {
	normal, err := NormalBalanceSide(element)
	if err != nil {
		return decimal.Zero, err
	}
	if normal == Credit {
		return value.Neg(), nil
	}
	return value, nil
}
