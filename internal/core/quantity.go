package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Quantity arithmetic. Warehouse quantities routinely exceed the range a
// 64-bit float can represent exactly, so every quantity in the system is an
// arbitrary-precision integral decimal. These helpers are the only arithmetic
// the allocation engine performs; none of them can yield a negative or
// fractional result without returning an error first.

// ParseQuantity parses a decimal string into a non-negative integral quantity.
func ParseQuantity(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidQuantity, s)
	}
	if err := ValidateQuantity(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateQuantity rejects negative or fractional quantities.
func ValidateQuantity(d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: %s is negative", ErrInvalidQuantity, d)
	}
	if !d.IsInteger() {
		return fmt.Errorf("%w: %s is not a whole number", ErrInvalidQuantity, d)
	}
	return nil
}

// ValidatePositiveQuantity rejects anything that is not a whole number > 0.
func ValidatePositiveQuantity(d decimal.Decimal) error {
	if err := ValidateQuantity(d); err != nil {
		return err
	}
	if d.IsZero() {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidQuantity)
	}
	return nil
}

// AddQuantities returns a + b.
func AddQuantities(a, b decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateQuantity(a); err != nil {
		return decimal.Zero, err
	}
	if err := ValidateQuantity(b); err != nil {
		return decimal.Zero, err
	}
	return a.Add(b), nil
}

// SubtractQuantities returns a - b, failing with ErrInsufficientQuantity when
// b > a. Callers must check this instead of ever persisting a negative value.
func SubtractQuantities(a, b decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateQuantity(a); err != nil {
		return decimal.Zero, err
	}
	if err := ValidateQuantity(b); err != nil {
		return decimal.Zero, err
	}
	if b.GreaterThan(a) {
		return decimal.Zero, fmt.Errorf("%w: cannot subtract %s from %s", ErrInsufficientQuantity, b, a)
	}
	return a.Sub(b), nil
}

// CompareQuantities returns -1, 0 or +1 as a is less than, equal to or
// greater than b.
func CompareQuantities(a, b decimal.Decimal) int {
	return a.Cmp(b)
}
