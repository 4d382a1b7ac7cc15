package cmd

import (
	"fmt"

	"budgeter/internal/core"
)

// Categories offered by default. Any non-empty category is accepted.
var defaultCategories = []string{"Personal", "School", "Food", "Bills", "Other"}

func positiveAmount(s string) (core.Money, error) {
	c, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, fmt.Errorf("amount %q: must be a number greater than zero", s)
	}
	return core.Cents(c), nil
}

func nonNegativeAmount(s string) (core.Money, error) {
	c, err := core.ParseNonNegativeCents(s)
	if err != nil {
		return core.Money{}, fmt.Errorf("amount %q: must be a number, zero or more", s)
	}
	return core.Cents(c), nil
}

func signedAmount(s string) (core.Money, error) {
	c, err := core.ParseSignedCents(s)
	if err != nil {
		return core.Money{}, fmt.Errorf("amount %q: must be a number", s)
	}
	return core.Cents(c), nil
}
