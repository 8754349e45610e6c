package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CartLine is a single storefront cart entry as sent by the frontend.
// Price is a decimal-formatted string because the frontend deals in
// display amounts, not minor units.
type CartLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

func (l CartLine) Validate() error {
	if l.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative, got %d", l.Quantity)
	}
	price, err := decimal.NewFromString(l.Price)
	if err != nil {
		return fmt.Errorf("price %q is not a valid decimal", l.Price)
	}
	if price.IsNegative() {
		return fmt.Errorf("price must not be negative, got %s", l.Price)
	}
	return nil
}

// CartTotal sums price*quantity across all lines.
func CartTotal(lines []CartLine) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, line := range lines {
		price, err := decimal.NewFromString(line.Price)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse price for item %q: %w", line.Name, err)
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total, nil
}
