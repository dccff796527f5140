package money

import "fmt"

// Amount is a monetary value in the currency's minor unit.
// All arithmetic in the billing core is exact integer math.
type Amount int64

// New validates v as a monetary amount. Negative amounts are rejected.
func New(v int64) (Amount, error) {
	if v < 0 {
		return 0, fmt.Errorf("amount must not be negative, got %d", v)
	}
	return Amount(v), nil
}

func (a Amount) Int64() int64 {
	return int64(a)
}

// Sub returns a - b floored at zero.
func (a Amount) Sub(b Amount) Amount {
	if b >= a {
		return 0
	}
	return a - b
}

func (a Amount) Add(b Amount) Amount {
	return a + b
}

func (a Amount) IsZero() bool {
	return a == 0
}
