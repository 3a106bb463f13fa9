package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/baltgc/gomotel/internal/apperr"
)

// Money is an immutable monetary amount expressed in the smallest currency
// unit (cents).  Integer arithmetic avoids the floating-point rounding
// surprises that matter for billing.  Currency is a three-letter uppercase
// ISO 4217 code.
//
// Fields:
//  AmountCents – non-negative amount in cents.
//  Currency    – ISO 4217 code, e.g. "USD".
type Money struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

// NewMoney validates and constructs a Money value.  The amount must not be
// negative and the currency must be a non-empty code; the code is normalized
// to upper case.
func NewMoney(amountCents int64, currency string) (Money, error) {
	if amountCents < 0 {
		return Money{}, apperr.InvalidInput("amount cannot be negative")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return Money{}, apperr.InvalidInput("currency must be a three-letter code")
	}
	return Money{AmountCents: amountCents, Currency: currency}, nil
}

// Add returns the sum of m and other.  Adding amounts in different
// currencies is an error.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, apperr.InvalidInput("cannot add %s to %s", other.Currency, m.Currency)
	}
	return Money{AmountCents: m.AmountCents + other.AmountCents, Currency: m.Currency}, nil
}

// Subtract returns m minus other.  It fails on currency mismatch and when
// the result would be negative, since Money never holds a negative amount.
func (m Money) Subtract(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, apperr.InvalidInput("cannot subtract %s from %s", other.Currency, m.Currency)
	}
	if other.AmountCents > m.AmountCents {
		return Money{}, apperr.InvalidInput("subtraction would produce a negative amount")
	}
	return Money{AmountCents: m.AmountCents - other.AmountCents, Currency: m.Currency}, nil
}

// ForDuration treats m as an hourly rate and returns the price of renting
// for d.  Fractional hours are allowed; the result is rounded to the nearest
// cent.  The calculation is deterministic: the same rate and duration always
// produce the same amount.
func (m Money) ForDuration(d time.Duration) Money {
	minutes := int64(d / time.Minute)
	cents := (m.AmountCents*minutes + 30) / 60
	return Money{AmountCents: cents, Currency: m.Currency}
}

// IsZero reports whether m is the zero value.
func (m Money) IsZero() bool { return m.AmountCents == 0 && m.Currency == "" }

// String renders the amount with two decimals, e.g. "225.00 USD".
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d %s", m.AmountCents/100, m.AmountCents%100, m.Currency)
}
