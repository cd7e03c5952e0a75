package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/shared"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	PHP Currency = "PHP" // Philippine Peso (default)
	USD Currency = "USD" // US Dollar
	EUR Currency = "EUR" // Euro
	SGD Currency = "SGD" // Singapore Dollar
	HKD Currency = "HKD" // Hong Kong Dollar
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = PHP

// minorUnitsPerMajor is the scale of the minor unit (centavos per peso).
// Every supported currency here uses two decimal places.
const minorUnitsPerMajor = 100

// ErrCurrencyMismatch is returned when two Money values of different
// currencies are combined or compared.
var ErrCurrencyMismatch = shared.NewDomainError(shared.ErrCodeCurrencyMismatch, "Cannot operate on money with different currencies")

// Money is an immutable monetary value held as an integer count of minor
// units (centavos). Keeping the amount integral makes addition and
// subtraction exact; only percentage multiplication rounds, and it always
// rounds half-up to the nearest minor unit so that penalty and commission
// arithmetic reconcile with each other.
type Money struct {
	minor    int64
	currency Currency
}

// NewMoney creates Money from an amount in minor units (centavos)
func NewMoney(minorUnits int64, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}
	return Money{minor: minorUnits, currency: currency}, nil
}

// MustMoney creates Money from minor units, panicking on an empty currency.
// Intended for constants and tests.
func MustMoney(minorUnits int64, currency Currency) Money {
	m, err := NewMoney(minorUnits, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// NewMoneyFromString parses a decimal string such as "16666.67"
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	minor := d.Mul(decimal.NewFromInt(minorUnitsPerMajor))
	if !minor.IsInteger() {
		return Money{}, shared.NewDomainError("INVALID_AMOUNT", "Amount has more precision than the minor unit allows")
	}
	return NewMoney(minor.IntPart(), currency)
}

// NewMoneyPHP creates Money in PHP from minor units (centavos)
func NewMoneyPHP(minorUnits int64) Money {
	return Money{minor: minorUnits, currency: PHP}
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{minor: 0, currency: currency}
}

// ZeroPHP returns a zero-value Money in PHP
func ZeroPHP() Money {
	return Zero(PHP)
}

// MinorUnits returns the amount as minor units (centavos)
func (m Money) MinorUnits() int64 {
	return m.minor
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// Decimal returns the amount in major units as a decimal
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.minor, -2)
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.minor == 0
}

// IsPositive returns true if the amount is greater than zero
func (m Money) IsPositive() bool {
	return m.minor > 0
}

// IsNegative returns true if the amount is less than zero
func (m Money) IsNegative() bool {
	return m.minor < 0
}

// Add returns the sum of both amounts.
// Returns ErrCurrencyMismatch if currencies differ.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{minor: m.minor + other.minor, currency: m.currency}, nil
}

// MustAdd adds two Money values, panicking on a currency mismatch
func (m Money) MustAdd(other Money) Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Subtract returns the difference of both amounts.
// Returns ErrCurrencyMismatch if currencies differ.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{minor: m.minor - other.minor, currency: m.currency}, nil
}

// MustSubtract subtracts two Money values, panicking on a currency mismatch
func (m Money) MustSubtract(other Money) Money {
	result, err := m.Subtract(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Negate returns the amount with the sign reversed
func (m Money) Negate() Money {
	return Money{minor: -m.minor, currency: m.currency}
}

// MultiplyByPercent returns rate percent of the amount, rounded half-up to
// the nearest minor unit. The same rounding is used for penalties and
// commissions so that ledger totals reconcile exactly.
func (m Money) MultiplyByPercent(rate decimal.Decimal) Money {
	product := decimal.NewFromInt(m.minor).Mul(rate).Div(decimal.NewFromInt(100))
	// decimal.Round rounds half away from zero, which is half-up for the
	// non-negative bases used throughout the ledger.
	return Money{minor: product.Round(0).IntPart(), currency: m.currency}
}

// Compare returns -1, 0 or 1 as m is less than, equal to or greater than
// other. Returns ErrCurrencyMismatch if currencies differ.
func (m Money) Compare(other Money) (int, error) {
	if m.currency != other.currency {
		return 0, ErrCurrencyMismatch
	}
	switch {
	case m.minor < other.minor:
		return -1, nil
	case m.minor > other.minor:
		return 1, nil
	default:
		return 0, nil
	}
}

// Equals returns true if both values have the same amount and currency
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.minor == other.minor
}

// LessThan returns true if m is strictly less than other
func (m Money) LessThan(other Money) (bool, error) {
	cmp, err := m.Compare(other)
	return cmp < 0, err
}

// GreaterThanOrEqual returns true if m is greater than or equal to other
func (m Money) GreaterThanOrEqual(other Money) (bool, error) {
	cmp, err := m.Compare(other)
	return cmp >= 0, err
}

// Min returns the smaller of m and other
func (m Money) Min(other Money) (Money, error) {
	cmp, err := m.Compare(other)
	if err != nil {
		return Money{}, err
	}
	if cmp <= 0 {
		return m, nil
	}
	return other, nil
}

// SplitEven divides the amount into parts equal installment shares where the
// last share absorbs the rounding remainder, so the shares always sum back to
// the original amount exactly. The leading shares are total/parts rounded
// half-up; when that rounding would overdraw the total, the truncated share
// is used instead and the last share absorbs the positive remainder.
func (m Money) SplitEven(parts int) ([]Money, error) {
	if parts <= 0 {
		return nil, shared.NewDomainError("INVALID_SPLIT", "Parts must be positive")
	}
	if parts == 1 {
		return []Money{m}, nil
	}

	n := int64(parts)
	share := decimal.NewFromInt(m.minor).Div(decimal.NewFromInt(n)).Round(0).IntPart()
	last := m.minor - share*(n-1)
	if last < 0 {
		share = m.minor / n
		last = m.minor - share*(n-1)
	}

	result := make([]Money, parts)
	for i := 0; i < parts-1; i++ {
		result[i] = Money{minor: share, currency: m.currency}
	}
	result[parts-1] = Money{minor: last, currency: m.currency}
	return result, nil
}

// String returns a display representation such as "16666.67 PHP"
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Decimal().StringFixed(2), m.currency)
}

// MarshalJSON implements json.Marshaler. Amounts cross the API boundary as
// integer minor units plus a currency code; floats are never emitted.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		MinorUnits int64    `json:"minor_units"`
		Currency   Currency `json:"currency"`
	}{
		MinorUnits: m.minor,
		Currency:   m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler for request binding
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		MinorUnits int64    `json:"minor_units"`
		Currency   Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Currency == "" {
		v.Currency = DefaultCurrency
	}
	m.minor = v.MinorUnits
	m.currency = v.Currency
	return nil
}

// Value implements driver.Valuer for database storage (minor units only)
func (m Money) Value() (driver.Value, error) {
	return m.minor, nil
}

// Scan implements sql.Scanner. Only the minor-unit amount is scanned; the
// currency column is mapped separately by the persistence model.
func (m *Money) Scan(value any) error {
	if value == nil {
		m.minor = 0
		if m.currency == "" {
			m.currency = DefaultCurrency
		}
		return nil
	}

	switch v := value.(type) {
	case int64:
		m.minor = v
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("invalid minor unit value: %w", err)
		}
		m.minor = d.IntPart()
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}
