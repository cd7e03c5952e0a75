package contract

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/realty/backend/internal/domain/shared/valueobject"
)

// PaymentType classifies what a scheduled installment pays for
type PaymentType string

const (
	PaymentTypeReservationFee      PaymentType = "RESERVATION_FEE"
	PaymentTypeDownpayment         PaymentType = "DOWNPAYMENT"
	PaymentTypeEquity              PaymentType = "EQUITY"
	PaymentTypeMonthlyAmortization PaymentType = "MONTHLY_AMORTIZATION"
)

// IsValid checks if the payment type is valid
func (p PaymentType) IsValid() bool {
	switch p {
	case PaymentTypeReservationFee, PaymentTypeDownpayment,
		PaymentTypeEquity, PaymentTypeMonthlyAmortization:
		return true
	}
	return false
}

// Installment is one scheduled obligation within a contract's payment plan.
// It is a value object inside the Contract aggregate, stored as JSONB.
// Amounts are minor units in the contract currency. Principal and penalty
// are tracked separately: penalties never count toward the scheduled amount.
type Installment struct {
	Number         int         `json:"number"` // 1..N, unique per contract
	Type           PaymentType `json:"type"`
	AmountMinor    int64       `json:"amount_minor"`
	DueDate        time.Time   `json:"due_date"`
	PaidMinor      int64       `json:"paid_minor"`
	PaidDate       *time.Time  `json:"paid_date,omitempty"`
	IsOverdue      bool        `json:"is_overdue"`
	PenaltyMinor   int64       `json:"penalty_minor"`      // penalty assessed so far
	PenaltyPaid    int64       `json:"penalty_paid_minor"` // penalty settled so far
	PenaltyPeriods int         `json:"penalty_periods"`    // 30-day periods already assessed
	Unscheduled    bool        `json:"unscheduled,omitempty"`
}

// Amount returns the scheduled amount as Money
func (i *Installment) Amount(currency valueobject.Currency) valueobject.Money {
	return valueobject.MustMoney(i.AmountMinor, currency)
}

// Paid returns the principal paid so far as Money
func (i *Installment) Paid(currency valueobject.Currency) valueobject.Money {
	return valueobject.MustMoney(i.PaidMinor, currency)
}

// OutstandingPrincipal returns the unpaid principal remainder in minor units
func (i *Installment) OutstandingPrincipal() int64 {
	return i.AmountMinor - i.PaidMinor
}

// OutstandingPenalty returns the unpaid penalty remainder in minor units
func (i *Installment) OutstandingPenalty() int64 {
	return i.PenaltyMinor - i.PenaltyPaid
}

// IsSettled returns true once the full principal has been paid
func (i *Installment) IsSettled() bool {
	return i.PaidMinor >= i.AmountMinor
}

// DaysOverdue returns whole days elapsed past the due date at the given time
func (i *Installment) DaysOverdue(at time.Time) int {
	if !at.After(i.DueDate) {
		return 0
	}
	return int(at.Sub(i.DueDate).Hours() / 24)
}

// Installments is the ordered payment plan of a contract, implementing
// Scanner/Valuer for JSONB storage.
type Installments []Installment

// Value implements driver.Valuer for GORM to store as JSONB
func (s Installments) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for GORM to read from JSONB
func (s *Installments) Scan(value interface{}) error {
	if value == nil {
		*s = Installments{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Installments: unsupported type")
	}

	if len(bytes) == 0 {
		*s = Installments{}
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// TotalScheduledMinor sums the scheduled amounts in minor units
func (s Installments) TotalScheduledMinor() int64 {
	var total int64
	for i := range s {
		total += s[i].AmountMinor
	}
	return total
}

// TotalPaidMinor sums the principal paid in minor units
func (s Installments) TotalPaidMinor() int64 {
	var total int64
	for i := range s {
		total += s[i].PaidMinor
	}
	return total
}

// ScheduledPaidMinor sums the principal paid against scheduled installments,
// excluding unscheduled prepayment entries. Contract completion compares
// this against the contract total so that prepayment excess cannot mask or
// block settlement.
func (s Installments) ScheduledPaidMinor() int64 {
	var total int64
	for i := range s {
		if !s[i].Unscheduled {
			total += s[i].PaidMinor
		}
	}
	return total
}

// TotalPenaltyMinor sums the penalties assessed in minor units
func (s Installments) TotalPenaltyMinor() int64 {
	var total int64
	for i := range s {
		total += s[i].PenaltyMinor
	}
	return total
}

// NextNumber returns the installment number an appended entry would take
func (s Installments) NextNumber() int {
	max := 0
	for i := range s {
		if s[i].Number > max {
			max = s[i].Number
		}
	}
	return max + 1
}

// LastDueDate returns the latest due date in the plan, or the zero time for
// an empty plan
func (s Installments) LastDueDate() time.Time {
	var last time.Time
	for i := range s {
		if s[i].DueDate.After(last) {
			last = s[i].DueDate
		}
	}
	return last
}

// ByNumber returns a pointer to the installment with the given number
func (s Installments) ByNumber(number int) *Installment {
	for i := range s {
		if s[i].Number == number {
			return &s[i]
		}
	}
	return nil
}
