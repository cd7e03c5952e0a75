package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/shared"
)

// penaltyPeriodDays is the length of one penalty accrual period. Overdue
// installments accrue one penalty charge per full period elapsed past the
// due date; nothing accrues before the first full period.
const penaltyPeriodDays = 30

// LedgerPolicy carries the financial rules the engine applies. It is built
// from configuration at startup and passed in explicitly; the engine never
// reads ambient global state.
type LedgerPolicy struct {
	// PenaltyRatePerMonth is the percentage charged on the outstanding
	// principal remainder per full 30-day period overdue.
	PenaltyRatePerMonth decimal.Decimal
}

// DefaultPolicy returns the policy used when configuration does not override
// it: 1% of the outstanding remainder per month overdue.
func DefaultPolicy() LedgerPolicy {
	return LedgerPolicy{
		PenaltyRatePerMonth: decimal.NewFromInt(1),
	}
}

// Validate rejects unusable policies. A zero-value rate from missing
// configuration is a configuration error, not an implicit waiver.
func (p LedgerPolicy) Validate() error {
	if p.PenaltyRatePerMonth.IsNegative() {
		return shared.NewDomainError(shared.ErrCodeMissingRate, "Penalty rate cannot be negative")
	}
	if p.PenaltyRatePerMonth.IsZero() {
		return shared.NewDomainError(shared.ErrCodeMissingRate, "Penalty rate is not configured")
	}
	return nil
}

// penaltyPeriods returns the number of assessable penalty periods for the
// given days overdue: zero inside the first 30 days, floor(days/30) after.
func penaltyPeriods(daysOverdue int) int {
	if daysOverdue < penaltyPeriodDays {
		return 0
	}
	return daysOverdue / penaltyPeriodDays
}
