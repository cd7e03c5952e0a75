package contract

import (
	"fmt"
	"time"

	"github.com/realty/backend/internal/domain/shared"
	"github.com/realty/backend/internal/domain/shared/valueobject"
)

// ScheduleBuilder produces the ordered payment plan for a contract.
//
// Plan layout, one calendar month per slot starting at the contract start
// date (so every due date falls on the same day-of-month):
//
//	RESERVATION_FEE        one installment, due at the start date, when the
//	                       reservation fee is positive
//	DOWNPAYMENT            the downpayment net of the reservation fee, split
//	                       over downpayment_months equal sub-installments
//	EQUITY                 one installment, when the equity amount is positive
//	MONTHLY_AMORTIZATION   the remainder split over term_months equal
//	                       installments
//
// Whenever an amount does not divide evenly, the last sub-installment of the
// group absorbs the rounding remainder, so the plan always sums to the
// contract total exactly.
type ScheduleBuilder struct{}

// NewScheduleBuilder creates a new ScheduleBuilder
func NewScheduleBuilder() *ScheduleBuilder {
	return &ScheduleBuilder{}
}

// Build produces the ordered installment sequence for the contract.
// Returns an INVALID_SCHEDULE error when term_months is not positive or the
// component amounts do not reconcile with the total.
func (b *ScheduleBuilder) Build(c *Contract) (Installments, error) {
	if c.TermMonths <= 0 {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidSchedule,
			fmt.Sprintf("Term months must be positive, got %d", c.TermMonths))
	}

	currency := c.Currency
	reservation := c.ReservationFee
	downpaymentNet, err := c.DownpaymentAmount.Subtract(reservation)
	if err != nil {
		return nil, err
	}
	if downpaymentNet.IsNegative() {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidSchedule,
			"Reservation fee cannot exceed the downpayment amount")
	}

	// Whatever is not reservation, downpayment or equity is amortized
	// monthly: the loanable portion for sales, the rent for leases.
	amortized := c.TotalAmount.
		MustSubtract(reservation).
		MustSubtract(downpaymentNet).
		MustSubtract(c.EquityAmount)
	if amortized.IsNegative() {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidSchedule,
			"Component amounts exceed the contract total")
	}

	plan := make(Installments, 0, c.DownpaymentMonths+c.TermMonths+2)
	slot := 0
	number := 1

	dueAt := func(slot int) time.Time {
		return c.StartDate.AddDate(0, slot, 0)
	}
	emit := func(t PaymentType, amount valueobject.Money) {
		plan = append(plan, Installment{
			Number:      number,
			Type:        t,
			AmountMinor: amount.MinorUnits(),
			DueDate:     dueAt(slot),
		})
		number++
		slot++
	}

	if reservation.IsPositive() {
		emit(PaymentTypeReservationFee, reservation)
	}

	if downpaymentNet.IsPositive() {
		months := c.DownpaymentMonths
		if months <= 1 {
			emit(PaymentTypeDownpayment, downpaymentNet)
		} else {
			parts, err := downpaymentNet.SplitEven(months)
			if err != nil {
				return nil, err
			}
			for _, part := range parts {
				emit(PaymentTypeDownpayment, part)
			}
		}
	}

	if c.EquityAmount.IsPositive() {
		emit(PaymentTypeEquity, c.EquityAmount)
	}

	if amortized.IsPositive() {
		parts, err := amortized.SplitEven(c.TermMonths)
		if err != nil {
			return nil, err
		}
		for _, part := range parts {
			emit(PaymentTypeMonthlyAmortization, part)
		}
	}

	if plan.TotalScheduledMinor() != c.TotalAmount.MinorUnits() {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidSchedule,
			fmt.Sprintf("Schedule sums to %d minor units, contract total is %d %s",
				plan.TotalScheduledMinor(), c.TotalAmount.MinorUnits(), currency))
	}

	return plan, nil
}
