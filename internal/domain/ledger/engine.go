package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/contract"
	"github.com/realty/backend/internal/domain/shared"
	"github.com/realty/backend/internal/domain/shared/valueobject"
)

// Engine applies payments against a contract's payment plan and owns the
// reversal protocol. It mutates only the contract aggregate it is handed and
// the transactions it returns; persistence is the caller's concern, and the
// caller must serialize invocations per contract (see application/ledger).
//
// Every operation is all-or-nothing: the engine works on a copy of the
// installment plan and commits it onto the aggregate only after the whole
// allocation has succeeded.
type Engine struct {
	policy LedgerPolicy
	clock  func() time.Time
}

// NewEngine creates a ledger engine with the given policy.
// Returns an error when the policy is unusable (e.g. missing penalty rate).
func NewEngine(policy LedgerPolicy) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Engine{policy: policy, clock: time.Now}, nil
}

// WithClock overrides the engine clock. Intended for tests.
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	return e
}

// PaymentResult is what one ApplyPayment call produced: the PAYMENT ledger
// entry plus any PENALTY entries assessed during the same allocation.
type PaymentResult struct {
	Payment   *Transaction
	Penalties []*Transaction
}

// Entries returns all ledger entries of the result in creation order
func (r *PaymentResult) Entries() []*Transaction {
	entries := make([]*Transaction, 0, len(r.Penalties)+1)
	entries = append(entries, r.Penalties...)
	entries = append(entries, r.Payment)
	return entries
}

// ApplyPayment allocates an incoming payment against the contract's plan:
//
//  1. Installments are taken oldest due date first; the allocation never
//     skips ahead past a partially paid installment.
//  2. Overdue installments are assessed a penalty on their outstanding
//     remainder before new funds land: rate * newly elapsed 30-day periods.
//     Nothing accrues inside the first 30 days past due.
//  3. Within an installment the penalty is settled before principal.
//  4. Leftover beyond the full plan is rejected with OVERPAYMENT unless the
//     contract allows prepayment, in which case the excess becomes a new
//     trailing unscheduled monthly installment.
//
// The returned PAYMENT entry carries the principal-only balance movement;
// penalties never count toward the principal balance.
func (e *Engine) ApplyPayment(c *contract.Contract, rec PaymentRecord) (*PaymentResult, error) {
	if c.ID != rec.ContractID {
		return nil, shared.NewDomainError("CONTRACT_MISMATCH", "Payment record does not belong to this contract")
	}
	if !c.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot apply a payment to a %s contract", c.Status))
	}
	if rec.Amount.Currency() != c.Currency {
		return nil, valueobject.ErrCurrencyMismatch
	}
	if !rec.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	now := e.clock()
	receivedAt := rec.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = now
	}

	// Work on a copy so a rejected allocation leaves the aggregate intact.
	plan := clonePlan(c.Installments)
	order := allocationOrder(plan)

	balanceBefore := valueobject.MustMoney(plan.TotalPaidMinor(), c.Currency)

	// Penalty assessment precedes allocation for every overdue installment,
	// whether or not this payment reaches it.
	var penalties []*Transaction
	for _, idx := range order {
		inst := &plan[idx]
		if inst.IsSettled() || !receivedAt.After(inst.DueDate) {
			continue
		}
		inst.IsOverdue = true
		assessed := e.assessPenalty(inst, receivedAt, c.Currency)
		if assessed == 0 {
			continue
		}
		amount := valueobject.MustMoney(assessed, c.Currency)
		entry := newTransaction(c.ID, TransactionTypePenalty, amount, balanceBefore, balanceBefore, now)
		entry.Allocations = Allocations{{InstallmentNumber: inst.Number, PenaltyMinor: assessed}}
		entry.Reason = fmt.Sprintf("Late payment penalty, installment %d, %d days overdue",
			inst.Number, inst.DaysOverdue(receivedAt))
		penalties = append(penalties, entry)
	}

	// Oldest-first allocation, penalty before principal within an
	// installment.
	remaining := rec.Amount.MinorUnits()
	var principalAllocated int64
	allocations := Allocations{}
	for _, idx := range order {
		if remaining == 0 {
			break
		}
		inst := &plan[idx]
		alloc := Allocation{InstallmentNumber: inst.Number}

		if pen := inst.OutstandingPenalty(); pen > 0 {
			pay := minInt64(remaining, pen)
			inst.PenaltyPaid += pay
			remaining -= pay
			alloc.PenaltyMinor = pay
		}
		if owed := inst.OutstandingPrincipal(); owed > 0 && remaining > 0 {
			pay := minInt64(remaining, owed)
			inst.PaidMinor += pay
			remaining -= pay
			principalAllocated += pay
			alloc.PrincipalMinor = pay
			if inst.IsSettled() {
				paidAt := receivedAt
				inst.PaidDate = &paidAt
				inst.IsOverdue = false
			}
		}

		if alloc.PrincipalMinor > 0 || alloc.PenaltyMinor > 0 {
			allocations = append(allocations, alloc)
		}
	}

	if remaining > 0 {
		if !c.AllowPrepayment {
			return nil, shared.NewDomainError(shared.ErrCodeOverpayment,
				fmt.Sprintf("Payment exceeds the outstanding plan by %s",
					valueobject.MustMoney(remaining, c.Currency)))
		}
		// Prepayment: the excess opens the next monthly installment ahead
		// of schedule and settles it immediately.
		paidAt := receivedAt
		extra := contract.Installment{
			Number:      plan.NextNumber(),
			Type:        contract.PaymentTypeMonthlyAmortization,
			AmountMinor: remaining,
			DueDate:     plan.LastDueDate().AddDate(0, 1, 0),
			PaidMinor:   remaining,
			PaidDate:    &paidAt,
			Unscheduled: true,
		}
		plan = append(plan, extra)
		allocations = append(allocations, Allocation{
			InstallmentNumber: extra.Number,
			PrincipalMinor:    remaining,
		})
		principalAllocated += remaining
		remaining = 0
	}

	allocated := valueobject.MustMoney(principalAllocated, c.Currency)
	balanceAfter := balanceBefore.MustAdd(allocated)

	payment := newTransaction(c.ID, TransactionTypePayment, allocated, balanceBefore, balanceAfter, now)
	payment.Allocations = allocations
	payment.ExternalReference = rec.ExternalReference

	// Commit: nothing above touched the aggregate.
	c.Installments = plan
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewPaymentAppliedEvent(c, payment))
	for _, p := range penalties {
		c.AddDomainEvent(NewPenaltyAssessedEvent(c, p))
	}
	c.CompleteIfSettled(now)

	return &PaymentResult{Payment: payment, Penalties: penalties}, nil
}

// assessPenalty accrues any newly elapsed penalty periods on the
// installment's outstanding remainder and returns the assessed minor units.
// Periods already assessed never accrue twice, and the penalty base is the
// remainder at assessment time, not the full installment amount.
func (e *Engine) assessPenalty(inst *contract.Installment, at time.Time, currency valueobject.Currency) int64 {
	periods := penaltyPeriods(inst.DaysOverdue(at))
	if periods <= inst.PenaltyPeriods {
		return 0
	}
	newPeriods := periods - inst.PenaltyPeriods
	remainder := valueobject.MustMoney(inst.OutstandingPrincipal(), currency)
	rate := e.policy.PenaltyRatePerMonth.Mul(decimal.NewFromInt(int64(newPeriods)))
	assessed := remainder.MultiplyByPercent(rate).MinorUnits()
	inst.PenaltyMinor += assessed
	inst.PenaltyPeriods = periods
	return assessed
}

// ReverseTransaction creates a REVERSAL entry negating the original PAYMENT
// and unwinds the installments it had settled, from the allocation breakdown
// stored on the entry. Reversals are not themselves reversible, and an entry
// can be reversed at most once — the back-reference on the original makes
// the second attempt an O(1) rejection.
func (e *Engine) ReverseTransaction(c *contract.Contract, original *Transaction, reason string) (*Transaction, error) {
	if original.ContractID != c.ID {
		return nil, shared.NewDomainError("CONTRACT_MISMATCH", "Transaction does not belong to this contract")
	}
	if original.IsReversal() {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidReversal, "A reversal cannot be reversed")
	}
	if original.Type != TransactionTypePayment {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidReversal,
			fmt.Sprintf("%s entries cannot be reversed", original.Type))
	}
	if original.IsReversed() {
		return nil, shared.NewDomainError(shared.ErrCodeAlreadyReversed, "Transaction has already been reversed")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Reversal reason is required")
	}

	now := e.clock()
	plan := clonePlan(c.Installments)

	for _, alloc := range original.Allocations {
		inst := plan.ByNumber(alloc.InstallmentNumber)
		if inst == nil {
			return nil, shared.NewDomainError(shared.ErrCodeInvalidReversal,
				fmt.Sprintf("Installment %d no longer exists", alloc.InstallmentNumber))
		}
		if inst.PaidMinor < alloc.PrincipalMinor || inst.PenaltyPaid < alloc.PenaltyMinor {
			return nil, shared.NewDomainError(shared.ErrCodeInvalidReversal,
				fmt.Sprintf("Installment %d has insufficient paid amount to unwind", alloc.InstallmentNumber))
		}
		inst.PaidMinor -= alloc.PrincipalMinor
		inst.PenaltyPaid -= alloc.PenaltyMinor
		if !inst.IsSettled() {
			inst.PaidDate = nil
			if now.After(inst.DueDate) && !inst.Unscheduled {
				inst.IsOverdue = true
			}
		}
	}
	plan = pruneUnscheduled(plan)

	balanceBefore := valueobject.MustMoney(c.Installments.TotalPaidMinor(), c.Currency)
	balanceAfter := valueobject.MustMoney(plan.TotalPaidMinor(), c.Currency)

	reversal := newTransaction(c.ID, TransactionTypeReversal, original.Amount.Negate(), balanceBefore, balanceAfter, now)
	reversal.Allocations = append(Allocations{}, original.Allocations...)
	reversal.Reason = reason
	reversal.ReversedTransactionID = &original.ID
	original.ReversedByID = &reversal.ID

	c.Installments = plan
	c.Touch()
	c.IncrementVersion()
	c.ReopenIfUnsettled()
	c.AddDomainEvent(NewTransactionReversedEvent(c, original, reversal))

	return reversal, nil
}

// RecordRefund returns principal to the payer outside the reversal protocol,
// unwinding the most recently settled installments first. Used when money
// goes back without a specific ledger entry to negate.
func (e *Engine) RecordRefund(c *contract.Contract, amount valueobject.Money, reason string) (*Transaction, error) {
	if amount.Currency() != c.Currency {
		return nil, valueobject.ErrCurrencyMismatch
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Refund amount must be positive")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Refund reason is required")
	}

	now := e.clock()
	plan := clonePlan(c.Installments)

	paid := plan.TotalPaidMinor()
	if amount.MinorUnits() > paid {
		return nil, shared.NewDomainError("INVALID_AMOUNT",
			fmt.Sprintf("Refund %s exceeds the recognized principal %s",
				amount, valueobject.MustMoney(paid, c.Currency)))
	}

	// Newest-first unwind across paid installments.
	order := allocationOrder(plan)
	remaining := amount.MinorUnits()
	allocations := Allocations{}
	for i := len(order) - 1; i >= 0 && remaining > 0; i-- {
		inst := &plan[order[i]]
		if inst.PaidMinor == 0 {
			continue
		}
		take := minInt64(remaining, inst.PaidMinor)
		inst.PaidMinor -= take
		remaining -= take
		if !inst.IsSettled() {
			inst.PaidDate = nil
			if now.After(inst.DueDate) && !inst.Unscheduled {
				inst.IsOverdue = true
			}
		}
		allocations = append(allocations, Allocation{
			InstallmentNumber: inst.Number,
			PrincipalMinor:    take,
		})
	}
	plan = pruneUnscheduled(plan)

	balanceBefore := valueobject.MustMoney(paid, c.Currency)
	balanceAfter := balanceBefore.MustSubtract(amount)

	refund := newTransaction(c.ID, TransactionTypeRefund, amount.Negate(), balanceBefore, balanceAfter, now)
	refund.Allocations = allocations
	refund.Reason = reason

	c.Installments = plan
	c.Touch()
	c.IncrementVersion()
	c.ReopenIfUnsettled()
	c.AddDomainEvent(NewRefundRecordedEvent(c, refund))

	return refund, nil
}

// clonePlan copies the installment plan so allocation can run without
// touching the aggregate until commit
func clonePlan(plan contract.Installments) contract.Installments {
	out := make(contract.Installments, len(plan))
	copy(out, plan)
	return out
}

// pruneUnscheduled drops unscheduled installments once an unwind has taken
// back everything paid into them. They only exist because a prepayment opened
// them, so an empty one would overstate the outstanding balance.
func pruneUnscheduled(plan contract.Installments) contract.Installments {
	out := plan[:0]
	for _, inst := range plan {
		if inst.Unscheduled && inst.PaidMinor == 0 && inst.PenaltyPaid == 0 {
			continue
		}
		out = append(out, inst)
	}
	return out
}

// allocationOrder returns plan indices sorted by due date ascending, with
// the installment number as the tiebreaker
func allocationOrder(plan contract.Installments) []int {
	order := make([]int, len(plan))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := plan[order[a]], plan[order[b]]
		if ia.DueDate.Equal(ib.DueDate) {
			return ia.Number < ib.Number
		}
		return ia.DueDate.Before(ib.DueDate)
	})
	return order
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
