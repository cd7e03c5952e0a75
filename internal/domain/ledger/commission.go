package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/contract"
	"github.com/realty/backend/internal/domain/shared"
	"github.com/realty/backend/internal/domain/shared/valueobject"
)

// BeneficiaryRole identifies who earns a commission
type BeneficiaryRole string

const (
	RoleAgent  BeneficiaryRole = "AGENT"
	RoleBroker BeneficiaryRole = "BROKER"
)

// IsValid checks if the role is valid
func (r BeneficiaryRole) IsValid() bool {
	return r == RoleAgent || r == RoleBroker
}

// CommissionRecord accrues the commission one beneficiary earns on a
// contract's recognized principal. The calculator is its sole writer; once a
// payout transaction is referenced the record freezes and later accruals
// open a fresh record.
type CommissionRecord struct {
	shared.BaseEntity
	ContractID          uuid.UUID
	Role                BeneficiaryRole
	RatePercent         decimal.Decimal
	Currency            valueobject.Currency
	BaseMinor           int64 // principal the commission was computed from
	ComputedMinor       int64 // accrued commission, net of reversals
	PayoutTransactionID *uuid.UUID
}

// Base returns the recognized principal base as Money
func (r *CommissionRecord) Base() valueobject.Money {
	return valueobject.MustMoney(r.BaseMinor, r.Currency)
}

// Computed returns the accrued commission as Money
func (r *CommissionRecord) Computed() valueobject.Money {
	return valueobject.MustMoney(r.ComputedMinor, r.Currency)
}

// IsPaid returns true once a payout transaction references the record
func (r *CommissionRecord) IsPaid() bool {
	return r.PayoutTransactionID != nil
}

// MarkPaid freezes the record against a payout transaction.
// Returns ALREADY_PAID if a payout is already referenced.
func (r *CommissionRecord) MarkPaid(payoutTransactionID uuid.UUID) error {
	if r.IsPaid() {
		return shared.NewDomainError(shared.ErrCodeAlreadyPaid, "Commission record has already been paid out")
	}
	if payoutTransactionID == uuid.Nil {
		return shared.NewDomainError("INVALID_TRANSACTION", "Payout transaction ID cannot be empty")
	}
	r.PayoutTransactionID = &payoutTransactionID
	r.Touch()
	return nil
}

// NewCommissionPayout builds the COMMISSION_PAYOUT ledger entry for a
// record. Payouts move commission money, not principal, so the balance
// columns stay flat.
func NewCommissionPayout(contractID uuid.UUID, record *CommissionRecord, balance valueobject.Money, at time.Time) *Transaction {
	payout := newTransaction(contractID, TransactionTypeCommissionPayout, record.Computed(), balance, balance, at)
	payout.Reason = fmt.Sprintf("%s commission payout at %s%%", record.Role, record.RatePercent)
	return payout
}

// Calculator computes agent/broker commissions from the principal payments
// the ledger engine recognizes. Commission applies to principal only —
// penalty collections never generate commission.
type Calculator struct{}

// NewCalculator creates a commission calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// roleRate returns the configured rate for a role, or an error when the
// role is assigned on the contract but carries no rate. A missing rate is a
// configuration problem that must surface, never default to zero.
func roleRate(c *contract.Contract, role BeneficiaryRole) (*decimal.Decimal, error) {
	switch role {
	case RoleAgent:
		if c.AgentID == nil {
			return nil, nil
		}
		if c.AgentCommissionRate == nil {
			return nil, shared.NewDomainError(shared.ErrCodeMissingRate,
				"Contract has an agent but no agent commission rate configured")
		}
		return c.AgentCommissionRate, nil
	case RoleBroker:
		if c.BrokerID == nil {
			return nil, nil
		}
		if c.BrokerCommissionRate == nil {
			return nil, shared.NewDomainError(shared.ErrCodeMissingRate,
				"Contract has a broker but no broker commission rate configured")
		}
		return c.BrokerCommissionRate, nil
	default:
		return nil, shared.NewDomainError("INVALID_ROLE", fmt.Sprintf("Unknown beneficiary role %q", role))
	}
}

// OnPaymentRecognized accrues commission for each configured role from a
// PAYMENT entry. Existing open records (per role) are updated in place; a
// role whose record is already paid out gets a fresh record. Returns the
// records that were created or changed.
func (calc *Calculator) OnPaymentRecognized(c *contract.Contract, txn *Transaction, open map[BeneficiaryRole]*CommissionRecord) ([]*CommissionRecord, error) {
	if txn.Type != TransactionTypePayment {
		return nil, shared.NewDomainError("INVALID_TRANSACTION",
			fmt.Sprintf("Commission accrues from PAYMENT entries, got %s", txn.Type))
	}
	return calc.accrue(c, txn.Amount, open)
}

// OnPaymentReversed unwinds commission for a REVERSAL entry negating a
// PAYMENT. The reversal amount is negative, so accrual nets it out.
func (calc *Calculator) OnPaymentReversed(c *contract.Contract, reversal *Transaction, open map[BeneficiaryRole]*CommissionRecord) ([]*CommissionRecord, error) {
	if reversal.Type != TransactionTypeReversal {
		return nil, shared.NewDomainError("INVALID_TRANSACTION",
			fmt.Sprintf("Expected a REVERSAL entry, got %s", reversal.Type))
	}
	return calc.accrue(c, reversal.Amount, open)
}

func (calc *Calculator) accrue(c *contract.Contract, principal valueobject.Money, open map[BeneficiaryRole]*CommissionRecord) ([]*CommissionRecord, error) {
	var changed []*CommissionRecord
	for _, role := range []BeneficiaryRole{RoleAgent, RoleBroker} {
		rate, err := roleRate(c, role)
		if err != nil {
			return nil, err
		}
		if rate == nil || rate.IsZero() {
			continue
		}

		record := open[role]
		if record == nil || record.IsPaid() {
			record = &CommissionRecord{
				BaseEntity:  shared.NewBaseEntity(),
				ContractID:  c.ID,
				Role:        role,
				RatePercent: *rate,
				Currency:    c.Currency,
			}
			if open != nil {
				open[role] = record
			}
		}

		record.BaseMinor += principal.MinorUnits()
		record.ComputedMinor += principal.MultiplyByPercent(*rate).MinorUnits()
		record.Touch()
		changed = append(changed, record)
	}
	return changed, nil
}
