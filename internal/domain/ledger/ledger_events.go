package ledger

import (
	"github.com/google/uuid"

	"github.com/realty/backend/internal/domain/contract"
	"github.com/realty/backend/internal/domain/shared"
)

const aggregateType = "Contract"

// PaymentAppliedEvent is raised when the engine recognizes a payment
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	ContractID         uuid.UUID `json:"contract_id"`
	TransactionID      uuid.UUID `json:"transaction_id"`
	AmountMinor        int64     `json:"amount_minor"`
	BalanceBeforeMinor int64     `json:"balance_before_minor"`
	BalanceAfterMinor  int64     `json:"balance_after_minor"`
	ExternalReference  string    `json:"external_reference,omitempty"`
}

// EventType returns the event type name
func (e *PaymentAppliedEvent) EventType() string { return "PaymentApplied" }

// NewPaymentAppliedEvent creates a new PaymentAppliedEvent
func NewPaymentAppliedEvent(c *contract.Contract, txn *Transaction) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent("PaymentApplied", aggregateType, c.ID),
		ContractID:         c.ID,
		TransactionID:      txn.ID,
		AmountMinor:        txn.Amount.MinorUnits(),
		BalanceBeforeMinor: txn.BalanceBefore.MinorUnits(),
		BalanceAfterMinor:  txn.BalanceAfter.MinorUnits(),
		ExternalReference:  txn.ExternalReference,
	}
}

// PenaltyAssessedEvent is raised when an overdue installment accrues penalty
type PenaltyAssessedEvent struct {
	shared.BaseDomainEvent
	ContractID    uuid.UUID `json:"contract_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	AmountMinor   int64     `json:"amount_minor"`
	Reason        string    `json:"reason"`
}

// EventType returns the event type name
func (e *PenaltyAssessedEvent) EventType() string { return "PenaltyAssessed" }

// NewPenaltyAssessedEvent creates a new PenaltyAssessedEvent
func NewPenaltyAssessedEvent(c *contract.Contract, txn *Transaction) *PenaltyAssessedEvent {
	return &PenaltyAssessedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PenaltyAssessed", aggregateType, c.ID),
		ContractID:      c.ID,
		TransactionID:   txn.ID,
		AmountMinor:     txn.Amount.MinorUnits(),
		Reason:          txn.Reason,
	}
}

// TransactionReversedEvent is raised when a payment is reversed
type TransactionReversedEvent struct {
	shared.BaseDomainEvent
	ContractID            uuid.UUID `json:"contract_id"`
	ReversalTransactionID uuid.UUID `json:"reversal_transaction_id"`
	OriginalTransactionID uuid.UUID `json:"original_transaction_id"`
	AmountMinor           int64     `json:"amount_minor"`
	Reason                string    `json:"reason"`
}

// EventType returns the event type name
func (e *TransactionReversedEvent) EventType() string { return "TransactionReversed" }

// NewTransactionReversedEvent creates a new TransactionReversedEvent
func NewTransactionReversedEvent(c *contract.Contract, original, reversal *Transaction) *TransactionReversedEvent {
	return &TransactionReversedEvent{
		BaseDomainEvent:       shared.NewBaseDomainEvent("TransactionReversed", aggregateType, c.ID),
		ContractID:            c.ID,
		ReversalTransactionID: reversal.ID,
		OriginalTransactionID: original.ID,
		AmountMinor:           reversal.Amount.MinorUnits(),
		Reason:                reversal.Reason,
	}
}

// RefundRecordedEvent is raised when principal is refunded outside the
// reversal protocol
type RefundRecordedEvent struct {
	shared.BaseDomainEvent
	ContractID    uuid.UUID `json:"contract_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	AmountMinor   int64     `json:"amount_minor"`
	Reason        string    `json:"reason"`
}

// EventType returns the event type name
func (e *RefundRecordedEvent) EventType() string { return "RefundRecorded" }

// NewRefundRecordedEvent creates a new RefundRecordedEvent
func NewRefundRecordedEvent(c *contract.Contract, txn *Transaction) *RefundRecordedEvent {
	return &RefundRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("RefundRecorded", aggregateType, c.ID),
		ContractID:      c.ID,
		TransactionID:   txn.ID,
		AmountMinor:     txn.Amount.MinorUnits(),
		Reason:          txn.Reason,
	}
}
