package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/realty/backend/internal/domain/shared"
	"github.com/realty/backend/internal/domain/shared/valueobject"
)

// TransactionType classifies ledger entries
type TransactionType string

const (
	TransactionTypePayment          TransactionType = "PAYMENT"
	TransactionTypeCommissionPayout TransactionType = "COMMISSION_PAYOUT"
	TransactionTypeRefund           TransactionType = "REFUND"
	TransactionTypePenalty          TransactionType = "PENALTY"
	TransactionTypeReversal         TransactionType = "REVERSAL"
)

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypePayment, TransactionTypeCommissionPayout,
		TransactionTypeRefund, TransactionTypePenalty, TransactionTypeReversal:
		return true
	}
	return false
}

// Allocation records how much of a transaction landed on one installment,
// split into principal and penalty portions. Reversals unwind from this
// breakdown rather than re-deriving it.
type Allocation struct {
	InstallmentNumber int   `json:"installment_number"`
	PrincipalMinor    int64 `json:"principal_minor"`
	PenaltyMinor      int64 `json:"penalty_minor"`
}

// Allocations is the per-installment breakdown of a transaction, stored as
// JSONB alongside the ledger row.
type Allocations []Allocation

// Value implements driver.Valuer for GORM to store as JSONB
func (a Allocations) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for GORM to read from JSONB
func (a *Allocations) Scan(value interface{}) error {
	if value == nil {
		*a = Allocations{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Allocations: unsupported type")
	}

	if len(bytes) == 0 {
		*a = Allocations{}
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// PrincipalTotal sums the principal portions in minor units
func (a Allocations) PrincipalTotal() int64 {
	var total int64
	for i := range a {
		total += a[i].PrincipalMinor
	}
	return total
}

// Transaction is one append-only ledger entry. Entries are never updated or
// deleted; mistakes are offset by REVERSAL entries. The only mutable column
// is the reversed-by back-reference, which exists so that double reversal is
// an O(1) check instead of a ledger scan.
type Transaction struct {
	shared.BaseEntity
	ContractID        uuid.UUID
	Type              TransactionType
	Amount            valueobject.Money
	BalanceBefore     valueobject.Money // cumulative principal before this entry
	BalanceAfter      valueobject.Money // cumulative principal after this entry
	Allocations       Allocations
	ExternalReference string
	Reason            string
	// ReversedTransactionID points from a REVERSAL to the entry it negates.
	ReversedTransactionID *uuid.UUID
	// ReversedByID is set on the original entry once a reversal references
	// it; a non-nil value permanently blocks further reversals.
	ReversedByID *uuid.UUID
}

// IsReversal returns true for REVERSAL entries
func (t *Transaction) IsReversal() bool {
	return t.Type == TransactionTypeReversal
}

// IsReversed returns true once a reversal references this entry
func (t *Transaction) IsReversed() bool {
	return t.ReversedByID != nil
}

// CanBeReversed reports whether the reversal protocol accepts this entry:
// only PAYMENT entries that have not been reversed yet qualify.
func (t *Transaction) CanBeReversed() bool {
	return t.Type == TransactionTypePayment && !t.IsReversed()
}

// newTransaction builds a ledger entry with a fresh identity
func newTransaction(contractID uuid.UUID, txType TransactionType, amount, before, after valueobject.Money, at time.Time) *Transaction {
	return &Transaction{
		BaseEntity: shared.BaseEntity{
			ID:        uuid.New(),
			CreatedAt: at,
			UpdatedAt: at,
		},
		ContractID:    contractID,
		Type:          txType,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Allocations:   Allocations{},
	}
}

// PaymentRecord is the unit of work the ledger engine consumes. It is
// ephemeral: the engine reads it, allocates it and emits a Transaction, but
// never stores the record itself.
type PaymentRecord struct {
	ContractID        uuid.UUID
	Amount            valueobject.Money
	ReceivedAt        time.Time
	ExternalReference string
}
