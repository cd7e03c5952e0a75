package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/ledger"
)

// TransactionResponse represents a ledger entry in API responses
type TransactionResponse struct {
	ID                    uuid.UUID            `json:"id"`
	ContractID            uuid.UUID            `json:"contract_id"`
	Type                  string               `json:"type"`
	Amount                decimal.Decimal      `json:"amount"`
	Currency              string               `json:"currency"`
	BalanceBefore         decimal.Decimal      `json:"balance_before"`
	BalanceAfter          decimal.Decimal      `json:"balance_after"`
	Allocations           []AllocationResponse `json:"allocations,omitempty"`
	ExternalReference     string               `json:"external_reference,omitempty"`
	Reason                string               `json:"reason,omitempty"`
	ReversedTransactionID *uuid.UUID           `json:"reversed_transaction_id,omitempty"`
	ReversedByID          *uuid.UUID           `json:"reversed_by_id,omitempty"`
	CreatedAt             time.Time            `json:"created_at"`
}

// AllocationResponse is one installment's share of a transaction
type AllocationResponse struct {
	InstallmentNumber int             `json:"installment_number"`
	Principal         decimal.Decimal `json:"principal"`
	Penalty           decimal.Decimal `json:"penalty"`
}

// CommissionResponse represents a commission record in API responses
type CommissionResponse struct {
	ID                  uuid.UUID       `json:"id"`
	ContractID          uuid.UUID       `json:"contract_id"`
	Role                string          `json:"role"`
	RatePercent         decimal.Decimal `json:"rate_percent"`
	Currency            string          `json:"currency"`
	Base                decimal.Decimal `json:"base"`
	Computed            decimal.Decimal `json:"computed"`
	Paid                bool            `json:"paid"`
	PayoutTransactionID *uuid.UUID      `json:"payout_transaction_id,omitempty"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func toTransactionResponse(t *ledger.Transaction) TransactionResponse {
	minorScale := decimal.New(1, -2)
	resp := TransactionResponse{
		ID:                    t.ID,
		ContractID:            t.ContractID,
		Type:                  string(t.Type),
		Amount:                t.Amount.Decimal(),
		Currency:              string(t.Amount.Currency()),
		BalanceBefore:         t.BalanceBefore.Decimal(),
		BalanceAfter:          t.BalanceAfter.Decimal(),
		ExternalReference:     t.ExternalReference,
		Reason:                t.Reason,
		ReversedTransactionID: t.ReversedTransactionID,
		ReversedByID:          t.ReversedByID,
		CreatedAt:             t.CreatedAt,
	}
	for _, alloc := range t.Allocations {
		resp.Allocations = append(resp.Allocations, AllocationResponse{
			InstallmentNumber: alloc.InstallmentNumber,
			Principal:         decimal.NewFromInt(alloc.PrincipalMinor).Mul(minorScale),
			Penalty:           decimal.NewFromInt(alloc.PenaltyMinor).Mul(minorScale),
		})
	}
	return resp
}

func toCommissionResponse(r *ledger.CommissionRecord) CommissionResponse {
	return CommissionResponse{
		ID:                  r.ID,
		ContractID:          r.ContractID,
		Role:                string(r.Role),
		RatePercent:         r.RatePercent,
		Currency:            string(r.Currency),
		Base:                r.Base().Decimal(),
		Computed:            r.Computed().Decimal(),
		Paid:                r.IsPaid(),
		PayoutTransactionID: r.PayoutTransactionID,
		UpdatedAt:           r.UpdatedAt,
	}
}
