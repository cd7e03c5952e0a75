package contract

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/contract"
	"github.com/realty/backend/internal/domain/shared/valueobject"
)

// ContractResponse represents a contract in API responses
type ContractResponse struct {
	ID                uuid.UUID        `json:"id"`
	ContractNumber    string           `json:"contract_number"`
	Type              string           `json:"type"`
	Status            string           `json:"status"`
	PropertyID        uuid.UUID        `json:"property_id"`
	ClientID          uuid.UUID        `json:"client_id"`
	DeveloperID       uuid.UUID        `json:"developer_id"`
	AgentID           *uuid.UUID       `json:"agent_id,omitempty"`
	BrokerID          *uuid.UUID       `json:"broker_id,omitempty"`
	Currency          string           `json:"currency"`
	TotalAmount       decimal.Decimal  `json:"total_amount"`
	ReservationFee    decimal.Decimal  `json:"reservation_fee"`
	DownpaymentAmount decimal.Decimal  `json:"downpayment_amount"`
	EquityAmount      decimal.Decimal  `json:"equity_amount"`
	LoanableAmount    decimal.Decimal  `json:"loanable_amount"`
	DownpaymentMonths int              `json:"downpayment_months"`
	TermMonths        int              `json:"term_months"`
	AgentRate         *decimal.Decimal `json:"agent_commission_rate,omitempty"`
	BrokerRate        *decimal.Decimal `json:"broker_commission_rate,omitempty"`
	AllowPrepayment   bool             `json:"allow_prepayment"`
	StartDate         time.Time        `json:"start_date"`
	EndDate           *time.Time       `json:"end_date,omitempty"`
	FullySigned       bool             `json:"fully_signed"`
	InstallmentCount  int              `json:"installment_count"`
	CompletedAt       *time.Time       `json:"completed_at,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	Version           int              `json:"version"`
}

// InstallmentResponse represents one scheduled installment in API responses
type InstallmentResponse struct {
	Number      int             `json:"number"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"due_date"`
	Paid        decimal.Decimal `json:"paid"`
	PaidDate    *time.Time      `json:"paid_date,omitempty"`
	IsOverdue   bool            `json:"is_overdue"`
	Penalty     decimal.Decimal `json:"penalty"`
	PenaltyPaid decimal.Decimal `json:"penalty_paid"`
	Settled     bool            `json:"settled"`
	Unscheduled bool            `json:"unscheduled,omitempty"`
}

func toContractResponse(c *contract.Contract) *ContractResponse {
	return &ContractResponse{
		ID:                c.ID,
		ContractNumber:    c.ContractNumber,
		Type:              string(c.Type),
		Status:            string(c.Status),
		PropertyID:        c.PropertyID,
		ClientID:          c.ClientID,
		DeveloperID:       c.DeveloperID,
		AgentID:           c.AgentID,
		BrokerID:          c.BrokerID,
		Currency:          string(c.Currency),
		TotalAmount:       c.TotalAmount.Decimal(),
		ReservationFee:    c.ReservationFee.Decimal(),
		DownpaymentAmount: c.DownpaymentAmount.Decimal(),
		EquityAmount:      c.EquityAmount.Decimal(),
		LoanableAmount:    c.LoanableAmount.Decimal(),
		DownpaymentMonths: c.DownpaymentMonths,
		TermMonths:        c.TermMonths,
		AgentRate:         c.AgentCommissionRate,
		BrokerRate:        c.BrokerCommissionRate,
		AllowPrepayment:   c.AllowPrepayment,
		StartDate:         c.StartDate,
		EndDate:           c.EndDate,
		FullySigned:       c.IsFullySigned(),
		InstallmentCount:  len(c.Installments),
		CompletedAt:       c.CompletedAt,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
		Version:           c.GetVersion(),
	}
}

func toInstallmentResponses(c *contract.Contract) []InstallmentResponse {
	currency := c.Currency
	items := make([]InstallmentResponse, len(c.Installments))
	for i := range c.Installments {
		inst := &c.Installments[i]
		items[i] = InstallmentResponse{
			Number:      inst.Number,
			Type:        string(inst.Type),
			Amount:      valueobject.MustMoney(inst.AmountMinor, currency).Decimal(),
			DueDate:     inst.DueDate,
			Paid:        valueobject.MustMoney(inst.PaidMinor, currency).Decimal(),
			PaidDate:    inst.PaidDate,
			IsOverdue:   inst.IsOverdue,
			Penalty:     valueobject.MustMoney(inst.PenaltyMinor, currency).Decimal(),
			PenaltyPaid: valueobject.MustMoney(inst.PenaltyPaid, currency).Decimal(),
			Settled:     inst.IsSettled(),
			Unscheduled: inst.Unscheduled,
		}
	}
	return items
}

// valueCurrency maps a request currency code to the domain currency,
// defaulting to PHP when empty
func valueCurrency(code string) valueobject.Currency {
	if code == "" {
		return valueobject.DefaultCurrency
	}
	return valueobject.Currency(code)
}

// parseAmounts parses decimal amount strings into Money, treating empty
// strings as zero
func parseAmounts(currency valueobject.Currency, amounts ...string) ([]valueobject.Money, error) {
	out := make([]valueobject.Money, len(amounts))
	for i, raw := range amounts {
		if raw == "" {
			out[i] = valueobject.Zero(currency)
			continue
		}
		m, err := valueobject.NewMoneyFromString(raw, currency)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}
