package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/ledger"
	"github.com/realty/backend/internal/domain/shared/valueobject"
)

// TransactionModel is the persistence model for ledger transactions. Rows
// are append-only; reversed_by_id is the single column ever updated after
// insert, and only from NULL to a value.
type TransactionModel struct {
	BaseModel
	ContractID            uuid.UUID              `gorm:"type:uuid;not null;index"`
	Type                  ledger.TransactionType `gorm:"type:varchar(20);not null;index"`
	Currency              string                 `gorm:"type:varchar(3);not null"`
	AmountMinor           int64                  `gorm:"not null"`
	BalanceBeforeMinor    int64                  `gorm:"not null"`
	BalanceAfterMinor     int64                  `gorm:"not null"`
	Allocations           ledger.Allocations     `gorm:"type:jsonb;default:'[]'"`
	ExternalReference     string                 `gorm:"type:varchar(100)"`
	Reason                string                 `gorm:"type:varchar(500)"`
	ReversedTransactionID *uuid.UUID             `gorm:"type:uuid;index"`
	ReversedByID          *uuid.UUID             `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "ledger_transactions"
}

// ToDomain converts the persistence model to a domain Transaction.
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	currency := valueobject.Currency(m.Currency)
	return &ledger.Transaction{
		BaseEntity:            m.BaseModel.ToDomain(),
		ContractID:            m.ContractID,
		Type:                  m.Type,
		Amount:                valueobject.MustMoney(m.AmountMinor, currency),
		BalanceBefore:         valueobject.MustMoney(m.BalanceBeforeMinor, currency),
		BalanceAfter:          valueobject.MustMoney(m.BalanceAfterMinor, currency),
		Allocations:           m.Allocations,
		ExternalReference:     m.ExternalReference,
		Reason:                m.Reason,
		ReversedTransactionID: m.ReversedTransactionID,
		ReversedByID:          m.ReversedByID,
	}
}

// FromDomain populates the persistence model from a domain Transaction.
func (m *TransactionModel) FromDomain(t *ledger.Transaction) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.ContractID = t.ContractID
	m.Type = t.Type
	m.Currency = string(t.Amount.Currency())
	m.AmountMinor = t.Amount.MinorUnits()
	m.BalanceBeforeMinor = t.BalanceBefore.MinorUnits()
	m.BalanceAfterMinor = t.BalanceAfter.MinorUnits()
	m.Allocations = t.Allocations
	m.ExternalReference = t.ExternalReference
	m.Reason = t.Reason
	m.ReversedTransactionID = t.ReversedTransactionID
	m.ReversedByID = t.ReversedByID
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction.
func TransactionModelFromDomain(t *ledger.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}

// CommissionRecordModel is the persistence model for commission records.
type CommissionRecordModel struct {
	BaseModel
	ContractID          uuid.UUID              `gorm:"type:uuid;not null;index"`
	Role                ledger.BeneficiaryRole `gorm:"type:varchar(10);not null"`
	RatePercent         decimal.Decimal        `gorm:"type:decimal(8,4);not null"`
	Currency            string                 `gorm:"type:varchar(3);not null"`
	BaseMinor           int64                  `gorm:"not null"`
	ComputedMinor       int64                  `gorm:"not null"`
	PayoutTransactionID *uuid.UUID             `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (CommissionRecordModel) TableName() string {
	return "commission_records"
}

// ToDomain converts the persistence model to a domain CommissionRecord.
func (m *CommissionRecordModel) ToDomain() *ledger.CommissionRecord {
	return &ledger.CommissionRecord{
		BaseEntity:          m.BaseModel.ToDomain(),
		ContractID:          m.ContractID,
		Role:                m.Role,
		RatePercent:         m.RatePercent,
		Currency:            valueobject.Currency(m.Currency),
		BaseMinor:           m.BaseMinor,
		ComputedMinor:       m.ComputedMinor,
		PayoutTransactionID: m.PayoutTransactionID,
	}
}

// FromDomain populates the persistence model from a domain CommissionRecord.
func (m *CommissionRecordModel) FromDomain(r *ledger.CommissionRecord) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.ContractID = r.ContractID
	m.Role = r.Role
	m.RatePercent = r.RatePercent
	m.Currency = string(r.Currency)
	m.BaseMinor = r.BaseMinor
	m.ComputedMinor = r.ComputedMinor
	m.PayoutTransactionID = r.PayoutTransactionID
}

// CommissionRecordModelFromDomain creates a new persistence model from a domain CommissionRecord.
func CommissionRecordModelFromDomain(r *ledger.CommissionRecord) *CommissionRecordModel {
	m := &CommissionRecordModel{}
	m.FromDomain(r)
	return m
}
