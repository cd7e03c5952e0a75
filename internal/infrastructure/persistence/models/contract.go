package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/contract"
	"github.com/realty/backend/internal/domain/shared/valueobject"
)

// ContractModel is the persistence model for the Contract aggregate root.
// Money columns hold minor units; the currency column disambiguates them.
// The payment plan is embedded as JSONB because installments are value
// objects that only ever change through the owning aggregate.
type ContractModel struct {
	AggregateModel
	ContractNumber string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	Type           contract.ContractType   `gorm:"type:varchar(10);not null"`
	Status         contract.ContractStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	PropertyID     uuid.UUID               `gorm:"type:uuid;not null;index"`
	ClientID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	DeveloperID    uuid.UUID               `gorm:"type:uuid;not null"`
	AgentID        *uuid.UUID              `gorm:"type:uuid;index"`
	BrokerID       *uuid.UUID              `gorm:"type:uuid"`

	Currency               string `gorm:"type:varchar(3);not null"`
	TotalAmountMinor       int64  `gorm:"not null"`
	ReservationFeeMinor    int64  `gorm:"not null"`
	DownpaymentAmountMinor int64  `gorm:"not null"`
	EquityAmountMinor      int64  `gorm:"not null"`
	LoanableAmountMinor    int64  `gorm:"not null"`
	DownpaymentMonths      int    `gorm:"not null"`
	TermMonths             int    `gorm:"not null"`

	AgentCommissionRate  *decimal.Decimal `gorm:"type:decimal(8,4)"`
	BrokerCommissionRate *decimal.Decimal `gorm:"type:decimal(8,4)"`
	AllowPrepayment      bool             `gorm:"not null;default:false"`

	StartDate time.Time  `gorm:"not null"`
	EndDate   *time.Time `gorm:"index"`

	ClientSigned      bool       `gorm:"not null;default:false"`
	ClientSignBlob    string     `gorm:"type:text"`
	ClientSignedAt    *time.Time
	DeveloperSigned   bool       `gorm:"not null;default:false"`
	DeveloperSignBlob string     `gorm:"type:text"`
	DeveloperSignedAt *time.Time
	AgentSigned       bool       `gorm:"not null;default:false"`
	AgentSignBlob     string     `gorm:"type:text"`
	AgentSignedAt     *time.Time

	Installments contract.Installments `gorm:"type:jsonb;default:'[]'"`

	CompletedAt       *time.Time
	TerminatedAt      *time.Time
	TerminationReason string `gorm:"type:varchar(500)"`
	CancelledAt       *time.Time
	CancelReason      string `gorm:"type:varchar(500)"`
	ExpiredAt         *time.Time
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "contracts"
}

// ToDomain converts the persistence model to a domain Contract aggregate.
func (m *ContractModel) ToDomain() *contract.Contract {
	currency := valueobject.Currency(m.Currency)
	c := &contract.Contract{
		ContractNumber:       m.ContractNumber,
		Type:                 m.Type,
		Status:               m.Status,
		PropertyID:           m.PropertyID,
		ClientID:             m.ClientID,
		DeveloperID:          m.DeveloperID,
		AgentID:              m.AgentID,
		BrokerID:             m.BrokerID,
		Currency:             currency,
		TotalAmount:          valueobject.MustMoney(m.TotalAmountMinor, currency),
		ReservationFee:       valueobject.MustMoney(m.ReservationFeeMinor, currency),
		DownpaymentAmount:    valueobject.MustMoney(m.DownpaymentAmountMinor, currency),
		EquityAmount:         valueobject.MustMoney(m.EquityAmountMinor, currency),
		LoanableAmount:       valueobject.MustMoney(m.LoanableAmountMinor, currency),
		DownpaymentMonths:    m.DownpaymentMonths,
		TermMonths:           m.TermMonths,
		AgentCommissionRate:  m.AgentCommissionRate,
		BrokerCommissionRate: m.BrokerCommissionRate,
		AllowPrepayment:      m.AllowPrepayment,
		StartDate:            m.StartDate,
		EndDate:              m.EndDate,
		ClientSignature: contract.Signature{
			Signed:   m.ClientSigned,
			Blob:     m.ClientSignBlob,
			SignedAt: m.ClientSignedAt,
		},
		DeveloperSignature: contract.Signature{
			Signed:   m.DeveloperSigned,
			Blob:     m.DeveloperSignBlob,
			SignedAt: m.DeveloperSignedAt,
		},
		AgentSignature: contract.Signature{
			Signed:   m.AgentSigned,
			Blob:     m.AgentSignBlob,
			SignedAt: m.AgentSignedAt,
		},
		Installments:      m.Installments,
		CompletedAt:       m.CompletedAt,
		TerminatedAt:      m.TerminatedAt,
		TerminationReason: m.TerminationReason,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
		ExpiredAt:         m.ExpiredAt,
	}
	m.PopulateAggregateRoot(&c.BaseAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain Contract aggregate.
func (m *ContractModel) FromDomain(c *contract.Contract) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.ContractNumber = c.ContractNumber
	m.Type = c.Type
	m.Status = c.Status
	m.PropertyID = c.PropertyID
	m.ClientID = c.ClientID
	m.DeveloperID = c.DeveloperID
	m.AgentID = c.AgentID
	m.BrokerID = c.BrokerID
	m.Currency = string(c.Currency)
	m.TotalAmountMinor = c.TotalAmount.MinorUnits()
	m.ReservationFeeMinor = c.ReservationFee.MinorUnits()
	m.DownpaymentAmountMinor = c.DownpaymentAmount.MinorUnits()
	m.EquityAmountMinor = c.EquityAmount.MinorUnits()
	m.LoanableAmountMinor = c.LoanableAmount.MinorUnits()
	m.DownpaymentMonths = c.DownpaymentMonths
	m.TermMonths = c.TermMonths
	m.AgentCommissionRate = c.AgentCommissionRate
	m.BrokerCommissionRate = c.BrokerCommissionRate
	m.AllowPrepayment = c.AllowPrepayment
	m.StartDate = c.StartDate
	m.EndDate = c.EndDate
	m.ClientSigned = c.ClientSignature.Signed
	m.ClientSignBlob = c.ClientSignature.Blob
	m.ClientSignedAt = c.ClientSignature.SignedAt
	m.DeveloperSigned = c.DeveloperSignature.Signed
	m.DeveloperSignBlob = c.DeveloperSignature.Blob
	m.DeveloperSignedAt = c.DeveloperSignature.SignedAt
	m.AgentSigned = c.AgentSignature.Signed
	m.AgentSignBlob = c.AgentSignature.Blob
	m.AgentSignedAt = c.AgentSignature.SignedAt
	m.Installments = c.Installments
	m.CompletedAt = c.CompletedAt
	m.TerminatedAt = c.TerminatedAt
	m.TerminationReason = c.TerminationReason
	m.CancelledAt = c.CancelledAt
	m.CancelReason = c.CancelReason
	m.ExpiredAt = c.ExpiredAt
}

// ContractModelFromDomain creates a new persistence model from a domain Contract.
func ContractModelFromDomain(c *contract.Contract) *ContractModel {
	m := &ContractModel{}
	m.FromDomain(c)
	return m
}
