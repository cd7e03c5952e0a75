package models

import (
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/property"
	"github.com/realty/backend/internal/domain/shared/valueobject"
)

// PropertyModel is the persistence model for the Property aggregate root.
type PropertyModel struct {
	AggregateModel
	Name                       string                  `gorm:"type:varchar(200);not null"`
	Status                     property.PropertyStatus `gorm:"type:varchar(30);not null;default:'PRE_SELLING';index"`
	Currency                   string                  `gorm:"type:varchar(3);not null"`
	PriceMinor                 int64                   `gorm:"not null"`
	ConstructionTriggerPercent decimal.Decimal         `gorm:"type:decimal(5,2);not null"`
	TurnoverReadinessPercent   decimal.Decimal         `gorm:"type:decimal(5,2);not null"`
}

// TableName returns the table name for GORM
func (PropertyModel) TableName() string {
	return "properties"
}

// ToDomain converts the persistence model to a domain Property aggregate.
func (m *PropertyModel) ToDomain() *property.Property {
	p := &property.Property{
		Name:                       m.Name,
		Status:                     m.Status,
		Price:                      valueobject.MustMoney(m.PriceMinor, valueobject.Currency(m.Currency)),
		ConstructionTriggerPercent: m.ConstructionTriggerPercent,
		TurnoverReadinessPercent:   m.TurnoverReadinessPercent,
	}
	m.PopulateAggregateRoot(&p.BaseAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Property aggregate.
func (m *PropertyModel) FromDomain(p *property.Property) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Status = p.Status
	m.Currency = string(p.Price.Currency())
	m.PriceMinor = p.Price.MinorUnits()
	m.ConstructionTriggerPercent = p.ConstructionTriggerPercent
	m.TurnoverReadinessPercent = p.TurnoverReadinessPercent
}

// PropertyModelFromDomain creates a new persistence model from a domain Property.
func PropertyModelFromDomain(p *property.Property) *PropertyModel {
	m := &PropertyModel{}
	m.FromDomain(p)
	return m
}
