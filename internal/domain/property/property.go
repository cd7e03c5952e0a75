package property

import (
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/shared"
	"github.com/realty/backend/internal/domain/shared/valueobject"
)

// PropertyStatus tracks where a development stands
type PropertyStatus string

const (
	StatusPreSelling        PropertyStatus = "PRE_SELLING"
	StatusUnderConstruction PropertyStatus = "UNDER_CONSTRUCTION"
	StatusReadyForTurnover  PropertyStatus = "READY_FOR_TURNOVER"
	StatusTurnedOver        PropertyStatus = "TURNED_OVER"
)

// IsValid checks if the status is valid
func (s PropertyStatus) IsValid() bool {
	switch s {
	case StatusPreSelling, StatusUnderConstruction, StatusReadyForTurnover, StatusTurnedOver:
		return true
	}
	return false
}

// Default thresholds applied when a property does not override them:
// construction may start at half the price collected, turnover readiness at
// 85 percent.
var (
	DefaultConstructionTriggerPercent = decimal.NewFromInt(50)
	DefaultTurnoverReadinessPercent   = decimal.NewFromInt(85)
)

// Property is the financial view of a listed development unit. Only the
// fields the ledger consults live here; listing details (location, photos,
// amenities) belong to the catalog surface outside this engine.
type Property struct {
	shared.BaseAggregateRoot
	Name                       string
	Status                     PropertyStatus
	Price                      valueobject.Money
	ConstructionTriggerPercent decimal.Decimal
	TurnoverReadinessPercent   decimal.Decimal
}

// NewProperty creates a property with the given price and default thresholds
func NewProperty(name string, price valueobject.Money) (*Property, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Property name cannot be empty")
	}
	if !price.IsPositive() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Property price must be positive")
	}
	return &Property{
		BaseAggregateRoot:          shared.NewBaseAggregateRoot(),
		Name:                       name,
		Status:                     StatusPreSelling,
		Price:                      price,
		ConstructionTriggerPercent: DefaultConstructionTriggerPercent,
		TurnoverReadinessPercent:   DefaultTurnoverReadinessPercent,
	}, nil
}

// SetThresholds overrides the trigger percentages
func (p *Property) SetThresholds(constructionPercent, turnoverPercent decimal.Decimal) error {
	hundred := decimal.NewFromInt(100)
	for _, pct := range []decimal.Decimal{constructionPercent, turnoverPercent} {
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return shared.NewDomainError("INVALID_PERCENTAGE", "Threshold percentages must be between 0 and 100")
		}
	}
	p.ConstructionTriggerPercent = constructionPercent
	p.TurnoverReadinessPercent = turnoverPercent
	p.Touch()
	p.IncrementVersion()
	return nil
}

// MarkUnderConstruction moves the property into construction
func (p *Property) MarkUnderConstruction() error {
	if p.Status != StatusPreSelling {
		return shared.NewDomainError("INVALID_STATE", "Only pre-selling properties start construction")
	}
	p.Status = StatusUnderConstruction
	p.Touch()
	p.IncrementVersion()
	return nil
}

// MarkReadyForTurnover marks the property ready for handover
func (p *Property) MarkReadyForTurnover() error {
	if p.Status != StatusUnderConstruction {
		return shared.NewDomainError("INVALID_STATE", "Only properties under construction become ready for turnover")
	}
	p.Status = StatusReadyForTurnover
	p.Touch()
	p.IncrementVersion()
	return nil
}
