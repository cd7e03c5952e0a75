package property

import (
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/shared/valueobject"
)

// TriggerEvaluation reports how collections compare against a property's
// milestone thresholds at a point in time.
type TriggerEvaluation struct {
	CollectedPercent      decimal.Decimal
	ConstructionThreshold decimal.Decimal
	TurnoverThreshold     decimal.Decimal
	CanStartConstruction  bool
	IsTurnoverReady       bool
}

// Evaluate computes the milestone state for the given cumulative principal
// collected against the property price. A zero price never triggers anything.
func Evaluate(p *Property, collected valueobject.Money) (TriggerEvaluation, error) {
	eval := TriggerEvaluation{
		ConstructionThreshold: p.ConstructionTriggerPercent,
		TurnoverThreshold:     p.TurnoverReadinessPercent,
	}
	if !p.Price.IsPositive() {
		return eval, nil
	}
	if collected.Currency() != p.Price.Currency() {
		return eval, valueobject.ErrCurrencyMismatch
	}

	eval.CollectedPercent = decimal.NewFromInt(collected.MinorUnits()).
		Div(decimal.NewFromInt(p.Price.MinorUnits())).
		Mul(decimal.NewFromInt(100))

	eval.CanStartConstruction = eval.CollectedPercent.GreaterThanOrEqual(p.ConstructionTriggerPercent)
	eval.IsTurnoverReady = eval.CollectedPercent.GreaterThanOrEqual(p.TurnoverReadinessPercent)
	return eval, nil
}
