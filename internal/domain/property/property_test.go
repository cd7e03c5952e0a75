package property

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realty/backend/internal/domain/shared/valueobject"
)

func createTestProperty(t *testing.T) *Property {
	t.Helper()
	p, err := NewProperty("Vista Tower Unit 12B", valueobject.NewMoneyPHP(100_000_000))
	require.NoError(t, err)
	return p
}

// ============================================
// Property Tests
// ============================================

func TestNewProperty(t *testing.T) {
	p := createTestProperty(t)

	assert.Equal(t, StatusPreSelling, p.Status)
	assert.True(t, p.ConstructionTriggerPercent.Equal(decimal.NewFromInt(50)))
	assert.True(t, p.TurnoverReadinessPercent.Equal(decimal.NewFromInt(85)))
}

func TestNewProperty_Validation(t *testing.T) {
	_, err := NewProperty("", valueobject.NewMoneyPHP(100))
	assert.Error(t, err)

	_, err = NewProperty("Unit", valueobject.ZeroPHP())
	assert.Error(t, err)
}

func TestProperty_SetThresholds(t *testing.T) {
	p := createTestProperty(t)

	require.NoError(t, p.SetThresholds(decimal.NewFromInt(30), decimal.NewFromInt(90)))
	assert.True(t, p.ConstructionTriggerPercent.Equal(decimal.NewFromInt(30)))

	assert.Error(t, p.SetThresholds(decimal.NewFromInt(-1), decimal.NewFromInt(90)))
	assert.Error(t, p.SetThresholds(decimal.NewFromInt(30), decimal.NewFromInt(101)))
}

func TestProperty_StatusProgression(t *testing.T) {
	p := createTestProperty(t)

	require.NoError(t, p.MarkUnderConstruction())
	assert.Equal(t, StatusUnderConstruction, p.Status)
	assert.Error(t, p.MarkUnderConstruction())

	require.NoError(t, p.MarkReadyForTurnover())
	assert.Equal(t, StatusReadyForTurnover, p.Status)
	assert.Error(t, p.MarkReadyForTurnover())
}

// ============================================
// Trigger Tests
// ============================================

func TestEvaluate_ConstructionTrigger(t *testing.T) {
	p := createTestProperty(t) // price 1,000,000.00, thresholds 50 / 85

	tests := []struct {
		name            string
		collectedMinor  int64
		canConstruct    bool
		isTurnoverReady bool
	}{
		{"nothing collected", 0, false, false},
		{"just below construction", 49_999_999, false, false},
		{"exactly at construction", 50_000_000, true, false},
		{"between thresholds", 70_000_000, true, false},
		{"exactly at turnover", 85_000_000, true, true},
		{"fully collected", 100_000_000, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, err := Evaluate(p, valueobject.NewMoneyPHP(tt.collectedMinor))
			require.NoError(t, err)
			assert.Equal(t, tt.canConstruct, eval.CanStartConstruction)
			assert.Equal(t, tt.isTurnoverReady, eval.IsTurnoverReady)
		})
	}
}

func TestEvaluate_CustomThresholds(t *testing.T) {
	p := createTestProperty(t)
	require.NoError(t, p.SetThresholds(decimal.NewFromInt(30), decimal.NewFromInt(95)))

	eval, err := Evaluate(p, valueobject.NewMoneyPHP(30_000_000))
	require.NoError(t, err)
	assert.True(t, eval.CanStartConstruction)
	assert.False(t, eval.IsTurnoverReady)
}

func TestEvaluate_CurrencyMismatch(t *testing.T) {
	p := createTestProperty(t)

	_, err := Evaluate(p, valueobject.MustMoney(100, valueobject.USD))
	assert.ErrorIs(t, err, valueobject.ErrCurrencyMismatch)
}
