package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid currency", func(t *testing.T) {
		m, err := NewMoney(150050, PHP)
		require.NoError(t, err)
		assert.Equal(t, int64(150050), m.MinorUnits())
		assert.Equal(t, PHP, m.Currency())
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(100, "")
		assert.Error(t, err)
	})
}

func TestNewMoneyFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		minor   int64
		wantErr bool
	}{
		{"two decimal places", "16666.67", 1666667, false},
		{"whole amount", "1000000", 100000000, false},
		{"single decimal", "0.5", 50, false},
		{"zero", "0", 0, false},
		{"negative", "-400.00", -40000, false},
		{"too much precision", "1.005", 0, true},
		{"garbage", "abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMoneyFromString(tt.input, PHP)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.minor, m.MinorUnits())
		})
	}
}

func TestMoney_AddSubtract(t *testing.T) {
	a := NewMoneyPHP(100000)
	b := NewMoneyPHP(25050)

	t.Run("add", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, int64(125050), sum.MinorUnits())
	})

	t.Run("subtract", func(t *testing.T) {
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.Equal(t, int64(74950), diff.MinorUnits())
	})

	t.Run("subtract below zero is allowed", func(t *testing.T) {
		diff, err := b.Subtract(a)
		require.NoError(t, err)
		assert.True(t, diff.IsNegative())
	})

	t.Run("currency mismatch", func(t *testing.T) {
		usd := MustMoney(100, USD)
		_, err := a.Add(usd)
		assert.ErrorIs(t, err, ErrCurrencyMismatch)
		_, err = a.Subtract(usd)
		assert.ErrorIs(t, err, ErrCurrencyMismatch)
		_, err = a.Compare(usd)
		assert.ErrorIs(t, err, ErrCurrencyMismatch)
	})
}

func TestMoney_MultiplyByPercent(t *testing.T) {
	tests := []struct {
		name  string
		minor int64
		rate  string
		want  int64
	}{
		{"five percent of 100k", 10000000, "5", 500000},
		{"two percent of 100k", 10000000, "2", 200000},
		{"one percent of 40k", 4000000, "1", 40000},
		{"rounds half up", 101, "50", 51}, // 50.5 centavos -> 51
		{"rounds down below half", 101, "49", 49},
		{"zero rate", 10000000, "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, err := decimal.NewFromString(tt.rate)
			require.NoError(t, err)
			got := NewMoneyPHP(tt.minor).MultiplyByPercent(rate)
			assert.Equal(t, tt.want, got.MinorUnits())
			assert.Equal(t, PHP, got.Currency())
		})
	}
}

func TestMoney_Compare(t *testing.T) {
	small := NewMoneyPHP(100)
	big := NewMoneyPHP(200)

	cmp, err := small.Compare(big)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	cmp, err = big.Compare(small)
	require.NoError(t, err)
	assert.Equal(t, 1, cmp)

	cmp, err = small.Compare(NewMoneyPHP(100))
	require.NoError(t, err)
	assert.Equal(t, 0, cmp)

	less, err := small.LessThan(big)
	require.NoError(t, err)
	assert.True(t, less)

	gte, err := big.GreaterThanOrEqual(small)
	require.NoError(t, err)
	assert.True(t, gte)

	m, err := small.Min(big)
	require.NoError(t, err)
	assert.True(t, m.Equals(small))
}

func TestMoney_SplitEven(t *testing.T) {
	t.Run("last part absorbs the remainder", func(t *testing.T) {
		// 200,000.00 over 12 months: 11 x 16,666.67 then 16,666.63
		total := NewMoneyPHP(20000000)
		parts, err := total.SplitEven(12)
		require.NoError(t, err)
		require.Len(t, parts, 12)

		for i := 0; i < 11; i++ {
			assert.Equal(t, int64(1666667), parts[i].MinorUnits())
		}
		assert.Equal(t, int64(1666663), parts[11].MinorUnits())

		sum := ZeroPHP()
		for _, p := range parts {
			sum = sum.MustAdd(p)
		}
		assert.True(t, sum.Equals(total))
	})

	t.Run("exact division", func(t *testing.T) {
		parts, err := NewMoneyPHP(60000000).SplitEven(24)
		require.NoError(t, err)
		sum := ZeroPHP()
		for _, p := range parts {
			assert.Equal(t, int64(2500000), p.MinorUnits())
			sum = sum.MustAdd(p)
		}
		assert.Equal(t, int64(60000000), sum.MinorUnits())
	})

	t.Run("tiny amount never overdraws", func(t *testing.T) {
		parts, err := NewMoneyPHP(5).SplitEven(4)
		require.NoError(t, err)
		sum := ZeroPHP()
		for _, p := range parts {
			assert.False(t, p.IsNegative())
			sum = sum.MustAdd(p)
		}
		assert.Equal(t, int64(5), sum.MinorUnits())
	})

	t.Run("rejects non-positive parts", func(t *testing.T) {
		_, err := NewMoneyPHP(100).SplitEven(0)
		assert.Error(t, err)
	})
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := NewMoneyPHP(1666667)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"minor_units":1666667,"currency":"PHP"}`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equals(m))
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "16666.67 PHP", NewMoneyPHP(1666667).String())
	assert.Equal(t, "-400.00 PHP", NewMoneyPHP(-40000).String())
}
