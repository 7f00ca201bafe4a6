package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestTTCFromHT(t *testing.T) {
	tests := []struct {
		ht, vat, want float64
	}{
		{10, 20, 12},
		{100, 5.5, 105.5},
		{3.33, 5.5, 3.51},
		{1.99, 10, 2.19},
		{0, 20, 0},
		{12.5, 0, 12.5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TTCFromHT(tt.ht, tt.vat), "ht=%v vat=%v", tt.ht, tt.vat)
	}
}

func TestHTFromTTC(t *testing.T) {
	assert.Equal(t, 10.0, HTFromTTC(12, 20))
	assert.Equal(t, 100.0, HTFromTTC(105.5, 5.5))
	assert.Equal(t, 0.0, HTFromTTC(10, -100))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 2.68, Round2(2.675))
	assert.Equal(t, 1.01, Round2(1.005))
	assert.Equal(t, -1.01, Round2(-1.005))
	assert.Equal(t, 30.0, Round2(29.999999999))
}

func TestApplyHTEdit(t *testing.T) {
	p, err := Apply(Prices{HT: 1, TTC: 1.2, VAT: 20}, Edit{HT: ptr(10)})
	require.NoError(t, err)
	assert.Equal(t, Prices{HT: 10, TTC: 12, VAT: 20}, p)
}

func TestApplyVATEditRecomputesTTC(t *testing.T) {
	p, err := Apply(Prices{HT: 10, TTC: 12, VAT: 20}, Edit{VAT: ptr(5.5)})
	require.NoError(t, err)
	assert.Equal(t, 10.0, p.HT)
	assert.Equal(t, 10.55, p.TTC)
	assert.Equal(t, 5.5, p.VAT)
}

func TestApplyTTCEdit(t *testing.T) {
	p, err := Apply(Prices{HT: 10, TTC: 12, VAT: 20}, Edit{TTC: ptr(24)})
	require.NoError(t, err)
	assert.Equal(t, Prices{HT: 20, TTC: 24, VAT: 20}, p)
}

func TestApplyTTCWithVATUsesNewRate(t *testing.T) {
	p, err := Apply(Prices{HT: 10, TTC: 12, VAT: 20}, Edit{TTC: ptr(11), VAT: ptr(10)})
	require.NoError(t, err)
	assert.Equal(t, Prices{HT: 10, TTC: 11, VAT: 10}, p)
}

func TestApplyRejectsBothPrices(t *testing.T) {
	orig := Prices{HT: 10, TTC: 12, VAT: 20}
	p, err := Apply(orig, Edit{HT: ptr(1), TTC: ptr(2)})
	require.ErrorIs(t, err, ErrConflictingPrices)
	assert.Equal(t, orig, p)
}

func TestApplyEmptyEdit(t *testing.T) {
	orig := Prices{HT: 10, TTC: 12, VAT: 20}
	p, err := Apply(orig, Edit{})
	require.NoError(t, err)
	assert.Equal(t, orig, p)
	assert.True(t, Edit{}.Empty())
}

func TestRoundTripHT(t *testing.T) {
	for _, vat := range []float64{0, 2.1, 5.5, 10, 20} {
		for h := 0.0; h < 50; h += 0.37 {
			ht := Round2(h)
			withHT, err := Apply(Prices{VAT: vat}, Edit{HT: ptr(ht)})
			require.NoError(t, err)
			assert.Equal(t, TTCFromHT(ht, vat), withHT.TTC)

			back, err := Apply(withHT, Edit{TTC: ptr(withHT.TTC)})
			require.NoError(t, err)
			assert.InDelta(t, ht, back.HT, 0.005, "ht=%v vat=%v", ht, vat)
		}
	}
}

func TestFill(t *testing.T) {
	ht, ttc := Fill(10, 0, 20)
	assert.Equal(t, 10.0, ht)
	assert.Equal(t, 12.0, ttc)

	ht, ttc = Fill(0, 12, 20)
	assert.Equal(t, 10.0, ht)
	assert.Equal(t, 12.0, ttc)

	ht, ttc = Fill(0, 0, 20)
	assert.Zero(t, ht)
	assert.Zero(t, ttc)

	ht, ttc = Fill(10, 11, 20)
	assert.Equal(t, 10.0, ht)
	assert.Equal(t, 11.0, ttc)
}
