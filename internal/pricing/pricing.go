// Package pricing keeps an article's HT price, TTC price and VAT rate consistent.
//
// VAT rates are percentages (5.5 means 5.5%). TTC is always
// round(HT * (1 + VAT/100), 2); the VAT rate itself is never derived.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrConflictingPrices is returned when a single edit touches both HT and TTC.
var ErrConflictingPrices = errors.New("pricing: HT and TTC cannot be edited together")

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Prices is the price triple carried by an article.
type Prices struct {
	HT  float64
	TTC float64
	VAT float64
}

// Edit lists the fields a caller wants to change. Nil means unchanged.
type Edit struct {
	HT  *float64
	TTC *float64
	VAT *float64
}

// Empty reports whether the edit touches no price field.
func (e Edit) Empty() bool { return e.HT == nil && e.TTC == nil && e.VAT == nil }

// Round2 rounds to cents, half away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func factor(vat float64) decimal.Decimal {
	return one.Add(decimal.NewFromFloat(vat).Div(hundred))
}

// TTCFromHT returns round(ht * (1 + vat/100), 2).
func TTCFromHT(ht, vat float64) float64 {
	return decimal.NewFromFloat(ht).Mul(factor(vat)).Round(2).InexactFloat64()
}

// HTFromTTC returns round(ttc / (1 + vat/100), 2).
func HTFromTTC(ttc, vat float64) float64 {
	f := factor(vat)
	if f.IsZero() {
		return 0
	}
	return decimal.NewFromFloat(ttc).Div(f).Round(2).InexactFloat64()
}

// Apply returns p with e applied. Editing HT or VAT recomputes TTC; editing
// TTC recomputes HT from the resulting VAT rate.
func Apply(p Prices, e Edit) (Prices, error) {
	if e.HT != nil && e.TTC != nil {
		return p, ErrConflictingPrices
	}
	if e.VAT != nil {
		p.VAT = *e.VAT
	}
	switch {
	case e.TTC != nil:
		p.TTC = Round2(*e.TTC)
		p.HT = HTFromTTC(p.TTC, p.VAT)
	case e.HT != nil:
		p.HT = *e.HT
		p.TTC = TTCFromHT(p.HT, p.VAT)
	case e.VAT != nil:
		p.TTC = TTCFromHT(p.HT, p.VAT)
	}
	return p, nil
}

// Fill back-fills a missing price from the other one. A price is missing when
// it is zero; both stay zero when neither is known.
func Fill(ht, ttc, vat float64) (float64, float64) {
	switch {
	case ttc == 0 && ht > 0:
		ttc = TTCFromHT(ht, vat)
	case ht == 0 && ttc > 0:
		ht = HTFromTTC(ttc, vat)
	}
	return ht, ttc
}
