package pricing

import (
	"github.com/shopspring/decimal"

	"marketplace-ai-service/models"
)

// FraudEngine classifies an asking price against a fair-price band. The flag
// is derived only from the final band, never from the asking price alone.
type FraudEngine struct {
	tolerance decimal.Decimal
}

// NewFraudEngine creates an engine with the given tolerance fraction. The
// tolerance keeps marginal cases from being flagged.
func NewFraudEngine(tolerance float64) *FraudEngine {
	return &FraudEngine{tolerance: decimal.NewFromFloat(tolerance)}
}

// Classify returns exactly one of Normal, Overpriced or Underpriced. The
// thresholds are computed in decimal arithmetic so the boundary values
// (asking price exactly at a tolerance edge) are reliably Normal.
func (e *FraudEngine) Classify(askingPrice float64, band models.PriceBand) models.FraudFlag {
	asking := decimal.NewFromFloat(askingPrice)
	one := decimal.NewFromInt(1)

	upper := decimal.NewFromFloat(band.MaxPrice).Mul(one.Add(e.tolerance))
	if asking.GreaterThan(upper) {
		return models.FraudOverpriced
	}

	lower := decimal.NewFromFloat(band.MinPrice).Mul(one.Sub(e.tolerance))
	if asking.LessThan(lower) {
		return models.FraudUnderpriced
	}

	return models.FraudNormal
}
