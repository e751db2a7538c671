package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"marketplace-ai-service/models"
)

// RuleConfig is the configuration data behind the rule-based estimator.
type RuleConfig struct {
	// BasePrices maps "category/brand" (lowercase) to a base price.
	BasePrices map[string]float64
	// CategoryBase maps a lowercase category to a base price used when the
	// brand is not in BasePrices.
	CategoryBase map[string]float64
	// DefaultBase is the global fallback base price.
	DefaultBase float64
	// ConditionFactors maps a lowercase condition to a multiplier.
	ConditionFactors map[string]float64
	// DefaultConditionFactor applies to unknown or missing conditions.
	DefaultConditionFactor float64
	// MonthlyDepreciation is the straight-line value loss per month of age.
	MonthlyDepreciation float64
	// DepreciationFloor is the minimum fraction of base price retained.
	DepreciationFloor float64
	// BandSpread is the +/- fraction applied around the computed midpoint.
	BandSpread float64
}

// DefaultRuleConfig returns the built-in base-price table and multipliers.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		BasePrices: map[string]float64{
			"mobile/apple":   60000,
			"mobile/samsung": 45000,
			"mobile/oneplus": 35000,
			"laptop/apple":   90000,
			"laptop/dell":    55000,
			"laptop/hp":      50000,
			"laptop/lenovo":  48000,
			"camera/canon":   40000,
			"camera/nikon":   38000,
			"furniture/ikea": 15000,
		},
		CategoryBase: map[string]float64{
			"mobile":    25000,
			"laptop":    40000,
			"camera":    30000,
			"furniture": 10000,
			"bike":      50000,
		},
		DefaultBase: 20000,
		ConditionFactors: map[string]float64{
			"like new": 0.9,
			"good":     0.75,
			"fair":     0.6,
		},
		DefaultConditionFactor: 0.7,
		MonthlyDepreciation:    0.005,
		DepreciationFloor:      0.5,
		BandSpread:             0.05,
	}
}

// RuleEstimator computes a fair-price band from product attributes alone.
// It is pure and deterministic: the same product always yields the same band,
// and it never fails for a valid product.
type RuleEstimator struct {
	cfg RuleConfig
}

// NewRuleEstimator creates an estimator from the given configuration.
func NewRuleEstimator(cfg RuleConfig) *RuleEstimator {
	return &RuleEstimator{cfg: cfg}
}

// Estimate returns a rule-fallback price band for the product.
func (e *RuleEstimator) Estimate(p models.Product) models.PriceBand {
	base := e.basePrice(p.Category, p.Brand)
	factor := e.conditionFactor(p.Condition)

	age := p.AgeMonths
	if age < 0 {
		age = 0
	}
	depreciation := 1 - float64(age)*e.cfg.MonthlyDepreciation
	if depreciation < e.cfg.DepreciationFloor {
		depreciation = e.cfg.DepreciationFloor
	}

	mid := decimal.NewFromFloat(base).
		Mul(decimal.NewFromFloat(factor)).
		Mul(decimal.NewFromFloat(depreciation))

	spread := decimal.NewFromFloat(e.cfg.BandSpread)
	min := mid.Mul(decimal.NewFromInt(1).Sub(spread)).Round(0)
	max := mid.Mul(decimal.NewFromInt(1).Add(spread)).Round(0)

	one := decimal.NewFromInt(1)
	if min.LessThan(one) {
		min = one
	}
	if max.LessThan(min) {
		max = min
	}

	condition := strings.ToLower(strings.TrimSpace(p.Condition))
	if condition == "" {
		condition = "unspecified"
	}
	reason := fmt.Sprintf("Rule-based: category %s, brand %s, condition %s, age %d months.",
		p.Category, p.Brand, condition, age)

	return models.PriceBand{
		MinPrice: min.InexactFloat64(),
		MaxPrice: max.InexactFloat64(),
		Reason:   reason,
		Source:   models.SourceRuleFallback,
	}
}

func (e *RuleEstimator) basePrice(category, brand string) float64 {
	cat := strings.ToLower(strings.TrimSpace(category))
	br := strings.ToLower(strings.TrimSpace(brand))
	if base, ok := e.cfg.BasePrices[cat+"/"+br]; ok {
		return base
	}
	if base, ok := e.cfg.CategoryBase[cat]; ok {
		return base
	}
	return e.cfg.DefaultBase
}

func (e *RuleEstimator) conditionFactor(condition string) float64 {
	if f, ok := e.cfg.ConditionFactors[strings.ToLower(strings.TrimSpace(condition))]; ok {
		return f
	}
	return e.cfg.DefaultConditionFactor
}
