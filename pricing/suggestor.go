package pricing

import (
	"context"

	"marketplace-ai-service/metrics"
	"marketplace-ai-service/models"
)

// Suggestor composes the LLM advisor and the fraud engine into one price
// suggestion. It is the only component that touches the external model.
type Suggestor struct {
	advisor *Advisor
	fraud   *FraudEngine
}

func NewSuggestor(advisor *Advisor, fraud *FraudEngine) *Suggestor {
	return &Suggestor{advisor: advisor, fraud: fraud}
}

// Suggest returns a price suggestion for the product. Missing optional
// attributes are tolerated: an unspecified condition defaults to "Good" and
// an unknown category or brand uses the default base price, so a sparse
// product still yields a valid band.
func (s *Suggestor) Suggest(ctx context.Context, p models.Product) models.PriceSuggestion {
	if p.Condition == "" {
		p.Condition = "Good"
	}

	band := s.advisor.Band(ctx, p)
	flag := s.fraud.Classify(p.AskingPrice, band)
	metrics.FraudFlagsTotal.WithLabelValues(string(flag)).Inc()

	return models.PriceSuggestion{
		PriceBand: band,
		FraudFlag: flag,
	}
}
