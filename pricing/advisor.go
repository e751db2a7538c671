package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"

	"marketplace-ai-service/llm"
	"marketplace-ai-service/metrics"
	"marketplace-ai-service/models"
	"marketplace-ai-service/parser"
)

// Advisor obtains a price band from the LLM, degrading to the rule-based
// estimator on any failure. Callers always get a valid band, never an error.
type Advisor struct {
	llm            llm.Client
	rules          *RuleEstimator
	timeout        time.Duration
	sanityMultiple float64
}

// NewAdvisor creates an advisor. sanityMultiple bounds how far the LLM band
// midpoint may deviate from the rule band midpoint (in either direction)
// before the rule band is preferred.
func NewAdvisor(client llm.Client, rules *RuleEstimator, timeout time.Duration, sanityMultiple float64) *Advisor {
	return &Advisor{
		llm:            client,
		rules:          rules,
		timeout:        timeout,
		sanityMultiple: sanityMultiple,
	}
}

// Band returns a price band for the product. The external call is a single
// attempt bounded by the configured timeout.
func (a *Advisor) Band(ctx context.Context, p models.Product) models.PriceBand {
	prompt := buildPrompt(p)

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	text, err := a.llm.Complete(callCtx, prompt)
	metrics.LLMDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Warnf("LLM call failed (%s): %v", a.llm.SourceName(), err)
		return a.fallback(p, "service_error", "the model was unavailable")
	}

	parsed, err := parser.ParseBand(text)
	if err != nil {
		log.Warnf("LLM response unparseable (%s): %v", a.llm.SourceName(), err)
		return a.fallback(p, "inconsistent_output", "the model output was unusable")
	}

	ruleBand := a.rules.Estimate(p)
	if !a.plausible(parsed, ruleBand) {
		log.Warnf("LLM band [%v, %v] rejected by sanity clamp against rule band [%v, %v]",
			parsed.MinPrice, parsed.MaxPrice, ruleBand.MinPrice, ruleBand.MaxPrice)
		metrics.LLMFallbackTotal.WithLabelValues("sanity_clamp").Inc()
		ruleBand.Reason = fmt.Sprintf(
			"%s Overrode LLM suggestion [%v, %v] as implausible.",
			ruleBand.Reason, parsed.MinPrice, parsed.MaxPrice)
		return ruleBand
	}

	return models.PriceBand{
		MinPrice: parsed.MinPrice,
		MaxPrice: parsed.MaxPrice,
		Reason:   "LLM: " + parsed.Reason,
		Source:   models.SourceLLM,
	}
}

func (a *Advisor) fallback(p models.Product, cause, note string) models.PriceBand {
	metrics.LLMFallbackTotal.WithLabelValues(cause).Inc()
	band := a.rules.Estimate(p)
	band.Reason = fmt.Sprintf("%s Fell back to rules because %s.", band.Reason, note)
	return band
}

// plausible rejects LLM bands wildly inconsistent with the rule estimate,
// which guards against hallucinated numbers.
func (a *Advisor) plausible(parsed *parser.BandResult, ruleBand models.PriceBand) bool {
	llmMid := (parsed.MinPrice + parsed.MaxPrice) / 2
	ruleMid := (ruleBand.MinPrice + ruleBand.MaxPrice) / 2
	if llmMid <= 0 || ruleMid <= 0 {
		return false
	}
	ratio := llmMid / ruleMid
	return ratio <= a.sanityMultiple && ratio >= 1/a.sanityMultiple
}

func buildPrompt(p models.Product) string {
	return fmt.Sprintf(`You are a second-hand marketplace expert.
Suggest a fair price range (min_price, max_price) for the following product.

Product details:
Title: %s
Category: %s
Brand: %s
Condition: %s
Age in months: %d
Asking price: %v
Location: %s

Respond ONLY with JSON in this exact format:
{
  "min_price": number,
  "max_price": number,
  "reason": "short explanation here"
}`,
		p.Title, p.Category, p.Brand, p.Condition, p.AgeMonths, p.AskingPrice, p.Location)
}
