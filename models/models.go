package models

// Product is a single marketplace listing from the dataset. Records are
// immutable after load and owned by the dataset accessor; everything else
// treats them as read-only.
type Product struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand"`
	Condition   string  `json:"condition"`
	AgeMonths   int     `json:"age_months"`
	AskingPrice float64 `json:"asking_price"`
	Location    string  `json:"location"`
}

// Band sources.
const (
	SourceLLM          = "llm"
	SourceRuleFallback = "rule-fallback"
)

// PriceBand is a fair-price interval for a listing. MinPrice <= MaxPrice
// always holds for bands produced by this service.
type PriceBand struct {
	MinPrice float64 `json:"min_price"`
	MaxPrice float64 `json:"max_price"`
	Reason   string  `json:"reason"`
	Source   string  `json:"source"`
}

// FraudFlag classifies an asking price relative to its fair-price band.
type FraudFlag string

const (
	FraudNormal      FraudFlag = "Normal"
	FraudOverpriced  FraudFlag = "Overpriced"
	FraudUnderpriced FraudFlag = "Underpriced"
)

// PriceSuggestion is the unit returned by the price suggestor and logged.
type PriceSuggestion struct {
	PriceBand
	FraudFlag FraudFlag `json:"fraud_flag"`
}

// ModerationStatus is the outcome of classifying a chat message. Exactly one
// status applies per message.
type ModerationStatus string

const (
	StatusSafe        ModerationStatus = "Safe"
	StatusSpam        ModerationStatus = "Spam"
	StatusAbusive     ModerationStatus = "Abusive"
	StatusPhoneNumber ModerationStatus = "PhoneNumber"
)

// ModerationResult carries the status and which rule fired.
type ModerationResult struct {
	Status ModerationStatus `json:"status"`
	Reason string           `json:"reason"`
}

// RecommendationEntry is one scored candidate product.
type RecommendationEntry struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Similarity int    `json:"similarity"`
}

// Recommendation is the full response for one recommendation request.
type Recommendation struct {
	ProductID       int                   `json:"product_id"`
	Title           string                `json:"title"`
	Recommendations []RecommendationEntry `json:"recommendations"`
}
