package recommend

import (
	"math"
	"sort"
	"strings"

	"marketplace-ai-service/dataset"
	"marketplace-ai-service/models"
)

// Weights configures the similarity score. All contributions are symmetric:
// Score(a, b) == Score(b, a) for every pair.
type Weights struct {
	Category  int
	Brand     int
	Condition int
	// Age contributes when the age difference is within AgeWindowMonths.
	Age             int
	AgeWindowMonths int
	// Price contributes when the asking price difference is within PriceWindow.
	Price       int
	PriceWindow float64
}

// DefaultWeights returns the tuning used in production. Category and brand
// dominate; condition, age proximity and price proximity refine ties.
func DefaultWeights() Weights {
	return Weights{
		Category:        2,
		Brand:           2,
		Condition:       1,
		Age:             1,
		AgeWindowMonths: 12,
		Price:           1,
		PriceWindow:     5000,
	}
}

// Engine scores all other products against a target and returns the best
// matches. It only reads from the dataset and holds no mutable state.
type Engine struct {
	ds      *dataset.Dataset
	weights Weights
	topN    int
}

// NewEngine creates an engine. defaultTopN applies when a request does not
// specify its own limit.
func NewEngine(ds *dataset.Dataset, weights Weights, defaultTopN int) *Engine {
	if defaultTopN < 1 {
		defaultTopN = 3
	}
	return &Engine{ds: ds, weights: weights, topN: defaultTopN}
}

// Score returns the similarity between two products under the engine's
// weights. Exported so the symmetry property is directly testable.
func (e *Engine) Score(a, b models.Product) int {
	w := e.weights
	score := 0
	if equalFold(a.Category, b.Category) {
		score += w.Category
	}
	if equalFold(a.Brand, b.Brand) {
		score += w.Brand
	}
	if equalFold(a.Condition, b.Condition) {
		score += w.Condition
	}
	if abs(a.AgeMonths-b.AgeMonths) <= w.AgeWindowMonths {
		score += w.Age
	}
	if math.Abs(a.AskingPrice-b.AskingPrice) <= w.PriceWindow {
		score += w.Price
	}
	return score
}

// Recommend returns up to topN products most similar to the target, in
// descending similarity with ties kept in dataset order. The target itself
// is never included. Returns dataset.ErrNotFound for an unknown id.
func (e *Engine) Recommend(productID, topN int) (*models.Recommendation, error) {
	target, err := e.ds.Get(productID)
	if err != nil {
		return nil, err
	}
	if topN < 1 {
		topN = e.topN
	}

	entries := make([]models.RecommendationEntry, 0, e.ds.Len()-1)
	for _, p := range e.ds.ListAll() {
		if p.ID == target.ID {
			continue
		}
		entries = append(entries, models.RecommendationEntry{
			ID:         p.ID,
			Title:      p.Title,
			Similarity: e.Score(target, p),
		})
	}

	// Stable keeps dataset order for equal scores, so results reproduce.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Similarity > entries[j].Similarity
	})
	if len(entries) > topN {
		entries = entries[:topN]
	}

	return &models.Recommendation{
		ProductID:       target.ID,
		Title:           target.Title,
		Recommendations: entries,
	}, nil
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
