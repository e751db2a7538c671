package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"marketplace-ai-service/dataset"
	"marketplace-ai-service/decisionlog"
	"marketplace-ai-service/metrics"
	"marketplace-ai-service/models"
	"marketplace-ai-service/moderation"
	"marketplace-ai-service/pricing"
	"marketplace-ai-service/recommend"
)

// Handlers wires the HTTP endpoints to the decision components. All state it
// holds is read-only or internally synchronized, so one instance serves
// concurrent requests.
type Handlers struct {
	ds          *dataset.Dataset
	suggestor   *pricing.Suggestor
	moderator   *moderation.Classifier
	recommender *recommend.Engine
	decisions   *decisionlog.Logger
}

func New(
	ds *dataset.Dataset,
	suggestor *pricing.Suggestor,
	moderator *moderation.Classifier,
	recommender *recommend.Engine,
	decisions *decisionlog.Logger,
) *Handlers {
	return &Handlers{
		ds:          ds,
		suggestor:   suggestor,
		moderator:   moderator,
		recommender: recommender,
		decisions:   decisions,
	}
}

// NegotiateArgs is the manual product payload for POST /negotiate.
// Condition, brand, category and location are optional; the pricing rules
// substitute documented defaults for anything missing.
type NegotiateArgs struct {
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand"`
	Condition   string  `json:"condition"`
	AgeMonths   int     `json:"age_months"`
	AskingPrice float64 `json:"asking_price"`
	Location    string  `json:"location"`
}

// ModerateArgs is the payload for POST /moderate.
type ModerateArgs struct {
	Message string `json:"message"`
}

// HealthCheck handles health check requests.
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "marketplace-ai-service",
	})
}

// Negotiate suggests a price for a manually supplied product payload.
func (h *Handlers) Negotiate(c *gin.Context) {
	var args NegotiateArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		log.Warnf("/negotiate: bad JSON: %v", err)
		metrics.RequestsTotal.WithLabelValues("negotiate", "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read JSON input."})
		return
	}
	if args.Title == "" {
		metrics.RequestsTotal.WithLabelValues("negotiate", "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	if args.AskingPrice <= 0 {
		metrics.RequestsTotal.WithLabelValues("negotiate", "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "asking_price must be positive"})
		return
	}
	if args.AgeMonths < 0 {
		metrics.RequestsTotal.WithLabelValues("negotiate", "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "age_months must not be negative"})
		return
	}

	product := models.Product{
		Title:       args.Title,
		Category:    args.Category,
		Brand:       args.Brand,
		Condition:   args.Condition,
		AgeMonths:   args.AgeMonths,
		AskingPrice: args.AskingPrice,
		Location:    args.Location,
	}

	suggestion := h.suggestor.Suggest(c.Request.Context(), product)
	h.decisions.LogNegotiation(0, product, suggestion)
	metrics.RequestsTotal.WithLabelValues("negotiate", "ok").Inc()
	c.JSON(http.StatusOK, suggestion)
}

// NegotiateByID suggests a price for a dataset product.
func (h *Handlers) NegotiateByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		metrics.RequestsTotal.WithLabelValues("negotiate_by_id", "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	product, err := h.ds.Get(id)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues("negotiate_by_id", "not_found").Inc()
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	suggestion := h.suggestor.Suggest(c.Request.Context(), product)
	h.decisions.LogNegotiation(product.ID, product, suggestion)
	metrics.RequestsTotal.WithLabelValues("negotiate_by_id", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{
		"product":    product,
		"suggestion": suggestion,
	})
}

// Moderate classifies a chat message.
func (h *Handlers) Moderate(c *gin.Context) {
	var args ModerateArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		log.Warnf("/moderate: bad JSON: %v", err)
		metrics.RequestsTotal.WithLabelValues("moderate", "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read JSON input."})
		return
	}
	if args.Message == "" {
		metrics.RequestsTotal.WithLabelValues("moderate", "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	result := h.moderator.Moderate(args.Message)
	h.decisions.LogModeration(args.Message, result)
	metrics.ModerationTotal.WithLabelValues(string(result.Status)).Inc()
	metrics.RequestsTotal.WithLabelValues("moderate", "ok").Inc()
	c.JSON(http.StatusOK, result)
}

// Recommend returns the products most similar to a dataset product.
func (h *Handlers) Recommend(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		metrics.RequestsTotal.WithLabelValues("recommend", "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	topN := 0
	if raw := c.Query("top_n"); raw != "" {
		topN, err = strconv.Atoi(raw)
		if err != nil || topN < 1 {
			metrics.RequestsTotal.WithLabelValues("recommend", "bad_request").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "top_n must be a positive integer"})
			return
		}
	}

	result, err := h.recommender.Recommend(id, topN)
	if err != nil {
		if errors.Is(err, dataset.ErrNotFound) {
			metrics.RequestsTotal.WithLabelValues("recommend", "not_found").Inc()
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Errorf("/recommend: %v", err)
		metrics.RequestsTotal.WithLabelValues("recommend", "error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "recommendation failed"})
		return
	}

	metrics.RequestsTotal.WithLabelValues("recommend", "ok").Inc()
	c.JSON(http.StatusOK, result)
}

// SampleProduct returns the first product record. Debug endpoint.
func (h *Handlers) SampleProduct(c *gin.Context) {
	metrics.RequestsTotal.WithLabelValues("sample_product", "ok").Inc()
	c.JSON(http.StatusOK, h.ds.First())
}
