package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketplace-ai-service/config"
	"marketplace-ai-service/dataset"
	"marketplace-ai-service/decisionlog"
	"marketplace-ai-service/gemini"
	"marketplace-ai-service/handlers"
	"marketplace-ai-service/llm"
	"marketplace-ai-service/metrics"
	"marketplace-ai-service/moderation"
	"marketplace-ai-service/openai"
	"marketplace-ai-service/pricing"
	"marketplace-ai-service/recommend"
	"marketplace-ai-service/stubllm"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Load the product dataset
	ds, err := dataset.Load(cfg.DataPath)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	log.Printf("Loaded %d products from %s", ds.Len(), cfg.DataPath)

	// Open the decision logs
	decisions, err := decisionlog.New(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to open decision logs: %v", err)
	}
	defer decisions.Close()

	// Select the LLM provider
	llmClient := newLLMClient(cfg)
	log.Printf("Using LLM provider: %s", llmClient.SourceName())

	// Build the decision components
	ruleCfg := pricing.DefaultRuleConfig()
	ruleCfg.MonthlyDepreciation = cfg.MonthlyDepreciation
	ruleCfg.DepreciationFloor = cfg.DepreciationFloor
	ruleCfg.BandSpread = cfg.BandSpread
	rules := pricing.NewRuleEstimator(ruleCfg)
	advisor := pricing.NewAdvisor(llmClient, rules, cfg.LLMTimeout, cfg.SanityMultiple)
	suggestor := pricing.NewSuggestor(advisor, pricing.NewFraudEngine(cfg.FraudTolerance))

	moderator := moderation.NewClassifier(cfg.AbusiveWords, cfg.SpamPhrases)

	weights := recommend.Weights{
		Category:        cfg.WeightCategory,
		Brand:           cfg.WeightBrand,
		Condition:       cfg.WeightCondition,
		Age:             cfg.WeightAge,
		AgeWindowMonths: cfg.AgeWindowMonths,
		Price:           cfg.WeightPrice,
		PriceWindow:     cfg.PriceWindow,
	}
	recommender := recommend.NewEngine(ds, weights, cfg.RecommendTopN)

	h := handlers.New(ds, suggestor, moderator, recommender, decisions)

	// Setup HTTP server
	metrics.Register()
	router := gin.Default()

	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/negotiate", h.Negotiate)
	router.GET("/negotiate/:id", h.NegotiateByID)
	router.POST("/moderate", h.Moderate)
	router.GET("/recommend/:id", h.Recommend)
	router.GET("/sample-product", h.SampleProduct)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

func newLLMClient(cfg *config.Config) llm.Client {
	switch cfg.LLMProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Fatal("GEMINI_API_KEY environment variable is required for the gemini provider")
		}
		return gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	case "openai":
		if cfg.OpenAIAPIKey == "" && cfg.OpenAIBaseURL == "" {
			log.Fatal("OPENAI_API_KEY environment variable is required for the openai provider")
		}
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	case "stub":
		return stubllm.NewClient()
	default:
		log.Fatalf("Unknown LLM_PROVIDER %q (expected gemini, openai or stub)", cfg.LLMProvider)
		return nil
	}
}
