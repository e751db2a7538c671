package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the marketplace AI service.
type Config struct {
	// Server configuration
	Port string

	// Dataset / logging paths
	DataPath string
	LogDir   string

	// LLM provider configuration
	LLMProvider   string // "gemini", "openai" or "stub"
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	LLMTimeout    time.Duration

	// Pricing configuration
	FraudTolerance      float64
	SanityMultiple      float64
	BandSpread          float64
	MonthlyDepreciation float64
	DepreciationFloor   float64

	// Moderation configuration
	AbusiveWords []string
	SpamPhrases  []string

	// Recommendation configuration
	RecommendTopN   int
	WeightCategory  int
	WeightBrand     int
	WeightCondition int
	WeightAge       int
	WeightPrice     int
	AgeWindowMonths int
	PriceWindow     float64
}

// Load reads the optional .env file and returns a Config populated from
// environment variables with code defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Infof("No .env file found, using system environment")
	}

	return &Config{
		Port: getEnv("PORT", "8080"),

		DataPath: getEnv("DATA_PATH", "data/products.csv"),
		LogDir:   getEnv("LOG_DIR", "logs"),

		LLMProvider:   getEnv("LLM_PROVIDER", "gemini"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		LLMTimeout:    getDurationEnv("LLM_TIMEOUT", 10*time.Second),

		FraudTolerance:      getFloatEnv("FRAUD_TOLERANCE", 0.1),
		SanityMultiple:      getFloatEnv("SANITY_MULTIPLE", 4.0),
		BandSpread:          getFloatEnv("BAND_SPREAD", 0.05),
		MonthlyDepreciation: getFloatEnv("MONTHLY_DEPRECIATION", 0.005),
		DepreciationFloor:   getFloatEnv("DEPRECIATION_FLOOR", 0.5),

		AbusiveWords: getStringSliceEnv("ABUSIVE_WORDS",
			"idiot,stupid,moron,fool,scammer,cheat,fraudster"),
		SpamPhrases: getStringSliceEnv("SPAM_PHRASES",
			"buy now,click here,free,offer,limited,visit link"),

		RecommendTopN:   getIntEnv("RECOMMEND_TOP_N", 3),
		WeightCategory:  getIntEnv("WEIGHT_CATEGORY", 2),
		WeightBrand:     getIntEnv("WEIGHT_BRAND", 2),
		WeightCondition: getIntEnv("WEIGHT_CONDITION", 1),
		WeightAge:       getIntEnv("WEIGHT_AGE", 1),
		WeightPrice:     getIntEnv("WEIGHT_PRICE", 1),
		AgeWindowMonths: getIntEnv("AGE_WINDOW_MONTHS", 12),
		PriceWindow:     getFloatEnv("PRICE_WINDOW", 5000),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getFloatEnv gets a float environment variable or returns a default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getStringSliceEnv gets a comma-separated environment variable as a slice
func getStringSliceEnv(key, defaultValue string) []string {
	value := getEnv(key, defaultValue)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
