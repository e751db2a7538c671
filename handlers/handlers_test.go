package handlers

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace-ai-service/dataset"
	"marketplace-ai-service/decisionlog"
	"marketplace-ai-service/models"
	"marketplace-ai-service/moderation"
	"marketplace-ai-service/pricing"
	"marketplace-ai-service/recommend"
	"marketplace-ai-service/stubllm"
)

const fixtureCSV = `id,title,category,brand,condition,age_months,asking_price,location
1,iPhone 12,Mobile,Apple,Good,24,35000,Mumbai
2,MacBook Air M1,Laptop,Apple,Like New,18,62000,Bengaluru
3,Dell XPS 13,Laptop,Dell,Good,30,41000,Pune
4,OnePlus 9 Pro,Mobile,OnePlus,Good,20,24000,Hyderabad
5,Samsung Galaxy S21,Mobile,Samsung,Good,22,30000,Delhi
`

func newTestRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "products.csv")
	if err := os.WriteFile(csvPath, []byte(fixtureCSV), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	ds, err := dataset.Load(csvPath)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}

	logDir := filepath.Join(dir, "logs")
	decisions, err := decisionlog.New(logDir)
	if err != nil {
		t.Fatalf("open decision log: %v", err)
	}
	t.Cleanup(func() { decisions.Close() })

	advisor := pricing.NewAdvisor(
		stubllm.NewClient(),
		pricing.NewRuleEstimator(pricing.DefaultRuleConfig()),
		time.Second, 4.0)
	suggestor := pricing.NewSuggestor(advisor, pricing.NewFraudEngine(0.1))
	moderator := moderation.NewClassifier(
		[]string{"idiot", "stupid", "scammer"},
		[]string{"buy now", "click here", "free offer"})
	recommender := recommend.NewEngine(ds, recommend.DefaultWeights(), 3)

	h := New(ds, suggestor, moderator, recommender, decisions)

	router := gin.New()
	router.GET("/health", h.HealthCheck)
	router.POST("/negotiate", h.Negotiate)
	router.GET("/negotiate/:id", h.NegotiateByID)
	router.POST("/moderate", h.Moderate)
	router.GET("/recommend/:id", h.Recommend)
	router.GET("/sample-product", h.SampleProduct)
	return router, logDir
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("status field = %q", resp["status"])
	}
}

func TestNegotiate(t *testing.T) {
	router, logDir := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/negotiate", NegotiateArgs{
		Title:       "iPhone 12",
		Category:    "Mobile",
		Brand:       "Apple",
		Condition:   "Good",
		AgeMonths:   24,
		AskingPrice: 35000,
		Location:    "Mumbai",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var got models.PriceSuggestion
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.MinPrice <= 0 || got.MaxPrice < got.MinPrice {
		t.Errorf("invalid band: %+v", got.PriceBand)
	}
	if got.FraudFlag != models.FraudNormal &&
		got.FraudFlag != models.FraudOverpriced &&
		got.FraudFlag != models.FraudUnderpriced {
		t.Errorf("unexpected fraud flag %q", got.FraudFlag)
	}

	// The request must leave a decision log row behind.
	rows := readLogCSV(t, filepath.Join(logDir, "negotiation_log.csv"))
	if len(rows) != 2 {
		t.Errorf("negotiation log rows = %d, want header + 1", len(rows))
	}
}

func TestNegotiateValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	testCases := []struct {
		name string
		args NegotiateArgs
	}{
		{"missing title", NegotiateArgs{AskingPrice: 1000}},
		{"zero price", NegotiateArgs{Title: "x", AskingPrice: 0}},
		{"negative price", NegotiateArgs{Title: "x", AskingPrice: -5}},
		{"negative age", NegotiateArgs{Title: "x", AskingPrice: 1000, AgeMonths: -1}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/negotiate", tc.args)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestNegotiateBadJSON(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/negotiate", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestNegotiateByID(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/negotiate/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Product    models.Product         `json:"product"`
		Suggestion models.PriceSuggestion `json:"suggestion"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Product.ID != 1 {
		t.Errorf("product id = %d, want 1", resp.Product.ID)
	}
	if resp.Suggestion.MinPrice <= 0 {
		t.Errorf("invalid suggestion: %+v", resp.Suggestion)
	}
}

func TestNegotiateByIDNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	if w := doJSON(t, router, http.MethodGet, "/negotiate/999", nil); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/negotiate/abc", nil); w.Code != http.StatusBadRequest {
		t.Errorf("status for non-numeric id = %d, want 400", w.Code)
	}
}

func TestModerate(t *testing.T) {
	router, logDir := newTestRouter(t)

	testCases := []struct {
		message string
		want    models.ModerationStatus
	}{
		{"hi, is this still available?", models.StatusSafe},
		{"Call me at 987-654-3210", models.StatusPhoneNumber},
		{"you are an idiot", models.StatusAbusive},
		{"Buy now, click here!", models.StatusSpam},
	}
	for _, tc := range testCases {
		w := doJSON(t, router, http.MethodPost, "/moderate", ModerateArgs{Message: tc.message})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d for %q", w.Code, tc.message)
		}
		var got models.ModerationResult
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Status != tc.want {
			t.Errorf("Moderate(%q) = %q, want %q", tc.message, got.Status, tc.want)
		}
		if got.Reason == "" {
			t.Errorf("Moderate(%q) returned empty reason", tc.message)
		}
	}

	rows := readLogCSV(t, filepath.Join(logDir, "moderation_log.csv"))
	if len(rows) != len(testCases)+1 {
		t.Errorf("moderation log rows = %d, want header + %d", len(rows), len(testCases))
	}
}

func TestModerateEmptyMessage(t *testing.T) {
	router, _ := newTestRouter(t)

	if w := doJSON(t, router, http.MethodPost, "/moderate", ModerateArgs{}); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRecommend(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/recommend/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var got models.Recommendation
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ProductID != 1 {
		t.Errorf("product_id = %d, want 1", got.ProductID)
	}
	if len(got.Recommendations) == 0 || len(got.Recommendations) > 3 {
		t.Errorf("got %d recommendations, want 1..3", len(got.Recommendations))
	}
	for _, entry := range got.Recommendations {
		if entry.ID == 1 {
			t.Error("recommendations include the target product")
		}
	}
}

func TestRecommendTopN(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/recommend/1?top_n=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got models.Recommendation
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Recommendations) != 2 {
		t.Errorf("got %d recommendations, want 2", len(got.Recommendations))
	}

	for _, bad := range []string{"0", "-1", "abc"} {
		if w := doJSON(t, router, http.MethodGet, "/recommend/1?top_n="+bad, nil); w.Code != http.StatusBadRequest {
			t.Errorf("top_n=%s: status = %d, want 400", bad, w.Code)
		}
	}
}

func TestRecommendNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	if w := doJSON(t, router, http.MethodGet, "/recommend/999", nil); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSampleProduct(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/sample-product", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got models.Product
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != 1 {
		t.Errorf("sample id = %d, want 1", got.ID)
	}
}

func readLogCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return rows
}
