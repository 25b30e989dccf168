package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/gramhealth/assistant/internal/assistant"
	"github.com/gramhealth/assistant/internal/diseases"
	"github.com/gramhealth/assistant/internal/domain"
	"github.com/gramhealth/assistant/internal/logging"
	"github.com/gramhealth/assistant/internal/pregnancy"
	"github.com/gramhealth/assistant/internal/retriever"
	"github.com/gramhealth/assistant/internal/schemes"
	"github.com/gramhealth/assistant/internal/triage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter() *gin.Engine {
	diseaseRecords := []domain.DiseaseRecord{
		{
			ID:               "dis-dengue",
			Name:             "Dengue Fever",
			Aliases:          []string{"dengue"},
			Category:         "infectious",
			Overview:         "Mosquito-borne viral fever common in monsoon months.",
			TreatmentSummary: "Supportive care with fluids and fever control as advised.",
			Source:           "NVBDCP dengue guidelines",
		},
	}
	schemeCatalog := []domain.Scheme{
		{
			Name:     "Ayushman Bharat PM-JAY",
			Keywords: []string{"ayushman", "pmjay"},
			Summaries: map[string]string{
				"en": "Cashless hospital cover of Rs 5 lakh per family per year.",
			},
			NextSteps: []string{"Check eligibility on pmjay.gov.in."},
			Source:    "National Health Authority",
		},
	}
	knowledgeDocs := []domain.KnowledgeDocument{
		{
			ID:       "kn-fever-home-care",
			Title:    "Fever and Headache Home Care",
			Category: "infectious",
			Language: "en",
			Content:  "Rest, drink fluids, and take paracetamol as advised for fever.",
			Source:   "MoHFW home care guidance",
		},
	}

	schemeService := schemes.NewService(schemeCatalog)
	diseaseEngine := diseases.NewEngine(diseaseRecords, nil)
	healthAssistant := assistant.New(
		triage.NewScanner(),
		schemeService,
		diseaseEngine,
		pregnancy.NewService(),
		retriever.New(knowledgeDocs, nil),
		nil,
		nil,
	)

	handler := NewHandler(healthAssistant, schemeService, diseaseEngine, nil, nil, logging.NewNop(), "assistant-test", "test")
	router := gin.New()
	SetupRoutes(router, handler, nil)
	return router
}

func performRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter()

	w := performRequest(router, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse body: %v", err)
	}
	if body["status"] != "ok" || body["service"] != "assistant-test" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestReadyCheck(t *testing.T) {
	router := newTestRouter()

	w := performRequest(router, http.MethodGet, "/ready", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestChatCriticalQuery(t *testing.T) {
	router := newTestRouter()

	w := performRequest(router, http.MethodPost, "/chat",
		`{"query": "My father has severe chest pain and difficulty breathing", "language": "en"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp domain.ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse body: %v", err)
	}
	if resp.Urgency != domain.UrgencyCritical {
		t.Errorf("expected critical urgency, got %s", resp.Urgency)
	}
	if resp.Confidence != 0.99 {
		t.Errorf("expected confidence 0.99, got %v", resp.Confidence)
	}
	if len(resp.NextSteps) != 3 {
		t.Errorf("expected 3 next steps, got %d", len(resp.NextSteps))
	}
}

func TestChatValidation(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name string
		body string
	}{
		{"missing query", `{"language": "en"}`},
		{"query too short", `{"query": "x"}`},
		{"bad mode", `{"query": "fever since morning", "mode": "video"}`},
		{"bad language length", `{"query": "fever since morning", "language": "english"}`},
		{"negative age", `{"query": "fever since morning", "age_years": -1}`},
		{"not json", `fever`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/chat", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestSchemeLookup(t *testing.T) {
	router := newTestRouter()

	w := performRequest(router, http.MethodGet, "/schemes?q=ayushman+card+details", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp SchemeLookupResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse body: %v", err)
	}
	if !strings.Contains(resp.Answer, "Ayushman Bharat PM-JAY") {
		t.Errorf("expected scheme answer, got %q", resp.Answer)
	}
	if resp.Language != "en" {
		t.Errorf("expected language en, got %q", resp.Language)
	}
}

func TestSchemeLookupRequiresQuery(t *testing.T) {
	router := newTestRouter()

	if w := performRequest(router, http.MethodGet, "/schemes", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestDiseaseSearch(t *testing.T) {
	router := newTestRouter()

	w := performRequest(router, http.MethodGet, "/diseases/search?q=dengue", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp DiseaseLookupResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse body: %v", err)
	}
	if len(resp.Matches) != 1 || resp.Matches[0].ID != "dis-dengue" {
		t.Errorf("unexpected matches %v", resp.Matches)
	}
	if resp.Matches[0].Score <= 0 || resp.Matches[0].Score > 0.99 {
		t.Errorf("score out of range: %v", resp.Matches[0].Score)
	}
}

func TestDiseaseSearchValidation(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name string
		path string
	}{
		{"query too short", "/diseases/search?q=x"},
		{"missing query", "/diseases/search"},
		{"limit too high", "/diseases/search?q=dengue&limit=9"},
		{"limit not a number", "/diseases/search?q=dengue&limit=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := performRequest(router, http.MethodGet, tt.path, ""); w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestHospitalsNearestDisabled(t *testing.T) {
	router := newTestRouter()

	w := performRequest(router, http.MethodGet, "/hospitals/nearest?pincode=110001", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when the locator is disabled, got %d", w.Code)
	}
}
