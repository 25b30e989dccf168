package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gramhealth/assistant/internal/assistant"
	"github.com/gramhealth/assistant/internal/diseases"
	"github.com/gramhealth/assistant/internal/domain"
	"github.com/gramhealth/assistant/internal/hospitals"
	"github.com/gramhealth/assistant/internal/localization"
	"github.com/gramhealth/assistant/internal/logging"
	"github.com/gramhealth/assistant/internal/schemes"
	"github.com/gramhealth/assistant/internal/telemetry"
)

// Query validation bounds.
const (
	diseaseQueryMinLen  = 2
	diseaseQueryMaxLen  = 120
	diseaseDefaultLimit = 3
	diseaseMaxLimit     = 5
	hospitalMaxLimit    = 10
)

// Handler handles HTTP requests for the assistant API
type Handler struct {
	assistant   *assistant.Assistant
	schemes     *schemes.Service
	diseases    *diseases.Engine
	hospitals   *hospitals.Locator // optional
	telemetry   *telemetry.Provider
	logger      logging.Logger
	serviceName string
	version     string
}

// NewHandler creates a new API handler
func NewHandler(
	healthAssistant *assistant.Assistant,
	schemeService *schemes.Service,
	diseaseEngine *diseases.Engine,
	hospitalLocator *hospitals.Locator,
	provider *telemetry.Provider,
	logger logging.Logger,
	serviceName, version string,
) *Handler {
	return &Handler{
		assistant:   healthAssistant,
		schemes:     schemeService,
		diseases:    diseaseEngine,
		hospitals:   hospitalLocator,
		telemetry:   provider,
		logger:      logger,
		serviceName: serviceName,
		version:     version,
	}
}

// ChatRequest represents a single health question
type ChatRequest struct {
	Query    string `json:"query" binding:"required,min=2,max=800"`
	Language string `json:"language" binding:"omitempty,min=2,max=5"`
	Mode     string `json:"mode" binding:"omitempty,oneof=text voice"`
	Location string `json:"location" binding:"omitempty,max=120"`
	AgeYears *int   `json:"age_years" binding:"omitempty,min=0,max=120"`
}

// Chat handles POST /chat
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request", logging.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	var span trace.Span
	if h.telemetry != nil {
		ctx, span = h.telemetry.StartSpan(ctx, "assistant.answer")
	}

	start := time.Now()
	response, stage := h.assistant.Answer(ctx, assistant.Request{
		Query:    req.Query,
		Language: req.Language,
		Location: req.Location,
		AgeYears: req.AgeYears,
	})

	critical := response.Urgency == domain.UrgencyCritical
	if span != nil {
		span.SetAttributes(
			attribute.String("assistant.stage", string(stage)),
			attribute.Bool("assistant.critical", critical),
		)
		span.End()
	}
	if h.telemetry != nil {
		h.telemetry.RecordAnswer(ctx, string(stage), response.Language, critical, time.Since(start))
	}
	h.logger.Info("answer composed",
		logging.String("stage", string(stage)),
		logging.String("language", response.Language),
		logging.Bool("critical", critical),
		logging.Float64("confidence", response.Confidence),
		logging.Duration("duration", time.Since(start)),
	)

	c.JSON(http.StatusOK, response)
}

// SchemeLookupResponse represents a scheme lookup result
type SchemeLookupResponse struct {
	Query     string              `json:"query"`
	Language  string              `json:"language"`
	Answer    string              `json:"answer"`
	NextSteps []string            `json:"next_steps"`
	Sources   []domain.SourceItem `json:"sources"`
}

// SchemeLookup handles GET /schemes
func (h *Handler) SchemeLookup(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	language := localization.NormalizeLanguage(c.DefaultQuery("language", localization.DefaultLanguage))

	matches := h.schemes.Search(query)
	answer, nextSteps, sources := h.schemes.FormatResponse(matches, language)

	c.JSON(http.StatusOK, SchemeLookupResponse{
		Query:     query,
		Language:  language,
		Answer:    answer,
		NextSteps: nextSteps,
		Sources:   sources,
	})
}

// DiseaseLookupResponse represents a ranked disease search result
type DiseaseLookupResponse struct {
	Query   string               `json:"query"`
	Matches []domain.DiseaseItem `json:"matches"`
}

// DiseaseSearch handles GET /diseases/search
func (h *Handler) DiseaseSearch(c *gin.Context) {
	query := c.Query("q")
	if len(query) < diseaseQueryMinLen || len(query) > diseaseQueryMaxLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q must be between 2 and 120 characters"})
		return
	}

	limit, ok := boundedIntQuery(c, "limit", diseaseDefaultLimit, 1, diseaseMaxLimit)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 5"})
		return
	}

	matches := h.diseases.Search(query, limit)
	if h.telemetry != nil {
		h.telemetry.RecordDiseaseCandidates(c.Request.Context(), len(matches))
	}

	items := make([]domain.DiseaseItem, 0, len(matches))
	for _, match := range matches {
		items = append(items, diseases.ToPublicItem(match.Record, match.Score))
	}

	c.JSON(http.StatusOK, DiseaseLookupResponse{Query: query, Matches: items})
}

// HospitalsNearest handles GET /hospitals/nearest
func (h *Handler) HospitalsNearest(c *gin.Context) {
	if h.hospitals == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "hospital lookup is disabled"})
		return
	}

	pincode := c.Query("pincode")
	limit, ok := boundedIntQuery(c, "limit", 5, 1, hospitalMaxLimit)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 10"})
		return
	}

	lookup, err := h.hospitals.LookupNearest(c.Request.Context(), pincode, limit)
	if err != nil {
		if errors.Is(err, hospitals.ErrInvalidPincode) {
			if h.telemetry != nil {
				h.telemetry.RecordHospitalLookup(c.Request.Context(), "invalid")
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Warn("hospital lookup failed",
			logging.String("pincode", pincode), logging.Error(err))
		if h.telemetry != nil {
			h.telemetry.RecordHospitalLookup(c.Request.Context(), "failed")
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if h.telemetry != nil {
		outcome := "upstream"
		switch {
		case lookup.Source == hospitals.SeedSource:
			outcome = "seed"
		case lookup.Cached:
			outcome = "cached"
		}
		h.telemetry.RecordHospitalLookup(c.Request.Context(), outcome)
	}
	c.JSON(http.StatusOK, lookup)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": h.serviceName,
		"version": h.version,
	})
}

// ReadyCheck handles GET /ready. The service is ready once the datasets
// are loaded, which construction guarantees.
func (h *Handler) ReadyCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// boundedIntQuery parses an integer query parameter with a default and
// inclusive bounds. Returns false when the value is present but invalid.
func boundedIntQuery(c *gin.Context, name string, def, lo, hi int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	if value < lo || value > hi {
		return 0, false
	}
	return value, true
}
