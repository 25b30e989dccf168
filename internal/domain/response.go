package domain

// Urgency levels for a chat response.
const (
	UrgencyNormal   = "normal"
	UrgencyCritical = "critical"
)

// TriageResult is the outcome of the emergency keyword scan. Produced
// fresh for every query.
type TriageResult struct {
	IsCritical      bool     `json:"is_critical"`
	MatchedKeywords []string `json:"matched_keywords"`
	NextSteps       []string `json:"next_steps"`
}

// SourceItem cites one knowledge source backing an answer.
type SourceItem struct {
	Title  string  `json:"title"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// ChatResponse is the structured answer returned for a health question.
type ChatResponse struct {
	Answer     string       `json:"answer"`
	Language   string       `json:"language"`
	Urgency    string       `json:"urgency"` // "normal" or "critical"
	Disclaimer string       `json:"disclaimer"`
	NextSteps  []string     `json:"next_steps"` // deduplicated, at most 3
	Confidence float64      `json:"confidence"` // 0.0-1.0
	Sources    []SourceItem `json:"sources"`
}

// DiseaseItem is the public projection of a ranked disease match.
type DiseaseItem struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	Score            float64  `json:"score"`
	Overview         string   `json:"overview"`
	TreatmentSummary string   `json:"treatment_summary"`
	MedicineGuidance []string `json:"medicine_guidance"`
	HomeCare         []string `json:"home_care"`
	RedFlags         []string `json:"red_flags"`
	Source           string   `json:"source"`
}
