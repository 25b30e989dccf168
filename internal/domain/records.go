package domain

// DiseaseRecord represents one entry in the disease knowledge base.
// Records are loaded once at startup and never mutated afterwards.
type DiseaseRecord struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Aliases          []string `json:"aliases,omitempty"`
	Category         string   `json:"category"`
	Overview         string   `json:"overview"`
	TreatmentSummary string   `json:"treatment_summary"`
	MedicineGuidance []string `json:"medicine_guidance,omitempty"`
	HomeCare         []string `json:"home_care,omitempty"`
	RedFlags         []string `json:"red_flags,omitempty"`
	Source           string   `json:"source,omitempty"`
}

// Record ID prefixes. Curated entries are hand-authored and high-trust;
// ICD entries are bulk-imported classification codes.
const (
	CuratedIDPrefix = "dis-"
	ICDIDPrefix     = "icd-"
)

// IsCurated reports whether the record is a hand-authored entry.
func (r *DiseaseRecord) IsCurated() bool {
	return hasPrefix(r.ID, CuratedIDPrefix)
}

// IsImported reports whether the record came from a bulk ICD import.
func (r *DiseaseRecord) IsImported() bool {
	return hasPrefix(r.ID, ICDIDPrefix)
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// KnowledgeDocument represents a free-text knowledge entry used by the
// generic retriever. Immutable after load.
type KnowledgeDocument struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Language string `json:"language"`
	Content  string `json:"content"`
	Source   string `json:"source"`
}

// Scheme represents a government health scheme with per-language summaries.
type Scheme struct {
	Name      string            `json:"name"`
	Keywords  []string          `json:"keywords"`
	Summaries map[string]string `json:"summaries"`
	NextSteps []string          `json:"next_steps"`
	Source    string            `json:"source"`
}

// Summary returns the scheme summary for the language, falling back to English.
func (s *Scheme) Summary(language string) string {
	if text, ok := s.Summaries[language]; ok && text != "" {
		return text
	}
	return s.Summaries["en"]
}
