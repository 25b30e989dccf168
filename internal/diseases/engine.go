// Package diseases implements the lexical ranking engine over the
// disease knowledge base. Scoring combines weighted token overlap with
// trust-tier adjustments; curated entries outrank bulk-imported ICD
// entries whenever they are competitive.
package diseases

import (
	"math"
	"sort"
	"strings"

	"github.com/gramhealth/assistant/internal/domain"
	"github.com/gramhealth/assistant/internal/logging"
	"github.com/gramhealth/assistant/internal/textutil"
)

// Scoring weights and adjustments. Empirically tuned; change with care.
const (
	coverageWeight = 0.7
	densityWeight  = 0.3

	expansionTokenWeight = 0.35

	exactMatchBonus       = 0.26
	multiOverlapBonus     = 0.06
	curatedBonus          = 0.10
	curatedTreatmentBonus = 0.06
	lowSignalPenalty      = 0.15
	contextualPenalty     = 0.08
	contextualLoosePlty   = 0.18
	oncologyAlignBonus    = 0.12
	oncologyMissPenalty   = 0.15

	maxScore = 0.99
)

// Acceptance gate thresholds.
const (
	minScoreImported = 0.52
	minScoreCurated  = 0.32

	gateExactRelief            = 0.08
	gateOverlapRelief          = 0.03
	gateCuratedTreatmentRelief = 0.02
	gateOncologyRelief         = 0.08
	gateContextualRaise        = 0.06
	gateContextualLooseRaise   = 0.12

	// Curated records win the candidate pool outright when their best
	// score clears this bar.
	curatedPoolThreshold = 0.24
)

// Quality-predicate thresholds (second gate, applied by the cascade).
const (
	qualityCuratedMin   = 0.26
	qualityLowSignalMin = 0.45
	qualityDefaultMin   = 0.62
)

const maxResults = 5

// Match pairs a record with its relevance score.
type Match struct {
	Record *domain.DiseaseRecord
	Score  float64
}

// Engine ranks disease records against free-text queries. Per-record
// token sets and low-signal flags are computed once at construction; the
// engine is read-only afterwards and safe for concurrent use.
type Engine struct {
	records      []domain.DiseaseRecord
	recordTokens []textutil.Set
	lowSignalIDs map[string]struct{}
	logger       logging.Logger
}

// NewEngine precomputes token sets and low-signal flags for the records.
func NewEngine(records []domain.DiseaseRecord, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}

	engine := &Engine{
		records:      records,
		recordTokens: make([]textutil.Set, len(records)),
		lowSignalIDs: make(map[string]struct{}),
		logger:       logger,
	}

	for i := range records {
		record := &records[i]
		tokenSource := record.Name + " " + strings.Join(record.Aliases, " ") + " " + record.Category
		tokens := textutil.FilterTokens(textutil.Tokenize(tokenSource), textutil.DiseaseStopwords)
		engine.recordTokens[i] = textutil.NewSet(tokens)

		if isLowSignalRecord(record) {
			engine.lowSignalIDs[record.ID] = struct{}{}
		}
	}

	logger.Info("disease engine initialized",
		logging.Int("records", len(records)),
		logging.Int("low_signal", len(engine.lowSignalIDs)))

	return engine
}

// Records returns the loaded knowledge base.
func (e *Engine) Records() []domain.DiseaseRecord {
	return e.records
}

// isLowSignalRecord flags imported entries whose guidance text is a
// generic importer placeholder.
func isLowSignalRecord(record *domain.DiseaseRecord) bool {
	if !record.IsImported() {
		return false
	}
	treatment := strings.ToLower(record.TreatmentSummary)
	for _, marker := range lowSignalMarkers {
		if strings.Contains(treatment, marker) {
			return true
		}
	}
	return false
}

// normalizedIDCode converts an ICD-style id into the dotted
// classification code users type ("icd-e11-9" -> "e11.9").
func normalizedIDCode(recordID string) string {
	code := strings.TrimPrefix(strings.ToLower(recordID), domain.ICDIDPrefix)
	return strings.ReplaceAll(code, "-", ".")
}

// isExactPhraseMatch reports whether the lowered query literally contains
// the record's name, an alias, its id, or its classification code.
func isExactPhraseMatch(loweredQuery string, record *domain.DiseaseRecord) bool {
	if strings.Contains(loweredQuery, strings.ToLower(record.Name)) {
		return true
	}
	for _, alias := range record.Aliases {
		if strings.Contains(loweredQuery, strings.ToLower(alias)) {
			return true
		}
	}
	if strings.Contains(loweredQuery, normalizedIDCode(record.ID)) {
		return true
	}
	return strings.Contains(loweredQuery, strings.ToLower(record.ID))
}

func isNonspecificRecord(record *domain.DiseaseRecord) bool {
	return record.IsImported() && nonspecificLabels.Has(strings.ToLower(record.Name))
}

func isContextualRecord(record *domain.DiseaseRecord) bool {
	if !record.IsImported() {
		return false
	}
	lowered := strings.ToLower(record.Name)
	for _, marker := range contextualNameMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// MentionsRecord reports whether the query names the record exactly.
func (e *Engine) MentionsRecord(query string, record *domain.DiseaseRecord) bool {
	return isExactPhraseMatch(strings.ToLower(query), record)
}

// IsContextual reports whether the record is an administrative
// history-of/follow-up/screening entry.
func (e *Engine) IsContextual(record *domain.DiseaseRecord) bool {
	return isContextualRecord(record)
}

// HasLookupIntent reports whether the query carries general medical
// lookup phrasing ("disease", "diagnosis", "treatment", "icd", ...).
func (e *Engine) HasLookupIntent(query string) bool {
	for _, tok := range textutil.Tokenize(query) {
		if lookupIntentWords.Has(tok) {
			return true
		}
	}
	return false
}

// IsHighQualityMatch is the secondary quality predicate applied before a
// ranked candidate may become the answer. Nonspecific symptom labels need
// explicit diagnostic phrasing; curated records get a lower bar; low
// signal records need an exact mention plus a solid score.
func (e *Engine) IsHighQualityMatch(record *domain.DiseaseRecord, score float64, query string) bool {
	loweredQuery := strings.ToLower(query)
	exact := isExactPhraseMatch(loweredQuery, record)

	if isNonspecificRecord(record) {
		diagnosticIntent := false
		for _, term := range diagnosticIntentTerms {
			if strings.Contains(loweredQuery, term) {
				diagnosticIntent = true
				break
			}
		}
		if !diagnosticIntent {
			return false
		}
	}

	if record.IsCurated() {
		return score >= qualityCuratedMin || exact
	}
	if _, lowSignal := e.lowSignalIDs[record.ID]; lowSignal {
		return exact && score >= qualityLowSignalMin
	}
	return score >= qualityDefaultMin || exact
}

type scoredRecord struct {
	record       *domain.DiseaseRecord
	score        float64
	exactMatch   bool
	overlap      int
	curated      bool
	oncologyHit  bool
	contextual   bool
}

// Search ranks the knowledge base against the query and returns the
// candidates that pass the per-candidate score gate, best first, capped
// at min(limit, 5).
func (e *Engine) Search(query string, limit int) []Match {
	loweredQuery := strings.ToLower(query)
	rawQueryTokens := textutil.NewSet(textutil.Tokenize(query))
	baseQueryTokens := textutil.NewSet(textutil.FilterTokens(tokensOf(rawQueryTokens), textutil.DiseaseStopwords))
	if len(baseQueryTokens) == 0 {
		return nil
	}
	queryTokens := expandQueryTokens(baseQueryTokens)

	treatmentIntent := hasAnyToken(rawQueryTokens, treatmentIntentWords)
	oncologyIntent := hasAnyToken(baseQueryTokens, oncologyTerms)

	var scored []scoredRecord
	for i := range e.records {
		record := &e.records[i]
		recordTokens := e.recordTokens[i]

		primaryOverlap := baseQueryTokens.Overlap(recordTokens)
		expansionOverlap := 0
		for tok := range queryTokens {
			if !baseQueryTokens.Has(tok) && recordTokens.Has(tok) {
				expansionOverlap++
			}
		}
		overlap := primaryOverlap + expansionOverlap
		if overlap == 0 {
			continue
		}

		exactMatch := isExactPhraseMatch(loweredQuery, record)
		curated := record.IsCurated()
		contextual := isContextualRecord(record)

		// Specificity guards: multi-token queries must hit primary
		// vocabulary, not just synonym expansions.
		if !exactMatch && primaryOverlap == 0 && len(baseQueryTokens) >= 2 && !oncologyIntent {
			continue
		}
		if !exactMatch && primaryOverlap <= 1 && len(baseQueryTokens) >= 4 {
			continue
		}

		weightedOverlap := float64(primaryOverlap) + expansionTokenWeight*float64(expansionOverlap)
		coverage := weightedOverlap / float64(maxInt(len(baseQueryTokens), 1))
		matchDensity := weightedOverlap / float64(maxInt(len(recordTokens), 1))
		score := coverageWeight*coverage + densityWeight*matchDensity

		if exactMatch {
			score += exactMatchBonus
		}
		if primaryOverlap >= 2 {
			score += multiOverlapBonus
		}
		if curated {
			score += curatedBonus
		}
		if treatmentIntent && curated {
			score += curatedTreatmentBonus
		}
		if _, lowSignal := e.lowSignalIDs[record.ID]; lowSignal {
			score -= lowSignalPenalty
		}
		if contextual {
			score -= contextualPenalty
			if !exactMatch {
				score -= contextualLoosePlty
			}
		}
		oncologyHit := hasAnyToken(recordTokens, oncologyTerms)
		if oncologyIntent {
			if oncologyHit {
				score += oncologyAlignBonus
			} else {
				score -= oncologyMissPenalty
			}
		}

		if score <= 0 {
			continue
		}

		scored = append(scored, scoredRecord{
			record:      record,
			score:       round4(math.Min(score, maxScore)),
			exactMatch:  exactMatch,
			overlap:     overlap,
			curated:     curated,
			oncologyHit: oncologyHit,
			contextual:  contextual,
		})
	}

	if len(scored) == 0 {
		return nil
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	// Trust curated entries over bulk imports whenever they are
	// competitive, except for oncology queries where ICD coverage is
	// broader.
	candidatePool := scored
	if !oncologyIntent {
		var curatedPool []scoredRecord
		for _, item := range scored {
			if item.curated {
				curatedPool = append(curatedPool, item)
			}
		}
		if len(curatedPool) > 0 && curatedPool[0].score >= curatedPoolThreshold {
			candidatePool = curatedPool
		}
	}

	resultCap := limit
	if resultCap > maxResults {
		resultCap = maxResults
	}
	if resultCap < 1 {
		resultCap = 1
	}

	var results []Match
	for _, item := range candidatePool {
		minScore := minScoreImported
		if item.curated {
			minScore = minScoreCurated
		}
		if item.exactMatch {
			minScore -= gateExactRelief
		}
		if item.overlap >= 2 && !item.curated {
			minScore -= gateOverlapRelief
		}
		if treatmentIntent && item.curated {
			minScore -= gateCuratedTreatmentRelief
		}
		if oncologyIntent && item.oncologyHit {
			minScore -= gateOncologyRelief
		}
		if item.contextual {
			minScore += gateContextualRaise
			if !item.exactMatch {
				minScore += gateContextualLooseRaise
			}
		}

		if item.score < minScore {
			continue
		}

		results = append(results, Match{Record: item.record, Score: item.score})
		if len(results) >= resultCap {
			break
		}
	}

	return results
}

// ToPublicItem projects a match into the public API shape with the score
// rounded to two decimals.
func ToPublicItem(record *domain.DiseaseRecord, score float64) domain.DiseaseItem {
	return domain.DiseaseItem{
		ID:               record.ID,
		Name:             record.Name,
		Category:         record.Category,
		Score:            round2(score),
		Overview:         record.Overview,
		TreatmentSummary: record.TreatmentSummary,
		MedicineGuidance: record.MedicineGuidance,
		HomeCare:         record.HomeCare,
		RedFlags:         record.RedFlags,
		Source:           record.Source,
	}
}

func expandQueryTokens(tokens textutil.Set) textutil.Set {
	expanded := make(textutil.Set, len(tokens))
	for tok := range tokens {
		expanded[tok] = struct{}{}
		for _, syn := range queryTokenExpansions[tok] {
			expanded[syn] = struct{}{}
		}
	}
	return expanded
}

func hasAnyToken(tokens textutil.Set, vocabulary textutil.Set) bool {
	for tok := range tokens {
		if vocabulary.Has(tok) {
			return true
		}
	}
	return false
}

func tokensOf(set textutil.Set) []string {
	tokens := make([]string, 0, len(set))
	for tok := range set {
		tokens = append(tokens, tok)
	}
	return tokens
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
