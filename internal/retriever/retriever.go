// Package retriever ranks free-text knowledge documents against a query
// using token overlap with category-hint and title boosts.
package retriever

import (
	"math"
	"sort"

	"github.com/gramhealth/assistant/internal/domain"
	"github.com/gramhealth/assistant/internal/logging"
	"github.com/gramhealth/assistant/internal/textutil"
)

// Scoring weights. Empirically tuned; change with care.
const (
	coverageWeight    = 0.75
	densityWeight     = 0.17
	overlapBonusMax   = 0.08
	overlapBonusScale = 3.0

	titleBoostPerToken = 0.04
	titleBoostMax      = 0.12
	languageBoost      = 0.03
	categoryHintBoost  = 0.05

	maxScore      = 0.99
	minFinalScore = 0.10

	// Long queries with a single incidental shared token are noise.
	longQueryTokenCount = 4

	defaultTopK = 3
)

// categoryHints maps knowledge categories to the query vocabulary that
// hints at them.
var categoryHints = map[string]textutil.Set{
	"maternal":      textutil.NewSet([]string{"pregnant", "pregnancy", "fetal", "delivery", "antenatal", "anc", "newborn"}),
	"chronic":       textutil.NewSet([]string{"diabetes", "sugar", "hypertension", "bp", "pressure", "thyroid", "kidney"}),
	"infectious":    textutil.NewSet([]string{"fever", "infection", "flu", "cough", "malaria", "dengue", "tb", "diarrhea"}),
	"child-health":  textutil.NewSet([]string{"child", "baby", "newborn", "infant", "vaccination"}),
	"mental-health": textutil.NewSet([]string{"anxiety", "depression", "stress", "sad", "sleep"}),
	"nutrition":     textutil.NewSet([]string{"anemia", "weakness", "iron", "diet", "nutrition"}),
	"prevention":    textutil.NewSet([]string{"prevention", "hygiene", "water", "handwash", "sanitation"}),
}

// Result pairs a document with its adjusted score.
type Result struct {
	Document *domain.KnowledgeDocument
	Score    float64
}

// Retriever scores knowledge documents. Document and title token sets
// are precomputed at construction; the retriever is read-only afterwards.
type Retriever struct {
	documents   []domain.KnowledgeDocument
	docTokens   []textutil.Set
	titleTokens []textutil.Set
}

// New precomputes token sets for the documents.
func New(documents []domain.KnowledgeDocument, logger logging.Logger) *Retriever {
	if logger == nil {
		logger = logging.NewNop()
	}

	r := &Retriever{
		documents:   documents,
		docTokens:   make([]textutil.Set, len(documents)),
		titleTokens: make([]textutil.Set, len(documents)),
	}
	for i := range documents {
		doc := &documents[i]
		r.docTokens[i] = textutil.NewSet(textutil.FilterTokens(
			textutil.Tokenize(doc.Title+". "+doc.Content), textutil.RetrievalStopwords))
		r.titleTokens[i] = textutil.NewSet(textutil.FilterTokens(
			textutil.Tokenize(doc.Title), textutil.RetrievalStopwords))
	}

	logger.Info("knowledge retriever initialized", logging.Int("documents", len(documents)))
	return r
}

// Documents returns the loaded corpus.
func (r *Retriever) Documents() []domain.KnowledgeDocument {
	return r.documents
}

// baseScore computes the pre-adjustment overlap score for one document.
func baseScore(queryTokens, docTokens textutil.Set) float64 {
	if len(queryTokens) == 0 || len(docTokens) == 0 {
		return 0
	}

	overlap := queryTokens.Overlap(docTokens)
	if overlap == 0 {
		return 0
	}
	if len(queryTokens) >= longQueryTokenCount && overlap == 1 {
		return 0
	}

	coverage := float64(overlap) / float64(len(queryTokens))
	density := float64(overlap) / float64(len(docTokens))
	overlapBonus := math.Min(float64(overlap)/overlapBonusScale, 1.0) * overlapBonusMax
	return round4(coverageWeight*coverage + densityWeight*density + overlapBonus)
}

// queryCategories returns the categories hinted by the query vocabulary.
func queryCategories(queryTokens textutil.Set) map[string]struct{} {
	hinted := make(map[string]struct{})
	for category, keywords := range categoryHints {
		for tok := range queryTokens {
			if keywords.Has(tok) {
				hinted[category] = struct{}{}
				break
			}
		}
	}
	return hinted
}

// Search returns the top-k documents scoring at least 0.10 against the
// query, best first.
func (r *Retriever) Search(query, language string, topK int) []Result {
	if topK <= 0 {
		topK = defaultTopK
	}

	queryTokens := textutil.NewSet(textutil.FilterTokens(
		textutil.Tokenize(query), textutil.RetrievalStopwords))
	if len(queryTokens) == 0 {
		return nil
	}

	hinted := queryCategories(queryTokens)

	type scoredDoc struct {
		index int
		score float64
	}
	scored := make([]scoredDoc, len(r.documents))
	for i := range r.documents {
		doc := &r.documents[i]
		score := baseScore(queryTokens, r.docTokens[i])

		if titleOverlap := queryTokens.Overlap(r.titleTokens[i]); titleOverlap > 0 {
			score += math.Min(titleBoostPerToken*float64(titleOverlap), titleBoostMax)
		}
		if doc.Language == language {
			score += languageBoost
		}
		if _, ok := hinted[doc.Category]; ok && len(hinted) > 0 {
			score += categoryHintBoost
		}

		scored[i] = scoredDoc{index: i, score: round4(math.Min(score, maxScore))}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	var results []Result
	for _, item := range scored {
		if len(results) >= topK {
			break
		}
		if item.score < minFinalScore {
			continue
		}
		results = append(results, Result{
			Document: &r.documents[item.index],
			Score:    item.score,
		})
	}
	return results
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
