// Package assistant composes answers for health questions. A fixed
// cascade of strategies is tried in order: emergency triage, pregnancy
// guidance, scheme matching, disease lookup, knowledge retrieval, and a
// low-information fallback. The first strategy that produces a grounded
// answer wins.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/gramhealth/assistant/internal/diseases"
	"github.com/gramhealth/assistant/internal/domain"
	"github.com/gramhealth/assistant/internal/hospitals"
	"github.com/gramhealth/assistant/internal/localization"
	"github.com/gramhealth/assistant/internal/logging"
	"github.com/gramhealth/assistant/internal/pregnancy"
	"github.com/gramhealth/assistant/internal/retriever"
	"github.com/gramhealth/assistant/internal/schemes"
	"github.com/gramhealth/assistant/internal/triage"
)

// Stage names the cascade branch that produced an answer. Used for
// logging and metrics labels.
type Stage string

const (
	StageTriage    Stage = "triage"
	StagePregnancy Stage = "pregnancy"
	StageScheme    Stage = "scheme"
	StageDisease   Stage = "disease"
	StageRetrieval Stage = "retrieval"
	StageFallback  Stage = "fallback"
)

// Confidence bounds per branch.
const (
	criticalConfidence      = 0.99
	retrievalAcceptance     = 0.16
	diseaseConfidenceFloor  = 0.55
	diseaseConfidenceCap    = 0.99
	retrievalConfidenceMin  = 0.35
	retrievalConfidenceMax  = 0.9
	fallbackConfidence      = 0.22
	diseaseCandidateLimit   = 5
	hospitalSectionLimit    = 5
	groundedSourceLimit     = 3
	fallbackQueryExcerptLen = 80
)

// Request is one health question.
type Request struct {
	Query    string
	Language string
	Location string
	AgeYears *int
}

// Assistant wires the cascade strategies together. All fields are
// read-only after construction; Answer is safe for concurrent use.
type Assistant struct {
	triage    *triage.Scanner
	schemes   *schemes.Service
	diseases  *diseases.Engine
	pregnancy *pregnancy.Service
	retriever *retriever.Retriever
	hospitals *hospitals.Locator // optional
	logger    logging.Logger
}

// New builds an assistant. The hospital locator may be nil; hospital
// sections are then omitted from answers.
func New(
	triageScanner *triage.Scanner,
	schemeService *schemes.Service,
	diseaseEngine *diseases.Engine,
	pregnancyService *pregnancy.Service,
	knowledgeRetriever *retriever.Retriever,
	hospitalLocator *hospitals.Locator,
	logger logging.Logger,
) *Assistant {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Assistant{
		triage:    triageScanner,
		schemes:   schemeService,
		diseases:  diseaseEngine,
		pregnancy: pregnancyService,
		retriever: knowledgeRetriever,
		hospitals: hospitalLocator,
		logger:    logger,
	}
}

// Answer runs the cascade and returns the structured response plus the
// stage that resolved it.
func (a *Assistant) Answer(ctx context.Context, req Request) (domain.ChatResponse, Stage) {
	language := localization.NormalizeLanguage(req.Language)
	triageResult := a.triage.Assess(req.Query, language)
	disclaimer := localization.Localize(language, localization.KeyDisclaimer)
	ageGroup := deriveAgeGroup(req.Query, req.AgeYears)
	hospitalSection := a.buildHospitalSection(ctx, req.Query, req.Location, triageResult.IsCritical)

	if triageResult.IsCritical {
		return a.criticalResponse(language, disclaimer, ageGroup, hospitalSection, triageResult), StageTriage
	}

	schemeIntent := a.schemes.HasSchemeIntent(req.Query)

	if !schemeIntent && a.pregnancy.HasContext(req.Query) {
		return a.pregnancyResponse(req.Query, language, disclaimer, ageGroup, hospitalSection), StagePregnancy
	}

	if schemeIntent {
		if matches := a.schemes.Search(req.Query); len(matches) > 0 {
			answer, nextSteps, sources := a.schemes.FormatResponse(matches, language)
			return domain.ChatResponse{
				Answer:     answer,
				Language:   language,
				Urgency:    domain.UrgencyNormal,
				Disclaimer: disclaimer,
				NextSteps:  nextSteps,
				Confidence: a.schemes.Confidence(),
				Sources:    sources,
			}, StageScheme
		}
	}

	if resp, ok := a.diseaseResponse(req.Query, language, disclaimer, ageGroup, hospitalSection); ok {
		return resp, StageDisease
	}

	results := a.retriever.Search(req.Query, language, groundedSourceLimit)
	if len(results) == 0 || results[0].Score < retrievalAcceptance {
		return a.lowInformationResponse(req.Query, language, disclaimer, hospitalSection), StageFallback
	}
	return a.groundedResponse(req.Query, language, disclaimer, hospitalSection, results), StageRetrieval
}

func (a *Assistant) criticalResponse(
	language, disclaimer, ageGroup, hospitalSection string,
	triageResult domain.TriageResult,
) domain.ChatResponse {
	redFlags := triageResult.MatchedKeywords
	if len(redFlags) == 0 {
		redFlags = []string{"Severe chest pain", "Unconsciousness", "Severe bleeding"}
	}

	answer := formatMedicalGuidance(guidanceInput{
		ConditionName:    "Emergency symptoms detected",
		AgeGroup:         ageGroup,
		Overview:         localization.Localize(language, localization.KeyCriticalBody),
		TreatmentSummary: "Immediate emergency triage and hospital stabilization are required.",
		MedicineGuidance: []string{
			"Emergency medicines should be given only by trained clinicians.",
			"Do not self-administer high-risk medicines or injections at home.",
		},
		LifestyleSteps: triageResult.NextSteps,
		AvoidItems: []string{
			"Do not delay emergency transfer.",
			"Do not wait for symptoms to settle on their own.",
		},
		RedFlags:         redFlags,
		EmotionalSupport: "Stay calm, keep the patient accompanied, and use clear communication with emergency staff.",
	})
	answer = appendSection(answer, hospitalSection)

	return domain.ChatResponse{
		Answer:     answer,
		Language:   language,
		Urgency:    domain.UrgencyCritical,
		Disclaimer: disclaimer,
		NextSteps:  triageResult.NextSteps,
		Confidence: criticalConfidence,
		Sources: []domain.SourceItem{{
			Title:  "Emergency Triage Guidance",
			Source: "MoHFW Emergency Protocol",
			Score:  1.0,
		}},
	}
}

func (a *Assistant) pregnancyResponse(
	query, language, disclaimer, ageGroup, hospitalSection string,
) domain.ChatResponse {
	guidance := a.pregnancy.BuildGuidance(query)

	answer := formatMedicalGuidance(guidanceInput{
		ConditionName:    "Pregnancy support",
		AgeGroup:         ageGroup,
		Overview:         guidance.Answer,
		TreatmentSummary: "Antenatal care, blood pressure monitoring, fetal monitoring, and obstetric review are the core approaches.",
		MedicineGuidance: []string{
			"Pregnancy-safe medicines should be chosen only by a qualified doctor.",
			"Iron, folic acid, calcium, and vaccines should follow ANC protocol and doctor advice.",
			"Avoid over-the-counter painkillers, herbal medicines, or antibiotics without prescription.",
		},
		LifestyleSteps: guidance.NextSteps,
		AvoidItems: []string{
			"Do not skip scheduled ANC/PNC checkups.",
			"Do not self-medicate during pregnancy.",
		},
		RedFlags: []string{
			"Vaginal bleeding",
			"Severe headache or blurred vision",
			"Reduced fetal movement",
			"Convulsions or severe breathlessness",
		},
		EmotionalSupport: "Seek family support, discuss concerns with ANM/doctor, and ask for counselling if anxiety is high.",
	})
	answer = appendSection(answer, hospitalSection)

	return domain.ChatResponse{
		Answer:     answer,
		Language:   language,
		Urgency:    domain.UrgencyNormal,
		Disclaimer: disclaimer + " Pregnancy symptoms should be clinically reviewed; do not self-medicate.",
		NextSteps:  guidance.NextSteps,
		Confidence: guidance.Confidence,
		Sources: []domain.SourceItem{{
			Title:  "Pregnancy ANC Guidance",
			Source: guidance.Source,
			Score:  guidance.Confidence,
		}},
	}
}

// diseaseResponse tries the disease branch. It answers only when the
// best non-contextual candidate is a high-quality match and the query
// either names the disease or carries explicit lookup intent.
func (a *Assistant) diseaseResponse(
	query, language, disclaimer, ageGroup, hospitalSection string,
) (domain.ChatResponse, bool) {
	matches := a.diseases.Search(query, diseaseCandidateLimit)
	if len(matches) == 0 {
		return domain.ChatResponse{}, false
	}

	top := matches[0]
	for _, candidate := range matches {
		if !a.diseases.IsContextual(candidate.Record) {
			top = candidate
			break
		}
	}

	highQuality := a.diseases.IsHighQualityMatch(top.Record, top.Score, query)
	explicitMention := a.diseases.MentionsRecord(query, top.Record)
	lookupIntent := a.diseases.HasLookupIntent(query)
	if !highQuality || (!explicitMention && !lookupIntent) {
		return domain.ChatResponse{}, false
	}

	answer := formatMedicalGuidance(guidanceInput{
		ConditionName:    top.Record.Name,
		AgeGroup:         ageGroup,
		Overview:         top.Record.Overview,
		TreatmentSummary: top.Record.TreatmentSummary,
		MedicineGuidance: top.Record.MedicineGuidance,
		LifestyleSteps:   top.Record.HomeCare,
		AvoidItems: []string{
			"Do not start or stop prescription medicines without medical advice.",
			"Do not use leftover antibiotics or steroid combinations without diagnosis.",
		},
		RedFlags:         top.Record.RedFlags,
		EmotionalSupport: "Chronic symptoms can be stressful; consider counselling/support groups and involve family in care planning.",
	})
	answer = appendSection(answer, hospitalSection)

	return domain.ChatResponse{
		Answer:     answer,
		Language:   language,
		Urgency:    domain.UrgencyNormal,
		Disclaimer: disclaimer + " Never start/stop prescription medicines without a licensed doctor.",
		NextSteps:  buildNextSteps(query, language),
		Confidence: round2(clamp(top.Score, diseaseConfidenceFloor, diseaseConfidenceCap)),
		Sources: []domain.SourceItem{{
			Title:  top.Record.Name,
			Source: top.Record.Source,
			Score:  round2(top.Score),
		}},
	}, true
}

func (a *Assistant) groundedResponse(
	query, language, disclaimer, hospitalSection string,
	results []retriever.Result,
) domain.ChatResponse {
	answer := composeGroundedAnswer(results, language, query)
	answer = appendSection(answer, hospitalSection)

	sources := make([]domain.SourceItem, 0, groundedSourceLimit)
	for i, result := range results {
		if i >= groundedSourceLimit {
			break
		}
		sources = append(sources, domain.SourceItem{
			Title:  result.Document.Title,
			Source: result.Document.Source,
			Score:  round2(result.Score),
		})
	}

	return domain.ChatResponse{
		Answer:     answer,
		Language:   language,
		Urgency:    domain.UrgencyNormal,
		Disclaimer: disclaimer,
		NextSteps:  buildNextSteps(query, language),
		Confidence: round2(clamp(results[0].Score, retrievalConfidenceMin, retrievalConfidenceMax)),
		Sources:    sources,
	}
}

func (a *Assistant) lowInformationResponse(
	query, language, disclaimer, hospitalSection string,
) domain.ChatResponse {
	topic := topicFromQuery(query)
	answer := fmt.Sprintf(
		"I need a little more detail to give safe and useful guidance for %s. "+
			"Share symptoms, duration, age, and known conditions (for example diabetes, pregnancy, BP).",
		topic)
	answer = appendSection(answer, hospitalSection)

	excerpt := query
	if len(excerpt) > fallbackQueryExcerptLen {
		excerpt = excerpt[:fallbackQueryExcerptLen]
	}

	return domain.ChatResponse{
		Answer:     answer,
		Language:   language,
		Urgency:    domain.UrgencyNormal,
		Disclaimer: disclaimer,
		NextSteps: []string{
			fmt.Sprintf("Describe your main symptom and duration clearly (example: '%s').", excerpt),
			"Mention age, pregnancy status, chronic diseases, and current medicines.",
			localization.Localize(language, localization.KeyNoInfoStep2),
		},
		Confidence: fallbackConfidence,
		Sources:    []domain.SourceItem{},
	}
}

// composeGroundedAnswer cites up to three documents, each introduced by
// its title and summarized by its first sentence.
func composeGroundedAnswer(results []retriever.Result, language, query string) string {
	lines := []string{
		localization.Localize(language, localization.KeyGroundedIntro) + " Topic: " + topicFromQuery(query) + ".",
	}
	for i, result := range results {
		if i >= groundedSourceLimit {
			break
		}
		lines = append(lines, "- "+result.Document.Title+": "+extractSummary(result.Document))
	}
	return strings.Join(lines, "\n")
}

// extractSummary returns the first sentence of a document, or the first
// 220 characters when no sentence boundary exists.
func extractSummary(document *domain.KnowledgeDocument) string {
	if end := strings.Index(document.Content, "."); end != -1 {
		return document.Content[:end+1]
	}
	if len(document.Content) > 220 {
		return document.Content[:220]
	}
	return document.Content
}

// buildNextSteps assembles up to three deduplicated follow-up steps,
// adding symptom-specific monitoring advice when the query warrants it.
func buildNextSteps(query, language string) []string {
	lowered := strings.ToLower(query)
	steps := []string{localization.Localize(language, localization.KeyFollowUp)}

	if containsAny(lowered, "fever", "temperature", "cough", "cold", "sore throat") {
		steps = append(steps, "Track fever/breathing symptoms every 6-8 hours and keep hydration adequate.")
	}
	if containsAny(lowered, "sugar", "diabetes", "bp", "pressure", "hypertension") {
		steps = append(steps, "Check sugar/BP readings regularly and carry the log to your next clinic visit.")
	}
	if containsAny(lowered, "pregnan", "fetal", "trimester", "weeks") {
		steps = append(steps, "If pregnant, keep ANC visits on schedule and seek urgent care for bleeding or reduced fetal movement.")
	}

	var deduped []string
	for _, step := range steps {
		if !containsString(deduped, step) {
			deduped = append(deduped, step)
		}
	}
	if len(deduped) > 3 {
		deduped = deduped[:3]
	}
	return deduped
}

func containsAny(text string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func appendSection(answer, section string) string {
	if section == "" {
		return answer
	}
	return answer + "\n\n" + section
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
