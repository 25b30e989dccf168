package assistant

import (
	"context"
	"strings"
	"testing"

	"github.com/gramhealth/assistant/internal/diseases"
	"github.com/gramhealth/assistant/internal/domain"
	"github.com/gramhealth/assistant/internal/pregnancy"
	"github.com/gramhealth/assistant/internal/retriever"
	"github.com/gramhealth/assistant/internal/schemes"
	"github.com/gramhealth/assistant/internal/triage"
)

func newTestAssistant() *Assistant {
	diseaseRecords := []domain.DiseaseRecord{
		{
			ID:               "dis-dengue",
			Name:             "Dengue Fever",
			Aliases:          []string{"dengue"},
			Category:         "infectious",
			Overview:         "Mosquito-borne viral fever common in monsoon months.",
			TreatmentSummary: "Supportive care with fluids and fever control as advised.",
			MedicineGuidance: []string{"Paracetamol for fever (avoid aspirin and ibuprofen)."},
			HomeCare:         []string{"Plenty of oral fluids and rest."},
			RedFlags:         []string{"Bleeding gums", "Severe abdominal pain"},
			Source:           "NVBDCP dengue guidelines",
		},
		{
			ID:               "dis-type2-diabetes",
			Name:             "Type 2 Diabetes",
			Aliases:          []string{"diabetes", "sugar"},
			Category:         "chronic",
			Overview:         "Chronic condition of elevated blood glucose.",
			TreatmentSummary: "Lifestyle change plus prescribed oral medication.",
			Source:           "National Health Portal",
		},
	}

	schemeCatalog := []domain.Scheme{
		{
			Name:     "Ayushman Bharat PM-JAY",
			Keywords: []string{"ayushman", "pmjay", "health card"},
			Summaries: map[string]string{
				"en": "Cashless hospital cover of Rs 5 lakh per family per year.",
			},
			NextSteps: []string{"Check eligibility on pmjay.gov.in."},
			Source:    "National Health Authority",
		},
		{
			Name:     "Janani Suraksha Yojana",
			Keywords: []string{"jsy", "janani"},
			Summaries: map[string]string{
				"en": "Cash benefit for institutional delivery.",
			},
			NextSteps: []string{"Register the pregnancy with the local ASHA."},
		},
	}

	knowledgeDocs := []domain.KnowledgeDocument{
		{
			ID:       "kn-fever-home-care",
			Title:    "Fever and Headache Home Care",
			Category: "infectious",
			Language: "en",
			Content: "Rest, drink fluids, and take paracetamol as advised for fever. " +
				"Seek care if fever lasts more than three days or the headache becomes severe.",
			Source: "MoHFW home care guidance",
		},
		{
			ID:       "kn-diabetes-diet",
			Title:    "Diabetes Diet Guidance",
			Category: "chronic",
			Language: "en",
			Content:  "Prefer whole grains, vegetables, and regular meal timing to keep blood sugar stable.",
			Source:   "National Health Portal",
		},
	}

	return New(
		triage.NewScanner(),
		schemes.NewService(schemeCatalog),
		diseases.NewEngine(diseaseRecords, nil),
		pregnancy.NewService(),
		retriever.New(knowledgeDocs, nil),
		nil,
		nil,
	)
}

func TestAnswerCriticalTriage(t *testing.T) {
	a := newTestAssistant()

	resp, stage := a.Answer(context.Background(), Request{
		Query:    "My father has severe chest pain and difficulty breathing",
		Language: "en",
	})

	if stage != StageTriage {
		t.Fatalf("expected triage stage, got %s", stage)
	}
	if resp.Urgency != domain.UrgencyCritical {
		t.Errorf("expected critical urgency, got %s", resp.Urgency)
	}
	if resp.Confidence != 0.99 {
		t.Errorf("expected confidence 0.99, got %v", resp.Confidence)
	}
	if len(resp.NextSteps) != 3 {
		t.Errorf("expected 3 emergency steps, got %d", len(resp.NextSteps))
	}
	if len(resp.Sources) != 1 || resp.Sources[0].Title != "Emergency Triage Guidance" {
		t.Errorf("unexpected sources: %v", resp.Sources)
	}
	if !strings.Contains(resp.Answer, "MEDICAL GUIDANCE SECTION") {
		t.Error("expected the structured guidance template in the answer")
	}
}

func TestAnswerSchemeLookup(t *testing.T) {
	a := newTestAssistant()

	resp, stage := a.Answer(context.Background(), Request{
		Query:    "How can I get the Ayushman Bharat health card?",
		Language: "en",
	})

	if stage != StageScheme {
		t.Fatalf("expected scheme stage, got %s", stage)
	}
	if !strings.Contains(resp.Answer, "Ayushman Bharat PM-JAY") {
		t.Errorf("expected scheme answer, got %q", resp.Answer)
	}
	if resp.Confidence != 0.88 {
		t.Errorf("expected confidence 0.88, got %v", resp.Confidence)
	}
	if resp.Urgency != domain.UrgencyNormal {
		t.Errorf("expected normal urgency, got %s", resp.Urgency)
	}
}

func TestAnswerPregnancyBeatsSchemeVocabulary(t *testing.T) {
	a := newTestAssistant()

	// Pregnancy context without literal scheme phrasing stays clinical.
	resp, stage := a.Answer(context.Background(), Request{
		Query:    "I am 7 months pregnant and have mild back pain",
		Language: "en",
	})

	if stage != StagePregnancy {
		t.Fatalf("expected pregnancy stage, got %s", stage)
	}
	if !strings.Contains(resp.Answer, "Pregnancy support") {
		t.Errorf("expected pregnancy guidance, got %q", resp.Answer)
	}
	if strings.Contains(resp.Answer, "Janani Suraksha") {
		t.Error("clinical pregnancy query should not return a scheme answer")
	}
	if resp.Confidence != 0.82 {
		t.Errorf("expected confidence 0.82, got %v", resp.Confidence)
	}
	if !strings.Contains(resp.Disclaimer, "do not self-medicate") {
		t.Errorf("expected pregnancy disclaimer suffix, got %q", resp.Disclaimer)
	}
}

func TestAnswerPregnancySchemeQuestionGoesToSchemes(t *testing.T) {
	a := newTestAssistant()

	resp, stage := a.Answer(context.Background(), Request{
		Query:    "I am pregnant, can I get the janani yojana benefit?",
		Language: "en",
	})

	if stage != StageScheme {
		t.Fatalf("expected scheme stage, got %s", stage)
	}
	if !strings.Contains(resp.Answer, "Janani Suraksha Yojana") {
		t.Errorf("expected Janani Suraksha answer, got %q", resp.Answer)
	}
}

func TestAnswerDiseaseLookup(t *testing.T) {
	a := newTestAssistant()

	resp, stage := a.Answer(context.Background(), Request{
		Query:    "What is the treatment for dengue?",
		Language: "en",
	})

	if stage != StageDisease {
		t.Fatalf("expected disease stage, got %s", stage)
	}
	if !strings.Contains(resp.Answer, "Dengue Fever") {
		t.Errorf("expected dengue answer, got %q", resp.Answer)
	}
	if !strings.Contains(resp.Answer, "Medicines commonly used") {
		t.Error("expected the medicine section in the answer")
	}
	if resp.Confidence < 0.55 || resp.Confidence > 0.99 {
		t.Errorf("disease confidence out of range: %v", resp.Confidence)
	}
	if !strings.Contains(resp.Disclaimer, "Never start/stop prescription medicines") {
		t.Errorf("expected disease disclaimer suffix, got %q", resp.Disclaimer)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].Source != "NVBDCP dengue guidelines" {
		t.Errorf("unexpected sources: %v", resp.Sources)
	}
}

func TestAnswerGroundedRetrieval(t *testing.T) {
	a := newTestAssistant()

	resp, stage := a.Answer(context.Background(), Request{
		Query:    "I have headache and fever for 2 days",
		Language: "en",
	})

	if stage != StageRetrieval {
		t.Fatalf("expected retrieval stage, got %s", stage)
	}
	if !strings.HasPrefix(resp.Answer, "Based on verified health resources:") {
		t.Errorf("expected grounded intro, got %q", resp.Answer)
	}
	if !strings.Contains(resp.Answer, "Fever and Headache Home Care") {
		t.Errorf("expected cited document title, got %q", resp.Answer)
	}
	if resp.Confidence < 0.35 || resp.Confidence > 0.9 {
		t.Errorf("retrieval confidence out of range: %v", resp.Confidence)
	}
	if len(resp.Sources) == 0 || len(resp.Sources) > 3 {
		t.Errorf("expected 1..3 sources, got %d", len(resp.Sources))
	}

	// The fever vocabulary adds a monitoring step.
	foundMonitoring := false
	for _, step := range resp.NextSteps {
		if strings.Contains(step, "Track fever") {
			foundMonitoring = true
		}
	}
	if !foundMonitoring {
		t.Errorf("expected a fever monitoring step, got %v", resp.NextSteps)
	}
}

func TestAnswerLowInformationFallback(t *testing.T) {
	a := newTestAssistant()

	resp, stage := a.Answer(context.Background(), Request{
		Query:    "asdkjh qwerty zxcvb",
		Language: "en",
	})

	if stage != StageFallback {
		t.Fatalf("expected fallback stage, got %s", stage)
	}
	if resp.Confidence != 0.22 {
		t.Errorf("expected confidence 0.22, got %v", resp.Confidence)
	}
	if resp.Sources == nil || len(resp.Sources) != 0 {
		t.Errorf("expected empty sources slice, got %v", resp.Sources)
	}
	if len(resp.NextSteps) != 3 {
		t.Errorf("expected 3 next steps, got %d", len(resp.NextSteps))
	}
	if !strings.Contains(resp.Answer, "more detail") {
		t.Errorf("expected clarification request, got %q", resp.Answer)
	}
}

func TestAnswerNormalizesLanguage(t *testing.T) {
	a := newTestAssistant()

	resp, _ := a.Answer(context.Background(), Request{
		Query:    "What is the treatment for dengue?",
		Language: "hi-IN",
	})

	if resp.Language != "hi" {
		t.Errorf("expected normalized language hi, got %s", resp.Language)
	}
}

func TestBuildNextStepsDedupesAndCaps(t *testing.T) {
	steps := buildNextSteps("fever cough sugar bp pregnancy weeks", "en")

	if len(steps) > 3 {
		t.Fatalf("expected at most 3 steps, got %d", len(steps))
	}
	seen := make(map[string]bool)
	for _, step := range steps {
		if seen[step] {
			t.Errorf("duplicate step %q", step)
		}
		seen[step] = true
	}
}

func TestExtractSummaryFirstSentence(t *testing.T) {
	doc := &domain.KnowledgeDocument{Content: "First sentence here. Second sentence follows."}
	if got := extractSummary(doc); got != "First sentence here." {
		t.Errorf("extractSummary = %q", got)
	}

	long := strings.Repeat("x", 300)
	doc = &domain.KnowledgeDocument{Content: long}
	if got := extractSummary(doc); len(got) != 220 {
		t.Errorf("expected 220-char excerpt, got %d chars", len(got))
	}
}
