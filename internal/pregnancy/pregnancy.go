// Package pregnancy detects pregnancy context in a query and produces
// stage-appropriate antenatal guidance.
package pregnancy

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Stage confidence is fixed: the guidance templates are protocol text,
// not a ranked match.
const guidanceConfidence = 0.82

const guidanceSource = "RMNCH+A maternal care guidance + National Health Portal"

// Average weeks per month used to convert an explicit week count.
const weeksPerMonth = 4.35

var pregnancyTerms = []string{
	"pregnant",
	"pregnancy",
	"trimester",
	"weeks pregnant",
	"months pregnant",
	"gestation",
	"7 months",
	"8 months",
	"9 months",
}

var (
	monthPattern = regexp.MustCompile(`\b([1-9]|1[0-2])\s*months?\b`)
	weekPattern  = regexp.MustCompile(`\b([1-4][0-9]|[1-9])\s*weeks?\b`)
)

// Guidance is the stage-specific pregnancy answer.
type Guidance struct {
	Answer     string
	NextSteps  []string
	Confidence float64
	Source     string
}

// Service is stateless; detection and guidance are pure functions of the
// query text.
type Service struct{}

// NewService returns a pregnancy context detector.
func NewService() *Service {
	return &Service{}
}

// HasContext reports whether the query mentions pregnancy.
func (s *Service) HasContext(query string) bool {
	lowered := strings.ToLower(query)
	for _, term := range pregnancyTerms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

// extractMonths pulls an explicit month count from the query, converting
// a week count when that is all the user gave. Returns 0 when no stage
// information is present.
func extractMonths(query string) int {
	lowered := strings.ToLower(query)

	if m := monthPattern.FindStringSubmatch(lowered); m != nil {
		months, _ := strconv.Atoi(m[1])
		return months
	}

	if m := weekPattern.FindStringSubmatch(lowered); m != nil {
		weeks, _ := strconv.Atoi(m[1])
		months := int(math.Round(float64(weeks) / weeksPerMonth))
		if months < 1 {
			months = 1
		}
		if months > 9 {
			months = 9
		}
		return months
	}

	return 0
}

// BuildGuidance infers the pregnancy stage and returns the fixed guidance
// template for it.
func (s *Service) BuildGuidance(query string) Guidance {
	months := extractMonths(query)

	var stage, stageGuidance string
	switch {
	case months >= 7:
		stage = "third trimester"
		stageGuidance = "At this stage, monitor baby movements daily and keep regular ANC visits (usually every 2 weeks or as advised)."
	case months >= 4:
		stage = "second trimester"
		stageGuidance = "Continue scheduled ANC visits, anemia prevention, and routine fetal growth monitoring."
	default:
		stage = "pregnancy"
		stageGuidance = "Register and continue antenatal care early with regular checkups at PHC/obstetric clinic."
	}

	answer := strings.Join([]string{
		"Pregnancy support (" + stage + ")",
		stageGuidance,
		"Track blood pressure, swelling, headache, vision changes, bleeding, fever, or reduced fetal movement.",
		"Use only doctor-approved medicines and supplements (iron, calcium, folic acid as prescribed).",
		"Plan hospital delivery location, emergency transport, and keep MCP/ANC records ready.",
	}, "\n")

	return Guidance{
		Answer: answer,
		NextSteps: []string{
			"Book/continue ANC checkup at nearest PHC/OB clinic this week.",
			"If 7+ months, count fetal movements and seek urgent care if movement is reduced.",
			"Emergency now if bleeding, severe headache, blurred vision, fits, breathlessness, or severe abdominal pain.",
		},
		Confidence: guidanceConfidence,
		Source:     guidanceSource,
	}
}
