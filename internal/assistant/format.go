package assistant

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gramhealth/assistant/internal/hospitals"
	"github.com/gramhealth/assistant/internal/logging"
)

// responseStopwords is the filler vocabulary stripped when deriving an
// answer topic from the raw query.
var responseStopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "for": {}, "to": {},
	"of": {}, "in": {}, "on": {}, "with": {}, "my": {}, "me": {}, "i": {},
	"am": {}, "is": {}, "are": {}, "what": {}, "how": {}, "why": {},
	"can": {}, "should": {}, "please": {}, "about": {}, "need": {},
	"help": {}, "have": {}, "has": {}, "had": {}, "this": {}, "that": {},
	"it": {}, "from": {},
}

var (
	pincodePattern = regexp.MustCompile(`\b[1-9][0-9]{5}\b`)
	agePattern     = regexp.MustCompile(`(?i)\b(?:age\s*)?(\d{1,3})\s*(?:years?|yrs?|year old|year-old|yo|y/o)\b`)
	topicToken     = regexp.MustCompile(`[a-zA-Z0-9]+`)
)

// governmentHospitalMarkers in a hospital name indicate a public
// facility.
var governmentHospitalMarkers = []string{
	"government", "govt", "district hospital", "civil hospital",
	"medical college", "aiims", "cg", "phc", "chc",
}

// specialtyHints maps name fragments to the specialty shown in the
// hospital section. Checked in this order; first hit wins.
var specialtyHints = []struct {
	keyword   string
	specialty string
}{
	{"cancer", "Oncology"},
	{"oncology", "Oncology"},
	{"cardiac", "Cardiology"},
	{"heart", "Cardiology"},
	{"neuro", "Neurology"},
	{"ortho", "Orthopedics"},
	{"pediatric", "Pediatrics"},
	{"children", "Pediatrics"},
	{"maternity", "Obstetrics & Gynecology"},
	{"women", "Obstetrics & Gynecology"},
	{"eye", "Ophthalmology"},
	{"ent", "ENT"},
	{"kidney", "Nephrology/Urology"},
	{"renal", "Nephrology/Urology"},
	{"trauma", "Emergency/Trauma"},
	{"emergency", "Emergency/Trauma"},
}

const sectionDivider = "------------------------------------------------------"

// topicFromQuery extracts up to four meaningful tokens as the answer
// topic, falling back to a generic phrase.
func topicFromQuery(query string) string {
	tokens := topicToken.FindAllString(strings.ToLower(query), -1)
	var filtered []string
	for _, token := range tokens {
		if _, stop := responseStopwords[token]; stop || len(token) <= 2 {
			continue
		}
		filtered = append(filtered, token)
		if len(filtered) == 4 {
			break
		}
	}
	if len(filtered) == 0 {
		return "your health concern"
	}
	return strings.Join(filtered, " ")
}

// deriveAgeGroup buckets the patient's age. An explicit age field wins;
// otherwise the query is scanned for an age phrase, then for age-group
// vocabulary. Adults are the default.
func deriveAgeGroup(query string, ageYears *int) string {
	if ageYears != nil {
		return ageGroupForYears(*ageYears)
	}

	if m := agePattern.FindStringSubmatch(query); m != nil {
		if age, err := strconv.Atoi(m[1]); err == nil {
			return ageGroupForYears(age)
		}
	}

	lowered := strings.ToLower(query)
	if containsAny(lowered, "newborn", "infant", "child", "kid") {
		return "Child (0–12)"
	}
	if containsAny(lowered, "teen", "adolescent") {
		return "Teen (13–18)"
	}
	if containsAny(lowered, "elderly", "senior", "aged") {
		return "Elderly (60+)"
	}
	return "Adult (19–59)"
}

func ageGroupForYears(age int) string {
	switch {
	case age <= 12:
		return "Child (0–12)"
	case age <= 18:
		return "Teen (13–18)"
	case age <= 59:
		return "Adult (19–59)"
	default:
		return "Elderly (60+)"
	}
}

func ageGroupImpact(conditionName, ageGroup string) string {
	switch {
	case strings.HasPrefix(ageGroup, "Child"):
		return conditionName + " in children can progress quickly due to lower physiological reserve; early pediatric review is important."
	case strings.HasPrefix(ageGroup, "Teen"):
		return conditionName + " in teens may affect growth, school performance, and emotional wellbeing; age-appropriate counselling helps."
	case strings.HasPrefix(ageGroup, "Elderly"):
		return conditionName + " in older adults can worsen faster with comorbidities (diabetes/BP/heart/kidney disease), so close monitoring is needed."
	default:
		return conditionName + " in adults may affect daily function and work capacity; timely diagnosis improves outcomes."
	}
}

// formatList trims and caps a list, substituting a default when nothing
// survives.
func formatList(items []string, max int, defaultItem string) []string {
	if len(items) > max {
		items = items[:max]
	}
	var cleaned []string
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return []string{defaultItem}
	}
	return cleaned
}

// guidanceInput feeds the eight-section medical guidance template.
type guidanceInput struct {
	ConditionName    string
	AgeGroup         string
	Overview         string
	TreatmentSummary string
	MedicineGuidance []string
	LifestyleSteps   []string
	AvoidItems       []string
	RedFlags         []string
	EmotionalSupport string
}

// formatMedicalGuidance renders the fixed eight-section answer used by
// every medical branch of the cascade.
func formatMedicalGuidance(in guidanceInput) string {
	medicines := formatList(in.MedicineGuidance, 5, "Doctor-guided medicine choice after confirmed diagnosis.")
	lifestyle := formatList(in.LifestyleSteps, 5, "Maintain hydration, rest, and follow-up with a licensed doctor.")
	avoid := formatList(in.AvoidItems, 4, "Avoid self-medication or delaying medical consultation.")
	flags := formatList(in.RedFlags, 5, "Severe breathing difficulty or altered consciousness.")

	lines := []string{
		sectionDivider,
		"",
		"MEDICAL GUIDANCE SECTION",
		"",
		"1. Condition Overview",
		"- " + in.ConditionName + ": " + in.Overview,
		"",
		"2. How it affects this age group",
		"- Age group identified: " + in.AgeGroup,
		"- " + ageGroupImpact(in.ConditionName, in.AgeGroup),
		"",
		"3. Common treatment approaches (categories only)",
		"- " + in.TreatmentSummary,
		"- Categories: clinical evaluation, doctor-guided medicines, monitoring, specialist referral if needed.",
		"",
		"4. Medicine types commonly used (no dosage)",
		"- Medicines commonly used (doctor-guided):",
	}
	for _, item := range medicines {
		lines = append(lines, "  - "+item)
	}
	lines = append(lines, "", "5. Lifestyle recommendations")
	for _, item := range lifestyle {
		lines = append(lines, "- "+item)
	}
	lines = append(lines, "", "6. What to avoid")
	for _, item := range avoid {
		lines = append(lines, "- "+item)
	}
	lines = append(lines, "", "7. Warning signs requiring emergency care")
	for _, item := range flags {
		lines = append(lines, "- "+item)
	}
	lines = append(lines,
		"",
		"8. Emotional and mental health support advice",
		"- "+in.EmotionalSupport,
		"- Speak with a qualified doctor/counsellor if fear, stress, or low mood is persistent.",
	)
	return strings.Join(lines, "\n")
}

func extractPincode(value string) string {
	return pincodePattern.FindString(value)
}

func inferHospitalType(name string) string {
	lowered := strings.ToLower(name)
	for _, marker := range governmentHospitalMarkers {
		if strings.Contains(lowered, marker) {
			return "Government"
		}
	}
	return "Private"
}

func inferSpecialty(name string) string {
	lowered := strings.ToLower(name)
	for _, hint := range specialtyHints {
		if strings.Contains(lowered, hint.keyword) {
			return hint.specialty
		}
	}
	return "General"
}

// buildHospitalSection renders the hospital finder section when a
// pincode is found in the query or the location field. A failed lookup
// degrades to a fixed emergency-number message rather than erroring the
// whole answer.
func (a *Assistant) buildHospitalSection(ctx context.Context, query, location string, emergency bool) string {
	if a.hospitals == nil {
		return ""
	}

	pincode := extractPincode(query)
	if pincode == "" {
		pincode = extractPincode(location)
	}
	if pincode == "" {
		return ""
	}

	lookup, err := a.hospitals.LookupNearest(ctx, pincode, hospitalSectionLimit)
	if err != nil {
		if errors.Is(err, hospitals.ErrInvalidPincode) {
			return ""
		}
		a.logger.Warn("hospital section lookup failed",
			logging.String("pincode", pincode), logging.Error(err))
		return sectionDivider + "\n\n" +
			"HOSPITAL FINDER SECTION (India Only)\n\n" +
			"Hospital lookup is temporarily unavailable. Please call 108 or visit the nearest PHC/government hospital immediately."
	}
	if lookup == nil || len(lookup.Hospitals) == 0 {
		return ""
	}

	list := lookup.Hospitals
	if len(list) > hospitalSectionLimit {
		list = list[:hospitalSectionLimit]
	}

	lines := []string{
		sectionDivider,
		"",
		"HOSPITAL FINDER SECTION (India Only)",
		"",
		"Method: Input location/pincode → latitude/longitude → Haversine distance → nearest-first sorting.",
	}
	if emergency {
		lines = append(lines, "Emergency note: Critical symptoms detected. Please proceed immediately to the nearest emergency-capable hospital.")
	}
	lines = append(lines, "", "Top 5 nearest hospitals:")

	for i, hospital := range list {
		name := hospital.Name
		if name == "" {
			name = "Unnamed Hospital"
		}
		address := hospital.Address
		if address == "" {
			address = "Address details not available"
		}
		hospitalPincode := extractPincode(address)
		if hospitalPincode == "" {
			hospitalPincode = lookup.Pincode
		}
		if hospitalPincode == "" {
			hospitalPincode = "Not available"
		}

		lines = append(lines,
			fmt.Sprintf("%d. Hospital Name: %s", i+1, name),
			"   - Type: "+inferHospitalType(name),
			"   - Specialty: "+inferSpecialty(name),
			"   - Full Address: "+address,
			"   - Pincode: "+hospitalPincode,
			fmt.Sprintf("   - Distance in KM: %.2f", hospital.DistanceKm),
			"   - Contact: Not available",
		)
	}

	return strings.Join(lines, "\n")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
