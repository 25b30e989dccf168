package assistant

import (
	"context"
	"strings"
	"testing"
)

func TestTopicFromQuery(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"What is the treatment for dengue fever?", "treatment dengue fever"},
		{"I have fever cough headache vomiting weakness", "fever cough headache vomiting"},
		{"is it ok", "your health concern"},
		{"", "your health concern"},
	}

	for _, tt := range tests {
		if got := topicFromQuery(tt.query); got != tt.want {
			t.Errorf("topicFromQuery(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestDeriveAgeGroup(t *testing.T) {
	age := func(n int) *int { return &n }

	tests := []struct {
		name     string
		query    string
		ageYears *int
		want     string
	}{
		{"explicit field wins", "my 70 year old mother", age(8), "Child (0–12)"},
		{"age phrase in query", "I am 65 years old with joint pain", nil, "Elderly (60+)"},
		{"age with yo suffix", "fever in a 10 yo", nil, "Child (0–12)"},
		{"vocabulary newborn", "my newborn is not feeding", nil, "Child (0–12)"},
		{"vocabulary teen", "my teen daughter feels dizzy", nil, "Teen (13–18)"},
		{"vocabulary elderly", "elderly patient with weakness", nil, "Elderly (60+)"},
		{"default adult", "I have fever", nil, "Adult (19–59)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveAgeGroup(tt.query, tt.ageYears); got != tt.want {
				t.Errorf("deriveAgeGroup(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestExtractPincode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hospitals near 560001 please", "560001"},
		{"pin 110001, Delhi", "110001"},
		{"number 012345 is not a pincode", ""},
		{"1234567 is too long", ""},
		{"no digits here", ""},
	}

	for _, tt := range tests {
		if got := extractPincode(tt.input); got != tt.want {
			t.Errorf("extractPincode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestInferHospitalType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"District Hospital Shivajinagar", "Government"},
		{"AIIMS Delhi", "Government"},
		{"Apollo Hospital", "Private"},
		{"Govt Maternity Home", "Government"},
	}

	for _, tt := range tests {
		if got := inferHospitalType(tt.name); got != tt.want {
			t.Errorf("inferHospitalType(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestInferSpecialty(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Kidwai Cancer Institute", "Oncology"},
		{"Narayana Heart Centre", "Cardiology"},
		{"City Eye Hospital", "Ophthalmology"},
		{"General Hospital", "General"},
	}

	for _, tt := range tests {
		if got := inferSpecialty(tt.name); got != tt.want {
			t.Errorf("inferSpecialty(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestFormatMedicalGuidanceSections(t *testing.T) {
	answer := formatMedicalGuidance(guidanceInput{
		ConditionName:    "Dengue Fever",
		AgeGroup:         "Adult (19–59)",
		Overview:         "Mosquito-borne viral fever.",
		TreatmentSummary: "Supportive care with fluids.",
	})

	sections := []string{
		"MEDICAL GUIDANCE SECTION",
		"1. Condition Overview",
		"2. How it affects this age group",
		"3. Common treatment approaches (categories only)",
		"4. Medicine types commonly used (no dosage)",
		"5. Lifestyle recommendations",
		"6. What to avoid",
		"7. Warning signs requiring emergency care",
		"8. Emotional and mental health support advice",
	}
	for _, section := range sections {
		if !strings.Contains(answer, section) {
			t.Errorf("answer missing section %q", section)
		}
	}

	// Empty lists render their defaults.
	if !strings.Contains(answer, "Doctor-guided medicine choice after confirmed diagnosis.") {
		t.Error("expected default medicine entry")
	}
	if !strings.Contains(answer, "Severe breathing difficulty or altered consciousness.") {
		t.Error("expected default red flag entry")
	}
}

func TestBuildHospitalSectionWithoutLocator(t *testing.T) {
	a := newTestAssistant()

	if got := a.buildHospitalSection(context.Background(), "hospitals near 110001", "", false); got != "" {
		t.Errorf("expected empty section without a locator, got %q", got)
	}
}

func TestRound2(t *testing.T) {
	if got := round2(0.8765); got != 0.88 {
		t.Errorf("round2(0.8765) = %v", got)
	}
	if got := round2(0.994); got != 0.99 {
		t.Errorf("round2(0.994) = %v", got)
	}
}
