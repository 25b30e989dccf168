package pregnancy

import (
	"strings"
	"testing"
)

func TestHasContext(t *testing.T) {
	service := NewService()

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"explicit pregnant", "I am pregnant and feeling weak", true},
		{"month phrasing", "7 months along, what should I eat", true},
		{"trimester phrasing", "second trimester backache remedies", true},
		{"uppercase", "PREGNANCY diet chart", true},
		{"unrelated", "fever and cough for three days", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := service.HasContext(tt.query); got != tt.want {
				t.Errorf("HasContext(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestExtractMonths(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"I am 7 months pregnant", 7},
		{"pregnant, 3 month mark", 3},
		{"around 30 weeks pregnant", 7},
		{"2 weeks pregnant", 1},
		{"39 weeks now", 9},
		{"pregnant and worried", 0},
	}

	for _, tt := range tests {
		if got := extractMonths(tt.query); got != tt.want {
			t.Errorf("extractMonths(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestBuildGuidanceStages(t *testing.T) {
	service := NewService()

	tests := []struct {
		name      string
		query     string
		wantStage string
	}{
		{"third trimester", "I am 7 months pregnant, what care do I need", "third trimester"},
		{"second trimester", "5 months pregnant with mild swelling", "second trimester"},
		{"weeks convert to months", "30 weeks pregnant", "third trimester"},
		{"no stage information", "pregnant, what should I avoid", "pregnancy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guidance := service.BuildGuidance(tt.query)
			if !strings.HasPrefix(guidance.Answer, "Pregnancy support ("+tt.wantStage+")") {
				t.Errorf("answer header = %q, want stage %q", strings.SplitN(guidance.Answer, "\n", 2)[0], tt.wantStage)
			}
		})
	}
}

func TestBuildGuidanceShape(t *testing.T) {
	service := NewService()

	guidance := service.BuildGuidance("8 months pregnant")

	if guidance.Confidence != 0.82 {
		t.Errorf("confidence = %v, want 0.82", guidance.Confidence)
	}
	if guidance.Source == "" {
		t.Error("expected non-empty source")
	}
	if len(guidance.NextSteps) != 3 {
		t.Fatalf("expected 3 next steps, got %d", len(guidance.NextSteps))
	}
	if !strings.Contains(guidance.NextSteps[1], "fetal movements") {
		t.Errorf("expected fetal movement step, got %q", guidance.NextSteps[1])
	}
}
