package retriever

import (
	"testing"

	"github.com/gramhealth/assistant/internal/domain"
)

func testCorpus() []domain.KnowledgeDocument {
	return []domain.KnowledgeDocument{
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
		{
			ID:       "kn-diabetes-diet-hi",
			Title:    "Diabetes Diet Guidance",
			Category: "chronic",
			Language: "hi",
			Content:  "Prefer whole grains, vegetables, and regular meal timing to keep blood sugar stable.",
			Source:   "National Health Portal",
		},
	}
}

func TestSearchRanksOverlapWithBoosts(t *testing.T) {
	r := New(testCorpus(), nil)

	results := r.Search("I have headache and fever for 2 days", "en", 3)
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if results[0].Document.ID != "kn-fever-home-care" {
		t.Errorf("expected kn-fever-home-care first, got %s", results[0].Document.ID)
	}
	if results[0].Score < 0.3 || results[0].Score > 0.99 {
		t.Errorf("unexpected score %v", results[0].Score)
	}
}

func TestSearchLanguageBoostBreaksTies(t *testing.T) {
	r := New(testCorpus(), nil)

	// The Hindi translation carries identical tokens; the language boost
	// decides the order.
	results := r.Search("diabetes diet", "hi", 2)
	if len(results) < 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Document.ID != "kn-diabetes-diet-hi" {
		t.Errorf("expected Hindi document first, got %s", results[0].Document.ID)
	}
}

func TestSearchGibberishBelowFloor(t *testing.T) {
	r := New(testCorpus(), nil)

	if results := r.Search("xyzzy plugh asdf", "en", 3); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestSearchLongQuerySingleTokenIsNoise(t *testing.T) {
	r := New(testCorpus(), nil)

	// Five content tokens sharing only "vegetables" with the diet document.
	results := r.Search("growing vegetables during rainy season planting", "en", 3)
	for _, result := range results {
		if result.Document.ID == "kn-diabetes-diet" {
			t.Errorf("single incidental token should not retrieve the diet document (score %v)", result.Score)
		}
	}
}

func TestSearchTopKCap(t *testing.T) {
	r := New(testCorpus(), nil)

	results := r.Search("diabetes diet guidance", "en", 1)
	if len(results) != 1 {
		t.Errorf("expected topK to cap results at 1, got %d", len(results))
	}

	// Non-positive topK falls back to the default of 3.
	results = r.Search("diabetes diet guidance", "en", 0)
	if len(results) == 0 || len(results) > 3 {
		t.Errorf("expected default topK behavior, got %d results", len(results))
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	r := New(testCorpus(), nil)

	if results := r.Search("what is the", "en", 3); results != nil {
		t.Errorf("expected nil for stopword-only query, got %d results", len(results))
	}
}
