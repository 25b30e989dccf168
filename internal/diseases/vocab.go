package diseases

import "github.com/gramhealth/assistant/internal/textutil"

// queryTokenExpansions maps lay query tokens to the clinical vocabulary
// used by imported classification entries.
var queryTokenExpansions = map[string][]string{
	"blood":    {"hematologic", "haematologic", "leukemia", "leukaemia"},
	"kidney":   {"renal"},
	"stone":    {"calculus", "nephrolithiasis"},
	"ear":      {"hearing", "otitis"},
	"heart":    {"cardiac"},
	"bp":       {"pressure", "hypertension"},
	"sugar":    {"diabetes"},
	"cancer":   {"neoplasm", "malignant", "malignancy", "tumor", "tumour", "oncology"},
	"tumor":    {"tumour", "neoplasm", "cancer"},
	"tumour":   {"tumor", "neoplasm", "cancer"},
	"pregnant": {"pregnancy"},
}

var oncologyTerms = textutil.NewSet([]string{
	"cancer", "neoplasm", "tumor", "tumour", "oncology", "malignant", "malignancy",
})

// nonspecificLabels are symptom names that exist as ICD entries but are
// not actionable diagnoses on their own.
var nonspecificLabels = textutil.NewSet([]string{
	"pain", "chest pain", "abdominal pain", "cough", "fever", "headache",
	"nausea", "vomiting", "dizziness", "fatigue", "weakness", "palpitations",
})

// contextualNameMarkers identify history-of/follow-up/screening
// administrative codes.
var contextualNameMarkers = []string{
	"fear of",
	"follow-up",
	"follow up",
	"history of",
	"screening for",
	"contact with",
	"encounter for",
	"counselling",
	"counseling",
}

// treatmentIntentWords mark queries asking how to treat rather than what
// something is.
var treatmentIntentWords = textutil.NewSet([]string{
	"treatment", "medicine", "medicines", "drug", "drugs", "remedy",
	"remedies", "care", "cure", "manage", "management",
})

// lookupIntentWords mark general medical-lookup phrasing; used by the
// cascade to accept a match the query did not name verbatim.
var lookupIntentWords = textutil.NewSet([]string{
	"disease", "condition", "diagnosis", "treatment", "medicine",
	"medicines", "drug", "drugs", "remedy", "remedies", "cancer",
	"infection", "syndrome", "icd",
})

// diagnosticIntentTerms gate nonspecific symptom-label records: the user
// has to ask for the entry explicitly.
var diagnosticIntentTerms = []string{"disease", "diagnosis", "condition", "icd", "code"}

// lowSignalMarkers are the placeholder guidance phrases the ICD importer
// writes for entries with no usable treatment text.
var lowSignalMarkers = []string{
	"management depends on confirmed diagnosis",
	"care depends on clinical severity",
	"symptom-based entries indicate the need for structured clinical evaluation",
}
