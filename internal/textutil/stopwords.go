package textutil

// DiseaseStopwords is tuned for disease/medical query language: besides
// common function words it strips treatment-seeking vocabulary so that
// "treatment for malaria" and "malaria" score against the same record
// tokens.
var DiseaseStopwords = NewSet([]string{
	"a", "an", "the", "and", "or", "for", "to", "of", "in", "on", "with",
	"my", "me", "i", "am", "is", "are", "do", "does", "what", "why",
	"how", "can", "should", "please", "about", "need", "help", "have",
	"has", "had", "from", "this", "that", "it", "be",
	"treatment", "medicine", "medicines", "remedy", "remedies", "care",
	"cure", "manage", "management", "disease", "diseases", "symptom",
	"symptoms",
})

// RetrievalStopwords is the general-purpose set used by the knowledge
// retriever. Treatment vocabulary is kept because knowledge documents
// legitimately match on it.
var RetrievalStopwords = NewSet([]string{
	"a", "an", "the", "and", "or", "for", "to", "of", "in", "on", "with",
	"my", "me", "i", "am", "is", "are", "was", "were", "be", "been",
	"being", "what", "how", "why", "when", "where", "can", "should",
	"could", "would", "please", "about", "need", "help", "have", "has",
	"had", "this", "that", "it", "from",
})
