// Package schemes matches queries about government health schemes. A
// two-phase gate keeps symptom-described queries that merely mention an
// insurance word from being routed here.
package schemes

import (
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/gramhealth/assistant/internal/domain"
)

// Scheme answers carry a fixed confidence: catalog content is verified,
// but the match is keyword-level, not an eligibility decision.
const matchConfidence = 0.88

const (
	maxFormattedMatches  = 2
	maxStepsPerScheme    = 2
	maxNextSteps         = 3
	genericFallbackCount = 2
)

// schemeIntentWords signal that the user is asking about scheme access,
// coverage or enrollment.
var schemeIntentWords = []string{
	"scheme", "insurance", "card", "benefit", "yojana", "eligibility",
	"apply", "registration", "cashless", "pmjay", "ayushman",
	"esanjeevani", "jsy", "pmmvy",
}

// clinicalIntentWords signal that the query describes symptoms; such
// queries stay in the medical cascade unless the user literally asks
// about a "scheme" or "yojana".
var clinicalIntentWords = []string{
	"pain", "fever", "bleeding", "vomiting", "headache", "swelling",
	"dizziness", "breath", "symptom", "month", "weeks", "pregnant",
	"pregnancy", "sugar", "bp",
}

// Service matches queries against the scheme catalog. The catalog and
// the keyword automatons are immutable after construction.
type Service struct {
	schemes        []domain.Scheme
	intentMatcher  *ahocorasick.Matcher
	clinicMatcher  *ahocorasick.Matcher
	keywordMatcher *ahocorasick.Matcher
	keywordScheme  []int // keyword index -> scheme index
}

// NewService builds the keyword automatons from the catalog.
func NewService(schemes []domain.Scheme) *Service {
	var keywords []string
	var keywordScheme []int
	for idx, scheme := range schemes {
		for _, kw := range scheme.Keywords {
			normalized := strings.ToLower(strings.TrimSpace(kw))
			if normalized == "" {
				continue
			}
			keywords = append(keywords, normalized)
			keywordScheme = append(keywordScheme, idx)
		}
	}

	return &Service{
		schemes:        schemes,
		intentMatcher:  ahocorasick.NewStringMatcher(schemeIntentWords),
		clinicMatcher:  ahocorasick.NewStringMatcher(clinicalIntentWords),
		keywordMatcher: ahocorasick.NewStringMatcher(keywords),
		keywordScheme:  keywordScheme,
	}
}

// Schemes returns the full catalog in order.
func (s *Service) Schemes() []domain.Scheme {
	return s.schemes
}

// HasSchemeIntent reports whether the query is about scheme access. A
// scheme word must be present; if clinical vocabulary is also present the
// intent is suppressed unless the query literally says "scheme" or
// "yojana".
func (s *Service) HasSchemeIntent(query string) bool {
	lowered := strings.ToLower(query)

	if len(s.intentMatcher.Match([]byte(lowered))) == 0 {
		return false
	}
	if len(s.clinicMatcher.Match([]byte(lowered))) == 0 {
		return true
	}
	return strings.Contains(lowered, "scheme") || strings.Contains(lowered, "yojana")
}

// Search returns the schemes whose keywords appear in the query, in
// catalog order. When scheme intent is present but no keyword matched,
// the first two schemes are returned as a generic fallback.
func (s *Service) Search(query string) []domain.Scheme {
	lowered := strings.ToLower(query)

	matchedIdx := make(map[int]struct{})
	for _, hit := range s.keywordMatcher.Match([]byte(lowered)) {
		if hit < len(s.keywordScheme) {
			matchedIdx[s.keywordScheme[hit]] = struct{}{}
		}
	}

	if len(matchedIdx) > 0 {
		matches := make([]domain.Scheme, 0, len(matchedIdx))
		for idx, scheme := range s.schemes {
			if _, ok := matchedIdx[idx]; ok {
				matches = append(matches, scheme)
			}
		}
		return matches
	}

	if s.HasSchemeIntent(query) {
		n := genericFallbackCount
		if n > len(s.schemes) {
			n = len(s.schemes)
		}
		return s.schemes[:n]
	}

	return nil
}

// FormatResponse builds the answer text, next steps and source entries
// for up to two matched schemes.
func (s *Service) FormatResponse(matches []domain.Scheme, language string) (string, []string, []domain.SourceItem) {
	if len(matches) > maxFormattedMatches {
		matches = matches[:maxFormattedMatches]
	}

	var answerLines []string
	var nextSteps []string
	var sources []domain.SourceItem

	for _, scheme := range matches {
		answerLines = append(answerLines, scheme.Name+": "+scheme.Summary(language))

		steps := scheme.NextSteps
		if len(steps) > maxStepsPerScheme {
			steps = steps[:maxStepsPerScheme]
		}
		for _, step := range steps {
			if !containsString(nextSteps, step) {
				nextSteps = append(nextSteps, step)
			}
		}

		source := scheme.Source
		if source == "" {
			source = "Government Scheme Repository"
		}
		sources = append(sources, domain.SourceItem{
			Title:  scheme.Name,
			Source: source,
			Score:  matchConfidence,
		})
	}

	if len(nextSteps) > maxNextSteps {
		nextSteps = nextSteps[:maxNextSteps]
	}

	return strings.Join(answerLines, "\n"), nextSteps, sources
}

// Confidence returns the fixed confidence assigned to scheme answers.
func (s *Service) Confidence() float64 {
	return matchConfidence
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
