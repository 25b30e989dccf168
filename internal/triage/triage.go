// Package triage implements the first-pass emergency keyword scan. It is
// a short-circuit path: a critical result stops the rest of the cascade.
package triage

import (
	"sort"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/gramhealth/assistant/internal/domain"
	"github.com/gramhealth/assistant/internal/localization"
)

// redFlagKeywords lists the emergency phrases per language. The English
// list is always scanned as a fallback regardless of request language.
var redFlagKeywords = map[string][]string{
	"en": {
		"chest pain",
		"difficulty breathing",
		"shortness of breath",
		"unconscious",
		"seizure",
		"stroke",
		"severe bleeding",
		"suicidal",
	},
	"hi": {
		"सीने में दर्द",
		"सांस लेने में दिक्कत",
		"बेहोश",
		"दौरा",
		"स्ट्रोक",
		"ज्यादा खून",
	},
	"ta": {
		"மார்பு வலி",
		"மூச்சுத்திணறல்",
		"மயக்கம்",
		"fits",
		"பக்கவாதம்",
	},
	"te": {
		"ఛాతి నొప్పి",
		"శ్వాస తీసుకోవడంలో ఇబ్బంది",
		"అపస్మారక స్థితి",
		"ఫిట్స్",
		"స్ట్రోక్",
	},
	"bn": {
		"বুকে ব্যথা",
		"শ্বাসকষ্ট",
		"অজ্ঞান",
		"খিঁচুনি",
		"স্ট্রোক",
	},
}

type languageMatcher struct {
	matcher  *ahocorasick.Matcher
	keywords []string
}

// Scanner scans queries for red-flag phrases. One Aho-Corasick automaton
// per language is built at construction and shared across requests.
type Scanner struct {
	matchers map[string]*languageMatcher
}

// NewScanner builds the per-language automatons from the red-flag table.
func NewScanner() *Scanner {
	matchers := make(map[string]*languageMatcher, len(redFlagKeywords))
	for lang, keywords := range redFlagKeywords {
		lowered := make([]string, len(keywords))
		for i, kw := range keywords {
			lowered[i] = strings.ToLower(kw)
		}
		matchers[lang] = &languageMatcher{
			matcher:  ahocorasick.NewStringMatcher(lowered),
			keywords: lowered,
		}
	}
	return &Scanner{matchers: matchers}
}

// Assess scans the query for red-flag phrases in the requested language
// and in English. Any hit yields a critical result with deduplicated,
// sorted matched keywords and the three localized emergency steps.
func (s *Scanner) Assess(query, language string) domain.TriageResult {
	lowered := strings.ToLower(query)

	matched := make(map[string]struct{})
	for _, lang := range scanLanguages(language) {
		lm, ok := s.matchers[lang]
		if !ok {
			continue
		}
		for _, hit := range lm.matcher.Match([]byte(lowered)) {
			if hit < len(lm.keywords) {
				matched[lm.keywords[hit]] = struct{}{}
			}
		}
	}

	if len(matched) == 0 {
		return domain.TriageResult{
			IsCritical:      false,
			MatchedKeywords: []string{},
			NextSteps:       []string{localization.Localize(language, localization.KeyFollowUp)},
		}
	}

	keywords := make([]string, 0, len(matched))
	for kw := range matched {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)

	return domain.TriageResult{
		IsCritical:      true,
		MatchedKeywords: keywords,
		NextSteps: []string{
			localization.Localize(language, localization.KeyCriticalStep1),
			localization.Localize(language, localization.KeyCriticalStep2),
			localization.Localize(language, localization.KeyCriticalStep3),
		},
	}
}

func scanLanguages(language string) []string {
	if language == localization.DefaultLanguage {
		return []string{localization.DefaultLanguage}
	}
	return []string{language, localization.DefaultLanguage}
}
