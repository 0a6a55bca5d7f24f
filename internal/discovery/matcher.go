package discovery

import (
	"fmt"
	"regexp"

	"letraz-autoapply/internal/language"
	"letraz-autoapply/pkg/models"
)

// Rejection reasons reported by Matcher.Match
const (
	RejectTitle       = "title"
	RejectDescription = "description"
	RejectLanguage    = "language"
)

// Matcher applies the title, description and language filters of a search
type Matcher struct {
	title       *regexp.Regexp
	description *regexp.Regexp
	languages   []string
	anyLanguage bool
	detector    language.Detector
}

// NewMatcher compiles the criteria patterns case-insensitively
func NewMatcher(criteria models.SearchCriteria, detector language.Detector) (*Matcher, error) {
	title, err := regexp.Compile("(?i)" + criteria.TitlePattern)
	if err != nil {
		return nil, fmt.Errorf("invalid job title pattern: %w", err)
	}
	description, err := regexp.Compile("(?i)" + criteria.DescriptionPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid job description pattern: %w", err)
	}
	if detector == nil {
		detector = language.NewDetector()
	}

	return &Matcher{
		title:       title,
		description: description,
		languages:   criteria.Languages,
		anyLanguage: criteria.AcceptsAnyLanguage(),
		detector:    detector,
	}, nil
}

// Match reports whether a posting passes every filter, and if not, which
// filter rejected it first
func (m *Matcher) Match(title, description string) (bool, string) {
	if !m.title.MatchString(title) {
		return false, RejectTitle
	}
	if !m.description.MatchString(description) {
		return false, RejectDescription
	}
	if !m.matchesLanguage(description) {
		return false, RejectLanguage
	}
	return true, ""
}

// Undetectable text never matches an explicit language list
func (m *Matcher) matchesLanguage(description string) bool {
	if m.anyLanguage {
		return true
	}
	guesses, err := m.detector.Detect(description, 1)
	if err != nil || len(guesses) == 0 {
		return false
	}
	return guesses[0].Matches(m.languages)
}
