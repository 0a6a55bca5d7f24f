package language

import (
	"errors"
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
)

// Any is the wildcard accepted wherever a language name is expected
const Any = "any"

// minLetters is the shortest text, in letters, that is worth classifying
const minLetters = 20

// ErrUndetermined is returned when the text is too short or too ambiguous
var ErrUndetermined = errors.New("language could not be determined")

// Guess is one ranked detection result. Name is the lowercase English name
// ("english", "german"), Code the ISO 639-1 code when one exists.
type Guess struct {
	Name  string
	Code  string
	Score float64
}

// Detector guesses the natural language of a text
type Detector interface {
	Detect(text string, topN int) ([]Guess, error)
}

// WhatlangDetector is a Detector backed by whatlanggo's trigram models
type WhatlangDetector struct {
	options whatlanggo.Options
}

// NewDetector returns the default detector
func NewDetector() *WhatlangDetector {
	return &WhatlangDetector{}
}

// Detect returns at most topN guesses, best first. whatlanggo produces a
// single guess, so the result has length one on success.
func (d *WhatlangDetector) Detect(text string, topN int) ([]Guess, error) {
	if topN <= 0 || countLetters(text) < minLetters {
		return nil, ErrUndetermined
	}

	info := whatlanggo.DetectWithOptions(text, d.options)
	name := strings.ToLower(info.Lang.String())
	if name == "" || info.Confidence <= 0 {
		return nil, ErrUndetermined
	}

	return []Guess{{
		Name:  name,
		Code:  info.Lang.Iso6391(),
		Score: info.Confidence,
	}}, nil
}

// Matches reports whether guess is one of the accepted names or codes
func (g Guess) Matches(accepted []string) bool {
	for _, a := range accepted {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == g.Name || (g.Code != "" && a == g.Code) {
			return true
		}
	}
	return false
}

// IsKnown reports whether s names a language the detector can produce,
// either by English name or ISO 639-1 code, or is the "any" wildcard
func IsKnown(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == Any {
		return true
	}
	for lang, name := range whatlanggo.Langs {
		if strings.ToLower(name) == s || lang.Iso6391() == s {
			return true
		}
	}
	return false
}

func countLetters(text string) int {
	n := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
