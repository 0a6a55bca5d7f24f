package form

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"letraz-autoapply/pkg/models"
)

// ActionKind is what the filler does to a form control
type ActionKind int

const (
	// ActionSet assigns a value to an input, textarea or select
	ActionSet ActionKind = iota
	// ActionClick clicks a radio button
	ActionClick
)

// Action is one planned change to the current form step
type Action struct {
	Kind     ActionKind
	ID       string
	Value    string
	Question string
}

// ids of controls filled directly from the profile, not by question matching
var directFieldMarkers = []string{"phoneNumber", "city-HOME-CITY"}

// Plan reads the HTML of one form step and decides how to answer every
// question found in it. Questions the profile cannot answer are returned
// separately, in document order.
func Plan(html string, profile *models.ApplicantProfile) ([]Action, []string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse form HTML: %w", err)
	}

	labels := make(map[string]string)
	doc.Find("label[for]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("for")
		labels[id] = clean(s.Text())
	})

	var (
		actions    []Action
		unanswered []string
	)

	doc.Find("input[type='text'], input[type='number'], textarea").Each(func(_ int, s *goquery.Selection) {
		id, ok := s.Attr("id")
		if !ok || id == "" || isDirectField(id) {
			return
		}
		if v, _ := s.Attr("value"); strings.TrimSpace(v) != "" {
			return
		}
		question := labels[id]
		if question == "" {
			return
		}
		if answer, ok := textAnswer(question, profile); ok {
			actions = append(actions, Action{Kind: ActionSet, ID: id, Value: answer, Question: question})
			return
		}
		unanswered = append(unanswered, question)
	})

	doc.Find("select").Each(func(_ int, s *goquery.Selection) {
		id, ok := s.Attr("id")
		if !ok || id == "" {
			return
		}
		question := labels[id]
		if question == "" {
			return
		}
		answer, ok := choiceAnswer(question, profile, true)
		if !ok {
			unanswered = append(unanswered, question)
			return
		}
		value, ok := pickOption(s, answer)
		if !ok {
			unanswered = append(unanswered, question)
			return
		}
		actions = append(actions, Action{Kind: ActionSet, ID: id, Value: value, Question: question})
	})

	doc.Find("fieldset").Each(func(_ int, fs *goquery.Selection) {
		radios := fs.Find("input[type='radio']")
		if radios.Length() == 0 || radios.Filter("[checked]").Length() > 0 {
			return
		}
		question := clean(fs.Find("legend").First().Text())
		if question == "" {
			return
		}
		answer, ok := choiceAnswer(question, profile, false)
		if !ok {
			unanswered = append(unanswered, question)
			return
		}
		id, ok := pickRadio(radios, labels, answer)
		if !ok {
			unanswered = append(unanswered, question)
			return
		}
		actions = append(actions, Action{Kind: ActionClick, ID: id, Value: answer, Question: question})
	})

	return actions, unanswered, nil
}

func textAnswer(question string, p *models.ApplicantProfile) (string, bool) {
	if years, ok := lookup(question, p.YearsOfExperience); ok {
		return strconv.Itoa(years), true
	}
	if text, ok := lookup(question, p.TextFields); ok {
		return text, true
	}
	return "", false
}

// choiceAnswer resolves selects and radio groups. Language proficiency only
// applies to selects.
func choiceAnswer(question string, p *models.ApplicantProfile, isSelect bool) (string, bool) {
	q := strings.ToLower(question)
	if strings.Contains(q, "sponsor") {
		return yesNo(p.RequiresVisaSponsorship), true
	}
	if isSelect {
		if level, ok := lookup(question, p.LanguageProficiency); ok {
			return level, true
		}
	}
	if b, ok := lookup(question, p.Booleans); ok {
		return yesNo(b), true
	}
	if choice, ok := lookup(question, p.MultipleChoiceFields); ok {
		return choice, true
	}
	return "", false
}

func pickOption(sel *goquery.Selection, answer string) (string, bool) {
	var exact, partial string
	sel.Find("option").Each(func(_ int, o *goquery.Selection) {
		text := clean(o.Text())
		value, ok := o.Attr("value")
		if !ok {
			value = text
		}
		switch {
		case exact == "" && strings.EqualFold(text, answer):
			exact = value
		case partial == "" && containsFold(text, answer):
			partial = value
		}
	})
	if exact != "" {
		return exact, true
	}
	return partial, partial != ""
}

func pickRadio(radios *goquery.Selection, labels map[string]string, answer string) (string, bool) {
	var exact, partial string
	radios.Each(func(_ int, r *goquery.Selection) {
		id, _ := r.Attr("id")
		if id == "" {
			return
		}
		text := labels[id]
		if text == "" {
			text, _ = r.Attr("value")
		}
		switch {
		case exact == "" && strings.EqualFold(text, answer):
			exact = id
		case partial == "" && containsFold(text, answer):
			partial = id
		}
	})
	if exact != "" {
		return exact, true
	}
	return partial, partial != ""
}

// lookup finds the answer whose key occurs in question, preferring the
// longest key so "go" does not shadow "google cloud"
func lookup[V any](question string, answers map[string]V) (V, bool) {
	var zero V
	if len(answers) == 0 {
		return zero, false
	}
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		if strings.TrimSpace(k) != "" && containsFold(question, k) {
			return answers[k], true
		}
	}
	return zero, false
}

func isDirectField(id string) bool {
	for _, marker := range directFieldMarkers {
		if strings.Contains(id, marker) {
			return true
		}
	}
	return false
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
