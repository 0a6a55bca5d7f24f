package models

import (
	"strings"
	"time"
)

// AnyLanguage is the wildcard entry of SearchCriteria.Languages that accepts
// descriptions in every language.
const AnyLanguage = "any"

// Workplace selects which workplace types the search is restricted to
type Workplace struct {
	Remote bool `yaml:"remote" json:"remote"`
	OnSite bool `yaml:"on_site" json:"on_site"`
	Hybrid bool `yaml:"hybrid" json:"hybrid"`
}

// SearchCriteria describes one discovery run. It is read-only once built.
type SearchCriteria struct {
	Keywords           string    `yaml:"keywords" json:"keywords" validate:"required"`
	Location           string    `yaml:"location" json:"location"`
	Workplace          Workplace `yaml:"workplace" json:"workplace"`
	TitlePattern       string    `yaml:"job_title" json:"job_title" validate:"regexp"`
	DescriptionPattern string    `yaml:"job_description" json:"job_description" validate:"regexp"`
	Languages          []string  `yaml:"job_description_languages" json:"job_description_languages" validate:"dive,language"`
}

// AcceptsAnyLanguage reports whether Languages holds the wildcard. An empty
// list accepts nothing.
func (c SearchCriteria) AcceptsAnyLanguage() bool {
	for _, lang := range c.Languages {
		if strings.EqualFold(strings.TrimSpace(lang), AnyLanguage) {
			return true
		}
	}
	return false
}

// JobPosting is the unit yielded by discovery
type JobPosting struct {
	Link        string `json:"link"`
	Title       string `json:"title"`
	CompanyName string `json:"company_name"`
}

// SearchStats is a snapshot of the counters kept by a discovery cursor
type SearchStats struct {
	Seen    int    `json:"seen"`
	Matched int    `json:"matched"`
	Start   int    `json:"start"`
	GeoID   string `json:"geo_id"`
	Total   int    `json:"total"`
}

// ApplyOutcome is the terminal state of one application attempt
type ApplyOutcome int

const (
	OutcomeFailed ApplyOutcome = iota
	OutcomeNoEasyApply
	OutcomeDryRun
	OutcomeSubmitted
)

// String returns the string representation of the outcome
func (o ApplyOutcome) String() string {
	switch o {
	case OutcomeNoEasyApply:
		return "no_easy_apply"
	case OutcomeDryRun:
		return "dry_run"
	case OutcomeSubmitted:
		return "submitted"
	default:
		return "failed"
	}
}

func (o ApplyOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *ApplyOutcome) UnmarshalText(text []byte) error {
	*o = ParseApplyOutcome(string(text))
	return nil
}

// ParseApplyOutcome is the inverse of ApplyOutcome.String
func ParseApplyOutcome(s string) ApplyOutcome {
	switch s {
	case "no_easy_apply":
		return OutcomeNoEasyApply
	case "dry_run":
		return OutcomeDryRun
	case "submitted":
		return OutcomeSubmitted
	default:
		return OutcomeFailed
	}
}

// ApplicationRecord is what the applied-postings ledger stores per attempt
type ApplicationRecord struct {
	JobID       string       `json:"job_id"`
	Link        string       `json:"link"`
	Title       string       `json:"title"`
	Company     string       `json:"company"`
	Outcome     ApplyOutcome `json:"outcome"`
	Error       string       `json:"error,omitempty"`
	RunID       string       `json:"run_id"`
	AttemptedAt time.Time    `json:"attempted_at"`
}
