package utils

import (
	"errors"
	"fmt"
)

// ErrorTier classifies how far an error should propagate
type ErrorTier int

const (
	// TierFatal ends the whole run
	TierFatal ErrorTier = iota
	// TierSoft skips the current unit and lets the outer loop continue
	TierSoft
	// TierHard fails the current application attempt and is surfaced to its caller
	TierHard
)

// String returns the string representation of the tier
func (t ErrorTier) String() string {
	switch t {
	case TierFatal:
		return "fatal"
	case TierSoft:
		return "soft"
	case TierHard:
		return "hard"
	default:
		return "unknown"
	}
}

// CustomError represents a custom application error
type CustomError struct {
	Tier    ErrorTier `json:"tier"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
	Err     error     `json:"-"`
}

func (e *CustomError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// Search errors
func NewSearchSetupError(detail string, err error) *CustomError {
	return &CustomError{
		Tier:    TierFatal,
		Message: "Job search setup failed",
		Detail:  detail,
		Err:     err,
	}
}

// NewResultsPageError is returned when a results page cannot be loaded mid-run
func NewResultsPageError(url string, err error) *CustomError {
	return &CustomError{
		Tier:    TierFatal,
		Message: "Results page could not be loaded",
		Detail:  url,
		Err:     err,
	}
}

func NewExtractionError(detail string, err error) *CustomError {
	return &CustomError{
		Tier:    TierSoft,
		Message: "Job listing extraction failed",
		Detail:  detail,
		Err:     err,
	}
}

// Application errors
func NewNoEasyApplyError(link string, err error) *CustomError {
	return &CustomError{
		Tier:    TierSoft,
		Message: "Easy apply button not found",
		Detail:  link,
		Err:     err,
	}
}

// NewPostingLoadError is returned when a posting page cannot be opened
func NewPostingLoadError(link string, err error) *CustomError {
	return &CustomError{
		Tier:    TierHard,
		Message: "Job posting could not be loaded",
		Detail:  link,
		Err:     err,
	}
}

// NewSubmitNotFoundError is returned when the form never reached a submittable state
func NewSubmitNotFoundError(link string) *CustomError {
	return &CustomError{
		Tier:    TierHard,
		Message: "Submit button not found",
		Detail:  link,
	}
}

func NewSubmitError(link string, err error) *CustomError {
	return &CustomError{
		Tier:    TierHard,
		Message: "Submitting application failed",
		Detail:  link,
		Err:     err,
	}
}

func NewValidationError(detail string) *CustomError {
	return &CustomError{
		Tier:    TierFatal,
		Message: "Validation failed",
		Detail:  detail,
	}
}

// TierOf returns the tier of the first CustomError in err's chain.
// Errors that are not CustomErrors are treated as fatal.
func TierOf(err error) ErrorTier {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Tier
	}
	return TierFatal
}

func IsFatal(err error) bool { return err != nil && TierOf(err) == TierFatal }
func IsSoft(err error) bool  { return err != nil && TierOf(err) == TierSoft }
func IsHard(err error) bool  { return err != nil && TierOf(err) == TierHard }
