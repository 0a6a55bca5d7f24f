package discovery

import (
	"time"

	"letraz-autoapply/internal/config"
	"letraz-autoapply/internal/linkedin"
)

// Options tunes a Cursor. Zero fields fall back to DefaultOptions.
type Options struct {
	BaseURL            string
	PageCap            int
	PageDelay          time.Duration
	NavigationTimeout  time.Duration
	DescriptionTimeout time.Duration
	SetupTimeout       time.Duration
	Selectors          linkedin.SelectorSet
}

// DefaultOptions returns the pacing and limits used against the live site
func DefaultOptions() Options {
	return Options{
		BaseURL:            linkedin.DefaultBaseURL,
		PageCap:            2,
		PageDelay:          2 * time.Second,
		NavigationTimeout:  60 * time.Second,
		DescriptionTimeout: 10 * time.Second,
		SetupTimeout:       30 * time.Second,
		Selectors:          linkedin.Selectors,
	}
}

// OptionsFromConfig maps the search section of cfg onto Options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BaseURL:            cfg.Search.BaseURL,
		PageCap:            cfg.Search.PageCap,
		PageDelay:          cfg.Search.PageDelay,
		NavigationTimeout:  cfg.Browser.NavigationTimeout,
		DescriptionTimeout: cfg.Search.DescriptionTimeout,
		SetupTimeout:       cfg.Search.SetupTimeout,
		Selectors:          linkedin.Selectors,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BaseURL == "" {
		o.BaseURL = d.BaseURL
	}
	if o.PageCap <= 0 {
		o.PageCap = d.PageCap
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = d.NavigationTimeout
	}
	if o.DescriptionTimeout <= 0 {
		o.DescriptionTimeout = d.DescriptionTimeout
	}
	if o.SetupTimeout <= 0 {
		o.SetupTimeout = d.SetupTimeout
	}
	if o.Selectors == (linkedin.SelectorSet{}) {
		o.Selectors = d.Selectors
	}
	return o
}
