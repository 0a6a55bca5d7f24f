package linkedin

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"letraz-autoapply/pkg/models"
)

const (
	// DefaultBaseURL is the site root used when none is configured
	DefaultBaseURL = "https://www.linkedin.com"

	jobsPath   = "/jobs"
	searchPath = "/jobs/search"
)

// ErrNoResultCount is returned when the result-count text holds no number
var ErrNoResultCount = errors.New("result count text has no leading number")

// SearchQuery is the set of parameters for one results page
type SearchQuery struct {
	Keywords  string
	Location  string
	Start     int
	WorkTypes string
	GeoID     string
}

// Values encodes the query. f_WT is always present, possibly empty, and
// f_AL restricts results to easy-apply postings.
func (q SearchQuery) Values() url.Values {
	v := url.Values{}
	v.Set("keywords", q.Keywords)
	v.Set("location", q.Location)
	v.Set("start", strconv.Itoa(q.Start))
	v.Set("f_WT", q.WorkTypes)
	v.Set("f_AL", "true")
	if q.GeoID != "" {
		v.Set("geoId", q.GeoID)
	}
	return v
}

// BuildURL joins base and path and replaces the query with params
func BuildURL(base, path string, params url.Values) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + path)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

// JobsURL is the landing page holding the search form
func JobsURL(base string) string {
	return strings.TrimRight(base, "/") + jobsPath
}

// SearchURL builds the results page URL for q
func SearchURL(base string, q SearchQuery) (string, error) {
	return BuildURL(base, searchPath, q.Values())
}

// WorkTypeFilter encodes the selected workplace types as LinkedIn's f_WT
// codes (on-site 1, remote 2, hybrid 3), comma separated
func WorkTypeFilter(w models.Workplace) string {
	codes := make([]string, 0, 3)
	for i, selected := range []bool{w.OnSite, w.Remote, w.Hybrid} {
		if selected {
			codes = append(codes, strconv.Itoa(i+1))
		}
	}
	return strings.Join(codes, ",")
}

// GeoIDFromURL returns the geoId query parameter of raw, or ""
func GeoIDFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Query().Get("geoId")
}

// ParseResultCount reads the leading integer of texts like "1,234 results",
// ignoring thousands separators
func ParseResultCount(text string) (int, error) {
	s := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("%w: %q", ErrNoResultCount, text)
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, fmt.Errorf("parse result count %q: %w", text, err)
	}
	return n, nil
}
