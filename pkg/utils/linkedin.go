package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// LinkedInURLType represents the type of LinkedIn URL
type LinkedInURLType int

const (
	LinkedInURLTypeJobView       LinkedInURLType = iota + 1 // /jobs/view/123 or /jobs/view/some-slug-123
	LinkedInURLTypeJobCollection                             // /jobs/collections/...?currentJobId=123, /jobs/search/?currentJobId=123
	LinkedInURLTypeNonJob
)

// LinkedInURLInfo contains information about a parsed LinkedIn URL
type LinkedInURLInfo struct {
	Type      LinkedInURLType
	JobID     string
	PublicURL string
}

var (
	jobViewRegex = regexp.MustCompile(`^/jobs/view/(?:[^/]*-)?(\d+)/?$`)
	jobIDRegex   = regexp.MustCompile(`^\d+$`)
)

// IsLinkedInURL checks if a URL is a LinkedIn URL
func IsLinkedInURL(urlStr string) bool {
	if urlStr == "" {
		return false
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	hostname := strings.ToLower(parsedURL.Hostname())
	return hostname == "linkedin.com" || strings.HasSuffix(hostname, ".linkedin.com")
}

// ParseLinkedInURL analyzes a LinkedIn URL and returns its type and job ID
func ParseLinkedInURL(urlStr string) (*LinkedInURLInfo, error) {
	if !IsLinkedInURL(urlStr) {
		return nil, fmt.Errorf("not a LinkedIn URL: %s", urlStr)
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	path := strings.ToLower(parsedURL.Path)
	info := &LinkedInURLInfo{Type: LinkedInURLTypeNonJob}

	if matches := jobViewRegex.FindStringSubmatch(path); len(matches) > 1 {
		info.Type = LinkedInURLTypeJobView
		info.JobID = matches[1]
		info.PublicURL = PublicJobURL(info.JobID)
		return info, nil
	}

	if strings.HasPrefix(path, "/jobs/collections/") || strings.HasPrefix(path, "/jobs/search") {
		if currentJobID := parsedURL.Query().Get("currentJobId"); jobIDRegex.MatchString(currentJobID) {
			info.Type = LinkedInURLTypeJobCollection
			info.JobID = currentJobID
			info.PublicURL = PublicJobURL(info.JobID)
		}
	}

	return info, nil
}

// PublicJobURL returns the canonical view URL for a job ID
func PublicJobURL(jobID string) string {
	return fmt.Sprintf("https://www.linkedin.com/jobs/view/%s/", jobID)
}

// ExtractLinkedInJobID extracts the job ID from a LinkedIn job URL
func ExtractLinkedInJobID(urlStr string) (string, error) {
	info, err := ParseLinkedInURL(urlStr)
	if err != nil {
		return "", err
	}

	if info.JobID == "" {
		return "", fmt.Errorf("no job ID found in LinkedIn URL: %s", urlStr)
	}

	return info.JobID, nil
}

// JobKey returns a stable identifier for a posting link: the LinkedIn job ID
// when one can be extracted, otherwise the link without query or fragment.
func JobKey(link string) string {
	if id, err := ExtractLinkedInJobID(link); err == nil {
		return id
	}

	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return strings.TrimSpace(link)
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	return strings.TrimSuffix(u.String(), "/")
}
