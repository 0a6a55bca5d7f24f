package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLinkedInURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantType LinkedInURLType
		wantID   string
	}{
		{
			name:     "job view with tracking params",
			url:      "https://www.linkedin.com/jobs/view/3912345678/?eBP=abc&trackingId=xyz",
			wantType: LinkedInURLTypeJobView,
			wantID:   "3912345678",
		},
		{
			name:     "job view with slug",
			url:      "https://www.linkedin.com/jobs/view/senior-go-engineer-at-acme-3912345678",
			wantType: LinkedInURLTypeJobView,
			wantID:   "3912345678",
		},
		{
			name:     "collection with current job",
			url:      "https://www.linkedin.com/jobs/collections/recommended/?currentJobId=42",
			wantType: LinkedInURLTypeJobCollection,
			wantID:   "42",
		},
		{
			name:     "search with current job",
			url:      "https://www.linkedin.com/jobs/search/?currentJobId=77&keywords=go",
			wantType: LinkedInURLTypeJobCollection,
			wantID:   "77",
		},
		{
			name:     "profile page",
			url:      "https://www.linkedin.com/in/someone",
			wantType: LinkedInURLTypeNonJob,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseLinkedInURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, info.Type)
			assert.Equal(t, tt.wantID, info.JobID)
		})
	}
}

func TestParseLinkedInURL_RejectsOtherHosts(t *testing.T) {
	_, err := ParseLinkedInURL("https://example.com/jobs/view/1")
	assert.Error(t, err)
}

func TestJobKey(t *testing.T) {
	assert.Equal(t, "123", JobKey("https://www.linkedin.com/jobs/view/123/?refId=a"))
	assert.Equal(t, "https://jobs.example.com/p/9", JobKey("https://Jobs.Example.com/p/9/?utm_source=x#top"))
}

func TestTierOf(t *testing.T) {
	assert.True(t, IsHard(NewSubmitNotFoundError("https://x")))
	assert.True(t, IsSoft(NewNoEasyApplyError("https://x", nil)))
	assert.True(t, IsFatal(NewSearchSetupError("no geoId", nil)))
	assert.False(t, IsFatal(nil))
	assert.Equal(t, "Submit button not found: https://x", NewSubmitNotFoundError("https://x").Error())
}
