package linkedin

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"letraz-autoapply/pkg/models"
)

func TestWorkTypeFilter(t *testing.T) {
	tests := []struct {
		name string
		in   models.Workplace
		want string
	}{
		{"none", models.Workplace{}, ""},
		{"remote only", models.Workplace{Remote: true}, "2"},
		{"on-site and hybrid", models.Workplace{OnSite: true, Hybrid: true}, "1,3"},
		{"all", models.Workplace{Remote: true, OnSite: true, Hybrid: true}, "1,2,3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WorkTypeFilter(tt.in))
		})
	}
}

func TestSearchURL(t *testing.T) {
	raw, err := SearchURL("https://www.linkedin.com/", SearchQuery{
		Keywords:  "go engineer",
		Location:  "Berlin",
		Start:     25,
		WorkTypes: "2",
		GeoID:     "101",
	})
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "www.linkedin.com", u.Host)
	assert.Equal(t, "/jobs/search", u.Path)

	q := u.Query()
	assert.Equal(t, "go engineer", q.Get("keywords"))
	assert.Equal(t, "Berlin", q.Get("location"))
	assert.Equal(t, "25", q.Get("start"))
	assert.Equal(t, "2", q.Get("f_WT"))
	assert.Equal(t, "true", q.Get("f_AL"))
	assert.Equal(t, "101", q.Get("geoId"))
}

func TestSearchURL_OmitsEmptyGeoIDButKeepsWorkType(t *testing.T) {
	raw, err := SearchURL(DefaultBaseURL, SearchQuery{Keywords: "go"})
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.False(t, q.Has("geoId"))
	assert.True(t, q.Has("f_WT"))
	assert.Equal(t, "0", q.Get("start"))
}

func TestGeoIDFromURL(t *testing.T) {
	assert.Equal(t, "90009", GeoIDFromURL("https://www.linkedin.com/jobs/search/?geoId=90009&keywords=go"))
	assert.Equal(t, "", GeoIDFromURL("https://www.linkedin.com/jobs/"))
}

func TestParseResultCount(t *testing.T) {
	n, err := ParseResultCount(" 1,234 results")
	require.NoError(t, err)
	assert.Equal(t, 1234, n)

	n, err = ParseResultCount("7")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = ParseResultCount("No results")
	assert.ErrorIs(t, err, ErrNoResultCount)
}

func TestJobsURL(t *testing.T) {
	assert.Equal(t, "https://www.linkedin.com/jobs", JobsURL("https://www.linkedin.com/"))
}
