package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlatformID(t *testing.T) {
	tests := []struct {
		name   string
		urlStr string
		want   string
	}{
		{"present", "https://www.linkedin.com/jobs/search/?currentJobId=3941002958", "3941002958"},
		{"present among others", "https://site.com/job?utm=x&currentJobId=42&ref=y", "42"},
		{"absent", "https://site.com/job", ""},
		{"empty query", "https://site.com/job?", ""},
		{"other params only", "https://site.com/job?utm=x", ""},
		{"malformed query", "https://site.com/job?%zz=1", ""},
		{"first value wins", "https://site.com/job?currentJobId=1&currentJobId=2", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlatformID(tt.urlStr))
		})
	}
}

func TestSourceSite(t *testing.T) {
	assert.Equal(t, "boards.acme.com", SourceSite("https://boards.acme.com/apply?currentJobId=77"))
	assert.Equal(t, "localhost:8080", SourceSite("http://localhost:8080/jobs"))
	assert.Equal(t, "", SourceSite("://not-a-url"))
}

func TestCanonicalize_StripsExtraneousParams(t *testing.T) {
	got := Canonicalize("https://site.com/job?utm=x&currentJobId=42&ref=y")
	assert.Equal(t, "https://site.com/job?currentJobId=42", got)
}

func TestCanonicalize_NoParamPassesThrough(t *testing.T) {
	tests := []string{
		"https://site.com/job",
		"https://site.com/job?utm=x&ref=y",
		"https://site.com/job?",
		"not a url at all",
	}
	for _, u := range tests {
		assert.Equal(t, u, Canonicalize(u))
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	urls := []string{
		"https://site.com/job?utm=x&currentJobId=42&ref=y",
		"https://site.com/job?currentJobId=42",
		"https://site.com/job",
		"https://www.linkedin.com/jobs/search/?currentJobId=3941002958&trk=flagship",
	}
	for _, u := range urls {
		once := Canonicalize(u)
		assert.Equal(t, once, Canonicalize(once), "canonicalize must be idempotent for %s", u)
	}
}

func TestResolve(t *testing.T) {
	id := Resolve("https://boards.acme.com/apply?currentJobId=77&utm=email")
	assert.Equal(t, "https://boards.acme.com/apply?currentJobId=77", id.CanonicalURL)
	assert.Equal(t, "77", id.PlatformID)
	assert.Equal(t, "boards.acme.com", id.SourceSite)
}

func TestResolve_AbsentPlatformID(t *testing.T) {
	id := Resolve("https://jobs.example.org/postings/123")
	assert.Equal(t, "https://jobs.example.org/postings/123", id.CanonicalURL)
	assert.Empty(t, id.PlatformID)
	assert.Equal(t, "jobs.example.org", id.SourceSite)
}
