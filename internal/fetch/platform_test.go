package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected Platform
	}{
		{"linkedin", "https://www.linkedin.com/jobs/view/4021", PlatformLinkedIn},
		{"greenhouse", "https://boards.greenhouse.io/acme/jobs/123", PlatformGreenhouse},
		{"lever", "https://jobs.lever.co/acme/abc-def", PlatformLever},
		{"workday", "https://acme.wd1.myworkdayjobs.com/careers/job/123", PlatformWorkday},
		{"company site", "https://careers.acme.com/jobs/123", PlatformUnknown},
		{"malformed", "://not-a-url", PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPlatform(tt.url))
		})
	}
}

func TestPlatformContentSelectors(t *testing.T) {
	// Every platform gets a non-empty selector list
	for _, p := range []Platform{PlatformLinkedIn, PlatformGreenhouse, PlatformLever, PlatformWorkday, PlatformUnknown} {
		assert.NotEmpty(t, PlatformContentSelectors(p), "platform %s", p)
	}

	// Unknown platforms fall back to the generic job posting selectors
	assert.Equal(t, JobPostingSelectors(), PlatformContentSelectors(PlatformUnknown))
}

func TestPlatformNoiseSelectors(t *testing.T) {
	common := PlatformNoiseSelectors(PlatformUnknown)
	assert.Contains(t, common, "form")

	// Platform-specific lists extend the common set
	linkedin := PlatformNoiseSelectors(PlatformLinkedIn)
	assert.Greater(t, len(linkedin), len(common))
}
