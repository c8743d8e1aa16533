package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWorkArrangement(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected WorkArrangement
	}{
		{"full time spaced", "Full Time", ArrangementFullTime},
		{"full-time hyphenated", "full-time", ArrangementFullTime},
		{"fulltime joined", "FULLTIME", ArrangementFullTime},
		{"part time", "Part-Time", ArrangementPartTime},
		{"internship", "Internship", ArrangementInternship},
		{"contract", "contract", ArrangementContract},
		{"empty", "", ArrangementNotSpecified},
		{"not specified literal", "Not Specified", ArrangementNotSpecified},
		{"unknown value", "gig", ArrangementNotSpecified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseWorkArrangement(tt.input))
		})
	}
}

func TestParseWorkLocation(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected WorkLocation
	}{
		{"onsite", "Onsite", LocationOnsite},
		{"on-site hyphenated", "on-site", LocationOnsite},
		{"remote", "REMOTE", LocationRemote},
		{"hybrid", "Hybrid", LocationHybrid},
		{"empty", "", LocationNotSpecified},
		{"unknown value", "nomadic", LocationNotSpecified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseWorkLocation(tt.input))
		})
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		limit    int
		expected int
	}{
		{"empty collection", 0, 12, 0},
		{"single partial page", 5, 12, 1},
		{"exact page boundary", 24, 12, 2},
		{"one past boundary", 25, 12, 3},
		{"limit one", 3, 1, 3},
		{"negative total", -1, 12, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TotalPages(tt.total, tt.limit))
		})
	}
}
