package db

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NotSpecified is the default for descriptive fields the posting leaves out.
const NotSpecified = "Not Specified"

// WorkArrangement is the employment arrangement offered by a posting.
type WorkArrangement string

// WorkArrangement values
const (
	ArrangementFullTime     WorkArrangement = "full_time"
	ArrangementPartTime     WorkArrangement = "part_time"
	ArrangementInternship   WorkArrangement = "internship"
	ArrangementContract     WorkArrangement = "contract"
	ArrangementNotSpecified WorkArrangement = "not_specified"
)

// WorkLocation is the work environment required by a posting.
type WorkLocation string

// WorkLocation values
const (
	LocationOnsite       WorkLocation = "onsite"
	LocationRemote       WorkLocation = "remote"
	LocationHybrid       WorkLocation = "hybrid"
	LocationNotSpecified WorkLocation = "not_specified"
)

// ParseWorkArrangement normalizes free-form arrangement text to a known
// value. Unrecognized input maps to not_specified rather than failing.
func ParseWorkArrangement(s string) WorkArrangement {
	switch strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "-", "_"))) {
	case "full_time", "fulltime", "full time":
		return ArrangementFullTime
	case "part_time", "parttime", "part time":
		return ArrangementPartTime
	case "internship", "intern":
		return ArrangementInternship
	case "contract", "contractor", "freelance":
		return ArrangementContract
	default:
		return ArrangementNotSpecified
	}
}

// ParseWorkLocation normalizes free-form location-type text to a known
// value. Unrecognized input maps to not_specified rather than failing.
func ParseWorkLocation(s string) WorkLocation {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "onsite", "on-site", "on site", "in office", "in-office":
		return LocationOnsite
	case "remote", "fully remote":
		return LocationRemote
	case "hybrid":
		return LocationHybrid
	default:
		return LocationNotSpecified
	}
}

// StatusEntry is one append-only entry in a job's status history.
type StatusEntry struct {
	Status string    `json:"status"`
	Date   time.Time `json:"date"`
}

// SearchTitle pairs a search result URL with its resolved page title.
type SearchTitle struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Job is the canonical structured record for one tracked job application.
// TrackingID links the record back to exactly one annotation record;
// PlatformJobID is the platform-assigned identifier and may be nil when the
// source URL carries none.
type Job struct {
	ID         uuid.UUID `json:"id"`
	TrackingID uuid.UUID `json:"tracking_id"`

	// Identity
	JobURL        string  `json:"job_url"`
	SourceSite    string  `json:"source_site"`
	PlatformJobID *string `json:"platform_job_id,omitempty"`

	// Descriptive
	Company         string          `json:"company"`
	Title           string          `json:"title"`
	Salary          string          `json:"salary"`
	City            string          `json:"city"`
	State           string          `json:"state"`
	Country         string          `json:"country"`
	Experience      []string        `json:"experience"`
	TechnicalSkills []string        `json:"technical_skills"`
	Summary         *string         `json:"summary,omitempty"`
	WorkArrangement WorkArrangement `json:"work_arrangement"`
	WorkLocation    WorkLocation    `json:"work_location"`
	CompanyDetails  *string         `json:"company_details,omitempty"`

	// Lifecycle
	IsApplied     bool       `json:"is_applied"`
	IsShortlisted bool       `json:"is_shortlisted"`
	IsInterviewed bool       `json:"is_interviewed"`
	IsOffered     bool       `json:"is_offered"`
	IsAccepted    bool       `json:"is_accepted"`
	IsDeclined    bool       `json:"is_declined"`
	IsJoined      bool       `json:"is_joined"`
	IsRejected    bool       `json:"is_rejected"`
	AppliedAt     *time.Time `json:"applied_at,omitempty"`
	ShortlistedAt *time.Time `json:"shortlisted_at,omitempty"`
	InterviewedAt *time.Time `json:"interviewed_at,omitempty"`
	OfferedAt     *time.Time `json:"offered_at,omitempty"`
	AcceptedAt    *time.Time `json:"accepted_at,omitempty"`
	DeclinedAt    *time.Time `json:"declined_at,omitempty"`
	JoinedAt      *time.Time `json:"joined_at,omitempty"`
	RejectedAt    *time.Time `json:"rejected_at,omitempty"`
	OfferedSalary *string    `json:"offered_salary,omitempty"`

	// Bookkeeping
	ResumeGenerated bool          `json:"resume_generated"`
	ResumePath      string        `json:"resume_path"`
	ProcessedAt     time.Time     `json:"processed_at"`
	Statuses        []StatusEntry `json:"statuses"`
	SearchQueries   []string      `json:"search_queries,omitempty"`
	SearchLang      *string       `json:"search_lang,omitempty"`
	SearchResults   [][]string    `json:"search_results,omitempty"`
	SearchTitles    []SearchTitle `json:"search_results_with_titles,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalPages computes the page count for a paginated listing.
// Zero items means zero pages.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
