// Package extract turns raw job posting text into validated structured
// entities using an LLM, and synthesizes up-skilling search plans.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/identity"
	"github.com/jonathan/job-tracker/internal/llm"
	"github.com/jonathan/job-tracker/internal/schemas"
)

// NotSpecified is the default for descriptive fields the posting omits.
const NotSpecified = "Not Specified"

// Extractor runs LLM-backed extraction against a shared client.
type Extractor struct {
	client llm.Client
}

// New returns an Extractor using the given LLM client.
func New(client llm.Client) *Extractor {
	return &Extractor{client: client}
}

// jobPayload mirrors the JSON structure the extraction prompt requests.
type jobPayload struct {
	Company         string   `json:"company"`
	Title           string   `json:"title"`
	Salary          string   `json:"salary"`
	City            string   `json:"city"`
	State           string   `json:"state"`
	Country         string   `json:"country"`
	Experience      []string `json:"experience"`
	TechnicalSkills []string `json:"technical_skills"`
	Summary         string   `json:"summary"`
	WorkArrangement string   `json:"work_arrangement"`
	WorkLocation    string   `json:"work_location"`
	CompanyDetails  string   `json:"company_details"`
}

// SearchPlan is the synthesized query list for closing skill gaps.
type SearchPlan struct {
	Queries []string `json:"queries"`
	Lang    string   `json:"lang"`
}

// Job extracts a structured job entity from raw posting text. Identity
// fields come from ident, never from the model. Any schema violation or
// model failure is terminal for the posting; the error reason says which.
func (e *Extractor) Job(ctx context.Context, text string, ident identity.Identity) (*db.Job, error) {
	payload, err := e.generatePayload(ctx, fmt.Sprintf(jobEntityPrompt, text), jobEntitySchema, llm.TierStandard)
	if err != nil {
		return nil, err
	}

	var p jobPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, &Error{Reason: ReasonSchemaViolation, Err: fmt.Errorf("failed to decode payload: %w", err)}
	}

	job := &db.Job{
		JobURL:          ident.CanonicalURL,
		SourceSite:      ident.SourceSite,
		Company:         p.Company,
		Title:           p.Title,
		Salary:          defaultIfEmpty(p.Salary),
		City:            defaultIfEmpty(p.City),
		State:           defaultIfEmpty(p.State),
		Country:         defaultIfEmpty(p.Country),
		Experience:      p.Experience,
		TechnicalSkills: p.TechnicalSkills,
		Summary:         &p.Summary,
		WorkArrangement: db.ParseWorkArrangement(p.WorkArrangement),
		WorkLocation:    db.ParseWorkLocation(p.WorkLocation),
	}
	if ident.PlatformID != "" {
		platformID := ident.PlatformID
		job.PlatformJobID = &platformID
	}
	if p.CompanyDetails != "" {
		details := p.CompanyDetails
		job.CompanyDetails = &details
	}
	return job, nil
}

// SearchQueries synthesizes at least three up-skilling search queries plus
// the posting's language tag.
func (e *Extractor) SearchQueries(ctx context.Context, text string) (*SearchPlan, error) {
	payload, err := e.generatePayload(ctx, fmt.Sprintf(searchPlanPrompt, text), searchPlanSchema, llm.TierLite)
	if err != nil {
		return nil, err
	}

	var plan SearchPlan
	if err := json.Unmarshal(payload, &plan); err != nil {
		return nil, &Error{Reason: ReasonSchemaViolation, Err: fmt.Errorf("failed to decode plan: %w", err)}
	}
	return &plan, nil
}

// generatePayload runs one prompt, normalizes the response to a JSON object
// and validates it against the given schema.
func (e *Extractor) generatePayload(ctx context.Context, prompt, schema string, tier llm.ModelTier) ([]byte, error) {
	raw, err := e.client.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		return nil, &Error{Reason: ReasonLLMUnreachable, Err: err}
	}
	raw = llm.CleanJSONBlock(raw)
	if strings.TrimSpace(raw) == "" {
		return nil, &Error{Reason: ReasonEmptyResponse}
	}

	payload, err := coercePayload([]byte(raw))
	if err != nil {
		return nil, &Error{Reason: ReasonSchemaViolation, Err: err}
	}

	if err := schemas.ValidateJSONString(schema, string(payload)); err != nil {
		return nil, &Error{Reason: ReasonSchemaViolation, Err: err}
	}
	return payload, nil
}

// coercePayload normalizes the model output to a JSON object. Some responses
// arrive as a JSON string whose content is the object; those are unwrapped
// with a second decode.
func coercePayload(raw []byte) ([]byte, error) {
	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}
	switch v := probe.(type) {
	case string:
		inner := []byte(v)
		var obj map[string]any
		if err := json.Unmarshal(inner, &obj); err != nil {
			return nil, fmt.Errorf("string response does not contain a JSON object: %w", err)
		}
		return inner, nil
	case map[string]any:
		return raw, nil
	default:
		return nil, fmt.Errorf("response is %T, expected a JSON object", probe)
	}
}

func defaultIfEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotSpecified
	}
	return s
}
