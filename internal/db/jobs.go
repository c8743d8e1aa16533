package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when an operation targets a job id with no
// matching row.
var ErrNotFound = errors.New("job not found")

// ErrInvalidUpdate is returned when a partial update names no usable columns.
var ErrInvalidUpdate = errors.New("invalid update")

// -----------------------------------------------------------------------------
// Job Tracking Methods
// -----------------------------------------------------------------------------

// jobColumns is the canonical column list for scanning a full Job row.
const jobColumns = `id, tracking_id, job_url, source_site, platform_job_id,
	company, title, salary, city, state, country, experience, technical_skills,
	summary, work_arrangement, work_location, company_details,
	is_applied, is_shortlisted, is_interviewed, is_offered,
	is_accepted, is_declined, is_joined, is_rejected,
	applied_at, shortlisted_at, interviewed_at, offered_at,
	accepted_at, declined_at, joined_at, rejected_at, offered_salary,
	resume_generated, resume_path, processed_at,
	statuses, search_queries, search_lang, search_results, search_titles,
	created_at, updated_at`

// scanJob scans one row in jobColumns order into a Job.
func scanJob(row pgx.Row) (*Job, error) {
	var j Job
	var arrangement, location string
	var statusesJSON, resultsJSON, titlesJSON []byte

	err := row.Scan(&j.ID, &j.TrackingID, &j.JobURL, &j.SourceSite, &j.PlatformJobID,
		&j.Company, &j.Title, &j.Salary, &j.City, &j.State, &j.Country,
		&j.Experience, &j.TechnicalSkills,
		&j.Summary, &arrangement, &location, &j.CompanyDetails,
		&j.IsApplied, &j.IsShortlisted, &j.IsInterviewed, &j.IsOffered,
		&j.IsAccepted, &j.IsDeclined, &j.IsJoined, &j.IsRejected,
		&j.AppliedAt, &j.ShortlistedAt, &j.InterviewedAt, &j.OfferedAt,
		&j.AcceptedAt, &j.DeclinedAt, &j.JoinedAt, &j.RejectedAt, &j.OfferedSalary,
		&j.ResumeGenerated, &j.ResumePath, &j.ProcessedAt,
		&statusesJSON, &j.SearchQueries, &j.SearchLang, &resultsJSON, &titlesJSON,
		&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}

	j.WorkArrangement = WorkArrangement(arrangement)
	j.WorkLocation = WorkLocation(location)
	if statusesJSON != nil {
		_ = json.Unmarshal(statusesJSON, &j.Statuses)
	}
	if resultsJSON != nil {
		_ = json.Unmarshal(resultsJSON, &j.SearchResults)
	}
	if titlesJSON != nil {
		_ = json.Unmarshal(titlesJSON, &j.SearchTitles)
	}
	return &j, nil
}

// InsertJob creates the tracking record for an extracted job entity and
// returns its generated ID. Any failure is terminal for the ingestion; the
// caller's recovery path is resubmission.
func (db *DB) InsertJob(ctx context.Context, job *Job) (uuid.UUID, error) {
	statusesJSON, err := json.Marshal(job.Statuses)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal statuses: %w", err)
	}
	if job.Statuses == nil {
		statusesJSON = []byte("[]")
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO jobs (tracking_id, job_url, source_site, platform_job_id,
		                   company, title, salary, city, state, country,
		                   experience, technical_skills, summary,
		                   work_arrangement, work_location, company_details,
		                   resume_generated, resume_path, statuses,
		                   search_queries, search_lang)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		         $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		 RETURNING id`,
		job.TrackingID, job.JobURL, job.SourceSite, job.PlatformJobID,
		job.Company, job.Title, job.Salary, job.City, job.State, job.Country,
		job.Experience, job.TechnicalSkills, job.Summary,
		string(job.WorkArrangement), string(job.WorkLocation), job.CompanyDetails,
		job.ResumeGenerated, job.ResumePath, statusesJSON,
		job.SearchQueries, job.SearchLang,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert job: %w", err)
	}
	return id, nil
}

// GetJobByID retrieves a job by its store-generated ID. Returns nil when not
// found.
func (db *DB) GetJobByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	job, err := scanJob(db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// GetJobByTrackingID retrieves a job by the annotation record it links back
// to. Returns nil when not found.
func (db *DB) GetJobByTrackingID(ctx context.Context, trackingID uuid.UUID) (*Job, error) {
	job, err := scanJob(db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE tracking_id = $1`, trackingID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job by tracking id: %w", err)
	}
	return job, nil
}

// ListJobsOptions holds pagination and search parameters for listing jobs.
// Page is 1-indexed.
type ListJobsOptions struct {
	Search string
	Page   int
	Limit  int
}

// ListJobs returns one page of jobs plus the total match count. When Search
// is set, rows are matched with full-text search over company, title,
// location, skills and experience and ordered by relevance; otherwise the
// listing is unfiltered, newest first.
func (db *DB) ListJobs(ctx context.Context, opts ListJobsOptions) ([]Job, int, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 12
	}
	offset := (opts.Page - 1) * opts.Limit

	var rows pgx.Rows
	var total int
	var err error

	if opts.Search != "" {
		err = db.pool.QueryRow(ctx,
			`SELECT count(*) FROM jobs
			 WHERE search_doc @@ websearch_to_tsquery('english', $1)`,
			opts.Search,
		).Scan(&total)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
		}

		rows, err = db.pool.Query(ctx,
			`SELECT `+jobColumns+` FROM jobs
			 WHERE search_doc @@ websearch_to_tsquery('english', $1)
			 ORDER BY ts_rank(search_doc, websearch_to_tsquery('english', $1)) DESC, created_at DESC
			 LIMIT $2 OFFSET $3`,
			opts.Search, opts.Limit, offset)
	} else {
		err = db.pool.QueryRow(ctx, `SELECT count(*) FROM jobs`).Scan(&total)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
		}

		rows, err = db.pool.Query(ctx,
			`SELECT `+jobColumns+` FROM jobs
			 ORDER BY created_at DESC
			 LIMIT $1 OFFSET $2`,
			opts.Limit, offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, total, nil
}

// updatableColumns is the set of columns a partial update may touch.
var updatableColumns = map[string]bool{
	"company": true, "title": true, "salary": true,
	"city": true, "state": true, "country": true,
	"summary": true, "work_arrangement": true, "work_location": true,
	"company_details": true,
	"is_applied":      true, "is_shortlisted": true, "is_interviewed": true,
	"is_offered": true, "is_accepted": true, "is_declined": true,
	"is_joined": true, "is_rejected": true,
	"applied_at": true, "shortlisted_at": true, "interviewed_at": true,
	"offered_at": true, "accepted_at": true, "declined_at": true,
	"joined_at": true, "rejected_at": true,
	"offered_salary": true, "resume_generated": true, "resume_path": true,
}

// statusLabels maps lifecycle flag columns to the status history label
// appended when the flag transitions to true.
var statusLabels = map[string]string{
	"is_applied":     "Applied",
	"is_shortlisted": "Shortlisted",
	"is_interviewed": "Interviewed",
	"is_offered":     "Offered",
	"is_accepted":    "Accepted",
	"is_declined":    "Declined",
	"is_joined":      "Joined",
	"is_rejected":    "Rejected",
}

// buildJobUpdate renders a partial update into a SET clause and arguments.
// Unknown columns are rejected. When a lifecycle flag is set true, a status
// history entry is appended in the same statement.
func buildJobUpdate(updates map[string]any) (string, []any, error) {
	if len(updates) == 0 {
		return "", nil, fmt.Errorf("%w: no fields to update", ErrInvalidUpdate)
	}

	// Deterministic clause order
	keys := make([]string, 0, len(updates))
	for k := range updates {
		if !updatableColumns[k] {
			return "", nil, fmt.Errorf("%w: field %q is not updatable", ErrInvalidUpdate, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var setClauses []string
	var args []any
	var statusEntries []StatusEntry
	now := time.Now().UTC()

	for _, k := range keys {
		args = append(args, updates[k])
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", k, len(args)))
		if label, ok := statusLabels[k]; ok {
			if set, ok := updates[k].(bool); ok && set {
				statusEntries = append(statusEntries, StatusEntry{Status: label, Date: now})
			}
		}
	}

	if len(statusEntries) > 0 {
		entriesJSON, err := json.Marshal(statusEntries)
		if err != nil {
			return "", nil, fmt.Errorf("failed to marshal status entries: %w", err)
		}
		args = append(args, entriesJSON)
		setClauses = append(setClauses, fmt.Sprintf("statuses = statuses || $%d::jsonb", len(args)))
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	return strings.Join(setClauses, ", "), args, nil
}

// UpdateJobFields applies a partial update to one job. Concurrent updates to
// unrelated fields of the same document are last-write-wins per field.
func (db *DB) UpdateJobFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	setClause, args, err := buildJobUpdate(updates)
	if err != nil {
		return err
	}

	args = append(args, id)
	tag, err := db.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE jobs SET %s WHERE id = $%d`, setClause, len(args)),
		args...)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// BulkUpdateItem is one entry in a bulk update request.
type BulkUpdateItem struct {
	ID      uuid.UUID
	Updates map[string]any
}

// BulkUpdateError records a single failed item of a bulk update.
type BulkUpdateError struct {
	ID      uuid.UUID `json:"id"`
	Message string    `json:"message"`
}

// BulkUpdateResult summarizes a bulk update: how many selectors matched, how
// many rows were modified, and which items failed.
type BulkUpdateResult struct {
	Matched  int               `json:"matched"`
	Modified int               `json:"modified"`
	Errors   []BulkUpdateError `json:"errors,omitempty"`
}

// BulkUpdateJobs applies an unordered batch of partial updates. A failure in
// one item never prevents the others from applying; failed items are
// reported in the result instead.
func (db *DB) BulkUpdateJobs(ctx context.Context, items []BulkUpdateItem) (*BulkUpdateResult, error) {
	result := &BulkUpdateResult{}
	if len(items) == 0 {
		return result, nil
	}

	batch := &pgx.Batch{}
	// Items whose update clauses fail to build never reach the batch.
	queued := make([]BulkUpdateItem, 0, len(items))
	for _, item := range items {
		setClause, args, err := buildJobUpdate(item.Updates)
		if err != nil {
			result.Errors = append(result.Errors, BulkUpdateError{ID: item.ID, Message: err.Error()})
			continue
		}
		args = append(args, item.ID)
		batch.Queue(fmt.Sprintf(`UPDATE jobs SET %s WHERE id = $%d`, setClause, len(args)), args...)
		queued = append(queued, item)
	}

	results := db.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	for _, item := range queued {
		tag, err := results.Exec()
		if err != nil {
			result.Errors = append(result.Errors, BulkUpdateError{ID: item.ID, Message: err.Error()})
			continue
		}
		result.Matched += int(tag.RowsAffected())
		result.Modified += int(tag.RowsAffected())
	}
	return result, nil
}

// SetSearchPlan stores the synthesized up-skilling queries and language tag.
func (db *DB) SetSearchPlan(ctx context.Context, id uuid.UUID, queries []string, lang string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE jobs SET search_queries = $1, search_lang = $2, updated_at = NOW() WHERE id = $3`,
		queries, lang, id)
	if err != nil {
		return fmt.Errorf("failed to set search plan: %w", err)
	}
	return nil
}

// SetSearchResults stores the per-query result URL lists.
func (db *DB) SetSearchResults(ctx context.Context, id uuid.UUID, results [][]string) error {
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal search results: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`UPDATE jobs SET search_results = $1, updated_at = NOW() WHERE id = $2`,
		resultsJSON, id)
	if err != nil {
		return fmt.Errorf("failed to set search results: %w", err)
	}
	return nil
}

// SetSearchTitles stores resolved page titles for the search result URLs.
func (db *DB) SetSearchTitles(ctx context.Context, id uuid.UUID, titles []SearchTitle) error {
	titlesJSON, err := json.Marshal(titles)
	if err != nil {
		return fmt.Errorf("failed to marshal search titles: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`UPDATE jobs SET search_titles = $1, updated_at = NOW() WHERE id = $2`,
		titlesJSON, id)
	if err != nil {
		return fmt.Errorf("failed to set search titles: %w", err)
	}
	return nil
}
