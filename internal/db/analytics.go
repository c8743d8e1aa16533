package db

import (
	"context"
	"fmt"
)

// -----------------------------------------------------------------------------
// Dashboard Aggregates
// -----------------------------------------------------------------------------

// StageCounts is the application funnel: how many tracked jobs reached each
// lifecycle stage. Stages are cumulative flags, not exclusive states.
type StageCounts struct {
	Total       int `json:"total"`
	Applied     int `json:"applied"`
	Shortlisted int `json:"shortlisted"`
	Interviewed int `json:"interviewed"`
	Offered     int `json:"offered"`
	Accepted    int `json:"accepted"`
	Declined    int `json:"declined"`
	Joined      int `json:"joined"`
	Rejected    int `json:"rejected"`
}

// ApplicationStages returns the funnel counts across all tracked jobs.
func (db *DB) ApplicationStages(ctx context.Context) (*StageCounts, error) {
	var s StageCounts
	err := db.pool.QueryRow(ctx,
		`SELECT count(*),
		        count(*) FILTER (WHERE is_applied),
		        count(*) FILTER (WHERE is_shortlisted),
		        count(*) FILTER (WHERE is_interviewed),
		        count(*) FILTER (WHERE is_offered),
		        count(*) FILTER (WHERE is_accepted),
		        count(*) FILTER (WHERE is_declined),
		        count(*) FILTER (WHERE is_joined),
		        count(*) FILTER (WHERE is_rejected)
		 FROM jobs`,
	).Scan(&s.Total, &s.Applied, &s.Shortlisted, &s.Interviewed, &s.Offered,
		&s.Accepted, &s.Declined, &s.Joined, &s.Rejected)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate application stages: %w", err)
	}
	return &s, nil
}

// ResponseRates relates applications to employer responses. A response is any
// of shortlisted, interviewed or offered; a rejection also counts as a
// response for the rate but is reported separately.
type ResponseRates struct {
	Applied      int     `json:"applied"`
	Responded    int     `json:"responded"`
	Rejected     int     `json:"rejected"`
	NoResponse   int     `json:"no_response"`
	ResponseRate float64 `json:"response_rate"`
}

// GetResponseRates returns the response breakdown across applied jobs.
func (db *DB) GetResponseRates(ctx context.Context) (*ResponseRates, error) {
	var r ResponseRates
	err := db.pool.QueryRow(ctx,
		`SELECT count(*) FILTER (WHERE is_applied),
		        count(*) FILTER (WHERE is_applied AND (is_shortlisted OR is_interviewed OR is_offered)),
		        count(*) FILTER (WHERE is_applied AND is_rejected)
		 FROM jobs`,
	).Scan(&r.Applied, &r.Responded, &r.Rejected)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate response rates: %w", err)
	}
	r.NoResponse = r.Applied - r.Responded - r.Rejected
	if r.NoResponse < 0 {
		r.NoResponse = 0
	}
	if r.Applied > 0 {
		r.ResponseRate = float64(r.Responded+r.Rejected) / float64(r.Applied)
	}
	return &r, nil
}

// SourceStats summarizes outcomes for one posting source site.
type SourceStats struct {
	SourceSite  string `json:"source_site"`
	Total       int    `json:"total"`
	Applied     int    `json:"applied"`
	Shortlisted int    `json:"shortlisted"`
	Interviewed int    `json:"interviewed"`
	Offered     int    `json:"offered"`
}

// SourceEffectiveness returns per-source outcome counts, most tracked sources
// first.
func (db *DB) SourceEffectiveness(ctx context.Context) ([]SourceStats, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT source_site,
		        count(*),
		        count(*) FILTER (WHERE is_applied),
		        count(*) FILTER (WHERE is_shortlisted),
		        count(*) FILTER (WHERE is_interviewed),
		        count(*) FILTER (WHERE is_offered)
		 FROM jobs
		 GROUP BY source_site
		 ORDER BY count(*) DESC, source_site`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate source effectiveness: %w", err)
	}
	defer rows.Close()

	var stats []SourceStats
	for rows.Next() {
		var s SourceStats
		if err := rows.Scan(&s.SourceSite, &s.Total, &s.Applied,
			&s.Shortlisted, &s.Interviewed, &s.Offered); err != nil {
			return nil, fmt.Errorf("failed to scan source stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, nil
}

// TimeToRespond is the average gap in days between applying and being
// shortlisted, over jobs where both timestamps exist.
type TimeToRespond struct {
	AverageDays float64 `json:"average_days"`
	SampleSize  int     `json:"sample_size"`
}

// GetTimeToRespond computes the average applied-to-shortlisted delay.
func (db *DB) GetTimeToRespond(ctx context.Context) (*TimeToRespond, error) {
	var t TimeToRespond
	var avg *float64
	err := db.pool.QueryRow(ctx,
		`SELECT avg(EXTRACT(EPOCH FROM (shortlisted_at - applied_at)) / 86400.0),
		        count(*)
		 FROM jobs
		 WHERE applied_at IS NOT NULL AND shortlisted_at IS NOT NULL
		   AND shortlisted_at >= applied_at`,
	).Scan(&avg, &t.SampleSize)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate time to respond: %w", err)
	}
	if avg != nil {
		t.AverageDays = *avg
	}
	return &t, nil
}

// CountItem is a label with its occurrence count.
type CountItem struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// JobStats is the composite dashboard rollup.
type JobStats struct {
	Total     int         `json:"total"`
	Salaries  []CountItem `json:"salaries"`
	Countries []CountItem `json:"countries"`
	TopSkills []CountItem `json:"top_skills"`
}

// GetJobStats returns salary and country distributions plus the ten most
// frequent technical skills.
func (db *DB) GetJobStats(ctx context.Context) (*JobStats, error) {
	stats := &JobStats{}

	err := db.pool.QueryRow(ctx, `SELECT count(*) FROM jobs`).Scan(&stats.Total)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}

	stats.Salaries, err = db.countBy(ctx,
		`SELECT salary, count(*) FROM jobs
		 WHERE salary <> '' GROUP BY salary ORDER BY count(*) DESC, salary`)
	if err != nil {
		return nil, err
	}

	stats.Countries, err = db.countBy(ctx,
		`SELECT country, count(*) FROM jobs
		 WHERE country <> '' GROUP BY country ORDER BY count(*) DESC, country`)
	if err != nil {
		return nil, err
	}

	stats.TopSkills, err = db.countBy(ctx,
		`SELECT skill, count(*) FROM jobs, unnest(technical_skills) AS skill
		 GROUP BY skill ORDER BY count(*) DESC, skill LIMIT 10`)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (db *DB) countBy(ctx context.Context, query string) ([]CountItem, error) {
	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate counts: %w", err)
	}
	defer rows.Close()

	var items []CountItem
	for rows.Next() {
		var item CountItem
		if err := rows.Scan(&item.Value, &item.Count); err != nil {
			return nil, fmt.Errorf("failed to scan count item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}
