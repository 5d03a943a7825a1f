package quality

import (
	"context"
	"fmt"
	"time"

	"rosteretl/internal/storage"
)

// RunMetrics is the quality snapshot of a single run.
type RunMetrics struct {
	RunID           int64
	RunTimestamp    time.Time
	TotalRows       int64
	ValidRows       int64
	InvalidRows     int64
	DuplicateEmails int64
	InsertedRows    int64
	SkippedRows     int64
	DurationSeconds float64
	Status          Status
}

// ValidityRate is valid_rows / total_rows as a percentage.
func (m RunMetrics) ValidityRate() float64 { return pct(m.ValidRows, m.TotalRows) }

// ErrorRate is invalid_rows / total_rows as a percentage.
func (m RunMetrics) ErrorRate() float64 { return pct(m.InvalidRows, m.TotalRows) }

// DuplicateRate is duplicate_emails / total_rows as a percentage.
func (m RunMetrics) DuplicateRate() float64 { return pct(m.DuplicateEmails, m.TotalRows) }

// Throughput is rows per second for the run.
func (m RunMetrics) Throughput() float64 {
	if m.DurationSeconds == 0 {
		return 0
	}
	return float64(m.TotalRows) / m.DurationSeconds
}

// DailyMetrics is one calendar day of aggregated runs.
type DailyMetrics struct {
	Date               time.Time
	Runs               int64
	TotalRows          int64
	ValidRows          int64
	InvalidRows        int64
	Duplicates         int64
	Inserted           int64
	Skipped            int64
	AvgDurationSeconds float64
	SuccessfulRuns     int64
	FailedRuns         int64
}

// ValidityRate is the day's valid_rows / total_rows as a percentage.
func (d DailyMetrics) ValidityRate() float64 { return pct(d.ValidRows, d.TotalRows) }

// ErrorStat is one rejection reason ranked by frequency.
type ErrorStat struct {
	Reason         string
	Frequency      int64
	AffectedRuns   int64
	PctOfTotal     float64
	LastOccurrence time.Time
}

// Health is the lifetime snapshot of the pipeline.
type Health struct {
	TotalRuns          int64
	SuccessfulRuns     int64
	TotalRowsProcessed int64
	TotalValidRows     int64
	TotalInvalidRows   int64
	CurrentStudents    int64
	LastRunTime        *time.Time
	OverallValidityPct float64
}

// ScorecardRow compares one period's averages; RunTime is set only for the
// latest-run row.
type ScorecardRow struct {
	Period      string
	RunTime     *time.Time
	TotalRows   float64
	ValidRows   float64
	InvalidRows float64
	Duplicates  float64
	ValidityPct float64
	Status      string
}

// Degradation is the outcome of a threshold check against the latest run.
type Degradation struct {
	Degraded     bool
	Reason       string
	ValidityRate float64
	Threshold    float64
	RunID        int64
	RunTime      time.Time
}

const (
	latestRunSQL = `SELECT id, run_timestamp, total_rows, valid_rows, invalid_rows,
		duplicate_emails, inserted_rows, skipped_rows, duration_seconds, status
		FROM etl_runs
		ORDER BY run_timestamp DESC
		LIMIT 1`

	dailyMetricsSQL = `SELECT DATE(run_timestamp) AS run_date,
		COUNT(*),
		COALESCE(SUM(total_rows), 0),
		COALESCE(SUM(valid_rows), 0),
		COALESCE(SUM(invalid_rows), 0),
		COALESCE(SUM(duplicate_emails), 0),
		COALESCE(SUM(inserted_rows), 0),
		COALESCE(SUM(skipped_rows), 0),
		COALESCE(AVG(duration_seconds), 0),
		SUM(CASE WHEN status IN ('success', 'partial_success') THEN 1 ELSE 0 END),
		SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END)
		FROM etl_runs
		WHERE run_timestamp > NOW() - make_interval(days => $1)
		GROUP BY DATE(run_timestamp)
		ORDER BY run_date DESC`

	errorBreakdownSQL = `SELECT error_reason,
		COUNT(*) AS frequency,
		COUNT(DISTINCT etl_run_id),
		(100.0 * COUNT(*) / (SELECT COUNT(*) FROM invalid_rows))::float8,
		MAX(created_at)
		FROM invalid_rows
		GROUP BY error_reason
		ORDER BY frequency DESC
		LIMIT $1`

	healthSQL = `SELECT
		(SELECT COUNT(*) FROM etl_runs),
		(SELECT COUNT(*) FROM etl_runs WHERE status IN ('success', 'partial_success')),
		(SELECT COALESCE(SUM(total_rows), 0) FROM etl_runs),
		(SELECT COALESCE(SUM(valid_rows), 0) FROM etl_runs),
		(SELECT COALESCE(SUM(invalid_rows), 0) FROM etl_runs),
		(SELECT COUNT(*) FROM students),
		(SELECT MAX(run_timestamp) FROM etl_runs)`
)

// Provider answers read-only quality queries over the persisted run history.
type Provider struct {
	Store storage.Store
}

// LatestRun returns the most recent run's metrics, or nil when no run exists.
func (p *Provider) LatestRun(ctx context.Context) (*RunMetrics, error) {
	var (
		m     RunMetrics
		found bool
	)
	err := p.Store.Query(ctx, latestRunSQL, nil, func(row storage.Row) error {
		found = true
		var status string
		if err := row.Scan(&m.RunID, &m.RunTimestamp, &m.TotalRows, &m.ValidRows, &m.InvalidRows,
			&m.DuplicateEmails, &m.InsertedRows, &m.SkippedRows, &m.DurationSeconds, &status); err != nil {
			return err
		}
		m.Status = Status(status)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &m, nil
}

// Daily returns per-calendar-day rollups for the last N days, newest first.
func (p *Provider) Daily(ctx context.Context, days int) ([]DailyMetrics, error) {
	var out []DailyMetrics
	err := p.Store.Query(ctx, dailyMetricsSQL, []any{days}, func(row storage.Row) error {
		var d DailyMetrics
		if err := row.Scan(&d.Date, &d.Runs, &d.TotalRows, &d.ValidRows, &d.InvalidRows,
			&d.Duplicates, &d.Inserted, &d.Skipped, &d.AvgDurationSeconds,
			&d.SuccessfulRuns, &d.FailedRuns); err != nil {
			return err
		}
		out = append(out, d)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("daily metrics: %w", err)
	}
	return out, nil
}

// ErrorBreakdown returns the top rejection reasons by frequency.
func (p *Provider) ErrorBreakdown(ctx context.Context, limit int) ([]ErrorStat, error) {
	var out []ErrorStat
	err := p.Store.Query(ctx, errorBreakdownSQL, []any{limit}, func(row storage.Row) error {
		var e ErrorStat
		if err := row.Scan(&e.Reason, &e.Frequency, &e.AffectedRuns, &e.PctOfTotal, &e.LastOccurrence); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error breakdown: %w", err)
	}
	return out, nil
}

// HealthStatus returns lifetime totals and the overall validity percentage.
func (p *Provider) HealthStatus(ctx context.Context) (*Health, error) {
	var h Health
	err := p.Store.Query(ctx, healthSQL, nil, func(row storage.Row) error {
		return row.Scan(&h.TotalRuns, &h.SuccessfulRuns, &h.TotalRowsProcessed,
			&h.TotalValidRows, &h.TotalInvalidRows, &h.CurrentStudents, &h.LastRunTime)
	})
	if err != nil {
		return nil, fmt.Errorf("health status: %w", err)
	}
	h.OverallValidityPct = pct(h.TotalValidRows, h.TotalRowsProcessed)
	return &h, nil
}

// Scorecard compares the latest run against 7-day and 30-day averages.
func (p *Provider) Scorecard(ctx context.Context) ([]ScorecardRow, error) {
	latest, err := p.LatestRun(ctx)
	if err != nil {
		return nil, err
	}

	var rows []ScorecardRow
	if latest != nil {
		ts := latest.RunTimestamp
		rows = append(rows, ScorecardRow{
			Period:      "latest",
			RunTime:     &ts,
			TotalRows:   float64(latest.TotalRows),
			ValidRows:   float64(latest.ValidRows),
			InvalidRows: float64(latest.InvalidRows),
			Duplicates:  float64(latest.DuplicateEmails),
			ValidityPct: latest.ValidityRate(),
			Status:      string(latest.Status),
		})
	}

	for _, window := range []struct {
		period string
		days   int
	}{{"7d_avg", 7}, {"30d_avg", 30}} {
		daily, err := p.Daily(ctx, window.days)
		if err != nil {
			return nil, err
		}
		if len(daily) == 0 {
			continue
		}
		var total, valid, invalid, dups int64
		for _, d := range daily {
			total += d.TotalRows
			valid += d.ValidRows
			invalid += d.InvalidRows
			dups += d.Duplicates
		}
		n := float64(len(daily))
		rows = append(rows, ScorecardRow{
			Period:      window.period,
			TotalRows:   float64(total) / n,
			ValidRows:   float64(valid) / n,
			InvalidRows: float64(invalid) / n,
			Duplicates:  float64(dups) / n,
			ValidityPct: pct(valid, total),
			Status:      "n/a",
		})
	}
	return rows, nil
}

// CheckDegradation flags the latest run when its validity rate falls below
// the threshold percentage.
func (p *Provider) CheckDegradation(ctx context.Context, thresholdPct float64) (Degradation, error) {
	latest, err := p.LatestRun(ctx)
	if err != nil {
		return Degradation{}, err
	}
	if latest == nil {
		return Degradation{Reason: "no runs recorded", Threshold: thresholdPct}, nil
	}

	rate := latest.ValidityRate()
	d := Degradation{
		ValidityRate: rate,
		Threshold:    thresholdPct,
		RunID:        latest.RunID,
		RunTime:      latest.RunTimestamp,
	}
	if rate < thresholdPct {
		d.Degraded = true
		d.Reason = fmt.Sprintf("validity rate %.2f%% is below threshold %.1f%%", rate, thresholdPct)
	} else {
		d.Reason = fmt.Sprintf("validity rate %.2f%% is above threshold %.1f%%", rate, thresholdPct)
	}
	return d, nil
}

func pct(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
