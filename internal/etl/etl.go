// Package etl wires the pipeline stages into a single tracked run:
// extract, normalize, deduplicate, validate, load, dead-letter, finalize.
package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"rosteretl/internal/load"
	"rosteretl/internal/metrics"
	"rosteretl/internal/quality"
	"rosteretl/internal/source"
	"rosteretl/internal/transform"
	"rosteretl/internal/validate"
)

// Summary is the in-memory result of one run, mirroring what FinalizeRun
// persists.
type Summary struct {
	RunID    int64
	Status   quality.Status
	Counts   quality.RunCounts
	Duration time.Duration
	Err      error
}

// Pipeline owns one run end to end. Every run gets an etl_runs row even when
// extraction fails, so failed runs show up in the history with their error.
type Pipeline struct {
	Source     source.Source
	Loader     *load.StudentLoader
	DeadLetter *load.DeadLetter
	Tracker    *quality.Tracker
	Log        *logrus.Logger
}

// Run executes the pipeline once. A source failure is fatal for the run; a
// validation failure only rejects the offending record. The returned Summary
// is populated even on error so callers can report what was committed before
// the failure.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	log := p.logger()

	runID, err := p.Tracker.StartRun(ctx)
	if err != nil {
		return Summary{Err: err}, fmt.Errorf("start run: %w", err)
	}
	log.WithField("run_id", runID).Info("run started")

	sum := Summary{RunID: runID}
	if err := p.execute(ctx, log, &sum); err != nil {
		sum.Status = quality.StatusFailed
		sum.Err = err
	} else if sum.Counts.InvalidRows > 0 {
		sum.Status = quality.StatusPartialSuccess
	} else {
		sum.Status = quality.StatusSuccess
	}
	sum.Duration = time.Since(start)

	errMsg := ""
	if sum.Err != nil {
		errMsg = sum.Err.Error()
	}
	finStart := time.Now()
	finErr := p.Tracker.FinalizeRun(ctx, runID, sum.Status, sum.Counts, sum.Duration, errMsg)
	metrics.RecordStep("finalize", finErr, time.Since(finStart))
	if finErr != nil {
		log.WithError(finErr).Error("failed to finalize run record")
		if sum.Err == nil {
			sum.Err = finErr
		}
	}

	log.WithFields(logrus.Fields{
		"run_id":     runID,
		"status":     string(sum.Status),
		"total":      sum.Counts.TotalRows,
		"valid":      sum.Counts.ValidRows,
		"invalid":    sum.Counts.InvalidRows,
		"duplicates": sum.Counts.DuplicateEmails,
		"inserted":   sum.Counts.InsertedRows,
		"skipped":    sum.Counts.SkippedRows,
		"duration":   sum.Duration.Truncate(time.Millisecond).String(),
	}).Info("run finished")

	return sum, sum.Err
}

// execute runs the data stages and fills in counts as each one completes, so
// a mid-run failure still reports everything committed up to that point.
func (p *Pipeline) execute(ctx context.Context, log *logrus.Logger, sum *Summary) error {
	stepStart := time.Now()
	snap, err := p.Source.Fetch(ctx)
	metrics.RecordStep("extract", err, time.Since(stepStart))
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	log.WithFields(logrus.Fields{
		"columns": len(snap.Columns),
		"rows":    len(snap.Rows),
	}).Info("source fetched")

	stepStart = time.Now()
	recs := transform.Normalizer{}.Apply(snap)
	sum.Counts.TotalRows = int64(len(recs))
	metrics.RecordRows("processed", sum.Counts.TotalRows)

	deduped, removed := transform.Dedup{}.Apply(recs)
	sum.Counts.DuplicateEmails = int64(removed)
	metrics.RecordRows("duplicates", sum.Counts.DuplicateEmails)
	metrics.RecordStep("transform", nil, time.Since(stepStart))
	log.WithFields(logrus.Fields{
		"rows":       len(recs),
		"duplicates": removed,
	}).Info("records normalized")

	stepStart = time.Now()
	valid, invalid := validate.NewRecordValidator().ValidateBatch(deduped)
	sum.Counts.ValidRows = int64(len(valid))
	sum.Counts.InvalidRows = int64(len(invalid))
	metrics.RecordRows("valid", sum.Counts.ValidRows)
	metrics.RecordRows("invalid", sum.Counts.InvalidRows)
	metrics.RecordStep("validate", nil, time.Since(stepStart))
	log.WithFields(logrus.Fields{
		"valid":   len(valid),
		"invalid": len(invalid),
	}).Info("records validated")

	stepStart = time.Now()
	res, loadErr := p.Loader.Load(ctx, valid)
	sum.Counts.InsertedRows = res.Inserted
	sum.Counts.SkippedRows = res.Skipped
	metrics.RecordRows("inserted", res.Inserted)
	metrics.RecordRows("skipped", res.Skipped)
	metrics.RecordStep("load", loadErr, time.Since(stepStart))
	if loadErr != nil {
		return fmt.Errorf("load: %w", loadErr)
	}

	stepStart = time.Now()
	written, dlErr := p.DeadLetter.Record(ctx, sum.RunID, invalid)
	metrics.RecordRows("dead_lettered", written)
	metrics.RecordStep("dead_letter", dlErr, time.Since(stepStart))
	if dlErr != nil {
		return fmt.Errorf("dead letter: %w", dlErr)
	}

	return nil
}

func (p *Pipeline) logger() *logrus.Logger {
	if p.Log != nil {
		return p.Log
	}
	return logrus.StandardLogger()
}
