package etl

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"rosteretl/internal/load"
	"rosteretl/internal/quality"
	"rosteretl/internal/source"
	"rosteretl/internal/storage"
	"rosteretl/internal/storage/storagetest"
)

type fakeSource struct {
	snap *source.Snapshot
	err  error
}

func (f *fakeSource) Fetch(ctx context.Context) (*source.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

// pipelineStore scripts the full storage surface of a run: run bookkeeping,
// department resolution, and conflict-aware student inserts.
func pipelineStore(runID int64) *storagetest.Store {
	var mu sync.Mutex
	seenEmails := make(map[string]struct{})

	st := &storagetest.Store{}
	st.QueryFunc = func(sql string, args []any, fn func(storage.Row) error) error {
		switch {
		case strings.Contains(sql, "INSERT INTO etl_runs"):
			return fn(storagetest.Row(runID))
		case strings.Contains(sql, "FROM departments"):
			names, _ := args[0].([]string)
			for i, name := range names {
				if err := fn(storagetest.Row(int64(i+1), name)); err != nil {
					return err
				}
			}
			return nil
		default:
			return nil
		}
	}
	st.BatchFunc = func(sql string, tuples [][]any) (int64, error) {
		if !strings.Contains(sql, "INSERT INTO students") {
			return int64(len(tuples)), nil
		}
		mu.Lock()
		defer mu.Unlock()
		var n int64
		for _, tup := range tuples {
			email, _ := tup[0].(string)
			if _, dup := seenEmails[email]; dup {
				continue
			}
			seenEmails[email] = struct{}{}
			n++
		}
		return n, nil
	}
	return st
}

func newPipeline(src source.Source, st *storagetest.Store) *Pipeline {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Pipeline{
		Source:     src,
		Loader:     &load.StudentLoader{Store: st, BatchSize: 100, Workers: 1, Log: log},
		DeadLetter: &load.DeadLetter{Store: st},
		Tracker:    &quality.Tracker{Store: st},
		Log:        log,
	}
}

/*
TestPipelineRun verifies the whole run over a five-row sheet containing one
duplicate email, one bad email, and one out-of-range year:
  - total counts the pre-dedup rows, valid+invalid the post-dedup ones,
  - the duplicate is removed before validation,
  - both valid records insert, both invalid records dead-letter,
  - the run finalizes as partial_success with the aggregated counts.
*/
func TestPipelineRun(t *testing.T) {
	src := &fakeSource{snap: &source.Snapshot{
		Columns: []string{"Email", "Name", "Year", "Phone", "Department"},
		Rows: [][]string{
			{"alice@example.com", "Alice Smith", "2", "+1 (555) 010-1234", "Physics"},
			{"ALICE@example.com", "Alice Smith", "2", "", "Physics"},
			{"bob@example.com", "Bob Stone", "3", "", ""},
			{"not-an-email", "Carol Jones", "2", "", ""},
			{"dave@example.com", "Dave Hill", "5", "", ""},
		},
	}}
	st := pipelineStore(77)

	sum, err := newPipeline(src, st).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.RunID != 77 {
		t.Errorf("run id=%d; want 77", sum.RunID)
	}
	if sum.Status != quality.StatusPartialSuccess {
		t.Errorf("status=%s; want partial_success", sum.Status)
	}
	want := quality.RunCounts{TotalRows: 5, ValidRows: 2, InvalidRows: 2, DuplicateEmails: 1, InsertedRows: 2, SkippedRows: 0}
	if sum.Counts != want {
		t.Errorf("counts=%+v; want %+v", sum.Counts, want)
	}

	var deadLettered [][]any
	for _, b := range st.Batches() {
		if strings.Contains(b.SQL, "INSERT INTO invalid_rows") {
			deadLettered = b.Tuples
		}
	}
	if len(deadLettered) != 2 {
		t.Fatalf("dead-lettered=%d; want 2", len(deadLettered))
	}
	if deadLettered[0][0] != int64(77) {
		t.Errorf("dead letter run id=%v; want 77", deadLettered[0][0])
	}

	execs := st.Execs()
	if len(execs) != 1 || !strings.Contains(execs[0].SQL, "UPDATE etl_runs") {
		t.Fatalf("finalize calls=%+v; want exactly one update", execs)
	}
	args := execs[0].Args
	if args[0] != string(quality.StatusPartialSuccess) || args[1] != int64(5) || args[8] != nil {
		t.Fatalf("finalize args=%v", args)
	}
}

/*
TestPipelineRun_CleanSheet verifies a sheet with no duplicates and no invalid
rows finalizes as success.
*/
func TestPipelineRun_CleanSheet(t *testing.T) {
	src := &fakeSource{snap: &source.Snapshot{
		Columns: []string{"Email", "Name"},
		Rows: [][]string{
			{"a@example.com", "Alice Smith"},
			{"b@example.com", "Bob Stone"},
		},
	}}
	st := pipelineStore(1)

	sum, err := newPipeline(src, st).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Status != quality.StatusSuccess {
		t.Errorf("status=%s; want success", sum.Status)
	}
	if sum.Counts.InsertedRows != 2 || sum.Counts.InvalidRows != 0 {
		t.Errorf("counts=%+v", sum.Counts)
	}
}

/*
TestPipelineRun_Rerun verifies idempotency across runs against the same
store: the second run validates everything again but inserts nothing, and
still counts as success because skips are not errors.
*/
func TestPipelineRun_Rerun(t *testing.T) {
	snap := &source.Snapshot{
		Columns: []string{"Email", "Name"},
		Rows:    [][]string{{"a@example.com", "Alice Smith"}},
	}
	st := pipelineStore(1)

	if _, err := newPipeline(&fakeSource{snap: snap}, st).Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	sum, err := newPipeline(&fakeSource{snap: snap}, st).Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if sum.Status != quality.StatusSuccess {
		t.Errorf("status=%s; want success", sum.Status)
	}
	if sum.Counts.InsertedRows != 0 || sum.Counts.SkippedRows != 1 {
		t.Errorf("counts=%+v; want 0 inserted, 1 skipped", sum.Counts)
	}
}

/*
TestPipelineRun_ExtractFailure verifies a source error is fatal for the run:
nothing loads, the run still finalizes as failed, and the error message is
persisted.
*/
func TestPipelineRun_ExtractFailure(t *testing.T) {
	boom := errors.New("network down")
	st := pipelineStore(5)

	sum, err := newPipeline(&fakeSource{err: boom}, st).Run(context.Background())
	if err == nil || !errors.Is(err, boom) {
		t.Fatalf("err=%v; want wrapped %v", err, boom)
	}
	if sum.Status != quality.StatusFailed {
		t.Errorf("status=%s; want failed", sum.Status)
	}
	if sum.Counts != (quality.RunCounts{}) {
		t.Errorf("counts=%+v; want zeros", sum.Counts)
	}

	execs := st.Execs()
	if len(execs) != 1 {
		t.Fatalf("finalize calls=%d; want 1", len(execs))
	}
	args := execs[0].Args
	if args[0] != string(quality.StatusFailed) {
		t.Errorf("finalize status=%v; want failed", args[0])
	}
	msg, _ := args[8].(string)
	if !strings.Contains(msg, "network down") {
		t.Errorf("persisted error=%q; want the source error", msg)
	}

	for _, b := range st.Batches() {
		if strings.Contains(b.SQL, "INSERT INTO students") {
			t.Fatalf("students were loaded despite extract failure")
		}
	}
}

/*
TestPipelineRun_EmptySheet verifies an empty snapshot is a successful no-op
run with zero counts.
*/
func TestPipelineRun_EmptySheet(t *testing.T) {
	src := &fakeSource{snap: &source.Snapshot{Columns: []string{"Email", "Name"}}}
	st := pipelineStore(3)

	sum, err := newPipeline(src, st).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Status != quality.StatusSuccess || sum.Counts != (quality.RunCounts{}) {
		t.Fatalf("sum=%+v; want clean zero-count success", sum)
	}
}
