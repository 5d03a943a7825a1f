package metrics

import (
	"errors"
	"testing"
	"time"
)

type recordingBackend struct {
	counters  []recordedMetric
	durations []recordedMetric
	flushed   int
}

type recordedMetric struct {
	name   string
	value  float64
	labels Labels
}

func (r *recordingBackend) IncCounter(name string, delta float64, labels Labels) {
	r.counters = append(r.counters, recordedMetric{name, delta, labels})
}

func (r *recordingBackend) ObserveDuration(name string, seconds float64, labels Labels) {
	r.durations = append(r.durations, recordedMetric{name, seconds, labels})
}

func (r *recordingBackend) Flush() error {
	r.flushed++
	return nil
}

/*
TestRecordStep verifies one counter increment and one duration observation
per step, with the status label derived from the error.
*/
func TestRecordStep(t *testing.T) {
	rb := &recordingBackend{}
	SetBackend(rb)
	t.Cleanup(func() { SetBackend(nopBackend{}) })

	RecordStep("extract", nil, 250*time.Millisecond)
	RecordStep("load", errors.New("boom"), time.Second)

	if len(rb.counters) != 2 || len(rb.durations) != 2 {
		t.Fatalf("counters=%d durations=%d; want 2/2", len(rb.counters), len(rb.durations))
	}
	if rb.counters[0].labels["step"] != "extract" || rb.counters[0].labels["status"] != "success" {
		t.Errorf("success labels wrong: %v", rb.counters[0].labels)
	}
	if rb.counters[1].labels["status"] != "failure" {
		t.Errorf("failure labels wrong: %v", rb.counters[1].labels)
	}
	if rb.durations[0].value != 0.25 {
		t.Errorf("duration=%v; want 0.25", rb.durations[0].value)
	}
}

/*
TestRecordRows verifies the kind label and that zero counts are suppressed.
*/
func TestRecordRows(t *testing.T) {
	rb := &recordingBackend{}
	SetBackend(rb)
	t.Cleanup(func() { SetBackend(nopBackend{}) })

	RecordRows("inserted", 5)
	RecordRows("skipped", 0)

	if len(rb.counters) != 1 {
		t.Fatalf("counters=%d; want 1 (zero suppressed)", len(rb.counters))
	}
	got := rb.counters[0]
	if got.name != "etl_records_total" || got.value != 5 || got.labels["kind"] != "inserted" {
		t.Fatalf("recorded=%+v", got)
	}
}

/*
TestSetBackend verifies nil is ignored and Flush delegates to the installed
backend.
*/
func TestSetBackend(t *testing.T) {
	rb := &recordingBackend{}
	SetBackend(rb)
	t.Cleanup(func() { SetBackend(nopBackend{}) })

	SetBackend(nil)
	if err := Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if rb.flushed != 1 {
		t.Fatalf("flushed=%d; want the recording backend to still be installed", rb.flushed)
	}
}
