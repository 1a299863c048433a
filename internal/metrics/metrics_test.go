package metrics

import (
	"errors"
	"testing"
	"time"
)

type captureBackend struct {
	counters   map[string]float64
	histograms map[string][]float64
	labels     map[string]Labels
	flushed    int
}

func newCapture() *captureBackend {
	return &captureBackend{
		counters:   map[string]float64{},
		histograms: map[string][]float64{},
		labels:     map[string]Labels{},
	}
}

func (c *captureBackend) IncCounter(name string, delta float64, labels Labels) {
	c.counters[name] += delta
	c.labels[name] = labels
}

func (c *captureBackend) ObserveHistogram(name string, value float64, labels Labels) {
	c.histograms[name] = append(c.histograms[name], value)
	c.labels[name] = labels
}

func (c *captureBackend) Flush() error { c.flushed++; return nil }

/*
TestRecordStep verifies success/failure labeling and that both the counter
and the duration metric fire.
*/
func TestRecordStep(t *testing.T) {
	cap := newCapture()
	SetBackend(cap)
	defer SetBackend(nopBackend{})

	RecordStep("clean", nil, 50*time.Millisecond)
	if cap.counters["eva_step_total"] != 1 {
		t.Fatalf("step counter=%v; want 1", cap.counters["eva_step_total"])
	}
	if cap.labels["eva_step_total"]["status"] != "success" {
		t.Fatalf("labels=%v; want success", cap.labels["eva_step_total"])
	}

	RecordStep("load", errors.New("boom"), time.Millisecond)
	if cap.labels["eva_step_total"]["status"] != "failure" {
		t.Fatalf("labels=%v; want failure", cap.labels["eva_step_total"])
	}
	if len(cap.histograms["eva_step_duration_seconds"]) != 2 {
		t.Fatalf("durations=%v; want 2 observations", cap.histograms["eva_step_duration_seconds"])
	}
}

/*
TestRecordRows verifies non-positive deltas are dropped and kinds label the
counter.
*/
func TestRecordRows(t *testing.T) {
	cap := newCapture()
	SetBackend(cap)
	defer SetBackend(nopBackend{})

	RecordRows("dropped", 0)
	RecordRows("dropped", -3)
	if cap.counters["eva_records_total"] != 0 {
		t.Fatalf("non-positive delta recorded: %v", cap.counters)
	}

	RecordRows("dropped", 2)
	if cap.counters["eva_records_total"] != 2 || cap.labels["eva_records_total"]["kind"] != "dropped" {
		t.Fatalf("counter=%v labels=%v", cap.counters, cap.labels["eva_records_total"])
	}
}

/*
TestSetBackend_Nil verifies a nil backend is ignored and the no-op default
stays safe to call.
*/
func TestSetBackend_Nil(t *testing.T) {
	SetBackend(nil)
	RecordStep("noop", nil, 0)
	if err := Flush(); err != nil {
		t.Fatalf("Flush on nop backend: %v", err)
	}
}
