package metrics

import (
	"errors"
	"testing"
	"time"
)

type capturedCounter struct {
	name   string
	delta  float64
	labels Labels
}

type capturedObservation struct {
	name   string
	value  float64
	labels Labels
}

// fakeBackend records every call so tests can assert on the exact
// metric names and labels the helpers emit.
type fakeBackend struct {
	counters     []capturedCounter
	observations []capturedObservation
	flushed      int
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.counters = append(f.counters, capturedCounter{name, delta, labels})
}

func (f *fakeBackend) ObserveDuration(name string, value float64, labels Labels) {
	f.observations = append(f.observations, capturedObservation{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.flushed++
	return nil
}

func withBackend(t *testing.T, b Backend) {
	t.Helper()
	prev := backend
	backend = b
	t.Cleanup(func() { backend = prev })
}

/*
The default backend is a no-op: calling the helpers without any
SetBackend must never panic and Flush must return nil.
*/
func TestNopBackendIsSafe(t *testing.T) {
	withBackend(t, nopBackend{})

	RecordRun("job", nil, time.Second)
	RecordRecords("job", "in", 10)
	if err := Flush(); err != nil {
		t.Errorf("Flush() = %v, want nil", err)
	}
}

func TestSetBackendNilKeepsCurrent(t *testing.T) {
	fake := &fakeBackend{}
	withBackend(t, fake)

	SetBackend(nil)
	RecordRecords("job", "out", 1)

	if len(fake.counters) != 1 {
		t.Fatalf("got %d counter calls, want 1", len(fake.counters))
	}
}

func TestRecordRun(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus string
	}{
		{"success", nil, "success"},
		{"failure", errors.New("boom"), "failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeBackend{}
			withBackend(t, fake)

			RecordRun("nightly", tt.err, 1500*time.Millisecond)

			if len(fake.counters) != 1 {
				t.Fatalf("got %d counter calls, want 1", len(fake.counters))
			}
			c := fake.counters[0]
			if c.name != "recordopt_runs_total" || c.delta != 1 {
				t.Errorf("counter = %q delta %v, want recordopt_runs_total delta 1", c.name, c.delta)
			}
			if c.labels["job"] != "nightly" || c.labels["status"] != tt.wantStatus {
				t.Errorf("labels = %v, want job=nightly status=%s", c.labels, tt.wantStatus)
			}

			if len(fake.observations) != 1 {
				t.Fatalf("got %d observations, want 1", len(fake.observations))
			}
			o := fake.observations[0]
			if o.name != "recordopt_run_duration_seconds" || o.value != 1.5 {
				t.Errorf("observation = %q value %v, want recordopt_run_duration_seconds value 1.5", o.name, o.value)
			}
		})
	}
}

func TestRecordRecords(t *testing.T) {
	fake := &fakeBackend{}
	withBackend(t, fake)

	RecordRecords("nightly", "in", 100)
	RecordRecords("nightly", "duplicates", 0) // skipped
	RecordRecords("nightly", "out", 97)

	if len(fake.counters) != 2 {
		t.Fatalf("got %d counter calls, want 2 (zero counts are skipped)", len(fake.counters))
	}
	first := fake.counters[0]
	if first.name != "recordopt_records_total" || first.delta != 100 || first.labels["kind"] != "in" {
		t.Errorf("first call = %+v, want records_total 100 kind=in", first)
	}
	second := fake.counters[1]
	if second.delta != 97 || second.labels["kind"] != "out" {
		t.Errorf("second call = %+v, want delta 97 kind=out", second)
	}
}

func TestFlushDelegates(t *testing.T) {
	fake := &fakeBackend{}
	withBackend(t, fake)

	if err := Flush(); err != nil {
		t.Fatalf("Flush() = %v, want nil", err)
	}
	if fake.flushed != 1 {
		t.Errorf("flushed = %d, want 1", fake.flushed)
	}
}
