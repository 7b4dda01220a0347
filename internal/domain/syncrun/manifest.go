// Package syncrun reports the outcome of one cross-store synchronization run.
package syncrun

// Outcome is the processing result of a single record in a sync run.
type Outcome string

// Record outcome values.
const (
	OutcomeOK      Outcome = "ok"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// Result is the outcome of replaying one exported record into the target.
type Result struct {
	id      string
	outcome Outcome
	err     error
}

// NewOK creates a successful result.
func NewOK(id string) Result { return Result{id: id, outcome: OutcomeOK} }

// NewFailed creates a failed result.
func NewFailed(id string, err error) Result { return Result{id: id, outcome: OutcomeFailed, err: err} }

// NewSkipped creates a skipped result (record unchanged or filtered out).
func NewSkipped(id string) Result { return Result{id: id, outcome: OutcomeSkipped} }

// ID returns the record identifier.
func (r Result) ID() string { return r.id }

// Outcome returns the processing outcome.
func (r Result) Outcome() Outcome { return r.outcome }

// Err returns the failure cause, if any.
func (r Result) Err() error { return r.err }

// Manifest is the per-run report. It exists for operator reporting only and
// is never persisted.
type Manifest struct {
	SourceCount int
	Results     []Result
}

// Add appends a record outcome.
func (m *Manifest) Add(r Result) { m.Results = append(m.Results, r) }

// Succeeded returns the number of records replayed successfully.
func (m *Manifest) Succeeded() int { return m.count(OutcomeOK) }

// Failed returns the number of records that could not be replayed.
func (m *Manifest) Failed() int { return m.count(OutcomeFailed) }

// Skipped returns the number of records skipped.
func (m *Manifest) Skipped() int { return m.count(OutcomeSkipped) }

// FailedIDs returns the ids of failed records in processing order.
func (m *Manifest) FailedIDs() []string {
	var ids []string
	for _, r := range m.Results {
		if r.outcome == OutcomeFailed {
			ids = append(ids, r.id)
		}
	}
	return ids
}

func (m *Manifest) count(o Outcome) int {
	n := 0
	for _, r := range m.Results {
		if r.outcome == o {
			n++
		}
	}
	return n
}
