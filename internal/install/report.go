package install

import (
	"github.com/aretw0/transit/pkg/domain"
)

// Report is the result of one installer run.
// It is returned even when the run fails, so callers can tell fully applied,
// partially applied and not attempted objects apart.
type Report struct {
	OperationID string `json:"operation_id"`
	// Order is the installation order computed for the closure.
	Order []domain.Key `json:"order"`
	// Log is the transaction log of the operation up to the end of the run.
	Log      []domain.LogEntry             `json:"log"`
	Outcomes map[domain.Key]domain.Outcome `json:"-"`
	// Errors holds the recoverable per-object failures.
	Errors []error `json:"-"`
}

func newReport(operationID string) *Report {
	return &Report{
		OperationID: operationID,
		Outcomes:    make(map[domain.Key]domain.Outcome),
	}
}

// Outcome returns the outcome of the object with key.
func (r *Report) Outcome(key domain.Key) domain.Outcome {
	if o, ok := r.Outcomes[key]; ok {
		return o
	}
	return domain.OutcomeNotAttempted
}

// Count returns how many objects ended with outcome o.
func (r *Report) Count(o domain.Outcome) int {
	n := 0
	for _, k := range r.Order {
		if r.Outcome(k) == o {
			n++
		}
	}
	return n
}

// Complete reports whether every object was applied or skipped.
func (r *Report) Complete() bool {
	for _, k := range r.Order {
		switch r.Outcome(k) {
		case domain.OutcomeApplied, domain.OutcomeSkipped:
		default:
			return false
		}
	}
	return true
}
