package models

import "time"

// Outcome classifies the result of processing a single post.
type Outcome string

const (
	// OutcomeCreated means a new remote post was created.
	OutcomeCreated Outcome = "created"
	// OutcomeUpdated means an existing remote post was partially updated.
	OutcomeUpdated Outcome = "updated"
	// OutcomeUnchanged means enhancement produced no change and the
	// remote post was left alone.
	OutcomeUnchanged Outcome = "skipped-unchanged"
	// OutcomeRejected means the draft failed quality checks and the post
	// was permanently skipped for this run.
	OutcomeRejected Outcome = "rejected-low-quality"
	// OutcomeFailed means an upstream call failed and the post was
	// skipped without aborting the batch.
	OutcomeFailed Outcome = "failed"
)

// PostResult is the per-post entry in a batch report.
type PostResult struct {
	Title   string    `json:"title"`
	Outcome Outcome   `json:"outcome"`
	Stage   string    `json:"stage,omitempty"`
	Detail  string    `json:"detail,omitempty"`
	At      time.Time `json:"at"`
}

// Report aggregates the outcomes of one batch run. Callers decide
// skip-vs-abort per post; the report only records what happened.
type Report struct {
	RunID    string       `json:"run_id"`
	Started  time.Time    `json:"started"`
	Finished time.Time    `json:"finished"`
	Results  []PostResult `json:"results"`
}

// Add appends a per-post result stamped with the current time.
func (r *Report) Add(title string, outcome Outcome, stage, detail string) {
	r.Results = append(r.Results, PostResult{
		Title:   title,
		Outcome: outcome,
		Stage:   stage,
		Detail:  detail,
		At:      time.Now(),
	})
}

// Count returns the number of results with the given outcome.
func (r *Report) Count(outcome Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// AllFailed reports whether every post in a non-empty batch failed, the
// condition that maps to a non-zero exit code.
func (r *Report) AllFailed() bool {
	if len(r.Results) == 0 {
		return false
	}
	return r.Count(OutcomeFailed) == len(r.Results)
}
