package domain

// OutcomeStatus is the per-article result reported to batch callers.
type OutcomeStatus string

const (
	OutcomeCompleted OutcomeStatus = "completed"
	OutcomeFailed    OutcomeStatus = "failed"
	// OutcomeReleased marks a claimed article returned to the backlog because
	// the batch was cancelled before it started.
	OutcomeReleased OutcomeStatus = "released"
)

// ArticleOutcome describes what happened to one claimed article.
type ArticleOutcome struct {
	ArticleID   string        `json:"article_id"`
	Status      OutcomeStatus `json:"status"`
	Title       string        `json:"title"`
	Source      string        `json:"source"`
	SynthesisID string        `json:"synthesis_id,omitempty"`
	Verdict     Verdict       `json:"verdict,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// BatchResult aggregates one ProcessBatch invocation.
type BatchResult struct {
	Total       int              `json:"total"`
	Processed   int              `json:"processed"`
	Failed      int              `json:"failed"`
	Released    int              `json:"released"`
	SuccessRate float64          `json:"success_rate"`
	Results     []ArticleOutcome `json:"results"`
}

// Add records an outcome and keeps the counters in step.
func (b *BatchResult) Add(o ArticleOutcome) {
	b.Results = append(b.Results, o)
	switch o.Status {
	case OutcomeCompleted:
		b.Processed++
	case OutcomeFailed:
		b.Failed++
	case OutcomeReleased:
		b.Released++
	}
}

// Merge folds another result into b.
func (b *BatchResult) Merge(other BatchResult) {
	b.Total += other.Total
	for _, o := range other.Results {
		b.Add(o)
	}
	b.Finalize()
}

// Finalize computes the success rate as a percentage of claimed articles.
func (b *BatchResult) Finalize() {
	if b.Total == 0 {
		b.SuccessRate = 0
		return
	}
	b.SuccessRate = float64(b.Processed) / float64(b.Total) * 100
}
