package domain

import "time"

// ArticleStatus enumerates the processing lifecycle of an ingested article.
type ArticleStatus string

const (
	StatusNew        ArticleStatus = "new"
	StatusProcessing ArticleStatus = "processing"
	StatusCompleted  ArticleStatus = "completed"
	StatusFailed     ArticleStatus = "failed"
)

// Claimable reports whether the status makes the article available for a claim.
// Articles written by ingestion without a status are treated as new.
func (s ArticleStatus) Claimable() bool {
	return s == "" || s == StatusNew
}

// Article is a news item produced by ingestion and advanced by the pipeline.
type Article struct {
	ID                    string        `json:"id"`
	Title                 string        `json:"title"`
	Content               string        `json:"content"`
	Source                string        `json:"source"`
	URL                   string        `json:"url"`
	Status                ArticleStatus `json:"status"`
	ScrapedAt             time.Time     `json:"scraped_at"`
	ProcessingStartedAt   *time.Time    `json:"processing_started_at,omitempty"`
	ProcessingCompletedAt *time.Time    `json:"processing_completed_at,omitempty"`
	ProcessingFailedAt    *time.Time    `json:"processing_failed_at,omitempty"`
	ErrorMessage          string        `json:"error_message,omitempty"`
	SynthesisID           string        `json:"synthesis_id,omitempty"`
}

// Stats aggregates article counts per status.
type Stats struct {
	TotalArticles      int     `json:"total_articles"`
	NewArticles        int     `json:"new_articles"`
	ProcessingArticles int     `json:"processing_articles"`
	CompletedArticles  int     `json:"completed_articles"`
	FailedArticles     int     `json:"failed_articles"`
	TotalSyntheses     int     `json:"total_synthesis"`
	CompletionRate     float64 `json:"completion_rate"`
}

// NewStats derives the completion rate from per-status counts.
func NewStats(counts map[ArticleStatus]int, syntheses int) Stats {
	stats := Stats{
		NewArticles:        counts[StatusNew] + counts[""],
		ProcessingArticles: counts[StatusProcessing],
		CompletedArticles:  counts[StatusCompleted],
		FailedArticles:     counts[StatusFailed],
		TotalSyntheses:     syntheses,
	}
	for _, n := range counts {
		stats.TotalArticles += n
	}
	if stats.TotalArticles > 0 {
		stats.CompletionRate = float64(stats.CompletedArticles) / float64(stats.TotalArticles)
	}
	return stats
}
