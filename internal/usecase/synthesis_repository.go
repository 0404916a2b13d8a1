package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsDebate/internal/domain"
	"NewsDebate/internal/ports"
)

// SynthesisRepository persists a debate outcome and completes its article.
type SynthesisRepository struct {
	syntheses ports.SynthesisStore
	articles  ports.ArticleStore
	logger    *slog.Logger
}

// NewSynthesisRepository wires the two stores involved in a save.
func NewSynthesisRepository(syntheses ports.SynthesisStore, articles ports.ArticleStore, logger *slog.Logger) *SynthesisRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &SynthesisRepository{syntheses: syntheses, articles: articles, logger: logger}
}

// Save inserts the synthesis and then marks the article completed. When the
// status update fails the inserted synthesis is deleted again, so a failed
// save never leaves a synthesis behind that no article points to. If that
// delete fails too, the orphan id is logged and carried in the error.
func (r *SynthesisRepository) Save(ctx context.Context, articleID string, report domain.SynthesisReport, analysis domain.AnalysisReport) (string, error) {
	synthesisID, err := r.syntheses.InsertSynthesis(ctx, domain.Synthesis{
		ArticleID:       articleID,
		SynthesisReport: report,
		AnalysisReport:  analysis,
		CreatedAt:       time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("%w: insert synthesis for %s: %w", domain.ErrPersistence, articleID, err)
	}

	markErr := r.articles.MarkCompleted(ctx, articleID, synthesisID)
	if markErr == nil {
		return synthesisID, nil
	}

	if delErr := r.syntheses.DeleteSynthesis(ctx, synthesisID); delErr != nil {
		r.logger.Error("orphaned synthesis",
			"article_id", articleID,
			"synthesis_id", synthesisID,
			"mark_error", markErr,
			"delete_error", delErr,
		)
		return "", fmt.Errorf("%w: complete article %s: %w (orphaned synthesis %s: %v)",
			domain.ErrPersistence, articleID, markErr, synthesisID, delErr)
	}

	return "", fmt.Errorf("%w: complete article %s: %w", domain.ErrPersistence, articleID, markErr)
}
