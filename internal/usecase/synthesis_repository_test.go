package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"NewsDebate/internal/analysis"
	"NewsDebate/internal/domain"
	"NewsDebate/internal/infrastructure/storage"
	"NewsDebate/internal/logging"
)

type failingDeleteStore struct {
	*storage.MemoryRepository
}

func (failingDeleteStore) DeleteSynthesis(context.Context, string) error {
	return errors.New("disk full")
}

func claimOne(t *testing.T, repo *storage.MemoryRepository) string {
	t.Helper()
	ids := seedArticles(repo, 1)
	if _, err := repo.ClaimNext(context.Background()); err != nil {
		t.Fatalf("ClaimNext: %v", err)
	}
	return ids[0]
}

var (
	testReport   = domain.SynthesisReport{Report: "Likely True overall", Verdict: domain.VerdictLikelyTrue}
	testAnalysis = analysis.ParseAnalysis(`{"prob_true": 0.8, "verdict": "Likely True"}`)
)

func TestSaveCompletesArticle(t *testing.T) {
	t.Parallel()

	repo := storage.NewMemoryRepository()
	id := claimOne(t, repo)

	saver := NewSynthesisRepository(repo, repo, logging.Discard())
	synthesisID, err := saver.Save(context.Background(), id, testReport, testAnalysis)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	stored, _ := repo.Article(id)
	if stored.Status != domain.StatusCompleted || stored.SynthesisID != synthesisID {
		t.Fatalf("article not linked: %+v", stored)
	}
	synthesis, ok := repo.Synthesis(synthesisID)
	if !ok || synthesis.ArticleID != id || synthesis.AnalysisReport.ProbTrue != 0.8 {
		t.Fatalf("unexpected synthesis: %+v", synthesis)
	}
}

func TestSaveCompensatesFailedCompletion(t *testing.T) {
	t.Parallel()

	repo := storage.NewMemoryRepository()
	id := claimOne(t, repo)
	if err := repo.MarkFailed(context.Background(), id, "concurrent admin action"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	saver := NewSynthesisRepository(repo, repo, logging.Discard())
	synthesisID, err := saver.Save(context.Background(), id, testReport, testAnalysis)
	if !errors.Is(err, domain.ErrPersistence) || !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected persistence failure wrapping the transition error, got %v", err)
	}
	if synthesisID != "" {
		t.Fatalf("failed save must not return an id, got %q", synthesisID)
	}

	stats, _ := repo.Stats(context.Background())
	if stats.TotalSyntheses != 0 || stats.CompletedArticles != 0 {
		t.Fatalf("failed save left state behind: %+v", stats)
	}
}

func TestSaveReportsOrphanWhenCompensationFails(t *testing.T) {
	t.Parallel()

	repo := storage.NewMemoryRepository()
	seedArticles(repo, 1)

	saver := NewSynthesisRepository(failingDeleteStore{repo}, repo, logging.Discard())
	_, err := saver.Save(context.Background(), "a1", testReport, testAnalysis)
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if !strings.Contains(err.Error(), "orphaned synthesis") {
		t.Fatalf("error must name the orphan: %v", err)
	}

	stored, _ := repo.Article("a1")
	if stored.Status == domain.StatusCompleted {
		t.Fatalf("article must not be completed")
	}
}

func TestSaveInsertFailure(t *testing.T) {
	t.Parallel()

	repo := storage.NewMemoryRepository()
	id := claimOne(t, repo)
	if _, err := repo.InsertSynthesis(context.Background(), domain.Synthesis{ID: "dup"}); err != nil {
		t.Fatalf("InsertSynthesis: %v", err)
	}

	saver := NewSynthesisRepository(duplicateIDStore{repo}, repo, logging.Discard())
	if _, err := saver.Save(context.Background(), id, testReport, testAnalysis); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	stored, _ := repo.Article(id)
	if stored.Status != domain.StatusProcessing {
		t.Fatalf("insert failure must not touch the article, got %s", stored.Status)
	}
}

type duplicateIDStore struct {
	*storage.MemoryRepository
}

func (s duplicateIDStore) InsertSynthesis(ctx context.Context, synthesis domain.Synthesis) (string, error) {
	synthesis.ID = "dup"
	return s.MemoryRepository.InsertSynthesis(ctx, synthesis)
}
