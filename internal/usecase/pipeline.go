package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"NewsDebate/internal/analysis"
	"NewsDebate/internal/debate"
	"NewsDebate/internal/domain"
	"NewsDebate/internal/ports"
)

// DebateRunner runs one debate session for an article.
type DebateRunner interface {
	Run(ctx context.Context, article domain.Article) (debate.Result, error)
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Articles   ports.ArticleStore
	Syntheses  ports.SynthesisStore
	Debate     DebateRunner
	Normalizer ports.ContentNormalizer
	Archive    ports.TranscriptArchive
	Notifier   ports.Notifier
	Logger     *slog.Logger
}

// Pipeline claims articles and turns each into a persisted synthesis.
type Pipeline struct {
	articles   ports.ArticleStore
	saver      *SynthesisRepository
	debate     DebateRunner
	normalizer ports.ContentNormalizer
	archive    ports.TranscriptArchive
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		articles:   deps.Articles,
		saver:      NewSynthesisRepository(deps.Syntheses, deps.Articles, logger.With("component", "synthesis_repository")),
		debate:     deps.Debate,
		normalizer: deps.Normalizer,
		archive:    deps.Archive,
		notifier:   deps.Notifier,
		logger:     logger,
	}
}

// ProcessBatch claims up to size articles and processes them one by one. A
// failing article is marked failed and the batch moves on; only a failed claim
// is returned as an error. When ctx is cancelled the article in flight still
// finishes and the claimed articles that never started are released.
func (p *Pipeline) ProcessBatch(ctx context.Context, size int) (domain.BatchResult, error) {
	claimed, err := p.articles.ClaimBatch(ctx, size)
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("%w: claim batch of %d: %w", domain.ErrClaim, size, err)
	}

	result := domain.BatchResult{Total: len(claimed), Results: make([]domain.ArticleOutcome, 0, len(claimed))}
	if len(claimed) == 0 {
		p.logger.Debug("no articles to process")
		return result, nil
	}
	p.logger.Info("batch claimed", "size", len(claimed))

	for i, article := range claimed {
		if ctx.Err() != nil {
			for _, o := range p.release(claimed[i:]) {
				result.Add(o)
			}
			break
		}
		result.Add(p.processArticle(ctx, article))
	}
	result.Finalize()

	p.logger.Info("batch finished",
		"total", result.Total,
		"processed", result.Processed,
		"failed", result.Failed,
		"released", result.Released,
		"success_rate", result.SuccessRate,
	)
	p.notify(ctx, result)

	return result, nil
}

// ProcessNext claims and processes a single article. It returns nil when the
// backlog is empty.
func (p *Pipeline) ProcessNext(ctx context.Context) (*domain.ArticleOutcome, error) {
	article, err := p.articles.ClaimNext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: claim next: %w", domain.ErrClaim, err)
	}
	if article == nil {
		return nil, nil
	}
	outcome := p.processArticle(ctx, *article)
	return &outcome, nil
}

// Drain runs ProcessBatch from up to workers goroutines until the backlog is
// empty or ctx is cancelled, and returns the merged result.
func (p *Pipeline) Drain(ctx context.Context, size, workers int) (domain.BatchResult, error) {
	if workers <= 0 {
		workers = 1
	}

	var (
		mu    sync.Mutex
		total domain.BatchResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for gctx.Err() == nil {
				res, err := p.ProcessBatch(gctx, size)
				if err != nil {
					return err
				}
				if res.Total == 0 {
					return nil
				}
				mu.Lock()
				total.Merge(res)
				mu.Unlock()
			}
			return nil
		})
	}

	err := g.Wait()
	total.Finalize()
	if err != nil {
		return total, fmt.Errorf("drain: %w", err)
	}
	return total, nil
}

func (p *Pipeline) processArticle(ctx context.Context, article domain.Article) (outcome domain.ArticleOutcome) {
	// Work already started is allowed to finish after the batch is cancelled.
	ctx = context.WithoutCancel(ctx)
	logger := p.logger.With("article_id", article.ID)

	outcome = domain.ArticleOutcome{
		ArticleID: article.ID,
		Title:     article.Title,
		Source:    article.Source,
	}

	defer func() {
		if r := recover(); r != nil {
			outcome = p.fail(ctx, logger, outcome, fmt.Errorf("panic: %v", r))
		}
	}()

	synthesisID, verdict, err := p.run(ctx, logger, article)
	if err != nil {
		return p.fail(ctx, logger, outcome, err)
	}

	outcome.Status = domain.OutcomeCompleted
	outcome.SynthesisID = synthesisID
	outcome.Verdict = verdict
	logger.Info("article completed", "synthesis_id", synthesisID, "verdict", verdict)
	return outcome
}

func (p *Pipeline) run(ctx context.Context, logger *slog.Logger, article domain.Article) (string, domain.Verdict, error) {
	if p.normalizer != nil && article.Content != "" {
		content, err := p.normalizer.Normalize(article.Content)
		if err != nil {
			logger.Warn("content normalization failed, using raw content", "error", err)
		} else {
			article.Content = content
		}
	}

	session, err := p.debate.Run(ctx, article)
	if err != nil {
		return "", "", fmt.Errorf("debate: %w", err)
	}
	if session.Err != nil {
		logger.Warn("debate ended early", "reason", session.StopReason, "error", session.Err)
	}

	synthesisText, analysisText := session.Reports()
	report := domain.SynthesisReport{
		Report:  synthesisText,
		Verdict: analysis.ExtractVerdict(synthesisText),
	}
	parsed := analysis.ParseAnalysis(analysisText)

	synthesisID, err := p.saver.Save(ctx, article.ID, report, parsed)
	if err != nil {
		return "", "", err
	}

	p.archiveTranscript(ctx, logger, article, session, report.Verdict, parsed.ProbTrue)
	return synthesisID, report.Verdict, nil
}

func (p *Pipeline) fail(ctx context.Context, logger *slog.Logger, outcome domain.ArticleOutcome, cause error) domain.ArticleOutcome {
	outcome.Status = domain.OutcomeFailed
	outcome.SynthesisID = ""
	outcome.Error = cause.Error()

	if err := p.articles.MarkFailed(ctx, outcome.ArticleID, cause.Error()); err != nil {
		logger.Error("mark failed", "cause", cause, "error", err)
		outcome.Error = fmt.Sprintf("%s; mark failed: %v", outcome.Error, err)
		return outcome
	}
	logger.Warn("article failed", "error", cause)
	return outcome
}

func (p *Pipeline) release(pending []domain.Article) []domain.ArticleOutcome {
	ids := make([]string, len(pending))
	for i, a := range pending {
		ids[i] = a.ID
	}

	var releaseErr string
	if err := p.articles.Release(context.Background(), ids); err != nil {
		p.logger.Error("release claimed articles", "ids", ids, "error", err)
		releaseErr = err.Error()
	} else {
		p.logger.Info("batch cancelled, released claimed articles", "count", len(ids))
	}

	outcomes := make([]domain.ArticleOutcome, len(pending))
	for i, a := range pending {
		outcomes[i] = domain.ArticleOutcome{
			ArticleID: a.ID,
			Status:    domain.OutcomeReleased,
			Title:     a.Title,
			Source:    a.Source,
			Error:     releaseErr,
		}
	}
	return outcomes
}

func (p *Pipeline) archiveTranscript(ctx context.Context, logger *slog.Logger, article domain.Article, session debate.Result, verdict domain.Verdict, probTrue float64) {
	if p.archive == nil {
		return
	}
	// The synthesis is already saved; nothing here may fail the article.
	defer func() {
		if r := recover(); r != nil {
			logger.Error("archive transcript panicked", "panic", r)
		}
	}()

	record := domain.TranscriptRecord{
		ArticleID:  article.ID,
		Title:      article.Title,
		Transcript: session.Transcript,
		StopReason: string(session.StopReason),
		Completed:  session.Completed,
		Verdict:    verdict,
		ProbTrue:   probTrue,
		StartedAt:  session.StartedAt,
		FinishedAt: session.FinishedAt,
	}
	if err := p.archive.Store(ctx, record); err != nil {
		logger.Warn("archive transcript", "error", err)
	}
}

func (p *Pipeline) notify(ctx context.Context, result domain.BatchResult) {
	if p.notifier == nil || result.Total == 0 {
		return
	}
	if err := p.notifier.PublishDigest(context.WithoutCancel(ctx), buildDigestMessage(result)); err != nil {
		p.logger.Warn("publish digest", "error", err)
	}
}

func buildDigestMessage(result domain.BatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Batch: %d claimed, %d completed, %d failed", result.Total, result.Processed, result.Failed)
	if result.Released > 0 {
		fmt.Fprintf(&b, ", %d released", result.Released)
	}
	fmt.Fprintf(&b, " (%.0f%%)\n\n", result.SuccessRate)

	for _, o := range result.Results {
		switch o.Status {
		case domain.OutcomeCompleted:
			fmt.Fprintf(&b, "- %s [%s]\nVerdict: %s\n\n", o.Title, o.Source, o.Verdict)
		case domain.OutcomeFailed:
			fmt.Fprintf(&b, "- %s [%s]\nFailed: %s\n\n", o.Title, o.Source, o.Error)
		}
	}
	return b.String()
}
