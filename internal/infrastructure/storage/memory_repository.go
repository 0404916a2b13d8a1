package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"NewsDebate/internal/domain"
	"NewsDebate/internal/ports"
)

// MemoryRepository keeps articles and syntheses in process memory. Every
// operation runs inside one critical section, which makes claims atomic.
type MemoryRepository struct {
	mu        sync.Mutex
	articles  map[string]*domain.Article
	syntheses map[string]domain.Synthesis
	now       func() time.Time
}

var (
	_ ports.ArticleStore   = (*MemoryRepository)(nil)
	_ ports.SynthesisStore = (*MemoryRepository)(nil)
)

// NewMemoryRepository returns an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		articles:  make(map[string]*domain.Article),
		syntheses: make(map[string]domain.Synthesis),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Add stores articles as ingestion would and returns their ids. Missing ids
// are generated and a zero ScrapedAt is set to the current time.
func (r *MemoryRepository) Add(articles ...domain.Article) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(articles))
	for _, a := range articles {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.ScrapedAt.IsZero() {
			a.ScrapedAt = r.now()
		}
		stored := a
		r.articles[a.ID] = &stored
		ids = append(ids, a.ID)
	}
	return ids
}

// Article returns a copy of the stored article.
func (r *MemoryRepository) Article(id string) (domain.Article, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.articles[id]
	if !ok {
		return domain.Article{}, false
	}
	return *a, true
}

// Synthesis returns a copy of the stored synthesis.
func (r *MemoryRepository) Synthesis(id string) (domain.Synthesis, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.syntheses[id]
	return s, ok
}

// ClaimNext claims the oldest claimable article, or returns nil when none is left.
func (r *MemoryRepository) ClaimNext(ctx context.Context) (*domain.Article, error) {
	claimed, err := r.ClaimBatch(ctx, 1)
	if err != nil || len(claimed) == 0 {
		return nil, err
	}
	return &claimed[0], nil
}

// ClaimBatch claims up to limit articles ordered by ScrapedAt.
func (r *MemoryRepository) ClaimBatch(ctx context.Context, limit int) ([]domain.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("claim batch: %w", err)
	}
	if limit <= 0 {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	candidates := make([]*domain.Article, 0)
	for _, a := range r.articles {
		if a.Status.Claimable() {
			candidates = append(candidates, a)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].ScrapedAt.Equal(candidates[j].ScrapedAt) {
			return candidates[i].ID < candidates[j].ID
		}
		return candidates[i].ScrapedAt.Before(candidates[j].ScrapedAt)
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	now := r.now()
	claimed := make([]domain.Article, 0, len(candidates))
	for _, a := range candidates {
		a.Status = domain.StatusProcessing
		started := now
		a.ProcessingStartedAt = &started
		claimed = append(claimed, *a)
	}
	return claimed, nil
}

// MarkFailed moves an article to failed from any status, overwriting the reason
// and dropping any synthesis link.
func (r *MemoryRepository) MarkFailed(_ context.Context, id, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.articles[id]
	if !ok {
		return fmt.Errorf("mark failed %s: %w", id, domain.ErrArticleNotFound)
	}
	failed := r.now()
	a.Status = domain.StatusFailed
	a.ProcessingFailedAt = &failed
	a.ErrorMessage = reason
	a.SynthesisID = ""
	return nil
}

// MarkCompleted links the synthesis and completes a processing article.
func (r *MemoryRepository) MarkCompleted(_ context.Context, id, synthesisID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.articles[id]
	if !ok {
		return fmt.Errorf("mark completed %s: %w", id, domain.ErrArticleNotFound)
	}
	if a.Status != domain.StatusProcessing {
		return fmt.Errorf("mark completed %s from %q: %w", id, a.Status, domain.ErrInvalidTransition)
	}
	completed := r.now()
	a.Status = domain.StatusCompleted
	a.ProcessingCompletedAt = &completed
	a.SynthesisID = synthesisID
	return nil
}

// Release returns the given processing articles to new. Other statuses are untouched.
func (r *MemoryRepository) Release(_ context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if a, ok := r.articles[id]; ok && a.Status == domain.StatusProcessing {
			a.Status = domain.StatusNew
			a.ProcessingStartedAt = nil
		}
	}
	return nil
}

// ResetStuck returns every processing article to new.
func (r *MemoryRepository) ResetStuck(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reset := 0
	for _, a := range r.articles {
		if a.Status == domain.StatusProcessing {
			a.Status = domain.StatusNew
			a.ProcessingStartedAt = nil
			reset++
		}
	}
	return reset, nil
}

// Stats counts articles per status.
func (r *MemoryRepository) Stats(_ context.Context) (domain.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[domain.ArticleStatus]int)
	for _, a := range r.articles {
		counts[a.Status]++
	}
	return domain.NewStats(counts, len(r.syntheses)), nil
}

// InsertSynthesis stores an immutable synthesis and returns its id.
func (r *MemoryRepository) InsertSynthesis(_ context.Context, s domain.Synthesis) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if _, exists := r.syntheses[s.ID]; exists {
		return "", fmt.Errorf("insert synthesis %s: duplicate id", s.ID)
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.now()
	}
	r.syntheses[s.ID] = s
	return s.ID, nil
}

// DeleteSynthesis removes a synthesis. Deleting an unknown id is not an error.
func (r *MemoryRepository) DeleteSynthesis(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.syntheses, id)
	return nil
}
