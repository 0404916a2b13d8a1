package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"NewsDebate/internal/domain"
	"NewsDebate/internal/infrastructure/storage"
	"NewsDebate/internal/logging"
)

type fakePipeline struct {
	sizes []int
	err   error
	next  *domain.ArticleOutcome
}

func (f *fakePipeline) ProcessBatch(_ context.Context, size int) (domain.BatchResult, error) {
	f.sizes = append(f.sizes, size)
	if f.err != nil {
		return domain.BatchResult{}, f.err
	}
	result := domain.BatchResult{Total: 1}
	result.Add(domain.ArticleOutcome{ArticleID: "a1", Status: domain.OutcomeCompleted})
	result.Finalize()
	return result, nil
}

func (f *fakePipeline) ProcessNext(context.Context) (*domain.ArticleOutcome, error) {
	return f.next, f.err
}

func newTestServer(p *fakePipeline, repo *storage.MemoryRepository) http.Handler {
	return NewServer(p, repo, 10, logging.Discard()).Routes()
}

func TestBatchEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		query    string
		err      error
		wantCode int
		wantSize int
	}{
		{"default size", "", nil, http.StatusOK, 10},
		{"explicit size", "?size=3", nil, http.StatusOK, 3},
		{"bad size", "?size=abc", nil, http.StatusBadRequest, 0},
		{"too large", "?size=1000", nil, http.StatusBadRequest, 0},
		{"claim failure", "", fmt.Errorf("%w: db down", domain.ErrClaim), http.StatusServiceUnavailable, 10},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &fakePipeline{err: tt.err}
			rec := httptest.NewRecorder()
			newTestServer(p, storage.NewMemoryRepository()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/batches"+tt.query, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantSize == 0 {
				if len(p.sizes) != 0 {
					t.Fatalf("pipeline must not run for invalid input")
				}
				return
			}
			if len(p.sizes) != 1 || p.sizes[0] != tt.wantSize {
				t.Fatalf("unexpected sizes: %v", p.sizes)
			}
			if rec.Code == http.StatusOK {
				var result domain.BatchResult
				if err := json.NewDecoder(rec.Body).Decode(&result); err != nil || result.Processed != 1 || result.SuccessRate != 100 {
					t.Fatalf("unexpected body: %+v %v", result, err)
				}
			}
		})
	}
}

func TestBatchEndpointRejectsGet(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestServer(&fakePipeline{}, storage.NewMemoryRepository()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/batches", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestNextEndpoint(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestServer(&fakePipeline{}, storage.NewMemoryRepository()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/articles/next", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("empty backlog should be 204, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	p := &fakePipeline{next: &domain.ArticleOutcome{ArticleID: "a9", Status: domain.OutcomeFailed}}
	newTestServer(p, storage.NewMemoryRepository()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/articles/next", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	newTestServer(&fakePipeline{err: errors.New("boom")}, storage.NewMemoryRepository()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/articles/next", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestResetStuckAndStats(t *testing.T) {
	t.Parallel()

	repo := storage.NewMemoryRepository()
	repo.Add(domain.Article{ID: "a1", Title: "t"}, domain.Article{ID: "a2", Title: "t"})
	if _, err := repo.ClaimBatch(context.Background(), 1); err != nil {
		t.Fatalf("ClaimBatch: %v", err)
	}
	handler := newTestServer(&fakePipeline{}, repo)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/articles/reset-stuck", nil))
	var reset map[string]int
	if err := json.NewDecoder(rec.Body).Decode(&reset); err != nil || reset["reset"] != 1 {
		t.Fatalf("unexpected reset response: %v %v", reset, err)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	var stats domain.Stats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalArticles != 2 || stats.NewArticles != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestServer(&fakePipeline{}, storage.NewMemoryRepository()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected health response: %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
}
