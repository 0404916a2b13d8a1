package usecase

import (
	"context"
	"testing"
	"time"

	"NewsDebate/internal/infrastructure/storage"
	"NewsDebate/internal/logging"
)

type manualDriver struct {
	job     func(time.Time)
	stopped bool
}

func (d *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	d.job = job
	return nil
}

func (d *manualDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

func TestSchedulerRunsBatchOnTrigger(t *testing.T) {
	t.Parallel()

	repo := storage.NewMemoryRepository()
	seedArticles(repo, 3)

	driver := &manualDriver{}
	s := NewScheduler(driver, newTestPipeline(repo, &fakeRunner{}, nil, nil), 2, logging.Discard())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	driver.job(time.Now())
	stats, _ := repo.Stats(context.Background())
	if stats.CompletedArticles != 2 || stats.NewArticles != 1 {
		t.Fatalf("expected one batch of 2, got %+v", stats)
	}

	driver.job(time.Now())
	stats, _ = repo.Stats(context.Background())
	if stats.CompletedArticles != 3 {
		t.Fatalf("expected backlog processed, got %+v", stats)
	}

	if err := s.Stop(context.Background()); err != nil || !driver.stopped {
		t.Fatalf("Stop: %v (stopped=%v)", err, driver.stopped)
	}
}
