package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := NewCronScheduler("*/30 * * * *", nil).Validate(); err != nil {
		t.Fatalf("valid expression rejected: %v", err)
	}
	if err := NewCronScheduler("every day", nil).Validate(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNext(t *testing.T) {
	t.Parallel()

	madrid, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	s := NewCronScheduler("0 6 * * *", madrid)

	from := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	next := s.Next(from)
	want := time.Date(2025, 6, 2, 6, 0, 0, 0, madrid)
	if !next.Equal(want) {
		t.Fatalf("next = %s, want %s", next, want)
	}
}

func TestStartRejectsBadSpecAndStopIsIdempotent(t *testing.T) {
	t.Parallel()

	bad := NewCronScheduler("not a cron", nil)
	if err := bad.Start(context.Background(), func(time.Time) {}); err == nil {
		t.Fatalf("expected schedule error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewCronScheduler("0 0 1 1 *", nil)
	if err := s.Start(ctx, func(time.Time) {}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}
