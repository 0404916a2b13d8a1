package ports

import (
	"context"
	"time"

	"NewsDebate/internal/domain"
)

// ArticleStore tracks article processing state. Claim operations must be
// atomic: two concurrent callers never receive the same article.
type ArticleStore interface {
	ClaimNext(ctx context.Context) (*domain.Article, error)
	ClaimBatch(ctx context.Context, limit int) ([]domain.Article, error)
	MarkFailed(ctx context.Context, id, reason string) error
	MarkCompleted(ctx context.Context, id, synthesisID string) error
	Release(ctx context.Context, ids []string) error
	ResetStuck(ctx context.Context) (int, error)
	Stats(ctx context.Context) (domain.Stats, error)
}

// SynthesisStore persists immutable synthesis records.
type SynthesisStore interface {
	InsertSynthesis(ctx context.Context, synthesis domain.Synthesis) (string, error)
	DeleteSynthesis(ctx context.Context, id string) error
}

// ConversationEngine produces the next debate message for the active speaker.
type ConversationEngine interface {
	Name() string
	Respond(ctx context.Context, req domain.TurnRequest) (domain.Message, error)
}

// ContentNormalizer turns raw ingested bodies into debate-ready text.
type ContentNormalizer interface {
	Normalize(raw string) (string, error)
}

// TranscriptArchive keeps a copy of every debate transcript.
type TranscriptArchive interface {
	Store(ctx context.Context, record domain.TranscriptRecord) error
}

// Notifier streams batch digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
