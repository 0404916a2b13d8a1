package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"NewsDebate/internal/domain"
)

type bufferWriter struct {
	bytes.Buffer
	closed   bool
	closeErr error
}

func (b *bufferWriter) Close() error {
	b.closed = true
	return b.closeErr
}

var sampleRecord = domain.TranscriptRecord{
	ArticleID:  "a1",
	Title:      "Council approves budget",
	Transcript: []domain.Message{{Role: domain.RoleModerator, Content: "Welcome."}},
	StopReason: "script_finished",
	Completed:  true,
	Verdict:    domain.VerdictTrue,
	ProbTrue:   0.9,
	StartedAt:  time.Date(2025, 4, 3, 10, 0, 0, 0, time.UTC),
	FinishedAt: time.Date(2025, 4, 3, 10, 2, 0, 0, time.UTC),
}

func TestObjectName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"transcripts/": "transcripts/2025/04/03/a1-1743674400.json",
		"":             "2025/04/03/a1-1743674400.json",
		"/debates":     "debates/2025/04/03/a1-1743674400.json",
	}
	for prefix, want := range tests {
		if got := objectName(prefix, sampleRecord); got != want {
			t.Errorf("objectName(%q) = %q, want %q", prefix, got, want)
		}
	}
}

func TestStoreWritesJSON(t *testing.T) {
	t.Parallel()

	buf := &bufferWriter{}
	var gotObject string
	archive := &GCSArchive{prefix: "transcripts/", open: func(_ context.Context, object string) io.WriteCloser {
		gotObject = object
		return buf
	}}

	if err := archive.Store(context.Background(), sampleRecord); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if gotObject != "transcripts/2025/04/03/a1-1743674400.json" || !buf.closed {
		t.Fatalf("unexpected object %q (closed=%v)", gotObject, buf.closed)
	}

	var decoded domain.TranscriptRecord
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ArticleID != "a1" || decoded.Verdict != domain.VerdictTrue || len(decoded.Transcript) != 1 {
		t.Fatalf("unexpected record: %+v", decoded)
	}
}

func TestStoreSurfacesCloseError(t *testing.T) {
	t.Parallel()

	archive := &GCSArchive{open: func(context.Context, string) io.WriteCloser {
		return &bufferWriter{closeErr: errors.New("permission denied")}
	}}
	if err := archive.Store(context.Background(), sampleRecord); err == nil {
		t.Fatalf("expected close error")
	}
}
