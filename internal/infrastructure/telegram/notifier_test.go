package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPublishDigest(t *testing.T) {
	t.Parallel()

	var gotPath, gotChat, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewNotifier("123:abc", "-100")
	n.baseURL = srv.URL

	if err := n.PublishDigest(context.Background(), "Batch: 1 claimed"); err != nil {
		t.Fatalf("PublishDigest: %v", err)
	}
	if gotPath != "/bot123:abc/sendMessage" || gotChat != "-100" || gotText != "Batch: 1 claimed" {
		t.Fatalf("unexpected request: %s %s %q", gotPath, gotChat, gotText)
	}
}

func TestPublishDigestTruncatesAndReportsErrors(t *testing.T) {
	t.Parallel()

	var gotLen int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotLen = len(r.PostForm.Get("text"))
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewNotifier("t", "c")
	n.baseURL = srv.URL

	err := n.PublishDigest(context.Background(), strings.Repeat("x", 5000))
	if err == nil {
		t.Fatalf("expected error for non-200 response")
	}
	if gotLen != maxMessageLen {
		t.Fatalf("expected message truncated to %d, got %d", maxMessageLen, gotLen)
	}

	if err := NewNotifier("", "").PublishDigest(context.Background(), "x"); err == nil {
		t.Fatalf("expected misconfiguration error")
	}
}
