// Package archive stores debate transcripts in Google Cloud Storage.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"

	"NewsDebate/internal/domain"
	"NewsDebate/internal/ports"
)

// writerFunc opens a writer for the named object.
type writerFunc func(ctx context.Context, object string) io.WriteCloser

// GCSArchive writes one JSON object per debate session.
type GCSArchive struct {
	client *storage.Client
	prefix string
	open   writerFunc
}

var _ ports.TranscriptArchive = (*GCSArchive)(nil)

// NewGCSArchive creates a storage client for bucket using application default credentials.
func NewGCSArchive(ctx context.Context, bucket, prefix string) (*GCSArchive, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	handle := client.Bucket(bucket)
	return &GCSArchive{
		client: client,
		prefix: prefix,
		open: func(ctx context.Context, object string) io.WriteCloser {
			w := handle.Object(object).NewWriter(ctx)
			w.ContentType = "application/json"
			return w
		},
	}, nil
}

// Store uploads the transcript record.
func (a *GCSArchive) Store(ctx context.Context, record domain.TranscriptRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling transcript: %w", err)
	}

	writer := a.open(ctx, objectName(a.prefix, record))
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("writing transcript: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing transcript writer: %w", err)
	}

	return nil
}

// Close releases the storage client.
func (a *GCSArchive) Close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}

// objectName groups transcripts by day: <prefix>/2006/01/02/<article>-<unix>.json.
func objectName(prefix string, record domain.TranscriptRecord) string {
	day := record.StartedAt.UTC().Format("2006/01/02")
	file := fmt.Sprintf("%s-%d.json", record.ArticleID, record.StartedAt.Unix())
	return strings.TrimPrefix(path.Join(prefix, day, file), "/")
}
