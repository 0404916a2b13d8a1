package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"NewsDebate/internal/domain"
	"NewsDebate/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var articleColumns = []string{
	"id", "title", "content", "source", "url", "status", "scraped_at",
	"processing_started_at", "processing_completed_at", "processing_failed_at",
	"error_message", "synthesis_id",
}

// PostgresRepository persists articles and syntheses into Postgres.
type PostgresRepository struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ ports.ArticleStore   = (*PostgresRepository)(nil)
	_ ports.SynthesisStore = (*PostgresRepository)(nil)
)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// ClaimNext claims the oldest claimable article, or returns nil when none is left.
func (r *PostgresRepository) ClaimNext(ctx context.Context) (*domain.Article, error) {
	claimed, err := r.ClaimBatch(ctx, 1)
	if err != nil || len(claimed) == 0 {
		return nil, err
	}
	return &claimed[0], nil
}

// ClaimBatch claims up to limit articles in a single statement. Rows locked
// by a concurrent claim are skipped, so two callers never receive the same id.
func (r *PostgresRepository) ClaimBatch(ctx context.Context, limit int) ([]domain.Article, error) {
	if limit <= 0 {
		return nil, nil
	}

	query, args, err := claimQuery(limit, r.now())
	if err != nil {
		return nil, fmt.Errorf("build claim: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("claim articles: %w", err)
	}

	var claimed []domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan article: %w", err)
		}
		claimed = append(claimed, article)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	// RETURNING gives no ordering guarantee.
	sort.SliceStable(claimed, func(i, j int) bool {
		return claimed[i].ScrapedAt.Before(claimed[j].ScrapedAt)
	})
	return claimed, nil
}

// MarkFailed moves an article to failed from any status, overwriting the reason
// and dropping any synthesis link.
func (r *PostgresRepository) MarkFailed(ctx context.Context, id, reason string) error {
	query, args, err := markFailedQuery(id, reason, r.now())
	if err != nil {
		return fmt.Errorf("build mark failed: %w", err)
	}

	affected, err := r.exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("mark failed %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("mark failed %s: %w", id, domain.ErrArticleNotFound)
	}
	return nil
}

// MarkCompleted completes a processing article and links its synthesis.
func (r *PostgresRepository) MarkCompleted(ctx context.Context, id, synthesisID string) error {
	query, args, err := psql.Update("articles").
		Set("status", string(domain.StatusCompleted)).
		Set("processing_completed_at", r.now()).
		Set("synthesis_id", synthesisID).
		Where(sq.Eq{"id": id, "status": string(domain.StatusProcessing)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark completed: %w", err)
	}

	affected, err := r.exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("mark completed %s: %w", id, err)
	}
	if affected == 1 {
		return nil
	}

	var status sql.NullString
	err = r.db.QueryRowContext(ctx, `SELECT status FROM articles WHERE id = $1`, id).Scan(&status)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("mark completed %s: %w", id, domain.ErrArticleNotFound)
	case err != nil:
		return fmt.Errorf("mark completed %s: lookup status: %w", id, err)
	default:
		return fmt.Errorf("mark completed %s from %q: %w", id, status.String, domain.ErrInvalidTransition)
	}
}

// Release returns the given processing articles to new.
func (r *PostgresRepository) Release(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := psql.Update("articles").
		Set("status", string(domain.StatusNew)).
		Set("processing_started_at", nil).
		Where(sq.Eq{"status": string(domain.StatusProcessing)}).
		Where(sq.Expr("id = ANY(?)", pq.Array(ids))).
		ToSql()
	if err != nil {
		return fmt.Errorf("build release: %w", err)
	}

	if _, err := r.exec(ctx, query, args); err != nil {
		return fmt.Errorf("release articles: %w", err)
	}
	return nil
}

// ResetStuck returns every processing article to new.
func (r *PostgresRepository) ResetStuck(ctx context.Context) (int, error) {
	query, args, err := psql.Update("articles").
		Set("status", string(domain.StatusNew)).
		Set("processing_started_at", nil).
		Where(sq.Eq{"status": string(domain.StatusProcessing)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build reset stuck: %w", err)
	}

	affected, err := r.exec(ctx, query, args)
	if err != nil {
		return 0, fmt.Errorf("reset stuck: %w", err)
	}
	return int(affected), nil
}

// Stats counts articles per status plus the number of stored syntheses.
func (r *PostgresRepository) Stats(ctx context.Context) (domain.Stats, error) {
	query, args, err := psql.Select("status", "COUNT(*)").
		From("articles").
		GroupBy("status").
		ToSql()
	if err != nil {
		return domain.Stats{}, fmt.Errorf("build stats: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("query stats: %w", err)
	}

	counts := make(map[domain.ArticleStatus]int)
	for rows.Next() {
		var (
			status sql.NullString
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			_ = rows.Close()
			return domain.Stats{}, fmt.Errorf("scan stats: %w", err)
		}
		counts[domain.ArticleStatus(status.String)] += n
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return domain.Stats{}, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return domain.Stats{}, fmt.Errorf("close rows: %w", closeErr)
	}

	var syntheses int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM syntheses`).Scan(&syntheses); err != nil {
		return domain.Stats{}, fmt.Errorf("count syntheses: %w", err)
	}

	return domain.NewStats(counts, syntheses), nil
}

// InsertSynthesis stores an immutable synthesis and returns its id.
func (r *PostgresRepository) InsertSynthesis(ctx context.Context, s domain.Synthesis) (string, error) {
	query, args, err := insertSynthesisQuery(s, r.now())
	if err != nil {
		return "", err
	}

	var id string
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return "", fmt.Errorf("insert synthesis: %w", err)
	}
	return id, nil
}

// DeleteSynthesis removes a synthesis by id.
func (r *PostgresRepository) DeleteSynthesis(ctx context.Context, id string) error {
	query, args, err := psql.Delete("syntheses").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete synthesis: %w", err)
	}
	if _, err := r.exec(ctx, query, args); err != nil {
		return fmt.Errorf("delete synthesis %s: %w", id, err)
	}
	return nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args []any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func claimQuery(limit int, now time.Time) (string, []any, error) {
	oldest := sq.Select("id").
		From("articles").
		Where(sq.Or{
			sq.Eq{"status": string(domain.StatusNew)},
			sq.Eq{"status": nil},
		}).
		OrderBy("scraped_at ASC").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED")

	return psql.Update("articles").
		Set("status", string(domain.StatusProcessing)).
		Set("processing_started_at", now).
		Where(sq.Expr("id IN (?)", oldest)).
		Suffix("RETURNING " + strings.Join(articleColumns, ", ")).
		ToSql()
}

func markFailedQuery(id, reason string, now time.Time) (string, []any, error) {
	return psql.Update("articles").
		Set("status", string(domain.StatusFailed)).
		Set("processing_failed_at", now).
		Set("error_message", reason).
		Set("synthesis_id", nil).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func insertSynthesisQuery(s domain.Synthesis, now time.Time) (string, []any, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}

	synthesisJSON, err := json.Marshal(s.SynthesisReport)
	if err != nil {
		return "", nil, fmt.Errorf("encode synthesis report: %w", err)
	}
	analysisJSON, err := json.Marshal(s.AnalysisReport)
	if err != nil {
		return "", nil, fmt.Errorf("encode analysis report: %w", err)
	}

	return psql.Insert("syntheses").
		Columns("id", "article_id", "synthesis_report", "analysis_report", "verdict", "probability_true", "created_at").
		Values(s.ID, s.ArticleID, string(synthesisJSON), string(analysisJSON), string(s.SynthesisReport.Verdict), s.AnalysisReport.ProbTrue, s.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (domain.Article, error) {
	var (
		a                                   domain.Article
		title, content, source, url, status sql.NullString
		errorMessage, synthesisID           sql.NullString
		started, completed, failed          sql.NullTime
	)
	if err := row.Scan(
		&a.ID, &title, &content, &source, &url, &status, &a.ScrapedAt,
		&started, &completed, &failed, &errorMessage, &synthesisID,
	); err != nil {
		return domain.Article{}, err
	}

	a.Title = title.String
	a.Content = content.String
	a.Source = source.String
	a.URL = url.String
	a.Status = domain.ArticleStatus(status.String)
	a.ProcessingStartedAt = nullTime(started)
	a.ProcessingCompletedAt = nullTime(completed)
	a.ProcessingFailedAt = nullTime(failed)
	a.ErrorMessage = errorMessage.String
	a.SynthesisID = synthesisID.String
	return a, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
