// Package debate runs the scripted multi-role conversation for one article.
package debate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"NewsDebate/internal/analysis"
	"NewsDebate/internal/domain"
	"NewsDebate/internal/ports"
)

// Fallback texts substituted when a report step never ran.
const (
	SynthesisFallback = "Synthesis not completed - debate ended early"
	AnalysisFallback  = `{"raw_analysis": "Analysis not completed - debate ended early", "prob_true": 0.5, "verdict": "incomplete"}`
)

// StopReason explains why a session stopped advancing.
type StopReason string

const (
	StopScriptFinished StopReason = "script_finished"
	StopTerminated     StopReason = "terminated"
	StopRoundCap       StopReason = "round_cap"
	StopTimeout        StopReason = "timeout"
	StopEngineError    StopReason = "engine_error"
	StopCancelled      StopReason = "cancelled"
)

const (
	untitledArticle = "Untitled"
	unknownSource   = "unknown"
)

// Config bounds a session.
type Config struct {
	MaxRounds   int
	Timeout     time.Duration
	TurnTimeout time.Duration
	MaxWords    int
	Spanish     bool
	RolePrompts map[string]string
}

// Result is the outcome of one debate.
type Result struct {
	Transcript []domain.Message
	Completed  bool
	StopReason StopReason
	Rounds     int
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Reports returns the final Synthesis and Analysis texts, substituting the
// fallbacks for roles that never spoke.
func (r Result) Reports() (synthesis, analysisText string) {
	synthesis, analysisText = analysis.ExtractFinalMessages(r.Transcript)
	if synthesis == "" {
		synthesis = SynthesisFallback
	}
	if analysisText == "" {
		analysisText = AnalysisFallback
	}
	return synthesis, analysisText
}

// Session drives the conversation engine through Script.
type Session struct {
	engine  ports.ConversationEngine
	cfg     Config
	prompts map[domain.Role]string
	logger  *slog.Logger
}

// NewSession builds a session runner. Zero MaxRounds means one round per scripted step.
func NewSession(engine ports.ConversationEngine, cfg Config, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = len(Script)
	}
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = 180
	}
	return &Session{
		engine:  engine,
		cfg:     cfg,
		prompts: ResolvePrompts(cfg.MaxWords, cfg.Spanish, cfg.RolePrompts),
		logger:  logger,
	}
}

// Run executes the script for article. Engine failures and timeouts end the
// session early without an error; the partial transcript is returned. A
// missing title or source is replaced with a placeholder. Only a session built
// without an engine fails.
func (s *Session) Run(ctx context.Context, article domain.Article) (Result, error) {
	if s.engine == nil {
		return Result{}, fmt.Errorf("run debate %s: no engine configured: %w", article.ID, domain.ErrEngine)
	}
	article = withPlaceholders(article)

	sessionCtx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		sessionCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	logger := s.logger.With("article_id", article.ID)
	brief := BuildBrief(article, s.cfg.MaxWords)
	res := Result{StartedAt: time.Now().UTC(), StopReason: StopScriptFinished}

	for i, step := range Script {
		if res.Rounds >= s.cfg.MaxRounds {
			res.StopReason = StopRoundCap
			break
		}
		if err := sessionCtx.Err(); err != nil {
			res.StopReason = contextReason(err)
			res.Err = err
			break
		}

		req := domain.TurnRequest{
			Brief:      brief,
			Transcript: append([]domain.Message(nil), res.Transcript...),
			Speaker:    speakerFor(step, s.prompts, s.cfg.MaxWords),
		}
		res.Rounds++

		msg, err := s.turn(sessionCtx, req)
		if err != nil {
			res.Err = err
			res.StopReason = StopEngineError
			if ctxErr := sessionCtx.Err(); ctxErr != nil {
				res.StopReason = contextReason(ctxErr)
			}
			logger.Warn("debate turn failed", "round", res.Rounds, "role", step.Role, "reason", res.StopReason, "error", err)
			break
		}

		if role, ok := domain.ParseRole(string(msg.Role)); ok {
			msg.Role = role
		} else {
			msg.Role = step.Role
		}
		res.Transcript = append(res.Transcript, msg)
		logger.Debug("debate turn", "round", res.Rounds, "role", msg.Role, "stage", step.Stage, "chars", len(msg.Content))

		if ShouldTerminate(msg) {
			if i < len(Script)-1 {
				res.StopReason = StopTerminated
			}
			break
		}
	}

	res.FinishedAt = time.Now().UTC()
	res.Completed = spoke(res.Transcript, domain.RoleSynthesis) && spoke(res.Transcript, domain.RoleAnalysis)

	logger.Info("debate finished",
		"rounds", res.Rounds,
		"reason", res.StopReason,
		"completed", res.Completed,
		"duration", res.FinishedAt.Sub(res.StartedAt),
	)
	return res, nil
}

// turn calls the engine in its own goroutine so a call that ignores ctx is
// still abandoned when the turn or session deadline passes.
func (s *Session) turn(ctx context.Context, req domain.TurnRequest) (domain.Message, error) {
	if s.cfg.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.TurnTimeout)
		defer cancel()
	}

	type reply struct {
		msg domain.Message
		err error
	}
	done := make(chan reply, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- reply{err: fmt.Errorf("engine panic: %v", r)}
			}
		}()
		msg, err := s.engine.Respond(ctx, req)
		done <- reply{msg: msg, err: err}
	}()

	select {
	case <-ctx.Done():
		return domain.Message{}, fmt.Errorf("%w: %s turn: %w", domain.ErrEngine, req.Speaker.Role, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return domain.Message{}, fmt.Errorf("%w: %s turn: %w", domain.ErrEngine, req.Speaker.Role, r.err)
		}
		return r.msg, nil
	}
}

func withPlaceholders(article domain.Article) domain.Article {
	if strings.TrimSpace(article.Title) == "" {
		article.Title = untitledArticle
	}
	if strings.TrimSpace(article.Source) == "" {
		article.Source = unknownSource
	}
	return article
}

func contextReason(err error) StopReason {
	if errors.Is(err, context.DeadlineExceeded) {
		return StopTimeout
	}
	return StopCancelled
}

func spoke(transcript []domain.Message, role domain.Role) bool {
	for _, msg := range transcript {
		if msg.Role == role {
			return true
		}
	}
	return false
}
