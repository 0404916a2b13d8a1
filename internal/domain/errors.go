package domain

import "errors"

// Failure taxonomy shared by the pipeline. Callers wrap these with
// fmt.Errorf("...: %w", ErrX) and test with errors.Is.
var (
	// ErrEngine marks a failed or timed-out conversation-engine call.
	ErrEngine = errors.New("conversation engine failure")
	// ErrPersistence marks a failed store write for a single article.
	ErrPersistence = errors.New("persistence failure")
	// ErrClaim marks a store failure while claiming work; fatal for a batch.
	ErrClaim = errors.New("claim failure")
	// ErrArticleNotFound is returned when an article id is unknown to the store.
	ErrArticleNotFound = errors.New("article not found")
	// ErrInvalidTransition is returned when a status change is not allowed from
	// the article's current status.
	ErrInvalidTransition = errors.New("invalid status transition")
)
