package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoActiveSession is returned when a command needs a running interview.
	ErrNoActiveSession = errors.New("no active interview session")
	// ErrSessionPaused is returned for timer commands while the interview waits to be resumed.
	ErrSessionPaused = fmt.Errorf("%w: interview is paused", ErrNoActiveSession)
	// ErrSessionInProgress blocks a second session while one candidate is active.
	ErrSessionInProgress = errors.New("an interview is already in progress")
	// ErrIncompleteIdentity is matched by IncompleteIdentityError.
	ErrIncompleteIdentity = errors.New("incomplete identity")
	// ErrCandidateNotFound indicates an unknown candidate id.
	ErrCandidateNotFound = errors.New("candidate not found")
	// ErrCatalogNotFound indicates the question catalog could not be loaded.
	ErrCatalogNotFound = errors.New("question catalog not found")
	// ErrInvalidCatalog indicates a catalog that cannot seed a session.
	ErrInvalidCatalog = errors.New("invalid question catalog")
	// ErrScoreOutOfRange indicates the scorer returned a value outside 1..10.
	ErrScoreOutOfRange = errors.New("score out of range")
	// ErrCorruptSnapshot indicates a persisted state that violates the session invariants.
	ErrCorruptSnapshot = errors.New("corrupt interview snapshot")
)

// IncompleteIdentityError names the identity fields still missing.
type IncompleteIdentityError struct {
	Missing []string
}

func (e *IncompleteIdentityError) Error() string {
	return "incomplete identity: missing " + strings.Join(e.Missing, ", ")
}

func (e *IncompleteIdentityError) Is(target error) bool {
	return target == ErrIncompleteIdentity
}

// ScoringError reports a scorer failure for one question. The submission
// was not recorded and may be retried.
type ScoringError struct {
	Index int
	Err   error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("score question %d: %v", e.Index, e.Err)
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}
