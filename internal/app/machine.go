package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"interview-session-service/internal/domain"
)

// Machine implements the interview state transitions. It holds no session
// state itself: every operation takes a domain.State and returns a new one,
// leaving the input untouched when it fails.
type Machine struct {
	catalog domain.Catalog
	scorer  Scorer
	now     func() time.Time
	newID   func() string
}

// NewMachine validates the catalog and builds a machine using the wall
// clock and random UUIDs.
func NewMachine(catalog domain.Catalog, scorer Scorer) (*Machine, error) {
	return NewMachineWithClock(catalog, scorer, time.Now, uuid.NewString)
}

// NewMachineWithClock allows deterministic timestamps and ids in tests.
func NewMachineWithClock(catalog domain.Catalog, scorer Scorer, now func() time.Time, newID func() string) (*Machine, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	if scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}
	return &Machine{catalog: catalog, scorer: scorer, now: now, newID: newID}, nil
}

// Catalog returns the catalog sessions are seeded from.
func (m *Machine) Catalog() domain.Catalog {
	return m.catalog
}

// CollectIdentity merges the non-empty fields of partial into the pending
// identity and returns the fields still missing.
func (m *Machine) CollectIdentity(st domain.State, partial domain.Identity) (domain.State, []string, error) {
	if st.Pointer.ActiveCandidateID != "" {
		return st, nil, domain.ErrSessionInProgress
	}
	next := st.Clone()
	var pending domain.Identity
	if next.Pointer.PendingIdentity != nil {
		pending = *next.Pointer.PendingIdentity
	}
	merged := partial.Merge(pending)
	next.Pointer.PendingIdentity = &merged
	next.Pointer.LastCompletedID = ""
	return next, merged.Missing(), nil
}

// Start opens a session for a new candidate. Fields given in identity take
// precedence over a pending identity collected earlier.
func (m *Machine) Start(st domain.State, identity domain.Identity) (domain.State, error) {
	if st.Pointer.ActiveCandidateID != "" {
		return st, domain.ErrSessionInProgress
	}
	if st.Pointer.PendingIdentity != nil {
		identity = identity.Merge(*st.Pointer.PendingIdentity)
	} else {
		identity = identity.Merge(domain.Identity{})
	}
	if missing := identity.Missing(); len(missing) > 0 {
		return st, &domain.IncompleteIdentityError{Missing: missing}
	}

	questions := make([]domain.QuestionInstance, len(m.catalog.Questions))
	for i, def := range m.catalog.Questions {
		questions[i] = domain.QuestionInstance{QuestionDefinition: def}
	}
	candidate := domain.Candidate{
		ID:        m.newID(),
		Name:      identity.Name,
		Email:     identity.Email,
		Phone:     identity.Phone,
		StartTime: m.now(),
		Questions: questions,
		Status:    domain.StatusInProgress,
	}

	next := st.Clone()
	next.Candidates = append(next.Candidates, candidate)
	next.Pointer = domain.Pointer{
		ActiveCandidateID:    candidate.ID,
		CurrentQuestionIndex: 0,
	}
	armCountdown(&next.Pointer, questions[0].AllottedSeconds)
	return next, nil
}

// StageAnswer records the answer buffer used if the countdown expires.
func (m *Machine) StageAnswer(st domain.State, text string) (domain.State, error) {
	if st.Pointer.ActiveCandidateID == "" {
		return st, domain.ErrNoActiveSession
	}
	next := st.Clone()
	next.Pointer.DraftAnswer = text
	return next, nil
}

// Submit scores text as the answer to the current question and advances.
func (m *Machine) Submit(ctx context.Context, st domain.State, text string) (domain.State, error) {
	idx, err := requireRunning(st)
	if err != nil {
		return st, err
	}
	qi := st.Pointer.CurrentQuestionIndex
	question := st.Candidates[idx].Questions[qi]

	score, err := m.scorer.Score(ctx, question.QuestionDefinition, text)
	if err != nil {
		return st, &domain.ScoringError{Index: qi, Err: err}
	}
	if score < MinScore || score > MaxScore {
		return st, &domain.ScoringError{Index: qi, Err: fmt.Errorf("%w: got %d", domain.ErrScoreOutOfRange, score)}
	}

	next := st.Clone()
	next.Candidates[idx].Questions[qi].Answer = text
	next.Candidates[idx].Questions[qi].Score = score
	next.Pointer.DraftAnswer = ""
	m.advance(&next, idx)
	return next, nil
}

// advance moves to the next question or completes the candidate.
func (m *Machine) advance(st *domain.State, idx int) {
	candidate := &st.Candidates[idx]
	p := &st.Pointer
	if p.CurrentQuestionIndex < len(candidate.Questions)-1 {
		p.CurrentQuestionIndex++
		armCountdown(p, candidate.Questions[p.CurrentQuestionIndex].AllottedSeconds)
		return
	}

	end := m.now()
	candidate.FinalScore = Aggregate(candidate.Scores())
	candidate.Summary = Summarize(candidate.FinalScore)
	candidate.Status = domain.StatusCompleted
	candidate.EndTime = &end

	haltCountdown(p)
	p.ActiveCandidateID = ""
	p.PendingResumePrompt = false
	p.LastCompletedID = candidate.ID
}

// Tick advances the countdown by one second. When it reaches zero the
// staged answer is submitted. It reports whether that happened.
//
// If the scorer fails on auto-submit, Tick returns the ticked state along
// with the error: the countdown stays at zero and the next tick retries.
func (m *Machine) Tick(ctx context.Context, st domain.State) (domain.State, bool, error) {
	if _, err := requireRunning(st); err != nil {
		return st, false, err
	}
	next := st.Clone()
	if !tickCountdown(&next.Pointer) {
		return next, false, nil
	}
	submitted, err := m.Submit(ctx, next, next.Pointer.DraftAnswer)
	if err != nil {
		return next, false, err
	}
	return submitted, true, nil
}

// Pause halts the countdown without touching index, time or answers.
func (m *Machine) Pause(st domain.State) (domain.State, error) {
	if _, err := requireRunning(st); err != nil {
		return st, err
	}
	next := st.Clone()
	haltCountdown(&next.Pointer)
	return next, nil
}

// RequestResume raises the welcome-back prompt when an interview is
// waiting to be resumed. It reports whether the prompt is shown.
func (m *Machine) RequestResume(st domain.State) (domain.State, bool) {
	p := st.Pointer
	if p.ActiveCandidateID == "" || p.IsRunning {
		return st, false
	}
	next := st.Clone()
	next.Pointer.PendingResumePrompt = true
	return next, true
}

// Resume restarts the countdown where it stopped.
func (m *Machine) Resume(st domain.State) (domain.State, error) {
	if st.Pointer.ActiveCandidateID == "" {
		return st, domain.ErrNoActiveSession
	}
	next := st.Clone()
	next.Pointer.IsRunning = true
	next.Pointer.PendingResumePrompt = false
	return next, nil
}

// DismissResumePrompt is "continue later": it keeps the same candidate and
// behaves exactly like Resume. No path discards an in-progress candidate.
func (m *Machine) DismissResumePrompt(st domain.State) (domain.State, error) {
	return m.Resume(st)
}

// Restore validates a loaded state and parks an unfinished interview in
// the awaiting-resume phase.
func (m *Machine) Restore(st domain.State) (domain.State, error) {
	next := st.Clone()
	inProgress := 0
	for _, c := range next.Candidates {
		if c.Status == domain.StatusInProgress {
			inProgress++
		}
	}

	activeID := next.Pointer.ActiveCandidateID
	if activeID == "" {
		if inProgress != 0 {
			return st, fmt.Errorf("%w: %d in-progress candidates without an active session", domain.ErrCorruptSnapshot, inProgress)
		}
		next.Pointer.IsRunning = false
		next.Pointer.PendingResumePrompt = false
		return next, nil
	}

	idx := next.Find(activeID)
	if idx < 0 {
		return st, fmt.Errorf("%w: active candidate %s missing", domain.ErrCorruptSnapshot, activeID)
	}
	c := next.Candidates[idx]
	if c.Status != domain.StatusInProgress || inProgress != 1 {
		return st, fmt.Errorf("%w: active candidate %s is not the only one in progress", domain.ErrCorruptSnapshot, activeID)
	}
	qi := next.Pointer.CurrentQuestionIndex
	if qi < 0 || qi >= len(c.Questions) {
		return st, fmt.Errorf("%w: question index %d out of range", domain.ErrCorruptSnapshot, qi)
	}
	if next.Pointer.TimeLeftSeconds < 0 {
		return st, fmt.Errorf("%w: negative time left", domain.ErrCorruptSnapshot)
	}

	haltCountdown(&next.Pointer)
	next.Pointer.PendingResumePrompt = true
	return next, nil
}

// requireRunning returns the index of the active candidate if the
// interview is in progress.
func requireRunning(st domain.State) (int, error) {
	p := st.Pointer
	if p.ActiveCandidateID == "" {
		return -1, domain.ErrNoActiveSession
	}
	if !p.IsRunning {
		return -1, domain.ErrSessionPaused
	}
	idx := st.Find(p.ActiveCandidateID)
	if idx < 0 {
		return -1, domain.ErrNoActiveSession
	}
	return idx, nil
}
