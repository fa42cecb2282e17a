package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"interview-session-service/internal/domain"
	"interview-session-service/internal/metrics"
)

// SnapshotRepository abstracts where the interview state is persisted (in-memory, Redis, Postgres).
type SnapshotRepository interface {
	Load(ctx context.Context) (domain.State, error)
	Save(ctx context.Context, st domain.State) error
}

// CatalogRepository loads question catalogs (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context, catalogID string) (domain.Catalog, error)
}

// ResumeExtractor pulls identity fields out of an uploaded resume.
type ResumeExtractor interface {
	Extract(ctx context.Context, data []byte, mediaType string) (domain.Identity, error)
}

// Options configures an InterviewService.
type Options struct {
	// TickInterval drives the countdown. Zero disables automatic ticks.
	TickInterval time.Duration
	Extractor    ResumeExtractor
	Logger       *zap.Logger
}

// InterviewService hosts one interview state value and serializes every
// command against it.
type InterviewService struct {
	machine   *Machine
	store     SnapshotRepository
	extractor ResumeExtractor
	logger    *zap.Logger

	mu          sync.Mutex
	state       domain.State
	heartbeat   *Heartbeat
	subscribers map[chan domain.Snapshot]struct{}
}

// NewInterviewService loads the persisted state and restores it. An
// unfinished interview comes back paused, with the resume prompt raised.
func NewInterviewService(ctx context.Context, machine *Machine, store SnapshotRepository, opts Options) (*InterviewService, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &InterviewService{
		machine:     machine,
		store:       store,
		extractor:   opts.Extractor,
		logger:      logger,
		subscribers: make(map[chan domain.Snapshot]struct{}),
	}
	s.heartbeat = NewHeartbeat(opts.TickInterval, s.heartbeatTick)

	loaded, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	restored, err := machine.Restore(loaded)
	if err != nil {
		return nil, err
	}
	s.state = restored
	if restored.Pointer.ActiveCandidateID != "" {
		logger.Info("restored unfinished interview",
			zap.String("candidate", restored.Pointer.ActiveCandidateID),
			zap.Int("question", restored.Pointer.CurrentQuestionIndex),
			zap.Int("timeLeft", restored.Pointer.TimeLeftSeconds))
	}
	return s, nil
}

// Snapshot returns the current read model.
func (s *InterviewService) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.NewSnapshot(s.state)
}

// CollectIdentity stages identity fields ahead of StartSession.
func (s *InterviewService) CollectIdentity(ctx context.Context, partial domain.Identity) (domain.Snapshot, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, missing, err := s.machine.CollectIdentity(s.state, partial)
	if err != nil {
		return s.rejectLocked("collect identity", err)
	}
	s.commitLocked(ctx, next)
	return domain.NewSnapshot(s.state), missing, nil
}

// StartSession opens an interview for the given identity.
func (s *InterviewService) StartSession(ctx context.Context, identity domain.Identity) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked(ctx, identity)
}

// StartFromResume extracts the identity from a resume and starts the
// interview when it is complete. Otherwise the extracted fields are staged
// and the missing ones reported.
func (s *InterviewService) StartFromResume(ctx context.Context, data []byte, mediaType string) (domain.Snapshot, []string, error) {
	if s.extractor == nil {
		return domain.Snapshot{}, nil, errors.New("resume extraction is not configured")
	}
	identity, err := s.extractor.Extract(ctx, data, mediaType)
	if err != nil {
		s.logger.Info("resume extraction failed", zap.String("mediaType", mediaType), zap.Error(err))
		return domain.Snapshot{}, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged, missing, err := s.machine.CollectIdentity(s.state, identity)
	if err != nil {
		return s.rejectLocked("collect identity", err)
	}
	if len(missing) > 0 {
		s.commitLocked(ctx, staged)
		return domain.NewSnapshot(s.state), missing, nil
	}
	s.state = staged
	snap, err := s.startLocked(ctx, domain.Identity{})
	return snap, nil, err
}

func (s *InterviewService) startLocked(ctx context.Context, identity domain.Identity) (domain.Snapshot, error) {
	next, err := s.machine.Start(s.state, identity)
	if err != nil {
		snap, _, err := s.rejectLocked("start session", err)
		return snap, err
	}
	s.commitLocked(ctx, next)
	metrics.SessionStarted()
	s.logger.Info("interview started",
		zap.String("candidate", next.Pointer.ActiveCandidateID),
		zap.Int("questions", len(s.machine.Catalog().Questions)))
	return domain.NewSnapshot(s.state), nil
}

// StageAnswer updates the answer buffer used on timeout.
func (s *InterviewService) StageAnswer(ctx context.Context, text string) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.machine.StageAnswer(s.state, text)
	if err != nil {
		snap, _, err := s.rejectLocked("stage answer", err)
		return snap, err
	}
	s.commitLocked(ctx, next)
	return domain.NewSnapshot(s.state), nil
}

// SubmitAnswer records text for the current question and advances.
func (s *InterviewService) SubmitAnswer(ctx context.Context, text string) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.machine.Submit(ctx, s.state, text)
	if err != nil {
		snap, _, err := s.rejectLocked("submit answer", err)
		return snap, err
	}
	s.recordSubmissionLocked(next, metrics.TriggerManual)
	s.commitLocked(ctx, next)
	return domain.NewSnapshot(s.state), nil
}

// Tick advances the countdown by one second, auto-submitting on expiry.
func (s *InterviewService) Tick(ctx context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickLocked(ctx)
}

func (s *InterviewService) tickLocked(ctx context.Context) (domain.Snapshot, error) {
	next, submitted, err := s.machine.Tick(ctx, s.state)
	if err != nil {
		var scoringErr *domain.ScoringError
		if errors.As(err, &scoringErr) {
			// keep the expired countdown so the next tick retries
			s.commitLocked(ctx, next)
		}
		snap, _, err := s.rejectLocked("tick", err)
		return snap, err
	}
	if submitted {
		s.recordSubmissionLocked(next, metrics.TriggerTimeout)
	}
	s.commitLocked(ctx, next)
	return domain.NewSnapshot(s.state), nil
}

func (s *InterviewService) heartbeatTick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.heartbeat.Current(gen) {
		return
	}
	_, _ = s.tickLocked(context.Background())
}

// Pause stops the countdown, e.g. when the presentation detaches.
func (s *InterviewService) Pause(ctx context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.machine.Pause(s.state)
	if err != nil {
		snap, _, err := s.rejectLocked("pause", err)
		return snap, err
	}
	s.commitLocked(ctx, next)
	s.logger.Info("interview paused",
		zap.String("candidate", next.Pointer.ActiveCandidateID),
		zap.Int("timeLeft", next.Pointer.TimeLeftSeconds))
	return domain.NewSnapshot(s.state), nil
}

// Attach is called when a presentation connects. It raises the resume
// prompt if an interview is waiting.
func (s *InterviewService) Attach(ctx context.Context) domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if next, prompted := s.machine.RequestResume(s.state); prompted {
		s.commitLocked(ctx, next)
	}
	return domain.NewSnapshot(s.state)
}

// Detach pauses a running interview when the presentation goes away.
func (s *InterviewService) Detach(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase() != domain.PhaseInProgress {
		return
	}
	if next, err := s.machine.Pause(s.state); err == nil {
		s.commitLocked(ctx, next)
	}
}

// Resume continues a paused interview where it stopped.
func (s *InterviewService) Resume(ctx context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.machine.Resume(s.state)
	if err != nil {
		snap, _, err := s.rejectLocked("resume", err)
		return snap, err
	}
	s.commitLocked(ctx, next)
	return domain.NewSnapshot(s.state), nil
}

// DismissResumePrompt keeps the same candidate and resumes.
func (s *InterviewService) DismissResumePrompt(ctx context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.machine.DismissResumePrompt(s.state)
	if err != nil {
		snap, _, err := s.rejectLocked("dismiss resume prompt", err)
		return snap, err
	}
	s.commitLocked(ctx, next)
	return domain.NewSnapshot(s.state), nil
}

// Candidates lists candidate records for the reviewer dashboard.
func (s *InterviewService) Candidates(q CandidateQuery) []domain.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ListCandidates(s.state, q)
}

// Candidate returns one candidate record.
func (s *InterviewService) Candidate(id string) (domain.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FindCandidate(s.state, id)
}

// Subscribe returns a channel that receives a snapshot after every change.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *InterviewService) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	// the initial snapshot goes in before any broadcast can
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- domain.NewSnapshot(s.state)
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close stops the heartbeat. The state stays persisted.
func (s *InterviewService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heartbeat.Stop()
}

// commitLocked installs next, persists it, keeps the heartbeat in step
// with the countdown and notifies subscribers.
func (s *InterviewService) commitLocked(ctx context.Context, next domain.State) {
	prev := s.state.Pointer
	s.state = next

	if err := s.store.Save(ctx, next); err != nil {
		metrics.SnapshotSaveFailed()
		s.logger.Error("persist interview state", zap.Error(err))
	}

	p := next.Pointer
	switch {
	case !p.IsRunning:
		if s.heartbeat.Running() {
			s.heartbeat.Stop()
		}
	case !s.heartbeat.Running(),
		prev.ActiveCandidateID != p.ActiveCandidateID,
		prev.CurrentQuestionIndex != p.CurrentQuestionIndex:
		s.heartbeat.Start()
	}

	s.broadcastLocked()
}

func (s *InterviewService) recordSubmissionLocked(next domain.State, trigger string) {
	metrics.AnswerSubmitted(trigger)
	prev := s.state.Pointer
	s.logger.Debug("answer recorded",
		zap.String("candidate", prev.ActiveCandidateID),
		zap.Int("question", prev.CurrentQuestionIndex),
		zap.String("trigger", trigger))

	if next.Pointer.ActiveCandidateID == "" && next.Pointer.LastCompletedID != "" {
		if idx := next.Find(next.Pointer.LastCompletedID); idx >= 0 {
			c := next.Candidates[idx]
			metrics.SessionCompleted(c.FinalScore)
			s.logger.Info("interview completed",
				zap.String("candidate", c.ID),
				zap.Int("finalScore", c.FinalScore))
		}
	}
}

// rejectLocked logs a refused command and returns the unchanged snapshot.
func (s *InterviewService) rejectLocked(op string, err error) (domain.Snapshot, []string, error) {
	var incomplete *domain.IncompleteIdentityError
	var scoringErr *domain.ScoringError
	switch {
	case errors.As(err, &incomplete):
		s.logger.Info(op+" rejected", zap.Strings("missing", incomplete.Missing))
		return domain.NewSnapshot(s.state), incomplete.Missing, err
	case errors.As(err, &scoringErr):
		metrics.ScoringFailed()
		s.logger.Error(op+" failed", zap.Int("question", scoringErr.Index), zap.Error(err))
	case errors.Is(err, domain.ErrNoActiveSession), errors.Is(err, domain.ErrSessionInProgress):
		s.logger.Warn(op+" ignored", zap.String("phase", string(s.state.Phase())), zap.Error(err))
	default:
		s.logger.Error(op+" failed", zap.Error(err))
	}
	return domain.NewSnapshot(s.state), nil, err
}

func (s *InterviewService) broadcastLocked() {
	snap := domain.NewSnapshot(s.state)
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// drop the stale update so a slow reader never blocks a command
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
