package domain

import (
	"strings"
	"time"
)

// Difficulty grades a catalog question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// QuestionDefinition is an immutable catalog entry.
type QuestionDefinition struct {
	Difficulty      Difficulty `json:"difficulty" yaml:"difficulty"`
	AllottedSeconds int        `json:"allottedSeconds" yaml:"seconds"`
	Prompt          string     `json:"prompt" yaml:"prompt"`
}

// QuestionInstance is the per-candidate copy of a definition.
// Score 0 means the question has not been scored yet.
type QuestionInstance struct {
	QuestionDefinition
	Answer string `json:"answer"`
	Score  int    `json:"score"`
}

// CandidateStatus is the lifecycle status of a candidate record.
type CandidateStatus string

const (
	StatusInProgress CandidateStatus = "in-progress"
	StatusCompleted  CandidateStatus = "completed"
)

// Identity carries the fields required before a session may start.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Missing lists the blank fields in name, email, phone order.
func (i Identity) Missing() []string {
	var missing []string
	if strings.TrimSpace(i.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(i.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(i.Phone) == "" {
		missing = append(missing, "phone")
	}
	return missing
}

// Merge returns i with its blank fields filled from fallback.
func (i Identity) Merge(fallback Identity) Identity {
	if strings.TrimSpace(i.Name) == "" {
		i.Name = fallback.Name
	}
	if strings.TrimSpace(i.Email) == "" {
		i.Email = fallback.Email
	}
	if strings.TrimSpace(i.Phone) == "" {
		i.Phone = fallback.Phone
	}
	return Identity{
		Name:  strings.TrimSpace(i.Name),
		Email: strings.TrimSpace(i.Email),
		Phone: strings.TrimSpace(i.Phone),
	}
}

// Candidate is one interview record. Records are never deleted.
type Candidate struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Email      string             `json:"email"`
	Phone      string             `json:"phone"`
	StartTime  time.Time          `json:"startTime"`
	EndTime    *time.Time         `json:"endTime,omitempty"`
	Questions  []QuestionInstance `json:"questions"`
	FinalScore int                `json:"finalScore"`
	Summary    string             `json:"summary"`
	Status     CandidateStatus    `json:"status"`
}

// Scores returns the per-question scores in interview order.
func (c Candidate) Scores() []int {
	scores := make([]int, len(c.Questions))
	for i, q := range c.Questions {
		scores[i] = q.Score
	}
	return scores
}

func (c Candidate) clone() Candidate {
	out := c
	out.Questions = append([]QuestionInstance(nil), c.Questions...)
	if c.EndTime != nil {
		end := *c.EndTime
		out.EndTime = &end
	}
	return out
}

// Pointer is the session pointer state. ActiveCandidateID is a weak
// reference into State.Candidates.
type Pointer struct {
	ActiveCandidateID    string    `json:"activeCandidateId,omitempty"`
	CurrentQuestionIndex int       `json:"currentQuestionIndex"`
	TimeLeftSeconds      int       `json:"timeLeftSeconds"`
	IsRunning            bool      `json:"isRunning"`
	PendingResumePrompt  bool      `json:"pendingResumePrompt"`
	DraftAnswer          string    `json:"draftAnswer,omitempty"`
	PendingIdentity      *Identity `json:"pendingIdentity,omitempty"`
	LastCompletedID      string    `json:"lastCompletedId,omitempty"`
}

// Phase is the externally visible state of the interview.
type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhaseCollectingIdentity Phase = "collecting-identity"
	PhaseInProgress         Phase = "in-progress"
	PhaseAwaitingResume     Phase = "awaiting-resume"
	PhaseCompleted          Phase = "completed"
)

// State is the full value the state machine transforms and persists.
type State struct {
	Candidates []Candidate `json:"candidates"`
	Pointer    Pointer     `json:"session"`
}

// Phase derives the interview phase from the pointer.
func (s State) Phase() Phase {
	p := s.Pointer
	switch {
	case p.ActiveCandidateID != "" && p.IsRunning:
		return PhaseInProgress
	case p.ActiveCandidateID != "":
		return PhaseAwaitingResume
	case p.PendingIdentity != nil:
		return PhaseCollectingIdentity
	case p.LastCompletedID != "":
		return PhaseCompleted
	default:
		return PhaseIdle
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{Pointer: s.Pointer}
	if s.Pointer.PendingIdentity != nil {
		pending := *s.Pointer.PendingIdentity
		out.Pointer.PendingIdentity = &pending
	}
	if s.Candidates != nil {
		out.Candidates = make([]Candidate, len(s.Candidates))
		for i, c := range s.Candidates {
			out.Candidates[i] = c.clone()
		}
	}
	return out
}

// Find returns the index of the candidate with the given id, or -1.
func (s State) Find(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.Candidates {
		if s.Candidates[i].ID == id {
			return i
		}
	}
	return -1
}

// Snapshot is the read model handed to the presentation layer.
type Snapshot struct {
	Phase         Phase       `json:"phase"`
	Session       Pointer     `json:"session"`
	Candidates    []Candidate `json:"candidates"`
	MissingFields []string    `json:"missingFields,omitempty"`
}

// NewSnapshot builds a snapshot from a copy of st.
func NewSnapshot(st State) Snapshot {
	st = st.Clone()
	snap := Snapshot{
		Phase:      st.Phase(),
		Session:    st.Pointer,
		Candidates: st.Candidates,
	}
	if st.Pointer.PendingIdentity != nil {
		snap.MissingFields = st.Pointer.PendingIdentity.Missing()
	}
	if snap.Candidates == nil {
		snap.Candidates = []Candidate{}
	}
	return snap
}
