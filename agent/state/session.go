package state

import (
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	leadx "github.com/tanpawarit/Chative-Voice-SDR/agent/lead"
)

var (
	ErrInvalidSession  = errors.New("session id is empty")
	ErrNilSessionState = errors.New("session state is nil")
	ErrNilProfile      = errors.New("session profile is nil")
)

// Phase is the lead-capture progress of one conversation.
//   - gathering: qualifying fields still missing
//   - complete:  name and use case known, nothing submitted yet
//   - submitted: submit_lead ran at least once (dialogue may continue)
type Phase string

const (
	PhaseGathering Phase = "gathering"
	PhaseComplete  Phase = "complete"
	PhaseSubmitted Phase = "submitted"
)

// SessionState is the private state of one conversation. It is never shared
// between sessions; the orchestrator serializes turns on it.
type SessionState struct {
	SessionID string

	Profile     *leadx.Profile
	History     []*schema.Message
	Submissions int

	StartedAt       time.Time
	LastSubmittedAt time.Time
	UpdatedAt       time.Time
}

func NewSessionState(sessionID string, now time.Time) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		Profile:   leadx.NewProfile(),
		StartedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// Phase derives the current phase; COMPLETE is never stored.
func (s *SessionState) Phase() Phase {
	if s == nil {
		return PhaseGathering
	}
	if s.Submissions > 0 {
		return PhaseSubmitted
	}
	if s.Profile.IsComplete() {
		return PhaseComplete
	}
	return PhaseGathering
}

// AppendMessages extends the conversation history.
func (s *SessionState) AppendMessages(msgs ...*schema.Message) {
	for _, m := range msgs {
		if m != nil {
			s.History = append(s.History, m)
		}
	}
}

// MarkSubmitted records one successful submit_lead call.
func (s *SessionState) MarkSubmitted(now time.Time) {
	s.Submissions++
	s.LastSubmittedAt = now.UTC()
	s.Touch(now)
}

func (s *SessionState) Validate() error {
	if s == nil {
		return ErrNilSessionState
	}
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	if s.Profile == nil {
		return ErrNilProfile
	}
	return nil
}

// SessionSnapshot is a read-only copy of a session for inspection.
type SessionSnapshot struct {
	SessionID   string        `json:"session_id"`
	Phase       Phase         `json:"phase"`
	Profile     leadx.Profile `json:"profile"`
	Missing     []string      `json:"missing,omitempty"`
	Submissions int           `json:"submissions"`
	Turns       int           `json:"turns"`
	StartedAt   time.Time     `json:"started_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (s *SessionState) Snapshot() SessionSnapshot {
	var profile leadx.Profile
	if s.Profile != nil {
		profile = *s.Profile.Clone()
	}
	turns := 0
	for _, m := range s.History {
		if m.Role == schema.User {
			turns++
		}
	}
	return SessionSnapshot{
		SessionID:   s.SessionID,
		Phase:       s.Phase(),
		Profile:     profile,
		Missing:     s.Profile.Missing(),
		Submissions: s.Submissions,
		Turns:       turns,
		StartedAt:   s.StartedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
