package orchestratornode

import (
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	statex "github.com/tanpawarit/Chative-Voice-SDR/agent/state"
	toolx "github.com/tanpawarit/Chative-Voice-SDR/agent/tool"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

// GraphInput carries the session the caller already holds the turn lock on,
// so the graph never resolves the id a second time.
type GraphInput struct {
	SessionID string
	Text      string
	Session   *Session
}

type GraphOutput struct {
	Reply      string
	Phase      statex.Phase
	ToolRounds int
}

// Session is what one turn needs from a live conversation: its private state
// and the executor bound to that state's profile.
type Session struct {
	State   *statex.SessionState
	Execute toolx.Executor
}

type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session *Session

	// Pending holds the messages of the current turn. They join the session
	// history only once the turn produced a reply.
	Pending    []*schema.Message
	ToolRounds int
	Reply      string
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
		Session:   in.Session,
	}, nil
}

// history is the conversation as the model should see it this round.
func (s *GraphState) history() []*schema.Message {
	prior := s.Session.State.History
	out := make([]*schema.Message, 0, len(prior)+len(s.Pending))
	out = append(out, prior...)
	return append(out, s.Pending...)
}
