package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Voice-SDR/agent/contract"
	leadx "github.com/tanpawarit/Chative-Voice-SDR/agent/lead"
	nodex "github.com/tanpawarit/Chative-Voice-SDR/agent/nodes"
	statex "github.com/tanpawarit/Chative-Voice-SDR/agent/state"
	toolx "github.com/tanpawarit/Chative-Voice-SDR/agent/tool"
	logx "github.com/tanpawarit/Chative-Voice-SDR/pkg/logger"
	"github.com/tanpawarit/Chative-Voice-SDR/pkg/metrics"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

type Config struct {
	// Greeting is spoken when a session starts and seeds its history.
	Greeting      string
	MaxToolRounds int
	// Delivery, when set, receives every stored lead in the background.
	Delivery contractx.LeadDelivery
}

// Orchestrator owns the live conversations. Each session gets its own profile
// and tools; only the lead store is shared.
type Orchestrator struct {
	store     contractx.LeadSink
	responder contractx.Responder
	delivery  contractx.LeadDelivery

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	greeting      string
	maxToolRounds int

	mu       sync.Mutex
	sessions map[string]*session

	now func() time.Time
}

type session struct {
	// turn serializes HandleMessage, Snapshot and EndSession on one conversation.
	turn    sync.Mutex
	state   *statex.SessionState
	tools   *toolx.LeadTools
	execute toolx.Executor
}

func New(
	store contractx.LeadSink,
	responder contractx.Responder,
	cfg Config,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("lead store is required")
	}
	if responder == nil {
		return nil, errors.New("responder is required")
	}

	o := &Orchestrator{
		store:         store,
		responder:     responder,
		delivery:      cfg.Delivery,
		greeting:      strings.TrimSpace(cfg.Greeting),
		maxToolRounds: cfg.MaxToolRounds,
		sessions:      make(map[string]*session),
		now:           time.Now,
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// StartSession opens a conversation and returns the greeting line.
func (o *Orchestrator) StartSession(ctx context.Context, sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", ErrInvalidSession
	}

	st := statex.NewSessionState(sessionID, o.now())
	if o.greeting != "" {
		st.AppendMessages(schema.AssistantMessage(o.greeting, nil))
	}

	opts := []toolx.Option{
		toolx.WithClock(o.now),
		toolx.WithSubmitHook(func(leadx.Record) { st.MarkSubmitted(o.now()) }),
	}
	if o.delivery != nil {
		opts = append(opts, toolx.WithDelivery(o.delivery))
	}
	tools := toolx.NewLeadTools(st.Profile, o.store, opts...)

	o.mu.Lock()
	if _, exists := o.sessions[sessionID]; exists {
		o.mu.Unlock()
		return "", fmt.Errorf("%w: session=%s", contractx.ErrSessionExists, sessionID)
	}
	o.sessions[sessionID] = &session{
		state:   st,
		tools:   tools,
		execute: toolx.NewExecutor(tools),
	}
	o.mu.Unlock()

	metrics.ActiveSessions.Inc()
	log.Ctx(logx.WithSession(ctx, sessionID)).Info().Msg("session started")
	return o.greeting, nil
}

// HandleMessage runs one dialogue turn and returns the assistant's reply.
func (o *Orchestrator) HandleMessage(ctx context.Context, sessionID string, text string) (string, error) {
	sess, err := o.get(sessionID)
	if err != nil {
		return "", err
	}
	sess.turn.Lock()
	defer sess.turn.Unlock()

	ctx = logx.WithSession(ctx, sessionID)
	started := time.Now()
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
		Session:   &nodex.Session{State: sess.state, Execute: sess.execute},
	})
	metrics.ObserveTurn(started, err)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("turn failed")
		return "", err
	}

	log.Ctx(ctx).Debug().
		Str("phase", string(out.Phase)).
		Int("tool_rounds", out.ToolRounds).
		Msg("turn completed")
	return out.Reply, nil
}

// EndSession discards the conversation after any in-flight turn and lead
// deliveries have finished. A profile that was never submitted is dropped.
func (o *Orchestrator) EndSession(ctx context.Context, sessionID string) (statex.SessionSnapshot, error) {
	o.mu.Lock()
	sess, ok := o.sessions[sessionID]
	if ok {
		delete(o.sessions, sessionID)
	}
	o.mu.Unlock()
	if !ok {
		return statex.SessionSnapshot{}, fmt.Errorf("%w: session=%s", contractx.ErrSessionNotFound, sessionID)
	}

	sess.turn.Lock()
	snap := sess.state.Snapshot()
	sess.turn.Unlock()
	sess.tools.Wait()

	metrics.ActiveSessions.Dec()
	logger := log.Ctx(logx.WithSession(ctx, sessionID))
	if snap.Phase != statex.PhaseSubmitted {
		logger.Info().Strs("filled", snap.Profile.Filled()).Msg("session ended without a submitted lead")
	} else {
		logger.Info().Int("submissions", snap.Submissions).Msg("session ended")
	}
	return snap, nil
}

// Snapshot returns a read-only copy of a live session.
func (o *Orchestrator) Snapshot(sessionID string) (statex.SessionSnapshot, error) {
	sess, err := o.get(sessionID)
	if err != nil {
		return statex.SessionSnapshot{}, err
	}
	sess.turn.Lock()
	defer sess.turn.Unlock()
	return sess.state.Snapshot(), nil
}

// ActiveSessions reports the number of open conversations.
func (o *Orchestrator) ActiveSessions() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sessions)
}

// Close ends every open session.
func (o *Orchestrator) Close(ctx context.Context) {
	o.mu.Lock()
	ids := make([]string, 0, len(o.sessions))
	for id := range o.sessions {
		ids = append(ids, id)
	}
	o.mu.Unlock()

	for _, id := range ids {
		_, _ = o.EndSession(ctx, id)
	}
}

func (o *Orchestrator) get(sessionID string) (*session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	sess, ok := o.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: session=%s", contractx.ErrSessionNotFound, sessionID)
	}
	return sess, nil
}
