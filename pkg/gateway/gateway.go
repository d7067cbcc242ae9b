package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	statex "github.com/tanpawarit/Chative-Voice-SDR/agent/state"
	logx "github.com/tanpawarit/Chative-Voice-SDR/pkg/logger"
)

const (
	defaultReadLimit   = 64 << 10
	defaultIdleTimeout = 5 * time.Minute
	writeTimeout       = 10 * time.Second

	DefaultFallbackReply = "Sorry, I didn't catch that. Could you say it again?"
)

// Conversations is the dialogue backend; one websocket maps to one session.
type Conversations interface {
	StartSession(ctx context.Context, sessionID string) (string, error)
	HandleMessage(ctx context.Context, sessionID string, text string) (string, error)
	EndSession(ctx context.Context, sessionID string) (statex.SessionSnapshot, error)
}

type Config struct {
	Addr          string
	ReadLimit     int64
	IdleTimeout   time.Duration
	FallbackReply string

	// AllowedOrigins lists browser origins accepted besides the server's own
	// host. Empty keeps the same-origin check; "*" accepts any origin.
	AllowedOrigins []string
}

type Server struct {
	conv     Conversations
	cfg      Config
	upgrader websocket.Upgrader
	newID    func() string
}

func New(conv Conversations, cfg Config) *Server {
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = defaultReadLimit
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	if strings.TrimSpace(cfg.FallbackReply) == "" {
		cfg.FallbackReply = DefaultFallbackReply
	}
	return &Server{
		conv: conv,
		cfg:  cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(cfg.AllowedOrigins),
		},
		newID: uuid.NewString,
	}
}

// originChecker returns nil for an empty list so the upgrader falls back to
// its own same-origin check.
func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		origin = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(origin)), "/")
		if origin == "" {
			continue
		}
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = struct{}{}
	}
	if len(set) == 0 {
		return nil
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
			return true
		}
		_, ok := set[strings.ToLower(origin)]
		return ok
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/v1/conversations/ws", s.serveConversation)
	return mux
}

// ListenAndServe runs until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.Addr).Msg("gateway listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) serveConversation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.cfg.ReadLimit)

	sessionID := s.newID()
	ctx := logx.WithSession(r.Context(), sessionID)
	logger := log.Ctx(ctx)

	greeting, err := s.conv.StartSession(ctx, sessionID)
	if err != nil {
		logger.Error().Err(err).Msg("start session failed")
		s.write(conn, ServerFrame{Type: FrameError, Text: s.cfg.FallbackReply})
		return
	}
	defer func() {
		if _, err := s.conv.EndSession(context.WithoutCancel(ctx), sessionID); err != nil {
			logger.Warn().Err(err).Msg("end session failed")
		}
	}()

	if err := s.write(conn, ServerFrame{Type: FrameGreeting, SessionID: sessionID, Text: greeting}); err != nil {
		return
	}

	for {
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout))
		messageType, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn().Err(err).Msg("conversation socket closed")
			}
			return
		}
		if messageType != websocket.TextMessage {
			_ = s.write(conn, ServerFrame{Type: FrameError, Text: "only text frames are supported"})
			continue
		}

		var frame ClientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			_ = s.write(conn, ServerFrame{Type: FrameError, Text: "invalid frame"})
			continue
		}

		switch frame.Type {
		case FrameUserText:
			reply, err := s.conv.HandleMessage(ctx, sessionID, frame.Text)
			if err != nil {
				logger.Error().Err(err).Msg("turn failed")
				_ = s.write(conn, ServerFrame{Type: FrameError, Text: s.cfg.FallbackReply})
				continue
			}
			if err := s.write(conn, ServerFrame{Type: FrameReply, Text: reply}); err != nil {
				return
			}
		case FrameEnd:
			_ = conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "conversation ended"),
				time.Now().Add(writeTimeout),
			)
			return
		default:
			_ = s.write(conn, ServerFrame{Type: FrameError, Text: "unsupported frame type"})
		}
	}
}

func (s *Server) write(conn *websocket.Conn, frame ServerFrame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(frame)
}
