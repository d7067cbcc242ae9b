package gateway

const (
	FrameGreeting = "greeting"
	FrameUserText = "user_text"
	FrameEnd      = "end"
	FrameReply    = "reply"
	FrameError    = "error"
)

// ClientFrame is sent by the caller: {"type":"user_text","text":"..."} or {"type":"end"}.
type ClientFrame struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type ServerFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text"`
}
