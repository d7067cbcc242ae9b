package contract

import (
	"github.com/cloudwego/eino/schema"
)

type AgentType string

const (
	AgentTypeSDR AgentType = "sdr"
)

// TurnRequest is the input of one model call within a dialogue turn.
type TurnRequest struct {
	SessionID string            `json:"session_id"`
	History   []*schema.Message `json:"history"`
	Missing   []string          `json:"missing,omitempty"`
}

type ToolRequest struct {
	ID   string         `json:"id,omitempty"`
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Content renders the result the way the model consumes it: plain text.
func (r ToolResult) Content() string {
	if r.Error != "" {
		return r.Error
	}
	switch v := r.Result.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmtAny(v)
	}
}
