package contract

import (
	"context"

	"github.com/cloudwego/eino/schema"
	leadx "github.com/tanpawarit/Chative-Voice-SDR/agent/lead"
)

// Responder produces the next assistant message for a conversation. The message
// either carries text for the caller or tool calls to execute before asking again.
type Responder interface {
	Respond(ctx context.Context, req TurnRequest) (*schema.Message, error)
}

// LeadSink receives lead records once they are durably stored.
type LeadSink interface {
	Append(ctx context.Context, rec leadx.Record) error
}

// LeadDelivery forwards a stored lead to a downstream system (CRM, webhook).
type LeadDelivery interface {
	SendLead(ctx context.Context, rec leadx.Record) error
}
