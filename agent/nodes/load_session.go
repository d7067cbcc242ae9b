package orchestratornode

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Voice-SDR/agent/contract"
)

func LoadSession(ctx context.Context, in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	sess := in.Session
	if sess == nil {
		return nil, fmt.Errorf("%w: session=%s", contractx.ErrSessionNotFound, in.SessionID)
	}
	if sess.State == nil || sess.Execute == nil {
		return nil, fmt.Errorf("%w: session=%s is not initialized", contractx.ErrValidation, in.SessionID)
	}
	if err := sess.State.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
	}

	in.Pending = append(in.Pending, schema.UserMessage(in.Text))
	return in, nil
}
