package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/Chative-Voice-SDR/agent/contract"
)

// FinalizeReply commits the turn to the session history.
func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Session == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: model returned empty message", contractx.ErrSchemaViolation)
	}

	st := in.Session.State
	st.AppendMessages(in.Pending...)
	st.Touch(in.Now)

	return GraphOutput{
		Reply:      in.Reply,
		Phase:      st.Phase(),
		ToolRounds: in.ToolRounds,
	}, nil
}
