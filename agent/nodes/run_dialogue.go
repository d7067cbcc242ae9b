package orchestratornode

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Voice-SDR/agent/contract"
	toolx "github.com/tanpawarit/Chative-Voice-SDR/agent/tool"
)

// RunDialogue asks the responder for the next message, executing any tool calls
// against the session's own tools and feeding the results back, until the model
// answers with text or maxRounds tool rounds have been spent.
func RunDialogue(
	ctx context.Context,
	in *GraphState,
	responder contractx.Responder,
	maxRounds int,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}
	maxRounds = clampToolRounds(maxRounds)

	for {
		msg, err := responder.Respond(ctx, contractx.TurnRequest{
			SessionID: in.SessionID,
			History:   in.history(),
			Missing:   in.Session.State.Profile.Missing(),
		})
		if err != nil {
			return nil, err
		}
		in.Pending = append(in.Pending, msg)

		if len(msg.ToolCalls) == 0 {
			in.Reply = strings.TrimSpace(msg.Content)
			return in, nil
		}
		if in.ToolRounds >= maxRounds {
			return nil, fmt.Errorf("%w: session=%s rounds=%d", contractx.ErrToolLoopLimit, in.SessionID, in.ToolRounds)
		}
		in.ToolRounds++

		for _, call := range msg.ToolCalls {
			result, err := executeToolCall(ctx, in.Session.Execute, call)
			if err != nil {
				return nil, err
			}
			in.Pending = append(in.Pending, schema.ToolMessage(result.Content(), call.ID))
		}
	}
}

func executeToolCall(ctx context.Context, execute toolx.Executor, call schema.ToolCall) (contractx.ToolResult, error) {
	req := contractx.ToolRequest{
		ID:   call.ID,
		Tool: strings.TrimSpace(call.Function.Name),
		Args: toolx.ParseArgs(call.Function.Arguments),
	}

	result, err := execute(ctx, req.Tool, req.Args)
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("execute tool=%s: %w", req.Tool, err)
	}
	log.Ctx(ctx).Debug().
		Str("tool", req.Tool).
		Str("call_id", req.ID).
		Str("result", result.Content()).
		Msg("tool call executed")
	return result, nil
}
