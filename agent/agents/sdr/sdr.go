package sdr

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Voice-SDR/agent/contract"
	llmx "github.com/tanpawarit/Chative-Voice-SDR/agent/llm"
	promptx "github.com/tanpawarit/Chative-Voice-SDR/agent/prompt"
	toolx "github.com/tanpawarit/Chative-Voice-SDR/agent/tool"
)

var _ contractx.Responder = (*Agent)(nil)

// Agent is the sales development representative. It is stateless; every call
// receives the full conversation of one session.
type Agent struct {
	persona promptx.Persona
	runner  compose.Runnable[map[string]any, *schema.Message]
}

func New(ctx context.Context, chatModel einomodel.ToolCallingChatModel, persona promptx.Persona) (*Agent, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	toolModel, err := chatModel.WithTools(toolx.Infos())
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools for agent=%s: %v", contractx.ErrModelInvoke, contractx.AgentTypeSDR, err)
	}
	runner, err := compileDialogueGraph(ctx, toolModel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	return &Agent{persona: persona, runner: runner}, nil
}

// NewFromConfig builds the OpenRouter-backed model and the agent on top of it.
func NewFromConfig(ctx context.Context, cfg llmx.Config, persona promptx.Persona) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	modelCfg := cfg.OpenRouterFor(contractx.AgentTypeSDR)
	chatModel, err := modelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create sdr model: %v", contractx.ErrModelInvoke, err)
	}
	return New(ctx, chatModel, persona)
}

func (a *Agent) Respond(ctx context.Context, req contractx.TurnRequest) (*schema.Message, error) {
	if len(req.History) == 0 {
		return nil, fmt.Errorf("%w: conversation history is empty", contractx.ErrValidation)
	}

	vars := a.persona.Vars(req.Missing)
	vars[historyKey] = req.History

	msg, err := a.runner.Invoke(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: sdr invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: empty model response", contractx.ErrSchemaViolation)
	}
	if len(msg.ToolCalls) == 0 && strings.TrimSpace(msg.Content) == "" {
		return nil, fmt.Errorf("%w: response has neither text nor tool calls", contractx.ErrSchemaViolation)
	}
	for _, call := range msg.ToolCalls {
		if strings.TrimSpace(call.Function.Name) == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}
	}
	return msg, nil
}
