package sdr

import (
	"context"
	"errors"
	"strings"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Voice-SDR/agent/contract"
	promptx "github.com/tanpawarit/Chative-Voice-SDR/agent/prompt"
	toolx "github.com/tanpawarit/Chative-Voice-SDR/agent/tool"
)

type fakeToolCallingModel struct {
	responses []*schema.Message
	err       error
	idx       int

	boundTools []*schema.ToolInfo
	inputs     [][]*schema.Message
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	f.boundTools = tools
	return f, nil
}

func TestNewBindsLeadTools(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{}
	if _, err := New(context.Background(), fake, promptx.Persona{}); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if len(fake.boundTools) != 2 {
		t.Fatalf("expected 2 bound tools, got %d", len(fake.boundTools))
	}
	if fake.boundTools[0].Name != toolx.ToolUpdateLeadProfile || fake.boundTools[1].Name != toolx.ToolSubmitLead {
		t.Fatalf("unexpected tools: %s, %s", fake.boundTools[0].Name, fake.boundTools[1].Name)
	}
}

func TestRespondSendsSystemPromptAndHistory(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{schema.AssistantMessage("Nice to meet you, Ana! What would you like to build?", nil)},
	}
	agent, err := New(context.Background(), fake, promptx.Persona{KnowledgeBase: `[{"question":"q","answer":"a"}]`})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	history := []*schema.Message{
		schema.AssistantMessage("Hi there!", nil),
		schema.UserMessage("I'm Ana {not a placeholder}"),
	}
	out, err := agent.Respond(context.Background(), contractx.TurnRequest{
		SessionID: "s1",
		History:   history,
		Missing:   []string{"use_case"},
	})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if !strings.HasPrefix(out.Content, "Nice to meet you") {
		t.Fatalf("unexpected reply: %s", out.Content)
	}

	if len(fake.inputs) != 1 {
		t.Fatalf("expected 1 model call, got %d", len(fake.inputs))
	}
	input := fake.inputs[0]
	if len(input) != 3 {
		t.Fatalf("expected system + 2 history messages, got %d", len(input))
	}
	if input[0].Role != schema.System {
		t.Fatalf("first message role = %s", input[0].Role)
	}
	for _, want := range []string{"'Jay'", `[{"question":"q","answer":"a"}]`, "still missing: use_case"} {
		if !strings.Contains(input[0].Content, want) {
			t.Fatalf("system prompt is missing %q", want)
		}
	}
	if input[2].Content != "I'm Ana {not a placeholder}" {
		t.Fatalf("history must pass through verbatim, got %q", input[2].Content)
	}
}

func TestRespondReturnsToolCalls(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			schema.AssistantMessage("", []schema.ToolCall{{
				ID:       "call_1",
				Function: schema.FunctionCall{Name: toolx.ToolUpdateLeadProfile, Arguments: `{"name":"Ana"}`},
			}}),
		},
	}
	agent, err := New(context.Background(), fake, promptx.Persona{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	out, err := agent.Respond(context.Background(), contractx.TurnRequest{
		History: []*schema.Message{schema.UserMessage("I'm Ana")},
	})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if len(out.ToolCalls) != 1 || out.ToolCalls[0].Function.Name != toolx.ToolUpdateLeadProfile {
		t.Fatalf("unexpected tool calls: %#v", out.ToolCalls)
	}
}

func TestRespondErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fake    *fakeToolCallingModel
		history []*schema.Message
		wantErr error
	}{
		{
			name:    "empty history",
			fake:    &fakeToolCallingModel{},
			wantErr: contractx.ErrValidation,
		},
		{
			name:    "model failure",
			fake:    &fakeToolCallingModel{err: errors.New("upstream 500")},
			history: []*schema.Message{schema.UserMessage("hi")},
			wantErr: contractx.ErrModelInvoke,
		},
		{
			name:    "blank reply",
			fake:    &fakeToolCallingModel{responses: []*schema.Message{schema.AssistantMessage("  ", nil)}},
			history: []*schema.Message{schema.UserMessage("hi")},
			wantErr: contractx.ErrSchemaViolation,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			agent, err := New(context.Background(), tt.fake, promptx.Persona{})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			_, err = agent.Respond(context.Background(), contractx.TurnRequest{History: tt.history})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
