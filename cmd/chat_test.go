package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	leadx "github.com/tanpawarit/Chative-Voice-SDR/agent/lead"
	statex "github.com/tanpawarit/Chative-Voice-SDR/agent/state"
)

type scriptedConversation struct {
	texts []string
	ended bool
	fail  bool
}

func (c *scriptedConversation) StartSession(context.Context, string) (string, error) {
	return "Hi there!", nil
}

func (c *scriptedConversation) HandleMessage(_ context.Context, _ string, text string) (string, error) {
	if c.fail {
		return "", errors.New("model down")
	}
	c.texts = append(c.texts, text)
	return "ok: " + text, nil
}

func (c *scriptedConversation) EndSession(_ context.Context, id string) (statex.SessionSnapshot, error) {
	c.ended = true
	return statex.SessionSnapshot{SessionID: id, Phase: statex.PhaseSubmitted, Submissions: 1}, nil
}

func TestRunChat(t *testing.T) {
	t.Parallel()

	conv := &scriptedConversation{}
	var out bytes.Buffer
	in := strings.NewReader("I'm Ana\n\nWe want a chatbot\n/bye\nignored\n")

	if err := runChat(context.Background(), conv, in, &out); err != nil {
		t.Fatalf("runChat() error = %v", err)
	}
	if len(conv.texts) != 2 || conv.texts[1] != "We want a chatbot" {
		t.Fatalf("unexpected turns: %v", conv.texts)
	}
	if !conv.ended {
		t.Fatal("session was not ended")
	}
	for _, want := range []string{"agent> Hi there!", "agent> ok: I'm Ana", "session ended (submitted, 1 lead(s) saved)"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output is missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunChatFallsBackOnTurnError(t *testing.T) {
	t.Parallel()

	conv := &scriptedConversation{fail: true}
	var out bytes.Buffer
	if err := runChat(context.Background(), conv, strings.NewReader("hello\n"), &out); err != nil {
		t.Fatalf("runChat() error = %v", err)
	}
	if !strings.Contains(out.String(), "Could you say it again?") {
		t.Fatalf("fallback line missing:\n%s", out.String())
	}
}

func TestCompleteOnly(t *testing.T) {
	t.Parallel()

	records := []leadx.Record{
		{Name: leadx.Str("Ana"), UseCase: leadx.Str("chatbot")},
		{Name: leadx.Str("Bob")},
		{UseCase: leadx.Str("voice agent")},
	}
	got := completeOnly(records)
	if len(got) != 1 || got[0].Get(leadx.FieldName) != "Ana" {
		t.Fatalf("unexpected filter result: %+v", got)
	}
	if len(records) != 3 || records[1].Get(leadx.FieldName) != "Bob" {
		t.Fatal("input slice must not be modified")
	}
}
