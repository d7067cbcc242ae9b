package prompt

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Voice-SDR/agent/contract"
)

var (
	//go:embed template/sdr.txt
	sdrRaw string

	//go:embed template/greeting.txt
	greetingRaw string
)

const (
	VarAgentName     = "agent_name"
	VarCompanyName   = "company_name"
	VarKnowledgeBase = "knowledge_base"
	VarMissingFields = "missing_fields"

	DefaultAgentName   = "Jay"
	DefaultCompanyName = "Jaysid Development"
)

// Persona fills the SDR templates.
type Persona struct {
	AgentName     string
	CompanyName   string
	KnowledgeBase string
}

func (p Persona) withDefaults() Persona {
	if strings.TrimSpace(p.AgentName) == "" {
		p.AgentName = DefaultAgentName
	}
	if strings.TrimSpace(p.CompanyName) == "" {
		p.CompanyName = DefaultCompanyName
	}
	if strings.TrimSpace(p.KnowledgeBase) == "" {
		p.KnowledgeBase = "[]"
	}
	return p
}

// Vars returns the FString variables of the system template. missing lists the
// qualifying fields the profile still lacks.
func (p Persona) Vars(missing []string) map[string]any {
	p = p.withDefaults()
	status := "none"
	if len(missing) > 0 {
		status = strings.Join(missing, ", ")
	}
	return map[string]any{
		VarAgentName:     p.AgentName,
		VarCompanyName:   p.CompanyName,
		VarKnowledgeBase: p.KnowledgeBase,
		VarMissingFields: status,
	}
}

// SystemTemplate is the raw system prompt in eino FString syntax.
func SystemTemplate() string {
	return strings.TrimSpace(sdrRaw)
}

// RenderSystem formats the system prompt for p.
func RenderSystem(ctx context.Context, p Persona, missing []string) (string, error) {
	return render(ctx, SystemTemplate(), p.Vars(missing))
}

// Greeting formats the opening line spoken when a conversation starts.
func Greeting(ctx context.Context, p Persona) (string, error) {
	return render(ctx, strings.TrimSpace(greetingRaw), p.Vars(nil))
}

func render(ctx context.Context, tpl string, vars map[string]any) (string, error) {
	if tpl == "" {
		return "", contractx.ErrPromptMissing
	}
	msgs, err := einoprompt.FromMessages(schema.FString, schema.SystemMessage(tpl)).Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("format prompt: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", contractx.ErrPromptMissing
	}
	return msgs[0].Content, nil
}
