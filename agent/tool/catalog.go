package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Voice-SDR/agent/contract"
	leadx "github.com/tanpawarit/Chative-Voice-SDR/agent/lead"
	"github.com/tanpawarit/Chative-Voice-SDR/pkg/metrics"
)

const (
	ToolUpdateLeadProfile = "update_lead_profile"
	ToolSubmitLead        = "submit_lead"
)

type Executor func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error)

// BuildForSession returns the tool schemas and an executor bound to one session's tools.
func BuildForSession(tools *LeadTools) ([]*schema.ToolInfo, Executor) {
	return Infos(), NewExecutor(tools)
}

func NewExecutor(tools *LeadTools) Executor {
	fallback := DefaultExecutor(contractx.AgentTypeSDR)
	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		switch tool {
		case ToolUpdateLeadProfile:
			metrics.ToolCalls.WithLabelValues(tool).Inc()
			return contractx.ToolResult{
				Tool:   tool,
				Result: tools.UpdateLeadProfile(ctx, PatchFromArgs(args)),
			}, nil
		case ToolSubmitLead:
			metrics.ToolCalls.WithLabelValues(tool).Inc()
			return contractx.ToolResult{
				Tool:   tool,
				Result: tools.SubmitLead(ctx),
			}, nil
		default:
			return fallback(ctx, tool, args)
		}
	}
}

func DefaultExecutor(agentType contractx.AgentType) Executor {
	return func(ctx context.Context, tool string, _ map[string]any) (contractx.ToolResult, error) {
		return contractx.ToolResult{
			Tool:  tool,
			Error: fmt.Sprintf("tool=%s is unavailable for agent=%s", tool, agentType),
		}, nil
	}
}

// ParseArgs decodes a tool call's JSON arguments. Anything that is not a JSON
// object yields an empty argument set rather than an error.
func ParseArgs(raw string) map[string]any {
	args := map[string]any{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil || args == nil {
		return map[string]any{}
	}
	return args
}

// PatchFromArgs keeps only known fields carrying string values.
func PatchFromArgs(args map[string]any) leadx.Patch {
	str := func(key string) *string {
		v, ok := args[key].(string)
		if !ok {
			return nil
		}
		return &v
	}
	return leadx.Patch{
		Name:     str(leadx.FieldName),
		Company:  str(leadx.FieldCompany),
		Email:    str(leadx.FieldEmail),
		UseCase:  str(leadx.FieldUseCase),
		Budget:   str(leadx.FieldBudget),
		Timeline: str(leadx.FieldTimeline),
	}
}

// Infos declares the two lead tools for function calling.
func Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: ToolUpdateLeadProfile,
			Desc: "Update the potential client's profile with new information. Pass only the fields you just learned.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				leadx.FieldName:     {Type: schema.String, Desc: "The customer's name"},
				leadx.FieldCompany:  {Type: schema.String, Desc: "The customer's company name"},
				leadx.FieldEmail:    {Type: schema.String, Desc: "The customer's email address"},
				leadx.FieldUseCase:  {Type: schema.String, Desc: "What software/AI they want to build"},
				leadx.FieldBudget:   {Type: schema.String, Desc: "Their budget range"},
				leadx.FieldTimeline: {Type: schema.String, Desc: "When they want to start"},
			}),
		},
		{
			Name:        ToolSubmitLead,
			Desc:        "Save the lead to the database when the conversation is concluding.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
	}
}
