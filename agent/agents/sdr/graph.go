package sdr

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	promptx "github.com/tanpawarit/Chative-Voice-SDR/agent/prompt"
)

const historyKey = "history"

// compileDialogueGraph wires system prompt + conversation history into the
// tool-bound model. The model output is returned untouched so tool calls survive.
func compileDialogueGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(promptx.SystemTemplate()),
		schema.MessagesPlaceholder(historyKey, false),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add dialogue prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add dialogue model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add dialogue edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add dialogue edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add dialogue edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("sdr.dialogue_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile sdr dialogue graph: %w", err)
	}
	return runner, nil
}
