package llm

import (
	"errors"
	"testing"

	contractx "github.com/tanpawarit/Chative-Voice-SDR/agent/contract"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := (Config{Model: "openai/gpt-4o"}).Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected validation error for missing key, got %v", err)
	}
	if err := (Config{APIKey: "k"}).Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected validation error for missing model, got %v", err)
	}
	if err := (Config{APIKey: "k", Model: "openai/gpt-4o"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOpenRouterForSDROverrides(t *testing.T) {
	t.Parallel()

	cfg := Config{
		APIKey:             " key ",
		Model:              "openai/gpt-4o-mini",
		Temperature:        0.5,
		MaxCompletionToken: 512,
		SDRModel:           "openai/gpt-4o",
		SDRTemperature:     0.2,
	}

	got := cfg.OpenRouterFor(contractx.AgentTypeSDR)
	if got.Model != "openai/gpt-4o" || got.Temperature != 0.2 {
		t.Fatalf("unexpected sdr settings: model=%s temp=%v", got.Model, got.Temperature)
	}
	if got.APIKey != "key" {
		t.Fatalf("api key not trimmed: %q", got.APIKey)
	}
	if got.MaxCompletionToken == nil || *got.MaxCompletionToken != 512 {
		t.Fatalf("unexpected max tokens: %v", got.MaxCompletionToken)
	}

	cfg.SDRModel = ""
	cfg.SDRTemperature = -1
	got = cfg.OpenRouterFor(contractx.AgentTypeSDR)
	if got.Model != "openai/gpt-4o-mini" || got.Temperature != 0.5 {
		t.Fatalf("expected defaults, got model=%s temp=%v", got.Model, got.Temperature)
	}
}
