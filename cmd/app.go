package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/Chative-Voice-SDR/agent/agents/orchestrator"
	"github.com/tanpawarit/Chative-Voice-SDR/agent/agents/sdr"
	contractx "github.com/tanpawarit/Chative-Voice-SDR/agent/contract"
	"github.com/tanpawarit/Chative-Voice-SDR/agent/knowledge"
	llmx "github.com/tanpawarit/Chative-Voice-SDR/agent/llm"
	promptx "github.com/tanpawarit/Chative-Voice-SDR/agent/prompt"
	statex "github.com/tanpawarit/Chative-Voice-SDR/agent/state"
	toolx "github.com/tanpawarit/Chative-Voice-SDR/agent/tool"
	configx "github.com/tanpawarit/Chative-Voice-SDR/pkg/config"
	qstashx "github.com/tanpawarit/Chative-Voice-SDR/pkg/qstash"
)

// AppConfig is loaded with the SDR prefix.
type AppConfig struct {
	CompanyName       string   `split_words:"true" default:"Jaysid Development"`
	AgentName         string   `split_words:"true" default:"Jay"`
	KnowledgeBasePath string   `split_words:"true" default:"jaysid_faq.json"`
	HTTPAddr          string   `envconfig:"HTTP_ADDR" default:":8080"`
	AllowedOrigins    []string `split_words:"true"`
	MaxToolRounds     int      `split_words:"true" default:"4"`
	LeadWebhookURL    string   `split_words:"true"`
}

type app struct {
	cfg          *AppConfig
	store        statex.Store
	orchestrator *orchestrator.Orchestrator
}

func (a *app) Close(ctx context.Context) {
	a.orchestrator.Close(ctx)
	if err := a.store.Close(); err != nil {
		log.Warn().Err(err).Msg("close lead store")
	}
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := configx.New[AppConfig]("SDR")
	if err != nil {
		return nil, fmt.Errorf("load app config: %w", err)
	}

	persona, err := loadPersona(cfg)
	if err != nil {
		return nil, err
	}
	greeting, err := promptx.Greeting(ctx, persona)
	if err != nil {
		return nil, err
	}

	llmCfg, err := configx.New[llmx.Config]("OPENROUTER")
	if err != nil {
		return nil, fmt.Errorf("load openrouter config: %w", err)
	}
	agent, err := sdr.NewFromConfig(ctx, *llmCfg, persona)
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	delivery, err := buildDelivery(cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	orch, err := orchestrator.New(store, agent, orchestrator.Config{
		Greeting:      greeting,
		MaxToolRounds: cfg.MaxToolRounds,
		Delivery:      delivery,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	log.Info().
		Str("company", persona.CompanyName).
		Str("agent", persona.AgentName).
		Str("lead_store", store.Backend()).
		Bool("lead_delivery", delivery != nil).
		Msg("sdr agent ready")

	return &app{cfg: cfg, store: store, orchestrator: orch}, nil
}

func loadPersona(cfg *AppConfig) (promptx.Persona, error) {
	kb, err := knowledge.LoadOrInit(cfg.KnowledgeBasePath)
	if err != nil {
		return promptx.Persona{}, err
	}
	return promptx.Persona{
		AgentName:     cfg.AgentName,
		CompanyName:   cfg.CompanyName,
		KnowledgeBase: kb.Render(),
	}, nil
}

func openStore(ctx context.Context) (statex.Store, error) {
	storeCfg, err := configx.New[statex.Config]("LEAD_STORE")
	if err != nil {
		return nil, fmt.Errorf("load lead store config: %w", err)
	}
	return statex.NewStore(ctx, *storeCfg)
}

// buildDelivery returns nil when no webhook is configured.
func buildDelivery(cfg *AppConfig) (contractx.LeadDelivery, error) {
	destination := strings.TrimSpace(cfg.LeadWebhookURL)
	if destination == "" {
		return nil, nil
	}
	qcfg, err := configx.New[qstashx.Config]("QSTASH")
	if err != nil {
		return nil, fmt.Errorf("load qstash config: %w", err)
	}
	client, err := qstashx.NewClient(*qcfg)
	if err != nil {
		return nil, errors.Join(errors.New("lead webhook configured but qstash is not"), err)
	}
	return toolx.NewPublishDelivery(client, destination), nil
}
