package cmd

import (
	"fmt"
	"time"

	"github.com/lexcodex/reagent/config"
	"github.com/lexcodex/reagent/framework"
	"github.com/lexcodex/reagent/llm"
	"github.com/lexcodex/reagent/memory"
	"github.com/lexcodex/reagent/react"
	"github.com/lexcodex/reagent/tools"
)

// buildModel selects the inference backend from config.
func buildModel(cfg *config.Config) (framework.LanguageModel, error) {
	mc := cfg.Model
	switch mc.Provider {
	case config.ProviderOllama, "":
		client := llm.NewOllamaClient(mc.Endpoint, mc.Name)
		client.SetDebugLogging(cfg.Logging.LLM)
		return client, nil
	case config.ProviderOpenAI:
		key := mc.APIKey()
		if key == "" {
			return nil, fmt.Errorf("openai provider needs %s set", mc.APIKeyEnv)
		}
		return llm.NewOpenAIClient(key, mc.Endpoint, mc.Name), nil
	case config.ProviderAzure:
		key := mc.APIKey()
		if key == "" {
			return nil, fmt.Errorf("azure provider needs %s set", mc.APIKeyEnv)
		}
		if mc.Endpoint == "" || mc.Deployment == "" {
			return nil, fmt.Errorf("azure provider needs model.endpoint and model.deployment")
		}
		return llm.NewAzureClient(key, mc.Endpoint, mc.Deployment), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", mc.Provider)
	}
}

// buildToolRegistry registers the fixed tool set for a session.
func buildToolRegistry() (*framework.ToolRegistry, error) {
	registry := framework.NewToolRegistry()
	for _, tool := range []framework.Tool{
		tools.NewDateTimeTool(),
		tools.NewWikipediaTool(),
	} {
		if err := registry.Register(tool); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// buildController assembles a ready controller plus its memory buffer.
func buildController(cfg *config.Config) (*react.Controller, *memory.SummaryBuffer, error) {
	model, err := buildModel(cfg)
	if err != nil {
		return nil, nil, err
	}
	registry, err := buildToolRegistry()
	if err != nil {
		return nil, nil, err
	}
	buf := memory.NewSummaryBuffer(
		&memory.LLMSummarizer{
			Model: model,
			Options: framework.CompletionOptions{
				Model:       cfg.Model.Name,
				Temperature: cfg.Model.Temperature,
			},
		},
		memory.WithRecentCap(cfg.Memory.RecentCap),
		memory.WithSummaryBudget(cfg.Memory.SummaryBudget),
		memory.WithVerbose(cfg.Logging.Agent),
	)
	controller := react.NewController(model, registry, buf, react.Options{
		Model:               cfg.Model.Name,
		Temperature:         cfg.Model.Temperature,
		MaxIterations:       cfg.Agent.MaxIterations,
		MaxMalformedRetries: cfg.Agent.MaxMalformedRetries,
		MaxPromptTokens:     cfg.Agent.MaxPromptTokens,
		ModelTimeout:        time.Duration(cfg.Model.TimeoutSeconds) * time.Second,
		ToolTimeout:         time.Duration(cfg.Agent.ToolTimeoutSeconds) * time.Second,
		Verbose:             cfg.Agent.Verbose || cfg.Logging.Agent,
	})
	return controller, buf, nil
}
