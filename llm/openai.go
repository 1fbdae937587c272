package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lexcodex/reagent/framework"
)

// OpenAIClient implements framework.LanguageModel for OpenAI-compatible
// endpoints, including Azure deployments.
type OpenAIClient struct {
	client *openai.Client
	Model  string
}

// NewOpenAIClient targets api.openai.com or any compatible baseURL.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		Model:  model,
	}
}

// NewAzureClient targets an Azure OpenAI deployment.
func NewAzureClient(apiKey, endpoint, deployment string) *OpenAIClient {
	config := openai.DefaultAzureConfig(apiKey, endpoint)
	config.AzureModelMapperFunc = func(string) string { return deployment }
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		Model:  deployment,
	}
}

// Complete sends the prompt as a single user message and returns the model
// text. Transport and auth failures are wrapped in ErrModelUnavailable.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, options *framework.CompletionOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model(options),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if options != nil {
		req.Temperature = float32(options.Temperature)
		req.MaxTokens = options.MaxTokens
		req.Stop = options.Stop
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", framework.ErrModelUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", framework.ErrModelUnavailable)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *OpenAIClient) model(options *framework.CompletionOptions) string {
	if options != nil && options.Model != "" {
		return options.Model
	}
	if c.Model != "" {
		return c.Model
	}
	return openai.GPT4oMini
}
