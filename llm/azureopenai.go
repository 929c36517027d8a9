package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	rfprag "github.com/MegaGrindStone/go-rfp-rag"
	goopenai "github.com/sashabaranov/go-openai"
)

// AzureOpenAI provides an implementation of the Completer interface for Azure-hosted
// OpenAI deployments. Rate-limit responses are wrapped with rfprag.ErrRateLimited so
// the retry policy can classify them.
type AzureOpenAI struct {
	deployment string
	params     Parameters

	client *goopenai.Client
	logger *slog.Logger
}

// NewAzureOpenAI creates a new AzureOpenAI instance for the given endpoint, API key,
// and deployment name.
func NewAzureOpenAI(endpoint, apiKey, deployment string, params Parameters, logger *slog.Logger) AzureOpenAI {
	config := goopenai.DefaultAzureConfig(apiKey, endpoint)
	config.APIVersion = "2024-04-01-preview"

	return AzureOpenAI{
		deployment: deployment,
		params:     params,
		client:     goopenai.NewClientWithConfig(config),
		logger:     logger.With(slog.String("module", "azureopenai")),
	}
}

// Complete sends a system and user message pair to the deployment and returns the
// response content with token usage.
func (a AzureOpenAI) Complete(system, user string) (rfprag.CompletionResponse, error) {
	req := a.chatRequest([]goopenai.ChatCompletionMessage{
		{Role: goopenai.ChatMessageRoleSystem, Content: system},
		{Role: goopenai.ChatMessageRoleUser, Content: user},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Second)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return rfprag.CompletionResponse{}, fmt.Errorf("azure openai: %s: %w", apiErr.Message, rfprag.ErrRateLimited)
		}
		return rfprag.CompletionResponse{}, fmt.Errorf("error sending request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return rfprag.CompletionResponse{}, errors.New("no choices found")
	}

	return rfprag.CompletionResponse{
		Content: resp.Choices[0].Message.Content,
		Usage: rfprag.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func (a AzureOpenAI) chatRequest(messages []goopenai.ChatCompletionMessage) goopenai.ChatCompletionRequest {
	req := goopenai.ChatCompletionRequest{
		Model:    a.deployment,
		Messages: messages,
	}

	if a.params.Temperature != nil {
		req.Temperature = *a.params.Temperature
	}
	if a.params.TopP != nil {
		req.TopP = *a.params.TopP
	}
	if a.params.Stop != nil {
		req.Stop = a.params.Stop
	}
	if a.params.PresencePenalty != nil {
		req.PresencePenalty = *a.params.PresencePenalty
	}
	if a.params.FrequencyPenalty != nil {
		req.FrequencyPenalty = *a.params.FrequencyPenalty
	}
	if a.params.Seed != nil {
		req.Seed = a.params.Seed
	}
	if a.params.MaxTokens != nil {
		req.MaxTokens = *a.params.MaxTokens
	}

	return req
}
