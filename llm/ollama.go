package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	rfprag "github.com/MegaGrindStone/go-rfp-rag"
	"github.com/ollama/ollama/api"
)

// Ollama provides an implementation of the Completer interface for local Ollama
// models, mainly for development without an Azure deployment. Token usage comes
// from Ollama's eval metrics.
type Ollama struct {
	host  string
	model string

	params Parameters

	client *api.Client

	logger *slog.Logger
}

// NewOllama creates a new Ollama instance with the specified host URL and model name.
// The host parameter should be a valid URL pointing to an Ollama server. If the
// provided host URL is invalid, the function will panic.
func NewOllama(host, model string, params Parameters, logger *slog.Logger) Ollama {
	u, err := url.Parse(host)
	if err != nil {
		panic(err)
	}

	return Ollama{
		host:   host,
		model:  model,
		params: params,
		client: api.NewClient(u, &http.Client{}),
		logger: logger.With(slog.String("module", "ollama")),
	}
}

// Complete sends a system and user message pair to the Ollama API.
func (o Ollama) Complete(system, user string) (rfprag.CompletionResponse, error) {
	req := o.chatRequest([]api.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Second)
	defer cancel()

	var content strings.Builder
	var promptTokens, completionTokens int

	if err := o.client.Chat(ctx, &req, func(res api.ChatResponse) error {
		content.WriteString(res.Message.Content)
		if res.Done {
			promptTokens = res.PromptEvalCount
			completionTokens = res.EvalCount
		}
		return nil
	}); err != nil {
		return rfprag.CompletionResponse{}, fmt.Errorf("error sending request: %w", err)
	}

	return rfprag.CompletionResponse{
		Content: RemoveThinkTags(content.String()),
		Usage: rfprag.Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	}, nil
}

func (o Ollama) chatRequest(messages []api.Message) api.ChatRequest {
	req := api.ChatRequest{
		Model:    o.model,
		Messages: messages,
	}

	opts := make(map[string]any)

	if o.params.Temperature != nil {
		opts["temperature"] = *o.params.Temperature
	}
	if o.params.Seed != nil {
		opts["seed"] = *o.params.Seed
	}
	if o.params.Stop != nil {
		opts["stop"] = o.params.Stop
	}
	if o.params.TopK != nil {
		opts["top_k"] = *o.params.TopK
	}
	if o.params.TopP != nil {
		opts["top_p"] = *o.params.TopP
	}

	req.Options = opts

	return req
}
