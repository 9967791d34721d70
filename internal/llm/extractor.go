// Package llm implements the model-backed extraction strategy. It asks
// a chat-completion endpoint for the invoice schema as JSON and maps
// the reply onto a Record; downstream evaluation treats the result
// exactly like a heuristic extractor's output.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-bench/internal/invoice"
)

// maxPromptChars caps the document text sent with one request.
const maxPromptChars = 12000

// Config holds the chat-completion endpoint settings.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// Extractor calls a chat-completion endpoint to extract invoice data.
type Extractor struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

// New creates an Extractor. BaseURL is optional and supports
// OpenAI-compatible endpoints.
func New(cfg Config, logger *zap.Logger) *Extractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	return &Extractor{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     model,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Extract sends the document text and returns the parsed Record.
func (e *Extractor) Extract(ctx context.Context, text string) (*invoice.Record, error) {
	if len(text) > maxPromptChars {
		text = text[:maxPromptChars]
	}

	req := openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0,
		MaxTokens:   e.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt() + "\n\nTEXT:\n" + text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		// Some OpenAI-compatible endpoints reject the JSON response
		// format; retry once without it.
		msg := err.Error()
		if strings.Contains(msg, "response_format") || strings.Contains(msg, "json_object") {
			e.logger.Warn("Endpoint rejected JSON response format, retrying without it", zap.Error(err))
			req.ResponseFormat = nil
			resp, err = e.client.CreateChatCompletion(ctx, req)
		}
		if err != nil {
			return nil, fmt.Errorf("llm request failed (%s): %w", e.model, err)
		}
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("llm returned no choices")
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("llm returned empty content")
	}

	payload, err := DecodeLenient(content)
	if err != nil {
		return nil, fmt.Errorf("llm response parse failed (%s): %w", e.model, err)
	}
	return RecordFromPayload(payload), nil
}

// RecordFromPayload maps a decoded model reply onto a Record. Replies
// wrapped in a "data" envelope are unwrapped first; unmappable values
// degrade to an empty record rather than an error.
func RecordFromPayload(payload map[string]any) *invoice.Record {
	if inner, ok := payload["data"].(map[string]any); ok {
		payload = inner
	}
	rec := invoice.New()
	encoded, err := json.Marshal(payload)
	if err != nil {
		return rec
	}
	if err := json.Unmarshal(encoded, rec); err != nil {
		return invoice.New()
	}
	return rec
}
