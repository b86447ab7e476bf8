package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"dungeon-chat/internal/config"
	"dungeon-chat/internal/logger"
)

const openAIChatURL = "https://api.openai.com/v1/chat/completions"

// Ensure OpenAIProvider implements CompletionService
var _ CompletionService = (*OpenAIProvider)(nil)

// OpenAIProvider implements CompletionService against the OpenAI
// chat-completions API
type OpenAIProvider struct {
	config *config.LLMConfig
	client *http.Client
}

// NewOpenAIProvider creates a new OpenAI provider with config. The client
// timeout backstops requests whose context carries no deadline.
func NewOpenAIProvider(llmConfig *config.LLMConfig) *OpenAIProvider {
	return &OpenAIProvider{
		config: llmConfig,
		client: &http.Client{Timeout: llmConfig.Timeout},
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Complete sends the ordered input to the chat-completions endpoint and
// returns the model's reply text. Every failure mode wraps ErrCompletion.
func (p *OpenAIProvider) Complete(ctx context.Context, messages []Message, temperature float64) (string, error) {
	if p.config.OpenAIAPIKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not configured (%w)", ErrCompletion)
	}

	logger.Log.WithFields(logrus.Fields{
		"model":         p.config.Model,
		"temperature":   temperature,
		"message_count": len(messages),
	}).Info("Calling completion service")

	reqBody := chatRequest{
		Model:       p.config.Model,
		Messages:    messages,
		Temperature: temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w (%w)", err, ErrCompletion)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIChatURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w (%w)", err, ErrCompletion)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.OpenAIAPIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w (%w)", err, ErrCompletion)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w (%w)", err, ErrCompletion)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s (%w)", resp.StatusCode, string(body), ErrCompletion)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("error decoding response: %w (%w)", err, ErrCompletion)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response (%w)", ErrCompletion)
	}

	content := chatResp.Choices[0].Message.Content
	logger.Log.WithField("content_length", len(content)).Debug("Received completion")
	return content, nil
}
