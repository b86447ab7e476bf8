package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"dungeon-chat/internal/config"
	"dungeon-chat/internal/logger"
)

const openAIModerationURL = "https://api.openai.com/v1/moderations"

// Ensure OpenAIModeration implements ModerationService
var _ ModerationService = (*OpenAIModeration)(nil)

// OpenAIModeration implements ModerationService against the OpenAI
// moderations endpoint
type OpenAIModeration struct {
	config *config.LLMConfig
	client *http.Client
}

// NewOpenAIModeration creates a new moderation client
func NewOpenAIModeration(llmConfig *config.LLMConfig) *OpenAIModeration {
	return &OpenAIModeration{
		config: llmConfig,
		client: &http.Client{Timeout: llmConfig.Timeout},
	}
}

type moderationRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged bool `json:"flagged"`
	} `json:"results"`
}

// Check reports whether the text was flagged
func (m *OpenAIModeration) Check(ctx context.Context, text string) (bool, error) {
	reqBody := moderationRequest{
		Model: m.config.ModerationModel,
		Input: text,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return false, fmt.Errorf("error marshaling moderation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIModerationURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return false, fmt.Errorf("error creating moderation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.config.OpenAIAPIKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("error sending moderation request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("error reading moderation response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("moderation API returned status %d: %s", resp.StatusCode, string(body))
	}

	var modResp moderationResponse
	if err := json.Unmarshal(body, &modResp); err != nil {
		return false, fmt.Errorf("error decoding moderation response: %w", err)
	}
	if len(modResp.Results) == 0 {
		return false, fmt.Errorf("no results in moderation response")
	}

	flagged := modResp.Results[0].Flagged
	if flagged {
		logger.Log.Warn("Moderation flagged input text")
	}
	return flagged, nil
}
