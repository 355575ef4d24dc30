package patterngen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenAIGenerator uses any OpenAI-compatible chat completions API.
type OpenAIGenerator struct {
	baseURL string
	model   string
	client  *http.Client
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openaiChatResponse struct {
	Choices []struct {
		Message openaiMessage `json:"message"`
	} `json:"choices"`
}

// NewOpenAIGenerator creates a generator. Default model: gpt-4o-mini.
func NewOpenAIGenerator(baseURL, model string) *OpenAIGenerator {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, intent, credential string) (string, error) {
	if strings.TrimSpace(credential) == "" {
		return "", ErrCredentialMissing
	}

	b, _ := json.Marshal(openaiChatRequest{
		Model:       g.model,
		Messages:    []openaiMessage{{Role: "user", Content: Prompt(intent)}},
		Temperature: 0.2,
		MaxTokens:   256,
	})
	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", &ServiceError{Message: fmt.Sprintf("openai request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &ServiceError{Message: fmt.Sprintf("openai error %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))}
	}

	var result openaiChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ServiceError{Message: fmt.Sprintf("decode openai response: %v", err)}
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", &ServiceError{Message: "empty response"}
	}
	return Extract(result.Choices[0].Message.Content)
}
