package patterngen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// GeminiGenerator calls the Gemini generateContent API.
type GeminiGenerator struct {
	baseURL string
	model   string
	client  *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// NewGeminiGenerator creates a generator. Default model: gemini-2.0-flash.
func NewGeminiGenerator(baseURL, model string) *GeminiGenerator {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

func (g *GeminiGenerator) Generate(ctx context.Context, intent, credential string) (string, error) {
	if strings.TrimSpace(credential) == "" {
		return "", ErrCredentialMissing
	}

	var body geminiRequest
	body.Contents = []geminiContent{{Parts: []geminiPart{{Text: Prompt(intent)}}}}
	body.GenerationConfig.Temperature = 0.2
	body.GenerationConfig.MaxOutputTokens = 256
	b, _ := json.Marshal(body)

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, url.QueryEscape(credential))
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", &ServiceError{Message: fmt.Sprintf("gemini request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &ServiceError{Message: fmt.Sprintf("gemini error %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))}
	}

	var result geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ServiceError{Message: fmt.Sprintf("decode gemini response: %v", err)}
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", &ServiceError{Message: "empty response"}
	}
	text := result.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", &ServiceError{Message: "empty response"}
	}
	return Extract(text)
}
