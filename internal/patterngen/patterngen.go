// Package patterngen turns a plain-language description of unwanted
// notifications into a validated regular expression using a hosted language
// model.
package patterngen

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Generator produces a regex pattern from a user's intent.
type Generator interface {
	Generate(ctx context.Context, intent, credential string) (string, error)
}

// ErrCredentialMissing is returned when no API key is configured. No network
// call is made.
var ErrCredentialMissing = errors.New("API key not configured")

// ServiceError reports an unreachable service, a non-success response or an
// empty answer.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string { return "pattern service: " + e.Message }

// InvalidPatternError means the service answered with text that does not
// compile as a regex, even after cleanup.
type InvalidPatternError struct {
	Raw string
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("service returned an invalid pattern: %q", e.Raw)
}

const requestTimeout = 30 * time.Second

const instruction = `You are a regex generator for a notification filtering system.
The user describes which notifications they want to BLOCK.
Generate a single regex pattern that matches notification text (title + content) for the described intent.

Rules:
- Output ONLY the regex pattern, nothing else.
- Use case-insensitive matching (the system applies (?i) flag separately).
- Make the regex practical and not overly broad.
- Use alternation (|) for multiple concepts.
- Keep it concise but effective.

User intent: "%s"

Regex pattern:`

// Prompt renders the instruction sent to the model for an intent.
func Prompt(intent string) string {
	return fmt.Sprintf(instruction, intent)
}

// Extract cleans a raw model answer and validates it. A code fence or backtick
// pair is stripped only when it surrounds the whole answer. When the whole answer does not compile, its
// first line is tried on its own.
func Extract(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = unwrap(s, "```")
	s = unwrap(s, "`")
	s = strings.TrimSpace(s)

	if s != "" {
		if _, err := regexp.Compile(s); err == nil {
			return s, nil
		}
	}

	first, _, _ := strings.Cut(s, "\n")
	first = strings.TrimSpace(first)
	if first != "" {
		if _, err := regexp.Compile(first); err == nil {
			return first, nil
		}
	}
	return "", &InvalidPatternError{Raw: raw}
}

// unwrap removes fence from both ends of s, and only when it is on both.
func unwrap(s, fence string) string {
	if len(s) >= 2*len(fence) && strings.HasPrefix(s, fence) && strings.HasSuffix(s, fence) {
		return s[len(fence) : len(s)-len(fence)]
	}
	return s
}

// Config selects and configures a provider.
type Config struct {
	Provider string // "gemini" (default) or "openai"
	Model    string
	BaseURL  string
}

// NewFromConfig creates a Generator for the configured provider.
func NewFromConfig(cfg Config) (Generator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "gemini":
		return NewGeminiGenerator(cfg.BaseURL, cfg.Model), nil
	case "openai":
		return NewOpenAIGenerator(cfg.BaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown pattern provider %q", cfg.Provider)
	}
}
