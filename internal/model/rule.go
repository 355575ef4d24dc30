// Package model defines the core filtering data types.
package model

import (
	"fmt"
	"strings"
	"time"
)

// FilterType is how a rule's pattern is interpreted.
type FilterType string

const (
	FilterStringMatch FilterType = "STRING_MATCH"
	FilterRegex       FilterType = "REGEX"
	FilterAIGenerated FilterType = "AI_GENERATED"
)

// ValidFilterTypes are the allowed rule types.
var ValidFilterTypes = map[FilterType]bool{
	FilterStringMatch: true,
	FilterRegex:       true,
	FilterAIGenerated: true,
}

// IsRegex reports whether patterns of this type are regular expressions.
func (t FilterType) IsRegex() bool {
	return t == FilterRegex || t == FilterAIGenerated
}

// ParseFilterType accepts the stored form as well as the short CLI spellings.
func ParseFilterType(s string) (FilterType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string_match", "string", "substring":
		return FilterStringMatch, nil
	case "regex", "re":
		return FilterRegex, nil
	case "ai_generated", "ai":
		return FilterAIGenerated, nil
	}
	return "", fmt.Errorf("invalid filter type %q (valid: string, regex, ai)", s)
}

// FilterRule is a user-authored matching directive.
type FilterRule struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	FilterType     FilterType `json:"filter_type"`
	Pattern        string     `json:"pattern"`
	TargetPackage  *string    `json:"target_package,omitempty"` // nil applies to every app
	IsEnabled      bool       `json:"is_enabled"`
	OriginalPrompt *string    `json:"original_prompt,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// AppliesTo reports whether the rule is enabled and targets pkg or every app.
func (r FilterRule) AppliesTo(pkg string) bool {
	return r.IsEnabled && (r.TargetPackage == nil || *r.TargetPackage == pkg)
}

// Validate checks the fields the authoring boundary requires.
func (r FilterRule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(r.Pattern) == "" {
		return &ValidationError{Field: "pattern", Reason: "must not be empty"}
	}
	if !ValidFilterTypes[r.FilterType] {
		return &ValidationError{Field: "filter_type", Reason: fmt.Sprintf("unknown type %q", r.FilterType)}
	}
	return nil
}

// ValidationError reports a rule rejected before it reaches the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StringPtr returns nil for an empty (or blank) string.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
