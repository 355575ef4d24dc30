// Package filter decides whether a notification matches a rule set.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rcliao/buzzbuster/internal/model"
)

// Result is the outcome of evaluating one notification.
type Result struct {
	Matched   bool              `json:"matched"`
	Rule      *model.FilterRule `json:"rule,omitempty"`
	MatchType model.MatchType   `json:"match_type,omitempty"`
}

// Evaluate runs the two-tier match over rules in their given order.
//
// Substring rules are scanned first; regex and AI-generated rules only when no
// substring rule matched. Within a tier the first matching rule wins. A pattern
// that does not compile is skipped, never reported.
func Evaluate(rules []model.FilterRule, packageName, title, content string) Result {
	text := title + " " + content

	applicable := make([]model.FilterRule, 0, len(rules))
	for _, r := range rules {
		if r.AppliesTo(packageName) {
			applicable = append(applicable, r)
		}
	}

	lower := strings.ToLower(text)
	for i := range applicable {
		r := &applicable[i]
		if r.FilterType != model.FilterStringMatch {
			continue
		}
		if strings.Contains(lower, strings.ToLower(r.Pattern)) {
			return Result{Matched: true, Rule: r, MatchType: model.MatchStringMatch}
		}
	}

	for i := range applicable {
		r := &applicable[i]
		if !r.FilterType.IsRegex() {
			continue
		}
		re, err := compile(r.Pattern)
		if err != nil {
			continue
		}
		if re.MatchString(text) {
			mt := model.MatchRegex
			if r.FilterType == model.FilterAIGenerated {
				mt = model.MatchAIGenerated
			}
			return Result{Matched: true, Rule: r, MatchType: mt}
		}
	}

	return Result{}
}

func compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + pattern)
}

// PatternCompileError reports a rule pattern that is not a valid regex.
type PatternCompileError struct {
	Pattern string
	Err     error
}

func (e *PatternCompileError) Error() string {
	return fmt.Sprintf("pattern %q does not compile: %v", e.Pattern, e.Err)
}

func (e *PatternCompileError) Unwrap() error { return e.Err }

// Validate checks that pattern is usable for the given rule type. Substring
// patterns are always valid.
func Validate(t model.FilterType, pattern string) error {
	if !t.IsRegex() {
		return nil
	}
	if _, err := compile(pattern); err != nil {
		return &PatternCompileError{Pattern: pattern, Err: err}
	}
	return nil
}
