// Package authoring is the user-facing rule editing flow. Unlike the
// interception pipeline it fails loudly: every error is returned to the
// caller.
package authoring

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rcliao/buzzbuster/internal/filter"
	"github.com/rcliao/buzzbuster/internal/model"
	"github.com/rcliao/buzzbuster/internal/patterngen"
)

// Rules is the rule store surface the service needs.
type Rules interface {
	GetRule(ctx context.Context, id string) (*model.FilterRule, error)
	InsertRule(ctx context.Context, r model.FilterRule) (*model.FilterRule, error)
	UpdateRule(ctx context.Context, r model.FilterRule) (*model.FilterRule, error)
	SetRuleEnabled(ctx context.Context, id string, enabled bool) (*model.FilterRule, error)
	DeleteRuleByID(ctx context.Context, id string) error
}

// Credentials supplies the pattern service API key.
type Credentials interface {
	GeminiAPIKey(ctx context.Context) (string, error)
}

// CreateParams holds parameters for creating a rule.
type CreateParams struct {
	Name          string
	FilterType    model.FilterType
	Pattern       string
	TargetPackage string // empty for every app
	Disabled      bool
}

// UpdateParams holds a partial rule update. Nil fields are left unchanged; an
// empty TargetPackage makes the rule global.
type UpdateParams struct {
	ID            string
	Name          *string
	FilterType    *model.FilterType
	Pattern       *string
	TargetPackage *string
	Enabled       *bool
}

// GenerateParams holds parameters for creating a rule from a description.
type GenerateParams struct {
	Name          string // defaults to the intent
	Intent        string
	TargetPackage string
}

// Service validates and persists rule edits.
type Service struct {
	rules Rules
	creds Credentials
	gen   patterngen.Generator
	log   *zap.Logger
}

// NewService creates a Service. gen may be nil when AI generation is not
// available; log may be nil.
func NewService(rules Rules, creds Credentials, gen patterngen.Generator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{rules: rules, creds: creds, gen: gen, log: log}
}

func validate(r model.FilterRule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return filter.Validate(r.FilterType, r.Pattern)
}

// Create validates and stores a new rule.
func (s *Service) Create(ctx context.Context, p CreateParams) (*model.FilterRule, error) {
	if p.FilterType == "" {
		p.FilterType = model.FilterStringMatch
	}
	r := model.FilterRule{
		Name:          strings.TrimSpace(p.Name),
		FilterType:    p.FilterType,
		Pattern:       p.Pattern,
		TargetPackage: model.StringPtr(p.TargetPackage),
		IsEnabled:     !p.Disabled,
	}
	if err := validate(r); err != nil {
		return nil, err
	}
	created, err := s.rules.InsertRule(ctx, r)
	if err != nil {
		return nil, err
	}
	s.log.Info("rule created", zap.String("id", created.ID), zap.String("type", string(created.FilterType)))
	return created, nil
}

// Update applies a partial edit to an existing rule.
func (s *Service) Update(ctx context.Context, p UpdateParams) (*model.FilterRule, error) {
	r, err := s.rules.GetRule(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		r.Name = strings.TrimSpace(*p.Name)
	}
	if p.FilterType != nil {
		r.FilterType = *p.FilterType
	}
	if p.Pattern != nil {
		r.Pattern = *p.Pattern
	}
	if p.TargetPackage != nil {
		r.TargetPackage = model.StringPtr(*p.TargetPackage)
	}
	if p.Enabled != nil {
		r.IsEnabled = *p.Enabled
	}
	if err := validate(*r); err != nil {
		return nil, err
	}
	return s.rules.UpdateRule(ctx, *r)
}

// Toggle flips a rule's enabled flag.
func (s *Service) Toggle(ctx context.Context, id string) (*model.FilterRule, error) {
	r, err := s.rules.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.rules.SetRuleEnabled(ctx, id, !r.IsEnabled)
}

// Delete removes a rule. History records that matched it keep their
// snapshot of its name.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.rules.DeleteRuleByID(ctx, id); err != nil {
		return err
	}
	s.log.Info("rule deleted", zap.String("id", id))
	return nil
}

// Suggest asks the pattern service for a regex matching the intent. The
// returned pattern always compiles.
func (s *Service) Suggest(ctx context.Context, intent string) (string, error) {
	if strings.TrimSpace(intent) == "" {
		return "", &model.ValidationError{Field: "intent", Reason: "must not be empty"}
	}
	if s.gen == nil {
		return "", fmt.Errorf("pattern generation is not configured")
	}
	key, err := s.creds.GeminiAPIKey(ctx)
	if err != nil {
		return "", fmt.Errorf("read API key: %w", err)
	}
	if strings.TrimSpace(key) == "" {
		return "", patterngen.ErrCredentialMissing
	}
	return s.gen.Generate(ctx, intent, key)
}

// Generate creates an AI_GENERATED rule from a description. Nothing is
// stored unless the service returned a valid pattern.
func (s *Service) Generate(ctx context.Context, p GenerateParams) (*model.FilterRule, error) {
	intent := strings.TrimSpace(p.Intent)
	pattern, err := s.Suggest(ctx, intent)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = intent
	}
	r := model.FilterRule{
		Name:           name,
		FilterType:     model.FilterAIGenerated,
		Pattern:        pattern,
		TargetPackage:  model.StringPtr(p.TargetPackage),
		IsEnabled:      true,
		OriginalPrompt: &intent,
	}
	if err := validate(r); err != nil {
		return nil, err
	}
	created, err := s.rules.InsertRule(ctx, r)
	if err != nil {
		return nil, err
	}
	s.log.Info("generated rule created", zap.String("id", created.ID), zap.String("pattern", created.Pattern))
	return created, nil
}
