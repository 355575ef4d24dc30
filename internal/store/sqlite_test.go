package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rcliao/buzzbuster/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustInsertRule(t *testing.T, s *SQLiteStore, r model.FilterRule) *model.FilterRule {
	t.Helper()
	got, err := s.InsertRule(context.Background(), r)
	if err != nil {
		t.Fatalf("insert rule: %v", err)
	}
	return got
}

func TestInsertAndGetRule(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	prompt := "block promos"
	r := mustInsertRule(t, s, model.FilterRule{
		Name: "promos", FilterType: model.FilterAIGenerated, Pattern: "promo|sale",
		TargetPackage: model.StringPtr("com.shop"), IsEnabled: true, OriginalPrompt: &prompt,
	})
	if r.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if r.CreatedAt.IsZero() || !r.CreatedAt.Equal(r.UpdatedAt) {
		t.Errorf("expected created_at == updated_at, got %v / %v", r.CreatedAt, r.UpdatedAt)
	}

	got, err := s.GetRule(ctx, r.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "promos" || got.FilterType != model.FilterAIGenerated || got.Pattern != "promo|sale" {
		t.Errorf("unexpected rule %+v", got)
	}
	if got.TargetPackage == nil || *got.TargetPackage != "com.shop" {
		t.Errorf("expected target com.shop, got %v", got.TargetPackage)
	}
	if got.OriginalPrompt == nil || *got.OriginalPrompt != prompt {
		t.Errorf("expected original prompt, got %v", got.OriginalPrompt)
	}
}

func TestInsertRuleValidation(t *testing.T) {
	s := newTestStore(t)

	tests := []model.FilterRule{
		{Name: "", FilterType: model.FilterStringMatch, Pattern: "x"},
		{Name: "n", FilterType: model.FilterStringMatch, Pattern: "  "},
		{Name: "n", FilterType: "GLOB", Pattern: "x"},
	}
	for _, r := range tests {
		_, err := s.InsertRule(context.Background(), r)
		var ve *model.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("InsertRule(%+v) expected ValidationError, got %v", r, err)
		}
	}
}

func TestOriginalPromptOnlyForAIRules(t *testing.T) {
	s := newTestStore(t)
	prompt := "ignored"
	r := mustInsertRule(t, s, model.FilterRule{
		Name: "n", FilterType: model.FilterRegex, Pattern: "x", IsEnabled: true, OriginalPrompt: &prompt,
	})
	if r.OriginalPrompt != nil {
		t.Errorf("expected prompt dropped for regex rule, got %q", *r.OriginalPrompt)
	}
}

func TestListEnabledRulesOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := mustInsertRule(t, s, model.FilterRule{Name: "a", FilterType: model.FilterStringMatch, Pattern: "a", IsEnabled: true})
	b := mustInsertRule(t, s, model.FilterRule{Name: "b", FilterType: model.FilterStringMatch, Pattern: "b", IsEnabled: true})
	mustInsertRule(t, s, model.FilterRule{Name: "off", FilterType: model.FilterStringMatch, Pattern: "c", IsEnabled: false})

	rules, err := s.ListEnabledRules(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 enabled rules, got %d", len(rules))
	}
	if rules[0].ID != b.ID || rules[1].ID != a.ID {
		t.Errorf("expected most recently updated first, got %s, %s", rules[0].Name, rules[1].Name)
	}

	// Touching a moves it to the front.
	if _, err := s.SetRuleEnabled(ctx, a.ID, true); err != nil {
		t.Fatal(err)
	}
	rules, _ = s.ListEnabledRules(ctx)
	if rules[0].ID != a.ID {
		t.Errorf("expected toggled rule first, got %s", rules[0].Name)
	}
}

func TestListRulesTieBreaksOnID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ts := "2026-01-01T00:00:00.000000000Z"
	for _, id := range []string{"B", "C", "A"} {
		_, err := s.db.Exec(`INSERT INTO filter_rules (`+ruleColumns+`) VALUES (?, ?, 'STRING_MATCH', 'x', NULL, 1, NULL, ?, ?)`,
			id, "rule "+id, ts, ts)
		if err != nil {
			t.Fatal(err)
		}
	}

	rules, err := s.ListEnabledRules(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var ids string
	for _, r := range rules {
		ids += r.ID
	}
	if ids != "ABC" {
		t.Errorf("expected id ascending on equal updated_at, got %s", ids)
	}
}

func TestUpdateAndToggleRefreshUpdatedAt(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	r := mustInsertRule(t, s, model.FilterRule{Name: "n", FilterType: model.FilterStringMatch, Pattern: "x", IsEnabled: true})

	r.Pattern = "y"
	updated, err := s.UpdateRule(ctx, *r)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Pattern != "y" {
		t.Errorf("expected pattern y, got %q", updated.Pattern)
	}
	if !updated.UpdatedAt.After(r.UpdatedAt) {
		t.Errorf("expected updated_at to move forward")
	}
	if !updated.CreatedAt.Equal(r.CreatedAt) {
		t.Errorf("created_at changed on update")
	}

	toggled, err := s.SetRuleEnabled(ctx, r.ID, false)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if toggled.IsEnabled {
		t.Error("expected disabled")
	}
	if !toggled.UpdatedAt.After(updated.UpdatedAt) {
		t.Errorf("expected toggle to refresh updated_at")
	}
}

func TestRuleNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.GetRule(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteRuleByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete: expected ErrNotFound, got %v", err)
	}
	if _, err := s.SetRuleEnabled(ctx, "missing", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("toggle: expected ErrNotFound, got %v", err)
	}
}

func TestListRulesQuery(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mustInsertRule(t, s, model.FilterRule{Name: "Shopping", FilterType: model.FilterStringMatch, Pattern: "sale", IsEnabled: true})
	mustInsertRule(t, s, model.FilterRule{Name: "OTP", FilterType: model.FilterRegex, Pattern: `\d{6}`, IsEnabled: true})
	mustInsertRule(t, s, model.FilterRule{Name: "percent", FilterType: model.FilterRegex, Pattern: `50%`, IsEnabled: true})

	got, _ := s.ListRules(ctx, ListRulesParams{Query: "shop"})
	if len(got) != 1 || got[0].Name != "Shopping" {
		t.Errorf("expected Shopping, got %+v", got)
	}
	got, _ = s.ListRules(ctx, ListRulesParams{Query: "%"})
	if len(got) != 1 || got[0].Name != "percent" {
		t.Errorf("expected literal %% match only, got %d rules", len(got))
	}
	got, _ = s.ListRules(ctx, ListRulesParams{Limit: 2})
	if len(got) != 2 {
		t.Errorf("expected limit 2, got %d", len(got))
	}
}

func TestDeleteRuleKeepsHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	r := mustInsertRule(t, s, model.FilterRule{Name: "promo", FilterType: model.FilterStringMatch, Pattern: "promo", IsEnabled: true})
	id, err := s.InsertBlocked(ctx, model.BlockedNotification{
		PackageName: "com.shop", AppName: "Shop", Title: "promo", MatchedRuleID: &r.ID,
		MatchedRuleName: r.Name, MatchType: model.MatchStringMatch,
	})
	if err != nil {
		t.Fatalf("insert blocked: %v", err)
	}

	if err := s.DeleteRule(ctx, *r); err != nil {
		t.Fatalf("delete rule: %v", err)
	}

	got, err := s.GetBlocked(ctx, id)
	if err != nil {
		t.Fatalf("record should survive rule deletion: %v", err)
	}
	if got.MatchedRuleID != nil {
		t.Errorf("expected matched_rule_id cleared, got %q", *got.MatchedRuleID)
	}
	if got.MatchedRuleName != "promo" {
		t.Errorf("expected snapshot name kept, got %q", got.MatchedRuleName)
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}

func TestExportImportRules(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)

	mustInsertRule(t, src, model.FilterRule{Name: "a", FilterType: model.FilterStringMatch, Pattern: "alpha", IsEnabled: true})
	mustInsertRule(t, src, model.FilterRule{Name: "b", FilterType: model.FilterRegex, Pattern: "beta", IsEnabled: false})

	exported, err := src.ExportRules(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(exported) != 2 || exported[0].Name != "a" {
		t.Fatalf("expected 2 rules oldest first, got %+v", exported)
	}

	dst := newTestStore(t)
	n, err := dst.ImportRules(ctx, exported)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 imported, got %d", n)
	}
	enabled, _ := dst.ListEnabledRules(ctx)
	if len(enabled) != 1 || enabled[0].Name != "a" {
		t.Errorf("expected enabled flag preserved, got %+v", enabled)
	}
}
