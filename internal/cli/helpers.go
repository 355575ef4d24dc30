package cli

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/buzzbuster/internal/authoring"
	"github.com/rcliao/buzzbuster/internal/model"
	"github.com/rcliao/buzzbuster/internal/osbridge"
	"github.com/rcliao/buzzbuster/internal/patterngen"
	"github.com/rcliao/buzzbuster/internal/restore"
	"github.com/rcliao/buzzbuster/internal/store"
)

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dayLabel groups history entries: Today, Yesterday, a weekday within the
// last week, otherwise the date.
func dayLabel(t, now time.Time) string {
	t = t.In(now.Location())
	days := int(math.Round(startOfDay(now).Sub(startOfDay(t)).Hours() / 24))
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days > 1 && days < 7:
		return t.Format("Monday")
	default:
		return t.Format("Jan 2, 2006")
	}
}

func writeHistoryText(w io.Writer, records []model.BlockedNotification, now time.Time) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No blocked notifications.")
		return
	}
	last := ""
	for _, n := range records {
		if label := dayLabel(n.BlockedAt, now); label != last {
			if last != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%s\n", label)
			last = label
		}
		mark := " "
		if n.IsRestored {
			mark = "R"
		}
		rule := n.MatchedRuleName
		if rule == "" {
			rule = "-"
		}
		fmt.Fprintf(w, "  %s %s  %-20s %s: %s  [%s]  %s\n",
			mark, n.BlockedAt.In(now.Location()).Format("15:04"), n.AppName, n.Title, oneLine(n.Content), rule, n.ID)
	}
}

func writeRulesText(w io.Writer, rules []model.FilterRule) {
	if len(rules) == 0 {
		fmt.Fprintln(w, "No rules.")
		return
	}
	for _, r := range rules {
		state := "on "
		if !r.IsEnabled {
			state = "off"
		}
		target := "*"
		if r.TargetPackage != nil {
			target = *r.TargetPackage
		}
		fmt.Fprintf(w, "%s  [%s] %-12s %-20s %s  (%s)\n", r.ID, state, r.FilterType, r.Name, r.Pattern, target)
	}
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > 80 {
		return string(r[:80]) + "..."
	}
	return s
}

// readContent returns the positional args joined, or piped stdin.
func readContent(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	return "", nil
}

func newAuthoring(s *store.SQLiteStore, log *zap.Logger) *authoring.Service {
	c := getConfig()
	gen, err := patterngen.NewFromConfig(patterngen.Config{
		Provider: c.PatternGen.Provider,
		Model:    c.PatternGen.Model,
		BaseURL:  c.PatternGen.BaseURL,
	})
	if err != nil {
		exitErr("pattern generation", err)
	}
	return authoring.NewService(s, s, gen, log)
}

// newOutboxRestorer restores through the outbox file the OS bridge tails.
// Used when stdout is not the command channel.
func newOutboxRestorer(s *store.SQLiteStore, log *zap.Logger) (*restore.Service, func() error, error) {
	path := getConfig().OutboxPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return restore.NewService(s, osbridge.NewEmitter(f), log), f.Close, nil
}
