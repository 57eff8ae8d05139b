// Package threat matches requests against sigma rules and reports hits.
// Hits are only recorded; nothing is blocked.
package threat

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bradleyjkemp/sigma-go"
	"github.com/bradleyjkemp/sigma-go/evaluator"

	"github.com/pynezz/scriptshield/internal/fs"
	"github.com/pynezz/scriptshield/internal/util"
)

//go:embed rules/*.yml
var builtin embed.FS

// Event is the request view the rules see.
type Event struct {
	Method    string
	Path      string
	Query     string
	UserAgent string
	IP        string
	Status    int
	APIKey    string

	// At is when the request happened. Zero means now.
	At time.Time
}

func (e Event) fields() map[string]interface{} {
	return map[string]interface{}{
		"method":     e.Method,
		"path":       e.Path,
		"query":      e.Query,
		"user_agent": e.UserAgent,
		"ip":         e.IP,
		"status":     strconv.Itoa(e.Status),
		"api_key":    e.APIKey,
	}
}

// Match is a rule hit.
type Match struct {
	RuleID      string
	Title       string
	Level       string
	Description string
}

// Severity folds sigma levels into the dashboard's high/medium/low.
func (m Match) Severity() string {
	switch strings.ToLower(m.Level) {
	case "critical", "high":
		return "high"
	case "medium":
		return "medium"
	default:
		return "low"
	}
}

// Kind is "threat" for high severity hits and "warning" otherwise.
func (m Match) Kind() string {
	if m.Severity() == "high" {
		return "threat"
	}
	return "warning"
}

type rule struct {
	meta sigma.Rule
	eval *evaluator.RuleEvaluator
}

type Detector struct {
	rules []rule
}

// New loads the embedded rules plus every .yml/.yaml file in extraDir.
// An empty extraDir loads only the embedded set.
func New(extraDir string) (*Detector, error) {
	d := &Detector{}

	entries, err := builtin.ReadDir("rules")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		contents, err := builtin.ReadFile("rules/" + e.Name())
		if err != nil {
			return nil, err
		}
		if err := d.Add(contents); err != nil {
			return nil, fmt.Errorf("builtin rule %s: %w", e.Name(), err)
		}
	}

	if extraDir == "" {
		return d, nil
	}
	if !fs.DirExists(extraDir) {
		return nil, fmt.Errorf("rules directory %s: %w", extraDir, fs.ErrNotExist)
	}

	files, err := fs.GetFilesWithExtension(extraDir, ".yml", ".yaml")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	for _, f := range files {
		contents, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		if err := d.Add(contents); err != nil {
			return nil, fmt.Errorf("rule %s: %w", f, err)
		}
		util.PrintDebug("loaded sigma rule " + filepath.Base(f))
	}

	return d, nil
}

// Add parses a single sigma rule.
func (d *Detector) Add(contents []byte) error {
	r, err := sigma.ParseRule(contents)
	if err != nil {
		return err
	}
	d.rules = append(d.rules, rule{meta: r, eval: evaluator.ForRule(r)})
	return nil
}

// Titles lists the loaded rule titles.
func (d *Detector) Titles() []string {
	titles := make([]string, 0, len(d.rules))
	for _, r := range d.rules {
		titles = append(titles, r.meta.Title)
	}
	return titles
}

// Inspect evaluates every rule against ev.
func (d *Detector) Inspect(ctx context.Context, ev Event) ([]Match, error) {
	fields := ev.fields()

	var matches []Match
	for _, r := range d.rules {
		result, err := r.eval.Matches(ctx, fields)
		if err != nil {
			return matches, fmt.Errorf("evaluate %q: %w", r.meta.Title, err)
		}
		if !result.Match {
			continue
		}
		matches = append(matches, Match{
			RuleID:      r.meta.ID,
			Title:       r.meta.Title,
			Level:       r.meta.Level,
			Description: r.meta.Description,
		})
	}
	return matches, nil
}
