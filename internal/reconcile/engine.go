// Package reconcile computes and applies the comment changes that make a pull
// request's tool-authored comments mirror the current lint findings.
package reconcile

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/sevigo/lint-warden/internal/core"
)

// ActionKind is the host mutation an Action performs.
type ActionKind string

const (
	ActionCreate ActionKind = "create"
	ActionUpdate ActionKind = "update"
	ActionDelete ActionKind = "delete"
)

// Target is the kind of comment an Action mutates.
type Target string

const (
	TargetInline  Target = "inline"
	TargetSummary Target = "summary"
)

// Action is one host mutation. CommentID is set for updates and deletes; Key
// and CommitSHA are set for inline creates.
type Action struct {
	Kind      ActionKind
	Target    Target
	CommentID int64
	Key       Key
	CommitSHA string
	Body      string
}

// String describes the action for logs and dry-run output.
func (a Action) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", a.Kind, a.Target)
	if a.Target == TargetInline {
		fmt.Fprintf(&b, " %s:%d", a.Key.Path, a.Key.Line)
	}
	if a.CommentID != 0 {
		fmt.Fprintf(&b, " (comment %d)", a.CommentID)
	}
	return b.String()
}

// Plan is the outcome of one reconciliation.
type Plan struct {
	// Actions are independent of each other and may be applied in any order.
	Actions []Action
	// OutsideDiff holds the findings that could not be anchored inline.
	OutsideDiff []core.Finding
	// Unchanged counts comments whose body already matches.
	Unchanged int
	// FindingCount is the number of findings, in and out of the diff.
	FindingCount int
	// SummarySuppressed is set when a summary was due but posting is disabled.
	SummarySuppressed bool
}

// Failed reports whether the build should fail.
func (p *Plan) Failed() bool {
	return p.FindingCount > 0
}

// ExitCode is the process exit status for the plan's verdict.
func (p *Plan) ExitCode(failureCode int) int {
	if p.Failed() {
		return failureCode
	}
	return 0
}

// Count returns how many actions of kind the plan holds.
func (p *Plan) Count(kind ActionKind) int {
	n := 0
	for _, a := range p.Actions {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

const (
	// DefaultTool is the tool name embedded in comment markers.
	DefaultTool = "erb_lint"
	// DefaultTitle names the linter in the summary comment header.
	DefaultTitle = "Erb Lint"
)

// Options tune the engine.
type Options struct {
	// Title names the linter in the summary comment header.
	Title string
	// PostOutsideDiff allows creating the summary comment. Updating or
	// deleting an existing one is always allowed.
	PostOutsideDiff bool
}

// Engine diffs desired comment state against the inventory.
type Engine struct {
	marker Marker
	opts   Options
	logger *slog.Logger
}

// NewEngine creates an Engine that writes comments carrying marker.
func NewEngine(marker Marker, opts Options, logger *slog.Logger) *Engine {
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	return &Engine{marker: marker, opts: opts, logger: logger}
}

// Plan computes the actions that make inv mirror findings. It has no side
// effects besides logging; inv is the snapshot taken before this run, so
// comments created by the plan are never candidates for its deletions.
func (e *Engine) Plan(findings []core.Finding, idx *RangeIndex, inv *Inventory, headSHA string) *Plan {
	if inv == nil {
		inv = NewInventory()
	}
	plan := &Plan{FindingCount: len(findings)}

	order, groups := groupFindings(findings)
	for _, key := range order {
		group := groups[key]
		existing, exists := inv.Inline[key]

		if !idx.IsInDiff(key.Path, key.Line) {
			if exists {
				e.logger.Warn("Line is no longer in the diff, leaving existing comment as is",
					"path", key.Path, "line", key.Line, "comment_id", existing.ID)
			}
			plan.OutsideDiff = append(plan.OutsideDiff, group...)
			continue
		}

		body := e.InlineBody(key, group)
		switch {
		case !exists:
			e.logger.Debug("Planning new comment", "path", key.Path, "line", key.Line, "findings", len(group))
			plan.Actions = append(plan.Actions, Action{
				Kind: ActionCreate, Target: TargetInline, Key: key, CommitSHA: headSHA, Body: body,
			})
		case existing.Body == body:
			e.logger.Debug("Skipping unchanged comment", "path", key.Path, "line", key.Line, "comment_id", existing.ID)
			plan.Unchanged++
		default:
			plan.Actions = append(plan.Actions, Action{
				Kind: ActionUpdate, Target: TargetInline, CommentID: existing.ID, Key: key, Body: body,
			})
		}
	}

	plan.Actions = append(plan.Actions, e.orphans(inv, groups)...)

	if a, ok := e.summaryAction(plan, inv.Summary); ok {
		plan.Actions = append(plan.Actions, a)
	}
	return plan
}

// orphans returns a delete for every inventoried comment with no findings left
// at its key, sorted by path and line.
func (e *Engine) orphans(inv *Inventory, groups map[Key][]core.Finding) []Action {
	var keys []Key
	for key := range inv.Inline {
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
	}
	slices.SortFunc(keys, func(a, b Key) int {
		return cmp.Or(strings.Compare(a.Path, b.Path), cmp.Compare(a.Line, b.Line))
	})

	actions := make([]Action, 0, len(keys))
	for _, key := range keys {
		c := inv.Inline[key]
		e.logger.Debug("Planning deletion of resolved comment", "path", key.Path, "line", key.Line, "comment_id", c.ID)
		actions = append(actions, Action{Kind: ActionDelete, Target: TargetInline, CommentID: c.ID, Key: key})
	}
	return actions
}

func (e *Engine) summaryAction(plan *Plan, existing *core.Comment) (Action, bool) {
	if len(plan.OutsideDiff) == 0 {
		if existing == nil {
			return Action{}, false
		}
		return Action{Kind: ActionDelete, Target: TargetSummary, CommentID: existing.ID}, true
	}

	body := e.SummaryBody(plan.OutsideDiff)
	switch {
	case existing == nil && !e.opts.PostOutsideDiff:
		e.logger.Info("Posting of the outside-diff summary is disabled", "findings", len(plan.OutsideDiff))
		plan.SummarySuppressed = true
		return Action{}, false
	case existing == nil:
		return Action{Kind: ActionCreate, Target: TargetSummary, Body: body}, true
	case existing.Body == body:
		plan.Unchanged++
		return Action{}, false
	default:
		return Action{Kind: ActionUpdate, Target: TargetSummary, CommentID: existing.ID, Body: body}, true
	}
}

// InlineBody renders the comment for the findings on one line, in the order
// the linter reported them.
func (e *Engine) InlineBody(key Key, group []core.Finding) string {
	var b strings.Builder
	b.WriteString(e.marker.Inline(key))
	b.WriteString("\n")
	for i, f := range group {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(f.String())
	}
	b.WriteString("\n")
	return b.String()
}

// SummaryBody renders the pull-request-wide comment listing findings that
// fall outside the diff.
func (e *Engine) SummaryBody(findings []core.Finding) string {
	blocks := make([]string, len(findings))
	for i, f := range findings {
		blocks[i] = fmt.Sprintf("**%s:%d**\n%s", normalizePath(f.Path), f.Line, f.String())
	}
	return fmt.Sprintf("%s\n%s offenses found outside of the diff:\n\n%s",
		e.marker.OutsideDiff(), e.opts.Title, strings.Join(blocks, "\n\n"))
}

// groupFindings groups findings by key, keeping the first-seen order of keys
// and the linter's order within each group.
func groupFindings(findings []core.Finding) ([]Key, map[Key][]core.Finding) {
	var order []Key
	groups := make(map[Key][]core.Finding)
	for _, f := range findings {
		key := Key{Path: normalizePath(f.Path), Line: f.Line}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], f)
	}
	return order, groups
}
