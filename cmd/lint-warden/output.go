package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/sevigo/lint-warden/internal/core"
	"github.com/sevigo/lint-warden/internal/reconcile"
)

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
)

var headerStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("6")).
	Padding(0, 1)

// printSummary writes the closing lines of a run.
func printSummary(event *core.GitHubEvent, plan *reconcile.Plan) {
	titleColor.Printf("\nlint-warden: %s#%d\n", event.RepoFullName, event.PRNumber)
	fmt.Printf("  created %d, updated %d, deleted %d, unchanged %d\n",
		plan.Count(reconcile.ActionCreate), plan.Count(reconcile.ActionUpdate),
		plan.Count(reconcile.ActionDelete), plan.Unchanged)
	if n := len(plan.OutsideDiff); n > 0 {
		warnColor.Printf("  %d offenses outside the diff\n", n)
	}
	if plan.SummarySuppressed {
		dimColor.Println("  summary comment not posted: OUTSIDE_DIFF is not true")
	}
	if plan.Failed() {
		errorColor.Printf("  %d offenses found\n", plan.FindingCount)
		return
	}
	successColor.Println("  no offenses")
}

// printPlan renders a dry-run plan as markdown for the terminal.
func printPlan(event *core.GitHubEvent, plan *reconcile.Plan, bodies bool) error {
	fmt.Println(headerStyle.Render(fmt.Sprintf("Plan for %s#%d", event.RepoFullName, event.PRNumber)))

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(planMarkdown(plan, bodies))
	if err != nil {
		return fmt.Errorf("failed to render plan: %w", err)
	}
	fmt.Print(out)
	printSummary(event, plan)
	return nil
}

func planMarkdown(plan *reconcile.Plan, bodies bool) string {
	var b strings.Builder
	if len(plan.Actions) == 0 {
		b.WriteString("Nothing to change.\n")
	} else {
		b.WriteString("## Actions\n\n")
		for _, a := range plan.Actions {
			fmt.Fprintf(&b, "- `%s`\n", a)
		}
	}

	if len(plan.OutsideDiff) > 0 {
		b.WriteString("\n## Outside the diff\n\n")
		for _, f := range plan.OutsideDiff {
			fmt.Fprintf(&b, "- **%s:%d** %s: %s\n", f.Path, f.Line, f.Rule, f.Message)
		}
	}

	if bodies {
		for _, a := range plan.Actions {
			if a.Kind == reconcile.ActionDelete {
				continue
			}
			fmt.Fprintf(&b, "\n### %s\n\n```\n%s\n```\n", a, strings.TrimRight(a.Body, "\n"))
		}
	}
	return b.String()
}
